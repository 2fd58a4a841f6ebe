// Package api defines the TaskKeeper gRPC contract: request and response
// messages, the JSON wire codec, the service descriptor and a client stub.
package api

import "time"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type MeRequest struct{}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Todo struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	Title         string    `json:"title"`
	Done          bool      `json:"done"`
	AttachmentKey string    `json:"attachmentKey,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type CreateTodoRequest struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type ListTodosRequest struct{}

type ListTodosResponse struct {
	Todos []*Todo `json:"todos"`
}

type GetTodoRequest struct {
	ID string `json:"id"`
}

// UpdateTodoRequest is a partial update; nil fields stay unchanged.
type UpdateTodoRequest struct {
	ID    string  `json:"id"`
	Title *string `json:"title,omitempty"`
	Done  *bool   `json:"done,omitempty"`
}

type DeleteTodoRequest struct {
	ID string `json:"id"`
}

type DeleteTodoResponse struct {
	Message string `json:"message"`
}

type AttachmentRequest struct {
	ID string `json:"id"`
}

// AttachmentResponse carries a presigned URL. Key is set for uploads only.
type AttachmentResponse struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}
