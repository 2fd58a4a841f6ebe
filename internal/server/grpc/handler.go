package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskkeeper/internal/api"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mapError converts a service error into a status. Only sentinel messages
// leave the server.
func (s *GRPCServer) mapError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorConflict):
		return status.Error(codes.AlreadyExists, common.ErrorConflict.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.ErrorNotFound.Error())
	default:
		s.logger.Error(ctx, op, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func requester(ctx context.Context) (string, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return id.SubjectID, nil
}

func toUser(u *models.PublicUser) *api.User {
	return &api.User{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toTodo(t *models.Todo) *api.Todo {
	return &api.Todo{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		Title:         t.Title,
		Done:          t.Done,
		AttachmentKey: t.AttachmentKey,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {

	if _, err := s.users.Register(ctx, req.Name, req.Email, req.Password); err != nil {
		return nil, s.mapError(ctx, "register", err)
	}

	return &api.RegisterResponse{Message: "user registered"}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {

	res, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.mapError(ctx, "login", err)
	}

	return &api.LoginResponse{
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		User:         toUser(res.User),
	}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *api.RefreshRequest) (*api.RefreshResponse, error) {

	pair, err := s.users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.mapError(ctx, "refresh", err)
	}

	return &api.RefreshResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *api.MeRequest) (*api.User, error) {
	subject, err := requester(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Me(ctx, subject)
	if err != nil {
		return nil, s.mapError(ctx, "me", err)
	}
	return toUser(u), nil
}

func (s *GRPCServer) CreateTodo(ctx context.Context, req *api.CreateTodoRequest) (*api.Todo, error) {
	subject, err := requester(ctx)
	if err != nil {
		return nil, err
	}

	t, err := s.todos.Create(ctx, subject, models.TodoInput{Title: req.Title, Done: req.Done})
	if err != nil {
		return nil, s.mapError(ctx, "create todo", err)
	}
	return toTodo(t), nil
}

func (s *GRPCServer) ListTodos(ctx context.Context, _ *api.ListTodosRequest) (*api.ListTodosResponse, error) {
	subject, err := requester(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.todos.ListOwned(ctx, subject)
	if err != nil {
		return nil, s.mapError(ctx, "list todos", err)
	}

	out := make([]*api.Todo, 0, len(list))
	for _, t := range list {
		out = append(out, toTodo(t))
	}
	return &api.ListTodosResponse{Todos: out}, nil
}

func (s *GRPCServer) GetTodo(ctx context.Context, req *api.GetTodoRequest) (*api.Todo, error) {
	subject, err := requester(ctx)
	if err != nil {
		return nil, err
	}

	t, err := s.todos.FindOwned(ctx, req.ID, subject)
	if err != nil {
		return nil, s.mapError(ctx, "get todo", err)
	}
	return toTodo(t), nil
}

func (s *GRPCServer) UpdateTodo(ctx context.Context, req *api.UpdateTodoRequest) (*api.Todo, error) {
	subject, err := requester(ctx)
	if err != nil {
		return nil, err
	}

	t, err := s.todos.UpdateOwned(ctx, req.ID, subject, models.TodoPatch{Title: req.Title, Done: req.Done})
	if err != nil {
		return nil, s.mapError(ctx, "update todo", err)
	}
	return toTodo(t), nil
}

func (s *GRPCServer) DeleteTodo(ctx context.Context, req *api.DeleteTodoRequest) (*api.DeleteTodoResponse, error) {
	subject, err := requester(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.todos.DeleteOwned(ctx, req.ID, subject); err != nil {
		return nil, s.mapError(ctx, "delete todo", err)
	}
	return &api.DeleteTodoResponse{Message: "todo deleted"}, nil
}

func (s *GRPCServer) AttachmentUploadURL(ctx context.Context, req *api.AttachmentRequest) (*api.AttachmentResponse, error) {
	subject, err := requester(ctx)
	if err != nil {
		return nil, err
	}

	a, err := s.todos.AttachmentUploadURL(ctx, req.ID, subject)
	if err != nil {
		return nil, s.mapError(ctx, "attachment upload url", err)
	}
	return &api.AttachmentResponse{URL: a.URL, Key: a.Key}, nil
}

func (s *GRPCServer) AttachmentDownloadURL(ctx context.Context, req *api.AttachmentRequest) (*api.AttachmentResponse, error) {
	subject, err := requester(ctx)
	if err != nil {
		return nil, err
	}

	a, err := s.todos.AttachmentDownloadURL(ctx, req.ID, subject)
	if err != nil {
		return nil, s.mapError(ctx, "attachment download url", err)
	}
	return &api.AttachmentResponse{URL: a.URL}, nil
}
