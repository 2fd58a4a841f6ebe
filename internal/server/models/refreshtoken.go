package models

import "time"

// RetiredRefreshToken records a refresh token id that was already exchanged.
type RetiredRefreshToken struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
