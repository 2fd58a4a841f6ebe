// Package todos persists tasks. Every read and write past Create is scoped
// by owner: a row owned by someone else behaves exactly like a missing row.
package todos

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository is the owner-scoped task store. Misses, including rows owned
// by another user and malformed ids, return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	FindOwned(ctx context.Context, id, ownerID string) (*models.Todo, error)
	ListOwned(ctx context.Context, ownerID string) ([]*models.Todo, error)
	UpdateOwned(ctx context.Context, id, ownerID string, patch models.TodoPatch) (*models.Todo, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
	SetAttachment(ctx context.Context, id, ownerID, key string) (*models.Todo, error)
}
