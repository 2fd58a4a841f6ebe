package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

const todoColumns = `id, owner_id, title, done, attachment_key, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts todo and fills in ID and timestamps. An owner that no
// longer exists yields common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query := `
		INSERT INTO todos (owner_id, title, done)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, todo.OwnerID, todo.Title, todo.Done).
		Scan(&todo.ID, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		if dbx.IsCode(err, dbx.CodeForeignKeyViolation) {
			return nil, fmt.Errorf("%w: owner (%s)", common.ErrorNotFound, dbx.ConstraintName(err))
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

func (r *PostgresRepository) FindOwned(ctx context.Context, id, ownerID string) (*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos
		WHERE id = $1 AND owner_id = $2
	`
	return scanOne(r.db.QueryRowContext(ctx, query, id, ownerID))
}

// ListOwned returns the owner's todos oldest first. The slice is never nil.
func (r *PostgresRepository) ListOwned(ctx context.Context, ownerID string) ([]*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos
		WHERE owner_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		if dbx.IsCode(err, dbx.CodeInvalidTextRepr) {
			return []*models.Todo{}, nil
		}
		return nil, fmt.Errorf("failed to select todos: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Todo, 0)
	for rows.Next() {
		todo, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// UpdateOwned applies the non-nil fields of patch.
func (r *PostgresRepository) UpdateOwned(ctx context.Context, id, ownerID string, patch models.TodoPatch) (*models.Todo, error) {
	query := `
		UPDATE todos SET
			title = COALESCE($3, title),
			done = COALESCE($4, done),
			updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + todoColumns

	var title sql.NullString
	if patch.Title != nil {
		title = sql.NullString{String: *patch.Title, Valid: true}
	}
	var done sql.NullBool
	if patch.Done != nil {
		done = sql.NullBool{Bool: *patch.Done, Valid: true}
	}

	return scanOne(r.db.QueryRowContext(ctx, query, id, ownerID, title, done))
}

func (r *PostgresRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	query := `
		DELETE FROM todos
		WHERE id = $1 AND owner_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		if dbx.IsCode(err, dbx.CodeInvalidTextRepr) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// SetAttachment records the object-storage key of the todo's attachment.
func (r *PostgresRepository) SetAttachment(ctx context.Context, id, ownerID, key string) (*models.Todo, error) {
	query := `
		UPDATE todos SET
			attachment_key = $3,
			updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + todoColumns

	return scanOne(r.db.QueryRowContext(ctx, query, id, ownerID, key))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(s scanner) (*models.Todo, error) {
	var (
		todo       models.Todo
		attachment sql.NullString
	)
	err := s.Scan(&todo.ID, &todo.OwnerID, &todo.Title, &todo.Done, &attachment, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsCode(err, dbx.CodeInvalidTextRepr) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	todo.AttachmentKey = attachment.String
	return &todo, nil
}
