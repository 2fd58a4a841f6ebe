// Package memory is an in-process implementation of the server repositories,
// used by the "memory" storage driver and by tests. A single mutex guards all
// tables, which gives the same guarantees as the PostgreSQL constraints:
// unique emails and owner-scoped rows.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/google/uuid"
)

// Store holds the tables.
type Store struct {
	mu sync.RWMutex

	users        map[string]*models.User
	usersByEmail map[string]string
	todos        map[string]*models.Todo
	todoOrder    []string
	retired      map[string]*models.RetiredRefreshToken

	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:        make(map[string]*models.User),
		usersByEmail: make(map[string]string),
		todos:        make(map[string]*models.Todo),
		retired:      make(map[string]*models.RetiredRefreshToken),
		now:          time.Now,
	}
}

// Users returns the credential store view.
func (s *Store) Users() *UsersRepository { return &UsersRepository{s: s} }

// Todos returns the task store view.
func (s *Store) Todos() *TodosRepository { return &TodosRepository{s: s} }

// RefreshTokens returns the rotation registry view.
func (s *Store) RefreshTokens() *RefreshTokensRepository { return &RefreshTokensRepository{s: s} }

// UsersRepository implements users.Repository.
type UsersRepository struct{ s *Store }

func (r *UsersRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.usersByEmail[user.Email]; taken {
		return nil, common.ErrorConflict
	}

	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now()

	stored := *user
	r.s.users[stored.ID] = &stored
	r.s.usersByEmail[stored.Email] = stored.ID

	return user, nil
}

func (r *UsersRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.usersByEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := *r.s.users[id]
	return &u, nil
}

func (r *UsersRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stored, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := *stored
	return &u, nil
}

// TodosRepository implements todos.Repository.
type TodosRepository struct{ s *Store }

func (r *TodosRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Mirrors the owner_id foreign key.
	if _, ok := r.s.users[todo.OwnerID]; !ok {
		return nil, common.ErrorNotFound
	}

	now := r.s.now()
	todo.ID = uuid.NewString()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	stored := *todo
	r.s.todos[stored.ID] = &stored
	r.s.todoOrder = append(r.s.todoOrder, stored.ID)

	return todo, nil
}

// owned returns the stored row when it exists and belongs to ownerID.
// Callers hold the lock.
func (r *TodosRepository) owned(id, ownerID string) (*models.Todo, bool) {
	t, ok := r.s.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, false
	}
	return t, true
}

func (r *TodosRepository) FindOwned(ctx context.Context, id, ownerID string) (*models.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.owned(id, ownerID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *t
	return &out, nil
}

func (r *TodosRepository) ListOwned(ctx context.Context, ownerID string) ([]*models.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*models.Todo, 0)
	for _, id := range r.s.todoOrder {
		if t := r.s.todos[id]; t.OwnerID == ownerID {
			out := *t
			result = append(result, &out)
		}
	}
	return result, nil
}

func (r *TodosRepository) UpdateOwned(ctx context.Context, id, ownerID string, patch models.TodoPatch) (*models.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.owned(id, ownerID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Done != nil {
		t.Done = *patch.Done
	}
	t.UpdatedAt = r.s.now()

	out := *t
	return &out, nil
}

func (r *TodosRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.owned(id, ownerID); !ok {
		return common.ErrorNotFound
	}
	delete(r.s.todos, id)
	r.s.todoOrder = slices.DeleteFunc(r.s.todoOrder, func(v string) bool { return v == id })
	return nil
}

func (r *TodosRepository) SetAttachment(ctx context.Context, id, ownerID, key string) (*models.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.owned(id, ownerID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	t.AttachmentKey = key
	t.UpdatedAt = r.s.now()

	out := *t
	return &out, nil
}

// RefreshTokensRepository implements refreshtokens.Repository.
type RefreshTokensRepository struct{ s *Store }

func (r *RefreshTokensRepository) Retire(ctx context.Context, token *models.RetiredRefreshToken) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, seen := r.s.retired[token.TokenID]; seen {
		return false, nil
	}
	stored := *token
	stored.CreatedAt = r.s.now()
	r.s.retired[stored.TokenID] = &stored
	return true, nil
}

func (r *RefreshTokensRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.retired {
		if t.ExpiresAt.Before(now) {
			delete(r.s.retired, id)
			n++
		}
	}
	return n, nil
}
