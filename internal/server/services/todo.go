package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/todos"
	"github.com/google/uuid"
)

// Presigner signs object-storage URLs for attachments.
type Presigner interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// Attachment is a presigned URL for a todo's attachment object.
type Attachment struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}

// TodoService is the access guard in front of the task store. Every
// operation is scoped to the requesting identity; a todo that belongs to
// someone else, a todo that does not exist and a malformed id all produce
// the same common.ErrorNotFound.
type TodoService struct {
	todos     todos.Repository
	presigner Presigner
	log       logging.Logger
}

// NewTodoService constructs a TodoService. presigner may be nil, which
// turns the attachment operations off.
func NewTodoService(repo todos.Repository, presigner Presigner, log logging.Logger) *TodoService {
	return &TodoService{todos: repo, presigner: presigner, log: log}
}

// Create stores a new todo owned by requesterID. Ownership always comes from
// the authenticated identity, never from the input.
func (s *TodoService) Create(ctx context.Context, requesterID string, in models.TodoInput) (*models.Todo, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}

	t, err := s.todos.Create(ctx, &models.Todo{OwnerID: requesterID, Title: in.Title, Done: in.Done})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// the owner was removed while its token is still valid
			s.log.Warn(ctx, "create todo for removed user", "user_id", requesterID, "error", err)
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "create todo", requesterID, err)
	}
	return t, nil
}

func (s *TodoService) FindOwned(ctx context.Context, id, requesterID string) (*models.Todo, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	t, err := s.todos.FindOwned(ctx, id, requesterID)
	if err != nil {
		return nil, s.miss(ctx, "find todo", requesterID, err)
	}
	return t, nil
}

// ListOwned returns the requester's todos. The result is never nil.
func (s *TodoService) ListOwned(ctx context.Context, requesterID string) ([]*models.Todo, error) {
	list, err := s.todos.ListOwned(ctx, requesterID)
	if err != nil {
		return nil, s.internal(ctx, "list todos", requesterID, err)
	}
	if list == nil {
		list = []*models.Todo{}
	}
	return list, nil
}

// UpdateOwned applies patch. An empty patch returns the todo unchanged.
func (s *TodoService) UpdateOwned(ctx context.Context, id, requesterID string, patch models.TodoPatch) (*models.Todo, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", common.ErrorValidation)
	}
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	if patch.Empty() {
		return s.FindOwned(ctx, id, requesterID)
	}

	t, err := s.todos.UpdateOwned(ctx, id, requesterID, patch)
	if err != nil {
		return nil, s.miss(ctx, "update todo", requesterID, err)
	}
	return t, nil
}

func (s *TodoService) DeleteOwned(ctx context.Context, id, requesterID string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	if err := s.todos.DeleteOwned(ctx, id, requesterID); err != nil {
		return s.miss(ctx, "delete todo", requesterID, err)
	}
	return nil
}

// AttachmentUploadURL allocates a fresh object key for the todo, records it
// and returns a presigned PUT URL for it.
func (s *TodoService) AttachmentUploadURL(ctx context.Context, id, requesterID string) (*Attachment, error) {
	if _, err := s.FindOwned(ctx, id, requesterID); err != nil {
		return nil, err
	}
	if s.presigner == nil {
		return nil, fmt.Errorf("%w: attachments are not configured", common.ErrorInternal)
	}

	key := AttachmentKey(requesterID, id)
	url, err := s.presigner.PresignPut(ctx, key)
	if err != nil {
		return nil, s.internal(ctx, "presign upload", requesterID, err)
	}

	if _, err := s.todos.SetAttachment(ctx, id, requesterID, key); err != nil {
		return nil, s.miss(ctx, "record attachment", requesterID, err)
	}

	return &Attachment{URL: url, Key: key}, nil
}

// AttachmentDownloadURL returns a presigned GET URL for the todo's
// attachment, or common.ErrorNotFound when it has none.
func (s *TodoService) AttachmentDownloadURL(ctx context.Context, id, requesterID string) (*Attachment, error) {
	t, err := s.FindOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if t.AttachmentKey == "" {
		return nil, common.ErrorNotFound
	}
	if s.presigner == nil {
		return nil, fmt.Errorf("%w: attachments are not configured", common.ErrorInternal)
	}

	url, err := s.presigner.PresignGet(ctx, t.AttachmentKey)
	if err != nil {
		return nil, s.internal(ctx, "presign download", requesterID, err)
	}
	return &Attachment{URL: url}, nil
}

// AttachmentKey builds the object key of a new attachment:
// todos/<owner>/<todo>/<random>.
func AttachmentKey(ownerID, todoID string) string {
	return fmt.Sprintf("todos/%s/%s/%s", ownerID, todoID, uuid.NewString())
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *TodoService) miss(ctx context.Context, op, requesterID string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	return s.internal(ctx, op, requesterID, err)
}

func (s *TodoService) internal(ctx context.Context, op, requesterID string, err error) error {
	s.log.Error(ctx, op, "user_id", requesterID, "error", err)
	return fmt.Errorf("%w: %s", common.ErrorInternal, op)
}
