package http

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// TodoService is the part of services.TodoService the HTTP layer needs.
type TodoService interface {
	Create(ctx context.Context, requesterID string, in models.TodoInput) (*models.Todo, error)
	FindOwned(ctx context.Context, id, requesterID string) (*models.Todo, error)
	ListOwned(ctx context.Context, requesterID string) ([]*models.Todo, error)
	UpdateOwned(ctx context.Context, id, requesterID string, patch models.TodoPatch) (*models.Todo, error)
	DeleteOwned(ctx context.Context, id, requesterID string) error
	AttachmentUploadURL(ctx context.Context, id, requesterID string) (*services.Attachment, error)
	AttachmentDownloadURL(ctx context.Context, id, requesterID string) (*services.Attachment, error)
}

type TodoHandler struct {
	todos TodoService
}

func NewTodoHandler(todos TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// createTodoRequest has no owner field: ownership comes from the token.
type createTodoRequest struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type updateTodoRequest struct {
	Title *string `json:"title"`
	Done  *bool   `json:"done"`
}

// todoError renders a service error. Absent and foreign todos both end up
// as 404.
func todoError(c *fiber.Ctx, err error, failure string) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return Error(c, fiber.StatusBadRequest, "title is required")
	case errors.Is(err, common.ErrorNotFound):
		return Error(c, fiber.StatusNotFound, "todo not found")
	default:
		return Error(c, fiber.StatusInternalServerError, failure)
	}
}

func (h *TodoHandler) Create(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return Error(c, fiber.StatusUnauthorized, "missing token")
	}

	var req createTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid JSON payload")
	}

	t, err := h.todos.Create(c.UserContext(), id.SubjectID, models.TodoInput{Title: req.Title, Done: req.Done})
	if err != nil {
		return todoError(c, err, "failed to create todo")
	}
	return JSON(c, fiber.StatusCreated, t)
}

func (h *TodoHandler) List(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return Error(c, fiber.StatusUnauthorized, "missing token")
	}

	list, err := h.todos.ListOwned(c.UserContext(), id.SubjectID)
	if err != nil {
		return todoError(c, err, "failed to list todos")
	}
	return JSON(c, fiber.StatusOK, list)
}

func (h *TodoHandler) Get(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return Error(c, fiber.StatusUnauthorized, "missing token")
	}

	t, err := h.todos.FindOwned(c.UserContext(), c.Params("id"), id.SubjectID)
	if err != nil {
		return todoError(c, err, "failed to load todo")
	}
	return JSON(c, fiber.StatusOK, t)
}

func (h *TodoHandler) Update(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return Error(c, fiber.StatusUnauthorized, "missing token")
	}

	var req updateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid JSON payload")
	}

	t, err := h.todos.UpdateOwned(c.UserContext(), c.Params("id"), id.SubjectID,
		models.TodoPatch{Title: req.Title, Done: req.Done})
	if err != nil {
		return todoError(c, err, "failed to update todo")
	}
	return JSON(c, fiber.StatusOK, t)
}

func (h *TodoHandler) Delete(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return Error(c, fiber.StatusUnauthorized, "missing token")
	}

	if err := h.todos.DeleteOwned(c.UserContext(), c.Params("id"), id.SubjectID); err != nil {
		return todoError(c, err, "failed to delete todo")
	}
	return Message(c, fiber.StatusOK, "todo deleted")
}

// UploadURL handles POST /todos/:id/attachment.
func (h *TodoHandler) UploadURL(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return Error(c, fiber.StatusUnauthorized, "missing token")
	}

	a, err := h.todos.AttachmentUploadURL(c.UserContext(), c.Params("id"), id.SubjectID)
	if err != nil {
		return todoError(c, err, "failed to prepare upload")
	}
	return JSON(c, fiber.StatusOK, a)
}

// DownloadURL handles GET /todos/:id/attachment.
func (h *TodoHandler) DownloadURL(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return Error(c, fiber.StatusUnauthorized, "missing token")
	}

	a, err := h.todos.AttachmentDownloadURL(c.UserContext(), c.Params("id"), id.SubjectID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return Error(c, fiber.StatusNotFound, "attachment not found")
		}
		return todoError(c, err, "failed to prepare download")
	}
	return JSON(c, fiber.StatusOK, a)
}
