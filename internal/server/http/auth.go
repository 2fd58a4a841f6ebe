package http

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// UserService is the part of services.UserService the HTTP layer needs.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Me(ctx context.Context, subjectID string) (*models.PublicUser, error)
}

type AuthHandler struct {
	users UserService
	log   logging.Logger
}

func NewAuthHandler(users UserService, log logging.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid JSON payload")
	}

	_, err := h.users.Register(c.UserContext(), req.Name, req.Email, req.Password)
	switch {
	case err == nil:
		return Message(c, fiber.StatusCreated, "user registered")
	case errors.Is(err, auth.ErrPasswordTooLong):
		return Error(c, fiber.StatusBadRequest, "password must be at most 72 bytes")
	case errors.Is(err, common.ErrorValidation):
		return Error(c, fiber.StatusBadRequest, "name, email and password are required")
	case errors.Is(err, common.ErrorConflict):
		return Error(c, fiber.StatusBadRequest, "email already registered")
	default:
		return Error(c, fiber.StatusInternalServerError, "failed to register user")
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
	User         *models.PublicUser `json:"user"`
}

// Login handles POST /auth/login. Unknown email and wrong password produce
// the same response.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid JSON payload")
	}

	res, err := h.users.Login(c.UserContext(), req.Email, req.Password)
	switch {
	case err == nil:
		return JSON(c, fiber.StatusOK, loginResponse{
			AccessToken:  res.Tokens.AccessToken,
			RefreshToken: res.Tokens.RefreshToken,
			User:         res.User,
		})
	case errors.Is(err, common.ErrorValidation):
		return Error(c, fiber.StatusBadRequest, "email and password are required")
	case errors.Is(err, common.ErrorUnauthorized):
		return Error(c, fiber.StatusBadRequest, "invalid credentials")
	default:
		return Error(c, fiber.StatusInternalServerError, "failed to login")
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid JSON payload")
	}

	pair, err := h.users.Refresh(c.UserContext(), req.RefreshToken)
	switch {
	case err == nil:
		return JSON(c, fiber.StatusOK, pair)
	case errors.Is(err, common.ErrorValidation):
		return Error(c, fiber.StatusBadRequest, "refresh token is required")
	case errors.Is(err, common.ErrorUnauthorized):
		return Error(c, fiber.StatusUnauthorized, "invalid or expired refresh token")
	default:
		return Error(c, fiber.StatusInternalServerError, "failed to refresh token")
	}
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return Error(c, fiber.StatusUnauthorized, "missing token")
	}

	u, err := h.users.Me(c.UserContext(), id.SubjectID)
	switch {
	case err == nil:
		return JSON(c, fiber.StatusOK, u)
	case errors.Is(err, common.ErrorNotFound):
		return Error(c, fiber.StatusNotFound, "user not found")
	default:
		return Error(c, fiber.StatusInternalServerError, "failed to load user")
	}
}
