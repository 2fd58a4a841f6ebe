package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	app    *fiber.App
	tokens *auth.TokenService
}

type stubPresigner struct{}

func (stubPresigner) PresignPut(_ context.Context, key string) (string, error) {
	return "https://s3.local/put/" + key, nil
}

func (stubPresigner) PresignGet(_ context.Context, key string) (string, error) {
	return "https://s3.local/get/" + key, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	log := logging.Discard()
	store := memory.NewStore()
	users := services.NewUserService(store.Users(), nil, auth.NewPasswordHasher(bcrypt.MinCost), tokens, log)
	todos := services.NewTodoService(store.Todos(), stubPresigner{}, log)

	return &testEnv{app: newApp(log, tokens, users, todos), tokens: tokens}
}

func newApp(log logging.Logger, tokens *auth.TokenService, users UserService, todos TodoService) *fiber.App {
	app := NewApp(log)
	Register(app, auth.NewVerifier(tokens), NewAuthHandler(users, log), NewTodoHandler(todos))
	return app
}

// call performs a request and returns the status with the raw body.
func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type loginBody struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

type todoBody struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Title   string `json:"title"`
	Done    bool   `json:"done"`
}

func (e *testEnv) signup(t *testing.T, name, email, password string) loginBody {
	t.Helper()
	status, raw := call(t, e.app, fiber.MethodPost, "/auth/register", "",
		map[string]string{"name": name, "email": email, "password": password})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	status, raw = call(t, e.app, fiber.MethodPost, "/auth/login", "",
		map[string]string{"email": email, "password": password})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	return decode[loginBody](t, raw)
}
