package http

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnScenario(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	app := env.app

	status, raw := call(t, app, fiber.MethodPost, "/auth/register", "",
		map[string]string{"name": "Ann", "email": "ann@x.com", "password": "pw123"})
	require.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"message":"user registered"}`, string(raw))

	status, raw = call(t, app, fiber.MethodPost, "/auth/register", "",
		map[string]string{"name": "Ann", "email": "ann@x.com", "password": "other"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"email already registered"}`, string(raw))

	status, raw = call(t, app, fiber.MethodPost, "/auth/login", "",
		map[string]string{"email": "ann@x.com", "password": "pw123"})
	require.Equal(t, fiber.StatusOK, status)
	ann := decode[loginBody](t, raw)
	assert.NotEmpty(t, ann.AccessToken)
	assert.NotEmpty(t, ann.RefreshToken)
	assert.Equal(t, "Ann", ann.User.Name)
	assert.NotContains(t, string(raw), "password")

	status, raw = call(t, app, fiber.MethodPost, "/todos", ann.AccessToken, map[string]string{"title": "buy milk"})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	created := decode[todoBody](t, raw)
	assert.Equal(t, ann.User.ID, created.OwnerID)
	assert.Equal(t, "buy milk", created.Title)
	assert.False(t, created.Done)

	status, raw = call(t, app, fiber.MethodGet, "/todos", ann.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	list := decode[[]todoBody](t, raw)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	bob := env.signup(t, "Bob", "bob@x.com", "pw456")
	status, raw = call(t, app, fiber.MethodGet, "/todos", bob.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))

	// a refresh token is not an access token
	status, _ = call(t, app, fiber.MethodGet, "/todos", ann.RefreshToken, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, raw = call(t, app, fiber.MethodGet, "/todos", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"missing token"}`, string(raw))
}

func TestCrossIdentityInvisibility(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	app := env.app
	ann := env.signup(t, "Ann", "ann@x.com", "pw")
	bob := env.signup(t, "Bob", "bob@x.com", "pw")

	_, raw := call(t, app, fiber.MethodPost, "/todos", ann.AccessToken, map[string]string{"title": "milk"})
	td := decode[todoBody](t, raw)
	path := "/todos/" + td.ID

	status, foreign := call(t, app, fiber.MethodGet, path, bob.AccessToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	_, absent := call(t, app, fiber.MethodGet, "/todos/6f1c7c1e-8a53-4b7e-9a51-1d7e0c4b9f00", bob.AccessToken, nil)
	assert.Equal(t, string(absent), string(foreign))

	status, _ = call(t, app, fiber.MethodPut, path, bob.AccessToken, map[string]any{"done": true})
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = call(t, app, fiber.MethodDelete, path, bob.AccessToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = call(t, app, fiber.MethodPost, path+"/attachment", bob.AccessToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, raw = call(t, app, fiber.MethodGet, "/todos", bob.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))

	status, raw = call(t, app, fiber.MethodGet, path, ann.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	got := decode[todoBody](t, raw)
	assert.Equal(t, "milk", got.Title)
	assert.False(t, got.Done)
}

func TestCreateIgnoresClientOwner(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ann := env.signup(t, "Ann", "ann@x.com", "pw")
	bob := env.signup(t, "Bob", "bob@x.com", "pw")

	status, raw := call(t, env.app, fiber.MethodPost, "/todos", ann.AccessToken,
		map[string]any{"title": "x", "ownerId": bob.User.ID, "owner": bob.User.ID})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, ann.User.ID, decode[todoBody](t, raw).OwnerID)
}

func TestTodoLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	app := env.app
	ann := env.signup(t, "Ann", "ann@x.com", "pw")

	status, raw := call(t, app, fiber.MethodPost, "/todos", ann.AccessToken, map[string]string{"title": ""})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"title is required"}`, string(raw))

	_, raw = call(t, app, fiber.MethodPost, "/todos", ann.AccessToken, map[string]string{"title": "milk"})
	td := decode[todoBody](t, raw)
	path := "/todos/" + td.ID

	status, raw = call(t, app, fiber.MethodPut, path, ann.AccessToken, map[string]any{"done": true})
	require.Equal(t, fiber.StatusOK, status)
	updated := decode[todoBody](t, raw)
	assert.True(t, updated.Done)
	assert.Equal(t, "milk", updated.Title)

	status, _ = call(t, app, fiber.MethodPut, path, ann.AccessToken, map[string]any{"title": ""})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = call(t, app, fiber.MethodGet, "/todos/not-an-id", ann.AccessToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, raw = call(t, app, fiber.MethodDelete, path, ann.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"message":"todo deleted"}`, string(raw))

	status, raw = call(t, app, fiber.MethodDelete, path, ann.AccessToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"todo not found"}`, string(raw))
}

func TestAttachments(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ann := env.signup(t, "Ann", "ann@x.com", "pw")
	_, raw := call(t, env.app, fiber.MethodPost, "/todos", ann.AccessToken, map[string]string{"title": "receipt"})
	path := "/todos/" + decode[todoBody](t, raw).ID + "/attachment"

	status, _ := call(t, env.app, fiber.MethodGet, path, ann.AccessToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, raw = call(t, env.app, fiber.MethodPost, path, ann.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	up := decode[services.Attachment](t, raw)
	assert.Equal(t, "https://s3.local/put/"+up.Key, up.URL)

	status, raw = call(t, env.app, fiber.MethodGet, path, ann.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "https://s3.local/get/"+up.Key, decode[services.Attachment](t, raw).URL)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.signup(t, "Ann", "ann@x.com", "pw")

	s1, wrongPassword := call(t, env.app, fiber.MethodPost, "/auth/login", "",
		map[string]string{"email": "ann@x.com", "password": "nope"})
	s2, unknownEmail := call(t, env.app, fiber.MethodPost, "/auth/login", "",
		map[string]string{"email": "ghost@x.com", "password": "pw"})

	assert.Equal(t, fiber.StatusBadRequest, s1)
	assert.Equal(t, s1, s2)
	assert.Equal(t, string(wrongPassword), string(unknownEmail))

	status, raw := call(t, env.app, fiber.MethodPost, "/auth/login", "", map[string]string{"email": "ann@x.com"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"email and password are required"}`, string(raw))
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	status, raw := call(t, env.app, fiber.MethodPost, "/auth/register", "",
		map[string]string{"email": "ann@x.com", "password": "pw"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"name, email and password are required"}`, string(raw))

	status, raw = call(t, env.app, fiber.MethodPost, "/auth/register", "",
		map[string]string{"name": "Ann", "email": "ann@x.com", "password": strings.Repeat("x", 73)})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"password must be at most 72 bytes"}`, string(raw))
}

func TestRefreshEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ann := env.signup(t, "Ann", "ann@x.com", "pw")

	status, _ := call(t, env.app, fiber.MethodPost, "/auth/refresh", "", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = call(t, env.app, fiber.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": "garbage"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// access token presented as refresh token
	status, _ = call(t, env.app, fiber.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": ann.AccessToken})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, raw := call(t, env.app, fiber.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": ann.RefreshToken})
	require.Equal(t, fiber.StatusOK, status)
	pair := decode[auth.TokenPair](t, raw)

	status, raw = call(t, env.app, fiber.MethodGet, "/me", pair.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%q,"name":"Ann","email":"ann@x.com"}`, ann.User.ID), string(raw))
}

func TestMe_UnknownSubject(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	pair, err := env.tokens.IssuePair("6f1c7c1e-8a53-4b7e-9a51-1d7e0c4b9f00", "gone@x.com")
	require.NoError(t, err)

	status, raw := call(t, env.app, fiber.MethodGet, "/me", pair.AccessToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"user not found"}`, string(raw))

	status, raw = call(t, env.app, fiber.MethodPost, "/todos", pair.AccessToken, map[string]string{"title": "buy milk"})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"todo not found"}`, string(raw))

	status, raw = call(t, env.app, fiber.MethodGet, "/me", "not.a.jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"invalid or expired token"}`, string(raw))
}

func TestConcurrentRegistration(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	const n = 10
	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i], _ = call(t, env.app, fiber.MethodPost, "/auth/register", "",
				map[string]string{"name": "Ann", "email": "ann@x.com", "password": fmt.Sprintf("pw%d", i)})
		}()
	}
	wg.Wait()

	created, rejected := 0, 0
	for _, s := range statuses {
		switch s {
		case fiber.StatusCreated:
			created++
		case fiber.StatusBadRequest:
			rejected++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, rejected)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	status, raw := call(t, env.app, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))

	status, raw = call(t, env.app, fiber.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, string(raw), `"error"`)
}

type failingUsers struct{}

func (failingUsers) Register(context.Context, string, string, string) (*models.PublicUser, error) {
	return nil, errors.New("pq: connection refused")
}

func (failingUsers) Login(context.Context, string, string) (*services.LoginResult, error) {
	return nil, errors.New("pq: connection refused")
}

func (failingUsers) Refresh(context.Context, string) (*auth.TokenPair, error) {
	return nil, errors.New("pq: connection refused")
}

func (failingUsers) Me(context.Context, string) (*models.PublicUser, error) {
	return nil, errors.New("pq: connection refused")
}

func TestInternalErrorsStayGeneric(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	app := newApp(logging.Discard(), env.tokens, failingUsers{}, nil)

	status, raw := call(t, app, fiber.MethodPost, "/auth/register", "",
		map[string]string{"name": "Ann", "email": "ann@x.com", "password": "pw"})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"failed to register user"}`, string(raw))

	status, raw = call(t, app, fiber.MethodPost, "/auth/login", "",
		map[string]string{"email": "ann@x.com", "password": "pw"})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.NotContains(t, string(raw), "pq:")

	status, raw = call(t, app, fiber.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": "x"})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"failed to refresh token"}`, string(raw))
}
