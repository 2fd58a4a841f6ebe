package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/refreshtokens"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fixture struct {
	store  *memory.Store
	tokens *auth.TokenService
	users  *UserService
	todos  *TodoService
	clock  *time.Time
}

func newFixture(t *testing.T, registry refreshtokens.Repository) *fixture {
	t.Helper()

	now := time.Now()
	clock := &now
	tokens, err := auth.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour,
		auth.WithClock(func() time.Time { return *clock }))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	store := memory.NewStore()
	log := logging.Discard()
	return &fixture{
		store:  store,
		tokens: tokens,
		users:  NewUserService(store.Users(), registry, auth.NewPasswordHasher(bcrypt.MinCost), tokens, log),
		todos:  NewTodoService(store.Todos(), &fakePresigner{}, log),
		clock:  clock,
	}
}

func (f *fixture) register(t *testing.T, name, email, password string) *models.PublicUser {
	t.Helper()
	u, err := f.users.Register(context.Background(), name, email, password)
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return u
}

type fakePresigner struct {
	putErr, getErr error
	lastKey        string
}

func (p *fakePresigner) PresignPut(_ context.Context, key string) (string, error) {
	if p.putErr != nil {
		return "", p.putErr
	}
	p.lastKey = key
	return "https://s3.local/put/" + key, nil
}

func (p *fakePresigner) PresignGet(_ context.Context, key string) (string, error) {
	if p.getErr != nil {
		return "", p.getErr
	}
	return "https://s3.local/get/" + key, nil
}
