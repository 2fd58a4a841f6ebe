package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/api"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

type stubPresigner struct{}

func (stubPresigner) PresignPut(_ context.Context, key string) (string, error) {
	return "https://s3.local/put/" + key, nil
}

func (stubPresigner) PresignGet(_ context.Context, key string) (string, error) {
	return "https://s3.local/get/" + key, nil
}

type testEnv struct {
	conn   *grpc.ClientConn
	client api.TaskKeeperClient
	clock  *time.Time
}

func newBufServer(t *testing.T) *testEnv {
	t.Helper()

	now := time.Now()
	clock := &now
	tokens, err := auth.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour,
		auth.WithClock(func() time.Time { return *clock }))
	require.NoError(t, err)

	log := logging.Discard()
	store := memory.NewStore()
	users := services.NewUserService(store.Users(), nil, auth.NewPasswordHasher(bcrypt.MinCost), tokens, log)
	todos := services.NewTodoService(store.Todos(), stubPresigner{}, log)

	s := NewGRPCServer("bufnet", log, users, todos, auth.NewVerifier(tokens))
	srv := s.NewServer()

	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testEnv{conn: conn, client: api.NewTaskKeeperClient(conn), clock: clock}
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func (e *testEnv) signup(t *testing.T, name, email, password string) *api.LoginResponse {
	t.Helper()
	ctx := context.Background()

	_, err := e.client.Register(ctx, &api.RegisterRequest{Name: name, Email: email, Password: password})
	require.NoError(t, err)

	resp, err := e.client.Login(ctx, &api.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
	return resp
}
