// Package client is the CLI's gRPC connection to the taskkeeper server. It
// keeps the token pair of the current session and refreshes the access
// token transparently when the server reports it expired.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/api"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/netx"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	conn   *grpc.ClientConn
	client api.TaskKeeperClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.tokens()
	if access == "" {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" {
		return err
	}

	resp, rerr := s.client.Refresh(ctx, &api.RefreshRequest{RefreshToken: refresh})
	if rerr != nil {
		return err
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	// retry once with the new access token
	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewTaskKeeperClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) LoggedIn() bool {
	access, _ := s.tokens()
	return access != ""
}

func (s *GRPCClient) Logout() {
	s.setTokens("", "")
}

func (s *GRPCClient) Register(ctx context.Context, name, email, password string) error {
	_, err := s.client.Register(ctx, &api.RegisterRequest{Name: name, Email: email, Password: password})
	return s.mapError(err)
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (*api.User, error) {
	resp, err := s.client.Login(ctx, &api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return resp.User, nil
}

func (s *GRPCClient) Me(ctx context.Context) (*api.User, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	u, err := s.client.Me(ctx, &api.MeRequest{})
	return u, s.mapError(err)
}

func (s *GRPCClient) CreateTodo(ctx context.Context, title string) (*api.Todo, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	t, err := s.client.CreateTodo(ctx, &api.CreateTodoRequest{Title: title})
	return t, s.mapError(err)
}

func (s *GRPCClient) ListTodos(ctx context.Context) ([]*api.Todo, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	resp, err := s.client.ListTodos(ctx, &api.ListTodosRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Todos, nil
}

func (s *GRPCClient) GetTodo(ctx context.Context, id string) (*api.Todo, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	t, err := s.client.GetTodo(ctx, &api.GetTodoRequest{ID: id})
	return t, s.mapError(err)
}

func (s *GRPCClient) UpdateTodo(ctx context.Context, id string, title *string, done *bool) (*api.Todo, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	t, err := s.client.UpdateTodo(ctx, &api.UpdateTodoRequest{ID: id, Title: title, Done: done})
	return t, s.mapError(err)
}

func (s *GRPCClient) DeleteTodo(ctx context.Context, id string) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	_, err := s.client.DeleteTodo(ctx, &api.DeleteTodoRequest{ID: id})
	return s.mapError(err)
}

// UploadAttachment stores data as the todo's attachment, replacing any
// previous one.
func (s *GRPCClient) UploadAttachment(ctx context.Context, id string, data []byte) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	resp, err := s.client.AttachmentUploadURL(ctx, &api.AttachmentRequest{ID: id})
	if err != nil {
		return s.mapError(err)
	}
	return netx.Upload(ctx, resp.URL, data)
}

func (s *GRPCClient) DownloadAttachment(ctx context.Context, id string) ([]byte, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	resp, err := s.client.AttachmentDownloadURL(ctx, &api.AttachmentRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return netx.Download(ctx, resp.URL)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument, codes.AlreadyExists:
		return errors.New(st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
