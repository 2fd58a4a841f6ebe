// Package grpc exposes taskkeeper over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/taskkeeper/internal/api"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// UserService is the part of services.UserService exposed over gRPC.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Me(ctx context.Context, subjectID string) (*models.PublicUser, error)
}

// TodoService is the part of services.TodoService exposed over gRPC.
type TodoService interface {
	Create(ctx context.Context, requesterID string, in models.TodoInput) (*models.Todo, error)
	FindOwned(ctx context.Context, id, requesterID string) (*models.Todo, error)
	ListOwned(ctx context.Context, requesterID string) ([]*models.Todo, error)
	UpdateOwned(ctx context.Context, id, requesterID string, patch models.TodoPatch) (*models.Todo, error)
	DeleteOwned(ctx context.Context, id, requesterID string) error
	AttachmentUploadURL(ctx context.Context, id, requesterID string) (*services.Attachment, error)
	AttachmentDownloadURL(ctx context.Context, id, requesterID string) (*services.Attachment, error)
}

// Authenticator resolves an authorization header into an identity.
type Authenticator interface {
	Authenticate(header string) (*auth.Identity, error)
}

type GRPCServer struct {
	address  string
	users    UserService
	todos    TodoService
	verifier Authenticator
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ts TodoService, v Authenticator) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		todos:    ts,
		verifier: v,
	}
}

// NewServer builds a grpc.Server with the TaskKeeper and health services
// registered and the access token interceptor installed.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
	)

	api.RegisterTaskKeeperServer(srv, s)
	healthpb.RegisterHealthServer(srv, health.NewServer())

	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
