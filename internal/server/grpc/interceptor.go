package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/api"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// publicMethods are callable without an access token.
var publicMethods = map[string]bool{
	api.MethodRegister: true,
	api.MethodLogin:    true,
	api.MethodRefresh:  true,
}

func protected(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, "/"+api.ServiceName+"/") && !publicMethods[fullMethod]
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if !protected(info.FullMethod) {
		return handler(ctx, req)
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			header = values[0]
		}
	}

	id, err := s.verifier.Authenticate(header)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingCredential):
			return nil, status.Error(codes.Unauthenticated, "missing token")
		case errors.Is(err, common.ErrTokenExpired):
			// clients match this message to trigger a refresh
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		default:
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
	}

	return handler(auth.WithIdentity(ctx, id), req)
}
