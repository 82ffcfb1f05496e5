package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/failvault/internal/common"
	pb "github.com/dmitrijs2005/failvault/internal/proto"
	"github.com/dmitrijs2005/failvault/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const adminKey ctxKey = "admin"

// adminMethods require an admin access token.
var adminMethods = map[string]struct{}{
	pb.CatalogService_DeleteRecord_FullMethodName: {},
}

func adminFromContext(ctx context.Context) string {
	v, _ := ctx.Value(adminKey).(string)
	return v
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if _, ok := adminMethods[info.FullMethod]; !ok {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := auth.ParseAdminToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	return handler(context.WithValue(ctx, adminKey, claims.Address), req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if s.metrics == nil {
		return handler(ctx, req)
	}

	s.metrics.InFlight(1)
	defer s.metrics.InFlight(-1)

	start := time.Now()
	resp, err := handler(ctx, req)
	s.metrics.ObserveRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
	return resp, err
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	if code == codes.OK || code == codes.NotFound {
		s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", code.String(), "elapsed", time.Since(start))
	} else {
		s.logger.Warn(ctx, "rpc failed", "method", info.FullMethod, "code", code.String(), "elapsed", time.Since(start))
	}
	return resp, err
}
