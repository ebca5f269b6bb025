package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	pb "github.com/dmitrijs2005/shopkeeper/internal/proto"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// protectedMethods need a valid access token in the metadata.
var protectedMethods = map[string]bool{
	pb.MethodWhoAmI: true,
}

func claimsFromContext(ctx context.Context) (*models.TokenClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*models.TokenClaims)
	return c, ok && c != nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.auth.Authenticate(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return handler(context.WithValue(ctx, claimsKey, claims), req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	s.metrics.GRPCRequests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	return resp, err
}
