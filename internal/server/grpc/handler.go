package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	pb "github.com/dmitrijs2005/shopkeeper/internal/proto"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps service errors onto gRPC codes without leaking internals.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrDependency):
		s.logger.Error(ctx, "dependency failure", logging.ErrAttrs(err)...)
		return status.Error(codes.Unavailable, "service unavailable")
	default:
		s.logger.Error(ctx, "request failed", logging.ErrAttrs(err)...)
		return status.Error(codes.Internal, "internal error")
	}
}

func profileStruct(p *models.UserProfile) *structpb.Struct {
	return pb.Strings(map[string]string{"id": p.ID, "username": p.UserName, "name": p.Name})
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.logger.Info(ctx, "Registration request")

	profile, err := s.auth.Register(ctx, models.RegisterRequest{
		UserName: pb.String(req, "username"),
		Password: pb.String(req, "password"),
		Name:     pb.String(req, "name"),
		Role:     pb.String(req, "role"),
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", profile.ID)
	return profileStruct(profile), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.auth.Login(ctx, pb.String(req, "username"), pb.String(req, "password"))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.metrics.Logins.WithLabelValues(res.Message).Inc()

	if s.hideReason {
		res = services.ConcealLoginFailure(res)
	}
	if !res.Succeeded() {
		return nil, status.Error(codes.Unauthenticated, res.Message)
	}

	out := pb.Strings(map[string]string{"token": res.Token, "message": res.Message})
	if res.User != nil {
		out.Fields["user"] = structpb.NewStructValue(profileStruct(res.User))
	}
	return out, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	return pb.Strings(map[string]string{"id": claims.UserID, "username": claims.UserName, "role": claims.Role}), nil
}
