package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	pb "github.com/dmitrijs2005/shopkeeper/internal/proto"
	"github.com/dmitrijs2005/shopkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"google.golang.org/grpc"
)

// AuthService is the part of services.AuthService exposed over gRPC.
type AuthService interface {
	Login(ctx context.Context, userName, password string) (*models.LoginResult, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error)
	Authenticate(ctx context.Context, token string) (*models.TokenClaims, error)
}

type GRPCServer struct {
	address    string
	auth       AuthService
	logger     logging.Logger
	metrics    *metrics.Metrics
	hideReason bool
}

func NewGRPCServer(a string, l logging.Logger, as AuthService, m *metrics.Metrics, hideLoginFailureReason bool) *GRPCServer {
	if m == nil {
		m = metrics.New()
	}
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		auth:       as,
		metrics:    m,
		hideReason: hideLoginFailureReason,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))
	pb.RegisterAuthServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
