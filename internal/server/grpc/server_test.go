package grpc

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	pb "github.com/dmitrijs2005/shopkeeper/internal/proto"
	"github.com/dmitrijs2005/shopkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

type fakeAuth struct {
	loginRes *models.LoginResult
	loginErr error
	regErr   error
	lastReg  models.RegisterRequest
}

func (f *fakeAuth) Login(context.Context, string, string) (*models.LoginResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, req models.RegisterRequest) (*models.UserProfile, error) {
	f.lastReg = req
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.UserProfile{ID: "u-1", UserName: req.UserName, Name: req.Name}, nil
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*models.TokenClaims, error) {
	switch token {
	case "good":
		return &models.TokenClaims{UserID: "u-1", UserName: "alice", Role: common.RoleUser}, nil
	case "old":
		return nil, common.ErrTokenExpired
	}
	return nil, common.ErrInvalidToken
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{loginRes: &models.LoginResult{
		Token:   "tok",
		User:    &models.UserProfile{ID: "u-1", UserName: "alice"},
		Message: services.MsgLoginSuccessful,
	}}
}

// startBufconn serves s over an in-memory listener and returns a client.
func startBufconn(t *testing.T, s *GRPCServer) *pb.AuthServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return pb.NewAuthServiceClient(conn)
}

func newTestServer(a AuthService, hide bool) *GRPCServer {
	return NewGRPCServer("bufnet", logging.Nop{}, a, metrics.New(), hide)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeAuth(), false)
	srv.address = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeAuth(), false)
	srv.address = "127.0.0.1:99999"

	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

func TestToStatus_HidesUnexpectedErrors(t *testing.T) {
	s := newTestServer(newFakeAuth(), false)
	err := s.toStatus(context.Background(), fmt.Errorf("pq: relation users does not exist"))
	require.EqualError(t, err, "rpc error: code = Internal desc = internal error")
}
