package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	pb "github.com/dmitrijs2005/shopkeeper/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Profile is the account returned by Register and Login.
type Profile struct {
	ID       string
	UserName string
	Name     string
}

// Identity is what the server reads back from the access token.
type Identity struct {
	ID       string
	UserName string
	Role     string
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *pb.AuthServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a lazy connection to endpointURL. Extra dial
// options are appended after the defaults (insecure transport and the token
// interceptor).
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewAuthServiceClient(conn)
	return c, nil
}

// Token returns the access token of the current session, or "".
func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Register(ctx context.Context, userName, password, name string) (*Profile, error) {
	req := pb.Strings(map[string]string{"username": userName, "password": password, "name": name})

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return profileFrom(resp), nil
}

// Login authenticates and keeps the returned token for later calls. The
// server's message is returned on success and carried in the error
// otherwise.
func (s *GRPCClient) Login(ctx context.Context, userName, password string) (*Profile, string, error) {
	req := pb.Strings(map[string]string{"username": userName, "password": password})

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, "", s.mapError(err)
	}

	s.setToken(pb.String(resp, "token"))
	return profileFrom(pb.Object(resp, "user")), pb.String(resp, "message"), nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*Identity, error) {
	if s.Token() == "" {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.WhoAmI(ctx, pb.Strings(nil))
	if err != nil {
		return nil, s.mapError(err)
	}
	return &Identity{
		ID:       pb.String(resp, "id"),
		UserName: pb.String(resp, "username"),
		Role:     pb.String(resp, "role"),
	}, nil
}

// Logout forgets the access token. Tokens are stateless, so the server is
// not contacted.
func (s *GRPCClient) Logout() {
	s.setToken("")
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func profileFrom(s *structpb.Struct) *Profile {
	if s == nil {
		return nil
	}
	return &Profile{
		ID:       pb.String(s, "id"),
		UserName: pb.String(s, "username"),
		Name:     pb.String(s, "name"),
	}
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
