package proto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

type echoServer struct{}

func (echoServer) Register(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return Strings(map[string]string{"method": "Register", "username": String(in, "username")}), nil
}

func (echoServer) Login(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return Strings(map[string]string{"method": "Login"}), nil
}

func (echoServer) WhoAmI(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return Strings(map[string]string{"method": "WhoAmI"}), nil
}

func TestHelpers(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"token": "t",
		"count": 3,
		"user":  map[string]any{"id": "u1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "t", String(s, "token"))
	assert.Equal(t, "", String(s, "count"))
	assert.Equal(t, "", String(s, "missing"))
	assert.Equal(t, "", String(nil, "token"))
	assert.Equal(t, "u1", String(Object(s, "user"), "id"))
	assert.Nil(t, Object(s, "token"))
	assert.Nil(t, Object(nil, "user"))
}

func TestServiceDesc_HandlersDispatch(t *testing.T) {
	dec := func(v any) error {
		v.(*structpb.Struct).Fields = Strings(map[string]string{"username": "alice"}).Fields
		return nil
	}

	for _, m := range AuthServiceDesc.Methods {
		out, err := m.Handler(echoServer{}, context.Background(), dec, nil)
		require.NoError(t, err)
		assert.Equal(t, m.MethodName, String(out.(*structpb.Struct), "method"))
	}
}

func TestServiceDesc_HandlerRunsInterceptor(t *testing.T) {
	dec := func(v any) error { return nil }
	var seen string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = info.FullMethod
		return handler(ctx, req)
	}

	out, err := AuthServiceDesc.Methods[2].Handler(echoServer{}, context.Background(), dec, interceptor)
	require.NoError(t, err)
	assert.Equal(t, MethodWhoAmI, seen)
	assert.Equal(t, "WhoAmI", String(out.(*structpb.Struct), "method"))
}
