package pb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type echoServer struct {
	UnimplementedInventoryServiceServer
}

func (echoServer) GetProduct(_ context.Context, in *GetProductRequest) (*ProductResponse, error) {
	return &ProductResponse{Product: &Product{ID: in.ID, Name: "Kite"}}, nil
}

func methodHandler(t *testing.T, name string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	t.Helper()
	for _, m := range InventoryService_ServiceDesc.Methods {
		if m.MethodName == name {
			return m.Handler
		}
	}
	t.Fatalf("no method %s", name)
	return nil
}

func decodeID(id int64) func(any) error {
	return func(v any) error {
		v.(*GetProductRequest).ID = id
		return nil
	}
}

func TestServiceDescHandlers(t *testing.T) {
	ctx := context.Background()
	handler := methodHandler(t, "GetProduct")

	resp, err := handler(echoServer{}, ctx, decodeID(7), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.(*ProductResponse).Product.ID)

	var seen *grpc.UnaryServerInfo
	intercept := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		seen = info
		return next(ctx, req)
	}
	resp, err = handler(echoServer{}, ctx, decodeID(9), intercept)
	require.NoError(t, err)
	assert.Equal(t, int64(9), resp.(*ProductResponse).Product.ID)
	require.NotNil(t, seen)
	assert.Equal(t, InventoryService_GetProduct_FullMethodName, seen.FullMethod)

	_, err = methodHandler(t, "DeleteProduct")(echoServer{}, ctx, func(any) error { return nil }, nil)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
