package handlers

import (
	"context"
	"time"

	"ecommerce-storefront/api-gateway/internal/auth"
	inventorypb "ecommerce-storefront/inventory-service/pb"
	orderpb "ecommerce-storefront/order-service/pb"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type fakeInventory struct {
	inventorypb.InventoryServiceClient
	products   map[int64]*inventorypb.Product
	lastList   *inventorypb.ListProductsRequest
	lastCreate *inventorypb.CreateProductRequest
	lastUpdate *inventorypb.UpdateProductRequest
	listErr    error
	deletedIDs []int64
	categories []string
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		products: map[int64]*inventorypb.Product{
			1: {ID: 1, Name: "Kite", Category: "toys", Price: 10, Stock: 3},
		},
		categories: []string{"books", "toys"},
	}
}

func (f *fakeInventory) ListProducts(_ context.Context, in *inventorypb.ListProductsRequest, _ ...grpc.CallOption) (*inventorypb.ListProductsResponse, error) {
	f.lastList = in
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &inventorypb.ListProductsResponse{Products: []*inventorypb.Product{f.products[1]}, TotalCount: 1}, nil
}

func (f *fakeInventory) GetProduct(_ context.Context, in *inventorypb.GetProductRequest, _ ...grpc.CallOption) (*inventorypb.ProductResponse, error) {
	p, ok := f.products[in.ID]
	if !ok {
		return nil, status.Error(codes.NotFound, "product not found")
	}
	return &inventorypb.ProductResponse{Product: p}, nil
}

func (f *fakeInventory) ListCategories(context.Context, *inventorypb.ListCategoriesRequest, ...grpc.CallOption) (*inventorypb.ListCategoriesResponse, error) {
	return &inventorypb.ListCategoriesResponse{Categories: f.categories}, nil
}

func (f *fakeInventory) CreateProduct(_ context.Context, in *inventorypb.CreateProductRequest, _ ...grpc.CallOption) (*inventorypb.ProductResponse, error) {
	f.lastCreate = in
	return &inventorypb.ProductResponse{Product: &inventorypb.Product{ID: 2, Name: in.Name, Price: in.Price, Stock: in.Stock}}, nil
}

func (f *fakeInventory) UpdateProduct(_ context.Context, in *inventorypb.UpdateProductRequest, _ ...grpc.CallOption) (*inventorypb.ProductResponse, error) {
	if _, ok := f.products[in.ID]; !ok {
		return nil, status.Error(codes.NotFound, "product not found")
	}
	f.lastUpdate = in
	return &inventorypb.ProductResponse{Product: &inventorypb.Product{ID: in.ID, Name: in.Name, Price: in.Price, Stock: in.Stock}}, nil
}

func (f *fakeInventory) DeleteProduct(_ context.Context, in *inventorypb.DeleteProductRequest, _ ...grpc.CallOption) (*emptypb.Empty, error) {
	f.deletedIDs = append(f.deletedIDs, in.ID)
	return &emptypb.Empty{}, nil
}

type fakeOrders struct {
	orderpb.OrderServiceClient
	orders    map[string]*orderpb.Order
	lastPlace *orderpb.PlaceOrderRequest
	lastList  *orderpb.ListOrdersRequest
	placeErr  error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[string]*orderpb.Order{
		"o-alice": {ID: "o-alice", UserID: "alice", Total: 22, Status: "pending"},
	}}
}

func (f *fakeOrders) PlaceOrder(_ context.Context, in *orderpb.PlaceOrderRequest, _ ...grpc.CallOption) (*orderpb.OrderResponse, error) {
	f.lastPlace = in
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	return &orderpb.OrderResponse{Order: &orderpb.Order{ID: "o-new", UserID: in.UserID, Status: "pending"}}, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, in *orderpb.GetOrderRequest, _ ...grpc.CallOption) (*orderpb.OrderResponse, error) {
	o, ok := f.orders[in.ID]
	if !ok {
		return nil, status.Error(codes.NotFound, "order not found")
	}
	return &orderpb.OrderResponse{Order: o}, nil
}

func (f *fakeOrders) ListUserOrders(_ context.Context, in *orderpb.ListUserOrdersRequest, _ ...grpc.CallOption) (*orderpb.ListOrdersResponse, error) {
	var out []*orderpb.Order
	for _, o := range f.orders {
		if o.UserID == in.UserID {
			out = append(out, o)
		}
	}
	return &orderpb.ListOrdersResponse{Orders: out, TotalCount: int64(len(out))}, nil
}

func (f *fakeOrders) ListOrders(_ context.Context, in *orderpb.ListOrdersRequest, _ ...grpc.CallOption) (*orderpb.ListOrdersResponse, error) {
	f.lastList = in
	return &orderpb.ListOrdersResponse{Orders: []*orderpb.Order{f.orders["o-alice"]}, TotalCount: 1}, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, in *orderpb.UpdateOrderStatusRequest, _ ...grpc.CallOption) (*orderpb.OrderResponse, error) {
	o, ok := f.orders[in.ID]
	if !ok {
		return nil, status.Error(codes.NotFound, "order not found")
	}
	if in.Status == "lost" {
		return nil, status.Error(codes.InvalidArgument, "invalid order status")
	}
	o.Status = in.Status
	return &orderpb.OrderResponse{Order: o}, nil
}

// fakeAuth accepts tokens of the form "token-<user>"; "boss" is the admin.
type fakeAuth struct {
	loggedOut []string
}

func claimsFor(user string) *auth.Claims {
	return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   user,
		ID:        "jti-" + user,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string) (*auth.Session, error) {
	if len(password) < 6 {
		return nil, auth.ErrInvalidInput
	}
	if email == "taken@example.com" {
		return nil, auth.ErrEmailTaken
	}
	return &auth.Session{Token: "token-new", User: auth.UserView{ID: "new", Email: email}}, nil
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*auth.Session, error) {
	if password != "hunter22" {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.Session{Token: "token-alice", User: auth.UserView{ID: "alice", Email: email}}, nil
}

func (f *fakeAuth) Logout(_ context.Context, claims *auth.Claims) error {
	f.loggedOut = append(f.loggedOut, claims.ID)
	return nil
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, auth.ErrInvalidToken
	}
	return claimsFor(token[len(prefix):]), nil
}

func (f *fakeAuth) CurrentUser(_ context.Context, userID string) (*auth.UserView, error) {
	return &auth.UserView{ID: userID, Email: userID + "@example.com", Profile: &auth.Profile{UserID: userID, IsAdmin: userID == "boss"}}, nil
}

func (f *fakeAuth) IsAdmin(_ context.Context, userID string) (bool, error) {
	return userID == "boss", nil
}
