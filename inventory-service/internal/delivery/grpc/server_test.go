package grpc

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"testing"

	"ecommerce-storefront/inventory-service/internal/domain"
	pb "ecommerce-storefront/inventory-service/pb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type memoryStore struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	nextID   int64

	lastFilter domain.ProductFilter
	lastSort   domain.SortOption
	lastLimit  int64
	lastOffset int64
}

func newMemoryStore(products ...*domain.Product) *memoryStore {
	s := &memoryStore{products: map[int64]*domain.Product{}}
	for _, p := range products {
		s.products[p.ID] = p
		if p.ID > s.nextID {
			s.nextID = p.ID
		}
	}
	return s
}

func (s *memoryStore) Create(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (s *memoryStore) Update(_ context.Context, id int64, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}
	cp := *p
	cp.ID = id
	s.products[id] = &cp
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}
	delete(s.products, id)
	return nil
}

func (s *memoryStore) List(_ context.Context, f domain.ProductFilter, sortBy domain.SortOption, limit, offset int64) ([]*domain.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter, s.lastSort, s.lastLimit, s.lastOffset = f, sortBy, limit, offset
	out := make([]*domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *memoryStore) Categories(context.Context) ([]string, error) {
	return []string{"books", "toys"}, nil
}

func (s *memoryStore) DecrementStock(_ context.Context, id int64, qty int) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}
	if p.Stock < qty {
		return nil, fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, id)
	}
	p.Stock -= qty
	cp := *p
	return &cp, nil
}

func (s *memoryStore) IncrementStock(_ context.Context, id int64, qty int) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}
	p.Stock += qty
	cp := *p
	return &cp, nil
}

func startServer(t *testing.T, store ProductStore) pb.InventoryServiceClient {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpclib.NewServer()
	pb.RegisterInventoryServiceServer(srv, NewInventoryServer(store))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return pb.NewInventoryServiceClient(conn)
}

func TestInventoryServerProductLifecycle(t *testing.T) {
	client := startServer(t, newMemoryStore())
	ctx := context.Background()

	created, err := client.CreateProduct(ctx, &pb.CreateProductRequest{
		Name: " Kite ", Category: "toys", Price: 12.5, Stock: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Product.ID)
	assert.Equal(t, "Kite", created.Product.Name)

	got, err := client.GetProduct(ctx, &pb.GetProductRequest{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(4), got.Product.Stock)

	updated, err := client.UpdateProduct(ctx, &pb.UpdateProductRequest{
		ID: 1, Name: "Big Kite", Category: "toys", Price: 20, Stock: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Big Kite", updated.Product.Name)
	assert.Equal(t, 20.0, updated.Product.Price)

	_, err = client.DeleteProduct(ctx, &pb.DeleteProductRequest{ID: 1})
	require.NoError(t, err)

	_, err = client.GetProduct(ctx, &pb.GetProductRequest{ID: 1})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestInventoryServerValidation(t *testing.T) {
	client := startServer(t, newMemoryStore())
	ctx := context.Background()

	_, err := client.CreateProduct(ctx, &pb.CreateProductRequest{Name: "", Price: 1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.CreateProduct(ctx, &pb.CreateProductRequest{Name: "Kite", Price: 0})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.CreateProduct(ctx, &pb.CreateProductRequest{Name: "Kite", Price: 1, Stock: -1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.GetProduct(ctx, &pb.GetProductRequest{ID: 0})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.DecrementStock(ctx, &pb.StockRequest{ProductID: 1, Quantity: 0})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestInventoryServerListProducts(t *testing.T) {
	store := newMemoryStore(
		&domain.Product{ID: 1, Name: "Kite", Price: 10, Stock: 1},
		&domain.Product{ID: 2, Name: "Yo-yo", Price: 3, Stock: 0},
	)
	client := startServer(t, store)
	ctx := context.Background()

	minPrice := 2.0
	resp, err := client.ListProducts(ctx, &pb.ListProductsRequest{
		Categories: []string{"toys"},
		MinPrice:   &minPrice,
		Sort:       "price_asc",
		PageSize:   500,
		PageNumber: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalCount)
	assert.Len(t, resp.Products, 2)

	assert.Equal(t, []string{"toys"}, store.lastFilter.Categories)
	assert.Equal(t, 2.0, *store.lastFilter.MinPrice)
	assert.Equal(t, domain.SortPriceAsc, store.lastSort)
	assert.Equal(t, int64(maxPageSize), store.lastLimit)
	assert.Equal(t, int64(maxPageSize), store.lastOffset)

	_, err = client.ListProducts(ctx, &pb.ListProductsRequest{Sort: "random"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	maxPrice := 1.0
	_, err = client.ListProducts(ctx, &pb.ListProductsRequest{MinPrice: &minPrice, MaxPrice: &maxPrice})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestInventoryServerListCategories(t *testing.T) {
	client := startServer(t, newMemoryStore())

	resp, err := client.ListCategories(context.Background(), &pb.ListCategoriesRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"books", "toys"}, resp.Categories)
}

func TestInventoryServerStockMovements(t *testing.T) {
	client := startServer(t, newMemoryStore(&domain.Product{ID: 7, Name: "Kite", Price: 10, Stock: 3}))
	ctx := context.Background()

	resp, err := client.DecrementStock(ctx, &pb.StockRequest{ProductID: 7, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(1), resp.Product.Stock)

	_, err = client.DecrementStock(ctx, &pb.StockRequest{ProductID: 7, Quantity: 2})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.DecrementStock(ctx, &pb.StockRequest{ProductID: 99, Quantity: 1})
	assert.Equal(t, codes.NotFound, status.Code(err))

	resp, err = client.RestockProduct(ctx, &pb.StockRequest{ProductID: 7, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(3), resp.Product.Stock)
}
