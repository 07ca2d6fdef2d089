package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ecommerce-storefront/order-service/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const orderCollectionName = "orders"

type MongoOrderStore struct {
	collection *mongo.Collection
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{collection: db.Collection(orderCollectionName)}
}

func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", domain.ErrInvalidOrderID, id)
	}
	return objID, nil
}

func (s *MongoOrderStore) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	log.Printf("Inserted order with ID: %v for user %s", result.InsertedID, order.UserID)
	return nil
}

func (s *MongoOrderStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var order domain.Order
	err = s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

// UpdateStatus changes the status of a single order and nothing else.
func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	objID, err := parseID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	log.Printf("Updated order status ID: %s to %s, Matched: %d, Modified: %d", id, status, result.MatchedCount, result.ModifiedCount)
	return nil
}

func (s *MongoOrderStore) ListByUserID(ctx context.Context, userID string, limit, offset int64) ([]*domain.Order, int64, error) {
	orders, total, err := s.find(ctx, bson.M{"user_id": userID}, orderSort(domain.SortNewest), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, total, nil
}

// List serves the admin dashboard across all users.
func (s *MongoOrderStore) List(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, int64, error) {
	orders, total, err := s.find(ctx, orderFilter(q), orderSort(q.Sort), q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (s *MongoOrderStore) find(ctx context.Context, filter bson.M, sort bson.D, limit, offset int64) ([]*domain.Order, int64, error) {
	findOptions := options.Find().SetSort(sort)
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	if offset > 0 {
		findOptions.SetSkip(offset)
	}

	totalCount, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, totalCount, nil
}
