package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"ecommerce-storefront/inventory-service/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productCollectionName = "products"
	counterCollectionName = "counters"
	productCounterID      = "products"
)

type MongoProductStore struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

func NewMongoProductStore(db *mongo.Database) *MongoProductStore {
	return &MongoProductStore{
		collection: db.Collection(productCollectionName),
		counters:   db.Collection(counterCollectionName),
	}
}

// nextID hands out sequential numeric product ids from the counters
// collection.
func (s *MongoProductStore) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": productCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate product id: %w", err)
	}
	return counter.Seq, nil
}

func (s *MongoProductStore) Create(ctx context.Context, product *domain.Product) error {
	id, err := s.nextID(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	product.ID = id
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	log.Printf("Inserted product with ID: %d", product.ID)
	return nil
}

func (s *MongoProductStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (s *MongoProductStore) Update(ctx context.Context, id int64, product *domain.Product) error {
	update := bson.M{
		"$set": bson.M{
			"name":        product.Name,
			"description": product.Description,
			"category":    product.Category,
			"image_url":   product.ImageURL,
			"price":       product.Price,
			"stock":       product.Stock,
			"updated_at":  time.Now().UTC(),
		},
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}
	log.Printf("Updated product ID: %d, Matched: %d, Modified: %d", id, result.MatchedCount, result.ModifiedCount)
	return nil
}

func (s *MongoProductStore) Delete(ctx context.Context, id int64) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}
	log.Printf("Deleted product ID: %d", id)
	return nil
}

func (s *MongoProductStore) List(ctx context.Context, f domain.ProductFilter, sortBy domain.SortOption, limit, offset int64) ([]*domain.Product, int64, error) {
	filter := productFilter(f)

	findOptions := options.Find().SetSort(productSort(sortBy))
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	if offset > 0 {
		findOptions.SetSkip(offset)
	}

	totalCount, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return products, totalCount, nil
}

// Categories returns the distinct non-empty product categories in
// alphabetical order.
func (s *MongoProductStore) Categories(ctx context.Context) ([]string, error) {
	values, err := s.collection.Distinct(ctx, "category", bson.M{"category": bson.M{"$nin": bson.A{nil, ""}}})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok && name != "" {
			categories = append(categories, name)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// DecrementStock removes quantity units in one conditional update: the write
// only happens while stock still covers the request, so concurrent
// decrements can never drive stock below zero.
func (s *MongoProductStore) DecrementStock(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	filter := bson.M{"_id": id, "stock": bson.M{"$gte": quantity}}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product domain.Product
	err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product)
	if err == nil {
		log.Printf("Decremented stock of product %d by %d, now %d", id, quantity, product.Stock)
		return &product, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	// No match: either the product is gone or it is short on stock.
	current, getErr := s.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: product %d has %d, requested %d", domain.ErrInsufficientStock, id, current.Stock, quantity)
}

// IncrementStock returns units to a product. It only backs out decrements
// made by a failed order placement.
func (s *MongoProductStore) IncrementStock(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	update := bson.M{
		"$inc": bson.M{"stock": quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product domain.Product
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to restock product: %w", err)
	}
	log.Printf("Restocked product %d by %d, now %d", id, quantity, product.Stock)
	return &product, nil
}
