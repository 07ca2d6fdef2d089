package repository

import (
	"context"
	"testing"
	"time"

	"ecommerce-storefront/order-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ordersNS = "order_db.orders"

func orderDoc(id primitive.ObjectID, userID string, total float64, status domain.OrderStatus) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: userID},
		{Key: "items", Value: bson.A{bson.D{
			{Key: "product_id", Value: int64(1)},
			{Key: "name", Value: "Kite"},
			{Key: "quantity", Value: 2},
			{Key: "unit_price", Value: 10.0},
			{Key: "line_total", Value: 20.0},
		}}},
		{Key: "subtotal", Value: 20.0},
		{Key: "tax", Value: 2.0},
		{Key: "total", Value: total},
		{Key: "status", Value: string(status)},
		{Key: "created_at", Value: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestMongoOrderStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create sets id and timestamps", func(mt *mtest.T) {
		store := NewMongoOrderStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		order := &domain.Order{UserID: "u1", Status: domain.StatusPending, Total: 22}
		require.NoError(mt, store.Create(ctx, order))
		assert.False(mt, order.ID.IsZero())
		assert.False(mt, order.CreatedAt.IsZero())
	})

	mt.Run("get by id decodes items", func(mt *mtest.T) {
		store := NewMongoOrderStore(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch,
			orderDoc(id, "u1", 22, domain.StatusPending)))

		order, err := store.GetByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, "u1", order.UserID)
		require.Len(mt, order.Items, 1)
		assert.Equal(mt, int64(1), order.Items[0].ProductID)
		assert.Equal(mt, domain.StatusPending, order.Status)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		store := NewMongoOrderStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch))

		_, err := store.GetByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrOrderNotFound)
	})

	mt.Run("get by id rejects malformed id", func(mt *mtest.T) {
		store := NewMongoOrderStore(mt.DB)

		_, err := store.GetByID(ctx, "not-an-id")
		assert.ErrorIs(mt, err, domain.ErrInvalidOrderID)
	})

	mt.Run("update status of missing order", func(mt *mtest.T) {
		store := NewMongoOrderStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := store.UpdateStatus(ctx, primitive.NewObjectID().Hex(), domain.StatusShipped)
		assert.ErrorIs(mt, err, domain.ErrOrderNotFound)
	})

	mt.Run("update status", func(mt *mtest.T) {
		store := NewMongoOrderStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := store.UpdateStatus(ctx, primitive.NewObjectID().Hex(), domain.StatusShipped)
		assert.NoError(mt, err)
	})

	mt.Run("admin list", func(mt *mtest.T) {
		store := NewMongoOrderStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(2)}}),
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch,
				orderDoc(primitive.NewObjectID(), "u1", 50, domain.StatusShipped),
				orderDoc(primitive.NewObjectID(), "u2", 22, domain.StatusShipped),
			),
		)

		orders, total, err := store.List(ctx, domain.OrderQuery{Status: domain.StatusShipped, Sort: domain.SortTotalDesc, Limit: 10})
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), total)
		require.Len(mt, orders, 2)
		assert.Equal(mt, 50.0, orders[0].Total)
	})

	mt.Run("list by user empty", func(mt *mtest.T) {
		store := NewMongoOrderStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(0)}}),
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch),
		)

		orders, total, err := store.ListByUserID(ctx, "nobody", 10, 0)
		require.NoError(mt, err)
		assert.Zero(mt, total)
		assert.NotNil(mt, orders)
		assert.Empty(mt, orders)
	})
}
