package repository

import (
	"regexp"
	"strings"

	"ecommerce-storefront/order-service/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func orderFilter(q domain.OrderQuery) bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}

	search := strings.TrimSpace(q.Search)
	if search == "" {
		return filter
	}
	byUser := bson.M{"user_id": primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}}
	if oid, err := primitive.ObjectIDFromHex(search); err == nil {
		filter["$or"] = bson.A{bson.M{"_id": oid}, byUser}
	} else {
		filter["$or"] = bson.A{byUser}
	}
	return filter
}

func orderSort(s domain.OrderSort) bson.D {
	switch s {
	case domain.SortOldest:
		return bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	case domain.SortTotalDesc:
		return bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: -1}}
	case domain.SortTotalAsc:
		return bson.D{{Key: "total", Value: 1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}
