package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	orderpb "ecommerce-storefront/order-service/pb"

	"github.com/gin-gonic/gin"
)

const (
	orderCallTimeout = 5 * time.Second
	// Placement makes several inventory calls in sequence.
	placeOrderTimeout = 15 * time.Second
)

type OrderHandler struct {
	client orderpb.OrderServiceClient
	auth   AuthService
}

func NewOrderHandler(client orderpb.OrderServiceClient, auth AuthService) *OrderHandler {
	return &OrderHandler{client: client, auth: auth}
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	claims := claimsFrom(c)
	requestInfo := fmt.Sprintf("PlaceOrder (User: %s)", claims.UserID())

	var reqBody struct {
		Items []struct {
			ProductID int64 `json:"product_id" binding:"required,gt=0"`
			Quantity  int32 `json:"quantity" binding:"required,gt=0"`
		} `json:"items" binding:"required,min=1,dive"`
		Total *float64 `json:"total"`
	}
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		log.Printf("API Gateway: Invalid input for %s: %v", requestInfo, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	grpcItems := make([]*orderpb.OrderItemInput, len(reqBody.Items))
	for i, item := range reqBody.Items {
		grpcItems[i] = &orderpb.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), placeOrderTimeout)
	defer cancel()

	log.Printf("API Gateway: Calling gRPC %s with %d items", requestInfo, len(grpcItems))
	resp, err := h.client.PlaceOrder(ctx, &orderpb.PlaceOrderRequest{
		UserID:        claims.UserID(),
		Items:         grpcItems,
		DeclaredTotal: reqBody.Total,
	})
	if err != nil {
		mapGrpcToHttpError(c, err, requestInfo)
		return
	}

	log.Printf("API Gateway: gRPC %s successful, order ID: %s", requestInfo, resp.Order.ID)
	c.JSON(http.StatusCreated, resp.Order)
}

// GetOrder returns an order to its owner or to an admin. Other callers get
// the same 404 as for a missing order.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	claims := claimsFrom(c)
	orderID := c.Param("id")
	requestInfo := fmt.Sprintf("GetOrder (ID: %s)", orderID)

	ctx, cancel := context.WithTimeout(c.Request.Context(), orderCallTimeout)
	defer cancel()

	resp, err := h.client.GetOrder(ctx, &orderpb.GetOrderRequest{ID: orderID})
	if err != nil {
		mapGrpcToHttpError(c, err, requestInfo)
		return
	}

	if resp.Order.UserID != claims.UserID() {
		isAdmin, err := h.auth.IsAdmin(ctx, claims.UserID())
		if err != nil || !isAdmin {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
	}
	c.JSON(http.StatusOK, resp.Order)
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	claims := claimsFrom(c)
	requestInfo := fmt.Sprintf("ListUserOrders (User: %s)", claims.UserID())
	pageNum, pageSize, ok := pageParams(c, 10)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), orderCallTimeout)
	defer cancel()

	resp, err := h.client.ListUserOrders(ctx, &orderpb.ListUserOrdersRequest{
		UserID:     claims.UserID(),
		PageSize:   int32(pageSize),
		PageNumber: int32(pageNum),
	})
	if err != nil {
		mapGrpcToHttpError(c, err, requestInfo)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Orders,
		"total":     resp.TotalCount,
		"page":      pageNum,
		"page_size": pageSize,
	})
}

func (h *OrderHandler) AdminListOrders(c *gin.Context) {
	requestInfo := "ListOrders"
	pageNum, pageSize, ok := pageParams(c, 20)
	if !ok {
		return
	}

	grpcReq := &orderpb.ListOrdersRequest{
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		Sort:       c.Query("sort"),
		PageSize:   int32(pageSize),
		PageNumber: int32(pageNum),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), orderCallTimeout)
	defer cancel()

	log.Printf("API Gateway: Calling gRPC %s with params: %+v", requestInfo, grpcReq)
	resp, err := h.client.ListOrders(ctx, grpcReq)
	if err != nil {
		mapGrpcToHttpError(c, err, requestInfo)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Orders,
		"total":     resp.TotalCount,
		"page":      pageNum,
		"page_size": pageSize,
	})
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	requestInfo := fmt.Sprintf("UpdateOrderStatus (ID: %s)", orderID)

	var reqBody struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		log.Printf("API Gateway: Invalid input for %s: %v", requestInfo, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), orderCallTimeout)
	defer cancel()

	log.Printf("API Gateway: Calling gRPC %s with status %s", requestInfo, reqBody.Status)
	resp, err := h.client.UpdateOrderStatus(ctx, &orderpb.UpdateOrderStatusRequest{ID: orderID, Status: reqBody.Status})
	if err != nil {
		mapGrpcToHttpError(c, err, requestInfo)
		return
	}

	log.Printf("API Gateway: gRPC %s successful", requestInfo)
	c.JSON(http.StatusOK, resp.Order)
}
