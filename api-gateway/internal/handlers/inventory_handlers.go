package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	inventorypb "ecommerce-storefront/inventory-service/pb"

	"github.com/gin-gonic/gin"
)

const inventoryCallTimeout = 5 * time.Second

type InventoryHandler struct {
	client inventorypb.InventoryServiceClient
}

func NewInventoryHandler(client inventorypb.InventoryServiceClient) *InventoryHandler {
	return &InventoryHandler{client: client}
}

type productBody struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int32   `json:"stock" binding:"gte=0"`
}

func productIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Printf("API Gateway: Invalid product ID %q", c.Param("id"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID must be a positive integer"})
		return 0, false
	}
	return id, true
}

// pageParams reads page and page_size, defaulting to page 1 of defaultSize.
func pageParams(c *gin.Context, defaultSize int) (pageNum, pageSize int64, ok bool) {
	pageSizeStr := c.DefaultQuery("page_size", strconv.Itoa(defaultSize))
	pageNumStr := c.DefaultQuery("page", "1")

	pageSize, err1 := strconv.ParseInt(pageSizeStr, 10, 32)
	pageNum, err2 := strconv.ParseInt(pageNumStr, 10, 32)
	if err1 != nil || err2 != nil || pageSize <= 0 || pageNum <= 0 {
		log.Printf("API Gateway: Invalid pagination parameters: page_size=%s, page=%s", pageSizeStr, pageNumStr)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters. 'page_size' and 'page' must be positive integers."})
		return 0, 0, false
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return pageNum, pageSize, true
}

func optionalFloat(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("'%s' must be a non-negative number", key)
	}
	return &v, nil
}

// categoryParams accepts both repeated ?category= values and a comma list.
func categoryParams(c *gin.Context) []string {
	var out []string
	for _, raw := range c.QueryArray("category") {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func (h *InventoryHandler) ListProducts(c *gin.Context) {
	requestInfo := "ListProducts"
	pageNum, pageSize, ok := pageParams(c, 12)
	if !ok {
		return
	}

	minPrice, err := optionalFloat(c, "min_price")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	maxPrice, err := optionalFloat(c, "max_price")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inStock := false
	if raw := c.Query("in_stock"); raw != "" {
		if inStock, err = strconv.ParseBool(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "'in_stock' must be true or false"})
			return
		}
	}

	grpcReq := &inventorypb.ListProductsRequest{
		Categories:  categoryParams(c),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		InStockOnly: inStock,
		Search:      c.Query("search"),
		Sort:        c.Query("sort"),
		PageSize:    int32(pageSize),
		PageNumber:  int32(pageNum),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), inventoryCallTimeout)
	defer cancel()

	log.Printf("API Gateway: Calling gRPC %s with params: %+v", requestInfo, grpcReq)
	resp, err := h.client.ListProducts(ctx, grpcReq)
	if err != nil {
		mapGrpcToHttpError(c, err, requestInfo)
		return
	}

	log.Printf("API Gateway: gRPC %s successful, found %d products (total: %d)", requestInfo, len(resp.Products), resp.TotalCount)
	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Products,
		"total":     resp.TotalCount,
		"page":      pageNum,
		"page_size": pageSize,
	})
}

func (h *InventoryHandler) GetProduct(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	requestInfo := fmt.Sprintf("GetProduct (ID: %d)", productID)

	ctx, cancel := context.WithTimeout(c.Request.Context(), inventoryCallTimeout)
	defer cancel()

	resp, err := h.client.GetProduct(ctx, &inventorypb.GetProductRequest{ID: productID})
	if err != nil {
		mapGrpcToHttpError(c, err, requestInfo)
		return
	}
	c.JSON(http.StatusOK, resp.Product)
}

func (h *InventoryHandler) ListCategories(c *gin.Context) {
	requestInfo := "ListCategories"

	ctx, cancel := context.WithTimeout(c.Request.Context(), inventoryCallTimeout)
	defer cancel()

	resp, err := h.client.ListCategories(ctx, &inventorypb.ListCategoriesRequest{})
	if err != nil {
		mapGrpcToHttpError(c, err, requestInfo)
		return
	}

	log.Printf("API Gateway: gRPC %s successful, found %d categories", requestInfo, len(resp.Categories))
	categories := resp.Categories
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, categories)
}

func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	requestInfo := "CreateProduct"
	var reqBody productBody
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		log.Printf("API Gateway: Invalid input for %s: %v", requestInfo, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	grpcReq := &inventorypb.CreateProductRequest{
		Name:        reqBody.Name,
		Description: reqBody.Description,
		Category:    reqBody.Category,
		ImageURL:    reqBody.ImageURL,
		Price:       reqBody.Price,
		Stock:       reqBody.Stock,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), inventoryCallTimeout)
	defer cancel()

	resp, err := h.client.CreateProduct(ctx, grpcReq)
	if err != nil {
		mapGrpcToHttpError(c, err, requestInfo)
		return
	}

	log.Printf("API Gateway: gRPC %s successful, product ID: %d", requestInfo, resp.Product.ID)
	c.JSON(http.StatusCreated, resp.Product)
}

func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	requestInfo := fmt.Sprintf("UpdateProduct (ID: %d)", productID)

	var reqBody productBody
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		log.Printf("API Gateway: Invalid input for %s: %v", requestInfo, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	grpcReq := &inventorypb.UpdateProductRequest{
		ID:          productID,
		Name:        reqBody.Name,
		Description: reqBody.Description,
		Category:    reqBody.Category,
		ImageURL:    reqBody.ImageURL,
		Price:       reqBody.Price,
		Stock:       reqBody.Stock,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), inventoryCallTimeout)
	defer cancel()

	resp, err := h.client.UpdateProduct(ctx, grpcReq)
	if err != nil {
		mapGrpcToHttpError(c, err, requestInfo)
		return
	}
	c.JSON(http.StatusOK, resp.Product)
}

func (h *InventoryHandler) DeleteProduct(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	requestInfo := fmt.Sprintf("DeleteProduct (ID: %d)", productID)

	ctx, cancel := context.WithTimeout(c.Request.Context(), inventoryCallTimeout)
	defer cancel()

	if _, err := h.client.DeleteProduct(ctx, &inventorypb.DeleteProductRequest{ID: productID}); err != nil {
		mapGrpcToHttpError(c, err, requestInfo)
		return
	}

	log.Printf("API Gateway: gRPC %s successful", requestInfo)
	c.Status(http.StatusNoContent)
}
