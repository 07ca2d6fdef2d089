package handlers

import (
	"net/http"

	inventorypb "ecommerce-storefront/inventory-service/pb"
	orderpb "ecommerce-storefront/order-service/pb"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Inventory   inventorypb.InventoryServiceClient
	Order       orderpb.OrderServiceClient
	Auth        AuthService
	AuthLimiter *IPRateLimiter
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "API Gateway UP"})
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", health)

	inventoryHandler := NewInventoryHandler(deps.Inventory)
	orderHandler := NewOrderHandler(deps.Order, deps.Auth)
	authHandler := NewAuthHandler(deps.Auth)
	requireAuth := RequireAuth(deps.Auth)

	apiV1 := router.Group("/api/v1")
	apiV1.GET("/health", health)

	apiV1.GET("/products", inventoryHandler.ListProducts)
	apiV1.GET("/products/:id", inventoryHandler.GetProduct)
	apiV1.GET("/categories", inventoryHandler.ListCategories)

	authGroup := apiV1.Group("/auth")
	if deps.AuthLimiter != nil {
		authGroup.Use(deps.AuthLimiter.Middleware())
	}
	authGroup.POST("/signup", authHandler.SignUp)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", requireAuth, authHandler.Logout)
	authGroup.GET("/user", requireAuth, authHandler.CurrentUser)

	orders := apiV1.Group("/orders", requireAuth)
	orders.POST("", orderHandler.PlaceOrder)
	orders.GET("", orderHandler.ListMyOrders)
	orders.GET("/:id", orderHandler.GetOrder)

	admin := apiV1.Group("/admin", requireAuth, RequireAdmin(deps.Auth))
	admin.GET("/orders", orderHandler.AdminListOrders)
	admin.PATCH("/orders/:id/status", orderHandler.UpdateOrderStatus)
	admin.POST("/products", inventoryHandler.CreateProduct)
	admin.PUT("/products/:id", inventoryHandler.UpdateProduct)
	admin.DELETE("/products/:id", inventoryHandler.DeleteProduct)

	return router
}
