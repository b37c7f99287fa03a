package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/lego-inventory-backend/config"
	"github.com/ikkim/lego-inventory-backend/internal/app/controller"
	"github.com/ikkim/lego-inventory-backend/internal/middleware"
)

type Router struct {
	partController    *controller.PartController
	legoSetController *controller.LegoSetController
	orderController   *controller.OrderController
	config            *config.Config
}

func NewRouter(
	partController *controller.PartController,
	legoSetController *controller.LegoSetController,
	orderController *controller.OrderController,
	cfg *config.Config,
) *Router {
	return &Router{
		partController:    partController,
		legoSetController: legoSetController,
		orderController:   orderController,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(middleware.BodyLimit(r.config.Server.MaxBodyBytes))
	router.Use(middleware.ErrorHandler())

	router.NoRoute(middleware.NotFoundHandler)

	// Images written by the local provider
	if r.config.Images.Provider == "local" {
		router.Static("/uploads", r.config.Images.LocalDir)
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"success": true,
				"status":  "healthy",
				"message": "Lego inventory API is running",
			})
		})

		api.GET("/legoset", r.legoSetController.GetAllSets)
		api.POST("/legoset/new", r.legoSetController.CreateOrUpdateSet)
		api.POST("/legoset/import", r.legoSetController.ImportSet)
		api.GET("/legoset/:id", r.legoSetController.GetSetByID)
		api.PUT("/legoset/:id", r.legoSetController.UpdateSet)
		api.DELETE("/legoset/:id", r.legoSetController.DeleteSet)
		api.PUT("/legoset/:id/image", r.legoSetController.UploadSetImage)
		api.PUT("/legoset/:id/recalculate", r.legoSetController.RecalculateSet)

		api.GET("/parts", r.partController.GetAllParts)
		api.GET("/parts/orphans", r.partController.GetOrphanParts)
		api.PUT("/parts/bulk", r.partController.BulkUpdateParts)
		api.POST("/part/new", r.partController.CreatePart)
		api.GET("/part/:id", r.partController.GetPartByID)
		api.PUT("/part/:id", r.partController.UpdatePart)
		api.DELETE("/part/:id", r.partController.DeletePart)
		api.PUT("/part/:id/image", r.partController.UploadPartImage)

		api.GET("/orders", r.orderController.GetAllOrders)
		api.POST("/orders/new", r.orderController.CreateOrders)
		api.POST("/orders/import", r.orderController.ImportOrders)
		api.GET("/orders/:id", r.orderController.GetOrderByID)
		api.PUT("/orders/:id", r.orderController.UpdateOrder)
		api.DELETE("/orders/:id", r.orderController.DeleteOrder)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
