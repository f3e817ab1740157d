package routes

import (
	"axone_backend/internal/handlers"
	"axone_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	jwtSecret []byte,
) {
	// Публичный API v1: подтверждение оплаты и signup-флоу
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.Provisioning.RegisterRoutes(api)
		appHandlers.Signup.RegisterRoutes(api)
	}

	// Приватная часть: требует JWT, выданный на шаге dashboard
	authorized := ginRouter.Group("/api/v1")
	authorized.Use(middleware.AuthMiddleware(jwtSecret))
	{
		appHandlers.Profile.RegisterRoutes(authorized)
	}

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
