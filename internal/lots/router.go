package lots

import (
	"github.com/gin-gonic/gin"

	"parkwise/internal/shared/middleware"
)

func SetupLotRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public browsing routes
	lots := rg.Group("/lots")
	{
		lots.GET("", controller.GetLots)
		lots.GET("/:id", controller.GetLot)
		lots.GET("/:id/quote", controller.GetQuote)
	}

	// Admin lot management routes
	admin := rg.Group("/admin/lots")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("", controller.CreateLot)
		admin.PUT("/:id", controller.UpdateLot)
		admin.DELETE("/:id", controller.DeleteLot)
	}
}
