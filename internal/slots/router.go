package slots

import (
	"github.com/gin-gonic/gin"

	"parkwise/internal/shared/middleware"
)

func SetupSlotRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public slot browsing per lot
	lots := rg.Group("/lots")
	{
		lots.GET("/:id/slots", controller.ListSlots)
		lots.GET("/:id/slots/:slotId", controller.GetSlot)
	}

	// Admin slot management
	admin := rg.Group("/admin/lots")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("/:id/slots", controller.AddSlots)
		admin.DELETE("/:id/slots/:slotId", controller.RemoveSlot)
		admin.PUT("/:id/slots/:slotId/maintenance", controller.SetMaintenance)
	}
}
