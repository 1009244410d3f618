package realtime

import (
	"github.com/gin-gonic/gin"
)

func SetupRealtimeRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public live availability feed per lot
	rg.GET("/lots/:id/stream", controller.StreamLotEvents)
}
