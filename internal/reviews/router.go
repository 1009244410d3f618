package reviews

import (
	"github.com/gin-gonic/gin"

	"parkwise/internal/shared/middleware"
)

func SetupReviewRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public listing under the lot resource
	rg.GET("/lots/:id/reviews", controller.GetLotReviews)

	// Authenticated review management
	rg.POST("/lots/:id/reviews", middleware.JWTAuth(), controller.CreateReview)

	reviews := rg.Group("/reviews")
	reviews.Use(middleware.JWTAuth())
	{
		reviews.PUT("/:id", controller.UpdateReview)
		reviews.DELETE("/:id", controller.DeleteReview)
	}
}
