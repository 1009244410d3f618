package bookings

import (
	"github.com/gin-gonic/gin"

	"parkwise/internal/shared/middleware"
)

func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Authenticated user routes
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("", controller.CreateBooking)
		bookings.GET("/my", controller.GetMyBookings)
		bookings.GET("/:id", controller.GetBooking)
		bookings.PUT("/:id/cancel", controller.CancelBooking)
		bookings.PUT("/:id/checkin", controller.CheckIn)
		bookings.PUT("/:id/checkout", controller.CheckOut)
		bookings.POST("/:id/pay", controller.ConfirmPayment)
	}

	// Admin oversight routes. The checkin/checkout pair doubles as the
	// gate-hardware bridge, so it may drive any booking.
	admin := rg.Group("/admin/bookings")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("", controller.GetAllBookings)
		admin.PUT("/:id/cancel", controller.ForceCancel)
		admin.PUT("/:id/checkin", controller.CheckIn)
		admin.PUT("/:id/checkout", controller.CheckOut)
	}
}
