package bookings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"parkwise/internal/shared/utils/response"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// currentUser pulls the authenticated user ID set by the JWT middleware.
func currentUser(ctx *gin.Context) (uuid.UUID, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func isAdmin(ctx *gin.Context) bool {
	role, exists := ctx.Get("user_role")
	return exists && role == "ADMIN"
}

func (c *Controller) CreateBooking(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		response.BadRequest(ctx, "Invalid user context", nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.BadRequest(ctx, "Validation failed", err.Error())
		return
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), userID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Booking created successfully", booking)
}

func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		response.BadRequest(ctx, "Invalid user context", nil)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid booking ID", err.Error())
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID, userID, isAdmin(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", booking)
}

func (c *Controller) GetMyBookings(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		response.BadRequest(ctx, "Invalid user context", nil)
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.BadRequest(ctx, "Invalid query parameters", err.Error())
		return
	}

	result, err := c.service.GetUserBookings(ctx.Request.Context(), userID, query)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Bookings retrieved successfully", result)
}

func (c *Controller) GetAllBookings(ctx *gin.Context) {
	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.BadRequest(ctx, "Invalid query parameters", err.Error())
		return
	}

	result, err := c.service.GetAllBookings(ctx.Request.Context(), query)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Bookings retrieved successfully", result)
}

func (c *Controller) CancelBooking(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		response.BadRequest(ctx, "Invalid user context", nil)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid booking ID", err.Error())
		return
	}

	booking, err := c.service.CancelBooking(ctx.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Booking cancelled successfully", booking)
}

// ForceCancel is the admin variant; it skips the ownership and cutoff checks.
func (c *Controller) ForceCancel(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid booking ID", err.Error())
		return
	}

	booking, err := c.service.ForceCancel(ctx.Request.Context(), bookingID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Booking cancelled successfully", booking)
}

func (c *Controller) CheckIn(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		response.BadRequest(ctx, "Invalid user context", nil)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid booking ID", err.Error())
		return
	}

	booking, err := c.service.CheckIn(ctx.Request.Context(), bookingID, userID, isAdmin(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Checked in successfully", booking)
}

func (c *Controller) CheckOut(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		response.BadRequest(ctx, "Invalid user context", nil)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid booking ID", err.Error())
		return
	}

	booking, err := c.service.CheckOut(ctx.Request.Context(), bookingID, userID, isAdmin(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Checked out successfully", booking)
}

func (c *Controller) ConfirmPayment(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		response.BadRequest(ctx, "Invalid user context", nil)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid booking ID", err.Error())
		return
	}

	var req ConfirmPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.BadRequest(ctx, "Validation failed", err.Error())
		return
	}

	payment, err := c.service.ConfirmPayment(ctx.Request.Context(), bookingID, userID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Payment confirmed successfully", payment)
}
