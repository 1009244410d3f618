package reviews

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

func (c *Controller) CreateReview(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		response.BadRequest(ctx, "Invalid user context", nil)
		return
	}

	var req CreateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.BadRequest(ctx, "Validation failed", err.Error())
		return
	}

	review, err := c.service.CreateReview(ctx.Request.Context(), userID, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Review created successfully", review)
}

func (c *Controller) UpdateReview(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		response.BadRequest(ctx, "Invalid user context", nil)
		return
	}

	reviewID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid review ID", err.Error())
		return
	}

	var req UpdateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.BadRequest(ctx, "Validation failed", err.Error())
		return
	}

	review, err := c.service.UpdateReview(ctx.Request.Context(), reviewID, userID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Review updated successfully", review)
}

func (c *Controller) DeleteReview(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		response.BadRequest(ctx, "Invalid user context", nil)
		return
	}

	reviewID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid review ID", err.Error())
		return
	}

	if err := c.service.DeleteReview(ctx.Request.Context(), reviewID, userID, isAdmin(ctx)); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Review deleted successfully", nil)
}

func (c *Controller) GetLotReviews(ctx *gin.Context) {
	var filters ReviewFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		response.BadRequest(ctx, "Invalid query parameters", err.Error())
		return
	}

	result, err := c.service.GetLotReviews(ctx.Request.Context(), ctx.Param("id"), filters)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Reviews retrieved successfully", result)
}
