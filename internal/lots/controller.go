package lots

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

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

func (c *Controller) CreateLot(ctx *gin.Context) {
	var req CreateLotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.BadRequest(ctx, "Validation failed", err.Error())
		return
	}

	lot, err := c.service.CreateLot(ctx.Request.Context(), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Lot created successfully", lot)
}

func (c *Controller) GetLots(ctx *gin.Context) {
	var filters LotFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		response.BadRequest(ctx, "Invalid query parameters", err.Error())
		return
	}

	result, err := c.service.GetLots(ctx.Request.Context(), filters)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Lots retrieved successfully", result)
}

func (c *Controller) GetLot(ctx *gin.Context) {
	detail, err := c.service.GetLot(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Lot retrieved successfully", detail)
}

func (c *Controller) UpdateLot(ctx *gin.Context) {
	var req UpdateLotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.BadRequest(ctx, "Validation failed", err.Error())
		return
	}

	lot, err := c.service.UpdateLot(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Lot updated successfully", lot)
}

func (c *Controller) DeleteLot(ctx *gin.Context) {
	if err := c.service.DeleteLot(ctx.Request.Context(), ctx.Param("id")); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Lot deleted successfully", nil)
}

// GetQuote prices a parking window: GET /lots/:id/quote?vehicle_class=X&start=...&end=...
func (c *Controller) GetQuote(ctx *gin.Context) {
	vehicleClass := ctx.Query("vehicle_class")
	if vehicleClass == "" {
		response.BadRequest(ctx, "vehicle_class is required", nil)
		return
	}

	start, err := time.Parse(time.RFC3339, ctx.Query("start"))
	if err != nil {
		response.BadRequest(ctx, "start must be RFC3339", err.Error())
		return
	}

	end, err := time.Parse(time.RFC3339, ctx.Query("end"))
	if err != nil {
		response.BadRequest(ctx, "end must be RFC3339", err.Error())
		return
	}

	quote, err := c.service.Quote(ctx.Request.Context(), ctx.Param("id"), vehicleClass, start, end)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Quote computed successfully", quote)
}
