package slots

import (
	"net/http"

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

func (c *Controller) ListSlots(ctx *gin.Context) {
	result, err := c.service.ListSlots(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Slots retrieved successfully", result)
}

func (c *Controller) GetSlot(ctx *gin.Context) {
	slot, err := c.service.GetSlot(ctx.Request.Context(), ctx.Param("id"), ctx.Param("slotId"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Slot retrieved successfully", slot)
}

func (c *Controller) AddSlots(ctx *gin.Context) {
	var req AddSlotsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.BadRequest(ctx, "Validation failed", err.Error())
		return
	}

	created, err := c.service.AddSlots(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Slots created successfully", created)
}

func (c *Controller) RemoveSlot(ctx *gin.Context) {
	if err := c.service.RemoveSlot(ctx.Request.Context(), ctx.Param("id"), ctx.Param("slotId")); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Slot deleted successfully", nil)
}

func (c *Controller) SetMaintenance(ctx *gin.Context) {
	var req MaintenanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	slot, err := c.service.SetMaintenance(ctx.Request.Context(), ctx.Param("id"), ctx.Param("slotId"), req.Enabled)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Slot maintenance updated", slot)
}
