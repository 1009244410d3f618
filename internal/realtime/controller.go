package realtime

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parkwise/internal/shared/utils/response"
)

type Controller struct {
	hub *Hub
}

func NewController(hub *Hub) *Controller {
	return &Controller{hub: hub}
}

// StreamLotEvents streams slot status changes and lot snapshots for one lot
// as server-sent events. The subscription lives until the client disconnects.
func (c *Controller) StreamLotEvents(ctx *gin.Context) {
	lotID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid lot ID", err.Error())
		return
	}

	sub := c.hub.Subscribe(lotID)
	defer sub.Close()

	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	clientGone := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.C:
			if !ok {
				return false
			}
			switch event.(type) {
			case LotEvent:
				ctx.SSEvent("lot", event)
			default:
				ctx.SSEvent("slot", event)
			}
			return true
		case <-clientGone:
			return false
		}
	})
}
