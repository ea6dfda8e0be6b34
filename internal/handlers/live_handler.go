package handlers

import (
	"gbtravel/internal/services"
	"gbtravel/internal/utils"
	"gbtravel/pkg/websocket"

	"github.com/gin-gonic/gin"
)

type LiveHandler struct {
	tripService services.TripService
	ws          *websocket.Handler
}

func NewLiveHandler(tripService services.TripService, ws *websocket.Handler) *LiveHandler {
	return &LiveHandler{tripService: tripService, ws: ws}
}

// TripAvailability upgrades to a websocket that receives the trip's current
// availability and every change after it.
func (h *LiveHandler) TripAvailability(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "trip ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	availability, err := h.tripService.GetAvailability(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	h.ws.Serve(c, services.TripRoom(id), services.MessageTypeAvailability, availability)
}
