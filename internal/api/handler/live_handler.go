package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

type LiveHandler struct {
	live ports.LiveFeed
}

func NewLiveHandler(live ports.LiveFeed) *LiveHandler {
	return &LiveHandler{live: live}
}

type liveResponse struct {
	Connected bool                `json:"connected"`
	Updates   []domain.SpotUpdate `json:"updates"`
}

type sendResponse struct {
	Sent bool `json:"sent"`
}

// Status reports the push connection and the spot updates received on it.
//
// @Summary      Live update channel
// @Tags         live
// @Produce      json
// @Success      200  {object}  liveResponse
// @Router       /live [get]
func (h *LiveHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, liveResponse{
		Connected: h.live.Connected(),
		Updates:   h.live.Updates(),
	})
}

// Send forwards a JSON frame to the push channel. Nothing is queued: when
// the channel is down the frame is dropped and sent is false.
//
// @Summary      Send on live update channel
// @Tags         live
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]any  true  "Frame with a type field"
// @Success      200   {object}  sendResponse
// @Failure      400   {object}  map[string]string
// @Router       /live/send [post]
func (h *LiveHandler) Send(c echo.Context) error {
	var msg map[string]any
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if t, _ := msg["type"].(string); t == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "type is required"})
	}
	return c.JSON(http.StatusOK, sendResponse{Sent: h.live.Send(msg)})
}
