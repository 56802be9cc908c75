package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

type SearchHandler struct {
	panel ports.SearchPanel
}

func NewSearchHandler(panel ports.SearchPanel) *SearchHandler {
	return &SearchHandler{panel: panel}
}

type queryRequest struct {
	Q string `json:"q"`
}

type keyRequest struct {
	Key string `json:"key" validate:"required,oneof=ArrowDown ArrowUp Enter Escape"`
}

// panelResponse carries the panel state and, after an activation, the view
// to navigate to.
type panelResponse struct {
	Panel    domain.PanelState `json:"panel"`
	Navigate string            `json:"navigate,omitempty"`
}

// State returns the search panel.
//
// @Summary      Search panel state
// @Tags         search
// @Produce      json
// @Success      200  {object}  panelResponse
// @Router       /search/panel [get]
func (h *SearchHandler) State(c echo.Context) error {
	return c.JSON(http.StatusOK, panelResponse{Panel: h.panel.State()})
}

// Open shows the panel with the role's quick actions.
//
// @Summary      Open search panel
// @Tags         search
// @Produce      json
// @Success      200  {object}  panelResponse
// @Router       /search/panel/open [post]
func (h *SearchHandler) Open(c echo.Context) error {
	return c.JSON(http.StatusOK, panelResponse{Panel: h.panel.Open()})
}

// Close hides the panel.
//
// @Summary      Close search panel
// @Tags         search
// @Produce      json
// @Success      200  {object}  panelResponse
// @Router       /search/panel/close [post]
func (h *SearchHandler) Close(c echo.Context) error {
	return c.JSON(http.StatusOK, panelResponse{Panel: h.panel.Close()})
}

// Query records the text typed into the panel. Results arrive once typing
// pauses; poll State to pick them up.
//
// @Summary      Type into search panel
// @Tags         search
// @Accept       json
// @Produce      json
// @Param        body  body      queryRequest  true  "Query text"
// @Success      200   {object}  panelResponse
// @Router       /search/panel/query [post]
func (h *SearchHandler) Query(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	return c.JSON(http.StatusOK, panelResponse{Panel: h.panel.SetQuery(c.Request().Context(), req.Q)})
}

// Key applies a keyboard event to the panel.
//
// @Summary      Keyboard input for search panel
// @Tags         search
// @Accept       json
// @Produce      json
// @Param        body  body      keyRequest  true  "ArrowDown, ArrowUp, Enter or Escape"
// @Success      200   {object}  panelResponse
// @Failure      400   {object}  map[string]string
// @Router       /search/panel/key [post]
func (h *SearchHandler) Key(c echo.Context) error {
	var req keyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	state, picked := h.panel.Key(c.Request().Context(), req.Key)
	resp := panelResponse{Panel: state}
	if picked != nil {
		resp.Navigate = picked.Target
	}
	return c.JSON(http.StatusOK, resp)
}
