package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mycine/api/internal/inventory"
	"github.com/mycine/api/internal/middleware"
	"github.com/mycine/api/internal/model"
)

// HoldHandler serves temporary seat holds: a customer picks seats and
// the seats stay reserved for them while they walk through checkout.
// Holds lapse after model.HoldTTL and the sweep frees the seats.
type HoldHandler struct {
	Inventory *inventory.Engine
}

func NewHoldHandler(inv *inventory.Engine) *HoldHandler {
	return &HoldHandler{Inventory: inv}
}

type holdReq struct {
	Seats []string `json:"seats"`
}

// Hold places a temporary hold on the requested seats of a screening.
// All-or-nothing: a single unavailable seat fails the whole hold with
// the conflicting ids listed.
func (h *HoldHandler) Hold(c echo.Context) error {
	screeningID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req holdReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	seats, expiresAt, err := h.Inventory.Hold(ctx, screeningID, middleware.UserID(c), req.Seats, model.HoldTTL)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"screening_id": screeningID,
		"seats":        seats,
		"expires_at":   expiresAt,
	})
}

// Release frees every seat the caller currently holds on the
// screening.  Releasing with no active holds is a no-op.
func (h *HoldHandler) Release(c echo.Context) error {
	screeningID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	freed, err := h.Inventory.ReleaseUserHolds(ctx, screeningID, middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"screening_id":   screeningID,
		"seats_released": freed,
	})
}
