package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mycine/api/internal/middleware"
	"github.com/mycine/api/internal/repository"
)

// AdminHandler serves the dashboard, the global booking list and user
// management.
type AdminHandler struct {
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
}

func NewAdminHandler(b *repository.BookingRepo, u *repository.UserRepo) *AdminHandler {
	return &AdminHandler{Bookings: b, Users: u}
}

// Dashboard returns booking, user and revenue aggregates.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	stats, err := h.Bookings.GetDashboardStats(ctx, time.Now().UTC())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// ListBookings returns every booking, newest first.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	bookings, err := h.Bookings.ListAll(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// ListUsers returns all accounts.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

type blockReq struct {
	Blocked bool `json:"blocked"`
}

// BlockUser flips the blocked flag on an account.  Admins cannot block
// themselves.
func (h *AdminHandler) BlockUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if id == middleware.UserID(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot block own account"})
	}
	var req blockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.SetBlocked(ctx, id, req.Blocked); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "blocked": req.Blocked})
}

// DeleteUser removes an account.  Booking history survives with a null
// user reference.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if id == middleware.UserID(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete own account"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
