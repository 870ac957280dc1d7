package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/middleware"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/service"
)

// AdminService is the part of the engine behind the staff endpoints.
type AdminService interface {
	ListBookings(ctx context.Context, f service.BookingFilter) ([]model.Booking, error)
	BlockSlot(ctx context.Context, date, session, reason string, actor uint64) (*model.BlockedSlot, error)
	UnblockSlot(ctx context.Context, id uint64) error
	ListBlocked(ctx context.Context) ([]model.BlockedSlot, error)
}

// AdminHandler serves /v1/admin. Routes are mounted behind JWTAuth and
// RequireRole(ADMIN), so handlers only read the actor id.
type AdminHandler struct {
	Svc AdminService
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	if svc == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Svc: svc}
}

// ListBlocked handles GET /v1/admin/blocked-slots.
func (h *AdminHandler) ListBlocked(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	blocks, err := h.Svc.ListBlocked(ctx)
	if err != nil {
		return err
	}
	out := make([]blockView, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockViewOf(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Block handles POST /v1/admin/blocked-slots.
func (h *AdminHandler) Block(c echo.Context) error {
	var req blockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Svc.BlockSlot(ctx, req.Date, req.Session, req.Reason, middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, blockViewOf(*b))
}

// Unblock handles DELETE /v1/admin/blocked-slots/:id.
func (h *AdminHandler) Unblock(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.UnblockSlot(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBookings handles GET /v1/admin/bookings?date=&status=.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Svc.ListBookings(ctx, service.BookingFilter{
		Date:   c.QueryParam("date"),
		Status: model.Status(c.QueryParam("status")),
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]bookingView, 0, len(list))
	guests := 0
	for _, b := range list {
		out = append(out, viewOf(b))
		if b.Active() {
			guests += b.Guests
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "count": len(out), "active_guests": guests})
}
