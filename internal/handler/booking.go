package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/service"
)

// dbTimeout bounds the store work of one request.
const dbTimeout = 5 * time.Second

// BookingService is the part of the engine the public endpoints use.
type BookingService interface {
	Create(ctx context.Context, in service.BookingInput) (*service.Confirmation, error)
	Lookup(ctx context.Context, token string) (*model.Booking, error)
	Edit(ctx context.Context, token string, in service.EditInput) (*model.Booking, error)
	Cancel(ctx context.Context, token string) (*model.Booking, error)
	Availability(ctx context.Context, date string) ([]service.SlotAvailability, error)
}

// BookingHandler serves the customer-facing reservation endpoints. None of
// them require an account; edits are authorised by the token in the path.
type BookingHandler struct {
	Bookings BookingService
}

func NewBookingHandler(svc BookingService) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: svc}
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	conf, err := h.Bookings.Create(ctx, service.BookingInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Date:     req.Date,
		Time:     req.Time,
		Guests:   string(req.Guests),
		Requests: req.Requests,
	})
	if err != nil {
		return writeError(c, err)
	}

	resp := createdResp{
		ID:        conf.Booking.ID,
		Status:    conf.Booking.Status,
		Session:   conf.Booking.Session,
		ManageURL: conf.ManageURL,
		Token:     conf.Token,
		Booking:   viewOf(conf.Booking),
	}
	if conf.Booking.Token != nil {
		resp.TokenExpiresAt = conf.Booking.Token.ExpiresAt
	}
	return c.JSON(http.StatusCreated, resp)
}

// Show handles GET /v1/bookings/manage/:token.
func (h *BookingHandler) Show(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Bookings.Lookup(ctx, c.Param("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(*b))
}

// Update handles PUT /v1/bookings/manage/:token.
func (h *BookingHandler) Update(c echo.Context) error {
	var req editReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Bookings.Edit(ctx, c.Param("token"), service.EditInput{
		Date:     req.Date,
		Time:     req.Time,
		Guests:   string(req.Guests),
		Requests: req.Requests,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(*b))
}

// Cancel handles POST /v1/bookings/manage/:token/cancel and the DELETE alias.
func (h *BookingHandler) Cancel(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Bookings.Cancel(ctx, c.Param("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(*b))
}

// Availability handles GET /v1/availability?date=YYYY-MM-DD.
func (h *BookingHandler) Availability(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	date := c.QueryParam("date")
	slots, err := h.Bookings.Availability(ctx, date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "sessions": slots})
}
