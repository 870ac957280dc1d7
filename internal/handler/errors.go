package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/service"
)

// Machine-readable codes for the two slot refusals, so the form can tell
// "pick another time" from "the restaurant closed this session".
const (
	codeSlotClosed  = "slot_closed"
	codeSlotBlocked = "slot_blocked"
)

// writeError maps an engine outcome to its response. Anything unrecognised
// is returned to echo's error handler, which logs it and answers 500.
func writeError(c echo.Context, err error) error {
	var verr *service.ValidationError
	var cerr *service.CapacityExceededError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": verr.Fields})
	case errors.As(err, &cerr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": cerr.Error(), "availableSpots": cerr.Available})
	case errors.Is(err, service.ErrSlotClosed):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": codeSlotClosed})
	case errors.Is(err, service.ErrSlotBlocked):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": codeSlotBlocked})
	case errors.Is(err, service.ErrTokenInvalid):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrTokenExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSlotAlreadyBlocked):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrBlockNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	return err
}
