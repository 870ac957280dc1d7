// Package router mounts the HTTP API on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/handler"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/middleware"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
)

// Limits carries the per-route middleware built from Redis. Nil entries
// are skipped, so tests can mount routes without Redis.
type Limits struct {
	BookingWrites echo.MiddlewareFunc // rate limit on create, edit, cancel
	Login         echo.MiddlewareFunc // rate limit on the auth endpoints
	Availability  echo.MiddlewareFunc // response cache on the availability read
	Invalidate    echo.MiddlewareFunc // retires that cache after a slot write
}

func use(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	var out []echo.MiddlewareFunc
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the staff login flow under /v1/auth and the
// protected /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, lim Limits) {
	g := e.Group("/v1/auth", use(lim.Login)...)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// logout works with either a refresh token or a bearer, so it is not
	// behind JWTAuth
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
}

// RegisterBookings registers the customer endpoints. They need no account;
// the manage routes are authorised by the edit token in the path.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, lim Limits) {
	writes := use(lim.BookingWrites, lim.Invalidate)

	e.POST("/v1/bookings", h.Create, writes...)
	e.GET("/v1/availability", h.Availability, use(lim.Availability)...)

	m := e.Group("/v1/bookings/manage")
	m.GET("/:token", h.Show)
	m.PUT("/:token", h.Update, writes...)
	m.POST("/:token/cancel", h.Cancel, writes...)
	m.DELETE("/:token", h.Cancel, writes...)
}

// RegisterAdmin registers the staff endpoints. All require a valid access
// token carrying the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, lim Limits) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/blocked-slots", h.ListBlocked)
	g.POST("/blocked-slots", h.Block, use(lim.Invalidate)...)
	g.DELETE("/blocked-slots/:id", h.Unblock, use(lim.Invalidate)...)
	g.GET("/bookings", h.ListBookings)
}
