package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                            // Echo web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Prometheus exposition handler

	"github.com/iliyamo/appointment-booking/internal/handler" // HTTP handlers
)

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and Prometheus metrics.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterPublic registers the unauthenticated booking API.  limit guards
// the endpoints that create rows or send email; cache fronts the image
// listing.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler, limit, cache echo.MiddlewareFunc) {
	e.POST("/appointments", b.Book, limit)
	e.GET("/appointments", b.Upcoming)
	e.GET("/booked-slots", b.BookedSlots)
	e.POST("/cancel-appointment", b.Cancel)
	e.POST("/send-cancel-link", b.SendCancelLink, limit)
	e.GET(handler.ImageListRoute, b.Images, cache)
}

// RegisterStatic serves the public directory at / and the image directory
// at /img.  Registered routes take precedence over the wildcard.
func RegisterStatic(e *echo.Echo, publicDir, imageDir string) {
	e.Static("/img", imageDir)
	e.Static("/", publicDir)
}
