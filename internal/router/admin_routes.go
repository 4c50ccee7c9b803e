package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/appointment-booking/internal/handler"
	"github.com/iliyamo/appointment-booking/internal/middleware"
)

// RegisterAdmin wires the admin panel.  Page routes redirect anonymous
// visitors to the login form; JSON routes answer 403.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, auth *handler.AuthHandler, gate *middleware.AdminSession, limit echo.MiddlewareFunc) {
	e.GET("/admin/login", auth.LoginPage)
	e.POST("/admin/login", auth.Login, limit)
	e.GET("/admin/logout", auth.Logout)

	page := gate.Page()
	e.GET("/admin", a.Dashboard, page)
	e.POST("/admin/add_photo", a.AddPhoto, page)
	e.POST("/admin/delete_photo", a.DeletePhoto, page)
	e.POST("/admin/free_appointment_slot", a.FreeSlot, page)

	api := gate.API()
	e.GET("/admin/photos", a.ListPhotos, api)
	e.GET("/admin/appointments", a.ListAppointments, api)
	e.POST("/admin/close_day", a.CloseDay, api)
	e.GET("/admin/closed_days", a.ClosedDays, api)
	e.GET("/admin/notifications/:id", a.NotificationStatus, api)
}
