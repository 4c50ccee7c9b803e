package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/appointment-booking/internal/repository"
    "github.com/iliyamo/appointment-booking/internal/service"
)

// BookingHandler serves the public booking API.
type BookingHandler struct {
    Booking    *service.BookingService
    Dispatcher *service.Dispatcher
    Photos     *repository.PhotoRepo
    Log        *zap.Logger
}

// NewBookingHandler panics when a dependency is missing.
func NewBookingHandler(booking *service.BookingService, dispatcher *service.Dispatcher, photos *repository.PhotoRepo, log *zap.Logger) *BookingHandler {
    if booking == nil || dispatcher == nil || photos == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    return &BookingHandler{Booking: booking, Dispatcher: dispatcher, Photos: photos, Log: log}
}

// Book handles POST /appointments.
func (h *BookingHandler) Book(c echo.Context) error {
    var req service.BookingRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Όλα τα πεδία είναι υποχρεωτικά."})
    }
    a, err := h.Booking.Book(c.Request().Context(), req)
    if err != nil {
        return fail(c, h.Log, err, "Όλα τα πεδία είναι υποχρεωτικά.", "Αποτυχία καταχώρησης ραντεβού.")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Η κράτηση καταχωρήθηκε με επιτυχία!", "id": a.ID})
}

// BookedSlots handles GET /booked-slots?date=YYYY-MM-DD.
func (h *BookingHandler) BookedSlots(c echo.Context) error {
    slots, err := h.Booking.BookedSlots(c.Request().Context(), c.QueryParam("date"))
    if err != nil {
        return fail(c, h.Log, err, "Η ημερομηνία είναι υποχρεωτική.", "Αποτυχία λήψης των ήδη κλεισμένων ωρών.")
    }
    return c.JSON(http.StatusOK, echo.Map{"bookedSlots": slots})
}

// Upcoming handles GET /appointments?email=...
func (h *BookingHandler) Upcoming(c echo.Context) error {
    list, err := h.Booking.Upcoming(c.Request().Context(), c.QueryParam("email"))
    if err != nil {
        return fail(c, h.Log, err, "Το email είναι υποχρεωτικό.", "Αποτυχία λήψης των ραντεβού.")
    }
    return c.JSON(http.StatusOK, toViews(list))
}

type cancelRequest struct {
    ID flexID `json:"id" form:"id"`
}

// Cancel handles POST /cancel-appointment.  There is no ownership check.
func (h *BookingHandler) Cancel(c echo.Context) error {
    var req cancelRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Το id είναι υποχρεωτικό."})
    }
    if err := h.Booking.Cancel(c.Request().Context(), uint64(req.ID)); err != nil {
        return fail(c, h.Log, err, "Το id είναι υποχρεωτικό.", "Αποτυχία ακύρωσης ραντεβού.")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Το ραντεβού ακυρώθηκε με επιτυχία!"})
}

type cancelLinkRequest struct {
    Email string `json:"email" form:"email"`
}

// SendCancelLink handles POST /send-cancel-link.  Delivery happens in the
// background; a failure to queue is logged and still answered with 200.
func (h *BookingHandler) SendCancelLink(c echo.Context) error {
    var req cancelLinkRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Το email είναι υποχρεωτικό."})
    }
    id, err := h.Dispatcher.CancelLink(c.Request().Context(), req.Email)
    if err != nil {
        if !errors.Is(err, service.ErrNotification) {
            return fail(c, h.Log, err, "Το email είναι υποχρεωτικό.", "Αποτυχία αποστολής του συνδέσμου ακύρωσης.")
        }
        h.Log.Error("cancel link not queued", zap.String("task_id", id), zap.Error(err))
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Ο σύνδεσμος ακύρωσης στάλθηκε στο email σας.", "task_id": id})
}

// Images handles GET /img-list.
func (h *BookingHandler) Images(c echo.Context) error {
    names, err := h.Photos.ListImages()
    if err != nil {
        h.Log.Error("scan image directory", zap.Error(err))
        return c.String(http.StatusInternalServerError, "Unable to scan directory")
    }
    return c.JSON(http.StatusOK, names)
}
