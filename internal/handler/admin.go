package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "path/filepath"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/appointment-booking/internal/repository"
    "github.com/iliyamo/appointment-booking/internal/service"
)

// ImageListRoute is the public gallery listing fronted by the response cache.
const ImageListRoute = "/img-list"

// CacheInvalidator drops cached responses of a route.
type CacheInvalidator interface {
    Invalidate(ctx context.Context, route string) error
}

// AdminHandler serves the session-gated admin panel.  Form posts from the
// dashboard redirect back to /admin; listings answer with JSON.  Cache may
// be nil when responses are not cached.
type AdminHandler struct {
    Booking    *service.BookingService
    Closing    *service.ClosingService
    Dispatcher *service.Dispatcher
    Photos     *repository.PhotoRepo
    Cache      CacheInvalidator
    PublicDir  string
    Log        *zap.Logger
}

// galleryChanged evicts the cached public image list.
func (h *AdminHandler) galleryChanged(ctx context.Context) {
    if h.Cache == nil {
        return
    }
    if err := h.Cache.Invalidate(ctx, ImageListRoute); err != nil {
        h.Log.Warn("image list cache not invalidated", zap.Error(err))
    }
}

// Dashboard serves the admin page.
func (h *AdminHandler) Dashboard(c echo.Context) error {
    return c.File(filepath.Join(h.PublicDir, "admin_dashboard.html"))
}

// AddPhoto stores the multipart field "photo" under its original name.
func (h *AdminHandler) AddPhoto(c echo.Context) error {
    fh, err := c.FormFile("photo")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo is required"})
    }
    src, err := fh.Open()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable upload"})
    }
    defer src.Close()
    name, err := h.Photos.Add(fh.Filename, src)
    if err != nil {
        if errors.Is(err, repository.ErrInvalidName) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid file name"})
        }
        h.Log.Error("store photo", zap.String("name", fh.Filename), zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal Server Error"})
    }
    h.galleryChanged(c.Request().Context())
    h.Log.Info("photo added", zap.String("name", name), zap.Int64("size", fh.Size))
    return c.Redirect(http.StatusFound, "/admin")
}

type deletePhotoRequest struct {
    PhotoID string `json:"photo_id" form:"photo_id"`
}

// DeletePhoto removes a photo by filename; unknown names are ignored.
func (h *AdminHandler) DeletePhoto(c echo.Context) error {
    var req deletePhotoRequest
    if err := c.Bind(&req); err != nil || req.PhotoID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo_id is required"})
    }
    if err := h.Photos.Delete(req.PhotoID); err != nil {
        if errors.Is(err, repository.ErrInvalidName) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid file name"})
        }
        h.Log.Error("delete photo", zap.String("name", req.PhotoID), zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal Server Error"})
    }
    h.galleryChanged(c.Request().Context())
    return c.Redirect(http.StatusFound, "/admin")
}

type freeSlotRequest struct {
    AppointmentID flexID `json:"appointment_id" form:"appointment_id"`
}

// FreeSlot deletes an appointment row.
func (h *AdminHandler) FreeSlot(c echo.Context) error {
    var req freeSlotRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "appointment_id is required"})
    }
    if err := h.Booking.Free(c.Request().Context(), uint64(req.AppointmentID)); err != nil {
        return fail(c, h.Log, err, "appointment_id is required", "Internal Server Error")
    }
    return c.Redirect(http.StatusFound, "/admin")
}

type photoView struct {
    ID   string `json:"id"`
    Name string `json:"name"`
}

// ListPhotos returns every file in the image directory.
func (h *AdminHandler) ListPhotos(c echo.Context) error {
    photos, err := h.Photos.List()
    if err != nil {
        h.Log.Error("list photos", zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal Server Error"})
    }
    out := make([]photoView, 0, len(photos))
    for _, p := range photos {
        out = append(out, photoView{ID: p.Name, Name: p.Name})
    }
    return c.JSON(http.StatusOK, out)
}

// ListAppointments returns all appointments, past sweeps aside.
func (h *AdminHandler) ListAppointments(c echo.Context) error {
    list, err := h.Booking.ListAll(c.Request().Context())
    if err != nil {
        return fail(c, h.Log, err, "invalid request", "Internal Server Error")
    }
    return c.JSON(http.StatusOK, toViews(list))
}

type closeDayRequest struct {
    Date string `json:"date" form:"date"`
}

// CloseDay marks a date as closed.
func (h *AdminHandler) CloseDay(c echo.Context) error {
    var req closeDayRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Η ημερομηνία είναι υποχρεωτική."})
    }
    if err := h.Closing.Close(c.Request().Context(), req.Date); err != nil {
        return fail(c, h.Log, err, "Η ημερομηνία είναι υποχρεωτική.", "Αποτυχία κλεισίματος της ημέρας.")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("Η ημέρα %s έχει κλείσει.", req.Date)})
}

// ClosedDays lists the closed dates.
func (h *AdminHandler) ClosedDays(c echo.Context) error {
    days, err := h.Closing.List(c.Request().Context())
    if err != nil {
        return fail(c, h.Log, err, "invalid request", "Internal Server Error")
    }
    return c.JSON(http.StatusOK, echo.Map{"closedDays": days})
}

// NotificationStatus reports the delivery state of one email task.
func (h *AdminHandler) NotificationStatus(c echo.Context) error {
    st, err := h.Dispatcher.Status(c.Request().Context(), c.Param("id"))
    if err != nil {
        return fail(c, h.Log, err, "invalid id", "Internal Server Error")
    }
    return c.JSON(http.StatusOK, st)
}
