package handler // handler defines http handlers

import (
    "encoding/json" // json decodes ids sent as numbers or strings
    "errors"        // errors.Is / errors.As for service sentinels
    "net/http"      // HTTP status codes
    "strconv"       // parse numeric ids
    "strings"       // trim quoted ids

    "github.com/labstack/echo/v4" // echo defines request context types
    "go.uber.org/zap"             // zap logs storage failures

    "github.com/iliyamo/appointment-booking/internal/model"   // appointment model
    "github.com/iliyamo/appointment-booking/internal/service" // service sentinels
)

// flexID accepts an id written as a JSON number or a JSON string, and as a
// plain form value.
type flexID uint64

func (f *flexID) UnmarshalJSON(b []byte) error {
    s := strings.Trim(string(b), `"`)
    if s == "" || s == "null" {
        *f = 0
        return nil
    }
    n, err := strconv.ParseUint(s, 10, 64)
    if err != nil {
        return err
    }
    *f = flexID(n)
    return nil
}

// UnmarshalParam lets echo bind form and query values.
func (f *flexID) UnmarshalParam(s string) error {
    return f.UnmarshalJSON([]byte(s))
}

var _ json.Unmarshaler = (*flexID)(nil)

// appointmentView is the public JSON shape of an appointment.
type appointmentView struct {
    ID   uint64 `json:"id"`
    Date string `json:"appointment_date"`
    Time string `json:"appointment_time"`
}

func toViews(list []model.Appointment) []appointmentView {
    out := make([]appointmentView, 0, len(list))
    for _, a := range list {
        out = append(out, appointmentView{ID: a.ID, Date: a.Date, Time: a.Time})
    }
    return out
}

// fail maps a service error onto the JSON error envelope.  invalid is the
// message for validation errors, failed the generic message for 500s.
func fail(c echo.Context, log *zap.Logger, err error, invalid, failed string) error {
    var ve *service.ValidationError
    switch {
    case errors.As(err, &ve):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": invalid, "fields": ve.Fields})
    case errors.Is(err, service.ErrValidation):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": invalid})
    case errors.Is(err, service.ErrDayClosed):
        return c.JSON(http.StatusConflict, echo.Map{"error": "Η ημέρα είναι κλειστή για κρατήσεις."})
    case errors.Is(err, service.ErrSlotTaken):
        return c.JSON(http.StatusConflict, echo.Map{"error": "Η ώρα αυτή είναι ήδη κλεισμένη."})
    case errors.Is(err, service.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    default:
        log.Error("request failed", zap.String("route", c.Path()), zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": failed})
    }
}
