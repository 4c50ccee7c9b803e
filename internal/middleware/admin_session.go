package middleware

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/appointment-booking/internal/session"
    "github.com/iliyamo/appointment-booking/internal/utils"
)

// SessionCookie is the name of the admin session cookie.
const SessionCookie = "admin_session"

// ErrUnauthorized is the result of a missing, forged or expired session.
var ErrUnauthorized = errors.New("unauthorized")

// AdminSession validates the signed session cookie and the server-side
// session record on every admin request.
type AdminSession struct {
    store     session.Store
    secret    string
    secure    bool
    loginPath string
    log       *zap.Logger
}

func NewAdminSession(store session.Store, secret string, secure bool, log *zap.Logger) *AdminSession {
    return &AdminSession{store: store, secret: secret, secure: secure, loginPath: "/admin/login", log: log}
}

// authenticate resolves the request's session and stores it in the context.
func (a *AdminSession) authenticate(c echo.Context) error {
    ck, err := c.Cookie(SessionCookie)
    if err != nil || ck.Value == "" {
        return ErrUnauthorized
    }
    claims, err := utils.ParseSessionToken(a.secret, ck.Value)
    if err != nil {
        return ErrUnauthorized
    }
    s, err := a.store.Get(c.Request().Context(), claims.SessionID)
    if err != nil {
        if !errors.Is(err, session.ErrNotFound) {
            a.log.Warn("session lookup failed", zap.Error(err))
        }
        return ErrUnauthorized
    }
    // The cookie subject must match the stored session owner.
    if s.Username != claims.Subject {
        return ErrUnauthorized
    }
    c.Set(ContextUserKey, s.Username)
    c.Set(ContextSessionKey, s)
    return nil
}

// Page guards HTML routes: unauthenticated visitors go to the login page.
func (a *AdminSession) Page() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if err := a.authenticate(c); err != nil {
                return c.Redirect(http.StatusFound, a.loginPath)
            }
            return next(c)
        }
    }
}

// API guards JSON routes with a 403.
func (a *AdminSession) API() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if err := a.authenticate(c); err != nil {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "Unauthorized"})
            }
            return next(c)
        }
    }
}

// SetCookie writes the session cookie for a freshly created session.
func (a *AdminSession) SetCookie(c echo.Context, s session.Session) error {
    token, err := utils.NewSessionToken(a.secret, s.ID, s.Username, s.ExpiresAt)
    if err != nil {
        return err
    }
    c.SetCookie(&http.Cookie{
        Name:     SessionCookie,
        Value:    token,
        Path:     "/",
        Expires:  s.ExpiresAt,
        HttpOnly: true,
        Secure:   a.secure,
        SameSite: http.SameSiteLaxMode,
    })
    return nil
}

// ClearCookie expires the session cookie on the client.
func (a *AdminSession) ClearCookie(c echo.Context) {
    c.SetCookie(&http.Cookie{
        Name:     SessionCookie,
        Value:    "",
        Path:     "/",
        Expires:  time.Unix(0, 0),
        MaxAge:   -1,
        HttpOnly: true,
        Secure:   a.secure,
        SameSite: http.SameSiteLaxMode,
    })
}

// SessionID returns the server-side session id carried by a valid cookie.
func (a *AdminSession) SessionID(c echo.Context) (string, bool) {
    ck, err := c.Cookie(SessionCookie)
    if err != nil {
        return "", false
    }
    claims, err := utils.ParseSessionToken(a.secret, ck.Value)
    if err != nil {
        return "", false
    }
    return claims.SessionID, true
}
