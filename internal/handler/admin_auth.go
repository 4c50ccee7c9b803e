package handler

import (
    "errors"
    "net/http"
    "path/filepath"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/appointment-booking/internal/middleware"
    "github.com/iliyamo/appointment-booking/internal/session"
)

// AuthHandler logs the admin in and out.
type AuthHandler struct {
    Verifier  session.Verifier
    Sessions  session.Store
    Gate      *middleware.AdminSession
    TTL       time.Duration
    PublicDir string
    Log       *zap.Logger
}

type loginRequest struct {
    Username string `json:"username" form:"username"`
    Password string `json:"password" form:"password"`
}

// LoginPage serves the login form.
func (h *AuthHandler) LoginPage(c echo.Context) error {
    return c.File(filepath.Join(h.PublicDir, "admin_login.html"))
}

// Login verifies the credentials, opens a session and redirects to the
// dashboard.  Form and JSON bodies are both accepted.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginRequest
    if err := c.Bind(&req); err != nil {
        return c.String(http.StatusBadRequest, "Invalid request")
    }
    ctx := c.Request().Context()
    if err := h.Verifier.Verify(ctx, req.Username, req.Password); err != nil {
        if !errors.Is(err, session.ErrInvalidCredentials) {
            h.Log.Error("credential check failed", zap.Error(err))
        }
        h.Log.Info("admin login rejected", zap.String("username", req.Username), zap.String("ip", c.RealIP()))
        return c.String(http.StatusUnauthorized, "Invalid credentials")
    }
    s, err := h.Sessions.Create(ctx, req.Username, h.TTL)
    if err != nil {
        h.Log.Error("session create failed", zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal Server Error"})
    }
    if err := h.Gate.SetCookie(c, s); err != nil {
        h.Log.Error("session cookie failed", zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal Server Error"})
    }
    h.Log.Info("admin logged in", zap.String("username", s.Username))
    return c.Redirect(http.StatusFound, "/admin")
}

// Logout destroys the server-side session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
    if id, ok := h.Gate.SessionID(c); ok {
        if err := h.Sessions.Delete(c.Request().Context(), id); err != nil {
            h.Log.Warn("session delete failed", zap.Error(err))
        }
    }
    h.Gate.ClearCookie(c)
    return c.Redirect(http.StatusFound, "/admin/login")
}
