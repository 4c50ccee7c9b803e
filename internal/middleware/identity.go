package middleware

// identity.go holds the context keys shared by the admin session
// middleware, the rate limiter and the handlers.

import "github.com/labstack/echo/v4"

const (
    // ContextUserKey carries the authenticated admin username.
    ContextUserKey = "user_id"
    // ContextSessionKey carries the session.Session of the request.
    ContextSessionKey = "admin_session"
)

// currentUserID returns the admin username, or "anon" for public callers.
func currentUserID(c echo.Context) string {
    if v, ok := c.Get(ContextUserKey).(string); ok && v != "" {
        return v
    }
    return "anon"
}
