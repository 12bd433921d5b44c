package middleware

// session.go authenticates requests from the session cookie.  The cookie
// carries a signed JWT issued at signin/signup; on success the user's
// identity claims are stored in the Echo context for handlers downstream.
// Every failure mode (missing cookie, bad signature, expired token) produces
// the same 401 body so that clients cannot probe token state.

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/weather-dashboard/internal/utils"
)

// SessionCookieName is the cookie the signed session token travels in.
const SessionCookieName = "weather_session"

// SessionAuth returns an Echo middleware that validates the session cookie
// and injects "user_id", "email" and "name" into the request context.
func SessionAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return unauthorized(c)
			}
			claims, err := utils.ParseSessionToken(secret, cookie.Value)
			if err != nil {
				return unauthorized(c)
			}
			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("name", claims.Name)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"success": false,
		"error":   "unauthorized, please sign in",
	})
}

// CurrentUserID returns the authenticated user's ID from the context, or 0
// when no session middleware ran on this route.
func CurrentUserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}
