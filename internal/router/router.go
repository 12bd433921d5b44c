package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/weather-dashboard/internal/config"     // rate-limit budgets
	"github.com/iliyamo/weather-dashboard/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/weather-dashboard/internal/middleware" // session auth and rate limiting middleware
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check, used by
// load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints and applies the
// per-capability rate limits.  Signup and signin are limited by caller IP
// because the caller has no session yet; /v1/auth/me sits behind the
// session middleware so it can read the user from the cookie.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter middleware.Limiter, rl config.RateLimitConfig, jwtSecret string) {
	g := e.Group("/v1/auth")
	if rl.Enabled {
		g.POST("/signup", a.Signup, middleware.RateLimit(limiter, rl.Prefix, "signup", rl.Signup, rl.Window))
		g.POST("/signin", a.Signin, middleware.RateLimit(limiter, rl.Prefix, "signin", rl.Signin, rl.Window))
	} else {
		g.POST("/signup", a.Signup)
		g.POST("/signin", a.Signin)
	}
	// Logout only clears the client-held cookie, so it needs neither a
	// session nor a budget.
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.SessionAuth(jwtSecret))
}

// RegisterAPI registers the protected weather and favorites endpoints.  The
// whole group requires a valid session cookie; the weather endpoints each
// carry their own per-user request budget on top.
func RegisterAPI(e *echo.Echo, w *handler.WeatherHandler, f *handler.FavoriteHandler, limiter middleware.Limiter, rl config.RateLimitConfig, jwtSecret string) {
	api := e.Group("/v1")
	api.Use(middleware.SessionAuth(jwtSecret))

	if rl.Enabled {
		api.GET("/weather", w.Current, middleware.RateLimit(limiter, rl.Prefix, "weather", rl.Weather, rl.Window))
		api.GET("/forecast", w.Forecast, middleware.RateLimit(limiter, rl.Prefix, "forecast", rl.Forecast, rl.Window))
		api.GET("/pollution", w.Pollution, middleware.RateLimit(limiter, rl.Prefix, "pollution", rl.Pollution, rl.Window))
		api.GET("/dashboard", w.Dashboard, middleware.RateLimit(limiter, rl.Prefix, "dashboard", rl.Dashboard, rl.Window))
	} else {
		api.GET("/weather", w.Current)
		api.GET("/forecast", w.Forecast)
		api.GET("/pollution", w.Pollution)
		api.GET("/dashboard", w.Dashboard)
	}

	api.GET("/favorites", f.List)
	api.POST("/favorites", f.Add)
	api.DELETE("/favorites", f.Delete)
}
