package handler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/weather-dashboard/internal/weather"
)

// Gateway is the weather provider surface the handlers depend on.
type Gateway interface {
	Geocode(ctx context.Context, city string) (weather.GeoLocation, error)
	Current(ctx context.Context, lat, lon float64) (weather.WeatherSnapshot, error)
	Forecast(ctx context.Context, lat, lon float64) ([]weather.ForecastDay, error)
	Pollution(ctx context.Context, lat, lon float64) (weather.PollutionSnapshot, error)
}

// WeatherHandler serves the read-only weather endpoints. All of them share
// one parameter contract: either ?city= or both ?lat= and ?lon=.
type WeatherHandler struct {
	Gateway Gateway
}

func NewWeatherHandler(gw Gateway) *WeatherHandler { return &WeatherHandler{Gateway: gw} }

// resolveCoords resolves the request's query parameters into coordinates,
// geocoding the city name when no explicit coordinates were given. When the
// parameters are unusable it writes the error response itself and reports
// done=true; the caller just returns err.
func (h *WeatherHandler) resolveCoords(c echo.Context) (lat, lon float64, done bool, err error) {
	city := strings.TrimSpace(c.QueryParam("city"))
	latStr := c.QueryParam("lat")
	lonStr := c.QueryParam("lon")

	if city == "" && (latStr == "" || lonStr == "") {
		return 0, 0, true, respondErr(c, http.StatusBadRequest, "please provide a city name or coordinates")
	}

	if latStr != "" && lonStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat != nil || errLon != nil ||
			math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
			return 0, 0, true, respondErr(c, http.StatusBadRequest, "invalid coordinates")
		}
		return lat, lon, false, nil
	}

	loc, err := h.Gateway.Geocode(c.Request().Context(), city)
	if err != nil {
		if errors.Is(err, weather.ErrCityNotFound) {
			return 0, 0, true, respondErr(c, http.StatusNotFound, fmt.Sprintf("city %q not found", city))
		}
		return 0, 0, true, gatewayError(c, err)
	}
	return loc.Lat, loc.Lon, false, nil
}

// Current returns normalized current conditions.
func (h *WeatherHandler) Current(c echo.Context) error {
	lat, lon, done, err := h.resolveCoords(c)
	if done {
		return err
	}
	snap, err := h.Gateway.Current(c.Request().Context(), lat, lon)
	if err != nil {
		return gatewayError(c, err)
	}
	return respond(c, http.StatusOK, snap)
}

// Forecast returns up to five daily summaries.
func (h *WeatherHandler) Forecast(c echo.Context) error {
	lat, lon, done, err := h.resolveCoords(c)
	if done {
		return err
	}
	days, err := h.Gateway.Forecast(c.Request().Context(), lat, lon)
	if err != nil {
		return gatewayError(c, err)
	}
	return respond(c, http.StatusOK, days)
}

// Pollution returns the current air-quality reading.
func (h *WeatherHandler) Pollution(c echo.Context) error {
	lat, lon, done, err := h.resolveCoords(c)
	if done {
		return err
	}
	snap, err := h.Gateway.Pollution(c.Request().Context(), lat, lon)
	if err != nil {
		return gatewayError(c, err)
	}
	return respond(c, http.StatusOK, snap)
}

// dashboardResp aggregates all three facets of a dashboard load. A facet
// that failed upstream is null rather than failing the whole response.
type dashboardResp struct {
	Weather   *weather.WeatherSnapshot   `json:"weather"`
	Forecast  []weather.ForecastDay      `json:"forecast"`
	Pollution *weather.PollutionSnapshot `json:"pollution"`
}

// Dashboard resolves the location once, then fans out to the three upstream
// reads concurrently and joins them, tolerating partial failure. Only when
// every facet fails does the request fail as a whole.
func (h *WeatherHandler) Dashboard(c echo.Context) error {
	lat, lon, done, err := h.resolveCoords(c)
	if done {
		return err
	}
	ctx := c.Request().Context()

	var (
		wg   sync.WaitGroup
		resp dashboardResp
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		if snap, err := h.Gateway.Current(ctx, lat, lon); err == nil {
			resp.Weather = &snap
		} else {
			c.Logger().Warnf("dashboard: current weather fetch failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if days, err := h.Gateway.Forecast(ctx, lat, lon); err == nil {
			resp.Forecast = days
		} else {
			c.Logger().Warnf("dashboard: forecast fetch failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if snap, err := h.Gateway.Pollution(ctx, lat, lon); err == nil {
			resp.Pollution = &snap
		} else {
			c.Logger().Warnf("dashboard: pollution fetch failed: %v", err)
		}
	}()
	wg.Wait()

	if resp.Weather == nil && resp.Forecast == nil && resp.Pollution == nil {
		return respondErr(c, http.StatusBadGateway, "weather service is temporarily unavailable")
	}
	return respond(c, http.StatusOK, resp)
}

// gatewayError maps gateway failures onto the envelope without leaking any
// provider detail to the client.
func gatewayError(c echo.Context, err error) error {
	if errors.Is(err, weather.ErrUpstream) {
		return respondErr(c, http.StatusBadGateway, "weather service is temporarily unavailable")
	}
	return respondErr(c, http.StatusInternalServerError, "failed to fetch weather data")
}
