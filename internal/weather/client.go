package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

var (
	// ErrNoAPIKey is a startup configuration error: the gateway refuses to
	// construct without an upstream credential.
	ErrNoAPIKey = errors.New("openweather api key not configured")
	// ErrCityNotFound is returned when geocoding yields no match.
	ErrCityNotFound = errors.New("city not found")
	// ErrUpstream covers every provider failure: transport errors, non-2xx
	// statuses and an open circuit. Callers surface it as a generic gateway
	// error; no provider payload crosses the boundary.
	ErrUpstream = errors.New("weather provider request failed")
)

// Upstream response TTLs. These match how long each kind of reading stays
// useful: geocoding results barely change, current conditions go stale
// fastest.
const (
	geocodeTTL   = 5 * time.Minute
	currentTTL   = 10 * time.Minute
	forecastTTL  = 30 * time.Minute
	pollutionTTL = 30 * time.Minute
)

// Client is the OpenWeatherMap gateway. All four read operations share one
// HTTP client, one circuit breaker and an optional Redis response cache.
// There is no retry/backoff on individual calls; a failing upstream trips
// the breaker instead of being hammered.
type Client struct {
	apiKey  string
	baseURL string
	geoURL  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	cache   *redis.Client
}

// NewClient builds the gateway. cache may be nil, in which case every call
// goes to the provider. A missing API key is a fatal configuration error.
func NewClient(apiKey string, httpClient *http.Client, cache *redis.Client) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		geoURL:  "https://api.openweathermap.org/geo/1.0",
		http:    httpClient,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweather",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		cache: cache,
	}, nil
}

// Geocode resolves a free-text city name to the provider's top match.
func (c *Client) Geocode(ctx context.Context, city string) (GeoLocation, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("limit", "1")
	u := fmt.Sprintf("%s/direct?%s", c.geoURL, q.Encode())

	var results []GeoLocation
	key := "wx:geo:" + strings.ToLower(strings.TrimSpace(city))
	if err := c.fetchJSON(ctx, key, geocodeTTL, u, &results); err != nil {
		return GeoLocation{}, err
	}
	if len(results) == 0 {
		return GeoLocation{}, ErrCityNotFound
	}
	return results[0], nil
}

// Current fetches and normalizes current conditions for a coordinate.
func (c *Client) Current(ctx context.Context, lat, lon float64) (WeatherSnapshot, error) {
	u := fmt.Sprintf("%s/weather?%s", c.baseURL, coordQuery(lat, lon, true))

	var payload struct {
		Name  string `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
			Pressure  int     `json:"pressure"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Visibility float64 `json:"visibility"`
		Sys        struct {
			Country string `json:"country"`
			Sunrise int64  `json:"sunrise"`
			Sunset  int64  `json:"sunset"`
		} `json:"sys"`
		Timezone int `json:"timezone"`
	}

	key := fmt.Sprintf("wx:cur:%.4f:%.4f", lat, lon)
	if err := c.fetchJSON(ctx, key, currentTTL, u, &payload); err != nil {
		return WeatherSnapshot{}, err
	}

	snap := WeatherSnapshot{
		City:           payload.Name,
		Country:        payload.Sys.Country,
		Lat:            payload.Coord.Lat,
		Lon:            payload.Coord.Lon,
		Temperature:    int(math.Round(payload.Main.Temp)),
		FeelsLike:      int(math.Round(payload.Main.FeelsLike)),
		Humidity:       payload.Main.Humidity,
		WindSpeed:      payload.Wind.Speed,
		Pressure:       payload.Main.Pressure,
		Visibility:     payload.Visibility / 1000, // meters -> km
		Sunrise:        payload.Sys.Sunrise,
		Sunset:         payload.Sys.Sunset,
		TimezoneOffset: payload.Timezone,
	}
	if len(payload.Weather) > 0 {
		snap.Condition = payload.Weather[0].Main
		snap.Description = payload.Weather[0].Description
		snap.Icon = payload.Weather[0].Icon
	}
	return snap, nil
}

// Forecast fetches the 5-day / 3-hour forecast and buckets it into at most
// five daily summaries (see forecast.go for the grouping rules).
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]ForecastDay, error) {
	u := fmt.Sprintf("%s/forecast?%s", c.baseURL, coordQuery(lat, lon, true))

	var payload struct {
		List []forecastItem `json:"list"`
		City struct {
			Timezone int `json:"timezone"`
		} `json:"city"`
	}

	key := fmt.Sprintf("wx:fc:%.4f:%.4f", lat, lon)
	if err := c.fetchJSON(ctx, key, forecastTTL, u, &payload); err != nil {
		return nil, err
	}
	return buildForecast(payload.List, payload.City.Timezone), nil
}

// Pollution fetches the current air-quality reading for a coordinate.
func (c *Client) Pollution(ctx context.Context, lat, lon float64) (PollutionSnapshot, error) {
	u := fmt.Sprintf("%s/air_pollution?%s", c.baseURL, coordQuery(lat, lon, false))

	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
			Components PollutionComponents `json:"components"`
		} `json:"list"`
	}

	key := fmt.Sprintf("wx:aqi:%.4f:%.4f", lat, lon)
	if err := c.fetchJSON(ctx, key, pollutionTTL, u, &payload); err != nil {
		return PollutionSnapshot{}, err
	}
	if len(payload.List) == 0 {
		return PollutionSnapshot{}, ErrUpstream
	}

	current := payload.List[0]
	label, color := AQIInfo(current.Main.AQI)
	return PollutionSnapshot{
		AQI:        current.Main.AQI,
		AQILabel:   label,
		AQIColor:   color,
		Components: current.Components,
	}, nil
}

func coordQuery(lat, lon float64, metric bool) string {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	if metric {
		q.Set("units", "metric")
	}
	return q.Encode()
}

// fetchJSON resolves the request through the cache when possible, otherwise
// calls the provider through the circuit breaker and stores the raw body
// under cacheKey. The appid credential is appended here so that cache keys
// and logged URLs never contain it.
func (c *Client) fetchJSON(ctx context.Context, cacheKey string, ttl time.Duration, rawURL string, out interface{}) error {
	if c.cache != nil {
		if body, err := c.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			if json.Unmarshal(body, out) == nil {
				return nil
			}
		}
	}

	full := rawURL + "&appid=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	body, ok := result.([]byte)
	if !ok {
		return ErrUpstream
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if c.cache != nil {
		// Best effort; a failed cache write must not fail the request.
		_ = c.cache.Set(ctx, cacheKey, body, ttl).Err()
	}
	return nil
}
