package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestClient points a gateway at a fake provider.
func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key", srv.Client(), nil)
	require.NoError(t, err)
	c.baseURL = srv.URL
	c.geoURL = srv.URL + "/geo"
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("", nil, nil)
	require.ErrorIs(t, err, ErrNoAPIKey)
}

func TestGeocodeTopMatch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/geo/direct", r.URL.Path)
		require.Equal(t, "London", r.URL.Query().Get("q"))
		require.Equal(t, "1", r.URL.Query().Get("limit"))
		require.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Write([]byte(`[{"name":"London","country":"GB","state":"England","lat":51.5,"lon":-0.12}]`))
	}))

	loc, err := c.Geocode(context.Background(), "London")
	require.NoError(t, err)
	require.Equal(t, GeoLocation{Name: "London", Country: "GB", State: "England", Lat: 51.5, Lon: -0.12}, loc)
}

func TestGeocodeNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	_, err := c.Geocode(context.Background(), "Atlantis")
	require.ErrorIs(t, err, ErrCityNotFound)
}

func TestCurrentNormalization(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/weather", r.URL.Path)
		require.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{
			"name":"London","coord":{"lat":51.5,"lon":-0.12},
			"main":{"temp":21.6,"feels_like":20.4,"humidity":64,"pressure":1012},
			"weather":[{"main":"Clouds","description":"broken clouds","icon":"04d"}],
			"wind":{"speed":5.2},"visibility":8000,
			"sys":{"country":"GB","sunrise":1717200000,"sunset":1717260000},
			"timezone":3600
		}`))
	}))

	snap, err := c.Current(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	require.Equal(t, 22, snap.Temperature, "21.6 rounds to 22")
	require.Equal(t, 20, snap.FeelsLike, "20.4 rounds to 20")
	require.Equal(t, 8.0, snap.Visibility, "8000 m converts to 8 km")
	require.Equal(t, 1012, snap.Pressure)
	require.Equal(t, 5.2, snap.WindSpeed)
	require.Equal(t, "Clouds", snap.Condition)
	require.Equal(t, "GB", snap.Country)
	require.Equal(t, int64(1717200000), snap.Sunrise)
	require.Equal(t, 3600, snap.TimezoneOffset)
}

func TestPollutionMapping(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/air_pollution", r.URL.Path)
		w.Write([]byte(`{"list":[{"main":{"aqi":4},
			"components":{"co":201.9,"no":0.01,"no2":0.77,"o3":68.6,"so2":0.64,"pm2_5":0.5,"pm10":0.54,"nh3":0.12}}]}`))
	}))

	snap, err := c.Pollution(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	require.Equal(t, 4, snap.AQI)
	require.Equal(t, "Poor", snap.AQILabel)
	require.Equal(t, "#f97316", snap.AQIColor)
	require.Equal(t, 201.9, snap.Components.CO)
	require.Equal(t, 0.5, snap.Components.PM25)
}

func TestUpstreamFailureStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.Current(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrUpstream)

	_, err = c.Pollution(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrUpstream)

	_, err = c.Geocode(context.Background(), "London")
	require.ErrorIs(t, err, ErrUpstream)
}

func TestForecastEndToEnd(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forecast", r.URL.Path)
		w.Write([]byte(`{"city":{"timezone":0},"list":[
			{"dt":1717236000,"main":{"temp":10,"humidity":60},"weather":[{"main":"Clouds","description":"x","icon":"04d"}],"wind":{"speed":3},"pop":0.2},
			{"dt":1717246800,"main":{"temp":15,"humidity":55},"weather":[{"main":"Clear","description":"y","icon":"01d"}],"wind":{"speed":4},"pop":0.3},
			{"dt":1717257600,"main":{"temp":20,"humidity":50},"weather":[{"main":"Clear","description":"z","icon":"01d"}],"wind":{"speed":5},"pop":0.4}
		]}`))
	}))

	days, err := c.Forecast(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Equal(t, 10, days[0].TempMin)
	require.Equal(t, 20, days[0].TempMax)
}
