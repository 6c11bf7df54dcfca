package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"weather-mcp/internal/apperr"
	"weather-mcp/internal/weather"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenWeatherProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewOpenWeatherProvider(srv.Client(), "test-key")
	p.baseURL = srv.URL
	return p
}

func TestCurrentNormalizesPayload(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "London" {
			t.Errorf("q = %q, want London", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("units = %q, want metric (internal unit system)", got)
		}
		w.Write([]byte(`{
			"name": "London",
			"dt": 1709284800,
			"sys": {"country": "GB", "sunrise": 1709272800, "sunset": 1709312400},
			"coord": {"lat": 51.51, "lon": -0.13},
			"main": {"temp": 8.5, "feels_like": 6.1, "humidity": 87, "pressure": 1008},
			"wind": {"speed": 5.2, "deg": 240},
			"weather": [{"main": "Drizzle", "description": "light drizzle"}],
			"visibility": 9000,
			"clouds": {"all": 90},
			"rain": {"1h": 0.4}
		}`))
	})

	obs, err := p.Current(context.Background(), weather.Query{City: "London"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.Location.Name != "London" || obs.Location.Country != "GB" {
		t.Errorf("location = %+v", obs.Location)
	}
	if obs.Temperature != 8.5 || obs.FeelsLike != 6.1 {
		t.Errorf("temps = %g/%g, want 8.5/6.1", obs.Temperature, obs.FeelsLike)
	}
	if obs.Condition != weather.ConditionRain {
		t.Errorf("condition = %s, want rain (Drizzle maps to rain)", obs.Condition)
	}
	if obs.Description != "light drizzle" {
		t.Errorf("description = %q", obs.Description)
	}
	if obs.RainLastHourMM != 0.4 {
		t.Errorf("rain 1h = %g, want 0.4", obs.RainLastHourMM)
	}
	if obs.Timestamp.IsZero() || obs.Sunrise.IsZero() || obs.Sunset.IsZero() {
		t.Error("expected timestamps to be populated")
	}
}

func TestCurrentByCoordinatesQuery(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lon") == "" {
			t.Error("expected lat/lon query parameters")
		}
		if r.URL.Query().Get("q") != "" {
			t.Error("q must not be set for coordinate lookups")
		}
		w.Write([]byte(`{"name": "Somewhere", "weather": []}`))
	})

	lat, lon := 48.85, 2.35
	if _, err := p.Current(context.Background(), weather.Query{Lat: &lat, Lon: &lon}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestForecastNormalizesSamples(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"city": {"name": "Paris", "country": "FR", "coord": {"lat": 48.85, "lon": 2.35}},
			"list": [
				{"dt": 1709294400, "main": {"temp": 10, "humidity": 60},
				 "wind": {"speed": 3}, "weather": [{"main": "Clear", "description": "clear sky"}], "pop": 0.1},
				{"dt": 1709305200, "main": {"temp": 14, "humidity": 55},
				 "wind": {"speed": 4}, "weather": [{"main": "Clouds", "description": "few clouds"}], "pop": 0.3}
			]
		}`))
	})

	series, err := p.Forecast(context.Background(), weather.Query{City: "Paris"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Location.Name != "Paris" {
		t.Errorf("location = %+v", series.Location)
	}
	if len(series.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(series.Samples))
	}
	first := series.Samples[0]
	if first.TemperatureC != 10 || first.Condition != weather.ConditionClear || first.PrecipProbability != 0.1 {
		t.Errorf("unexpected first sample: %+v", first)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		body   string
		code   string
	}{
		{http.StatusNotFound, `{"cod":"404","message":"city not found"}`, apperr.CodeNotFound},
		{http.StatusBadRequest, `{"cod":"400","message":"bad query"}`, apperr.CodeInvalidRequest},
		{http.StatusUnauthorized, `{"cod":401,"message":"invalid api key"}`, apperr.CodeInvalidRequest},
		{http.StatusTooManyRequests, ``, apperr.CodeRateLimited},
		{http.StatusInternalServerError, ``, apperr.CodeUnavailable},
		{http.StatusBadGateway, ``, apperr.CodeUnavailable},
	}

	for _, c := range cases {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
			w.Write([]byte(c.body))
		})

		_, err := p.Current(context.Background(), weather.Query{City: "London"})
		if !apperr.IsCode(err, c.code) {
			t.Errorf("status %d: expected code %s, got %v", c.status, c.code, err)
		}
	}
}

func TestMissingAPIKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")
	_, err := p.Current(context.Background(), weather.Query{City: "London"})
	if !apperr.IsCode(err, apperr.CodeInvalidRequest) {
		t.Fatalf("expected invalid_request, got %v", err)
	}
}

func TestNetworkFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	p := NewOpenWeatherProvider(http.DefaultClient, "test-key")
	p.baseURL = srv.URL

	_, err := p.Current(context.Background(), weather.Query{City: "London"})
	if !apperr.IsCode(err, apperr.CodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
