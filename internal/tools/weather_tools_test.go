package tools

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"weather-mcp/internal/apperr"
	"weather-mcp/internal/mcp"
	"weather-mcp/internal/weather"
)

type fakeProvider struct {
	calls int
}

func (p *fakeProvider) Current(ctx context.Context, q weather.Query) (weather.Observation, error) {
	p.calls++
	return weather.Observation{
		Location:    weather.Location{Name: "London", Country: "GB", Latitude: 51.5, Longitude: -0.12},
		Timestamp:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Temperature: 18,
		FeelsLike:   17,
		HumidityPct: 60,
		WindSpeedMS: 4,
		Condition:   weather.ConditionClear,
		Description: "clear sky",
	}, nil
}

func (p *fakeProvider) Forecast(ctx context.Context, q weather.Query) (weather.ForecastSeries, error) {
	p.calls++
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := weather.ForecastSeries{
		Location: weather.Location{Name: "London", Country: "GB"},
	}
	for day := 0; day < 5; day++ {
		for hour := 0; hour < 24; hour += 3 {
			series.Samples = append(series.Samples, weather.Sample{
				Timestamp:    base.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour),
				TemperatureC: 15,
				HumidityPct:  50,
				Condition:    weather.ConditionCloudy,
				Description:  "scattered clouds",
			})
		}
	}
	return series, nil
}

func newTestRegistry(t *testing.T) (*mcp.Registry, *fakeProvider) {
	t.Helper()
	prov := &fakeProvider{}
	svc := weather.NewService(prov, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	reg := mcp.NewRegistry()
	if err := Register(reg, svc); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return reg, prov
}

func TestRegisterExposesThreeTools(t *testing.T) {
	reg, _ := newTestRegistry(t)

	names := make(map[string]bool)
	for _, tool := range reg.Tools() {
		names[tool.Name] = true
		if tool.Description == "" {
			t.Errorf("%s has no description", tool.Name)
		}
		if tool.InputSchema.Type != "object" {
			t.Errorf("%s schema type = %q", tool.Name, tool.InputSchema.Type)
		}
	}
	for _, want := range []string{"get_current_weather", "get_weather_forecast", "get_weather_by_coordinates"} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}
}

func TestCurrentWeatherCall(t *testing.T) {
	reg, prov := newTestRegistry(t)

	result, err := reg.Call(context.Background(), "get_current_weather",
		map[string]any{"city": "London"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report, ok := result.(weather.CurrentReport)
	if !ok {
		t.Fatalf("result type = %T", result)
	}
	if report.Location.Name != "London" {
		t.Errorf("location = %q", report.Location.Name)
	}
	if prov.calls != 1 {
		t.Errorf("provider calls = %d, want 1", prov.calls)
	}
}

func TestCurrentWeatherMissingCity(t *testing.T) {
	reg, prov := newTestRegistry(t)

	_, err := reg.Call(context.Background(), "get_current_weather", map[string]any{})
	if !apperr.IsCode(err, apperr.CodeMissingParameter) {
		t.Fatalf("expected missing_parameter, got %v", err)
	}
	if prov.calls != 0 {
		t.Errorf("provider called despite missing city")
	}
}

func TestForecastDefaultsDays(t *testing.T) {
	reg, _ := newTestRegistry(t)

	result, err := reg.Call(context.Background(), "get_weather_forecast",
		map[string]any{"city": "London"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report := result.(weather.ForecastReport)
	if got := len(report.Days); got != weather.DefaultForecastDays {
		t.Errorf("days = %d, want default %d", got, weather.DefaultForecastDays)
	}
}

func TestForecastDaysOutOfRange(t *testing.T) {
	reg, prov := newTestRegistry(t)

	for _, days := range []int{0, -1, 6, 42} {
		_, err := reg.Call(context.Background(), "get_weather_forecast",
			map[string]any{"city": "London", "days": days})
		if !apperr.IsCode(err, apperr.CodeInvalidParameter) {
			t.Errorf("days=%d: expected invalid_parameter, got %v", days, err)
		}
	}
	if prov.calls != 0 {
		t.Errorf("provider called %d times for out-of-range days", prov.calls)
	}
}

func TestCoordinatesCall(t *testing.T) {
	reg, _ := newTestRegistry(t)

	result, err := reg.Call(context.Background(), "get_weather_by_coordinates",
		map[string]any{"latitude": 51.5, "longitude": -0.12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.(weather.CurrentReport); !ok {
		t.Fatalf("result type = %T", result)
	}
}

func TestCoordinatesZeroZeroIsValid(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Call(context.Background(), "get_weather_by_coordinates",
		map[string]any{"latitude": 0, "longitude": 0})
	if err != nil {
		t.Fatalf("0,0 must be accepted: %v", err)
	}
}

func TestCoordinatesOutOfRange(t *testing.T) {
	reg, prov := newTestRegistry(t)

	_, err := reg.Call(context.Background(), "get_weather_by_coordinates",
		map[string]any{"latitude": 200, "longitude": 0})
	if !apperr.IsCode(err, apperr.CodeInvalidParameter) {
		t.Fatalf("expected invalid_parameter, got %v", err)
	}
	if prov.calls != 0 {
		t.Errorf("provider called for out-of-range latitude")
	}
}

func TestInvalidUnitsRejected(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Call(context.Background(), "get_current_weather",
		map[string]any{"city": "London", "units": "kelvin"})
	if !apperr.IsCode(err, apperr.CodeInvalidParameter) {
		t.Fatalf("expected invalid_parameter, got %v", err)
	}
}

func TestImperialUnitsConvert(t *testing.T) {
	reg, _ := newTestRegistry(t)

	result, err := reg.Call(context.Background(), "get_current_weather",
		map[string]any{"city": "London", "units": "imperial"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report := result.(weather.CurrentReport)
	if report.Units != weather.UnitsImperial {
		t.Errorf("units = %q", report.Units)
	}
	// 18C is 64.4F.
	if report.Temperature != 64.4 {
		t.Errorf("temperature = %v, want 64.4", report.Temperature)
	}
}
