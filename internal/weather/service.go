package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"weather-mcp/internal/apperr"
)

// MaxForecastDays is the largest forecast window a caller may request.
// Requests outside 1..MaxForecastDays are rejected, matching the upstream
// five-day forecast horizon.
const MaxForecastDays = 5

// DefaultForecastDays is used when the caller does not ask for a window.
const DefaultForecastDays = 3

// AddressResolver turns a coordinate pair into a human-readable address.
// A nil resolver disables enrichment.
type AddressResolver interface {
	Reverse(lat, lon float64) (string, error)
}

// Service orchestrates provider lookups and shapes client-facing payloads.
type Service struct {
	provider Provider
	resolver AddressResolver
	logger   *slog.Logger
}

// NewService creates a Service. resolver may be nil.
func NewService(provider Provider, resolver AddressResolver, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		resolver: resolver,
		logger:   logger.With("component", "weather.service"),
	}
}

// WindReport describes wind in the requested units plus a compass bearing.
type WindReport struct {
	Speed     float64 `json:"speed"`
	Unit      string  `json:"unit"`
	Degrees   float64 `json:"degrees"`
	Direction string  `json:"direction"`
}

// CurrentReport is the payload for the current-weather tools.
type CurrentReport struct {
	Location        Location   `json:"location"`
	Address         string     `json:"address,omitempty"`
	Units           Units      `json:"units"`
	Timestamp       string     `json:"timestamp"`
	Temperature     float64    `json:"temperature"`
	FeelsLike       float64    `json:"feelsLike"`
	TemperatureUnit string     `json:"temperatureUnit"`
	Humidity        float64    `json:"humidityPercent"`
	Pressure        float64    `json:"pressureHpa"`
	Wind            WindReport `json:"wind"`
	Condition       Condition  `json:"condition"`
	Description     string     `json:"description"`
	VisibilityKM    float64    `json:"visibilityKm"`
	Cloudiness      float64    `json:"cloudinessPercent"`
	Sunrise         string     `json:"sunrise,omitempty"`
	Sunset          string     `json:"sunset,omitempty"`
	RainLastHourMM  float64    `json:"rainLastHourMm,omitempty"`
	SnowLastHourMM  float64    `json:"snowLastHourMm,omitempty"`
}

// DailyReport is one day of a forecast payload.
type DailyReport struct {
	Date           string    `json:"date"`
	MinTemperature float64   `json:"minTemperature"`
	MaxTemperature float64   `json:"maxTemperature"`
	AvgHumidity    float64   `json:"avgHumidityPercent"`
	MaxPrecipProb  float64   `json:"maxPrecipProbability"`
	Condition      Condition `json:"condition"`
	Description    string    `json:"description"`
}

// ForecastReport is the payload for the forecast tool.
type ForecastReport struct {
	Location        Location      `json:"location"`
	Units           Units         `json:"units"`
	TemperatureUnit string        `json:"temperatureUnit"`
	Days            []DailyReport `json:"days"`
}

// Current returns current conditions for a city.
func (s *Service) Current(ctx context.Context, city string, units Units) (CurrentReport, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return CurrentReport{}, apperr.New(apperr.CodeInvalidParameter, "city must not be empty")
	}
	units = normalizeUnits(units)

	obs, err := s.provider.Current(ctx, Query{City: city})
	if err != nil {
		return CurrentReport{}, err
	}
	s.logger.Debug("current weather fetched", "city", city, "condition", obs.Condition)
	return s.buildCurrentReport(obs, units, false), nil
}

// ByCoordinates returns current conditions for an explicit coordinate pair.
// Coordinates are range-checked before any network call is issued.
func (s *Service) ByCoordinates(ctx context.Context, lat, lon float64, units Units) (CurrentReport, error) {
	if lat < -90 || lat > 90 {
		return CurrentReport{}, apperr.New(apperr.CodeInvalidParameter,
			fmt.Sprintf("latitude %g is outside [-90, 90]", lat))
	}
	if lon < -180 || lon > 180 {
		return CurrentReport{}, apperr.New(apperr.CodeInvalidParameter,
			fmt.Sprintf("longitude %g is outside [-180, 180]", lon))
	}
	units = normalizeUnits(units)

	obs, err := s.provider.Current(ctx, Query{Lat: &lat, Lon: &lon})
	if err != nil {
		return CurrentReport{}, err
	}
	s.logger.Debug("coordinate weather fetched", "lat", lat, "lon", lon, "condition", obs.Condition)
	return s.buildCurrentReport(obs, units, true), nil
}

// Forecast returns up to days day-level summaries for a city.
func (s *Service) Forecast(ctx context.Context, city string, days int, units Units) (ForecastReport, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return ForecastReport{}, apperr.New(apperr.CodeInvalidParameter, "city must not be empty")
	}
	if days < 1 || days > MaxForecastDays {
		return ForecastReport{}, apperr.New(apperr.CodeInvalidParameter,
			fmt.Sprintf("days must be between 1 and %d", MaxForecastDays))
	}
	units = normalizeUnits(units)

	series, err := s.provider.Forecast(ctx, Query{City: city})
	if err != nil {
		return ForecastReport{}, err
	}

	summaries := AggregateDaily(series.Samples, days)
	s.logger.Debug("forecast aggregated", "city", city, "samples", len(series.Samples), "days", len(summaries))

	report := ForecastReport{
		Location:        series.Location,
		Units:           units,
		TemperatureUnit: TemperatureUnit(units),
		Days:            make([]DailyReport, 0, len(summaries)),
	}
	for _, d := range summaries {
		report.Days = append(report.Days, DailyReport{
			Date:           d.Date.Format("2006-01-02"),
			MinTemperature: ConvertTemperature(d.MinTemperatureC, units),
			MaxTemperature: ConvertTemperature(d.MaxTemperatureC, units),
			AvgHumidity:    round1(d.AvgHumidityPct),
			MaxPrecipProb:  d.MaxPrecipProb,
			Condition:      d.Condition,
			Description:    d.Description,
		})
	}
	return report, nil
}

func (s *Service) buildCurrentReport(obs Observation, units Units, enrich bool) CurrentReport {
	report := CurrentReport{
		Location:        obs.Location,
		Units:           units,
		Temperature:     ConvertTemperature(obs.Temperature, units),
		FeelsLike:       ConvertTemperature(obs.FeelsLike, units),
		TemperatureUnit: TemperatureUnit(units),
		Humidity:        obs.HumidityPct,
		Pressure:        obs.PressureHpa,
		Wind: WindReport{
			Speed:     ConvertWindSpeed(obs.WindSpeedMS, units),
			Unit:      WindSpeedUnit(units),
			Degrees:   obs.WindDeg,
			Direction: CompassDirection(obs.WindDeg),
		},
		Condition:      obs.Condition,
		Description:    obs.Description,
		VisibilityKM:   round1(obs.VisibilityM / 1000),
		Cloudiness:     obs.CloudinessPct,
		RainLastHourMM: obs.RainLastHourMM,
		SnowLastHourMM: obs.SnowLastHourMM,
	}
	if !obs.Timestamp.IsZero() {
		report.Timestamp = obs.Timestamp.UTC().Format(time.RFC3339)
	}
	if !obs.Sunrise.IsZero() {
		report.Sunrise = obs.Sunrise.UTC().Format(time.RFC3339)
	}
	if !obs.Sunset.IsZero() {
		report.Sunset = obs.Sunset.UTC().Format(time.RFC3339)
	}

	if enrich && s.resolver != nil {
		addr, err := s.resolver.Reverse(obs.Location.Latitude, obs.Location.Longitude)
		if err != nil {
			// Enrichment only; the weather answer stands on its own.
			s.logger.Warn("reverse geocode failed", "error", err)
		} else {
			report.Address = addr
		}
	}
	return report
}

// normalizeUnits coerces anything that is not imperial, including the empty
// string and unrecognized values, to metric. Callers get a usable answer
// rather than an error; the tool schemas reject bad units before this runs.
func normalizeUnits(units Units) Units {
	if units == UnitsImperial {
		return UnitsImperial
	}
	return UnitsMetric
}
