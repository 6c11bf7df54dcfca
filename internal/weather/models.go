package weather

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Units selects the measurement system for client-facing payloads.
// Internally all values are carried in metric (Celsius, m/s) and converted
// at the payload boundary.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Location identifies the place a reading belongs to, as resolved by the
// upstream provider.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Sample is one normalized sub-day forecast observation. Immutable once
// built by the provider adapter; provider field names never leak past it.
type Sample struct {
	Timestamp    time.Time `json:"timestamp"` // always UTC
	TemperatureC float64   `json:"temperatureC"`
	HumidityPct  float64   `json:"humidityPercent"`
	WindSpeedMS  float64   `json:"windSpeed"`
	Condition    Condition `json:"condition"`
	Description  string    `json:"description"`

	// PrecipProbability is in [0,1]; zero when the provider omits it.
	PrecipProbability float64 `json:"precipProbability"`
}

// Observation is the normalized current-conditions reading.
type Observation struct {
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	HumidityPct float64   `json:"humidityPercent"`
	PressureHpa float64   `json:"pressureHpa"`
	WindSpeedMS float64   `json:"windSpeed"`
	WindDeg     float64   `json:"windDeg"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`

	VisibilityM   float64   `json:"visibilityM"`
	CloudinessPct float64   `json:"cloudinessPercent"`
	Sunrise       time.Time `json:"sunrise"`
	Sunset        time.Time `json:"sunset"`

	RainLastHourMM float64 `json:"rainLastHourMm"`
	SnowLastHourMM float64 `json:"snowLastHourMm"`
}

// ForecastSeries is the normalized raw forecast: the resolved location plus
// the provider's time-ordered sub-day samples.
type ForecastSeries struct {
	Location Location `json:"location"`
	Samples  []Sample `json:"samples"`
}

// DailySummary aggregates one calendar day (UTC) of forecast samples.
// Invariants: MinTemperature <= MaxTemperature; Samples >= 1.
type DailySummary struct {
	Date            time.Time `json:"date"` // midnight UTC of the summarized day
	MinTemperatureC float64   `json:"minTemperatureC"`
	MaxTemperatureC float64   `json:"maxTemperatureC"`
	AvgHumidityPct  float64   `json:"avgHumidityPercent"`
	MaxPrecipProb   float64   `json:"maxPrecipProbability"`
	Condition       Condition `json:"condition"`
	Description     string    `json:"description"`
	SampleCount     int       `json:"sampleCount"`
}
