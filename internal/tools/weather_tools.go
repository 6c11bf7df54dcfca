// Package tools declares the weather tool surface exposed to MCP clients
// and binds it to the weather service.
package tools

import (
	"context"

	"weather-mcp/internal/mcp"
	"weather-mcp/internal/weather"
)

// CurrentWeatherArgs are the arguments of get_current_weather.
type CurrentWeatherArgs struct {
	City  string `json:"city" validate:"required"`
	Units string `json:"units" validate:"omitempty,oneof=metric imperial"`
}

// ForecastArgs are the arguments of get_weather_forecast.
type ForecastArgs struct {
	City  string `json:"city" validate:"required"`
	Days  int    `json:"days" validate:"min=1,max=5"`
	Units string `json:"units" validate:"omitempty,oneof=metric imperial"`
}

// CoordinatesArgs are the arguments of get_weather_by_coordinates.
type CoordinatesArgs struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Units     string  `json:"units" validate:"omitempty,oneof=metric imperial"`
}

var unitsProperty = mcp.Property{
	Type:        "string",
	Description: "Units of measurement",
	Enum:        []string{"metric", "imperial"},
	Default:     "metric",
}

// Register adds the three weather tools to the registry.
func Register(reg *mcp.Registry, svc *weather.Service) error {
	specs := []mcp.ToolSpec{
		{
			Name:        "get_current_weather",
			Description: "Get current weather for a city",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"city": {
						Type:        "string",
						Description: "City name (e.g. 'London', 'New York')",
					},
					"units": unitsProperty,
				},
				Required: []string{"city"},
			},
			NewArgs: func() any { return &CurrentWeatherArgs{} },
			Handler: func(ctx context.Context, args any) (any, error) {
				a := args.(*CurrentWeatherArgs)
				return svc.Current(ctx, a.City, weather.Units(a.Units))
			},
		},
		{
			Name:        "get_weather_forecast",
			Description: "Get a day-by-day weather forecast for a city",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"city": {
						Type:        "string",
						Description: "City name (e.g. 'London', 'New York')",
					},
					"days": {
						Type:        "integer",
						Description: "Number of days (1-5)",
						Minimum:     floatPtr(1),
						Maximum:     floatPtr(weather.MaxForecastDays),
						Default:     weather.DefaultForecastDays,
					},
					"units": unitsProperty,
				},
				Required: []string{"city"},
			},
			NewArgs: func() any { return &ForecastArgs{Days: weather.DefaultForecastDays} },
			Handler: func(ctx context.Context, args any) (any, error) {
				a := args.(*ForecastArgs)
				return svc.Forecast(ctx, a.City, a.Days, weather.Units(a.Units))
			},
		},
		{
			Name:        "get_weather_by_coordinates",
			Description: "Get current weather for a latitude/longitude pair",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"latitude": {
						Type:        "number",
						Description: "Latitude of the location",
						Minimum:     floatPtr(-90),
						Maximum:     floatPtr(90),
					},
					"longitude": {
						Type:        "number",
						Description: "Longitude of the location",
						Minimum:     floatPtr(-180),
						Maximum:     floatPtr(180),
					},
					"units": unitsProperty,
				},
				Required: []string{"latitude", "longitude"},
			},
			NewArgs: func() any { return &CoordinatesArgs{} },
			Handler: func(ctx context.Context, args any) (any, error) {
				a := args.(*CoordinatesArgs)
				return svc.ByCoordinates(ctx, a.Latitude, a.Longitude, weather.Units(a.Units))
			},
		},
	}

	for _, spec := range specs {
		if err := reg.Register(spec); err != nil {
			return err
		}
	}
	return nil
}

func floatPtr(v float64) *float64 {
	return &v
}
