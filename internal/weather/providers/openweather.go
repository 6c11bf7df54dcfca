package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"weather-mcp/internal/apperr"
	"weather-mcp/internal/weather"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements weather.Provider against OpenWeatherMap.
// All requests are made in metric units; conversion happens downstream.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

var _ weather.Provider = (*OpenWeatherProvider)(nil)

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherProvider{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  client,
		circuit: cb,
	}
}

// Current fetches current conditions for the queried place.
func (p *OpenWeatherProvider) Current(ctx context.Context, q weather.Query) (weather.Observation, error) {
	resp, err := p.get(ctx, "/weather", q)
	if err != nil {
		return weather.Observation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return weather.Observation{}, classifyStatus(resp)
	}

	var payload currentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Observation{}, apperr.Wrap(apperr.CodeUnavailable, "malformed provider response", err)
	}
	return payload.toObservation(), nil
}

// Forecast fetches the 5-day / 3-hour forecast series for the queried place.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, q weather.Query) (weather.ForecastSeries, error) {
	resp, err := p.get(ctx, "/forecast", q)
	if err != nil {
		return weather.ForecastSeries{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return weather.ForecastSeries{}, classifyStatus(resp)
	}

	var payload forecastPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ForecastSeries{}, apperr.Wrap(apperr.CodeUnavailable, "malformed provider response", err)
	}
	return payload.toSeries(), nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, path string, q weather.Query) (*http.Response, error) {
	if p.apiKey == "" {
		return nil, apperr.New(apperr.CodeInvalidRequest, "openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	if q.Lat != nil && q.Lon != nil {
		values.Set("lat", fmt.Sprintf("%f", *q.Lat))
		values.Set("lon", fmt.Sprintf("%f", *q.Lon))
	} else {
		values.Set("q", q.City)
	}

	u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to build provider request", err)
	}

	return doResilientRequest(ctx, p.client, p.circuit, req)
}

// currentPayload mirrors the subset of the /weather response we consume.
type currentPayload struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Sys  struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Weather    []weatherEntry `json:"weather"`
	Visibility float64        `json:"visibility"`
	Clouds     struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Rain struct {
		OneH float64 `json:"1h"`
	} `json:"rain"`
	Snow struct {
		OneH float64 `json:"1h"`
	} `json:"snow"`
}

type weatherEntry struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

func (p currentPayload) toObservation() weather.Observation {
	obs := weather.Observation{
		Location: weather.Location{
			Name:      p.Name,
			Country:   p.Sys.Country,
			Latitude:  p.Coord.Lat,
			Longitude: p.Coord.Lon,
		},
		Temperature:    p.Main.Temp,
		FeelsLike:      p.Main.FeelsLike,
		HumidityPct:    p.Main.Humidity,
		PressureHpa:    p.Main.Pressure,
		WindSpeedMS:    p.Wind.Speed,
		WindDeg:        p.Wind.Deg,
		VisibilityM:    p.Visibility,
		CloudinessPct:  p.Clouds.All,
		RainLastHourMM: p.Rain.OneH,
		SnowLastHourMM: p.Snow.OneH,
	}
	if p.Dt > 0 {
		obs.Timestamp = time.Unix(p.Dt, 0).UTC()
	}
	if p.Sys.Sunrise > 0 {
		obs.Sunrise = time.Unix(p.Sys.Sunrise, 0).UTC()
	}
	if p.Sys.Sunset > 0 {
		obs.Sunset = time.Unix(p.Sys.Sunset, 0).UTC()
	}
	obs.Condition, obs.Description = mapCondition(p.Weather)
	return obs
}

// forecastPayload mirrors the subset of the /forecast response we consume.
type forecastPayload struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Coord   struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
	} `json:"city"`
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []weatherEntry `json:"weather"`
		Pop     float64        `json:"pop"`
	} `json:"list"`
}

func (p forecastPayload) toSeries() weather.ForecastSeries {
	series := weather.ForecastSeries{
		Location: weather.Location{
			Name:      p.City.Name,
			Country:   p.City.Country,
			Latitude:  p.City.Coord.Lat,
			Longitude: p.City.Coord.Lon,
		},
		Samples: make([]weather.Sample, 0, len(p.List)),
	}
	for _, item := range p.List {
		cond, desc := mapCondition(item.Weather)
		series.Samples = append(series.Samples, weather.Sample{
			Timestamp:         time.Unix(item.Dt, 0).UTC(),
			TemperatureC:      item.Main.Temp,
			HumidityPct:       item.Main.Humidity,
			WindSpeedMS:       item.Wind.Speed,
			Condition:         cond,
			Description:       desc,
			PrecipProbability: item.Pop,
		})
	}
	return series
}

func mapCondition(items []weatherEntry) (weather.Condition, string) {
	if len(items) == 0 {
		return weather.ConditionUnknown, ""
	}
	entry := items[0]
	switch entry.Main {
	case "Clear":
		return weather.ConditionClear, entry.Description
	case "Clouds":
		return weather.ConditionCloudy, entry.Description
	case "Rain", "Drizzle":
		return weather.ConditionRain, entry.Description
	case "Snow":
		return weather.ConditionSnow, entry.Description
	case "Thunderstorm":
		return weather.ConditionStorm, entry.Description
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist, entry.Description
	default:
		return weather.ConditionUnknown, entry.Description
	}
}
