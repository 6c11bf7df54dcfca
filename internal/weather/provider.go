package weather

import (
	"context"
)

// Query identifies a place for a provider lookup: either a non-empty City
// or an explicit coordinate pair.
type Query struct {
	City string
	Lat  *float64
	Lon  *float64
}

// Provider abstracts the upstream weather service. Implementations must
// normalize into Observation / ForecastSeries at the adapter boundary and
// classify failures with the apperr codes (not_found, invalid_request,
// rate_limited, unavailable). No retries, no caching: one outbound call
// per invocation.
type Provider interface {
	Current(ctx context.Context, q Query) (Observation, error)
	Forecast(ctx context.Context, q Query) (ForecastSeries, error)
}
