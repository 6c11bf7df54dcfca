package geo

import (
	"fmt"

	"github.com/kelvins/geocoder"
)

// Resolver reverse-geocodes coordinates into a formatted address using the
// Google geocoding API. It satisfies weather.AddressResolver.
type Resolver struct{}

// NewResolver configures the geocoder with the given API key. Returns nil
// when no key is configured, which disables enrichment entirely.
func NewResolver(apiKey string) *Resolver {
	if apiKey == "" {
		return nil
	}
	geocoder.ApiKey = apiKey
	return &Resolver{}
}

// Reverse returns a human-readable address for the coordinate pair.
func (r *Resolver) Reverse(lat, lon float64) (string, error) {
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		return "", fmt.Errorf("reverse geocoding failed: %w", err)
	}
	if len(addresses) == 0 {
		return "", fmt.Errorf("no address found for %f,%f", lat, lon)
	}
	return addresses[0].FormatAddress(), nil
}
