package weather

import "math"

// CelsiusToFahrenheit converts a temperature from the internal unit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// MetersPerSecToMPH converts a wind speed from the internal unit.
func MetersPerSecToMPH(ms float64) float64 {
	return ms * 2.23694
}

// ConvertTemperature renders an internal Celsius value in the requested units,
// rounded to one decimal place.
func ConvertTemperature(c float64, units Units) float64 {
	if units == UnitsImperial {
		return round1(CelsiusToFahrenheit(c))
	}
	return round1(c)
}

// ConvertWindSpeed renders an internal m/s value in the requested units,
// rounded to one decimal place.
func ConvertWindSpeed(ms float64, units Units) float64 {
	if units == UnitsImperial {
		return round1(MetersPerSecToMPH(ms))
	}
	return round1(ms)
}

// TemperatureUnit returns the display unit for the given system.
func TemperatureUnit(units Units) string {
	if units == UnitsImperial {
		return "°F"
	}
	return "°C"
}

// WindSpeedUnit returns the display unit for the given system.
func WindSpeedUnit(units Units) string {
	if units == UnitsImperial {
		return "mph"
	}
	return "m/s"
}

var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassDirection maps a wind bearing in degrees onto a 16-point rose.
func CompassDirection(degrees float64) string {
	sector := 360.0 / float64(len(compassPoints))
	idx := int(math.Round(degrees/sector)) % len(compassPoints)
	if idx < 0 {
		idx += len(compassPoints)
	}
	return compassPoints[idx]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
