// Package units provides shared constants and validation for speed units.
package units

// Unit constants
const (
	KMH = "kmh"
	MPH = "mph"
	MPS = "mps"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{KMH, MPH, MPS}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "kmh, mph, mps"
}

// ConvertSpeed converts a speed from kilometres per hour to the target units.
// The reference dataset records speeds in km/h, so that is the stored baseline.
func ConvertSpeed(speedKMH float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedKMH * 0.621371 // km/h to mph
	case MPS:
		return speedKMH / 3.6 // km/h to m/s
	case KMH:
		return speedKMH // no conversion needed
	default:
		return speedKMH // default to km/h if unknown unit
	}
}

// AxisLabel returns the Y-axis label for charts in the given units.
func AxisLabel(unit string) string {
	switch unit {
	case MPH:
		return "Speed (mph)"
	case MPS:
		return "Speed (m/s)"
	default:
		return "Speed (km/h)"
	}
}
