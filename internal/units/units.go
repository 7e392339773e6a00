// Package units provides shared length and speed conversions. All
// internal computation is metric; imperial units appear only at
// configuration and display boundaries.
package units

// Conversion constants
const (
	MetersPerFoot = 0.3048
	MetersPerInch = 0.0254
)

// FeetToMeters converts a length in feet to metres.
func FeetToMeters(feet float64) float64 { return feet * MetersPerFoot }

// MetersToFeet converts a length in metres to feet.
func MetersToFeet(meters float64) float64 { return meters / MetersPerFoot }

// InchesToMeters converts a length in inches to metres.
func InchesToMeters(inches float64) float64 { return inches * MetersPerInch }

// MetersToInches converts a length in metres to inches.
func MetersToInches(meters float64) float64 { return meters / MetersPerInch }

// Speed unit constants
const (
	MPS = "mps"
	MPH = "mph"
	KPH = "kph"
)

// ValidSpeedUnits contains all valid speed unit values
var ValidSpeedUnits = []string{MPS, MPH, KPH}

// IsValidSpeedUnit checks if the given unit is in the list of valid units
func IsValidSpeedUnit(unit string) bool {
	for _, u := range ValidSpeedUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// ConvertSpeed converts a speed from meters per second to the target units
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.2369362920544
	case KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// DegreesToRadians converts an angle at the configuration boundary.
func DegreesToRadians(deg float64) float64 { return deg * 0.017453292519943295 }

// RadiansToDegrees converts an angle for display.
func RadiansToDegrees(rad float64) float64 { return rad / 0.017453292519943295 }
