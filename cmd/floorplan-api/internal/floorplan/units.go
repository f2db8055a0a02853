package floorplan

import (
	"go.uber.org/zap"
)

// Unit is a physical measurement unit.
type Unit string

// The supported measurement units.
const (
	UnitMeters      Unit = "m"
	UnitFeet        Unit = "ft"
	UnitInches      Unit = "in"
	UnitCentimeters Unit = "cm"
)

const (
	feetPerMeter        = 3.28084
	metersPerInch       = 0.0254
	centimetersPerMeter = 100
)

// Units lists all supported measurement units.
var Units = []Unit{UnitMeters, UnitFeet, UnitInches, UnitCentimeters}

var log = zap.NewNop().Sugar()

// SetLogger sets the logger which reports conversions with unknown units.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	log = l
}

// IsValid returns true if the unit is one of the supported units.
func (u Unit) IsValid() bool {
	for _, unit := range Units {
		if u == unit {
			return true
		}
	}
	return false
}

// Metric returns true for metric units.
func (u Unit) Metric() bool {
	return u == UnitMeters || u == UnitCentimeters
}

// ToMeters converts a value given in unit to meters. An unknown unit is
// treated as meters and reported as a warning.
func ToMeters(value float64, unit Unit) float64 {
	switch unit {
	case UnitMeters:
		return value
	case UnitFeet:
		return value / feetPerMeter
	case UnitInches:
		return value * metersPerInch
	case UnitCentimeters:
		return value / centimetersPerMeter
	default:
		log.Warnw("unknown unit, treating as meters", "unit", string(unit), "value", value)
		return value
	}
}

// FromMeters converts meters to the given unit. An unknown unit returns
// meters and is reported as a warning.
func FromMeters(meters float64, unit Unit) float64 {
	switch unit {
	case UnitMeters:
		return meters
	case UnitFeet:
		return meters * feetPerMeter
	case UnitInches:
		return meters / metersPerInch
	case UnitCentimeters:
		return meters * centimetersPerMeter
	default:
		log.Warnw("unknown unit, returning meters", "unit", string(unit), "meters", meters)
		return meters
	}
}
