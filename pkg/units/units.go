// Package units provides real-world unit conversion for canvas-space
// measurements via a user-established scale reference.
package units

import (
	"fmt"
	"math"
	"strings"
)

// metersPerFoot is the exact international foot.
const metersPerFoot = 0.3048

// Unit identifies a display unit for lengths and areas.
type Unit int

const (
	Meters Unit = iota
	Feet
)

func (u Unit) String() string {
	switch u {
	case Meters:
		return "m"
	case Feet:
		return "ft"
	default:
		return "unknown"
	}
}

// Parse returns the Unit named by s ("m", "meters", "ft", "feet").
func Parse(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "meter", "meters", "metric":
		return Meters, nil
	case "ft", "feet", "foot", "imperial":
		return Feet, nil
	default:
		return Meters, fmt.Errorf("unknown unit %q", s)
	}
}

// Convert converts a length value between units.
func Convert(value float64, from, to Unit) float64 {
	if from == to {
		return value
	}
	if from == Feet && to == Meters {
		return value * metersPerFoot
	}
	return value / metersPerFoot
}

// ScaleReference fixes the ratio between canvas pixels and real-world
// length. It is established once by the user confirming a reference
// segment and stays immutable until explicitly reset.
type ScaleReference struct {
	RealLength  float64 // Real-world length of the reference segment
	Unit        Unit    // Unit RealLength is expressed in
	PixelLength float64 // On-canvas length of the reference segment, pixels
}

// Valid reports whether the reference can be used for conversion.
func (s ScaleReference) Valid() bool {
	return s.RealLength > 0 && s.PixelLength > 0
}

// PixelsToUnit converts a pixel length to the target unit.
func (s ScaleReference) PixelsToUnit(pixels float64, target Unit) float64 {
	real := pixels / s.PixelLength * s.RealLength
	return Convert(real, s.Unit, target)
}

// UnitToPixels converts a length in the given unit to canvas pixels.
func (s ScaleReference) UnitToPixels(value float64, from Unit) float64 {
	real := Convert(value, from, s.Unit)
	return real / s.RealLength * s.PixelLength
}

// PixelsAreaToUnit converts a pixel area to squared target units.
func (s ScaleReference) PixelsAreaToUnit(pixelArea float64, target Unit) float64 {
	linear := s.RealLength / s.PixelLength
	real := pixelArea * linear * linear
	factor := Convert(1, s.Unit, target)
	return real * factor * factor
}

// FormatLength formats a length value for display in the given unit.
// Meters render as "3.05 m". Feet render as feet and rounded inches,
// e.g. `10'3"`; 12 rounded inches roll over into the next foot.
func FormatLength(value float64, unit Unit) string {
	if unit == Meters {
		return fmt.Sprintf("%.2f m", value)
	}

	feet := int(value)
	inches := int(math.Round((value - float64(feet)) * 12))
	if inches == 12 {
		feet++
		inches = 0
	}
	return fmt.Sprintf("%d'%d\"", feet, inches)
}

// FormatArea formats an area value for display in the given unit.
func FormatArea(value float64, unit Unit) string {
	if unit == Meters {
		return fmt.Sprintf("%.2f m²", value)
	}
	return fmt.Sprintf("%.1f ft²", value)
}
