// Package colorutil provides the shared drawing palette.
package colorutil

import "image/color"

// Common overlay colors used throughout the application.
var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Red    = color.RGBA{R: 220, G: 40, B: 40, A: 255}

	// Shape palette.
	PropertyGreen = color.RGBA{R: 40, G: 170, B: 60, A: 255}
	HouseGray     = color.RGBA{R: 130, G: 130, B: 130, A: 255}
	PoolBlue      = color.RGBA{R: 50, G: 120, B: 220, A: 255}
	GridGray      = color.RGBA{R: 70, G: 70, B: 70, A: 255}
	DraftOrange   = color.RGBA{R: 240, G: 150, B: 40, A: 255}
)

// Blend mixes src over dst at the given opacity (0..1).
func Blend(dst, src color.RGBA, opacity float64) color.RGBA {
	if opacity >= 1 {
		return src
	}
	if opacity <= 0 {
		return dst
	}
	inv := 1 - opacity
	return color.RGBA{
		R: uint8(float64(src.R)*opacity + float64(dst.R)*inv),
		G: uint8(float64(src.G)*opacity + float64(dst.G)*inv),
		B: uint8(float64(src.B)*opacity + float64(dst.B)*inv),
		A: 255,
	}
}
