// Package canvas provides overlay types for the design canvas.
package canvas

import (
	"image/color"

	"pool-designer/pkg/geometry"
)

// Overlay is a named group of drawable primitives in scene coordinates.
type Overlay struct {
	Polygons []OverlayPolygon
	Circles  []OverlayCircle
	Lines    []OverlayLine
	Texts    []OverlayText
	Color    color.RGBA
}

// OverlayPolygon is a polygon to draw, optionally filled.
type OverlayPolygon struct {
	Points []geometry.Point2D
	Filled bool
}

// OverlayCircle is a circle marker, optionally filled.
type OverlayCircle struct {
	Center geometry.Point2D
	Radius float64
	Filled bool
}

// OverlayLine is a single segment with a stroke thickness.
type OverlayLine struct {
	From, To  geometry.Point2D
	Thickness int
}

// OverlayText is a centered text label.
type OverlayText struct {
	Text   string
	Center geometry.Point2D
	Scale  int // font pixel scale at zoom 1; 0 picks a zoom-based default
}
