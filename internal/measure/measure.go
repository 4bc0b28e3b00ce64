// Package measure derives unit-formatted measurement labels from shape
// geometry. Everything here is a pure function of the vertex list, the
// active scale reference, and the active unit; labels are recomputed
// and replaced whenever either changes.
package measure

import (
	"fmt"

	"pool-designer/internal/shape"
	"pool-designer/pkg/geometry"
	"pool-designer/pkg/units"
)

// EdgeLabel is a formatted length for one polygon edge, positioned at
// the edge midpoint.
type EdgeLabel struct {
	Index       int // edge from vertex[Index] to vertex[(Index+1) mod n]
	Midpoint    geometry.Point2D
	PixelLength float64
	Text        string
}

// NameLabel is a shape's centered name with a fitted font size.
type NameLabel struct {
	Center   geometry.Point2D
	Text     string
	FontSize float64
}

// FormatPixels renders a pixel length when no scale reference has been
// established yet.
func FormatPixels(pixels float64) string {
	return fmt.Sprintf("%.0f px", pixels)
}

// SegmentText formats a single segment length in the active unit, or
// in raw pixels when the scale reference is not yet valid.
func SegmentText(pixelLength float64, ref units.ScaleReference, unit units.Unit) string {
	if !ref.Valid() {
		return FormatPixels(pixelLength)
	}
	return units.FormatLength(ref.PixelsToUnit(pixelLength, unit), unit)
}

// EdgeLabels computes one label per edge of the implicitly closed
// polygon.
func EdgeLabels(vertices []geometry.Point2D, ref units.ScaleReference, unit units.Unit) []EdgeLabel {
	if len(vertices) < 2 {
		return nil
	}

	n := len(vertices)
	labels := make([]EdgeLabel, 0, n)
	for i := 0; i < n; i++ {
		a := vertices[i]
		b := vertices[(i+1)%n]
		length := a.Distance(b)
		labels = append(labels, EdgeLabel{
			Index:       i,
			Midpoint:    geometry.Point2D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2},
			PixelLength: length,
			Text:        SegmentText(length, ref, unit),
		})
	}
	return labels
}

// AreaText formats a shape's enclosed area in the active unit.
func AreaText(pixelArea float64, ref units.ScaleReference, unit units.Unit) string {
	if !ref.Valid() {
		return fmt.Sprintf("%.0f px²", pixelArea)
	}
	return units.FormatArea(ref.PixelsAreaToUnit(pixelArea, unit), unit)
}

// Name label sizing bounds, in canvas points.
const (
	minNameFontSize = 8
	maxNameFontSize = 48
	nameFitFraction = 0.9
)

// estimated glyph width as a fraction of the font size
const glyphWidthFactor = 0.6

// FitNameLabel centers a shape's name in its bounding box and picks
// the largest font size between the floor and ceiling whose estimated
// extent stays within 90% of the box.
func FitNameLabel(name string, bounds geometry.Rect) NameLabel {
	label := NameLabel{
		Center:   bounds.Center(),
		Text:     name,
		FontSize: minNameFontSize,
	}
	if name == "" {
		return label
	}

	maxW := bounds.Width * nameFitFraction
	maxH := bounds.Height * nameFitFraction

	size := float64(minNameFontSize)
	for size < maxNameFontSize {
		next := size + 1
		if float64(len(name))*glyphWidthFactor*next > maxW || next > maxH {
			break
		}
		size = next
	}
	label.FontSize = size
	return label
}

// ShapeLabels bundles the derived labels for one finalized shape.
// Edge-length labels are attached for property shapes; pools carry
// edge labels plus the fitted name label. Houses render without
// labels, matching how finished designs present them.
type ShapeLabels struct {
	Edges []EdgeLabel
	Name  *NameLabel
}

// ForShape derives the labels for a shape under the given scale
// reference and unit.
func ForShape(s *shape.Shape, ref units.ScaleReference, unit units.Unit) ShapeLabels {
	var out ShapeLabels
	switch s.Kind {
	case shape.KindProperty:
		out.Edges = EdgeLabels(s.Vertices, ref, unit)
	case shape.KindPool:
		out.Edges = EdgeLabels(s.Vertices, ref, unit)
		name := FitNameLabel(s.Name, s.Bounds())
		out.Name = &name
	}
	return out
}
