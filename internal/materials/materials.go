// Package materials derives quantity estimates from the finalized
// shapes: pool coping runs along every pool perimeter, paver surface
// covers the property minus house footprints and pool water area, and
// fencing follows the property boundary.
package materials

import (
	"gonum.org/v1/gonum/floats"

	"pool-designer/internal/measure"
	"pool-designer/internal/shape"
	"pool-designer/pkg/units"
)

// Report holds the computed quantities in canvas pixels together with
// their unit-formatted presentation strings.
type Report struct {
	CopingLength float64 // px, total pool perimeter
	FenceLength  float64 // px, property perimeter
	PaverArea    float64 // px², property minus houses and pools

	CopingText string
	FenceText  string
	PaverText  string
}

// Compute builds a materials report from the current shape collections.
// A nil property yields a zero report; estimates only make sense once
// the boundary exists.
func Compute(property *shape.Shape, houses, pools []*shape.Shape, ref units.ScaleReference, unit units.Unit) Report {
	var r Report
	if property == nil {
		return r
	}

	poolPerims := make([]float64, len(pools))
	poolAreas := make([]float64, len(pools))
	for i, p := range pools {
		poolPerims[i] = p.Perimeter()
		poolAreas[i] = p.Area()
	}
	houseAreas := make([]float64, len(houses))
	for i, h := range houses {
		houseAreas[i] = h.Area()
	}

	r.CopingLength = floats.Sum(poolPerims)
	r.FenceLength = property.Perimeter()
	r.PaverArea = property.Area() - floats.Sum(houseAreas) - floats.Sum(poolAreas)
	if r.PaverArea < 0 {
		// overlapping footprints can oversubtract; clamp rather than
		// report a negative surface
		r.PaverArea = 0
	}

	r.CopingText = measure.SegmentText(r.CopingLength, ref, unit)
	r.FenceText = measure.SegmentText(r.FenceLength, ref, unit)
	r.PaverText = measure.AreaText(r.PaverArea, ref, unit)
	return r
}
