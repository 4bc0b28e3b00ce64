package materials

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pool-designer/internal/shape"
	"pool-designer/pkg/geometry"
	"pool-designer/pkg/units"
)

func rect(x, y, w, h float64) []geometry.Point2D {
	return []geometry.Point2D{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}

func TestComputeWithoutProperty(t *testing.T) {
	r := Compute(nil, nil, nil, units.ScaleReference{}, units.Feet)
	assert.Zero(t, r.CopingLength)
	assert.Zero(t, r.FenceLength)
	assert.Zero(t, r.PaverArea)
}

func TestCompute(t *testing.T) {
	property := shape.New(shape.KindProperty, rect(0, 0, 400, 300))
	house := shape.New(shape.KindHouse, rect(10, 10, 100, 100))
	poolA := shape.New(shape.KindPool, rect(200, 50, 100, 50))
	poolB := shape.New(shape.KindPool, rect(200, 150, 50, 50))

	ref := units.ScaleReference{RealLength: 10, Unit: units.Feet, PixelLength: 100}
	r := Compute(property, []*shape.Shape{house}, []*shape.Shape{poolA, poolB}, ref, units.Feet)

	assert.InDelta(t, 1400, r.FenceLength, 1e-9)
	assert.InDelta(t, 300+200, r.CopingLength, 1e-9)
	// 400*300 - 100*100 - 100*50 - 50*50
	assert.InDelta(t, 120000-10000-5000-2500, r.PaverArea, 1e-9)

	assert.Equal(t, `140'0"`, r.FenceText)
	assert.Equal(t, `50'0"`, r.CopingText)
	// 102500 px² = 1025 ft²
	assert.Equal(t, "1025.0 ft²", r.PaverText)
}

func TestComputeClampsPaverArea(t *testing.T) {
	property := shape.New(shape.KindProperty, rect(0, 0, 100, 100))
	// overlapping footprints larger than the property in aggregate
	houseA := shape.New(shape.KindHouse, rect(0, 0, 90, 90))
	houseB := shape.New(shape.KindHouse, rect(5, 5, 90, 90))

	r := Compute(property, []*shape.Shape{houseA, houseB}, nil, units.ScaleReference{}, units.Feet)
	assert.Zero(t, r.PaverArea)
}

func TestComputeWithoutScaleReferenceFallsBackToPixels(t *testing.T) {
	property := shape.New(shape.KindProperty, rect(0, 0, 100, 100))
	r := Compute(property, nil, nil, units.ScaleReference{}, units.Feet)
	assert.Equal(t, "400 px", r.FenceText)
	assert.Equal(t, "10000 px²", r.PaverText)
}
