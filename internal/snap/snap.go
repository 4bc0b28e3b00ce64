// Package snap resolves raw pointer positions into snapped candidate
// points using angle, vertex, and grid snapping.
package snap

import (
	"math"

	"pool-designer/pkg/geometry"
)

// Context carries the snapping toggles plus transient modifier state,
// passed in explicitly on every pointer event so the engine stays free
// of ambient UI state.
type Context struct {
	GridSnapping   bool
	VertexSnapping bool
	ShiftHeld      bool
}

// Engine composes grid snap, vertex snap, and shift-angle snap into a
// single candidate-point resolver. All distances are canvas pixels.
type Engine struct {
	GridSize      float64 // grid cell size
	VertexRadius  float64 // max distance for snapping onto an existing vertex
	AxisTolerance float64 // closure aid tolerance toward the first vertex
	AngleStep     float64 // radians, normally pi/4
}

// NewEngine creates an engine with the given parameters.
func NewEngine(gridSize, vertexRadius, axisTolerance, angleStep float64) *Engine {
	return &Engine{
		GridSize:      gridSize,
		VertexRadius:  vertexRadius,
		AxisTolerance: axisTolerance,
		AngleStep:     angleStep,
	}
}

// Resolve turns a raw pointer point into the effective point. Stages
// run in a fixed order, each consuming the previous stage's output:
// angle snap first (it must see the raw point, since vertex and grid
// snap are corrections that must not be re-angled), then vertex snap,
// then grid snap. A successful vertex snap is exact and ends the
// pipeline. draft is the in-progress trace, anchors are the snappable
// vertices of existing shapes.
func (e *Engine) Resolve(raw geometry.Point2D, draft, anchors []geometry.Point2D, ctx Context) geometry.Point2D {
	p := raw

	if ctx.ShiftHeld && len(draft) > 0 {
		p = e.angleSnap(p, draft)
	}

	if ctx.VertexSnapping {
		if v, ok := e.nearestVertex(p, anchors); ok {
			return v
		}
	}

	if ctx.GridSnapping {
		p = e.SnapToGrid(p)
	}

	return p
}

// angleSnap projects the candidate onto the nearest angle increment
// from the last placed vertex. With two or more vertices placed and a
// predominantly horizontal or vertical stroke, the point additionally
// snaps onto the first vertex's matching coordinate when within
// AxisTolerance, so right-angle shapes close exactly at 90 degrees.
func (e *Engine) angleSnap(p geometry.Point2D, draft []geometry.Point2D) geometry.Point2D {
	last := draft[len(draft)-1]
	dist := last.Distance(p)
	angle := geometry.SnapAngle(last.AngleTo(p), e.AngleStep)
	sin, cos := math.Sincos(angle)
	snapped := geometry.Point2D{X: last.X + dist*cos, Y: last.Y + dist*sin}

	if len(draft) >= 2 {
		first := draft[0]
		dx := math.Abs(p.X - last.X)
		dy := math.Abs(p.Y - last.Y)
		if dx > dy && math.Abs(snapped.X-first.X) <= e.AxisTolerance {
			snapped.X = first.X
		} else if dy > dx && math.Abs(snapped.Y-first.Y) <= e.AxisTolerance {
			snapped.Y = first.Y
		}
	}

	return snapped
}

// nearestVertex returns the closest anchor within VertexRadius.
func (e *Engine) nearestVertex(p geometry.Point2D, anchors []geometry.Point2D) (geometry.Point2D, bool) {
	best := geometry.Point2D{}
	bestDist := e.VertexRadius
	found := false
	for _, a := range anchors {
		if d := p.Distance(a); d <= bestDist {
			best = a
			bestDist = d
			found = true
		}
	}
	return best, found
}

// SnapToGrid rounds both coordinates to the nearest grid cell edge.
// The operation is idempotent.
func (e *Engine) SnapToGrid(p geometry.Point2D) geometry.Point2D {
	if e.GridSize <= 0 {
		return p
	}
	return geometry.Point2D{
		X: math.Round(p.X/e.GridSize) * e.GridSize,
		Y: math.Round(p.Y/e.GridSize) * e.GridSize,
	}
}
