package trace

import (
	"math"
	"testing"

	"pool-designer/internal/history"
	"pool-designer/internal/shape"
	"pool-designer/internal/snap"
	"pool-designer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracer() (*Tracer, *history.Log) {
	log := history.NewLog()
	engine := snap.NewEngine(20, 15, 30, math.Pi/4)
	return New(engine, 10, log), log
}

func pt(x, y float64) geometry.Point2D {
	return geometry.Point2D{X: x, Y: y}
}

// Scenario A: a rectangle closed near its first vertex finalizes with
// exactly the accepted vertices and the expected pre-scale area.
func TestTracePropertyAndClose(t *testing.T) {
	tr, _ := newTracer()
	require.NoError(t, tr.Start(shape.KindProperty, false))

	ctx := snap.Context{}
	for _, p := range []geometry.Point2D{pt(0, 0), pt(200, 0), pt(200, 100), pt(0, 100)} {
		res, err := tr.PointerDown(p, nil, nil, ctx)
		require.NoError(t, err)
		assert.Nil(t, res.Completed)
	}

	// Click within the closure radius of vertex 0.
	res, err := tr.PointerDown(pt(3, 4), nil, nil, ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Completed)

	s := res.Completed
	assert.Equal(t, shape.KindProperty, s.Kind)
	assert.NotEmpty(t, s.ID)
	// No implicit duplicate of vertex 0.
	require.Len(t, s.Vertices, 4)
	assert.Equal(t, []geometry.Point2D{pt(0, 0), pt(200, 0), pt(200, 100), pt(0, 100)}, s.Vertices)
	assert.InDelta(t, 20000, s.Area(), 1e-9)

	assert.Equal(t, StateIdle, tr.State())
	assert.Empty(t, tr.Vertices())
}

func TestStartHouseRequiresProperty(t *testing.T) {
	tr, _ := newTracer()

	err := tr.Start(shape.KindHouse, false)
	assert.ErrorIs(t, err, ErrPropertyRequired)
	assert.Equal(t, StateIdle, tr.State())

	err = tr.Start(shape.KindPool, false)
	assert.ErrorIs(t, err, ErrPropertyRequired)

	require.NoError(t, tr.Start(shape.KindHouse, true))
	assert.ErrorIs(t, tr.Start(shape.KindHouse, true), ErrTracingActive)
}

// Scenario B: a house point outside the property is rejected and the
// draft is unchanged.
func TestContainmentRejection(t *testing.T) {
	tr, _ := newTracer()
	property := []geometry.Point2D{pt(0, 0), pt(200, 0), pt(200, 100), pt(0, 100)}
	require.NoError(t, tr.Start(shape.KindHouse, true))

	_, err := tr.PointerDown(pt(50, 50), property, nil, snap.Context{})
	require.NoError(t, err)

	_, err = tr.PointerDown(pt(250, 50), property, nil, snap.Context{})
	assert.ErrorIs(t, err, ErrOutsideProperty)
	assert.Equal(t, []geometry.Point2D{pt(50, 50)}, tr.Vertices())
	assert.Equal(t, StateTracing, tr.State())
}

func TestCompleteNeedsThreeVertices(t *testing.T) {
	tr, _ := newTracer()
	require.NoError(t, tr.Start(shape.KindProperty, false))

	_, err := tr.Complete()
	assert.ErrorIs(t, err, ErrTooFewVertices)

	tr.PointerDown(pt(0, 0), nil, nil, snap.Context{})
	tr.PointerDown(pt(100, 0), nil, nil, snap.Context{})
	_, err = tr.Complete()
	assert.ErrorIs(t, err, ErrTooFewVertices)
	assert.Equal(t, StateTracing, tr.State())

	tr.PointerDown(pt(100, 100), nil, nil, snap.Context{})
	s, err := tr.Complete()
	require.NoError(t, err)
	assert.Len(t, s.Vertices, 3)
	assert.Equal(t, StateIdle, tr.State())
}

func TestEarlyClickNearFirstVertexAppends(t *testing.T) {
	tr, _ := newTracer()
	require.NoError(t, tr.Start(shape.KindProperty, false))

	tr.PointerDown(pt(0, 0), nil, nil, snap.Context{})
	tr.PointerDown(pt(100, 0), nil, nil, snap.Context{})

	// Two vertices placed: a click near vertex 0 must not close.
	res, err := tr.PointerDown(pt(2, 2), nil, nil, snap.Context{})
	require.NoError(t, err)
	assert.Nil(t, res.Completed)
	assert.Len(t, tr.Vertices(), 3)
}

func TestPointerMovePreview(t *testing.T) {
	tr, _ := newTracer()

	_, ok := tr.PointerMove(pt(10, 10), nil, snap.Context{})
	assert.False(t, ok, "no preview while idle")

	require.NoError(t, tr.Start(shape.KindProperty, false))
	_, ok = tr.PointerMove(pt(10, 10), nil, snap.Context{})
	assert.False(t, ok, "no preview before the first vertex")

	tr.PointerDown(pt(0, 0), nil, nil, snap.Context{})
	prev, ok := tr.PointerMove(pt(30, 40), nil, snap.Context{})
	require.True(t, ok)
	assert.Equal(t, pt(0, 0), prev.From)
	assert.Equal(t, pt(30, 40), prev.To)
	assert.InDelta(t, 50, prev.PixelLength, 1e-9)

	// Preview never mutates the draft.
	assert.Len(t, tr.Vertices(), 1)
}

func TestCancelDropsDraftUndoRecords(t *testing.T) {
	tr, log := newTracer()
	require.NoError(t, tr.Start(shape.KindHouse, true))
	property := []geometry.Point2D{pt(0, 0), pt(200, 0), pt(200, 100), pt(0, 100)}

	tr.PointerDown(pt(10, 10), property, nil, snap.Context{})
	tr.PointerDown(pt(20, 10), property, nil, snap.Context{})
	require.True(t, log.CanUndo())

	tr.Cancel()
	assert.Equal(t, StateIdle, tr.State())
	assert.Empty(t, tr.Vertices())
	// The canceled draft's points are gone from both stacks.
	assert.False(t, log.CanUndo())
	assert.False(t, log.CanRedo())
}

func TestCancelKeepsCompletedShapeRecords(t *testing.T) {
	tr, log := newTracer()
	require.NoError(t, tr.Start(shape.KindProperty, false))
	for _, p := range []geometry.Point2D{pt(0, 0), pt(200, 0), pt(200, 100), pt(0, 100)} {
		tr.PointerDown(p, nil, nil, snap.Context{})
	}
	property := tr.Vertices()
	_, err := tr.Complete()
	require.NoError(t, err)

	require.NoError(t, tr.Start(shape.KindHouse, true))
	tr.PointerDown(pt(50, 50), property, nil, snap.Context{})
	tr.Cancel()

	// Only the canceled draft was scrubbed; the completed shape's
	// history is intact.
	a, ok := log.Undo()
	require.True(t, ok)
	assert.Equal(t, history.ActionCompleteShape, a.Type)
	a, ok = log.Undo()
	require.True(t, ok)
	assert.Equal(t, history.ActionAddPoint, a.Type)
	assert.Equal(t, pt(0, 100), a.Point)
}

func TestInCurrentDraft(t *testing.T) {
	tr, log := newTracer()
	require.NoError(t, tr.Start(shape.KindProperty, false))
	tr.PointerDown(pt(0, 0), nil, nil, snap.Context{})

	a, ok := log.Undo()
	require.True(t, ok)
	assert.True(t, tr.InCurrentDraft(a.Draft))

	tr.Cancel()
	assert.False(t, tr.InCurrentDraft(a.Draft))

	require.NoError(t, tr.Start(shape.KindProperty, false))
	// a new draft never owns the old draft's records
	assert.False(t, tr.InCurrentDraft(a.Draft))
}

// Scenario E: three added points, two undos, one redo leaves the first
// two points.
func TestUndoRedoOnDraft(t *testing.T) {
	tr, log := newTracer()
	require.NoError(t, tr.Start(shape.KindProperty, false))

	points := []geometry.Point2D{pt(0, 0), pt(50, 0), pt(50, 50)}
	for _, p := range points {
		_, err := tr.PointerDown(p, nil, nil, snap.Context{})
		require.NoError(t, err)
	}

	for i := 0; i < 2; i++ {
		a, ok := log.Undo()
		require.True(t, ok)
		require.Equal(t, history.ActionAddPoint, a.Type)
		require.True(t, tr.RemoveLastVertex())
	}

	a, ok := log.Redo()
	require.True(t, ok)
	require.True(t, tr.AppendVertex(a.Point))

	assert.Equal(t, []geometry.Point2D{pt(0, 0), pt(50, 0)}, tr.Vertices())
}

// Undo/redo idempotence: addPoint, undo, redo equals addPoint alone.
func TestUndoRedoIdempotence(t *testing.T) {
	plain, _ := newTracer()
	require.NoError(t, plain.Start(shape.KindProperty, false))
	plain.PointerDown(pt(7, 9), nil, nil, snap.Context{})

	cycled, log := newTracer()
	require.NoError(t, cycled.Start(shape.KindProperty, false))
	cycled.PointerDown(pt(7, 9), nil, nil, snap.Context{})
	a, ok := log.Undo()
	require.True(t, ok)
	require.True(t, cycled.RemoveLastVertex())
	a, ok = log.Redo()
	require.True(t, ok)
	require.True(t, cycled.AppendVertex(a.Point))

	assert.Equal(t, plain.Vertices(), cycled.Vertices())
}

func TestCompletionRecordsUndoAction(t *testing.T) {
	tr, log := newTracer()
	require.NoError(t, tr.Start(shape.KindProperty, false))

	for _, p := range []geometry.Point2D{pt(0, 0), pt(100, 0), pt(100, 100)} {
		tr.PointerDown(p, nil, nil, snap.Context{})
	}
	s, err := tr.Complete()
	require.NoError(t, err)

	a, ok := log.Undo()
	require.True(t, ok)
	assert.Equal(t, history.ActionCompleteShape, a.Type)
	assert.Equal(t, s.ID, a.Shape.ID)
}
