// Package trace implements the tracing state machine that turns a
// stream of pointer events into validated polygons.
package trace

import (
	"errors"

	"pool-designer/internal/history"
	"pool-designer/internal/shape"
	"pool-designer/internal/snap"
	"pool-designer/pkg/geometry"
)

var (
	// ErrPropertyRequired is returned when house or pool tracing starts
	// before a property boundary exists.
	ErrPropertyRequired = errors.New("property boundary required")

	// ErrTooFewVertices is returned when closing a draft with fewer
	// than three points.
	ErrTooFewVertices = errors.New("need at least 3 points")

	// ErrOutsideProperty is returned when a house or pool point lands
	// outside the property boundary.
	ErrOutsideProperty = errors.New("point is outside the property boundary")

	// ErrNotTracing is returned for draft operations while idle.
	ErrNotTracing = errors.New("no trace in progress")

	// ErrTracingActive is returned when starting a trace while another
	// draft is open.
	ErrTracingActive = errors.New("another trace is already in progress")
)

// State is the tracing machine state.
type State int

const (
	StateIdle State = iota
	StateTracing
)

// Preview is the non-committing segment from the draft's last vertex
// to the live (snapped) pointer position.
type Preview struct {
	From        geometry.Point2D
	To          geometry.Point2D
	PixelLength float64
}

// DownResult reports the outcome of a pointer-down while tracing.
// Completed is non-nil when the click closed the draft.
type DownResult struct {
	Point     geometry.Point2D
	Completed *shape.Shape
}

// Tracer owns the Draft: the in-progress vertex list of the shape
// being drawn. The draft exists only between Start and
// completion/cancel, and is promoted to a finalized Shape on closure.
type Tracer struct {
	engine        *snap.Engine
	closureRadius float64
	log           *history.Log

	state    State
	kind     shape.Kind
	vertices []geometry.Point2D

	// draftSeq numbers drafts so history records stay tied to the
	// draft that produced them.
	draftSeq int
}

// New creates an idle tracer. closureRadius is the pixel distance from
// the first vertex within which a click closes the draft.
func New(engine *snap.Engine, closureRadius float64, log *history.Log) *Tracer {
	return &Tracer{
		engine:        engine,
		closureRadius: closureRadius,
		log:           log,
	}
}

// State returns the current machine state.
func (tr *Tracer) State() State {
	return tr.state
}

// Kind returns the kind of shape being traced. Only meaningful while
// tracing.
func (tr *Tracer) Kind() shape.Kind {
	return tr.kind
}

// Active reports whether a draft is open.
func (tr *Tracer) Active() bool {
	return tr.state == StateTracing
}

// Vertices returns a copy of the draft's vertex list.
func (tr *Tracer) Vertices() []geometry.Point2D {
	out := make([]geometry.Point2D, len(tr.vertices))
	copy(out, tr.vertices)
	return out
}

// Start opens a draft for the given kind. Starting a house or pool
// trace fails fast when no property boundary exists; the machine state
// is unchanged on error.
func (tr *Tracer) Start(kind shape.Kind, hasProperty bool) error {
	if tr.state != StateIdle {
		return ErrTracingActive
	}
	if kind != shape.KindProperty && !hasProperty {
		return ErrPropertyRequired
	}
	tr.state = StateTracing
	tr.kind = kind
	tr.vertices = tr.vertices[:0]
	tr.draftSeq++
	return nil
}

// InCurrentDraft reports whether a history record with the given draft
// generation belongs to the open draft.
func (tr *Tracer) InCurrentDraft(draft int) bool {
	return tr.state == StateTracing && draft == tr.draftSeq
}

// PointerDown handles a click while tracing. The raw point is resolved
// through the snapping engine; property is the current property polygon
// (used for containment of house/pool points), anchors are the
// snappable vertices of existing shapes. A click within the closure
// radius of the first vertex with at least three points placed closes
// the draft; otherwise the point is appended and an AddPoint undo
// action recorded.
func (tr *Tracer) PointerDown(raw geometry.Point2D, property, anchors []geometry.Point2D, ctx snap.Context) (DownResult, error) {
	if tr.state != StateTracing {
		return DownResult{}, ErrNotTracing
	}

	p := tr.engine.Resolve(raw, tr.vertices, anchors, ctx)

	if tr.kind != shape.KindProperty && !geometry.PointInPolygon(p, property) {
		return DownResult{}, ErrOutsideProperty
	}

	if len(tr.vertices) >= 3 && p.Distance(tr.vertices[0]) <= tr.closureRadius {
		s := tr.finalize()
		return DownResult{Point: p, Completed: s}, nil
	}

	tr.vertices = append(tr.vertices, p)
	tr.log.Record(history.Action{Type: history.ActionAddPoint, Point: p, Draft: tr.draftSeq})
	return DownResult{Point: p}, nil
}

// PointerMove recomputes the preview segment from the last vertex to
// the live pointer. It never mutates the draft; ok is false when the
// draft has no vertices yet.
func (tr *Tracer) PointerMove(raw geometry.Point2D, anchors []geometry.Point2D, ctx snap.Context) (Preview, bool) {
	if tr.state != StateTracing || len(tr.vertices) == 0 {
		return Preview{}, false
	}

	p := tr.engine.Resolve(raw, tr.vertices, anchors, ctx)
	last := tr.vertices[len(tr.vertices)-1]
	return Preview{
		From:        last,
		To:          p,
		PixelLength: last.Distance(p),
	}, true
}

// Complete closes the draft explicitly. It fails with ErrTooFewVertices
// when fewer than three points were placed, leaving the draft open.
func (tr *Tracer) Complete() (*shape.Shape, error) {
	if tr.state != StateTracing {
		return nil, ErrNotTracing
	}
	if len(tr.vertices) < 3 {
		return nil, ErrTooFewVertices
	}
	return tr.finalize(), nil
}

// finalize promotes the draft to a Shape, records the CompleteShape
// undo action, and returns to idle. The finalized shape holds exactly
// the accepted vertices; the closing click is never duplicated.
func (tr *Tracer) finalize() *shape.Shape {
	s := shape.New(tr.kind, tr.vertices)
	tr.log.Record(history.Action{Type: history.ActionCompleteShape, Shape: s, Draft: tr.draftSeq})
	tr.state = StateIdle
	tr.vertices = tr.vertices[:0]
	return s
}

// Cancel discards the draft and returns to idle. The canceled draft's
// AddPoint records are dropped from the log so undo/redo can never
// resurrect its points; records of completed shapes are untouched.
func (tr *Tracer) Cancel() {
	if tr.state == StateTracing {
		tr.log.DropDraft(tr.draftSeq)
	}
	tr.state = StateIdle
	tr.vertices = tr.vertices[:0]
}

// RemoveLastVertex applies the structural inverse of AddPoint. It is
// only meaningful while a draft is open.
func (tr *Tracer) RemoveLastVertex() bool {
	if tr.state != StateTracing || len(tr.vertices) == 0 {
		return false
	}
	tr.vertices = tr.vertices[:len(tr.vertices)-1]
	return true
}

// AppendVertex re-applies a previously recorded point during redo,
// without recording a new action.
func (tr *Tracer) AppendVertex(p geometry.Point2D) bool {
	if tr.state != StateTracing {
		return false
	}
	tr.vertices = append(tr.vertices, p)
	return true
}
