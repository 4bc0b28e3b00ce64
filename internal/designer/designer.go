// Package designer holds the central application state and the command
// surface the UI drives. Every mutation flows through here; the UI only
// renders what the designer emits.
package designer

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"pool-designer/internal/config"
	"pool-designer/internal/history"
	"pool-designer/internal/image"
	"pool-designer/internal/materials"
	"pool-designer/internal/measure"
	"pool-designer/internal/shape"
	"pool-designer/internal/snap"
	"pool-designer/internal/trace"
	"pool-designer/pkg/geometry"
	"pool-designer/pkg/units"
)

var (
	// ErrInvalidDimension is returned for non-positive lengths supplied
	// at an input boundary (scale reference, preset pool dimensions).
	ErrInvalidDimension = errors.New("dimension must be greater than zero")

	// ErrNoScaleReference is returned when an operation needs real-world
	// units before a scale reference has been established.
	ErrNoScaleReference = errors.New("no scale reference has been set")

	// ErrScaleReferenceSet is returned when capturing a new reference
	// while one is already active; it must be reset first.
	ErrScaleReferenceSet = errors.New("scale reference already set")

	// ErrNoCapturedSegment is returned when confirming a scale reference
	// before both reference clicks have landed.
	ErrNoCapturedSegment = errors.New("no reference segment captured")
)

// Mode is the designer's current pointer interaction mode.
type Mode int

const (
	ModeIdle Mode = iota
	ModeTracing
	ModeScaleCapture
)

// EventType identifies designer events.
type EventType int

const (
	EventShapesChanged EventType = iota
	EventDraftChanged
	EventPreviewChanged
	EventStatusMessage
	EventUnitChanged
	EventScaleChanged
	EventBackgroundLoaded
	EventHistoryChanged
	EventModeChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// PreviewInfo is the live segment from the last draft vertex to the
// pointer, with its formatted length.
type PreviewInfo struct {
	From geometry.Point2D
	To   geometry.Point2D
	Text string
}

// ShapeView is the outward, render-ready view of one finalized shape.
type ShapeView struct {
	ID       string
	Kind     shape.Kind
	Name     string
	Vertices []geometry.Point2D
	Rotation float64
	AreaText string
	Labels   measure.ShapeLabels
}

// Snapshot is the full outward state emitted on every mutation.
type Snapshot struct {
	Shapes    []ShapeView
	Draft     []geometry.Point2D
	DraftKind shape.Kind
	Materials materials.Report
	Unit      units.Unit
	Scale     units.ScaleReference
	CanUndo   bool
	CanRedo   bool
}

// Designer wires the snapping engine, tracer, shape store, history log
// and measurement derivation behind a single mutex-guarded surface.
type Designer struct {
	mu sync.RWMutex

	settings config.Settings
	engine   *snap.Engine
	store    *shape.Store
	log      *history.Log
	tracer   *trace.Tracer

	unit     units.Unit
	scaleRef units.ScaleReference

	background *image.Background

	gridSnapping   bool
	vertexSnapping bool

	mode       Mode
	scaleFirst *geometry.Point2D // first click of scale capture
	scalePix   float64           // captured reference segment length

	listeners map[EventType][]EventListener
}

// New creates a designer from loaded settings.
func New(settings config.Settings) *Designer {
	engine := snap.NewEngine(
		settings.GridSize,
		settings.VertexRadius,
		settings.AxisTolerance,
		settings.AngleStepDeg*math.Pi/180,
	)
	log := history.NewLog()
	return &Designer{
		settings:       settings,
		engine:         engine,
		store:          shape.NewStore(),
		log:            log,
		tracer:         trace.New(engine, settings.ClosureRadius, log),
		unit:           settings.DefaultUnit,
		gridSnapping:   true,
		vertexSnapping: true,
		listeners:      make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (d *Designer) On(event EventType, listener EventListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[event] = append(d.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (d *Designer) Emit(event EventType, data interface{}) {
	d.mu.RLock()
	listeners := d.listeners[event]
	d.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Store exposes the shape store for hit-testing in the UI.
func (d *Designer) Store() *shape.Store { return d.store }

// Mode returns the current interaction mode.
func (d *Designer) Mode() Mode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mode
}

// Unit returns the active display unit.
func (d *Designer) Unit() units.Unit {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.unit
}

// ScaleReference returns the active scale reference (zero value until set).
func (d *Designer) ScaleReference() units.ScaleReference {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scaleRef
}

// Background returns the loaded site image, or nil.
func (d *Designer) Background() *image.Background {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.background
}

// GridSnapping reports whether grid snapping is enabled.
func (d *Designer) GridSnapping() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.gridSnapping
}

// VertexSnapping reports whether vertex snapping is enabled.
func (d *Designer) VertexSnapping() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.vertexSnapping
}

// GridSize returns the configured grid spacing in pixels.
func (d *Designer) GridSize() float64 { return d.settings.GridSize }

// LoadBackground loads the site image displayed under the drawing.
func (d *Designer) LoadBackground(path string) error {
	bg, err := image.Load(path)
	if err != nil {
		return fmt.Errorf("load background: %w", err)
	}

	d.mu.Lock()
	d.background = bg
	d.mu.Unlock()

	d.Emit(EventBackgroundLoaded, bg)
	return nil
}

// SetUnit switches the display unit. All labels and reports are
// re-derived; geometry is untouched.
func (d *Designer) SetUnit(u units.Unit) {
	d.mu.Lock()
	changed := d.unit != u
	d.unit = u
	d.mu.Unlock()

	if changed {
		d.Emit(EventUnitChanged, u)
		d.notifyShapes()
	}
}

// ToggleGridSnapping flips grid snapping and returns the new value.
func (d *Designer) ToggleGridSnapping() bool {
	d.mu.Lock()
	d.gridSnapping = !d.gridSnapping
	v := d.gridSnapping
	d.mu.Unlock()
	return v
}

// ToggleVertexSnapping flips vertex snapping and returns the new value.
func (d *Designer) ToggleVertexSnapping() bool {
	d.mu.Lock()
	d.vertexSnapping = !d.vertexSnapping
	v := d.vertexSnapping
	d.mu.Unlock()
	return v
}

func (d *Designer) snapContext(shift bool) snap.Context {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return snap.Context{
		GridSnapping:   d.gridSnapping,
		VertexSnapping: d.vertexSnapping,
		ShiftHeld:      shift,
	}
}

// anchorVertices collects the property and house vertices that vertex
// snapping may capture onto.
func (d *Designer) anchorVertices() []geometry.Point2D {
	return d.anchorVerticesExcluding("", -1)
}

// anchorVerticesExcluding skips one vertex, identified by shape id and
// index, so a dragged vertex is never its own snap target.
func (d *Designer) anchorVerticesExcluding(id string, index int) []geometry.Point2D {
	var anchors []geometry.Point2D
	collect := func(s *shape.Shape) {
		for i, v := range s.Vertices {
			if s.ID == id && i == index {
				continue
			}
			anchors = append(anchors, v)
		}
	}
	if p := d.store.Property(); p != nil {
		collect(p)
	}
	for _, h := range d.store.ByKind(shape.KindHouse) {
		collect(h)
	}
	return anchors
}

func (d *Designer) propertyVertices() []geometry.Point2D {
	if p := d.store.Property(); p != nil {
		return p.Vertices
	}
	return nil
}

// StartTracing enters tracing mode for the given kind. House and pool
// tracing require an existing property boundary.
func (d *Designer) StartTracing(kind shape.Kind) error {
	if err := d.tracer.Start(kind, d.store.Property() != nil); err != nil {
		d.status(err.Error())
		return err
	}

	d.mu.Lock()
	d.mode = ModeTracing
	d.mu.Unlock()

	d.Emit(EventModeChanged, ModeTracing)
	d.status(fmt.Sprintf("tracing %s: click to add points, click the first point to close", kind))
	return nil
}

// CancelTracing abandons the draft without an undo record.
func (d *Designer) CancelTracing() {
	d.tracer.Cancel()

	d.mu.Lock()
	d.mode = ModeIdle
	d.mu.Unlock()

	d.Emit(EventModeChanged, ModeIdle)
	d.Emit(EventDraftChanged, nil)
	d.notifyShapes()
}

// PointerDown handles a primary click in the canvas scene space.
func (d *Designer) PointerDown(raw geometry.Point2D, shift bool) {
	switch d.Mode() {
	case ModeScaleCapture:
		d.scaleCaptureClick(raw)
	case ModeTracing:
		d.tracingClick(raw, shift)
	}
}

func (d *Designer) tracingClick(raw geometry.Point2D, shift bool) {
	res, err := d.tracer.PointerDown(raw, d.propertyVertices(), d.anchorVertices(), d.snapContext(shift))
	if err != nil {
		if errors.Is(err, trace.ErrOutsideProperty) {
			d.status(fmt.Sprintf("%s point rejected: outside the property boundary", d.tracer.Kind()))
		} else {
			d.status(err.Error())
		}
		return
	}

	if res.Completed != nil {
		d.finishShape(res.Completed)
		return
	}

	d.Emit(EventDraftChanged, d.tracer.Vertices())
	d.Emit(EventHistoryChanged, nil)
}

// CompleteShape closes the draft explicitly (double-click or menu).
func (d *Designer) CompleteShape() error {
	s, err := d.tracer.Complete()
	if err != nil {
		d.status(err.Error())
		return err
	}
	d.finishShape(s)
	return nil
}

func (d *Designer) finishShape(s *shape.Shape) {
	if err := d.store.Add(s); err != nil {
		d.status(err.Error())
		return
	}

	d.mu.Lock()
	d.mode = ModeIdle
	d.mu.Unlock()

	d.Emit(EventModeChanged, ModeIdle)
	d.Emit(EventDraftChanged, nil)
	d.Emit(EventHistoryChanged, nil)
	d.status(fmt.Sprintf("%s completed", s.Kind))
	d.notifyShapes()
}

// PointerMove updates the live preview while tracing. It never mutates
// the draft.
func (d *Designer) PointerMove(raw geometry.Point2D, shift bool) {
	if d.Mode() != ModeTracing {
		return
	}
	preview, ok := d.tracer.PointerMove(raw, d.anchorVertices(), d.snapContext(shift))
	if !ok {
		return
	}

	d.mu.RLock()
	ref, unit := d.scaleRef, d.unit
	d.mu.RUnlock()

	d.Emit(EventPreviewChanged, PreviewInfo{
		From: preview.From,
		To:   preview.To,
		Text: measure.SegmentText(preview.PixelLength, ref, unit),
	})
}

// Undo reverts the most recent recorded action. Removing a draft point
// is applied only when the record belongs to the open draft; a
// completed shape stays completed.
func (d *Designer) Undo() {
	a, ok := d.log.Undo()
	if !ok {
		return
	}
	if a.Type == history.ActionAddPoint && d.tracer.InCurrentDraft(a.Draft) {
		d.tracer.RemoveLastVertex()
		d.Emit(EventDraftChanged, d.tracer.Vertices())
	}
	d.Emit(EventHistoryChanged, nil)
	d.notifyShapes()
}

// Redo re-applies the most recently undone action. A point is only
// replayed into the draft that recorded it.
func (d *Designer) Redo() {
	a, ok := d.log.Redo()
	if !ok {
		return
	}
	if a.Type == history.ActionAddPoint && d.tracer.InCurrentDraft(a.Draft) {
		d.tracer.AppendVertex(a.Point)
		d.Emit(EventDraftChanged, d.tracer.Vertices())
	}
	d.Emit(EventHistoryChanged, nil)
	d.notifyShapes()
}

// BeginScaleCapture enters the two-click reference segment mode.
func (d *Designer) BeginScaleCapture() error {
	d.mu.Lock()
	if d.scaleRef.Valid() {
		d.mu.Unlock()
		return ErrScaleReferenceSet
	}
	if d.mode == ModeTracing {
		d.mu.Unlock()
		return trace.ErrTracingActive
	}
	d.mode = ModeScaleCapture
	d.scaleFirst = nil
	d.scalePix = 0
	d.mu.Unlock()

	d.Emit(EventModeChanged, ModeScaleCapture)
	d.status("scale reference: click both ends of a known-length feature")
	return nil
}

func (d *Designer) scaleCaptureClick(raw geometry.Point2D) {
	d.mu.Lock()
	if d.scaleFirst == nil {
		p := raw
		d.scaleFirst = &p
		d.mu.Unlock()
		d.status("scale reference: click the second end")
		return
	}
	d.scalePix = d.scaleFirst.Distance(raw)
	d.mode = ModeIdle
	pix := d.scalePix
	d.mu.Unlock()

	d.Emit(EventModeChanged, ModeIdle)
	d.Emit(EventScaleChanged, pix)
	d.status(fmt.Sprintf("reference segment: %.0f px — enter its real length", pix))
}

// CapturedSegment returns the pixel length of the captured reference
// segment, or 0 if none.
func (d *Designer) CapturedSegment() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scalePix
}

// SetScaleReference fixes the pixels-per-unit ratio from the captured
// segment and the user-supplied real-world length.
func (d *Designer) SetScaleReference(realLength float64, unit units.Unit) error {
	if realLength <= 0 {
		return ErrInvalidDimension
	}

	d.mu.Lock()
	if d.scaleRef.Valid() {
		d.mu.Unlock()
		return ErrScaleReferenceSet
	}
	if d.scalePix <= 0 {
		d.mu.Unlock()
		return ErrNoCapturedSegment
	}
	d.scaleRef = units.ScaleReference{
		RealLength:  realLength,
		Unit:        unit,
		PixelLength: d.scalePix,
	}
	ref := d.scaleRef
	d.mu.Unlock()

	d.Emit(EventScaleChanged, ref)
	d.notifyShapes()
	return nil
}

// ResetScaleReference clears the active reference so a new one can be
// captured.
func (d *Designer) ResetScaleReference() {
	d.mu.Lock()
	d.scaleRef = units.ScaleReference{}
	d.scalePix = 0
	d.scaleFirst = nil
	d.mu.Unlock()

	d.Emit(EventScaleChanged, units.ScaleReference{})
	d.notifyShapes()
}

// InsertPresetPool places a named rectangular pool of the given
// real-world dimensions (in the active unit) centered in the property.
func (d *Designer) InsertPresetPool(name string, width, height float64) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimension
	}

	d.mu.RLock()
	ref, unit := d.scaleRef, d.unit
	d.mu.RUnlock()

	if !ref.Valid() {
		return ErrNoScaleReference
	}
	property := d.store.Property()
	if property == nil {
		return trace.ErrPropertyRequired
	}

	w := ref.UnitToPixels(width, unit)
	h := ref.UnitToPixels(height, unit)
	c := property.Centroid()

	verts := []geometry.Point2D{
		{X: c.X - w/2, Y: c.Y - h/2},
		{X: c.X + w/2, Y: c.Y - h/2},
		{X: c.X + w/2, Y: c.Y + h/2},
		{X: c.X - w/2, Y: c.Y + h/2},
	}
	for _, v := range verts {
		if !property.Contains(v) {
			d.status("pool does not fit inside the property boundary")
			return shape.ErrOutsideProperty
		}
	}

	pool := shape.New(shape.KindPool, verts)
	pool.Name = name
	pool.NominalWidth = width
	pool.NominalHeight = height
	if err := d.store.Add(pool); err != nil {
		return err
	}

	d.status(fmt.Sprintf("pool %q inserted", name))
	d.notifyShapes()
	return nil
}

// RenameShape sets a shape's display name.
func (d *Designer) RenameShape(id, name string) bool {
	s := d.store.Get(id)
	if s == nil {
		return false
	}
	s.Name = name
	d.notifyShapes()
	return true
}

// MoveShape translates a whole shape. Containment is all-or-nothing;
// a rejected move leaves the shape untouched.
func (d *Designer) MoveShape(id string, delta geometry.Point2D) bool {
	ok := d.store.Move(id, delta)
	if !ok {
		d.status("move rejected: shape must stay inside the property boundary")
		return false
	}
	d.notifyShapes()
	return true
}

// ReshapeVertex replaces one vertex of a shape with the snapped
// position of the pointer. origin is the vertex's pre-drag position,
// used as the angle-snap pivot when shift is held.
func (d *Designer) ReshapeVertex(id string, index int, raw, origin geometry.Point2D, shift bool) bool {
	p := d.engine.Resolve(raw, []geometry.Point2D{origin}, d.anchorVerticesExcluding(id, index), d.snapContext(shift))
	ok := d.store.Reshape(id, index, p)
	if !ok {
		d.status("edit rejected: point is outside the property boundary")
		return false
	}
	d.notifyShapes()
	return true
}

// RotatePool rotates a pool about its centroid. With snap enabled the
// angle is quantized to the configured step.
func (d *Designer) RotatePool(id string, angle float64, snapAngle bool) bool {
	if snapAngle {
		angle = geometry.SnapAngle(angle, d.settings.AngleStepDeg*math.Pi/180)
	}
	ok := d.store.Rotate(id, angle)
	if !ok {
		d.status("rotation rejected: pool must stay inside the property boundary")
		return false
	}
	d.notifyShapes()
	return true
}

// DeleteLast removes the most recently added shape of the given kind.
func (d *Designer) DeleteLast(kind shape.Kind) error {
	_, err := d.store.DeleteLast(kind)
	if err != nil {
		d.status(err.Error())
		return err
	}
	d.status(fmt.Sprintf("last %s deleted", kind))
	d.notifyShapes()
	return nil
}

// Snapshot builds the outward view of the current state.
func (d *Designer) Snapshot() Snapshot {
	d.mu.RLock()
	ref, unit := d.scaleRef, d.unit
	d.mu.RUnlock()

	all := d.store.All()
	views := make([]ShapeView, 0, len(all))
	for _, s := range all {
		views = append(views, ShapeView{
			ID:       s.ID,
			Kind:     s.Kind,
			Name:     s.Name,
			Vertices: s.CloneVertices(),
			Rotation: d.store.Rotation(s.ID),
			AreaText: measure.AreaText(s.Area(), ref, unit),
			Labels:   measure.ForShape(s, ref, unit),
		})
	}

	report := materials.Compute(
		d.store.Property(),
		d.store.ByKind(shape.KindHouse),
		d.store.ByKind(shape.KindPool),
		ref, unit,
	)

	return Snapshot{
		Shapes:    views,
		Draft:     d.tracer.Vertices(),
		DraftKind: d.tracer.Kind(),
		Materials: report,
		Unit:      unit,
		Scale:     ref,
		CanUndo:   d.log.CanUndo(),
		CanRedo:   d.log.CanRedo(),
	}
}

func (d *Designer) notifyShapes() {
	d.Emit(EventShapesChanged, d.Snapshot())
}

func (d *Designer) status(msg string) {
	d.Emit(EventStatusMessage, msg)
}
