// Package canvas provides the drawing surface: background image, grid,
// traced shapes, draft and preview rendering, with pan, zoom, and
// pointer input in scene coordinates.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"pool-designer/internal/designer"
	siteimage "pool-designer/internal/image"
	"pool-designer/internal/shape"
	"pool-designer/pkg/colorutil"
	"pool-designer/pkg/geometry"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25

	vertexMarkerRadius = 4
	vertexHitRadius    = 10
)

// MarkerTable resolves drawing primitive ids back to shape references.
// The store owns the table; the canvas registers what it draws and
// resolves hits through it instead of attaching metadata to primitives.
type MarkerTable interface {
	RegisterMarker(primitiveID string, ref shape.MarkerRef)
	Marker(primitiveID string) (shape.MarkerRef, bool)
}

// vertexMarker is one drawn vertex primitive, keyed by its id in the
// marker table.
type vertexMarker struct {
	id     string
	center geometry.Point2D
}

// Tool represents the current pointer interaction tool.
type Tool int

const (
	ToolTrace Tool = iota
	ToolMove
	ToolReshape
	ToolRotate
)

// DesignCanvas renders the design scene and translates pointer events
// into scene coordinates for the command layer.
type DesignCanvas struct {
	widget.BaseWidget

	// Scene content, replaced wholesale on designer notifications.
	background *siteimage.Background
	snapshot   designer.Snapshot
	preview    *designer.PreviewInfo
	scaleMark  *geometry.Point2D // first click of scale capture

	markers       MarkerTable
	vertexMarkers []vertexMarker

	showGrid bool
	gridSize float64

	shiftHeld bool

	// Display state
	raster *fynecanvas.Raster
	zoom   float64

	tool Tool

	// Drag editing state
	dragging    bool
	dragShapeID string
	dragVertex  int
	dragOrigin  geometry.Point2D
	dragCurrent geometry.Point2D

	scroll  *zoomScroll
	content *draggableContent
	imgSize fyne.Size

	// Callbacks into the command layer
	onPointerDown   func(p geometry.Point2D, shift bool)
	onPointerMove   func(p geometry.Point2D, shift bool)
	onMoveShape     func(id string, delta geometry.Point2D)
	onReshapeVertex func(id string, index int, pos, origin geometry.Point2D, shift bool)
	onRotatePool    func(id string, angle float64)
	onDoubleTap     func()
	onZoomChange    func(zoom float64)
}

// zoomScroll wraps a scroll container but intercepts the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *DesignCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *DesignCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// draggableContent wraps the raster to handle mouse events.
type draggableContent struct {
	widget.BaseWidget
	canvas *DesignCanvas
	raster *fynecanvas.Raster
}

var _ desktop.Hoverable = (*draggableContent)(nil)

func newDraggableContent(dc *DesignCanvas, raster *fynecanvas.Raster) *draggableContent {
	c := &draggableContent{canvas: dc, raster: raster}
	c.ExtendBaseWidget(c)
	return c
}

func (c *draggableContent) CreateRenderer() fyne.WidgetRenderer {
	return &draggableContentRenderer{content: c}
}

func (c *draggableContent) MinSize() fyne.Size {
	return c.raster.MinSize()
}

// scenePos converts a widget-relative event position to scene coords.
func (c *draggableContent) scenePos(pos fyne.Position) geometry.Point2D {
	offset := c.canvas.scroll.Offset()
	return geometry.Point2D{
		X: float64(pos.X+offset.X) / c.canvas.zoom,
		Y: float64(pos.Y+offset.Y) / c.canvas.zoom,
	}
}

// inBounds rejects events Fyne occasionally delivers outside the widget.
func (c *draggableContent) inBounds(pos fyne.Position) bool {
	size := c.Size()
	return pos.X >= 0 && pos.Y >= 0 && pos.X <= size.Width && pos.Y <= size.Height
}

// Tapped handles primary clicks.
func (c *draggableContent) Tapped(ev *fyne.PointEvent) {
	if c.canvas.onPointerDown == nil || !c.inBounds(ev.Position) {
		return
	}
	if c.canvas.tool != ToolTrace {
		return
	}
	c.canvas.onPointerDown(c.scenePos(ev.Position), c.canvas.shiftHeld)
}

// DoubleTapped closes the open draft.
func (c *draggableContent) DoubleTapped(ev *fyne.PointEvent) {
	if c.canvas.tool != ToolTrace || c.canvas.onDoubleTap == nil {
		return
	}
	c.canvas.onDoubleTap()
}

func (c *draggableContent) MouseIn(*desktop.MouseEvent) {}

func (c *draggableContent) MouseMoved(ev *desktop.MouseEvent) {
	if c.canvas.onPointerMove == nil {
		return
	}
	c.canvas.onPointerMove(c.scenePos(ev.Position), c.canvas.shiftHeld)
}

func (c *draggableContent) MouseOut() {}

// Dragged drives the edit tools: move, reshape, rotate.
func (c *draggableContent) Dragged(ev *fyne.DragEvent) {
	dc := c.canvas
	if dc.tool == ToolTrace {
		return
	}

	pos := c.scenePos(ev.Position)
	if !dc.dragging {
		if !dc.beginDrag(pos) {
			return
		}
	}
	dc.dragCurrent = pos
	dc.Refresh()
}

func (c *draggableContent) DragEnd() {
	c.canvas.endDrag()
}

func (c *draggableContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		c.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		c.canvas.ZoomOut()
	}
}

type draggableContentRenderer struct {
	content *draggableContent
}

func (r *draggableContentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *draggableContentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *draggableContentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *draggableContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *draggableContentRenderer) Destroy() {}

// NewDesignCanvas creates the design canvas. markers is the shape
// store's primitive-id side table.
func NewDesignCanvas(gridSize float64, markers MarkerTable) *DesignCanvas {
	dc := &DesignCanvas{
		zoom:     1.0,
		tool:     ToolTrace,
		gridSize: gridSize,
		showGrid: true,
		markers:  markers,
		imgSize:  fyne.NewSize(800, 600),
	}

	dc.raster = fynecanvas.NewRaster(dc.draw)
	dc.raster.ScaleMode = fynecanvas.ImageScalePixels
	dc.raster.SetMinSize(dc.imgSize)

	dc.content = newDraggableContent(dc, dc.raster)
	dc.scroll = newZoomScroll(dc.content, dc)

	dc.ExtendBaseWidget(dc)
	return dc
}

// Container returns the canvas container for embedding in layouts.
func (dc *DesignCanvas) Container() fyne.CanvasObject {
	return dc.scroll
}

// SetBackground sets the site image rendered under the drawing.
func (dc *DesignCanvas) SetBackground(bg *siteimage.Background) {
	dc.background = bg
	dc.updateContentSize()
}

// SetSnapshot replaces the rendered shape state.
func (dc *DesignCanvas) SetSnapshot(s designer.Snapshot) {
	dc.snapshot = s
	dc.syncMarkers()
	dc.Refresh()
}

// markerID is the primitive id of a drawn vertex marker.
func markerID(shapeID string, vertex int) string {
	return fmt.Sprintf("%s:v%d", shapeID, vertex)
}

// syncMarkers re-registers the drawn primitives in the side table and
// rebuilds the vertex primitive list the hit path searches.
func (dc *DesignCanvas) syncMarkers() {
	dc.vertexMarkers = dc.vertexMarkers[:0]
	if dc.markers == nil {
		return
	}
	for _, s := range dc.snapshot.Shapes {
		dc.markers.RegisterMarker(s.ID+":outline", shape.MarkerRef{ShapeID: s.ID, Role: shape.RoleOutline})
		for i, v := range s.Vertices {
			id := markerID(s.ID, i)
			dc.markers.RegisterMarker(id, shape.MarkerRef{ShapeID: s.ID, VertexIndex: i, Role: shape.RoleVertex})
			dc.vertexMarkers = append(dc.vertexMarkers, vertexMarker{id: id, center: v})
		}
		for _, e := range s.Labels.Edges {
			dc.markers.RegisterMarker(fmt.Sprintf("%s:e%d", s.ID, e.Index),
				shape.MarkerRef{ShapeID: s.ID, Role: shape.RoleEdgeLabel})
		}
		if s.Labels.Name != nil {
			dc.markers.RegisterMarker(s.ID+":name", shape.MarkerRef{ShapeID: s.ID, Role: shape.RoleNameLabel})
		}
	}
}

// SetPreview sets or clears the live tracing preview segment.
func (dc *DesignCanvas) SetPreview(p *designer.PreviewInfo) {
	dc.preview = p
	dc.Refresh()
}

// SetScaleMark shows the first scale-reference click, or clears it.
func (dc *DesignCanvas) SetScaleMark(p *geometry.Point2D) {
	dc.scaleMark = p
	dc.Refresh()
}

// SetShowGrid toggles grid rendering.
func (dc *DesignCanvas) SetShowGrid(show bool) {
	dc.showGrid = show
	dc.Refresh()
}

// SetShiftHeld records the shift modifier state for pointer events.
func (dc *DesignCanvas) SetShiftHeld(held bool) {
	dc.shiftHeld = held
}

// ShiftHeld reports the current shift modifier state.
func (dc *DesignCanvas) ShiftHeld() bool {
	return dc.shiftHeld
}

// SetTool selects the pointer tool.
func (dc *DesignCanvas) SetTool(tool Tool) {
	dc.tool = tool
	dc.dragging = false
}

// CurrentTool returns the active pointer tool.
func (dc *DesignCanvas) CurrentTool() Tool {
	return dc.tool
}

// SetZoom sets the zoom level, clamped to the allowed range.
func (dc *DesignCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	dc.zoom = zoom
	dc.updateContentSize()

	if dc.onZoomChange != nil {
		dc.onZoomChange(zoom)
	}
}

// Zoom returns the current zoom level.
func (dc *DesignCanvas) Zoom() float64 {
	return dc.zoom
}

// ZoomIn increases the zoom level.
func (dc *DesignCanvas) ZoomIn() {
	dc.SetZoom(dc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (dc *DesignCanvas) ZoomOut() {
	dc.SetZoom(dc.zoom / zoomStep)
}

// OnPointerDown sets the primary-click callback (scene coordinates).
func (dc *DesignCanvas) OnPointerDown(fn func(p geometry.Point2D, shift bool)) {
	dc.onPointerDown = fn
}

// OnPointerMove sets the hover callback (scene coordinates).
func (dc *DesignCanvas) OnPointerMove(fn func(p geometry.Point2D, shift bool)) {
	dc.onPointerMove = fn
}

// OnMoveShape sets the whole-shape drag callback.
func (dc *DesignCanvas) OnMoveShape(fn func(id string, delta geometry.Point2D)) {
	dc.onMoveShape = fn
}

// OnReshapeVertex sets the vertex drag callback.
func (dc *DesignCanvas) OnReshapeVertex(fn func(id string, index int, pos, origin geometry.Point2D, shift bool)) {
	dc.onReshapeVertex = fn
}

// OnRotatePool sets the rotation drag callback (angle in radians).
func (dc *DesignCanvas) OnRotatePool(fn func(id string, angle float64)) {
	dc.onRotatePool = fn
}

// OnDoubleTap sets the double-click callback, used to close a draft.
func (dc *DesignCanvas) OnDoubleTap(fn func()) {
	dc.onDoubleTap = fn
}

// OnZoomChange sets a callback for zoom changes.
func (dc *DesignCanvas) OnZoomChange(fn func(zoom float64)) {
	dc.onZoomChange = fn
}

// beginDrag hit-tests the drag start against the current snapshot.
func (dc *DesignCanvas) beginDrag(pos geometry.Point2D) bool {
	switch dc.tool {
	case ToolReshape:
		id, idx, v, ok := dc.hitVertex(pos)
		if !ok {
			return false
		}
		dc.dragShapeID, dc.dragVertex, dc.dragOrigin = id, idx, v
	case ToolMove:
		id, ok := dc.hitShape(pos, shape.Kind(0), true)
		if !ok {
			return false
		}
		dc.dragShapeID, dc.dragOrigin = id, pos
	case ToolRotate:
		id, ok := dc.hitShape(pos, shape.KindPool, false)
		if !ok {
			return false
		}
		dc.dragShapeID, dc.dragOrigin = id, pos
	default:
		return false
	}
	dc.dragging = true
	dc.dragCurrent = pos
	return true
}

// endDrag commits the drag through the registered callback.
func (dc *DesignCanvas) endDrag() {
	if !dc.dragging {
		return
	}
	dc.dragging = false

	switch dc.tool {
	case ToolMove:
		if dc.onMoveShape != nil {
			dc.onMoveShape(dc.dragShapeID, dc.dragCurrent.Sub(dc.dragOrigin))
		}
	case ToolReshape:
		if dc.onReshapeVertex != nil {
			dc.onReshapeVertex(dc.dragShapeID, dc.dragVertex, dc.dragCurrent, dc.dragOrigin, dc.shiftHeld)
		}
	case ToolRotate:
		if dc.onRotatePool != nil {
			if view, ok := dc.shapeView(dc.dragShapeID); ok {
				c := geometry.Centroid(view.Vertices)
				angle := c.AngleTo(dc.dragCurrent) - c.AngleTo(dc.dragOrigin)
				dc.onRotatePool(dc.dragShapeID, angle)
			}
		}
	}
}

func (dc *DesignCanvas) shapeView(id string) (designer.ShapeView, bool) {
	for _, s := range dc.snapshot.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return designer.ShapeView{}, false
}

// hitVertex finds the nearest drawn vertex primitive within the hit
// radius and resolves it to a shape through the marker table.
func (dc *DesignCanvas) hitVertex(pos geometry.Point2D) (string, int, geometry.Point2D, bool) {
	best := vertexHitRadius / dc.zoom
	var (
		bestMarker vertexMarker
		found      bool
	)
	for _, m := range dc.vertexMarkers {
		d := m.center.Distance(pos)
		if d <= best {
			best = d
			bestMarker = m
			found = true
		}
	}
	if !found {
		return "", 0, geometry.Point2D{}, false
	}
	ref, ok := dc.markers.Marker(bestMarker.id)
	if !ok {
		return "", 0, geometry.Point2D{}, false
	}
	return ref.ShapeID, ref.VertexIndex, bestMarker.center, true
}

// hitShape finds the topmost shape containing pos. With anyKind false
// only the given kind matches.
func (dc *DesignCanvas) hitShape(pos geometry.Point2D, kind shape.Kind, anyKind bool) (string, bool) {
	for i := len(dc.snapshot.Shapes) - 1; i >= 0; i-- {
		s := dc.snapshot.Shapes[i]
		if !anyKind && s.Kind != kind {
			continue
		}
		if geometry.PointInPolygon(pos, s.Vertices) {
			return s.ID, true
		}
	}
	return "", false
}

// Refresh refreshes the canvas display.
func (dc *DesignCanvas) Refresh() {
	dc.raster.Refresh()
}

func (dc *DesignCanvas) sceneBounds() image.Rectangle {
	w, h := 800, 600
	if dc.background != nil {
		if bw := dc.background.Width(); bw > 0 {
			w = bw
		}
		if bh := dc.background.Height(); bh > 0 {
			h = bh
		}
	}
	return image.Rect(0, 0, w, h)
}

func (dc *DesignCanvas) updateContentSize() {
	bounds := dc.sceneBounds()
	dc.imgSize = fyne.NewSize(
		float32(float64(bounds.Dx())*dc.zoom),
		float32(float64(bounds.Dy())*dc.zoom),
	)

	dc.raster.SetMinSize(dc.imgSize)
	dc.raster.Resize(dc.imgSize)
	if dc.content != nil {
		dc.content.Resize(dc.imgSize)
		dc.content.Refresh()
	}
	dc.raster.Refresh()
	if dc.scroll != nil {
		dc.scroll.Refresh()
	}
}

func kindColor(k shape.Kind) (col color.RGBA, filled bool) {
	switch k {
	case shape.KindProperty:
		return colorutil.PropertyGreen, false
	case shape.KindHouse:
		return colorutil.HouseGray, true
	default:
		return colorutil.PoolBlue, true
	}
}

// draw is the raster drawing function.
func (dc *DesignCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// dark background
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = 30
		output.Pix[i+1] = 30
		output.Pix[i+2] = 30
		output.Pix[i+3] = 255
	}

	dc.drawBackground(output, w, h)

	if dc.showGrid {
		dc.drawGrid(output, dc.gridSize, colorutil.GridGray)
	}

	for _, s := range dc.snapshot.Shapes {
		dc.drawShape(output, s)
	}

	dc.drawDraft(output)
	dc.drawScaleMark(output)

	return output
}

// drawBackground composites the site image at its opacity.
func (dc *DesignCanvas) drawBackground(output *image.RGBA, w, h int) {
	bg := dc.background
	if bg == nil || bg.Image == nil || !bg.Visible {
		return
	}

	src := bg.Image
	srcBounds := src.Bounds()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			srcX := int(float64(x)/dc.zoom) + srcBounds.Min.X
			srcY := int(float64(y)/dc.zoom) + srcBounds.Min.Y
			if srcX < srcBounds.Min.X || srcX >= srcBounds.Max.X ||
				srcY < srcBounds.Min.Y || srcY >= srcBounds.Max.Y {
				continue
			}

			sr, sg, sb, _ := src.At(srcX, srcY).RGBA()
			existing := output.RGBAAt(x, y)
			opacity := bg.Opacity
			inv := 1 - opacity
			output.SetRGBA(x, y, color.RGBA{
				R: uint8(float64(sr>>8)*opacity + float64(existing.R)*inv),
				G: uint8(float64(sg>>8)*opacity + float64(existing.G)*inv),
				B: uint8(float64(sb>>8)*opacity + float64(existing.B)*inv),
				A: 255,
			})
		}
	}
}

// drawShape renders one finalized shape with its markers and labels.
func (dc *DesignCanvas) drawShape(output *image.RGBA, s designer.ShapeView) {
	col, filled := kindColor(s.Kind)

	overlay := &Overlay{Color: col}
	overlay.Polygons = append(overlay.Polygons, OverlayPolygon{
		Points: s.Vertices,
		Filled: filled,
	})
	for _, v := range s.Vertices {
		overlay.Circles = append(overlay.Circles, OverlayCircle{
			Center: v,
			Radius: vertexMarkerRadius,
			Filled: true,
		})
	}
	for _, e := range s.Labels.Edges {
		overlay.Texts = append(overlay.Texts, OverlayText{
			Text:   e.Text,
			Center: e.Midpoint,
		})
	}
	if s.Labels.Name != nil && s.Labels.Name.Text != "" {
		overlay.Texts = append(overlay.Texts, OverlayText{
			Text:   s.Labels.Name.Text,
			Center: s.Labels.Name.Center,
			Scale:  int(math.Max(1, s.Labels.Name.FontSize/5)),
		})
	}

	dc.drawOverlay(output, overlay)
}

// drawDraft renders the in-progress polyline and the live preview.
func (dc *DesignCanvas) drawDraft(output *image.RGBA) {
	draft := dc.snapshot.Draft
	if len(draft) == 0 {
		return
	}

	overlay := &Overlay{Color: colorutil.DraftOrange}
	for i := 0; i < len(draft)-1; i++ {
		overlay.Lines = append(overlay.Lines, OverlayLine{From: draft[i], To: draft[i+1]})
	}
	for _, v := range draft {
		overlay.Circles = append(overlay.Circles, OverlayCircle{
			Center: v,
			Radius: vertexMarkerRadius,
			Filled: true,
		})
	}

	if dc.preview != nil {
		overlay.Lines = append(overlay.Lines, OverlayLine{
			From:      dc.preview.From,
			To:        dc.preview.To,
			Thickness: 1,
		})
		mid := geometry.Point2D{
			X: (dc.preview.From.X + dc.preview.To.X) / 2,
			Y: (dc.preview.From.Y + dc.preview.To.Y) / 2,
		}
		overlay.Texts = append(overlay.Texts, OverlayText{
			Text:   dc.preview.Text,
			Center: mid,
		})
	}

	dc.drawOverlay(output, overlay)
}

// drawScaleMark renders the first click of the scale reference capture.
func (dc *DesignCanvas) drawScaleMark(output *image.RGBA) {
	if dc.scaleMark == nil {
		return
	}
	overlay := &Overlay{Color: colorutil.Yellow}
	overlay.Circles = append(overlay.Circles, OverlayCircle{
		Center: *dc.scaleMark,
		Radius: 6,
	})
	dc.drawOverlay(output, overlay)
}

// CreateRenderer implements fyne.Widget.
func (dc *DesignCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &designCanvasRenderer{canvas: dc}
}

type designCanvasRenderer struct {
	canvas *DesignCanvas
}

func (r *designCanvasRenderer) Layout(size fyne.Size) {
	if r.canvas.scroll != nil {
		r.canvas.scroll.Resize(size)
	}
}

func (r *designCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *designCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *designCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *designCanvasRenderer) Destroy() {}
