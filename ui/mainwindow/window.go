// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"pool-designer/internal/designer"
	siteimage "pool-designer/internal/image"
	"pool-designer/internal/shape"
	"pool-designer/internal/version"
	"pool-designer/pkg/geometry"
	"pool-designer/pkg/units"
	"pool-designer/ui/canvas"
	"pool-designer/ui/panels"
)

const (
	prefKeyLastDir   = "lastDirectory"
	prefKeySiteImage = "lastSiteImage"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *designer.Designer
	canvas    *canvas.DesignCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	gridItem   *fyne.MenuItem
	vertexItem *fyne.MenuItem

	// pools already asked about, so completion prompts only once
	namePrompted map[string]bool
}

// New creates a new main window.
func New(fyneApp fyne.App, state *designer.Designer) *MainWindow {
	win := fyneApp.NewWindow("Pool Designer")

	mw := &MainWindow{
		Window:       win,
		app:          fyneApp,
		state:        state,
		namePrompted: make(map[string]bool),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewDesignCanvas(mw.state.GridSize(), mw.state.Store())
	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas)
	mw.statusBar = widget.NewLabel("Ready")

	mw.canvas.OnPointerDown(func(p geometry.Point2D, shift bool) {
		if mw.state.Mode() == designer.ModeScaleCapture {
			mark := p
			mw.canvas.SetScaleMark(&mark)
		}
		mw.state.PointerDown(p, shift)
	})
	mw.canvas.OnPointerMove(func(p geometry.Point2D, shift bool) {
		mw.state.PointerMove(p, shift)
	})
	mw.canvas.OnMoveShape(func(id string, delta geometry.Point2D) {
		mw.state.MoveShape(id, delta)
	})
	mw.canvas.OnReshapeVertex(func(id string, index int, pos, origin geometry.Point2D, shift bool) {
		mw.state.ReshapeVertex(id, index, pos, origin, shift)
	})
	mw.canvas.OnRotatePool(func(id string, angle float64) {
		mw.state.RotatePool(id, angle, mw.canvas.ShiftHeld())
	})
	mw.canvas.OnDoubleTap(func() {
		mw.state.CompleteShape()
	})
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.updateStatus(fmt.Sprintf("Zoom: %.0f%%", zoom*100))
	})

	toolbar := mw.createToolbar()
	mw.restoreLastImage()

	canvasArea := container.NewBorder(
		toolbar,
		nil, nil, nil,
		mw.canvas.Container(),
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1200, 800))
}

// createToolbar creates the toolbar with tracing and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	propertyBtn := widget.NewButton("Property", func() { mw.onStartTracing(shape.KindProperty) })
	houseBtn := widget.NewButton("House", func() { mw.onStartTracing(shape.KindHouse) })
	poolBtn := widget.NewButton("Pool", func() { mw.onStartTracing(shape.KindPool) })

	moveBtn := widget.NewButton("Move", func() { mw.onSelectTool(canvas.ToolMove) })
	reshapeBtn := widget.NewButton("Reshape", func() { mw.onSelectTool(canvas.ToolReshape) })
	rotateBtn := widget.NewButton("Rotate", func() { mw.onSelectTool(canvas.ToolRotate) })

	zoomOutBtn := widget.NewButton("-", mw.canvas.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.canvas.ZoomIn)
	actualBtn := widget.NewButton("1:1", func() { mw.canvas.SetZoom(1.0) })

	return container.NewHBox(
		widget.NewLabel("Draw:"),
		propertyBtn, houseBtn, poolBtn,
		widget.NewSeparator(),
		widget.NewLabel("Edit:"),
		moveBtn, reshapeBtn, rotateBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn, zoomInBtn, actualBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Site Image...", mw.onOpenSiteImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.state.Undo),
		fyne.NewMenuItem("Redo", mw.state.Redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete Last House", func() { mw.state.DeleteLast(shape.KindHouse) }),
		fyne.NewMenuItem("Delete Last Pool", func() { mw.state.DeleteLast(shape.KindPool) }),
		fyne.NewMenuItem("Delete Property", func() { mw.state.DeleteLast(shape.KindProperty) }),
	)

	drawMenu := fyne.NewMenu("Draw",
		fyne.NewMenuItem("Trace Property", func() { mw.onStartTracing(shape.KindProperty) }),
		fyne.NewMenuItem("Trace House", func() { mw.onStartTracing(shape.KindHouse) }),
		fyne.NewMenuItem("Trace Pool", func() { mw.onStartTracing(shape.KindPool) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Complete Shape", func() { mw.state.CompleteShape() }),
		fyne.NewMenuItem("Cancel Tracing", mw.state.CancelTracing),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Insert Preset Pool...", mw.onInsertPresetPool),
	)

	mw.gridItem = fyne.NewMenuItem("Grid Snapping ✓", mw.onToggleGrid)
	mw.vertexItem = fyne.NewMenuItem("Vertex Snapping ✓", mw.onToggleVertex)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.SetZoom(1.0) }),
		fyne.NewMenuItemSeparator(),
		mw.gridItem,
		mw.vertexItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Units: Feet", func() { mw.state.SetUnit(units.Feet) }),
		fyne.NewMenuItem("Units: Meters", func() { mw.state.SetUnit(units.Meters) }),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Set Scale Reference", mw.onBeginScaleCapture),
		fyne.NewMenuItem("Reset Scale Reference", mw.state.ResetScaleReference),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mainMenu := fyne.NewMainMenu(fileMenu, editMenu, drawMenu, viewMenu, toolsMenu, helpMenu)
	mw.SetMainMenu(mainMenu)
}

// setupEventHandlers registers for designer events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(designer.EventShapesChanged, func(data interface{}) {
		snap, ok := data.(designer.Snapshot)
		if !ok {
			return
		}
		mw.canvas.SetSnapshot(snap)
		for _, s := range snap.Shapes {
			if s.Kind == shape.KindPool && s.Name == "" && !mw.namePrompted[s.ID] {
				mw.namePrompted[s.ID] = true
				mw.promptPoolName(s.ID)
			}
		}
	})

	mw.state.On(designer.EventDraftChanged, func(interface{}) {
		mw.canvas.SetPreview(nil)
		mw.canvas.SetSnapshot(mw.state.Snapshot())
	})

	mw.state.On(designer.EventPreviewChanged, func(data interface{}) {
		if p, ok := data.(designer.PreviewInfo); ok {
			mw.canvas.SetPreview(&p)
		}
	})

	mw.state.On(designer.EventStatusMessage, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.updateStatus(msg)
		}
	})

	mw.state.On(designer.EventBackgroundLoaded, func(data interface{}) {
		if bg, ok := data.(*siteimage.Background); ok {
			mw.canvas.SetBackground(bg)
			mw.updateStatus("Site image loaded: " + filepath.Base(bg.Path))
		}
	})

	mw.state.On(designer.EventScaleChanged, func(data interface{}) {
		mw.canvas.SetScaleMark(nil)
		if pix, ok := data.(float64); ok && pix > 0 {
			// captured segment awaits its real-world length
			mw.promptScaleLength(pix)
		}
	})

	mw.state.On(designer.EventModeChanged, func(data interface{}) {
		if mode, ok := data.(designer.Mode); ok && mode == designer.ModeTracing {
			mw.canvas.SetTool(canvas.ToolTrace)
		}
	})
}

// setupKeys wires keyboard shortcuts and shift modifier tracking.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.state.CancelTracing()
		case fyne.KeyReturn, fyne.KeyEnter:
			mw.state.CompleteShape()
		}
	})

	if deskCanvas, ok := mw.Canvas().(desktop.Canvas); ok {
		deskCanvas.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
				mw.canvas.SetShiftHeld(true)
			}
		})
		deskCanvas.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
				mw.canvas.SetShiftHeld(false)
			}
		})
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onStartTracing(kind shape.Kind) {
	mw.canvas.SetTool(canvas.ToolTrace)
	mw.state.StartTracing(kind)
}

func (mw *MainWindow) onSelectTool(tool canvas.Tool) {
	if mw.state.Mode() == designer.ModeTracing {
		mw.state.CancelTracing()
	}
	mw.canvas.SetTool(tool)
	switch tool {
	case canvas.ToolMove:
		mw.updateStatus("move: drag a shape to translate it")
	case canvas.ToolReshape:
		mw.updateStatus("reshape: drag a vertex to move it")
	case canvas.ToolRotate:
		mw.updateStatus("rotate: drag inside a pool to rotate it")
	}
}

func (mw *MainWindow) onToggleGrid() {
	on := mw.state.ToggleGridSnapping()
	if on {
		mw.gridItem.Label = "Grid Snapping ✓"
	} else {
		mw.gridItem.Label = "Grid Snapping"
	}
	mw.canvas.SetShowGrid(on)
}

func (mw *MainWindow) onToggleVertex() {
	on := mw.state.ToggleVertexSnapping()
	if on {
		mw.vertexItem.Label = "Vertex Snapping ✓"
	} else {
		mw.vertexItem.Label = "Vertex Snapping"
	}
}

func (mw *MainWindow) onBeginScaleCapture() {
	if err := mw.state.BeginScaleCapture(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

// promptScaleLength asks for the real-world length of the captured
// reference segment.
func (mw *MainWindow) promptScaleLength(pixels float64) {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("e.g. 10")

	items := []*widget.FormItem{
		widget.NewFormItem(fmt.Sprintf("Length of %.0f px segment (%s)", pixels, mw.state.Unit()), entry),
	}
	dialog.ShowForm("Scale Reference", "Set", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		value, err := strconv.ParseFloat(entry.Text, 64)
		if err != nil {
			dialog.ShowError(fmt.Errorf("invalid length %q", entry.Text), mw.Window)
			return
		}
		if err := mw.state.SetScaleReference(value, mw.state.Unit()); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
}

// promptPoolName asks for a display name for a freshly traced pool.
func (mw *MainWindow) promptPoolName(id string) {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Pool")

	items := []*widget.FormItem{
		widget.NewFormItem("Pool name", entry),
	}
	dialog.ShowForm("Name Pool", "Set", "Skip", items, func(ok bool) {
		if !ok || entry.Text == "" {
			return
		}
		mw.state.RenameShape(id, entry.Text)
	}, mw.Window)
}

func (mw *MainWindow) onInsertPresetPool() {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Lap Pool")
	widthEntry := widget.NewEntry()
	heightEntry := widget.NewEntry()

	items := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem(fmt.Sprintf("Width (%s)", mw.state.Unit()), widthEntry),
		widget.NewFormItem(fmt.Sprintf("Length (%s)", mw.state.Unit()), heightEntry),
	}
	dialog.ShowForm("Insert Pool", "Insert", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		width, errW := strconv.ParseFloat(widthEntry.Text, 64)
		height, errH := strconv.ParseFloat(heightEntry.Text, 64)
		if errW != nil || errH != nil {
			dialog.ShowError(fmt.Errorf("dimensions must be numeric"), mw.Window)
			return
		}
		if err := mw.state.InsertPresetPool(nameEntry.Text, width, height); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
}

func (mw *MainWindow) onOpenSiteImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)

		if err := mw.state.LoadBackground(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.app.Preferences().SetString(prefKeySiteImage, path)
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(siteimage.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.app.Preferences().SetString(prefKeyLastDir, filepath.Dir(filePath))
}

// restoreLastImage reloads the previously used site image.
func (mw *MainWindow) restoreLastImage() {
	path := mw.app.Preferences().String(prefKeySiteImage)
	if path == "" {
		return
	}
	if err := mw.state.LoadBackground(path); err != nil {
		mw.updateStatus("could not restore site image: " + err.Error())
		return
	}
	mw.canvas.SetBackground(mw.state.Background())
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Pool Designer",
		fmt.Sprintf("Pool Designer v%s\n\n"+
			"Trace property, house, and pool outlines over a site photo\n"+
			"and derive real-world measurements and material estimates.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
