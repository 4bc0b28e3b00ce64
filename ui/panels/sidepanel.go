// Package panels provides UI panels for the application.
package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pool-designer/internal/designer"
	"pool-designer/internal/shape"
	"pool-designer/ui/canvas"
)

// SidePanel provides the side panel with tabbed sections.
type SidePanel struct {
	state     *designer.Designer
	canvas    *canvas.DesignCanvas
	container *container.AppTabs

	shapesPanel *ShapesPanel
	reportPanel *ReportPanel
	layersPanel *LayersPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *designer.Designer, cvs *canvas.DesignCanvas) *SidePanel {
	sp := &SidePanel{
		state:  state,
		canvas: cvs,
	}

	sp.shapesPanel = NewShapesPanel(state)
	sp.reportPanel = NewReportPanel(state)
	sp.layersPanel = NewLayersPanel(state, cvs)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Shapes", sp.shapesPanel.Container()),
		container.NewTabItem("Report", sp.reportPanel.Container()),
		container.NewTabItem("Layers", sp.layersPanel.Container()),
	)

	state.On(designer.EventShapesChanged, func(data interface{}) {
		snap := data.(designer.Snapshot)
		sp.shapesPanel.Update(snap)
		sp.reportPanel.Update(snap)
	})
	state.On(designer.EventBackgroundLoaded, func(interface{}) {
		sp.layersPanel.Sync()
	})

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// ShapesPanel lists the traced shapes with their measurements.
type ShapesPanel struct {
	state     *designer.Designer
	container fyne.CanvasObject

	scaleLabel *widget.Label
	unitLabel  *widget.Label
	list       *widget.Label
}

// NewShapesPanel creates the shapes panel.
func NewShapesPanel(state *designer.Designer) *ShapesPanel {
	p := &ShapesPanel{state: state}

	p.scaleLabel = widget.NewLabel("No scale reference")
	p.unitLabel = widget.NewLabel("")
	p.list = widget.NewLabel("No shapes traced yet")
	p.list.Wrapping = fyne.TextWrapWord

	p.container = container.NewVBox(
		p.scaleLabel,
		p.unitLabel,
		widget.NewSeparator(),
		p.list,
	)

	p.Update(state.Snapshot())
	return p
}

// Container returns the panel content.
func (p *ShapesPanel) Container() fyne.CanvasObject {
	return p.container
}

// Update re-renders the panel from a snapshot.
func (p *ShapesPanel) Update(snap designer.Snapshot) {
	if snap.Scale.Valid() {
		p.scaleLabel.SetText(fmt.Sprintf("Scale: %.0f px = %.2f %s",
			snap.Scale.PixelLength, snap.Scale.RealLength, snap.Scale.Unit))
	} else {
		p.scaleLabel.SetText("No scale reference")
	}
	p.unitLabel.SetText(fmt.Sprintf("Unit: %s", snap.Unit))

	if len(snap.Shapes) == 0 {
		p.list.SetText("No shapes traced yet")
		return
	}

	text := ""
	for _, s := range snap.Shapes {
		name := s.Name
		if name == "" {
			name = s.Kind.String()
		}
		text += fmt.Sprintf("%s (%s)\n  area: %s\n", name, s.Kind, s.AreaText)
		for _, e := range s.Labels.Edges {
			text += fmt.Sprintf("  edge %d: %s\n", e.Index+1, e.Text)
		}
	}
	p.list.SetText(text)
}

// ReportPanel shows the derived material quantities.
type ReportPanel struct {
	state     *designer.Designer
	container fyne.CanvasObject

	copingLabel *widget.Label
	paverLabel  *widget.Label
	fenceLabel  *widget.Label
	hintLabel   *widget.Label
}

// NewReportPanel creates the materials report panel.
func NewReportPanel(state *designer.Designer) *ReportPanel {
	p := &ReportPanel{state: state}

	p.copingLabel = widget.NewLabel("Coping: —")
	p.paverLabel = widget.NewLabel("Pavers: —")
	p.fenceLabel = widget.NewLabel("Fencing: —")
	p.hintLabel = widget.NewLabel("Trace a property boundary to estimate materials.")
	p.hintLabel.Wrapping = fyne.TextWrapWord

	p.container = container.NewVBox(
		widget.NewLabelWithStyle("Materials", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.copingLabel,
		p.paverLabel,
		p.fenceLabel,
		widget.NewSeparator(),
		p.hintLabel,
	)

	p.Update(state.Snapshot())
	return p
}

// Container returns the panel content.
func (p *ReportPanel) Container() fyne.CanvasObject {
	return p.container
}

// Update re-renders the report from a snapshot.
func (p *ReportPanel) Update(snap designer.Snapshot) {
	hasProperty := false
	for _, s := range snap.Shapes {
		if s.Kind == shape.KindProperty {
			hasProperty = true
			break
		}
	}
	if !hasProperty {
		p.copingLabel.SetText("Coping: —")
		p.paverLabel.SetText("Pavers: —")
		p.fenceLabel.SetText("Fencing: —")
		p.hintLabel.SetText("Trace a property boundary to estimate materials.")
		return
	}

	p.copingLabel.SetText("Coping: " + snap.Materials.CopingText)
	p.paverLabel.SetText("Pavers: " + snap.Materials.PaverText)
	p.fenceLabel.SetText("Fencing: " + snap.Materials.FenceText)
	if snap.Scale.Valid() {
		p.hintLabel.SetText("")
	} else {
		p.hintLabel.SetText("Set a scale reference to convert pixels to real units.")
	}
}

// LayersPanel controls the background site image display.
type LayersPanel struct {
	state     *designer.Designer
	canvas    *canvas.DesignCanvas
	container fyne.CanvasObject

	nameLabel     *widget.Label
	visibleCheck  *widget.Check
	opacitySlider *widget.Slider
}

// NewLayersPanel creates the background layer panel.
func NewLayersPanel(state *designer.Designer, cvs *canvas.DesignCanvas) *LayersPanel {
	p := &LayersPanel{state: state, canvas: cvs}

	p.nameLabel = widget.NewLabel("No site image loaded")
	p.nameLabel.Wrapping = fyne.TextWrapWord

	p.visibleCheck = widget.NewCheck("Visible", func(checked bool) {
		if bg := p.state.Background(); bg != nil {
			bg.Visible = checked
			p.canvas.Refresh()
		}
	})
	p.visibleCheck.SetChecked(true)

	p.opacitySlider = widget.NewSlider(0, 1)
	p.opacitySlider.Step = 0.05
	p.opacitySlider.Value = 1
	p.opacitySlider.OnChanged = func(v float64) {
		if bg := p.state.Background(); bg != nil {
			bg.Opacity = v
			p.canvas.Refresh()
		}
	}

	p.container = container.NewVBox(
		p.nameLabel,
		p.visibleCheck,
		widget.NewLabel("Opacity"),
		p.opacitySlider,
	)

	p.Sync()
	return p
}

// Container returns the panel content.
func (p *LayersPanel) Container() fyne.CanvasObject {
	return p.container
}

// Sync refreshes the panel from the loaded background.
func (p *LayersPanel) Sync() {
	bg := p.state.Background()
	if bg == nil {
		p.nameLabel.SetText("No site image loaded")
		return
	}
	text := fmt.Sprintf("%s (%dx%d)", bg.Path, bg.Width(), bg.Height())
	if bg.DPI > 0 {
		text += fmt.Sprintf(", %.0f DPI", bg.DPI)
	}
	p.nameLabel.SetText(text)
	p.visibleCheck.SetChecked(bg.Visible)
	p.opacitySlider.SetValue(bg.Opacity)
}
