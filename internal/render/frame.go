// Package render draws a scene as seen through a viewport: onto a grid of
// terminal cells for the interactive editor, or onto an image for PNG
// export. It only reads scene and controller state.
package render

import (
	"time"

	"archcanvas/internal/editor"
	"archcanvas/internal/geom"
	"archcanvas/internal/hittest"
	"archcanvas/internal/layout"
	"archcanvas/internal/scene"
	"archcanvas/internal/viewport"
)

// Frame is everything one redraw needs.
type Frame struct {
	Scene  *scene.Scene
	View   *viewport.Viewport
	Picker *hittest.Picker

	ShowLabels      bool
	ShowConnections bool

	Guides  []layout.Guide
	Preview *editor.Preview

	EditingID  string
	EditBuffer string

	HoverComponent  string
	HoverConnection string

	// Dragging is set while a component drag is in progress; Pulse is
	// the indicator brightness for this redraw.
	Dragging bool
	Pulse    float64
}

// FrameOf snapshots the controller's presentation state at now.
func FrameOf(c *editor.Controller, now time.Time) Frame {
	f := Frame{
		Scene:           c.Scene(),
		View:            c.Viewport(),
		Picker:          c.Picker(),
		ShowLabels:      c.ShowLabels(),
		ShowConnections: c.ShowConnections(),
		Guides:          c.Guides(),
		Pulse:           1,
	}
	if p, ok := c.Preview(); ok {
		f.Preview = &p
	}
	if id, buf, ok := c.Editing(); ok {
		f.EditingID, f.EditBuffer = id, buf
	}
	f.HoverComponent, f.HoverConnection = c.Hover()
	if started := c.DragStartedAt(); !started.IsZero() {
		f.Dragging = true
		f.Pulse = PulsePhase(now.Sub(started))
	}
	return f
}

// StaticFrame draws a scene with nothing selected, hovered or in progress.
func StaticFrame(s *scene.Scene, v *viewport.Viewport, p *hittest.Picker) Frame {
	return Frame{
		Scene:           s,
		View:            v,
		Picker:          p,
		ShowLabels:      true,
		ShowConnections: true,
		Pulse:           1,
	}
}

func (f Frame) labelText(c scene.Connection) (string, bool) {
	if c.ID == f.EditingID && f.EditingID != "" {
		return f.EditBuffer, true
	}
	if !f.ShowLabels || c.Label == "" {
		return "", false
	}
	return c.Label, true
}

// endBoxes are the bounds of the components a connection is attached to.
// Curves are clipped against them so arrowheads stay visible.
func (f Frame) endBoxes(c scene.Connection) []geom.Rect {
	var boxes []geom.Rect
	for _, id := range []string{c.From.ComponentID, c.To.ComponentID} {
		if comp, ok := f.Scene.Component(id); ok && id != "" {
			boxes = append(boxes, comp.Bounds())
		}
	}
	return boxes
}
