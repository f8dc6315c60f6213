package editor

import (
	"errors"

	"archcanvas/internal/geom"
	"archcanvas/internal/hittest"
	"archcanvas/internal/layout"
	"archcanvas/internal/scene"
)

type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// PointerEvent carries a position in screen coordinates.
type PointerEvent struct {
	Screen geom.Point
	Button Button
}

func (c *Controller) HandlePointerDown(ev PointerEvent) {
	if ev.Button == ButtonSecondary {
		c.OpenContextMenu(ev.Screen)
		return
	}
	c.closeMenu()
	if c.mode == ModeEditingLabel {
		c.Blur()
	}

	world := c.view.ScreenToWorld(ev.Screen)
	c.pointer = world

	switch c.tool {
	case ToolPan:
		c.startCanvasDrag(ev.Screen)

	case ToolConnect:
		comp, ok := c.picker.ComponentAt(c.scene, world)
		if !ok {
			return
		}
		c.pendingFrom = comp.ID
		c.pendingAnchor = comp.Center()
		c.setMode(ModeConnecting)

	case ToolSelect:
		hit := c.picker.Pick(c.scene, world)
		if hit.Kind != hittest.HitConnection {
			c.lastClickID = ""
		}
		switch hit.Kind {
		case hittest.HitConnection:
			c.pressConnection(hit.Connection)
		case hittest.HitComponent:
			c.scene.SelectComponent(hit.Component.ID)
			c.dragID = hit.Component.ID
			c.dragOffset = world.Sub(hit.Component.Bounds().Min())
			c.dragStart = c.scene.Snapshot()
			c.dragMoved = false
			c.dragStartedAt = c.now()
			c.setMode(ModeDraggingComponent)
		default:
			c.scene.ClearSelection()
			c.startCanvasDrag(ev.Screen)
		}
	}
}

// pressConnection selects conn. A labelled connection goes straight into
// label editing; an unlabelled one needs a second press on the same
// connection within DoubleClickWindow.
func (c *Controller) pressConnection(conn scene.Connection) {
	c.scene.SelectConnection(conn.ID)
	now := c.now()

	if conn.Label != "" {
		c.lastClickID = ""
		c.startEditing(conn.ID, conn.Label)
		return
	}
	if c.lastClickID == conn.ID && now.Sub(c.lastClickAt) < DoubleClickWindow {
		c.lastClickID = ""
		c.startEditing(conn.ID, "")
		return
	}
	c.lastClickID = conn.ID
	c.lastClickAt = now
}

func (c *Controller) startCanvasDrag(screen geom.Point) {
	c.lastScreen = screen
	c.setMode(ModeDraggingCanvas)
}

func (c *Controller) HandlePointerMove(ev PointerEvent) {
	world := c.view.ScreenToWorld(ev.Screen)
	c.pointer = world

	switch c.mode {
	case ModeDraggingComponent:
		c.dragTo(world)
	case ModeDraggingCanvas:
		delta := ev.Screen.Sub(c.lastScreen)
		c.view.PanBy(delta.X, delta.Y)
		c.lastScreen = ev.Screen
	case ModeIdle:
		c.updateHover(world)
	}
}

// dragTo moves the dragged component toward world minus the grab offset.
// The snapped position is dropped for this frame when it would collide.
func (c *Controller) dragTo(world geom.Point) {
	comp, ok := c.scene.Component(c.dragID)
	if !ok {
		c.endDrag()
		return
	}
	want := world.Sub(c.dragOffset)
	others := c.scene.Others(comp.ID)

	snap := layout.ComputeSnapTarget(geom.Rect{X: want.X, Y: want.Y, W: comp.Width, H: comp.Height}, others, c.layout)
	c.guides = snap.Guides

	if layout.WouldCollide(snap.Position, comp.Width, comp.Height, others, c.layout.MinSpacing) {
		return
	}
	if snap.Position == comp.Bounds().Min() {
		return
	}
	if err := c.scene.MoveComponent(comp.ID, snap.Position.X, snap.Position.Y); err != nil {
		c.logger.Debug("drag move rejected", "component", comp.ID, "error", err)
		return
	}
	c.dragMoved = true
}

func (c *Controller) updateHover(world geom.Point) {
	c.hoverComponent, c.hoverConnection = "", ""
	if conn, ok := c.picker.ConnectionAt(c.scene, world); ok {
		c.hoverConnection = conn.ID
		return
	}
	if comp, ok := c.picker.ComponentAt(c.scene, world); ok {
		c.hoverComponent = comp.ID
	}
}

func (c *Controller) HandlePointerUp(ev PointerEvent) {
	world := c.view.ScreenToWorld(ev.Screen)
	c.pointer = world

	switch c.mode {
	case ModeDraggingComponent:
		if c.dragMoved && c.dragEndedAway() {
			c.history.Record(c.dragStart)
			c.notify()
		}
		c.endDrag()
	case ModeDraggingCanvas:
		c.setMode(ModeIdle)
	case ModeConnecting:
		c.finishConnection(world)
	}

	if c.tool == ToolConnect {
		c.SetTool(ToolSelect)
	}
}

// dragEndedAway reports whether the dragged component rests somewhere other
// than where the drag began.
func (c *Controller) dragEndedAway() bool {
	now, ok := c.scene.Component(c.dragID)
	if !ok {
		return false
	}
	for _, was := range c.dragStart.Components {
		if was.ID == c.dragID {
			return was.X != now.X || was.Y != now.Y
		}
	}
	return true
}

func (c *Controller) endDrag() {
	c.dragID = ""
	c.dragMoved = false
	c.dragStart = scene.Snapshot{}
	c.guides = nil
	c.setMode(ModeIdle)
}

// finishConnection links the pending start to the component under world.
// Releasing over empty space or the start component abandons it.
func (c *Controller) finishConnection(world geom.Point) {
	from := c.pendingFrom
	c.cancelPending()

	target, ok := c.picker.ComponentAt(c.scene, world)
	if !ok || target.ID == from {
		c.logger.Debug("connection abandoned", "from", from)
		return
	}
	err := c.commit(func() error {
		_, err := c.scene.AddConnection(from, target.ID, scene.ConnectionAttrs{
			Kind:  scene.DefaultConnectionKind,
			Label: DefaultConnectionLabel,
		})
		return err
	})
	if err != nil && !errors.Is(err, scene.ErrNotFound) {
		c.logger.Warn("connection rejected", "from", from, "to", target.ID, "error", err)
	}
}

// HandleWheel zooms about the pointer. Positive steps zoom in.
func (c *Controller) HandleWheel(screen geom.Point, steps int) {
	for ; steps > 0; steps-- {
		c.view.ZoomAt(screen, zoomFactor)
	}
	for ; steps < 0; steps++ {
		c.view.ZoomAt(screen, 1/zoomFactor)
	}
}
