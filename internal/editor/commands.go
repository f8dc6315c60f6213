package editor

import (
	"errors"
	"fmt"

	"archcanvas/internal/geom"
	"archcanvas/internal/layout"
	"archcanvas/internal/scene"
	"archcanvas/internal/viewport"
)

const zoomFactor = viewport.ZoomStep

// settle ends any drag in progress, keeping a moved component as one
// history step, and drops pending connections and label edits.
func (c *Controller) settle() {
	switch c.mode {
	case ModeDraggingComponent:
		if c.dragMoved {
			c.history.Record(c.dragStart)
		}
		c.endDrag()
	case ModeDraggingCanvas:
		c.setMode(ModeIdle)
	case ModeConnecting:
		c.cancelPending()
	case ModeEditingLabel:
		c.CancelLabel()
	}
}

func (c *Controller) Undo() bool {
	c.settle()
	snap, ok := c.history.Undo(c.scene)
	if !ok {
		return false
	}
	c.apply(snap)
	c.logger.Debug("undo", "entries", c.history.Len())
	return true
}

func (c *Controller) Redo() bool {
	c.settle()
	snap, ok := c.history.Redo()
	if !ok {
		return false
	}
	c.apply(snap)
	c.logger.Debug("redo", "entries", c.history.Len())
	return true
}

func (c *Controller) apply(snap scene.Snapshot) {
	c.history.Restoring(func() {
		c.scene.Restore(snap)
		c.scene.ClearSelection()
	})
	c.hoverComponent, c.hoverConnection = "", ""
	c.notify()
}

// DeleteSelection removes every selected component (with its connections)
// and the selected connection as one history step.
func (c *Controller) DeleteSelection() bool {
	var compIDs, connIDs []string
	for _, comp := range c.scene.Components {
		if comp.Selected {
			compIDs = append(compIDs, comp.ID)
		}
	}
	for _, conn := range c.scene.Connections {
		if conn.Selected {
			connIDs = append(connIDs, conn.ID)
		}
	}
	if len(compIDs) == 0 && len(connIDs) == 0 {
		return false
	}

	_ = c.commit(func() error {
		for _, id := range compIDs {
			removed := c.scene.RemoveComponent(id)
			c.logger.Debug("component deleted", "id", id, "cascaded", len(removed))
		}
		for _, id := range connIDs {
			c.scene.RemoveConnection(id)
		}
		return nil
	})
	return true
}

// Duplicate copies the selected component DuplicateOffset units down and
// right under a new id and selects the copy.
func (c *Controller) Duplicate() (scene.Component, bool) {
	src, ok := c.selectedComponent()
	if !ok {
		return scene.Component{}, false
	}
	cp := src
	cp.ID = ""
	cp.Selected = false
	cp.X += DuplicateOffset
	cp.Y += DuplicateOffset

	var added scene.Component
	err := c.commit(func() error {
		var err error
		added, err = c.scene.AddComponent(cp)
		return err
	})
	if err != nil {
		c.logger.Warn("duplicate failed", "source", src.ID, "error", err)
		return scene.Component{}, false
	}
	c.scene.SelectComponent(added.ID)
	return added, true
}

// Nudge moves the selected component by (dx, dy) unless that would break
// the minimum spacing. It reports whether a component was selected.
func (c *Controller) Nudge(dx, dy float64) bool {
	comp, ok := c.selectedComponent()
	if !ok {
		return false
	}
	to := geom.Pt(comp.X+dx, comp.Y+dy)
	if layout.WouldCollide(to, comp.Width, comp.Height, c.scene.Others(comp.ID), c.layout.MinSpacing) {
		c.logger.Debug("nudge rejected", "component", comp.ID)
		return true
	}
	_ = c.commit(func() error {
		return c.scene.MoveComponent(comp.ID, to.X, to.Y)
	})
	return true
}

// PalettePayload is what an external palette hands over on drop. Icon and
// Color are opaque style hints.
type PalettePayload struct {
	Kind  string
	Label string
	Icon  string
	Color string
}

// Drop creates a default-sized component centered on the screen point.
func (c *Controller) Drop(p PalettePayload, screen geom.Point) (scene.Component, error) {
	c.settle()
	world := c.view.ScreenToWorld(screen)
	comp := scene.Component{
		Kind:   p.Kind,
		Label:  p.Label,
		Icon:   p.Icon,
		Color:  p.Color,
		X:      world.X - scene.DefaultWidth/2,
		Y:      world.Y - scene.DefaultHeight/2,
		Width:  scene.DefaultWidth,
		Height: scene.DefaultHeight,
	}

	var added scene.Component
	err := c.commit(func() error {
		var err error
		added, err = c.scene.AddComponent(comp)
		return err
	})
	if err != nil {
		return scene.Component{}, fmt.Errorf("drop %s: %w", p.Kind, err)
	}
	c.scene.SelectComponent(added.ID)
	c.logger.Debug("component dropped", "id", added.ID, "kind", added.Kind)
	return added, nil
}

// LoadScene replaces the whole scene in one step and starts a fresh
// history.
func (c *Controller) LoadScene(next *scene.Scene) {
	c.settle()
	c.closeMenu()
	c.scene.Restore(next.Snapshot())
	c.history.Reset()
	c.SetTool(ToolSelect)
	c.hoverComponent, c.hoverConnection = "", ""
	c.logger.Info("scene loaded", "components", len(c.scene.Components), "connections", len(c.scene.Connections))
	c.notify()
}

// UpdateComponent applies a property patch as one history step. Unknown
// ids are ignored.
func (c *Controller) UpdateComponent(id string, patch scene.ComponentPatch) error {
	err := c.commit(func() error {
		return c.scene.UpdateComponent(id, patch)
	})
	if errors.Is(err, scene.ErrNotFound) {
		return nil
	}
	return err
}

func (c *Controller) ZoomIn() {
	c.view.ZoomIn()
}

func (c *Controller) ZoomOut() {
	c.view.ZoomOut()
}

func (c *Controller) ResetView() {
	c.view.Reset()
}
