package editor

import (
	"archcanvas/internal/geom"
	"archcanvas/internal/hittest"
)

type MenuAction int

const (
	MenuEditLabel MenuAction = iota
	MenuDuplicate
	MenuDelete
)

func (a MenuAction) String() string {
	switch a {
	case MenuEditLabel:
		return "Edit label"
	case MenuDuplicate:
		return "Duplicate"
	case MenuDelete:
		return "Delete"
	}
	return "unknown"
}

// ContextMenu is open over at most one element.
type ContextMenu struct {
	Open         bool
	Screen       geom.Point
	ComponentID  string
	ConnectionID string
	Items        []MenuAction
}

// OpenContextMenu selects the element under screen and offers actions for
// it. Empty canvas closes any open menu.
func (c *Controller) OpenContextMenu(screen geom.Point) bool {
	c.Blur()
	c.settle()
	c.closeMenu()

	hit := c.picker.Pick(c.scene, c.view.ScreenToWorld(screen))
	switch hit.Kind {
	case hittest.HitConnection:
		c.scene.SelectConnection(hit.Connection.ID)
		c.menu = ContextMenu{
			Open:         true,
			Screen:       screen,
			ConnectionID: hit.Connection.ID,
			Items:        []MenuAction{MenuEditLabel, MenuDelete},
		}
	case hittest.HitComponent:
		c.scene.SelectComponent(hit.Component.ID)
		c.menu = ContextMenu{
			Open:        true,
			Screen:      screen,
			ComponentID: hit.Component.ID,
			Items:       []MenuAction{MenuDuplicate, MenuDelete},
		}
	default:
		return false
	}
	return true
}

// ContextAction runs a from the open menu and closes it.
func (c *Controller) ContextAction(a MenuAction) bool {
	if !c.menu.Open {
		return false
	}
	menu := c.menu
	c.closeMenu()

	offered := false
	for _, item := range menu.Items {
		if item == a {
			offered = true
		}
	}
	if !offered {
		return false
	}

	switch {
	case menu.ConnectionID != "":
		if !c.scene.SelectConnection(menu.ConnectionID) {
			return false
		}
	case menu.ComponentID != "":
		if !c.scene.SelectComponent(menu.ComponentID) {
			return false
		}
	}

	switch a {
	case MenuEditLabel:
		return c.EditSelectedLabel()
	case MenuDuplicate:
		_, ok := c.Duplicate()
		return ok
	case MenuDelete:
		return c.DeleteSelection()
	}
	return false
}

// menuKey maps 1..n to the open menu's items.
func (c *Controller) menuKey(ev KeyEvent) bool {
	if ev.Key != KeyRune || ev.Ctrl {
		return false
	}
	i := int(ev.Rune - '1')
	if i < 0 || i >= len(c.menu.Items) {
		return false
	}
	c.ContextAction(c.menu.Items[i])
	return true
}

func (c *Controller) closeMenu() {
	c.menu = ContextMenu{}
}
