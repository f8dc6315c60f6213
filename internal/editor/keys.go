package editor

import "unicode"

type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyF2
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// KeyEvent is a key press. Rune is set for KeyRune.
type KeyEvent struct {
	Key   Key
	Rune  rune
	Ctrl  bool
	Shift bool
}

// HandleKey dispatches a key press and reports whether it was consumed.
func (c *Controller) HandleKey(ev KeyEvent) bool {
	if c.mode == ModeEditingLabel {
		return c.editKey(ev)
	}
	if c.inputFocused {
		return false
	}
	if c.menu.Open && c.menuKey(ev) {
		return true
	}

	if ev.Ctrl {
		return c.ctrlKey(ev)
	}

	switch ev.Key {
	case KeyEscape:
		c.Escape()
		return true
	case KeyDelete, KeyBackspace:
		c.DeleteSelection()
		return true
	case KeyF2, KeyEnter:
		return c.EditSelectedLabel()
	case KeyUp:
		return c.Nudge(0, -c.nudgeStep(ev))
	case KeyDown:
		return c.Nudge(0, c.nudgeStep(ev))
	case KeyLeft:
		return c.Nudge(-c.nudgeStep(ev), 0)
	case KeyRight:
		return c.Nudge(c.nudgeStep(ev), 0)
	case KeyRune:
		return c.runeKey(ev.Rune)
	}
	return false
}

func (c *Controller) nudgeStep(ev KeyEvent) float64 {
	if ev.Shift {
		return NudgeStepLarge
	}
	return NudgeStep
}

func (c *Controller) ctrlKey(ev KeyEvent) bool {
	if ev.Key != KeyRune {
		return false
	}
	switch unicode.ToLower(ev.Rune) {
	case 'z':
		if ev.Shift || unicode.IsUpper(ev.Rune) {
			return c.Redo()
		}
		return c.Undo()
	case 'y':
		return c.Redo()
	case 'd':
		_, ok := c.Duplicate()
		return ok
	case 'a':
		c.scene.SelectAllComponents()
		return true
	}
	return false
}

func (c *Controller) runeKey(r rune) bool {
	switch r {
	case 'v':
		c.SetTool(ToolSelect)
	case 'h':
		c.SetTool(ToolPan)
	case 'c':
		c.SetTool(ToolConnect)
	case '?':
		c.helpOpen = !c.helpOpen
	case '+', '=':
		c.view.ZoomIn()
	case '-':
		c.view.ZoomOut()
	case '0':
		c.view.Reset()
	case 'l':
		c.showLabels = !c.showLabels
	case 'e':
		c.showConnections = !c.showConnections
	default:
		return false
	}
	return true
}

// Escape clears selection, returns to the select tool, drops any pending
// connection and closes overlays.
func (c *Controller) Escape() {
	c.scene.ClearSelection()
	c.cancelPending()
	if c.mode == ModeDraggingComponent {
		c.endDrag()
	}
	if c.mode == ModeDraggingCanvas {
		c.setMode(ModeIdle)
	}
	c.SetTool(ToolSelect)
	c.helpOpen = false
	c.closeMenu()
}

func (c *Controller) editKey(ev KeyEvent) bool {
	switch ev.Key {
	case KeyEnter:
		c.CommitLabel()
	case KeyEscape:
		c.CancelLabel()
	case KeyBackspace:
		if n := len(c.editBuffer); n > 0 {
			c.editBuffer = c.editBuffer[:n-1]
		}
	case KeyRune:
		if ev.Ctrl || !unicode.IsPrint(ev.Rune) {
			return false
		}
		c.editBuffer = append(c.editBuffer, ev.Rune)
	default:
		return false
	}
	return true
}
