package main

import (
	"archcanvas/internal/editor"
	"archcanvas/internal/geom"
	"archcanvas/internal/render"

	tea "github.com/charmbracelet/bubbletea"
)

// keyEvent translates a terminal key into a controller key. Keys the
// controller has no use for report false.
func keyEvent(msg tea.KeyMsg) (editor.KeyEvent, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return editor.KeyEvent{Key: editor.KeyEnter}, true
	case tea.KeyEscape:
		return editor.KeyEvent{Key: editor.KeyEscape}, true
	case tea.KeyBackspace:
		return editor.KeyEvent{Key: editor.KeyBackspace}, true
	case tea.KeyDelete:
		return editor.KeyEvent{Key: editor.KeyDelete}, true
	case tea.KeyF2:
		return editor.KeyEvent{Key: editor.KeyF2}, true
	case tea.KeyUp:
		return editor.KeyEvent{Key: editor.KeyUp}, true
	case tea.KeyDown:
		return editor.KeyEvent{Key: editor.KeyDown}, true
	case tea.KeyLeft:
		return editor.KeyEvent{Key: editor.KeyLeft}, true
	case tea.KeyRight:
		return editor.KeyEvent{Key: editor.KeyRight}, true
	case tea.KeyShiftUp:
		return editor.KeyEvent{Key: editor.KeyUp, Shift: true}, true
	case tea.KeyShiftDown:
		return editor.KeyEvent{Key: editor.KeyDown, Shift: true}, true
	case tea.KeyShiftLeft:
		return editor.KeyEvent{Key: editor.KeyLeft, Shift: true}, true
	case tea.KeyShiftRight:
		return editor.KeyEvent{Key: editor.KeyRight, Shift: true}, true
	case tea.KeySpace:
		return editor.KeyEvent{Key: editor.KeyRune, Rune: ' '}, true
	case tea.KeyCtrlZ:
		return editor.KeyEvent{Key: editor.KeyRune, Rune: 'z', Ctrl: true}, true
	case tea.KeyCtrlY:
		return editor.KeyEvent{Key: editor.KeyRune, Rune: 'y', Ctrl: true}, true
	case tea.KeyCtrlD:
		return editor.KeyEvent{Key: editor.KeyRune, Rune: 'd', Ctrl: true}, true
	case tea.KeyCtrlA:
		return editor.KeyEvent{Key: editor.KeyRune, Rune: 'a', Ctrl: true}, true
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && !msg.Alt {
			return editor.KeyEvent{Key: editor.KeyRune, Rune: msg.Runes[0]}, true
		}
	}
	return editor.KeyEvent{}, false
}

// cellToScreen returns the screen point at the middle of a terminal cell.
func cellToScreen(x, y int) geom.Point {
	return geom.Pt((float64(x)+0.5)*render.CellWidth, (float64(y)+0.5)*render.CellHeight)
}

// handleMouse forwards pointer activity over the canvas to the controller.
func (m *model) handleMouse(msg tea.MouseMsg) {
	if msg.Y >= m.canvasHeight() {
		return
	}
	m.lastMouseX, m.lastMouseY, m.mouseSeen = msg.X, msg.Y, true
	ev := editor.PointerEvent{Screen: cellToScreen(msg.X, msg.Y)}

	switch msg.Type {
	case tea.MouseLeft:
		if m.mouseDown {
			m.ctrl.HandlePointerMove(ev)
			return
		}
		m.mouseDown = true
		m.ctrl.HandlePointerDown(ev)
	case tea.MouseMotion:
		m.ctrl.HandlePointerMove(ev)
	case tea.MouseRelease:
		if m.mouseDown {
			m.mouseDown = false
			m.ctrl.HandlePointerUp(ev)
		}
	case tea.MouseRight:
		ev.Button = editor.ButtonSecondary
		m.ctrl.HandlePointerDown(ev)
	case tea.MouseWheelUp:
		m.ctrl.HandleWheel(ev.Screen, 1)
	case tea.MouseWheelDown:
		m.ctrl.HandleWheel(ev.Screen, -1)
	}
}

// handlePan scrolls the viewport for arrow keys the controller left
// unused, which happens when nothing is selected.
func (m *model) handlePan(ev editor.KeyEvent) bool {
	speed := m.getMoveSpeed(ev)
	view := m.ctrl.Viewport()
	switch ev.Key {
	case editor.KeyLeft:
		view.PanBy(speed, 0)
	case editor.KeyRight:
		view.PanBy(-speed, 0)
	case editor.KeyUp:
		view.PanBy(0, speed)
	case editor.KeyDown:
		view.PanBy(0, -speed)
	default:
		return false
	}
	return true
}

// getMoveSpeed pans by whole cells: four columns, or sixteen with Shift.
func (m *model) getMoveSpeed(ev editor.KeyEvent) float64 {
	if ev.Shift {
		return 16 * render.CellWidth
	}
	return 4 * render.CellWidth
}
