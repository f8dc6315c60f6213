package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"archcanvas/internal/editor"
	"archcanvas/internal/render"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	toolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Background(lipgloss.Color("236"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Background(lipgloss.Color("236"))
	paletteKey   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	paletteItem  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpBox      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(1, 2)
	helpTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
)

func (m model) View() string {
	width := m.width
	if width < 1 {
		width = 1
	}
	if m.ctrl.HelpOpen() {
		return m.helpView(width)
	}

	grid := render.Render(render.FrameOf(m.ctrl, time.Now()), width, m.canvasHeight())
	if menu := m.ctrl.Menu(); menu.Open {
		drawMenu(grid, menu)
	}

	var result strings.Builder
	for _, line := range grid.Lines() {
		result.WriteString(line)
		result.WriteString("\n")
	}
	result.WriteString(m.paletteBar(width))
	result.WriteString("\n")
	result.WriteString(m.statusLine(width))
	return result.String()
}

// drawMenu boxes the menu items just below and right of where it opened.
func drawMenu(g *render.Grid, menu editor.ContextMenu) {
	items := make([]string, len(menu.Items))
	inner := 0
	for i, item := range menu.Items {
		items[i] = fmt.Sprintf(" %d %s ", i+1, item)
		inner = max(inner, len([]rune(items[i])))
	}

	x0 := int(math.Floor(menu.Screen.X/render.CellWidth)) + 1
	y0 := int(math.Floor(menu.Screen.Y/render.CellHeight)) + 1
	x0 = min(x0, g.Width()-inner-2)
	y0 = min(y0, g.Height()-len(items)-2)

	border := strings.Repeat("-", inner)
	rows := []string{"+" + border + "+"}
	for _, item := range items {
		rows = append(rows, "|"+item+strings.Repeat(" ", inner-len([]rune(item)))+"|")
	}
	rows = append(rows, "+"+border+"+")

	for dy, row := range rows {
		for dx, r := range []rune(row) {
			g.Set(x0+dx, y0+dy, r, render.StyleHover)
		}
	}
}

func (m model) paletteBar(width int) string {
	parts := make([]string, 0, len(palette))
	used := 0
	for i, p := range palette {
		plain := fmt.Sprintf("%d %s", i+1, p.Label)
		if used+len(plain)+2 > width {
			break
		}
		used += len(plain) + 2
		parts = append(parts, paletteKey.Render(fmt.Sprintf("%d", i+1))+" "+paletteItem.Render(p.Label))
	}
	return strings.Join(parts, "  ")
}

func (m model) statusLine(width int) string {
	switch m.mode {
	case ModeFileInput:
		return statusStyle.Width(width).MaxWidth(width).Render(m.fileInputStatus())
	case ModeConfirm:
		return statusStyle.Width(width).MaxWidth(width).Render("CONFIRM | " + m.confirmMessage())
	}

	tool := toolStyle.Render(strings.ToUpper(m.ctrl.Tool().String()))
	status := fmt.Sprintf(" %s | zoom %d%%", m.ctrl.Mode(), int(math.Round(m.ctrl.Viewport().Zoom*100)))

	if id, buf, ok := m.ctrl.Editing(); ok {
		status += fmt.Sprintf(" | %s: %s█ | Enter=save, Esc=cancel", id, buf)
	} else if sel := m.ctrl.Scene().SelectedComponents(); len(sel) == 1 {
		status += fmt.Sprintf(" | %s (%s)", sel[0].Label, sel[0].Kind)
	} else if len(sel) > 1 {
		status += fmt.Sprintf(" | %d selected", len(sel))
	}

	name := "untitled"
	if m.doc.path != "" {
		name = filepath.Base(m.doc.path)
	}
	if m.doc.dirty {
		name += "*"
	}
	status += " | " + name

	var message string
	switch {
	case m.errorMessage != "":
		message = errorStyle.Render(" | ERROR: " + m.errorMessage)
	case m.successMessage != "":
		message = successStyle.Render(" | " + m.successMessage)
	default:
		status += " | ? for help | q to quit"
	}

	rest := max(width-lipgloss.Width(tool), 0)
	line := statusStyle.Render(status) + message
	return tool + lipgloss.NewStyle().Width(rest).MaxWidth(rest).Background(lipgloss.Color("236")).Render(line)
}

func (m model) fileInputStatus() string {
	var op string
	switch m.fileOp {
	case FileOpSave:
		op = "Save"
	case FileOpSavePNG:
		op = "Export PNG"
	case FileOpSaveTXT:
		op = "Export TXT"
	case FileOpOpen:
		op = "Open"
	}
	status := fmt.Sprintf("FILE | %s filename: %s█ | Enter=confirm, Esc=cancel", op, m.filename)
	if m.errorMessage != "" {
		status += " | ERROR: " + m.errorMessage
	}
	return status
}

func (m model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmQuit:
		return "Quit with unsaved changes? (y/n)"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.pendingPath)
	case ConfirmReload:
		return fmt.Sprintf("%s changed on disk. Reload and lose unsaved changes? (y/n)", filepath.Base(m.pendingPath))
	}
	return ""
}

var helpSections = []struct {
	title string
	lines []string
}{
	{"Tools", []string{
		"v              Select: click to select, drag to move, drag empty space to pan",
		"h              Pan: drag anywhere to move the view",
		"c              Connect: drag from one component onto another",
	}},
	{"Editing", []string{
		"1-9            Drop a palette component under the pointer",
		"Delete/Bksp    Delete selection (connections go with their components)",
		"Ctrl+D         Duplicate selected component",
		"Ctrl+A         Select all components",
		"Arrows         Nudge selection 10 (Shift: 40), or pan when nothing is selected",
		"Ctrl+Z/Ctrl+Y  Undo / redo",
		"Right click    Context menu, then 1-9 to pick",
	}},
	{"Labels", []string{
		"Click label    Edit a labelled connection (double-click a bare one)",
		"F2/Enter       Edit the selected connection's label",
		"Ctrl+V         Paste into the label being edited",
		"Enter/Esc      Save / discard the edit",
	}},
	{"View", []string{
		"+/- or wheel   Zoom in / out",
		"0              Reset zoom and pan",
		"l / e          Toggle labels / connections",
	}},
	{"Files", []string{
		"Ctrl+S         Save scene (YAML)",
		"Ctrl+O         Open a scene (JSON or YAML)",
		"p / t          Export PNG / visual TXT",
		"y              Copy scene YAML to clipboard",
		"q              Quit",
	}},
}

func (m model) helpView(width int) string {
	var b strings.Builder
	b.WriteString(helpTitle.Render("archcanvas help"))
	for _, section := range helpSections {
		b.WriteString("\n\n")
		b.WriteString(helpTitle.Render(section.title))
		for _, line := range section.lines {
			b.WriteString("\n  ")
			b.WriteString(line)
		}
	}
	b.WriteString("\n\n? or Esc to close")

	height := m.height
	if height < 1 {
		height = 1
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpBox.Render(b.String()))
}
