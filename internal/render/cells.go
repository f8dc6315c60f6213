package render

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"archcanvas/internal/geom"
	"archcanvas/internal/layout"
	"archcanvas/internal/scene"
)

// One terminal cell covers CellWidth x CellHeight screen pixels.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

type Style int

const (
	StyleNone Style = iota
	StyleSelected
	StyleHover
	StyleGuide
	StylePreview
	StyleEditing
	StyleDangling
	StyleDatabase
	StyleApplication
	StyleInfrastructure
	StyleService
)

// ANSI foreground codes per style.
var styleCodes = map[Style]int{
	StyleSelected:       31,
	StyleHover:          35,
	StyleGuide:          36,
	StylePreview:        33,
	StyleEditing:        35,
	StyleDangling:       90,
	StyleDatabase:       34,
	StyleApplication:    32,
	StyleInfrastructure: 33,
	StyleService:        35,
}

const colorReset = "\x1b[0m"

func categoryStyle(category string) Style {
	switch category {
	case "database":
		return StyleDatabase
	case "application":
		return StyleApplication
	case "infrastructure":
		return StyleInfrastructure
	case "service":
		return StyleService
	}
	return StyleNone
}

// Grid is a width x height block of styled cells.
type Grid struct {
	cells  [][]rune
	styles [][]Style
}

func NewGrid(width, height int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g := &Grid{cells: make([][]rune, height), styles: make([][]Style, height)}
	for y := range g.cells {
		g.cells[y] = make([]rune, width)
		g.styles[y] = make([]Style, width)
		for x := range g.cells[y] {
			g.cells[y][x] = ' '
		}
	}
	return g
}

func (g *Grid) Width() int {
	return len(g.cells[0])
}

func (g *Grid) Height() int {
	return len(g.cells)
}

func (g *Grid) inside(x, y int) bool {
	return y >= 0 && y < len(g.cells) && x >= 0 && x < len(g.cells[y])
}

func (g *Grid) Set(x, y int, r rune, s Style) {
	if g.inside(x, y) {
		g.cells[y][x] = r
		g.styles[y][x] = s
	}
}

func (g *Grid) At(x, y int) (rune, Style) {
	if !g.inside(x, y) {
		return 0, StyleNone
	}
	return g.cells[y][x], g.styles[y][x]
}

func (g *Grid) text(x, y int, s string, style Style) {
	i := 0
	for _, r := range s {
		g.Set(x+i, y, r, style)
		i++
	}
}

// Plain returns the rows without color.
func (g *Grid) Plain() []string {
	out := make([]string, len(g.cells))
	for y, row := range g.cells {
		out[y] = string(row)
	}
	return out
}

// Lines returns the rows with ANSI colors applied.
func (g *Grid) Lines() []string {
	out := make([]string, len(g.cells))
	for y, row := range g.cells {
		var b strings.Builder
		current := StyleNone
		for x, r := range row {
			s := g.styles[y][x]
			if s != current {
				if current != StyleNone {
					b.WriteString(colorReset)
				}
				if code, ok := styleCodes[s]; ok {
					fmt.Fprintf(&b, "\x1b[%dm", code)
				}
				current = s
			}
			b.WriteRune(r)
		}
		if current != StyleNone {
			b.WriteString(colorReset)
		}
		out[y] = b.String()
	}
	return out
}

// cellOf maps a world point to the terminal cell under it.
func (f Frame) cellOf(p geom.Point) (int, int) {
	s := f.View.WorldToScreen(p)
	return int(math.Floor(s.X / CellWidth)), int(math.Floor(s.Y / CellHeight))
}

// Render rasterizes f into a width x height grid. Connections go first so
// components sit on top of them; labels, guides and the preview follow.
func Render(f Frame, width, height int) *Grid {
	g := NewGrid(width, height)

	if f.ShowConnections {
		for _, c := range f.Scene.Connections {
			style := StyleNone
			switch {
			case c.Selected:
				style = StyleSelected
			case c.ID == f.HoverConnection:
				style = StyleHover
			case c.From.ComponentID == "" || c.To.ComponentID == "":
				style = StyleDangling
			}
			f.drawCurve(g, c.From.Point, c.To.Point, f.endBoxes(c), style, true)
		}
	}

	for _, guide := range f.Guides {
		f.drawGuide(g, guide)
	}

	for _, c := range f.Scene.Components {
		f.drawComponent(g, c)
	}

	if f.ShowConnections {
		for _, c := range f.Scene.Connections {
			f.drawLabel(g, c)
		}
	}

	if f.Preview != nil {
		var boxes []geom.Rect
		if comp, ok := f.Scene.Component(f.Preview.FromID); ok {
			boxes = append(boxes, comp.Bounds())
		}
		f.drawCurve(g, f.Preview.From, f.Preview.To, boxes, StylePreview, false)
	}
	return g
}

func (f Frame) drawComponent(g *Grid, c scene.Component) {
	x0, y0 := f.cellOf(c.Bounds().Min())
	x1, y1 := f.cellOf(c.Bounds().Max())
	if x1 < x0+2 {
		x1 = x0 + 2
	}
	if y1 < y0+2 {
		y1 = y0 + 2
	}

	var corner, horizontal, vertical rune
	style := categoryStyle(c.Category)
	switch {
	case c.Selected:
		corner, horizontal, vertical = '#', '#', '#'
		style = StyleSelected
		if f.Dragging && f.Pulse < 0.5 {
			corner, horizontal, vertical = '+', '=', '!'
		}
	case c.ID == f.HoverComponent:
		corner, horizontal, vertical = '+', '-', '|'
		style = StyleHover
	default:
		corner, horizontal, vertical = '+', '-', '|'
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			switch {
			case (y == y0 || y == y1) && (x == x0 || x == x1):
				g.Set(x, y, corner, style)
			case y == y0 || y == y1:
				g.Set(x, y, horizontal, style)
			case x == x0 || x == x1:
				g.Set(x, y, vertical, style)
			default:
				g.Set(x, y, ' ', StyleNone)
			}
		}
	}

	inner := x1 - x0 - 1
	lines := []string{c.Label}
	if c.Kind != "" && c.Kind != c.Label {
		lines = append(lines, "("+c.Kind+")")
	}
	for i, line := range lines {
		y := y0 + 1 + i
		if y >= y1 {
			break
		}
		line = truncate(line, inner)
		pad := (inner - utf8.RuneCountInString(line)) / 2
		g.text(x0+1+pad, y, line, StyleNone)
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// drawCurve samples the connection's Bezier and picks a line character
// from the local direction. Samples inside clip boxes are skipped.
func (f Frame) drawCurve(g *Grid, from, to geom.Point, clip []geom.Rect, style Style, arrow bool) {
	c1, c2 := geom.BezierControlPoints(from, to)

	fx, fy := f.cellOf(from)
	tx, ty := f.cellOf(to)
	steps := 4 * (abs(tx-fx) + abs(ty-fy))
	if steps < 8 {
		steps = 8
	}

	lastX, lastY, lastSet := 0, 0, false
	var lastDir geom.Point
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := geom.CubicBezier(from, c1, c2, to, t)
		if insideAny(p, clip) {
			continue
		}
		x, y := f.cellOf(p)
		dir := bezierTangent(from, c1, c2, to, t)
		if !lastSet || x != lastX || y != lastY {
			g.Set(x, y, lineRune(dir), style)
		}
		lastX, lastY, lastSet, lastDir = x, y, true, dir
	}

	if arrow && lastSet {
		g.Set(lastX, lastY, arrowRune(lastDir), style)
	}
}

func insideAny(p geom.Point, boxes []geom.Rect) bool {
	for _, b := range boxes {
		if b.Contains(p) {
			return true
		}
	}
	return false
}

func bezierTangent(p0, c1, c2, p3 geom.Point, t float64) geom.Point {
	u := 1 - t
	a := 3 * u * u
	b := 6 * u * t
	c := 3 * t * t
	return geom.Point{
		X: a*(c1.X-p0.X) + b*(c2.X-c1.X) + c*(p3.X-c2.X),
		Y: a*(c1.Y-p0.Y) + b*(c2.Y-c1.Y) + c*(p3.Y-c2.Y),
	}
}

// lineRune works in cell units, where a cell is twice as tall as wide.
func lineRune(dir geom.Point) rune {
	dx := dir.X / CellWidth
	dy := dir.Y / CellHeight
	switch {
	case math.Abs(dx) >= 2*math.Abs(dy):
		return '-'
	case math.Abs(dy) >= 2*math.Abs(dx):
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

func arrowRune(dir geom.Point) rune {
	dx := dir.X / CellWidth
	dy := dir.Y / CellHeight
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return '<'
		}
		return '>'
	}
	if dy < 0 {
		return '^'
	}
	return 'v'
}

func (f Frame) drawGuide(g *Grid, guide layout.Guide) {
	switch guide.Orientation {
	case layout.Vertical:
		x, y0 := f.cellOf(geom.Pt(guide.Position, guide.From))
		_, y1 := f.cellOf(geom.Pt(guide.Position, guide.To))
		for y := y0; y <= y1; y++ {
			g.Set(x, y, ':', StyleGuide)
		}
	case layout.Horizontal:
		x0, y := f.cellOf(geom.Pt(guide.From, guide.Position))
		x1, _ := f.cellOf(geom.Pt(guide.To, guide.Position))
		for x := x0; x <= x1; x++ {
			g.Set(x, y, '.', StyleGuide)
		}
	}
}

// drawLabel writes "[ text ]" centered on the label anchor, with a block
// cursor while the label is being edited.
func (f Frame) drawLabel(g *Grid, c scene.Connection) {
	text, ok := f.labelText(c)
	if !ok {
		return
	}
	style := StyleNone
	switch {
	case c.ID == f.EditingID:
		text += "█"
		style = StyleEditing
	case c.Selected:
		style = StyleSelected
	case c.ID == f.HoverConnection:
		style = StyleHover
	}

	pill := "[ " + text + " ]"
	x, y := f.cellOf(f.Picker.LabelPosition(f.Scene, c))
	g.text(x-utf8.RuneCountInString(pill)/2, y, pill, style)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
