package main

import (
	"fmt"
	"os"
	"strings"

	"archcanvas/internal/hittest"
	"archcanvas/internal/importer"
	"archcanvas/internal/render"
	"archcanvas/internal/scene"
	"archcanvas/internal/viewport"

	"github.com/atotto/clipboard"
)

// exportVisualTXT writes the canvas exactly as it appears, without
// selection, hover or any interaction in progress.
func (m *model) exportVisualTXT(filename string) error {
	width := m.width
	if width < 1 {
		width = 80
	}
	height := m.canvasHeight()
	if height < 1 {
		height = 24
	}
	return writeVisualTXT(filename, m.ctrl.Scene(), m.ctrl.Viewport(), m.ctrl.Picker(), width, height)
}

func writeVisualTXT(filename string, s *scene.Scene, view *viewport.Viewport, picker *hittest.Picker, width, height int) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	plain := s.Clone()
	plain.ClearSelection()
	for _, line := range render.Render(render.StaticFrame(plain, view, picker), width, height).Plain() {
		fmt.Fprintln(file, strings.TrimRight(line, " "))
	}
	return nil
}

// fitView returns a viewport showing the whole scene from its top-left
// corner, with the cell size the canvas needs to hold it.
func fitView(s *scene.Scene) (*viewport.Viewport, int, int) {
	view := viewport.New()
	bounds, ok := s.Bounds()
	if !ok {
		return view, 1, 1
	}
	bounds = bounds.Grow(2 * render.CellWidth)
	view.PanBy(-bounds.X, -bounds.Y)
	width := int(bounds.W/render.CellWidth) + 1
	height := int(bounds.H/render.CellHeight) + 1
	return view, width, height
}

func (m *model) exportPNG(filename string) error {
	opts := render.DefaultPNGOptions()
	opts.FontSize = m.config.FontSize
	return render.ExportPNG(filename, m.ctrl.Scene(), hittest.NewPicker(m.measurer), opts)
}

func (m *model) saveScene(filename string) error {
	if err := importer.SaveFile(filename, m.ctrl.Scene()); err != nil {
		return err
	}
	m.doc.path = filename
	m.doc.dirty = false
	return nil
}

func (m *model) copySceneToClipboard() error {
	text, err := importer.Marshal(importer.FromScene(m.ctrl.Scene()))
	if err != nil {
		return err
	}
	return clipboard.WriteAll(text)
}
