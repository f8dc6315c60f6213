package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"archcanvas/internal/editor"
	"archcanvas/internal/hittest"
	"archcanvas/internal/importer"
	"archcanvas/internal/scene"
	"archcanvas/internal/viewport"
	"archcanvas/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
)

func newModel(cfg *Config, logger *slog.Logger, s *scene.Scene, path string) model {
	doc := &document{path: path}
	m := model{
		config:   cfg,
		logger:   logger,
		doc:      doc,
		measurer: hittest.FixedWidthMeasurer{Advance: 7},
		importer: importer.Options{
			Layout:    cfg.layoutOptions(),
			Tolerance: scene.DefaultTolerance,
			Logger:    logger,
		},
	}
	if fm, err := hittest.NewFontMeasurer(cfg.FontSize); err == nil {
		m.measurer = fm
	} else {
		logger.Warn("font unavailable, using fixed-width labels", "error", err)
	}

	m.ctrl = editor.New(s,
		editor.WithLogger(logger),
		editor.WithHistoryLimit(cfg.HistoryLimit),
		editor.WithLayoutOptions(cfg.layoutOptions()),
		editor.WithViewport(viewport.New().WithLimits(cfg.MinZoom, cfg.MaxZoom)),
		editor.WithMeasurer(hittest.FixedWidthMeasurer{Advance: cellAdvance}),
		editor.OnChange(func(*scene.Scene) { doc.dirty = true }),
	)
	return m
}

// watchFile starts reporting rewrites of path. Any earlier watcher stops.
func (m *model) watchFile(path string) tea.Cmd {
	if m.doc.watcher != nil {
		m.doc.watcher.Close()
		m.doc.watcher = nil
	}
	w, err := watch.NewFileWatcher(path, watch.DefaultDebounce, m.logger)
	if err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	w.Start()
	m.doc.watcher = w
	return waitForSceneChange(w)
}

func waitForSceneChange(w *watch.FileWatcher) tea.Cmd {
	return func() tea.Msg {
		path, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return sceneChangedMsg{path: path}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pulseTick, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m model) Init() tea.Cmd {
	if m.doc.watcher != nil {
		return waitForSceneChange(m.doc.watcher)
	}
	return nil
}

func (m model) canvasHeight() int {
	h := m.height - chromeRows
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.ctrl.Mode() == editor.ModeDraggingComponent {
			return m, tick()
		}
		return m, nil

	case sceneChangedMsg:
		var next tea.Cmd
		if m.doc.watcher != nil {
			next = waitForSceneChange(m.doc.watcher)
		}
		if m.mode != ModeNormal {
			m.errorMessage = "Scene file changed on disk"
			return m, next
		}
		if m.doc.dirty && m.config.Confirmations {
			m.askConfirm(ConfirmReload, msg.path)
			return m, next
		}
		m.loadScene(msg.path)
		return m, next

	case tea.MouseMsg:
		if m.mode != ModeNormal {
			return m, nil
		}
		wasDragging := m.ctrl.Mode() == editor.ModeDraggingComponent
		m.handleMouse(msg)
		if !wasDragging && m.ctrl.Mode() == editor.ModeDraggingComponent {
			return m, tick()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			cmd := m.quit()
			return m, cmd
		}
		switch m.mode {
		case ModeFileInput:
			return m.handleFileInput(msg)
		case ModeConfirm:
			return m.handleConfirm(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	m.successMessage = ""

	_, _, editing := m.ctrl.Editing()
	switch msg.Type {
	case tea.KeyCtrlS:
		if m.doc.path != "" {
			m.runFileOp(FileOpSave, m.doc.path)
			return m, nil
		}
		m.startFileInput(FileOpSave, defaultSceneFile)
		return m, nil
	case tea.KeyCtrlO:
		m.startFileInput(FileOpOpen, "")
		return m, nil
	case tea.KeyCtrlV:
		if editing {
			m.pasteIntoLabel()
		}
		return m, nil
	case tea.KeyRunes:
		// Several runes at once is a paste or fast typing.
		if editing && len(msg.Runes) > 1 {
			m.ctrl.InsertText(string(msg.Runes))
			return m, nil
		}
	}

	ev, ok := keyEvent(msg)
	if !ok {
		return m, nil
	}
	if m.ctrl.HandleKey(ev) || m.handlePan(ev) {
		return m, nil
	}
	if ev.Key == editor.KeyRune && !ev.Ctrl && !editing {
		return m.handleCommand(ev.Rune)
	}
	return m, nil
}

// handleCommand runs the front end's own single-key commands, the ones the
// controller does not claim.
func (m model) handleCommand(r rune) (tea.Model, tea.Cmd) {
	switch {
	case r == 'q':
		cmd := m.quit()
		return m, cmd
	case r >= '1' && r <= '9' && int(r-'1') < len(palette):
		m.dropPalette(palette[r-'1'])
	case r == 'p':
		m.startFileInput(FileOpSavePNG, m.exportName(".png"))
	case r == 't':
		m.startFileInput(FileOpSaveTXT, m.exportName(".txt"))
	case r == 'y':
		if err := m.copySceneToClipboard(); err != nil {
			m.errorMessage = fmt.Sprintf("Copy failed: %v", err)
		} else {
			m.successMessage = "Scene copied to clipboard"
		}
	}
	return m, nil
}

// dropPalette places a palette component under the last pointer position,
// or in the middle of the canvas before the mouse has been seen.
func (m *model) dropPalette(p editor.PalettePayload) {
	x, y := m.lastMouseX, m.lastMouseY
	if !m.mouseSeen {
		x, y = m.width/2, m.canvasHeight()/2
	}
	c, err := m.ctrl.Drop(p, cellToScreen(x, y))
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = fmt.Sprintf("Added %s", c.Label)
}

func (m *model) pasteIntoLabel() {
	text, err := readClipboardText()
	if err != nil {
		m.errorMessage = fmt.Sprintf("Paste failed: %v", err)
		return
	}
	m.ctrl.InsertText(labelFromClipboard(text))
}

func (m model) exportName(ext string) string {
	base := defaultSceneFile
	if m.doc.path != "" {
		base = filepath.Base(m.doc.path)
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func (m *model) startFileInput(op FileOperation, filename string) {
	m.ctrl.Blur()
	m.ctrl.Escape()
	m.ctrl.SetInputFocus(true)
	m.mode = ModeFileInput
	m.fileOp = op
	m.filename = filename
	m.errorMessage = ""
}

func (m *model) leaveInput() {
	m.ctrl.SetInputFocus(false)
	m.mode = ModeNormal
	m.filename = ""
	m.pendingPath = ""
}

func (m model) handleFileInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.leaveInput()
	case tea.KeyEnter:
		name := strings.TrimSpace(m.filename)
		if name == "" {
			m.errorMessage = "Filename required"
			return m, nil
		}
		path := m.config.GetSavePath(name)
		if m.fileOp == FileOpOpen {
			path = name
		}
		if m.fileOp != FileOpOpen && path != m.doc.path && m.config.Confirmations {
			if _, err := os.Stat(path); err == nil {
				m.askConfirm(ConfirmOverwriteFile, path)
				return m, nil
			}
		}
		cmd := m.runFileOp(m.fileOp, path)
		return m, cmd
	case tea.KeyBackspace:
		if r := []rune(m.filename); len(r) > 0 {
			m.filename = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.filename += " "
	case tea.KeyRunes:
		m.filename += string(msg.Runes)
	}
	return m, nil
}

func (m *model) askConfirm(action ConfirmAction, path string) {
	m.ctrl.SetInputFocus(true)
	m.mode = ModeConfirm
	m.confirmAction = action
	m.pendingPath = path
}

func (m model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	answer := strings.ToLower(msg.String())
	if answer != "y" && answer != "n" && msg.Type != tea.KeyEscape {
		return m, nil
	}
	action, path := m.confirmAction, m.pendingPath
	m.leaveInput()
	if answer != "y" {
		return m, nil
	}
	switch action {
	case ConfirmQuit:
		m.closeWatcher()
		return m, tea.Quit
	case ConfirmOverwriteFile:
		cmd := m.runFileOp(m.fileOp, path)
		return m, cmd
	case ConfirmReload:
		m.loadScene(path)
	}
	return m, nil
}

// runFileOp performs op on path and leaves file input. Opening a file
// starts watching it when watching is on.
func (m *model) runFileOp(op FileOperation, path string) tea.Cmd {
	m.leaveInput()

	var err error
	switch op {
	case FileOpSave:
		err = m.saveScene(path)
	case FileOpSavePNG:
		err = m.exportPNG(path)
	case FileOpSaveTXT:
		err = m.exportVisualTXT(path)
	case FileOpOpen:
		if !m.loadScene(path) {
			return nil
		}
		if m.doc.watcher != nil {
			return m.watchFile(path)
		}
		return nil
	}
	if err != nil {
		m.errorMessage = err.Error()
		m.logger.Error("file operation failed", "path", path, "error", err)
		return nil
	}
	m.successMessage = fmt.Sprintf("Saved %s", path)
	return nil
}

// loadScene replaces the canvas with the document at path.
func (m *model) loadScene(path string) bool {
	s, report, err := importer.LoadFile(path, m.importer)
	if err != nil {
		m.errorMessage = err.Error()
		m.logger.Error("load failed", "path", path, "error", err)
		return false
	}
	m.ctrl.LoadScene(s)
	m.doc.path = path
	m.doc.dirty = false
	m.successMessage = loadSummary(s, report)
	return true
}

func loadSummary(s *scene.Scene, report importer.Report) string {
	summary := fmt.Sprintf("Loaded %d components, %d connections", len(s.Components), len(s.Connections))
	if n := len(report.Dangling) + len(report.SelfLoops) + len(report.Rejected); n > 0 {
		summary += fmt.Sprintf(" (%d repaired or skipped)", n)
	}
	return summary
}

func (m *model) quit() tea.Cmd {
	if m.doc.dirty && m.config.Confirmations && m.mode == ModeNormal {
		m.askConfirm(ConfirmQuit, "")
		return nil
	}
	m.closeWatcher()
	return tea.Quit
}

func (m *model) closeWatcher() {
	if m.doc.watcher == nil {
		return
	}
	if err := m.doc.watcher.Close(); err != nil {
		m.logger.Warn("closing watcher", "error", err)
	}
	m.doc.watcher = nil
}
