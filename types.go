package main

import (
	"log/slog"

	"archcanvas/internal/editor"
	"archcanvas/internal/hittest"
	"archcanvas/internal/importer"
	"archcanvas/internal/watch"
)

type model struct {
	width  int
	height int

	ctrl   *editor.Controller
	config *Config
	logger *slog.Logger
	doc    *document

	// measurer sizes label pills in PNG exports.
	measurer hittest.TextMeasurer
	importer importer.Options

	// lastMouseX/Y is the last pointer cell, used to place palette drops.
	lastMouseX int
	lastMouseY int
	mouseSeen  bool
	mouseDown  bool

	mode          Mode
	fileOp        FileOperation
	filename      string
	confirmAction ConfirmAction
	// pendingPath is the reloaded or overwritten file awaiting confirmation.
	pendingPath string

	errorMessage   string
	successMessage string
}

// document is the file behind the canvas. It is shared by pointer because
// the controller's change callback outlives any one copy of the model.
type document struct {
	path    string
	dirty   bool
	watcher *watch.FileWatcher
}

// tickMsg redraws the canvas while a drag indicator pulses.
type tickMsg struct{}

// sceneChangedMsg carries a path reported by the file watcher.
type sceneChangedMsg struct {
	path string
}
