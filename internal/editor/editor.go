// Package editor is the interaction controller: a toolkit-independent state
// machine that turns pointer, keyboard, wheel and drop events into scene
// mutations, history entries and viewport changes.
//
// The controller owns its scene, history and viewport. Every structural or
// positional change goes through commit, which records the pre-mutation
// snapshot only when the mutation succeeds.
package editor

import (
	"io"
	"log/slog"
	"time"

	"archcanvas/internal/geom"
	"archcanvas/internal/history"
	"archcanvas/internal/hittest"
	"archcanvas/internal/layout"
	"archcanvas/internal/scene"
	"archcanvas/internal/viewport"
)

type Tool int

const (
	ToolSelect Tool = iota
	ToolPan
	ToolConnect
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolPan:
		return "pan"
	case ToolConnect:
		return "connect"
	}
	return "unknown"
}

// Mode is the transient interaction state layered on top of the tool.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDraggingComponent
	ModeDraggingCanvas
	ModeConnecting
	ModeEditingLabel
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDraggingComponent:
		return "dragging-component"
	case ModeDraggingCanvas:
		return "dragging-canvas"
	case ModeConnecting:
		return "connecting"
	case ModeEditingLabel:
		return "editing-label"
	}
	return "unknown"
}

const (
	DoubleClickWindow = 500 * time.Millisecond
	DuplicateOffset   = 20
	NudgeStep         = 10
	NudgeStepLarge    = 40

	DefaultConnectionLabel = "Data Flow"
)

type Controller struct {
	scene   *scene.Scene
	history *history.Manager
	view    *viewport.Viewport
	picker  *hittest.Picker
	layout  layout.Options

	logger   *slog.Logger
	now      func() time.Time
	onChange func(*scene.Scene)

	tool Tool
	mode Mode

	// dragging-component
	dragID        string
	dragOffset    geom.Point
	dragStart     scene.Snapshot
	dragMoved     bool
	dragStartedAt time.Time
	guides        []layout.Guide

	// dragging-canvas
	lastScreen geom.Point

	// connecting
	pendingFrom   string
	pendingAnchor geom.Point
	pointer       geom.Point

	// editing-label
	editingID  string
	editBuffer []rune

	lastClickID string
	lastClickAt time.Time

	inputFocused    bool
	helpOpen        bool
	menu            ContextMenu
	hoverComponent  string
	hoverConnection string
	showLabels      bool
	showConnections bool
}

type Option func(*Controller)

// WithClock replaces time.Now, used for double-click detection.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithHistoryLimit(limit int) Option {
	return func(c *Controller) {
		c.history = history.New(limit)
	}
}

func WithLayoutOptions(opts layout.Options) Option {
	return func(c *Controller) {
		c.layout = opts
	}
}

func WithViewport(v *viewport.Viewport) Option {
	return func(c *Controller) {
		if v != nil {
			c.view = v
		}
	}
}

func WithMeasurer(m hittest.TextMeasurer) Option {
	return func(c *Controller) {
		if m != nil {
			c.picker = hittest.NewPicker(m)
		}
	}
}

// OnChange registers fn to run after every committed scene mutation,
// including undo, redo and scene loads.
func OnChange(fn func(*scene.Scene)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// New returns a controller owning s. A nil scene starts empty.
func New(s *scene.Scene, opts ...Option) *Controller {
	if s == nil {
		s = scene.New()
	}
	c := &Controller{
		scene:           s,
		history:         history.New(history.DefaultLimit),
		view:            viewport.New(),
		picker:          hittest.NewPicker(hittest.FixedWidthMeasurer{Advance: 7}),
		layout:          layout.DefaultOptions(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:             time.Now,
		showLabels:      true,
		showConnections: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Scene() *scene.Scene {
	return c.scene
}

func (c *Controller) Viewport() *viewport.Viewport {
	return c.view
}

func (c *Controller) History() *history.Manager {
	return c.history
}

func (c *Controller) Picker() *hittest.Picker {
	return c.picker
}

func (c *Controller) Tool() Tool {
	return c.tool
}

func (c *Controller) Mode() Mode {
	return c.mode
}

// Guides are the alignment lines of the current drag frame.
func (c *Controller) Guides() []layout.Guide {
	return c.guides
}

// DragStartedAt is zero unless a component drag is in progress.
func (c *Controller) DragStartedAt() time.Time {
	if c.mode != ModeDraggingComponent {
		return time.Time{}
	}
	return c.dragStartedAt
}

// Preview is the pending connection while connecting.
type Preview struct {
	FromID string
	From   geom.Point
	To     geom.Point
}

func (c *Controller) Preview() (Preview, bool) {
	if c.mode != ModeConnecting {
		return Preview{}, false
	}
	return Preview{FromID: c.pendingFrom, From: c.pendingAnchor, To: c.pointer}, true
}

// Editing returns the connection being relabelled and the edit buffer.
func (c *Controller) Editing() (id, buffer string, ok bool) {
	if c.mode != ModeEditingLabel {
		return "", "", false
	}
	return c.editingID, string(c.editBuffer), true
}

func (c *Controller) HelpOpen() bool {
	return c.helpOpen
}

func (c *Controller) Menu() ContextMenu {
	return c.menu
}

// Hover returns the ids under the pointer after the last move.
func (c *Controller) Hover() (componentID, connectionID string) {
	return c.hoverComponent, c.hoverConnection
}

func (c *Controller) ShowLabels() bool {
	return c.showLabels
}

func (c *Controller) ShowConnections() bool {
	return c.showConnections
}

// SetInputFocus tells the controller an external text field holds focus,
// which disables the canvas shortcuts.
func (c *Controller) SetInputFocus(focused bool) {
	c.inputFocused = focused
}

func (c *Controller) SetTool(t Tool) {
	if c.mode == ModeConnecting {
		c.cancelPending()
	}
	if t != c.tool {
		c.logger.Debug("tool changed", "from", c.tool, "to", t)
	}
	c.tool = t
}

func (c *Controller) setMode(m Mode) {
	if m != c.mode {
		c.logger.Debug("mode changed", "from", c.mode, "to", m)
	}
	c.mode = m
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.scene)
	}
}

// commit runs mutate and, when it succeeds, records the scene as it was
// before the call.
func (c *Controller) commit(mutate func() error) error {
	before := c.scene.Snapshot()
	if err := mutate(); err != nil {
		return err
	}
	c.history.Record(before)
	c.notify()
	return nil
}

func (c *Controller) cancelPending() {
	c.pendingFrom = ""
	c.pendingAnchor = geom.Point{}
	if c.mode == ModeConnecting {
		c.setMode(ModeIdle)
	}
}

func (c *Controller) selectedComponent() (scene.Component, bool) {
	for _, comp := range c.scene.Components {
		if comp.Selected {
			return comp, true
		}
	}
	return scene.Component{}, false
}

func (c *Controller) selectedConnection() (scene.Connection, bool) {
	for _, conn := range c.scene.Connections {
		if conn.Selected {
			return conn, true
		}
	}
	return scene.Connection{}, false
}
