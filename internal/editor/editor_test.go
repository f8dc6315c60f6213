package editor

import (
	"testing"
	"time"

	"archcanvas/internal/geom"
	"archcanvas/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.t = f.t.Add(d)
}

type fixture struct {
	ctrl  *Controller
	clock *fakeClock
	a, b  scene.Component
}

// newFixture places A at (100,100) and B at (400,100), both 120x80. The
// viewport starts at identity so screen and world points coincide.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	s := scene.New(scene.WithIDGenerator(scene.SequentialIDs()))
	a, err := s.AddComponent(scene.Component{Kind: "api", Label: "A", X: 100, Y: 100, Width: 120, Height: 80})
	require.NoError(t, err)
	b, err := s.AddComponent(scene.Component{Kind: "database", Label: "B", X: 400, Y: 100, Width: 120, Height: 80})
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return &fixture{ctrl: New(s, opts...), clock: clock, a: a, b: b}
}

func (f *fixture) connect(t *testing.T, label string) scene.Connection {
	t.Helper()
	conn, err := f.ctrl.Scene().AddConnection(f.a.ID, f.b.ID, scene.ConnectionAttrs{Label: label})
	require.NoError(t, err)
	return conn
}

func (f *fixture) click(x, y float64) {
	f.ctrl.HandlePointerDown(PointerEvent{Screen: geom.Pt(x, y)})
	f.ctrl.HandlePointerUp(PointerEvent{Screen: geom.Pt(x, y)})
}

func (f *fixture) drag(from, to geom.Point) {
	f.ctrl.HandlePointerDown(PointerEvent{Screen: from})
	f.ctrl.HandlePointerMove(PointerEvent{Screen: to})
	f.ctrl.HandlePointerUp(PointerEvent{Screen: to})
}

func (f *fixture) typeText(text string) {
	for _, r := range text {
		f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: r})
	}
}

func (f *fixture) component(t *testing.T, id string) scene.Component {
	t.Helper()
	c, ok := f.ctrl.Scene().Component(id)
	require.True(t, ok, "component %s", id)
	return c
}

func TestLabelEditCommit(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t, "")

	f.click(300, 140)
	got, _ := f.ctrl.Scene().Connection(conn.ID)
	require.True(t, got.Selected)
	assert.Equal(t, ModeIdle, f.ctrl.Mode(), "a single click on a bare line only selects")

	require.True(t, f.ctrl.HandleKey(KeyEvent{Key: KeyF2}))
	id, buf, ok := f.ctrl.Editing()
	require.True(t, ok)
	assert.Equal(t, conn.ID, id)
	assert.Empty(t, buf)

	f.typeText("Sync Call")
	f.ctrl.HandleKey(KeyEvent{Key: KeyEnter})

	got, _ = f.ctrl.Scene().Connection(conn.ID)
	assert.Equal(t, "Sync Call", got.Label)
	assert.Equal(t, 1, f.ctrl.History().Len())
	assert.Equal(t, ModeIdle, f.ctrl.Mode())
}

func TestLabelledConnectionEditsOnSingleClick(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t, "Data Flow")

	f.ctrl.HandlePointerDown(PointerEvent{Screen: geom.Pt(310, 140)})

	id, buf, ok := f.ctrl.Editing()
	require.True(t, ok)
	assert.Equal(t, conn.ID, id)
	assert.Equal(t, "Data Flow", buf)
}

func TestUnlabelledConnectionNeedsDoubleClick(t *testing.T) {
	f := newFixture(t)
	f.connect(t, "")

	f.click(300, 140)
	f.clock.Advance(600 * time.Millisecond)
	f.click(300, 140)
	assert.NotEqual(t, ModeEditingLabel, f.ctrl.Mode(), "second click came too late")

	f.clock.Advance(200 * time.Millisecond)
	f.click(300, 140)
	assert.Equal(t, ModeEditingLabel, f.ctrl.Mode())
}

func TestDoubleClickBrokenByOtherPress(t *testing.T) {
	f := newFixture(t)
	f.connect(t, "")

	f.click(300, 140)
	f.click(420, 120)
	f.click(300, 140)
	assert.NotEqual(t, ModeEditingLabel, f.ctrl.Mode(), "press on B sits between the two clicks")

	f.click(300, 140)
	assert.Equal(t, ModeEditingLabel, f.ctrl.Mode())
}

func TestLabelEditEscapeAndBlur(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t, "old")

	f.ctrl.HandlePointerDown(PointerEvent{Screen: geom.Pt(310, 140)})
	f.ctrl.HandleKey(KeyEvent{Key: KeyBackspace})
	f.typeText("X")
	f.ctrl.HandleKey(KeyEvent{Key: KeyEscape})

	got, _ := f.ctrl.Scene().Connection(conn.ID)
	assert.Equal(t, "old", got.Label)
	assert.Equal(t, 0, f.ctrl.History().Len())

	f.ctrl.HandlePointerDown(PointerEvent{Screen: geom.Pt(310, 140)})
	f.ctrl.InsertText(" new")
	f.ctrl.Blur()

	got, _ = f.ctrl.Scene().Connection(conn.ID)
	assert.Equal(t, "old new", got.Label)
	assert.Equal(t, 1, f.ctrl.History().Len())
}

func TestUnchangedLabelRecordsNothing(t *testing.T) {
	f := newFixture(t)
	f.connect(t, "same")

	f.ctrl.HandlePointerDown(PointerEvent{Screen: geom.Pt(310, 140)})
	f.ctrl.HandleKey(KeyEvent{Key: KeyEnter})

	assert.Equal(t, 0, f.ctrl.History().Len())
}

func TestDragIsOneUndoStep(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t, "")

	f.ctrl.HandlePointerDown(PointerEvent{Screen: geom.Pt(120, 120)})
	assert.Equal(t, ModeDraggingComponent, f.ctrl.Mode())
	assert.False(t, f.ctrl.DragStartedAt().IsZero())
	f.ctrl.HandlePointerMove(PointerEvent{Screen: geom.Pt(120, 220)})
	f.ctrl.HandlePointerMove(PointerEvent{Screen: geom.Pt(120, 420)})
	f.ctrl.HandlePointerUp(PointerEvent{Screen: geom.Pt(120, 420)})

	a := f.component(t, f.a.ID)
	assert.Equal(t, geom.Pt(100, 400), a.Bounds().Min())
	got, _ := f.ctrl.Scene().Connection(conn.ID)
	assert.Equal(t, a.Center(), got.From.Point)
	assert.Equal(t, 1, f.ctrl.History().Len())

	require.True(t, f.ctrl.Undo())
	assert.Equal(t, geom.Pt(100, 100), f.component(t, f.a.ID).Bounds().Min())
	assert.Empty(t, f.ctrl.Scene().SelectedComponents(), "undo clears selection")
}

func TestDragBackToStartRecordsNothing(t *testing.T) {
	f := newFixture(t)

	f.ctrl.HandlePointerDown(PointerEvent{Screen: geom.Pt(120, 120)})
	f.ctrl.HandlePointerMove(PointerEvent{Screen: geom.Pt(120, 320)})
	require.Equal(t, geom.Pt(100, 300), f.component(t, f.a.ID).Bounds().Min())
	f.ctrl.HandlePointerMove(PointerEvent{Screen: geom.Pt(120, 120)})
	f.ctrl.HandlePointerUp(PointerEvent{Screen: geom.Pt(120, 120)})

	assert.Equal(t, geom.Pt(100, 100), f.component(t, f.a.ID).Bounds().Min())
	assert.Equal(t, 0, f.ctrl.History().Len())
}

func TestDragRejectsCollision(t *testing.T) {
	f := newFixture(t)

	f.drag(geom.Pt(120, 120), geom.Pt(350, 120))

	assert.Equal(t, geom.Pt(100, 100), f.component(t, f.a.ID).Bounds().Min())
	assert.Equal(t, 0, f.ctrl.History().Len(), "a drag that never moved records nothing")
}

func TestDragSnapsAndReportsGuides(t *testing.T) {
	f := newFixture(t)

	f.ctrl.HandlePointerDown(PointerEvent{Screen: geom.Pt(120, 120)})
	// wants (406, 400): 6 from B's left edge
	f.ctrl.HandlePointerMove(PointerEvent{Screen: geom.Pt(426, 420)})

	assert.Equal(t, geom.Pt(400, 400), f.component(t, f.a.ID).Bounds().Min())
	require.NotEmpty(t, f.ctrl.Guides())

	f.ctrl.HandlePointerUp(PointerEvent{Screen: geom.Pt(426, 420)})
	assert.Empty(t, f.ctrl.Guides())
}

func TestConnectTool(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: 'c'}))
	assert.Equal(t, ToolConnect, f.ctrl.Tool())

	f.ctrl.HandlePointerDown(PointerEvent{Screen: geom.Pt(160, 140)})
	f.ctrl.HandlePointerMove(PointerEvent{Screen: geom.Pt(300, 200)})
	p, ok := f.ctrl.Preview()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(160, 140), p.From)
	assert.Equal(t, geom.Pt(300, 200), p.To)

	f.ctrl.HandlePointerUp(PointerEvent{Screen: geom.Pt(460, 140)})

	conns := f.ctrl.Scene().Connections
	require.Len(t, conns, 1)
	assert.Equal(t, f.a.ID, conns[0].From.ComponentID)
	assert.Equal(t, f.b.ID, conns[0].To.ComponentID)
	assert.Equal(t, "data", conns[0].Kind)
	assert.Equal(t, DefaultConnectionLabel, conns[0].Label)
	assert.Equal(t, ToolSelect, f.ctrl.Tool())
	assert.Equal(t, 1, f.ctrl.History().Len())
}

func TestConnectAbandoned(t *testing.T) {
	tests := []struct {
		name string
		up   geom.Point
	}{
		{"empty space", geom.Pt(300, 500)},
		{"same component", geom.Pt(150, 150)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.ctrl.SetTool(ToolConnect)

			f.ctrl.HandlePointerDown(PointerEvent{Screen: geom.Pt(160, 140)})
			f.ctrl.HandlePointerUp(PointerEvent{Screen: tt.up})

			assert.Empty(t, f.ctrl.Scene().Connections)
			assert.Equal(t, 0, f.ctrl.History().Len())
			assert.Equal(t, ToolSelect, f.ctrl.Tool())
			_, ok := f.ctrl.Preview()
			assert.False(t, ok)
		})
	}
}

func TestDeleteAndUndo(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t, "")

	f.click(120, 120)
	require.True(t, f.ctrl.HandleKey(KeyEvent{Key: KeyDelete}))

	s := f.ctrl.Scene()
	require.Len(t, s.Components, 1)
	assert.Equal(t, f.b.ID, s.Components[0].ID)
	assert.Empty(t, s.Connections)

	require.True(t, f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: 'z', Ctrl: true}))
	assert.Len(t, s.Components, 2)
	restored, ok := s.Connection(conn.ID)
	require.True(t, ok)
	assert.Equal(t, geom.Pt(160, 140), restored.From.Point)

	require.True(t, f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: 'z', Ctrl: true, Shift: true}))
	assert.Len(t, s.Components, 1)
	require.True(t, f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: 'z', Ctrl: true}))
	require.True(t, f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: 'y', Ctrl: true}))
	assert.Len(t, s.Components, 1)
}

func TestDeleteSelectedConnection(t *testing.T) {
	f := newFixture(t)
	f.connect(t, "")

	f.click(300, 140)
	f.ctrl.HandleKey(KeyEvent{Key: KeyBackspace})

	assert.Empty(t, f.ctrl.Scene().Connections)
	assert.Len(t, f.ctrl.Scene().Components, 2)
}

func TestDuplicate(t *testing.T) {
	f := newFixture(t)

	f.click(120, 120)
	require.True(t, f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: 'd', Ctrl: true}))

	s := f.ctrl.Scene()
	require.Len(t, s.Components, 3)
	dup := s.Components[2]
	assert.NotEqual(t, f.a.ID, dup.ID)
	assert.Equal(t, geom.Pt(120, 120), dup.Bounds().Min())
	assert.Equal(t, "A", dup.Label)
	assert.True(t, dup.Selected)
	assert.False(t, f.component(t, f.a.ID).Selected)
	assert.Equal(t, 1, f.ctrl.History().Len())
}

func TestSelectAllRecordsNothing(t *testing.T) {
	f := newFixture(t)

	f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: 'a', Ctrl: true})

	assert.Len(t, f.ctrl.Scene().SelectedComponents(), 2)
	assert.Equal(t, 0, f.ctrl.History().Len())
}

func TestNudge(t *testing.T) {
	f := newFixture(t)
	f.click(120, 120)

	f.ctrl.HandleKey(KeyEvent{Key: KeyDown})
	f.ctrl.HandleKey(KeyEvent{Key: KeyLeft, Shift: true})

	assert.Equal(t, geom.Pt(60, 110), f.component(t, f.a.ID).Bounds().Min())
	assert.Equal(t, 2, f.ctrl.History().Len(), "one entry per key press")
}

func TestNudgeRejectsCollision(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Scene().MoveComponent(f.a.ID, 220, 100))
	f.click(240, 120)

	f.ctrl.HandleKey(KeyEvent{Key: KeyRight})

	assert.Equal(t, geom.Pt(220, 100), f.component(t, f.a.ID).Bounds().Min())
	assert.Equal(t, 0, f.ctrl.History().Len())
}

func TestEscapeResets(t *testing.T) {
	f := newFixture(t)
	f.click(120, 120)
	f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: '?'})
	f.ctrl.SetTool(ToolPan)
	require.True(t, f.ctrl.HelpOpen())

	f.ctrl.HandleKey(KeyEvent{Key: KeyEscape})

	assert.Empty(t, f.ctrl.Scene().SelectedComponents())
	assert.Equal(t, ToolSelect, f.ctrl.Tool())
	assert.False(t, f.ctrl.HelpOpen())
}

func TestShortcutsIgnoredWhileInputFocused(t *testing.T) {
	f := newFixture(t)
	f.click(120, 120)
	f.ctrl.SetInputFocus(true)

	assert.False(t, f.ctrl.HandleKey(KeyEvent{Key: KeyDelete}))
	assert.False(t, f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: 'h'}))
	assert.Len(t, f.ctrl.Scene().Components, 2)
	assert.Equal(t, ToolSelect, f.ctrl.Tool())
}

func TestToolKeysIgnoredWhileEditing(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t, "")
	f.click(300, 140)
	f.ctrl.HandleKey(KeyEvent{Key: KeyEnter})

	f.typeText("vhc")
	f.ctrl.HandleKey(KeyEvent{Key: KeyEnter})

	assert.Equal(t, ToolSelect, f.ctrl.Tool())
	got, _ := f.ctrl.Scene().Connection(conn.ID)
	assert.Equal(t, "vhc", got.Label)
}

func TestDrop(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Viewport().Zoom = 2

	c, err := f.ctrl.Drop(PalettePayload{Kind: "database", Label: "Orders DB", Icon: "db"}, geom.Pt(300, 300))
	require.NoError(t, err)

	assert.Equal(t, geom.Pt(80, 100), c.Bounds().Min())
	assert.Equal(t, 140.0, c.Width)
	assert.Equal(t, 100.0, c.Height)
	assert.Equal(t, "database", c.Category)
	assert.Equal(t, "db", c.Icon)
	assert.Len(t, f.ctrl.Scene().Components, 3)
	assert.Equal(t, 1, f.ctrl.History().Len())
}

func TestPanTool(t *testing.T) {
	f := newFixture(t)
	f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: 'h'})

	f.drag(geom.Pt(10, 10), geom.Pt(30, 50))

	assert.Equal(t, geom.Pt(20, 40), f.ctrl.Viewport().Pan)
	assert.Equal(t, ToolPan, f.ctrl.Tool())
	assert.Equal(t, 0, f.ctrl.History().Len())
}

func TestEmptyCanvasDragPansAndClearsSelection(t *testing.T) {
	f := newFixture(t)
	f.click(120, 120)

	f.drag(geom.Pt(300, 500), geom.Pt(290, 480))

	assert.Empty(t, f.ctrl.Scene().SelectedComponents())
	assert.Equal(t, geom.Pt(-10, -20), f.ctrl.Viewport().Pan)
}

func TestWheelAndZoomKeys(t *testing.T) {
	f := newFixture(t)

	f.ctrl.HandleWheel(geom.Pt(100, 100), 1)
	assert.InDelta(t, 1.2, f.ctrl.Viewport().Zoom, 1e-9)

	f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: '0'})
	assert.Equal(t, 1.0, f.ctrl.Viewport().Zoom)
	assert.Equal(t, geom.Point{}, f.ctrl.Viewport().Pan)

	f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: '-'})
	assert.InDelta(t, 1/1.2, f.ctrl.Viewport().Zoom, 1e-9)
}

func TestContextMenu(t *testing.T) {
	f := newFixture(t)

	f.ctrl.HandlePointerDown(PointerEvent{Screen: geom.Pt(450, 120), Button: ButtonSecondary})
	menu := f.ctrl.Menu()
	require.True(t, menu.Open)
	assert.Equal(t, f.b.ID, menu.ComponentID)
	assert.Equal(t, []MenuAction{MenuDuplicate, MenuDelete}, menu.Items)

	require.True(t, f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: '2'}))
	assert.False(t, f.ctrl.Menu().Open)
	require.Len(t, f.ctrl.Scene().Components, 1)
	assert.Equal(t, f.a.ID, f.ctrl.Scene().Components[0].ID)

	assert.False(t, f.ctrl.OpenContextMenu(geom.Pt(300, 600)))
}

func TestContextMenuEditLabel(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t, "")

	require.True(t, f.ctrl.OpenContextMenu(geom.Pt(300, 140)))
	require.True(t, f.ctrl.ContextAction(MenuEditLabel))

	id, _, ok := f.ctrl.Editing()
	require.True(t, ok)
	assert.Equal(t, conn.ID, id)
	assert.False(t, f.ctrl.ContextAction(MenuDelete), "menu already closed")
}

func TestHover(t *testing.T) {
	f := newFixture(t)
	f.connect(t, "")

	f.ctrl.HandlePointerMove(PointerEvent{Screen: geom.Pt(120, 110)})
	comp, conn := f.ctrl.Hover()
	assert.Equal(t, f.a.ID, comp)
	assert.Empty(t, conn)

	f.ctrl.HandlePointerMove(PointerEvent{Screen: geom.Pt(300, 141)})
	comp, conn = f.ctrl.Hover()
	assert.Empty(t, comp)
	assert.NotEmpty(t, conn)
}

func TestVisibilityToggles(t *testing.T) {
	f := newFixture(t)

	f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: 'l'})
	f.ctrl.HandleKey(KeyEvent{Key: KeyRune, Rune: 'e'})

	assert.False(t, f.ctrl.ShowLabels())
	assert.False(t, f.ctrl.ShowConnections())
	assert.Equal(t, 0, f.ctrl.History().Len())
}

func TestLoadSceneResetsHistory(t *testing.T) {
	f := newFixture(t)
	f.click(120, 120)
	f.ctrl.HandleKey(KeyEvent{Key: KeyDelete})
	require.True(t, f.ctrl.History().CanUndo())

	next := scene.New()
	_, err := next.AddComponent(scene.Component{ID: "svc", Kind: "api"})
	require.NoError(t, err)
	f.ctrl.LoadScene(next)

	require.Len(t, f.ctrl.Scene().Components, 1)
	assert.Equal(t, "svc", f.ctrl.Scene().Components[0].ID)
	assert.False(t, f.ctrl.History().CanUndo())
	assert.False(t, f.ctrl.Undo())
}

func TestOnChange(t *testing.T) {
	calls := 0
	f := newFixture(t, OnChange(func(*scene.Scene) { calls++ }))

	f.click(120, 120)
	assert.Equal(t, 0, calls, "selection alone is not a change")

	f.ctrl.HandleKey(KeyEvent{Key: KeyRight})
	f.ctrl.Undo()
	f.ctrl.Redo()
	assert.Equal(t, 3, calls)
}

func TestIDsStayUniqueAcrossDuplicates(t *testing.T) {
	f := newFixture(t)
	f.click(120, 120)

	for i := 0; i < 5; i++ {
		_, ok := f.ctrl.Duplicate()
		require.True(t, ok)
	}

	seen := map[string]bool{}
	for _, c := range f.ctrl.Scene().Components {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
	assert.Len(t, seen, 7)
}
