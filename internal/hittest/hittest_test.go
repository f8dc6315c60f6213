package hittest

import (
	"testing"

	"archcanvas/internal/geom"
	"archcanvas/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBoxes builds A at (100,100) and B at (400,100), both 120x80, joined by
// a connection running (160,140) -> (460,140).
func twoBoxes(t *testing.T, label string) (*scene.Scene, scene.Component, scene.Component, scene.Connection) {
	t.Helper()
	s := scene.New(scene.WithIDGenerator(scene.SequentialIDs()))
	a, err := s.AddComponent(scene.Component{Kind: "api", X: 100, Y: 100, Width: 120, Height: 80})
	require.NoError(t, err)
	b, err := s.AddComponent(scene.Component{Kind: "database", X: 400, Y: 100, Width: 120, Height: 80})
	require.NoError(t, err)
	c, err := s.AddConnection(a.ID, b.ID, scene.ConnectionAttrs{Label: label})
	require.NoError(t, err)
	return s, a, b, c
}

func newPicker() *Picker {
	return NewPicker(FixedWidthMeasurer{Advance: 8})
}

func TestComponentAtTopmostWins(t *testing.T) {
	s := scene.New(scene.WithIDGenerator(scene.SequentialIDs()))
	under, err := s.AddComponent(scene.Component{X: 0, Y: 0, Width: 100, Height: 100})
	require.NoError(t, err)
	over, err := s.AddComponent(scene.Component{X: 50, Y: 50, Width: 100, Height: 100})
	require.NoError(t, err)
	p := newPicker()

	got, ok := p.ComponentAt(s, geom.Pt(75, 75))
	require.True(t, ok)
	assert.Equal(t, over.ID, got.ID)

	got, ok = p.ComponentAt(s, geom.Pt(10, 10))
	require.True(t, ok)
	assert.Equal(t, under.ID, got.ID)

	_, ok = p.ComponentAt(s, geom.Pt(500, 500))
	assert.False(t, ok)
}

func TestLabelPositionIsControlPolygonMidpoint(t *testing.T) {
	s, _, _, c := twoBoxes(t, "Sync")
	p := newPicker()

	assert.Equal(t, geom.Pt(310, 140), p.LabelPosition(s, c))

	r, ok := p.LabelRect(s, c)
	require.True(t, ok)
	// 4 runes * 8 + 2*12 padding
	assert.Equal(t, geom.Rect{X: 282, Y: 127, W: 56, H: 26}, r)
}

func TestLabelPushedAwayFromNearbyComponent(t *testing.T) {
	s, _, _, c := twoBoxes(t, "Sync")
	_, err := s.AddComponent(scene.Component{X: 270, Y: 100, Width: 80, Height: 80})
	require.NoError(t, err)
	p := newPicker()

	pos := p.LabelPosition(s, c)
	assert.InDelta(t, 310, pos.X, 1e-9)
	assert.InDelta(t, 170, pos.Y, 1e-9)
}

func TestConnectionLabelAt(t *testing.T) {
	s, _, _, c := twoBoxes(t, "Sync")
	p := newPicker()

	got, ok := p.ConnectionLabelAt(s, geom.Pt(310, 160))
	require.True(t, ok, "within the 10 unit tolerance below the pill")
	assert.Equal(t, c.ID, got.ID)

	_, ok = p.ConnectionLabelAt(s, geom.Pt(310, 170))
	assert.False(t, ok)
}

func TestUnlabelledConnectionHasNoLabelHit(t *testing.T) {
	s, _, _, _ := twoBoxes(t, "")
	p := newPicker()

	_, ok := p.ConnectionLabelAt(s, geom.Pt(310, 140))
	assert.False(t, ok)
	_, ok = p.LabelRect(s, s.Connections[0])
	assert.False(t, ok)
}

func TestConnectionLineAt(t *testing.T) {
	s, _, _, c := twoBoxes(t, "")
	p := newPicker()

	tests := []struct {
		name string
		pt   geom.Point
		hit  bool
	}{
		{"on the chord", geom.Pt(300, 140), true},
		{"within tolerance", geom.Pt(300, 147), true},
		{"at tolerance", geom.Pt(300, 148), false},
		{"past the end", geom.Pt(470, 140), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.ConnectionLineAt(s, tt.pt)
			assert.Equal(t, tt.hit, ok)
			if tt.hit {
				assert.Equal(t, c.ID, got.ID)
			}
		})
	}
}

func TestPickConnectionShadowsComponent(t *testing.T) {
	s, a, _, c := twoBoxes(t, "")
	p := newPicker()

	hit := p.Pick(s, geom.Pt(200, 145))
	assert.Equal(t, HitConnection, hit.Kind)
	assert.Equal(t, c.ID, hit.Connection.ID)

	hit = p.Pick(s, geom.Pt(120, 110))
	assert.Equal(t, HitComponent, hit.Kind)
	assert.Equal(t, a.ID, hit.Component.ID)

	hit = p.Pick(s, geom.Pt(300, 400))
	assert.Equal(t, HitNone, hit.Kind)
}

func TestFontMeasurer(t *testing.T) {
	m, err := NewFontMeasurer(DefaultFontSize)
	require.NoError(t, err)

	assert.Zero(t, m.Measure(""))
	assert.Greater(t, m.Measure("WW"), m.Measure("i"))
	assert.Greater(t, m.Measure("Data Flow"), 0.0)
}
