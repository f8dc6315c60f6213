package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"archcanvas/internal/geom"
	"archcanvas/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generated = `{
  "components": [
    {"type": "api", "label": "Gateway"},
    {"type": "database", "label": "Orders DB"},
    {"type": "cache", "label": "Session Cache", "technologies": ["redis"]}
  ],
  "connections": [
    {"from": {"x": 190, "y": 170}, "to": {"x": 390, "y": 170}, "type": "sync", "label": "Query"},
    {"id": "dangling", "from": {"x": 0, "y": 0, "componentId": "comp-2"}, "to": {"x": 5000, "y": 5000}},
    {"from": {"x": 190, "y": 170}, "to": {"x": 200, "y": 180}},
    {"from": {"x": 190, "y": 170, "componentId": "missing"}, "to": {"x": 380, "y": 160, "componentId": "also-missing"}}
  ]
}`

func build(t *testing.T, src string) (*scene.Scene, Report) {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return Build(doc, DefaultOptions())
}

func TestBuildDefaultsAndLayout(t *testing.T) {
	s, _ := build(t, generated)

	require.Len(t, s.Components, 3)
	want := []struct {
		id       string
		pos      geom.Point
		category string
	}{
		{"comp-0", geom.Pt(120, 120), "application"},
		{"comp-1", geom.Pt(320, 120), "database"},
		{"comp-2", geom.Pt(120, 280), "database"},
	}
	for i, w := range want {
		c := s.Components[i]
		assert.Equal(t, w.id, c.ID)
		assert.Equal(t, w.pos, c.Bounds().Min(), c.ID)
		assert.Equal(t, 140.0, c.Width)
		assert.Equal(t, 100.0, c.Height)
		assert.Equal(t, w.category, c.Category)
	}
	assert.Equal(t, []string{"redis"}, s.Components[2].Technologies)
}

func TestBuildHealsConnections(t *testing.T) {
	s, report := build(t, generated)

	require.Len(t, s.Connections, 4)

	positional := s.Connections[0]
	assert.Equal(t, "conn-0", positional.ID)
	assert.Equal(t, "comp-0", positional.From.ComponentID)
	assert.Equal(t, "comp-1", positional.To.ComponentID)
	assert.Equal(t, geom.Pt(390, 170), positional.To.Point)
	assert.Equal(t, "sync", positional.Kind)

	dangling := s.Connections[1]
	assert.Equal(t, "comp-2", dangling.From.ComponentID)
	assert.Equal(t, geom.Pt(190, 330), dangling.From.Point)
	assert.Empty(t, dangling.To.ComponentID)
	assert.Equal(t, geom.Pt(5000, 5000), dangling.To.Point)
	assert.Equal(t, "data", dangling.Kind)

	loop := s.Connections[2]
	assert.Equal(t, "comp-0", loop.From.ComponentID)
	assert.Empty(t, loop.To.ComponentID)
	assert.Equal(t, geom.Pt(200, 180), loop.To.Point)

	renamed := s.Connections[3]
	assert.Equal(t, "comp-0", renamed.From.ComponentID)
	assert.Equal(t, "comp-1", renamed.To.ComponentID)

	assert.Equal(t, []string{"dangling", "conn-2"}, report.Dangling)
	assert.Equal(t, []string{"conn-2"}, report.SelfLoops)
	assert.Empty(t, report.Rejected)
}

func TestBuildKeepsExplicitGeometry(t *testing.T) {
	s, _ := build(t, `
components:
  - id: lb
    type: loadbalancer
    x: 500
    y: 60
    width: 200
    height: 20
`)

	require.Len(t, s.Components, 1)
	c := s.Components[0]
	assert.Equal(t, geom.Rect{X: 500, Y: 60, W: 200, H: scene.MinSize}, c.Bounds())
	assert.Equal(t, "infrastructure", c.Category)
}

func TestBuildRejectsNegativeSize(t *testing.T) {
	s, report := build(t, `
components:
  - {id: ok, type: api}
  - {id: bad, type: api, width: -10}
`)

	require.Len(t, s.Components, 1)
	assert.Equal(t, "ok", s.Components[0].ID)
	assert.Equal(t, []string{"bad"}, report.Rejected)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("components: [unterminated"))
	assert.Error(t, err)

	doc, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, doc.Components)
}

func TestRoundTrip(t *testing.T) {
	s, _ := build(t, generated)

	out, err := Marshal(FromScene(s))
	require.NoError(t, err)
	assert.Contains(t, out, "componentId: comp-0")

	again, _ := build(t, out)
	assert.Equal(t, s.Snapshot(), again.Snapshot())
}

func TestLoadAndSaveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(src, []byte(generated), 0644))

	s, report, err := LoadFile(src, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, s.Components, 3)
	assert.Len(t, report.Dangling, 2)

	dst := filepath.Join(dir, "out.yaml")
	require.NoError(t, SaveFile(dst, s))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "components:"))

	_, _, err = LoadFile(filepath.Join(dir, "missing.yaml"), DefaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
