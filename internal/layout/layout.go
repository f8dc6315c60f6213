// Package layout decides where components go: grid placement for freshly
// generated scenes, alignment/grid snapping while dragging, and the
// spacing rule that rejects moves landing too close to a neighbour.
package layout

import (
	"math"

	"archcanvas/internal/geom"
	"archcanvas/internal/scene"
)

const (
	DefaultSpacing       = 60
	DefaultMargin        = 100
	DefaultCoarseGrid    = 40
	DefaultSnapDistance  = 15
	DefaultFineGrid      = 20
	DefaultGridThreshold = 8
	DefaultMinSpacing    = 60
)

type Options struct {
	// Spacing is the gap left between auto-placed components.
	Spacing float64
	// Margin offsets the whole grid from the origin.
	Margin float64
	// CoarseGrid is the cell auto-placed positions are rounded to.
	CoarseGrid float64

	SnapDistance  float64
	FineGrid      float64
	GridThreshold float64
	MinSpacing    float64
}

func DefaultOptions() Options {
	return Options{
		Spacing:       DefaultSpacing,
		Margin:        DefaultMargin,
		CoarseGrid:    DefaultCoarseGrid,
		SnapDistance:  DefaultSnapDistance,
		FineGrid:      DefaultFineGrid,
		GridThreshold: DefaultGridThreshold,
		MinSpacing:    DefaultMinSpacing,
	}
}

// AutoLayout places components on a near-square grid. A zero coordinate
// counts as missing and is replaced independently per axis; explicit
// coordinates are kept. The input slice is not modified.
func AutoLayout(components []scene.Component, opts Options) []scene.Component {
	out := make([]scene.Component, len(components))
	copy(out, components)
	if len(out) == 0 {
		return out
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(out)))))
	for i := range out {
		c := &out[i]
		row := i / cols
		col := i % cols

		baseX := float64(col)*(c.Width+opts.Spacing) + opts.Margin
		baseY := float64(row)*(c.Height+opts.Spacing) + opts.Margin

		if c.X == 0 {
			c.X = geom.RoundTo(baseX, opts.CoarseGrid)
		}
		if c.Y == 0 {
			c.Y = geom.RoundTo(baseY, opts.CoarseGrid)
		}
	}
	return out
}

// WouldCollide reports whether a component of the given size placed at pos
// would sit closer than minSpacing to any of others, measured center to
// center against the half extents on both axes.
func WouldCollide(pos geom.Point, w, h float64, others []geom.Rect, minSpacing float64) bool {
	candidate := geom.Rect{X: pos.X, Y: pos.Y, W: w, H: h}
	for _, o := range others {
		if geom.BoxesClose(candidate, o, minSpacing) {
			return true
		}
	}
	return false
}
