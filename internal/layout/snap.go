package layout

import (
	"math"

	"archcanvas/internal/geom"
)

type Orientation int

const (
	// Vertical guides fix an x coordinate.
	Vertical Orientation = iota
	// Horizontal guides fix a y coordinate.
	Horizontal
)

type AlignKind int

// Lower values win ties between equally distant candidates.
const (
	AlignCenter AlignKind = iota
	AlignStart
	AlignEnd
)

func (k AlignKind) String() string {
	switch k {
	case AlignCenter:
		return "center"
	case AlignStart:
		return "start"
	case AlignEnd:
		return "end"
	}
	return "unknown"
}

// Guide is an alignment line produced by a snap, in world coordinates.
// Position is the shared coordinate; From and To span both boxes along the
// other axis.
type Guide struct {
	Orientation Orientation
	Kind        AlignKind
	Position    float64
	From, To    float64
}

type SnapResult struct {
	Position geom.Point
	// AlignedX and AlignedY report an alignment snap (not a grid snap) on
	// that axis.
	AlignedX bool
	AlignedY bool
	Guides   []Guide
}

type candidate struct {
	value float64 // resulting top-left coordinate
	dist  float64
	kind  AlignKind
	guide Guide
}

func (c candidate) better(o candidate) bool {
	if c.dist != o.dist {
		return c.dist < o.dist
	}
	if c.kind != o.kind {
		return c.kind < o.kind
	}
	return c.value < o.value
}

// ComputeSnapTarget snaps the top-left of moving onto the edges or center of
// another box when within SnapDistance, choosing per axis the nearest
// candidate. An axis with no alignment candidate falls back to the fine
// grid when within GridThreshold of a grid line.
func ComputeSnapTarget(moving geom.Rect, others []geom.Rect, opts Options) SnapResult {
	var bestX, bestY *candidate

	consider := func(best **candidate, c candidate) {
		if c.dist >= opts.SnapDistance {
			return
		}
		if *best == nil || c.better(**best) {
			cc := c
			*best = &cc
		}
	}

	for _, o := range others {
		spanY0 := math.Min(moving.Y, o.Y)
		spanY1 := math.Max(moving.Y+moving.H, o.Y+o.H)
		spanX0 := math.Min(moving.X, o.X)
		spanX1 := math.Max(moving.X+moving.W, o.X+o.W)

		vertical := func(kind AlignKind, line, value float64) candidate {
			return candidate{
				value: value,
				dist:  math.Abs(value - moving.X),
				kind:  kind,
				guide: Guide{Orientation: Vertical, Kind: kind, Position: line, From: spanY0, To: spanY1},
			}
		}
		horizontal := func(kind AlignKind, line, value float64) candidate {
			return candidate{
				value: value,
				dist:  math.Abs(value - moving.Y),
				kind:  kind,
				guide: Guide{Orientation: Horizontal, Kind: kind, Position: line, From: spanX0, To: spanX1},
			}
		}

		consider(&bestX, vertical(AlignStart, o.X, o.X))
		consider(&bestX, vertical(AlignEnd, o.X+o.W, o.X+o.W-moving.W))
		consider(&bestX, vertical(AlignCenter, o.X+o.W/2, o.X+o.W/2-moving.W/2))

		consider(&bestY, horizontal(AlignStart, o.Y, o.Y))
		consider(&bestY, horizontal(AlignEnd, o.Y+o.H, o.Y+o.H-moving.H))
		consider(&bestY, horizontal(AlignCenter, o.Y+o.H/2, o.Y+o.H/2-moving.H/2))
	}

	res := SnapResult{Position: moving.Min()}
	if bestX != nil {
		res.Position.X = bestX.value
		res.AlignedX = true
		res.Guides = append(res.Guides, bestX.guide)
	} else {
		res.Position.X = gridSnap(moving.X, opts)
	}
	if bestY != nil {
		res.Position.Y = bestY.value
		res.AlignedY = true
		res.Guides = append(res.Guides, bestY.guide)
	} else {
		res.Position.Y = gridSnap(moving.Y, opts)
	}
	return res
}

func gridSnap(v float64, opts Options) float64 {
	g := geom.RoundTo(v, opts.FineGrid)
	if math.Abs(v-g) < opts.GridThreshold {
		return g
	}
	return v
}
