// Package geom holds the point and box math shared by the scene, layout,
// picking and rendering code. Everything here is a pure function of its
// arguments.
package geom

import "math"

type Point struct {
	X, Y float64
}

func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Min() Point {
	return Point{X: r.X, Y: r.Y}
}

func (r Rect) Max() Point {
	return Point{X: r.X + r.W, Y: r.Y + r.H}
}

// Center returns (x + w/2, y + h/2).
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p lies inside r. Edges count as inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Grow expands r by m on every side (shrinks for negative m).
func (r Rect) Grow(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, W: r.W + 2*m, H: r.H + 2*m}
}

// Union returns the smallest rect covering both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// RectAround returns a w×h rect centered on c.
func RectAround(c Point, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// DistancePointToSegment is the distance from p to the closest point of
// segment ab. A degenerate segment is treated as the point a.
func DistancePointToSegment(p, a, b Point) float64 {
	cx := b.X - a.X
	cy := b.Y - a.Y
	lenSq := cx*cx + cy*cy
	if lenSq == 0 {
		return Distance(p, a)
	}

	t := ((p.X-a.X)*cx + (p.Y-a.Y)*cy) / lenSq
	if t < 0 {
		return Distance(p, a)
	}
	if t > 1 {
		return Distance(p, b)
	}
	return Distance(p, Point{X: a.X + t*cx, Y: a.Y + t*cy})
}

// MaxControlDistance caps how far control points sit from their endpoint.
const MaxControlDistance = 100

// BezierControlPoints returns the two control points of the S-curve drawn
// between from and to. Each sits min(|to-from|*0.3, 100) along the chord
// from its own endpoint.
func BezierControlPoints(from, to Point) (Point, Point) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	d := math.Min(math.Hypot(dx, dy)*0.3, MaxControlDistance)
	angle := math.Atan2(dy, dx)
	ox := d * math.Cos(angle)
	oy := d * math.Sin(angle)
	return Point{X: from.X + ox, Y: from.Y + oy}, Point{X: to.X - ox, Y: to.Y - oy}
}

// ControlPolygonMidpoint is (from + c1 + c2 + to) / 4, the anchor used for
// connection labels.
func ControlPolygonMidpoint(from, to Point) Point {
	c1, c2 := BezierControlPoints(from, to)
	return Point{
		X: (from.X + c1.X + c2.X + to.X) / 4,
		Y: (from.Y + c1.Y + c2.Y + to.Y) / 4,
	}
}

// CubicBezier evaluates the curve from→to at t in [0,1].
func CubicBezier(from, c1, c2, to Point, t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*from.X + b*c1.X + c*c2.X + d*to.X,
		Y: a*from.Y + b*c1.Y + c*c2.Y + d*to.Y,
	}
}

// CenterOf returns the center of r. It exists so call sites read like the
// component math they implement.
func CenterOf(r Rect) Point {
	return r.Center()
}

// BoxesClose reports whether the centers of a and b are closer than their
// half extents plus margin on both axes at once.
func BoxesClose(a, b Rect, margin float64) bool {
	ac := a.Center()
	bc := b.Center()
	dx := math.Abs(ac.X - bc.X)
	dy := math.Abs(ac.Y - bc.Y)
	return dx < (a.W+b.W)/2+margin && dy < (a.H+b.H)/2+margin
}

// RoundTo rounds v to the nearest multiple of cell.
func RoundTo(v, cell float64) float64 {
	if cell <= 0 {
		return v
	}
	return math.Round(v/cell) * cell
}

// Perpendicular returns the unit vector rotated 90° clockwise (screen
// coordinates) from the direction from→to. A zero-length direction yields
// (0, 1).
func Perpendicular(from, to Point) Point {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X) + math.Pi/2
	return Point{X: math.Cos(angle), Y: math.Sin(angle)}
}
