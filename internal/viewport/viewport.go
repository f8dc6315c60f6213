// Package viewport maps between screen and world coordinates.
//
// screen = world*zoom + pan, so world = (screen - pan) / zoom.
package viewport

import (
	"math"

	"archcanvas/internal/geom"
)

const (
	DefaultMinZoom = 0.3
	DefaultMaxZoom = 3.0
	// ZoomStep is the factor applied by one zoom in or out.
	ZoomStep = 1.2
)

type Viewport struct {
	Zoom    float64
	Pan     geom.Point
	MinZoom float64
	MaxZoom float64
}

func New() *Viewport {
	return &Viewport{Zoom: 1, MinZoom: DefaultMinZoom, MaxZoom: DefaultMaxZoom}
}

// WithLimits returns v with a different zoom clamp. Invalid limits keep the
// defaults.
func (v *Viewport) WithLimits(min, max float64) *Viewport {
	if min > 0 && max >= min {
		v.MinZoom, v.MaxZoom = min, max
		v.Zoom = v.clamp(v.Zoom)
	}
	return v
}

func (v *Viewport) clamp(z float64) float64 {
	if math.IsNaN(z) || z <= 0 {
		return v.Zoom
	}
	return math.Max(v.MinZoom, math.Min(v.MaxZoom, z))
}

func (v *Viewport) ScreenToWorld(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - v.Pan.X) / v.Zoom, Y: (p.Y - v.Pan.Y) / v.Zoom}
}

func (v *Viewport) WorldToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*v.Zoom + v.Pan.X, Y: p.Y*v.Zoom + v.Pan.Y}
}

// PanBy shifts the view by a raw screen delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.Pan.X += dx
	v.Pan.Y += dy
}

// SetZoom clamps z and keeps the pan unchanged.
func (v *Viewport) SetZoom(z float64) {
	v.Zoom = v.clamp(z)
}

func (v *Viewport) ZoomIn() {
	v.SetZoom(v.Zoom * ZoomStep)
}

func (v *Viewport) ZoomOut() {
	v.SetZoom(v.Zoom / ZoomStep)
}

// ZoomAt scales by factor while keeping the world point under the screen
// point anchor fixed.
func (v *Viewport) ZoomAt(anchor geom.Point, factor float64) {
	world := v.ScreenToWorld(anchor)
	v.Zoom = v.clamp(v.Zoom * factor)
	v.Pan = geom.Point{X: anchor.X - world.X*v.Zoom, Y: anchor.Y - world.Y*v.Zoom}
}

// Reset restores zoom 1 and no pan.
func (v *Viewport) Reset() {
	v.Zoom = 1
	v.Pan = geom.Point{}
}
