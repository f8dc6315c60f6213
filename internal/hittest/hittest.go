// Package hittest maps world points to the scene element under them.
//
// Connection labels and lines shadow the components beneath them: Pick
// checks connections first and only falls back to components when no
// connection is hit. Among overlapping components the last one in the
// component list (the most recently added) wins.
package hittest

import (
	"archcanvas/internal/geom"
	"archcanvas/internal/scene"
)

const (
	DefaultLineTolerance  = 8
	DefaultLabelTolerance = 10
	DefaultLabelPaddingX  = 12
	DefaultLabelHeight    = 26
	// DefaultLabelOffset is both how close a component must be for a label
	// to move and how far it moves.
	DefaultLabelOffset = 30
)

type Picker struct {
	Measurer       TextMeasurer
	LineTolerance  float64
	LabelTolerance float64
	LabelPaddingX  float64
	LabelHeight    float64
	LabelOffset    float64
}

func NewPicker(m TextMeasurer) *Picker {
	return &Picker{
		Measurer:       m,
		LineTolerance:  DefaultLineTolerance,
		LabelTolerance: DefaultLabelTolerance,
		LabelPaddingX:  DefaultLabelPaddingX,
		LabelHeight:    DefaultLabelHeight,
		LabelOffset:    DefaultLabelOffset,
	}
}

// ComponentAt returns the topmost component whose box contains p.
func (p *Picker) ComponentAt(s *scene.Scene, pt geom.Point) (scene.Component, bool) {
	for i := len(s.Components) - 1; i >= 0; i-- {
		if s.Components[i].Bounds().Contains(pt) {
			return s.Components[i], true
		}
	}
	return scene.Component{}, false
}

// LabelPosition is the center of a connection's label pill. It starts at the
// midpoint of the Bezier control polygon and is pushed LabelOffset units
// perpendicular to the connection when any component sits within its half
// extents plus LabelOffset.
func (p *Picker) LabelPosition(s *scene.Scene, c scene.Connection) geom.Point {
	from, to := c.From.Point, c.To.Point
	pos := geom.ControlPolygonMidpoint(from, to)

	anchor := geom.Rect{X: pos.X, Y: pos.Y}
	for _, comp := range s.Components {
		if geom.BoxesClose(anchor, comp.Bounds(), p.LabelOffset) {
			return pos.Add(geom.Perpendicular(from, to).Scale(p.LabelOffset))
		}
	}
	return pos
}

// LabelRect is the label pill of c, without hit tolerance. It is empty
// when the connection has no label.
func (p *Picker) LabelRect(s *scene.Scene, c scene.Connection) (geom.Rect, bool) {
	if c.Label == "" {
		return geom.Rect{}, false
	}
	w := p.Measurer.Measure(c.Label) + 2*p.LabelPaddingX
	return geom.RectAround(p.LabelPosition(s, c), w, p.LabelHeight), true
}

// ConnectionLabelAt returns the first labelled connection, in list order,
// whose label pill (grown by LabelTolerance) contains pt.
func (p *Picker) ConnectionLabelAt(s *scene.Scene, pt geom.Point) (scene.Connection, bool) {
	for _, c := range s.Connections {
		r, ok := p.LabelRect(s, c)
		if ok && r.Grow(p.LabelTolerance).Contains(pt) {
			return c, true
		}
	}
	return scene.Connection{}, false
}

// ConnectionLineAt tests the straight chord between the endpoints, not the
// drawn curve.
func (p *Picker) ConnectionLineAt(s *scene.Scene, pt geom.Point) (scene.Connection, bool) {
	for _, c := range s.Connections {
		if geom.DistancePointToSegment(pt, c.From.Point, c.To.Point) < p.LineTolerance {
			return c, true
		}
	}
	return scene.Connection{}, false
}

// ConnectionAt checks labels before lines.
func (p *Picker) ConnectionAt(s *scene.Scene, pt geom.Point) (scene.Connection, bool) {
	if c, ok := p.ConnectionLabelAt(s, pt); ok {
		return c, true
	}
	return p.ConnectionLineAt(s, pt)
}

type HitKind int

const (
	HitNone HitKind = iota
	HitConnection
	HitComponent
)

type Hit struct {
	Kind       HitKind
	Connection scene.Connection
	Component  scene.Component
}

// Pick resolves pt to a connection, then a component, then nothing.
func (p *Picker) Pick(s *scene.Scene, pt geom.Point) Hit {
	if c, ok := p.ConnectionAt(s, pt); ok {
		return Hit{Kind: HitConnection, Connection: c}
	}
	if c, ok := p.ComponentAt(s, pt); ok {
		return Hit{Kind: HitComponent, Component: c}
	}
	return Hit{}
}
