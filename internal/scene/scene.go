// Package scene is the authoritative in-memory diagram: components,
// connections between them, and the mutation primitives that keep the two
// consistent.
//
// Connection endpoints that reference a component are derived values: every
// call that moves or resizes a component re-derives them from the
// component's center. Deleting a component deletes every connection that
// references it.
package scene

import (
	"errors"
	"fmt"
	"math"

	"archcanvas/internal/geom"

	"github.com/google/uuid"
)

var (
	// ErrInvalidSize is returned when a component is created or resized
	// with a non-positive width or height.
	ErrInvalidSize = errors.New("invalid component size")
	// ErrNotFound is returned when an id does not name a live element.
	ErrNotFound = errors.New("not found")
	// ErrSelfLoop is returned when a connection would start and end on the
	// same component.
	ErrSelfLoop = errors.New("connection endpoints are the same component")
)

const (
	DefaultWidth  = 140
	DefaultHeight = 100
	// MinSize is the floor applied to positive widths and heights.
	MinSize = 40

	DefaultConnectionKind = "data"
)

type Component struct {
	ID           string
	Kind         string
	Label        string
	Category     string
	Description  string
	Technologies []string
	X, Y         float64
	Width        float64
	Height       float64
	// Icon and Color are palette style hints, carried but never interpreted.
	Icon     string
	Color    string
	Selected bool
}

func (c Component) Bounds() geom.Rect {
	return geom.Rect{X: c.X, Y: c.Y, W: c.Width, H: c.Height}
}

func (c Component) Center() geom.Point {
	return geom.CenterOf(c.Bounds())
}

// Endpoint is one end of a connection. ComponentID is empty for a dangling
// end, in which case Point is the only truth.
type Endpoint struct {
	ComponentID string
	Point       geom.Point
}

type Connection struct {
	ID       string
	From     Endpoint
	To       Endpoint
	Kind     string
	Label    string
	Protocol string
	Selected bool
}

// References reports whether either end is attached to the component id.
func (c Connection) References(id string) bool {
	return id != "" && (c.From.ComponentID == id || c.To.ComponentID == id)
}

// Scene owns the component and connection lists. The zero value is not
// usable; call New.
type Scene struct {
	Components  []Component
	Connections []Connection

	newID func(prefix string) string
}

type Option func(*Scene)

// WithIDGenerator replaces the uuid-based id source. The function receives
// "comp" or "conn" and must return ids that are unique among its results.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(s *Scene) {
		s.newID = fn
	}
}

func New(opts ...Option) *Scene {
	s := &Scene{
		Components:  make([]Component, 0),
		Connections: make([]Connection, 0),
		newID:       uuidID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func uuidID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// SequentialIDs returns a generator producing comp-1, comp-2, conn-1, ...
// Useful for tests and for stable ids in exported documents.
func SequentialIDs() func(prefix string) string {
	counters := make(map[string]int)
	return func(prefix string) string {
		counters[prefix]++
		return fmt.Sprintf("%s-%d", prefix, counters[prefix])
	}
}

func (s *Scene) freshID(prefix string, taken func(string) bool) string {
	for {
		id := s.newID(prefix)
		if !taken(id) {
			return id
		}
	}
}

func (s *Scene) componentIndex(id string) int {
	for i := range s.Components {
		if s.Components[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Scene) connectionIndex(id string) int {
	for i := range s.Connections {
		if s.Connections[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Scene) hasComponent(id string) bool {
	return s.componentIndex(id) >= 0
}

func (s *Scene) hasConnection(id string) bool {
	return s.connectionIndex(id) >= 0
}

func (s *Scene) Component(id string) (Component, bool) {
	if i := s.componentIndex(id); i >= 0 {
		return s.Components[i], true
	}
	return Component{}, false
}

func (s *Scene) Connection(id string) (Connection, bool) {
	if i := s.connectionIndex(id); i >= 0 {
		return s.Connections[i], true
	}
	return Connection{}, false
}

func validSize(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func normalizeSize(v float64, def float64) (float64, error) {
	if v == 0 {
		return def, nil
	}
	if !validSize(v) {
		return 0, ErrInvalidSize
	}
	return math.Max(v, MinSize), nil
}

// AddComponent stores c and returns the stored copy. An empty or already
// used ID is replaced by a fresh one, zero sizes take the defaults and an
// empty category is looked up from the kind. Negative sizes fail with
// ErrInvalidSize and nothing is stored.
func (s *Scene) AddComponent(c Component) (Component, error) {
	w, err := normalizeSize(c.Width, DefaultWidth)
	if err != nil {
		return Component{}, fmt.Errorf("add component %q: width %v: %w", c.Label, c.Width, err)
	}
	h, err := normalizeSize(c.Height, DefaultHeight)
	if err != nil {
		return Component{}, fmt.Errorf("add component %q: height %v: %w", c.Label, c.Height, err)
	}
	c.Width = w
	c.Height = h

	if c.ID == "" || s.hasComponent(c.ID) {
		c.ID = s.freshID("comp", s.hasComponent)
	}
	if c.Category == "" {
		c.Category = CategoryForKind(c.Kind)
	}
	c.Technologies = append([]string(nil), c.Technologies...)

	s.Components = append(s.Components, c)
	return c, nil
}

// ComponentPatch lists the fields UpdateComponent may change. Nil fields
// are left alone.
type ComponentPatch struct {
	X, Y          *float64
	Width, Height *float64
	Label         *string
	Kind          *string
	Category      *string
	Description   *string
}

// MovePatch is shorthand for a position-only patch.
func MovePatch(x, y float64) ComponentPatch {
	return ComponentPatch{X: &x, Y: &y}
}

// ResizePatch is shorthand for a size-only patch.
func ResizePatch(w, h float64) ComponentPatch {
	return ComponentPatch{Width: &w, Height: &h}
}

// UpdateComponent applies patch to the component. Position or size changes
// re-derive the endpoints of every connection attached to it. A
// non-positive or non-finite size fails with ErrInvalidSize before anything
// is applied.
func (s *Scene) UpdateComponent(id string, patch ComponentPatch) error {
	i := s.componentIndex(id)
	if i < 0 {
		return fmt.Errorf("update component %s: %w", id, ErrNotFound)
	}

	var w, h float64
	if patch.Width != nil {
		if !validSize(*patch.Width) {
			return fmt.Errorf("update component %s: width %v: %w", id, *patch.Width, ErrInvalidSize)
		}
		w = math.Max(*patch.Width, MinSize)
	}
	if patch.Height != nil {
		if !validSize(*patch.Height) {
			return fmt.Errorf("update component %s: height %v: %w", id, *patch.Height, ErrInvalidSize)
		}
		h = math.Max(*patch.Height, MinSize)
	}

	c := &s.Components[i]
	geometryChanged := false
	if patch.X != nil && *patch.X != c.X {
		c.X = *patch.X
		geometryChanged = true
	}
	if patch.Y != nil && *patch.Y != c.Y {
		c.Y = *patch.Y
		geometryChanged = true
	}
	if patch.Width != nil && w != c.Width {
		c.Width = w
		geometryChanged = true
	}
	if patch.Height != nil && h != c.Height {
		c.Height = h
		geometryChanged = true
	}
	if patch.Label != nil {
		c.Label = *patch.Label
	}
	if patch.Kind != nil {
		c.Kind = *patch.Kind
	}
	if patch.Category != nil {
		c.Category = *patch.Category
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}

	if geometryChanged {
		s.syncEndpoints(id)
	}
	return nil
}

// MoveComponent sets the component's top-left corner.
func (s *Scene) MoveComponent(id string, x, y float64) error {
	return s.UpdateComponent(id, MovePatch(x, y))
}

func (s *Scene) syncEndpoints(id string) {
	i := s.componentIndex(id)
	if i < 0 {
		return
	}
	center := s.Components[i].Center()
	for j := range s.Connections {
		conn := &s.Connections[j]
		if conn.From.ComponentID == id {
			conn.From.Point = center
		}
		if conn.To.ComponentID == id {
			conn.To.Point = center
		}
	}
}

// RemoveComponent deletes the component and every connection referencing
// it, returning the removed connections. Unknown ids are a no-op.
func (s *Scene) RemoveComponent(id string) []Connection {
	i := s.componentIndex(id)
	if i < 0 {
		return nil
	}
	s.Components = append(s.Components[:i], s.Components[i+1:]...)

	var removed []Connection
	kept := make([]Connection, 0, len(s.Connections))
	for _, conn := range s.Connections {
		if conn.References(id) {
			removed = append(removed, conn)
			continue
		}
		kept = append(kept, conn)
	}
	s.Connections = kept
	return removed
}

// ConnectionAttrs are the presentation fields of a new connection.
type ConnectionAttrs struct {
	ID       string
	Kind     string
	Label    string
	Protocol string
}

// AddConnection links two live components. Endpoints are taken from the
// components' current centers.
func (s *Scene) AddConnection(fromID, toID string, attrs ConnectionAttrs) (Connection, error) {
	if fromID == toID {
		return Connection{}, fmt.Errorf("add connection %s→%s: %w", fromID, toID, ErrSelfLoop)
	}
	from, ok := s.Component(fromID)
	if !ok {
		return Connection{}, fmt.Errorf("add connection from %s: %w", fromID, ErrNotFound)
	}
	to, ok := s.Component(toID)
	if !ok {
		return Connection{}, fmt.Errorf("add connection to %s: %w", toID, ErrNotFound)
	}

	conn := Connection{
		ID:       attrs.ID,
		From:     Endpoint{ComponentID: fromID, Point: from.Center()},
		To:       Endpoint{ComponentID: toID, Point: to.Center()},
		Kind:     attrs.Kind,
		Label:    attrs.Label,
		Protocol: attrs.Protocol,
	}
	return s.insertConnection(conn), nil
}

// InsertConnection stores a connection whose ends may be dangling. Ends
// that reference a live component are re-derived from its center; ends
// referencing unknown ids are detached and keep their literal point. Two
// ends on the same component fail with ErrSelfLoop.
func (s *Scene) InsertConnection(conn Connection) (Connection, error) {
	if conn.From.ComponentID != "" && !s.hasComponent(conn.From.ComponentID) {
		conn.From.ComponentID = ""
	}
	if conn.To.ComponentID != "" && !s.hasComponent(conn.To.ComponentID) {
		conn.To.ComponentID = ""
	}
	if conn.From.ComponentID != "" && conn.From.ComponentID == conn.To.ComponentID {
		return Connection{}, fmt.Errorf("insert connection %s: %w", conn.ID, ErrSelfLoop)
	}
	if c, ok := s.Component(conn.From.ComponentID); ok {
		conn.From.Point = c.Center()
	}
	if c, ok := s.Component(conn.To.ComponentID); ok {
		conn.To.Point = c.Center()
	}
	return s.insertConnection(conn), nil
}

func (s *Scene) insertConnection(conn Connection) Connection {
	if conn.ID == "" || s.hasConnection(conn.ID) {
		conn.ID = s.freshID("conn", s.hasConnection)
	}
	if conn.Kind == "" {
		conn.Kind = DefaultConnectionKind
	}
	s.Connections = append(s.Connections, conn)
	return conn
}

type ConnectionPatch struct {
	Kind     *string
	Label    *string
	Protocol *string
}

func (s *Scene) UpdateConnection(id string, patch ConnectionPatch) error {
	i := s.connectionIndex(id)
	if i < 0 {
		return fmt.Errorf("update connection %s: %w", id, ErrNotFound)
	}
	conn := &s.Connections[i]
	if patch.Kind != nil {
		conn.Kind = *patch.Kind
	}
	if patch.Label != nil {
		conn.Label = *patch.Label
	}
	if patch.Protocol != nil {
		conn.Protocol = *patch.Protocol
	}
	return nil
}

// RemoveConnection deletes the connection. Unknown ids are a no-op.
func (s *Scene) RemoveConnection(id string) bool {
	i := s.connectionIndex(id)
	if i < 0 {
		return false
	}
	s.Connections = append(s.Connections[:i], s.Connections[i+1:]...)
	return true
}

// ToleranceFunc returns how far from a component's center a point may be
// and still resolve to it.
type ToleranceFunc func(Component) float64

// DefaultTolerance is max(width, height) + 80.
func DefaultTolerance(c Component) float64 {
	return math.Max(c.Width, c.Height) + 80
}

// ResolveNearestComponent finds the component whose center is closest to p
// among those within their tolerance. Ties keep the earlier component.
func (s *Scene) ResolveNearestComponent(p geom.Point, tolerance ToleranceFunc) (Component, bool) {
	if tolerance == nil {
		tolerance = DefaultTolerance
	}
	best := -1
	bestDist := math.Inf(1)
	for i, c := range s.Components {
		d := geom.Distance(p, c.Center())
		if d < tolerance(c) && d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return Component{}, false
	}
	return s.Components[best], true
}

// Bounds covers every component and connection endpoint. ok is false for
// an empty scene.
func (s *Scene) Bounds() (r geom.Rect, ok bool) {
	for _, c := range s.Components {
		if !ok {
			r, ok = c.Bounds(), true
			continue
		}
		r = r.Union(c.Bounds())
	}
	for _, conn := range s.Connections {
		for _, p := range []geom.Point{conn.From.Point, conn.To.Point} {
			pr := geom.Rect{X: p.X, Y: p.Y}
			if !ok {
				r, ok = pr, true
				continue
			}
			r = r.Union(pr)
		}
	}
	return r, ok
}

// Others returns the bounds of every component except id, in list order.
func (s *Scene) Others(id string) []geom.Rect {
	rects := make([]geom.Rect, 0, len(s.Components))
	for _, c := range s.Components {
		if c.ID != id {
			rects = append(rects, c.Bounds())
		}
	}
	return rects
}
