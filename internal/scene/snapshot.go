package scene

// Snapshot is an independent deep copy of a scene's contents. Selection
// flags are never part of a snapshot.
type Snapshot struct {
	Components  []Component
	Connections []Connection
}

// Snapshot deep-copies the scene with every selection flag cleared.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Components:  make([]Component, len(s.Components)),
		Connections: make([]Connection, len(s.Connections)),
	}
	for i, c := range s.Components {
		c.Technologies = append([]string(nil), c.Technologies...)
		c.Selected = false
		snap.Components[i] = c
	}
	for i, conn := range s.Connections {
		conn.Selected = false
		snap.Connections[i] = conn
	}
	return snap
}

// Clone returns a deep copy of the snapshot so the stored one can never be
// aliased by a live scene.
func (snap Snapshot) Clone() Snapshot {
	out := Snapshot{
		Components:  make([]Component, len(snap.Components)),
		Connections: make([]Connection, len(snap.Connections)),
	}
	for i, c := range snap.Components {
		c.Technologies = append([]string(nil), c.Technologies...)
		out.Components[i] = c
	}
	copy(out.Connections, snap.Connections)
	return out
}

// Restore replaces the scene's contents with a copy of snap. The id
// generator is kept.
func (s *Scene) Restore(snap Snapshot) {
	c := snap.Clone()
	s.Components = c.Components
	s.Connections = c.Connections
}

// Clone returns an independent scene sharing only the id generator.
func (s *Scene) Clone() *Scene {
	out := &Scene{newID: s.newID}
	snap := s.Snapshot()
	out.Components = snap.Components
	out.Connections = snap.Connections
	for i, c := range s.Components {
		out.Components[i].Selected = c.Selected
	}
	for i, conn := range s.Connections {
		out.Connections[i].Selected = conn.Selected
	}
	return out
}
