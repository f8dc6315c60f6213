// Package history keeps a bounded, linear undo/redo timeline of scene
// snapshots.
//
// Snapshots are recorded before a mutation. The cursor points at the entry
// matching the live scene, or one past the end when the live scene is newer
// than every entry. Recording after an undo discards the redo branch.
package history

import "archcanvas/internal/scene"

const DefaultLimit = 50

type Manager struct {
	entries []scene.Snapshot
	cursor  int
	limit   int
	// restoring is set while an undo/redo result is being applied so the
	// application cannot record itself.
	restoring bool
}

func New(limit int) *Manager {
	if limit < 2 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit}
}

// Snapshot records the state of s ahead of a mutation.
func (m *Manager) Snapshot(s *scene.Scene) {
	m.Record(s.Snapshot())
}

// Record stores snap as the state preceding the next mutation. It is
// ignored while a restore is in progress.
func (m *Manager) Record(snap scene.Snapshot) {
	if m.restoring {
		return
	}
	m.entries = append(m.entries[:m.cursor], snap.Clone())
	m.cursor = len(m.entries)
	m.evict()
}

func (m *Manager) evict() {
	for len(m.entries) > m.limit {
		m.entries = m.entries[1:]
		m.cursor--
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Undo returns the state before the most recent recorded mutation. live is
// the current scene; it is kept so Redo can come back to it.
func (m *Manager) Undo(live *scene.Scene) (scene.Snapshot, bool) {
	if m.cursor == 0 || len(m.entries) == 0 {
		return scene.Snapshot{}, false
	}
	if m.cursor == len(m.entries) {
		m.entries = append(m.entries, live.Snapshot())
		m.evict()
		if m.cursor == 0 {
			return scene.Snapshot{}, false
		}
	}
	m.cursor--
	return m.entries[m.cursor].Clone(), true
}

func (m *Manager) Redo() (scene.Snapshot, bool) {
	if m.cursor >= len(m.entries)-1 {
		return scene.Snapshot{}, false
	}
	m.cursor++
	return m.entries[m.cursor].Clone(), true
}

// Restoring runs apply with recording suspended.
func (m *Manager) Restoring(apply func()) {
	prev := m.restoring
	m.restoring = true
	defer func() { m.restoring = prev }()
	apply()
}

func (m *Manager) CanUndo() bool {
	return m.cursor > 0 && len(m.entries) > 0
}

func (m *Manager) CanRedo() bool {
	return m.cursor < len(m.entries)-1
}

func (m *Manager) Len() int {
	return len(m.entries)
}

func (m *Manager) Limit() int {
	return m.limit
}

// Reset drops every entry.
func (m *Manager) Reset() {
	m.entries = nil
	m.cursor = 0
}
