package editor

import "archcanvas/internal/scene"

// EditSelectedLabel starts editing the selected connection's label.
func (c *Controller) EditSelectedLabel() bool {
	conn, ok := c.selectedConnection()
	if !ok {
		return false
	}
	c.startEditing(conn.ID, conn.Label)
	return true
}

func (c *Controller) startEditing(id, seed string) {
	c.editingID = id
	c.editBuffer = []rune(seed)
	c.setMode(ModeEditingLabel)
}

// InsertText appends pasted text to the edit buffer.
func (c *Controller) InsertText(text string) bool {
	if c.mode != ModeEditingLabel {
		return false
	}
	c.editBuffer = append(c.editBuffer, []rune(text)...)
	return true
}

// CommitLabel writes the buffer to the connection. Nothing is recorded when
// the text is unchanged or the connection is gone.
func (c *Controller) CommitLabel() {
	if c.mode != ModeEditingLabel {
		return
	}
	id, text := c.editingID, string(c.editBuffer)
	c.stopEditing()

	conn, ok := c.scene.Connection(id)
	if !ok || conn.Label == text {
		return
	}
	_ = c.commit(func() error {
		return c.scene.UpdateConnection(id, scene.ConnectionPatch{Label: &text})
	})
	c.logger.Debug("label committed", "connection", id)
}

// CancelLabel leaves edit mode without touching the scene.
func (c *Controller) CancelLabel() {
	if c.mode == ModeEditingLabel {
		c.stopEditing()
	}
}

// Blur is a loss of focus; it commits like Enter.
func (c *Controller) Blur() {
	c.CommitLabel()
}

func (c *Controller) stopEditing() {
	c.editingID = ""
	c.editBuffer = nil
	c.setMode(ModeIdle)
}
