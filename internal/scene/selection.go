package scene

func (s *Scene) ClearSelection() {
	for i := range s.Components {
		s.Components[i].Selected = false
	}
	for i := range s.Connections {
		s.Connections[i].Selected = false
	}
}

// SelectComponent makes id the only selected element.
func (s *Scene) SelectComponent(id string) bool {
	s.ClearSelection()
	if i := s.componentIndex(id); i >= 0 {
		s.Components[i].Selected = true
		return true
	}
	return false
}

// SelectConnection makes id the only selected element.
func (s *Scene) SelectConnection(id string) bool {
	s.ClearSelection()
	if i := s.connectionIndex(id); i >= 0 {
		s.Connections[i].Selected = true
		return true
	}
	return false
}

func (s *Scene) SelectAllComponents() {
	for i := range s.Components {
		s.Components[i].Selected = true
	}
}

func (s *Scene) SelectedComponents() []Component {
	var out []Component
	for _, c := range s.Components {
		if c.Selected {
			out = append(out, c)
		}
	}
	return out
}
