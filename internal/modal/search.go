package modal

// handleSearchModeKey composes a `/`/`?` query line; Enter commits the
// search (spec.md §4.13), Escape cancels back to Normal.
func (s *State) handleSearchModeKey(ev KeyEvent) []Command {
	switch ev.Code {
	case "Enter":
		query := s.CommandLine
		reverse := s.pendingSearchReverse
		s.CommandLine = ""
		s.pendingSearchReverse = false
		s.Mode = ModeNormal
		s.Search(query, reverse)
		return nil
	case "Escape":
		s.CommandLine = ""
		s.pendingSearchReverse = false
		s.Mode = ModeNormal
		return nil
	case "Backspace":
		if n := len(s.CommandLine); n > 0 {
			s.CommandLine = s.CommandLine[:n-1]
		}
		return nil
	}
	if len(ev.Code) == 1 {
		s.CommandLine += ev.Code
	}
	return nil
}
