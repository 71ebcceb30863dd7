package modal

// SetMark stores the current cursor position under letter (spec.md §4.13:
// "m<a-z> stores the current index under that letter").
func (s *State) SetMark(letter byte) {
	if len(s.Items) == 0 {
		return
	}
	s.Marks[letter] = Mark{Index: s.Cursor, CardID: s.Items[s.Cursor].ID}
}

// JumpToMark moves the cursor to the mark stored under letter, pushing the
// pre-jump position onto the jump list and into the '' mark. ok is false if
// no such mark exists or it no longer resolves within the current items.
func (s *State) JumpToMark(letter byte) bool {
	m, found := s.Marks[letter]
	if !found {
		return false
	}
	idx := s.resolveMarkIndex(m)
	if idx < 0 {
		return false
	}
	s.pushJumpFrom(s.Cursor)
	s.Marks['\''] = Mark{Index: s.Cursor, CardID: currentCardID(s)}
	s.Cursor = idx
	return true
}

// JumpToPrevious implements '' — jump back to the position before the last
// jump motion.
func (s *State) JumpToPrevious() bool {
	return s.JumpToMark('\'')
}

// resolveMarkIndex finds m's card in the current item list by ID first
// (items may have been reordered or filtered since the mark was set),
// falling back to the raw index if the card is no longer present.
func (s *State) resolveMarkIndex(m Mark) int {
	for i, it := range s.Items {
		if it.ID == m.CardID {
			return i
		}
	}
	if m.Index >= 0 && m.Index < len(s.Items) {
		return m.Index
	}
	return -1
}

func currentCardID(s *State) string {
	if s.Cursor < 0 || s.Cursor >= len(s.Items) {
		return ""
	}
	return s.Items[s.Cursor].ID
}

// DeleteMarks removes each letter in letters from the mark table
// (`:delmarks <chars>`).
func (s *State) DeleteMarks(letters string) {
	for i := 0; i < len(letters); i++ {
		delete(s.Marks, letters[i])
	}
}
