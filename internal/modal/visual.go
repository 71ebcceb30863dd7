package modal

// EnterVisual switches to mode (Visual/VisualLine/VisualBlock), recording
// the current cursor as the anchor (spec.md §4.13).
func (s *State) EnterVisual(mode Mode) {
	s.VisualAnchor = s.Cursor
	s.Mode = mode
}

// SwapAnchor implements `o`: exchange the anchor and the cursor.
func (s *State) SwapAnchor() {
	s.VisualAnchor, s.Cursor = s.Cursor, s.VisualAnchor
}

// VisualRange returns the inclusive [lo, hi] item indices currently
// selected.
func (s *State) VisualRange() (int, int) {
	lo, hi := s.VisualAnchor, s.Cursor
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// VisualIndices expands the anchor-cursor range into an explicit index list.
func (s *State) VisualIndices() []int {
	lo, hi := s.VisualRange()
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

// ExitVisual leaves visual mode, remembering the range for `gv`.
func (s *State) ExitVisual() {
	s.lastVisualAnchor = s.VisualAnchor
	s.lastVisualCursor = s.Cursor
	s.Mode = ModeNormal
}

// Reselect implements `gv`: restore the last visual range.
func (s *State) Reselect(mode Mode) {
	s.VisualAnchor = s.lastVisualAnchor
	s.Cursor = s.lastVisualCursor
	s.Mode = mode
}
