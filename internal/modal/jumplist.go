package modal

// pushJumpFrom records the pre-motion position onto the jump list, bounded
// to maxJumpList entries, truncating the forward tail and suppressing
// duplicate consecutive entries (spec.md §4.13).
func (s *State) pushJumpFrom(index int) {
	if index < 0 || index >= len(s.Items) {
		return
	}
	entry := Mark{Index: index, CardID: s.Items[index].ID}

	if s.JumpPos < len(s.JumpList) {
		s.JumpList = s.JumpList[:s.JumpPos]
	}
	if n := len(s.JumpList); n > 0 && s.JumpList[n-1].CardID == entry.CardID {
		s.JumpPos = n
		return
	}
	s.JumpList = append(s.JumpList, entry)
	if len(s.JumpList) > maxJumpList {
		s.JumpList = s.JumpList[len(s.JumpList)-maxJumpList:]
	}
	s.JumpPos = len(s.JumpList)
}

// JumpBack implements Ctrl-O: walk back one entry in the jump list.
func (s *State) JumpBack() bool {
	if s.JumpPos == 0 {
		return false
	}
	s.JumpPos--
	idx := s.resolveMarkIndex(s.JumpList[s.JumpPos])
	if idx < 0 {
		return false
	}
	s.Cursor = idx
	return true
}

// JumpForward implements Ctrl-I: walk forward one entry in the jump list.
func (s *State) JumpForward() bool {
	if s.JumpPos >= len(s.JumpList) {
		return false
	}
	idx := s.resolveMarkIndex(s.JumpList[s.JumpPos])
	s.JumpPos++
	if idx < 0 {
		return false
	}
	s.Cursor = idx
	return true
}
