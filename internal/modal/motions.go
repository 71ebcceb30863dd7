package modal

import "strings"

// resolveMotion applies a simple (non-find, non-search) motion code and
// returns the resulting cursor index. count is the accumulated count
// (defaulting to 1). explicitCount reports whether a count prefix was
// actually typed, which changes G/gg's target per spec.md §4.13.
func (s *State) resolveMotion(code string, count int, explicitCount bool) (int, bool) {
	n := len(s.Items)
	if n == 0 {
		return 0, false
	}
	switch code {
	case "j":
		return clampIndex(s.Cursor+count, n), true
	case "k":
		return clampIndex(s.Cursor-count, n), true
	case "G":
		if explicitCount {
			return clampIndex(count-1, n), true
		}
		return n - 1, true
	case "gg":
		if explicitCount {
			return clampIndex(count-1, n), true
		}
		return 0, true
	case "0":
		return 0, true
	case "$":
		return n - 1, true
	}
	return s.Cursor, false
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// resolveFind implements f/F/t/T: find the n-th item whose title (case
// insensitive) starts with c, landing on the match (f/F) or one short of it
// (t/T), searching forward (f/t) or backward (F/T) from the cursor.
func (s *State) resolveFind(motion string, c byte, count int) (int, bool) {
	n := len(s.Items)
	if n == 0 {
		return 0, false
	}
	forward := motion == "f" || motion == "t"
	till := motion == "t" || motion == "T"
	target := strings.ToLower(string(rune(c)))

	found := 0
	if forward {
		for i := s.Cursor + 1; i < n; i++ {
			if titleStartsWith(s.Items[i].Title, target) {
				found++
				if found == count {
					if till {
						return i - 1, true
					}
					return i, true
				}
			}
		}
	} else {
		for i := s.Cursor - 1; i >= 0; i-- {
			if titleStartsWith(s.Items[i].Title, target) {
				found++
				if found == count {
					if till {
						return i + 1, true
					}
					return i, true
				}
			}
		}
	}
	return s.Cursor, false
}

func titleStartsWith(title, prefix string) bool {
	if len(title) == 0 {
		return false
	}
	return strings.HasPrefix(strings.ToLower(title), prefix)
}

// HandleFind processes f/F/t/T followed by their target character, updating
// LastFindCode/LastFindMotion for ;/, repetition, and moves the cursor.
func (s *State) HandleFind(motion string, c byte) {
	count := s.effectiveCount()
	s.LastFindMotion = motion
	s.LastFindCode = string(rune(c))
	if idx, ok := s.resolveFind(motion, c, count); ok {
		s.Cursor = idx
	}
	s.resetComposer()
}

// RepeatFind implements ';' (repeat last find) and ',' (repeat reversed).
func (s *State) RepeatFind(reverse bool) {
	if s.LastFindMotion == "" || s.LastFindCode == "" {
		return
	}
	motion := s.LastFindMotion
	if reverse {
		motion = reverseFindMotion(motion)
	}
	count := s.effectiveCount()
	if idx, ok := s.resolveFind(motion, s.LastFindCode[0], count); ok {
		s.Cursor = idx
	}
	s.resetComposer()
}

func reverseFindMotion(m string) string {
	switch m {
	case "f":
		return "F"
	case "F":
		return "f"
	case "t":
		return "T"
	case "T":
		return "t"
	}
	return m
}

// Search sets the last search query/direction and jumps to the first match
// after (forward) / before (reverse) the cursor, wrapping if needed.
func (s *State) Search(query string, reverse bool) {
	s.LastSearchQuery = query
	s.LastSearchReverse = reverse
	s.jumpToSearch(query, reverse, s.Cursor)
}

// RepeatSearch implements n (same direction) / N (opposite direction).
func (s *State) RepeatSearch(opposite bool) {
	if s.LastSearchQuery == "" {
		return
	}
	reverse := s.LastSearchReverse
	if opposite {
		reverse = !reverse
	}
	s.jumpToSearch(s.LastSearchQuery, reverse, s.Cursor)
}

func (s *State) jumpToSearch(query string, reverse bool, from int) {
	n := len(s.Items)
	if n == 0 {
		return
	}
	q := strings.ToLower(query)
	if reverse {
		for i := 1; i <= n; i++ {
			idx := ((from-i)%n + n) % n
			if strings.Contains(strings.ToLower(s.Items[idx].Title), q) {
				s.pushJumpFrom(s.Cursor)
				s.Cursor = idx
				return
			}
		}
		return
	}
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if strings.Contains(strings.ToLower(s.Items[idx].Title), q) {
			s.pushJumpFrom(s.Cursor)
			s.Cursor = idx
			return
		}
	}
}
