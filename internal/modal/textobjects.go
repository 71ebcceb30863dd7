package modal

import "github.com/omniscope/omniscope/internal/index"

// resolveTextObject expands a text object relative to s.Items[s.Cursor],
// returning the item indices it covers (spec.md §4.13). scope is "i" or
// "a"; it only changes the result for kind == TOTag.
func (s *State) resolveTextObject(scope string, kind TextObjectKind) []int {
	if len(s.Items) == 0 {
		return nil
	}
	cur := s.Items[s.Cursor]

	switch kind {
	case TOBook:
		return []int{s.Cursor}
	case TOLibrary:
		return s.indicesWhere(func(it index.Summary) bool {
			return sharesAny(it.Libraries, cur.Libraries)
		})
	case TOAuthor:
		if len(cur.Authors) == 0 {
			return []int{s.Cursor}
		}
		primary := cur.Authors[0]
		return s.indicesWhere(func(it index.Summary) bool {
			return len(it.Authors) > 0 && it.Authors[0] == primary
		})
	case TOTag:
		if len(cur.Tags) == 0 {
			return []int{s.Cursor}
		}
		if scope == "a" {
			return s.indicesWhere(func(it index.Summary) bool {
				return sharesAny(it.Tags, cur.Tags)
			})
		}
		return s.indicesWhere(func(it index.Summary) bool {
			return containsAll(it.Tags, cur.Tags)
		})
	case TOYear:
		if cur.Year == nil {
			return []int{s.Cursor}
		}
		return s.indicesWhere(func(it index.Summary) bool {
			return it.Year != nil && *it.Year == *cur.Year
		})
	case TOVisible:
		out := make([]int, len(s.Items))
		for i := range s.Items {
			out[i] = i
		}
		return out
	}
	return nil
}

func (s *State) indicesWhere(pred func(index.Summary) bool) []int {
	var out []int
	for i, it := range s.Items {
		if pred(it) {
			out = append(out, i)
		}
	}
	return out
}

func sharesAny(a, b []string) bool {
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	for _, v := range a {
		if set[v] {
			return true
		}
	}
	return false
}

func containsAll(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, v := range have {
		set[v] = true
	}
	for _, w := range want {
		if !set[w] {
			return false
		}
	}
	return true
}
