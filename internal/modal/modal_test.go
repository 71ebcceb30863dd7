package modal

import (
	"testing"

	"github.com/omniscope/omniscope/internal/index"
)

func sampleItems() []index.Summary {
	y2020, y2021 := 2020, 2021
	return []index.Summary{
		{ID: "a", Title: "Attention Is All You Need", Authors: []string{"Vaswani"}, Tags: []string{"ml", "nlp"}, Year: &y2020},
		{ID: "b", Title: "BERT Pretraining", Authors: []string{"Devlin"}, Tags: []string{"ml"}, Year: &y2020},
		{ID: "c", Title: "Convex Optimization", Authors: []string{"Boyd"}, Tags: []string{"math"}, Year: &y2021},
	}
}

func TestMotionJKMovesCursor(t *testing.T) {
	s := New()
	s.Items = sampleItems()
	s.HandleKey(KeyEvent{Code: "j"})
	if s.Cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", s.Cursor)
	}
	s.HandleKey(KeyEvent{Code: "k"})
	if s.Cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", s.Cursor)
	}
}

func TestCountedMotion(t *testing.T) {
	s := New()
	s.Items = sampleItems()
	s.HandleKey(KeyEvent{Code: "2"})
	s.HandleKey(KeyEvent{Code: "j"})
	if s.Cursor != 2 {
		t.Fatalf("expected cursor 2, got %d", s.Cursor)
	}
}

func TestDoubleStrikeOperatorActsOnCurrentItem(t *testing.T) {
	s := New()
	s.Items = sampleItems()
	s.HandleKey(KeyEvent{Code: "d"})
	if s.Mode != ModePending {
		t.Fatalf("expected pending mode after first d")
	}
	cmds := s.HandleKey(KeyEvent{Code: "d"})
	if len(cmds) != 1 || cmds[0].Kind != CmdDelete || len(cmds[0].Indices) != 1 || cmds[0].Indices[0] != 0 {
		t.Fatalf("unexpected commands: %+v", cmds)
	}
	if s.Mode != ModeNormal {
		t.Fatalf("expected normal mode after operator completes")
	}
}

func TestOperatorWithMotionExpandsRange(t *testing.T) {
	s := New()
	s.Items = sampleItems()
	s.HandleKey(KeyEvent{Code: "y"})
	cmds := s.HandleKey(KeyEvent{Code: "j"})
	if len(cmds) != 1 || cmds[0].Kind != CmdYank {
		t.Fatalf("unexpected commands: %+v", cmds)
	}
	if len(cmds[0].Indices) != 2 {
		t.Fatalf("expected 2 indices, got %+v", cmds[0].Indices)
	}
}

func TestTextObjectAnyTagOperator(t *testing.T) {
	// item 0 carries both "ml" and "nlp"; item 1 carries only "ml"; `at`
	// (ANY of the current tags) must still pick up item 1.
	s := New()
	s.Items = sampleItems()
	s.HandleKey(KeyEvent{Code: "d"})
	s.HandleKey(KeyEvent{Code: "a"})
	cmds := s.HandleKey(KeyEvent{Code: "t"})
	if len(cmds) != 1 || cmds[0].Kind != CmdDelete {
		t.Fatalf("unexpected commands: %+v", cmds)
	}
	if len(cmds[0].Indices) != 2 {
		t.Fatalf("expected 2 indices sharing at least one tag, got %+v", cmds[0].Indices)
	}
}

func TestTextObjectAllTagOperatorIsStricter(t *testing.T) {
	// `it` (ALL current tags) requires every one of item 0's tags, which
	// item 1 doesn't fully have, so only item 0 itself matches.
	s := New()
	s.Items = sampleItems()
	s.HandleKey(KeyEvent{Code: "d"})
	s.HandleKey(KeyEvent{Code: "i"})
	cmds := s.HandleKey(KeyEvent{Code: "t"})
	if len(cmds) != 1 || len(cmds[0].Indices) != 1 || cmds[0].Indices[0] != 0 {
		t.Fatalf("unexpected commands: %+v", cmds)
	}
}

func TestMarkSetAndJump(t *testing.T) {
	s := New()
	s.Items = sampleItems()
	s.Cursor = 2
	s.HandleKey(KeyEvent{Code: "m"})
	s.HandleKey(KeyEvent{Code: "x"})
	s.Cursor = 0
	s.HandleKey(KeyEvent{Code: "'"})
	s.HandleKey(KeyEvent{Code: "x"})
	if s.Cursor != 2 {
		t.Fatalf("expected cursor 2 after mark jump, got %d", s.Cursor)
	}
}

func TestMacroRecordAndReplay(t *testing.T) {
	s := New()
	s.Items = sampleItems()
	s.HandleKey(KeyEvent{Code: "q"})
	s.HandleKey(KeyEvent{Code: "a"})
	s.HandleKey(KeyEvent{Code: "j"})
	s.HandleKey(KeyEvent{Code: "q"})
	if s.Cursor != 1 {
		t.Fatalf("expected cursor 1 after recorded motion, got %d", s.Cursor)
	}
	s.Cursor = 0
	s.HandleKey(KeyEvent{Code: "@"})
	s.HandleKey(KeyEvent{Code: "a"})
	if s.Cursor != 1 {
		t.Fatalf("expected cursor 1 after macro replay, got %d", s.Cursor)
	}
}

func TestParseCommandSort(t *testing.T) {
	cmds := ParseCommand("sort year")
	if len(cmds) != 1 || cmds[0].Kind != CmdSort || cmds[0].Field != "year" {
		t.Fatalf("unexpected commands: %+v", cmds)
	}
}

func TestParseCommandSubstituteWithGlobalFlag(t *testing.T) {
	cmds := ParseCommand("%s/foo/bar/g")
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %+v", cmds)
	}
	c := cmds[0]
	if c.Kind != CmdSubstitute || c.Pattern != "foo" || c.Replacement != "bar" || !c.Global || !c.WholeList {
		t.Fatalf("unexpected parse: %+v", c)
	}
}

func TestParseCommandWQ(t *testing.T) {
	cmds := ParseCommand("wq")
	if len(cmds) != 2 || cmds[0].Kind != CmdWrite || cmds[1].Kind != CmdQuit {
		t.Fatalf("unexpected commands: %+v", cmds)
	}
}
