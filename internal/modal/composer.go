package modal

import "strconv"

// twoKeyPrefixes is the pending_key lookahead alphabet spec.md §4.13 names.
// `"` selects the register for the next operator. Prefixes with no
// second-key semantics here (z, [, ], space, Q) are still recognized — they
// consume the following key and reset the composer without issuing a
// Command — so a host never gets stuck mid-sequence on an unimplemented
// leader.
var twoKeyPrefixes = map[string]bool{
	"g": true, "z": true, "m": true, "'": true,
	"i": true, "a": true, "f": true, "F": true, "t": true, "T": true,
	"[": true, "]": true, " ": true, "\"": true, "Q": true, "@": true,
}

// HandleKey feeds one KeyEvent through the composer and returns the
// Commands it produces, if any. The host must keep s.Items/s.Cursor current
// before calling; HandleKey mutates s.Cursor directly for motions and
// returns Commands for anything the library core or UI must act on.
func (s *State) HandleKey(ev KeyEvent) []Command {
	if s.MacroRecording != 0 && !(s.PendingKey == "q" || ev.Code == "q") {
		s.RecordKey(ev)
	}

	switch s.Mode {
	case ModeCommand:
		return s.handleCommandModeKey(ev)
	case ModeSearch:
		return s.handleSearchModeKey(ev)
	case ModeVisual, ModeVisualLine, ModeVisualBlock:
		return s.handleVisualKey(ev)
	default:
		return s.handleNormalKey(ev)
	}
}

func (s *State) handleNormalKey(ev KeyEvent) []Command {
	if ev.Ctrl && ev.Code == "o" {
		s.JumpBack()
		return nil
	}
	if ev.Ctrl && ev.Code == "i" {
		s.JumpForward()
		return nil
	}

	if s.PendingKey != "" {
		return s.handlePendingKey(ev)
	}

	// "q" starts a q<a-z> recording sequence (PendingKey="q" awaits the
	// register letter); a bare "q" while already recording stops it
	// instead, per spec.md §4.13: "the recording q itself is not
	// captured; the next q stops".
	if ev.Code == "q" {
		if s.MacroRecording != 0 {
			s.StopRecording()
			return nil
		}
		s.PendingKey = "q"
		return nil
	}

	// Count accumulation: digits 1-9 always start/continue a count; 0 only
	// continues one already building, otherwise it's the first-item motion.
	if len(ev.Code) == 1 && ev.Code[0] >= '0' && ev.Code[0] <= '9' {
		d := int(ev.Code[0] - '0')
		if d == 0 && s.Count == 0 {
			return s.applyMotion("0")
		}
		s.Count = clampCount(s.Count*10 + d)
		return nil
	}

	if twoKeyPrefixes[ev.Code] {
		s.PendingKey = ev.Code
		return nil
	}

	switch ev.Code {
	case "Escape":
		s.resetComposer()
		return nil
	case ";":
		s.RepeatFind(false)
		return nil
	case ",":
		s.RepeatFind(true)
		return nil
	case "n":
		s.RepeatSearch(false)
		return nil
	case "N":
		s.RepeatSearch(true)
		return nil
	case "/":
		s.Mode = ModeSearch
		s.CommandLine = ""
		return nil
	case "?":
		s.Mode = ModeSearch
		s.CommandLine = ""
		s.pendingSearchReverse = true
		return nil
	case ":":
		s.Mode = ModeCommand
		s.CommandLine = ""
		return nil
	case "v":
		s.EnterVisual(ModeVisual)
		return nil
	case "V":
		s.EnterVisual(ModeVisualLine)
		return nil
	case "d", "y", "c", ">", "<":
		return s.handleOperatorKey(ev.Code)
	case "j", "k", "G", "$":
		return s.applyMotion(ev.Code)
	}
	return nil
}

func (s *State) handlePendingKey(ev KeyEvent) []Command {
	prefix := s.PendingKey
	s.PendingKey = ""

	switch prefix {
	case "g":
		if ev.Code == "g" {
			return s.applyMotion("gg")
		}
		if ev.Code == "v" {
			s.Reselect(ModeVisual)
		}
		s.resetComposer()
		return nil
	case "m":
		if len(ev.Code) == 1 {
			s.SetMark(ev.Code[0])
		}
		s.resetComposer()
		return nil
	case "'":
		if ev.Code == "'" {
			s.JumpToPrevious()
		} else if len(ev.Code) == 1 {
			s.JumpToMark(ev.Code[0])
		}
		s.resetComposer()
		return nil
	case "f", "F", "t", "T":
		if len(ev.Code) == 1 {
			s.HandleFind(prefix, ev.Code[0])
		} else {
			s.resetComposer()
		}
		return nil
	case "i", "a":
		if s.Operator == OpNone {
			s.resetComposer()
			return nil
		}
		kind := TextObjectKind(ev.Code)
		indices := s.resolveTextObject(prefix, kind)
		return s.applyOperator(s.Operator, indices)
	case "\"":
		if len(ev.Code) == 1 {
			s.Register = ev.Code[0]
		}
		return nil
	case "q":
		if len(ev.Code) == 1 {
			s.StartRecording(ev.Code[0])
		}
		return nil
	case "@":
		if len(ev.Code) == 1 {
			seq, ok := s.Macro(ev.Code[0])
			if ok {
				return s.replay(seq)
			}
		}
		return nil
	}
	s.resetComposer()
	return nil
}

// replay feeds a recorded macro's keys back through the composer without
// re-recording them.
func (s *State) replay(seq []KeyEvent) []Command {
	var out []Command
	saved := s.MacroRecording
	s.MacroRecording = 0
	for _, ev := range seq {
		out = append(out, s.HandleKey(ev)...)
	}
	s.MacroRecording = saved
	return out
}

func (s *State) handleOperatorKey(code string) []Command {
	op := operatorFor(code)
	if s.Operator == op {
		// Double-strike: act linewise on the current item.
		return s.applyOperator(op, []int{s.Cursor})
	}
	if s.Operator != OpNone {
		s.resetComposer()
		return nil
	}
	s.Operator = op
	s.Mode = ModePending
	return nil
}

func operatorFor(code string) Operator {
	switch code {
	case "d":
		return OpDelete
	case "y":
		return OpYank
	case "c":
		return OpChange
	case ">":
		return OpAddTag
	case "<":
		return OpRemoveTag
	}
	return OpNone
}

// applyMotion resolves a plain motion; if an operator is pending, it
// expands to the inclusive cursor-to-target range and applies the
// operator, otherwise it just moves the cursor.
func (s *State) applyMotion(code string) []Command {
	count := s.effectiveCount()
	explicit := s.Count != 0
	target, ok := s.resolveMotion(code, count, explicit)
	if !ok {
		s.resetComposer()
		return nil
	}
	if s.Operator != OpNone {
		lo, hi := target, s.Cursor
		if lo > hi {
			lo, hi = hi, lo
		}
		indices := make([]int, 0, hi-lo+1)
		for i := lo; i <= hi; i++ {
			indices = append(indices, i)
		}
		return s.applyOperator(s.Operator, indices)
	}
	s.pushJumpFrom(s.Cursor)
	s.Cursor = target
	s.resetComposer()
	return []Command{{Kind: CmdMoveCursor, Indices: []int{target}}}
}

func (s *State) handleVisualKey(ev KeyEvent) []Command {
	switch ev.Code {
	case "Escape":
		s.ExitVisual()
		return nil
	case "o":
		s.SwapAnchor()
		return nil
	case "d", "y", ">", "<":
		return s.applyOperator(operatorFor(ev.Code), s.VisualIndices())
	case "j", "k", "G", "$", "0":
		count := s.effectiveCount()
		explicit := s.Count != 0
		if target, ok := s.resolveMotion(ev.Code, count, explicit); ok {
			s.Cursor = target
		}
		s.Count = 0
		return nil
	}
	if len(ev.Code) == 1 && ev.Code[0] >= '1' && ev.Code[0] <= '9' {
		d, _ := strconv.Atoi(ev.Code)
		s.Count = clampCount(s.Count*10 + d)
	}
	return nil
}
