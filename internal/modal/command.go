package modal

import "strings"

// handleCommandModeKey composes a `:` command line with up/down history
// cycling, committing on Enter (spec.md §4.13).
func (s *State) handleCommandModeKey(ev KeyEvent) []Command {
	switch ev.Code {
	case "Enter":
		line := s.CommandLine
		s.CommandLine = ""
		s.Mode = ModeNormal
		if line == "" {
			return nil
		}
		s.CommandHistory = append(s.CommandHistory, line)
		s.commandHistoryPos = len(s.CommandHistory)
		return ParseCommand(line)
	case "Escape":
		s.CommandLine = ""
		s.Mode = ModeNormal
		return nil
	case "Backspace":
		if n := len(s.CommandLine); n > 0 {
			s.CommandLine = s.CommandLine[:n-1]
		}
		return nil
	case "Up":
		if s.commandHistoryPos > 0 {
			s.commandHistoryPos--
			s.CommandLine = s.CommandHistory[s.commandHistoryPos]
		}
		return nil
	case "Down":
		if s.commandHistoryPos < len(s.CommandHistory)-1 {
			s.commandHistoryPos++
			s.CommandLine = s.CommandHistory[s.commandHistoryPos]
		} else {
			s.commandHistoryPos = len(s.CommandHistory)
			s.CommandLine = ""
		}
		return nil
	}
	if len(ev.Code) == 1 {
		s.CommandLine += ev.Code
	}
	return nil
}

// ParseCommand parses one `:`-line into the Command(s) it issues, per the
// recognized-command list in spec.md §4.13.
func ParseCommand(line string) []Command {
	line = strings.TrimSpace(line)
	wholeList := strings.HasPrefix(line, "%")
	if wholeList {
		line = line[1:]
	}

	if strings.HasPrefix(line, "s/") || strings.HasPrefix(line, "g/") {
		return parseSlashForm(line, wholeList)
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, arg := fields[0], strings.Join(fields[1:], " ")

	switch name {
	case "q":
		return []Command{{Kind: CmdQuit}}
	case "w":
		return []Command{{Kind: CmdWrite}}
	case "wq":
		return []Command{{Kind: CmdWrite}, {Kind: CmdQuit}}
	case "sort":
		return []Command{{Kind: CmdSort, Field: arg}}
	case "lib":
		return []Command{{Kind: CmdSwitchLibrary, Arg: arg}}
	case "tag":
		return []Command{{Kind: CmdFilterTag, Tag: arg}}
	case "marks":
		return []Command{{Kind: CmdShowMarks}}
	case "reg":
		var reg byte
		if arg != "" {
			reg = arg[0]
		}
		return []Command{{Kind: CmdShowRegister, Register: reg}}
	case "delmarks":
		return []Command{{Kind: CmdDeleteMarks, Arg: arg}}
	case "earlier":
		return []Command{{Kind: CmdEarlier, Arg: arg}}
	case "later":
		return []Command{{Kind: CmdLater, Arg: arg}}
	case "copen":
		return []Command{{Kind: CmdQuickfixOpen}}
	case "cclose":
		return []Command{{Kind: CmdQuickfixClose}}
	case "cnext":
		return []Command{{Kind: CmdQuickfixNext}}
	case "cprev":
		return []Command{{Kind: CmdQuickfixPrev}}
	case "cdo":
		return []Command{{Kind: CmdQuickfixDo, Arg: arg}}
	}
	return nil
}

// parseSlashForm handles `g/<pat>/<cmd>` and `[%]s/<pat>/<repl>/[g]`, both
// slash-delimited with the delimiter escapable as `\/`.
func parseSlashForm(line string, wholeList bool) []Command {
	kind := line[0]
	parts := splitUnescaped(line[2:], '/')

	switch kind {
	case 'g':
		if len(parts) < 2 {
			return nil
		}
		return []Command{{Kind: CmdGlobalExec, Pattern: parts[0], Arg: parts[1]}}
	case 's':
		if len(parts) < 2 {
			return nil
		}
		global := len(parts) >= 3 && strings.Contains(parts[2], "g")
		return []Command{{Kind: CmdSubstitute, Pattern: parts[0], Replacement: parts[1], Global: global, WholeList: wholeList}}
	}
	return nil
}

func splitUnescaped(s string, delim byte) []string {
	var out []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == delim {
			cur.WriteByte(delim)
			i++
			continue
		}
		if s[i] == delim {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	out = append(out, cur.String())
	return out
}
