package modal

import "github.com/omniscope/omniscope/internal/index"

// applyOperator issues the Command(s) for op acting on indices, storing a
// yanked/deleted copy into the selected register (and the default register
// "\"" when a different one was selected, per spec.md §4.13), then returns
// to Normal mode.
func (s *State) applyOperator(op Operator, indices []int) []Command {
	if len(indices) == 0 {
		s.resetComposer()
		return nil
	}

	reg := s.Register
	var cmds []Command

	switch op {
	case OpDelete:
		s.storeRegister(reg, indices)
		if reg != '"' {
			s.storeRegister('"', indices)
		}
		cmds = append(cmds, Command{Kind: CmdDelete, Indices: indices, Register: reg})
	case OpYank:
		s.storeRegister(reg, indices)
		if reg != '"' {
			s.storeRegister('"', indices)
		}
		cmds = append(cmds, Command{Kind: CmdYank, Indices: indices, Register: reg})
	case OpChange:
		cmds = append(cmds, Command{Kind: CmdEditPopup, Indices: indices})
	case OpAddTag:
		cmds = append(cmds, Command{Kind: CmdAddTag, Indices: indices})
	case OpRemoveTag:
		cmds = append(cmds, Command{Kind: CmdRemoveTag, Indices: indices})
	case OpPut:
		cmds = append(cmds, Command{Kind: CmdPut, Indices: indices, Register: reg})
	}

	if s.Mode == ModeVisual || s.Mode == ModeVisualLine || s.Mode == ModeVisualBlock {
		s.ExitVisual()
	}
	s.resetComposer()
	return cmds
}

// storeRegister captures the items at indices into register letter as a
// multi-card register (spec.md §4.13: "a set of cards"). "_" is the black
// hole register and never actually stores anything.
func (s *State) storeRegister(letter byte, indices []int) {
	if letter == '_' {
		return
	}
	cards := make([]*index.Summary, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(s.Items) {
			c := s.Items[i]
			cards = append(cards, &c)
		}
	}
	s.Registers[letter] = Register{Kind: RegCards, Cards: cards}
}
