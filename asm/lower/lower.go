// Package lower rewrites the subroutine-call sugar (Subroutine, rts,
// JumpSubroutine) produced by asm/parse into the plain jumps, labels and
// stack operations the encoder actually understands.
package lower

import "github.com/electricboy6/GoldASM/asm/parse"

// Lower runs the subroutine-call desugaring pass.
func Lower(instructions []parse.Instruction) []parse.Instruction {
	out := make([]parse.Instruction, 0, len(instructions))
	for _, instr := range instructions {
		switch v := instr.(type) {
		case parse.SubroutineInstr:
			// Entering a subroutine jumps over its body on fall-through and
			// marks the real entry point one instruction later.
			out = append(out,
				parse.BranchInstr{Op: parse.OpJump, Target: parse.BranchTarget{Name: v.Name + "_EndSubroutine"}},
				parse.LabelInstr{Name: v.Name + "_Subroutine"},
			)
		case parse.ReturnFromSubroutineInstr:
			// The label lets other jumps skip over this subroutine entirely;
			// v.Name already carries its "_EndSubroutine" suffix from parse time.
			out = append(out,
				parse.SimpleInstr{Op: parse.OpPopProgramCounterSubroutine},
				parse.LabelInstr{Name: v.Name},
			)
		case parse.JumpSubroutineInstr:
			jump := parse.BranchInstr{Op: parse.OpJump}
			if v.Name != "" {
				jump.Target = parse.BranchTarget{Name: v.Name + "_Subroutine"}
			} else {
				jump.Target = parse.BranchTarget{Address: v.Address}
			}
			out = append(out, parse.SimpleInstr{Op: parse.OpPushProgramCounter}, jump)
		default:
			out = append(out, instr)
		}
	}
	return out
}
