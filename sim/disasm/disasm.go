// Package disasm renders a decoded instruction stream back into mnemonic
// text, grounded on original_source/src/disassembler.rs's one-line-per-
// instruction-plus-blank-per-operand-byte convention and on
// chriskillpack-bbcdisasm's two-pass (decode, then print) structure. Unlike
// the 6502 prototype it is adapted from, GoldASM's fixed-format opcodes
// never straddle data/code ambiguity, so there is no undocumented-opcode or
// "will this assemble identically" handling here — an unknown opcode byte
// is simply printed as data and disassembly resumes at the next byte,
// exactly per spec.md §7's decode-error policy.
package disasm

import (
	"fmt"
	"strings"

	"github.com/electricboy6/GoldASM/asm/lex"
	"github.com/electricboy6/GoldASM/asm/parse"
	"github.com/electricboy6/GoldASM/asm/symtab"
	"github.com/electricboy6/GoldASM/sim/decode"
)

var aluMnemonics = map[parse.AluOp]string{
	parse.Add:      "add",
	parse.Subtract: "sub",
	parse.Xor:      "xor",
	parse.Xnor:     "xnor",
	parse.Or:       "or",
	parse.Nor:      "nor",
	parse.And:      "and",
	parse.Nand:     "nand",
}

var simpleMnemonics = map[decode.Op]string{
	decode.OpNoop:                     "noop",
	decode.OpSetCarry:                 "sc",
	decode.OpClearCarry:               "clc",
	decode.OpNot:                      "not",
	decode.OpRotateRight:              "ror",
	decode.OpRotateLeft:               "rol",
	decode.OpShiftRight:               "shr",
	decode.OpShiftLeft:                "shl",
	decode.OpPushProgramCounter:       "phpc",
	decode.OpPopProgramCounter:        "plpc",
	decode.OpPopProgramCounterSubroutine: "rts",
	// IncrementProgramCounter is never assembler-emitted (no mnemonic maps
	// to it in asm/parse); the original disassembler.rs hits
	// unimplemented!() here. We have no panic-on-disassemble equivalent, so
	// render a placeholder that makes it obvious this byte stream wasn't
	// produced by the assembler.
	decode.OpIncrementProgramCounter: "incpc",
}

var registerMnemonics = map[decode.Op]string{
	decode.OpPushRegister:                "phr",
	decode.OpPopRegister:                 "plr",
	decode.OpCopyAccumulatorToRegister:   "cpa",
	decode.OpCopyRegisterToAccumulator:   "cpr",
}

var branchMnemonics = map[decode.Op]string{
	decode.OpBranchCarrySet:   "bcs",
	decode.OpBranchCarryClear: "bcc",
	decode.OpBranchNegative:   "bn",
	decode.OpBranchPositive:   "bp",
	decode.OpBranchZero:       "bze",
	decode.OpBranchNotZero:    "bnz",
	decode.OpBranchEqual:      "beq",
	decode.OpBranchNotEqual:   "bne",
	decode.OpBranchGreater:    "bg",
	decode.OpBranchLess:       "bl",
	decode.OpJump:             "jmp",
}

// Disassemble renders image[start:end) into one text line per byte plus
// operand-byte blanks, decorating known symbol addresses with the
// ~label/*pointer prefixes and collapsing the phpc+jmp call sequence into
// a single "jsr" line. table may be nil for an unannotated dump.
func Disassemble(image []byte, start, end uint16, table *symtab.Table) []string {
	var lines []string
	pc := start

	for pc < end {
		if name, ok := subroutineHeader(pc, table); ok {
			lines = append(lines, fmt.Sprintf("sr %s:", name))
		}

		instr, n, err := decode.Decode(image, pc)
		if err != nil {
			lines = append(lines, fmt.Sprintf(".byte 0x%02x", image[pc]))
			pc++
			continue
		}

		if push, ok := instr.(decode.SimpleInstr); ok && push.Op == decode.OpPushProgramCounter {
			jpc := pc + 1
			if jpc < end {
				if jinstr, jn, jerr := decode.Decode(image, jpc); jerr == nil {
					if branch, ok := jinstr.(decode.BranchInstr); ok && branch.Op == decode.OpJump {
						text := "jsr " + formatOperandAddress(branch.Address, jpc+1, table)
						lines = append(lines, decoratePrefix(pc, table)+text)
						// The opcode byte of the absorbed jmp plus its
						// operand bytes all become blank lines, since the
						// phpc byte itself is now represented by the jsr
						// line.
						for i := 0; i < 1+jn; i++ {
							lines = append(lines, "")
						}
						pc = jpc + 1 + uint16(jn)
						continue
					}
				}
			}
		}

		lines = append(lines, decoratePrefix(pc, table)+renderLine(instr, pc, table))
		for i := 0; i < n; i++ {
			lines = append(lines, "")
		}
		pc += uint16(1 + n)
	}

	return lines
}

// subroutineHeader reports the bare subroutine name (without the
// "_Subroutine" suffix asm/lower attaches) when pc is a subroutine's entry
// label, so the caller can print the "sr name:" header spec.md §4.6 calls
// for one line above the body.
func subroutineHeader(pc uint16, table *symtab.Table) (string, bool) {
	if table == nil {
		return "", false
	}
	sym, ok := table.Symbols[pc]
	if !ok || sym.Kind != symtab.KindLabel || !strings.HasSuffix(sym.Name, "_Subroutine") {
		return "", false
	}
	return strings.TrimSuffix(sym.Name, "_Subroutine"), true
}

// decoratePrefix renders the ~label/*pointer prefix for a plain (non
// subroutine-header) symbol definition living at pc.
func decoratePrefix(pc uint16, table *symtab.Table) string {
	if table == nil {
		return ""
	}
	sym, ok := table.Symbols[pc]
	if !ok {
		return ""
	}
	switch sym.Kind {
	case symtab.KindPointer:
		return "*" + sym.Name + " "
	case symtab.KindLabel:
		if strings.HasSuffix(sym.Name, "_Subroutine") {
			return ""
		}
		return "~" + sym.Name + " "
	default:
		return ""
	}
}

func renderLine(instr decode.Instruction, pc uint16, table *symtab.Table) string {
	switch v := instr.(type) {
	case decode.AluInstr:
		name := aluMnemonics[v.Op]
		if v.Pair != nil {
			return fmt.Sprintf("%s %02x, %02x", name, v.Pair[0], v.Pair[1])
		}
		return fmt.Sprintf("%s %02x", name, *v.Register)

	case decode.SimpleInstr:
		return simpleMnemonics[v.Op]

	case decode.RegisterInstr:
		return fmt.Sprintf("%s %02x", registerMnemonics[v.Op], v.Register)

	case decode.LoadAccumulatorInstr:
		if v.Immediate != nil {
			return fmt.Sprintf("lda #0x%02x", v.Immediate.Value)
		}
		return fmt.Sprintf("lda %s", formatOperandAddress(*v.Address, pc+1, table))

	case decode.StoreAccumulatorInstr:
		return fmt.Sprintf("sta %s", formatOperandAddress(v.Address, pc+1, table))

	case decode.BranchInstr:
		name := branchMnemonics[v.Op]
		useStart := pc + 1
		if v.Register != nil {
			useStart = pc + 2
			return fmt.Sprintf("%s %02x, %s", name, *v.Register, formatOperandAddress(v.Address, useStart, table))
		}
		return fmt.Sprintf("%s %s", name, formatOperandAddress(v.Address, useStart, table))

	default:
		return fmt.Sprintf("; unhandled instruction %T", instr)
	}
}

// formatOperandAddress prefers a symbolic rendering: if a recorded use
// site falls on this address's operand bytes, it renders the symbol's
// ~name/*name form instead of a raw literal, so disassembly of an
// assembler-produced image reads like the source that built it.
func formatOperandAddress(addr lex.Address, useStart uint16, table *symtab.Table) string {
	if table != nil {
		for _, idx := range [2]uint16{useStart, useStart + 1} {
			sym, ok := table.Uses[idx]
			if !ok || sym.Value != addr.Value {
				continue
			}
			prefix := "~"
			if sym.Kind == symtab.KindPointer {
				prefix = "*"
			}
			if addr.Index != nil {
				return fmt.Sprintf("%s%s,%02x", prefix, sym.Name, *addr.Index)
			}
			return prefix + sym.Name
		}
	}
	return formatAddressLiteral(addr)
}

func formatAddressLiteral(addr lex.Address) string {
	switch addr.Mode {
	case lex.ZeroPage:
		return fmt.Sprintf("%%%02x", addr.Value)
	case lex.ZeroPageIndexed:
		return fmt.Sprintf("$%02x,%02x", addr.Value, *addr.Index)
	case lex.Indexed:
		return fmt.Sprintf("$%04x,%02x", addr.Value, *addr.Index)
	default:
		return fmt.Sprintf("%%%04x", addr.Value)
	}
}
