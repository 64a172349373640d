package disasm

import (
	"strings"
	"testing"

	"github.com/electricboy6/GoldASM/asm/symtab"
	"github.com/electricboy6/GoldASM/internal/isa"
)

func TestDisassembleSimpleNoOperand(t *testing.T) {
	image := []byte{isa.Noop, isa.SetCarry}
	lines := Disassemble(image, 0, 2, nil)
	want := []string{"noop", "sc"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
}

func TestDisassembleLineCountTracksByteOffset(t *testing.T) {
	// lda %1234 is a 3-byte instruction (opcode + 2 address bytes): one
	// mnemonic line plus two blank lines, so line index == byte index.
	image := []byte{isa.LoadAccumulatorAbsolute, 0x12, 0x34, isa.Noop}
	lines := Disassemble(image, 0, 4, nil)
	if len(lines) != 4 {
		t.Fatalf("len(lines) = %d, want 4", len(lines))
	}
	if lines[0] != "lda %1234" {
		t.Fatalf("lines[0] = %q, want %q", lines[0], "lda %1234")
	}
	if lines[1] != "" || lines[2] != "" {
		t.Fatalf("expected blank operand-byte lines, got %q, %q", lines[1], lines[2])
	}
	if lines[3] != "noop" {
		t.Fatalf("lines[3] = %q, want %q", lines[3], "noop")
	}
}

func TestDisassembleAluOneAndTwoRegister(t *testing.T) {
	image := []byte{isa.AddRegister, 3, isa.SubPair, 1, 2}
	lines := Disassemble(image, 0, 5, nil)
	if lines[0] != "add 03" {
		t.Fatalf("lines[0] = %q, want %q", lines[0], "add 03")
	}
	if lines[2] != "sub 01, 02" {
		t.Fatalf("lines[2] = %q, want %q", lines[2], "sub 01, 02")
	}
}

func TestDisassembleUnknownOpcodeEmitsByteAndResyncs(t *testing.T) {
	// 0xFF happens to be unassigned in internal/isa; the decoder should
	// treat it as data and resume decoding at the very next byte, per
	// spec.md §7's decode-error policy.
	image := []byte{0xFF, isa.Noop}
	lines := Disassemble(image, 0, 2, nil)
	if lines[0] != ".byte 0xff" {
		t.Fatalf("lines[0] = %q, want %q", lines[0], ".byte 0xff")
	}
	if lines[1] != "noop" {
		t.Fatalf("lines[1] = %q, want %q", lines[1], "noop")
	}
}

func TestDisassembleJsrPeephole(t *testing.T) {
	// phpc; jmp %0010 collapses into one "jsr %0010" line, consuming both
	// instructions' bytes (1 + 1 + 2 = 4) as one text line plus 3 blanks.
	image := []byte{isa.PushProgramCounter, isa.JumpAbsolute, 0x00, 0x10}
	lines := Disassemble(image, 0, 4, nil)
	if len(lines) != 4 {
		t.Fatalf("len(lines) = %d, want 4", len(lines))
	}
	if lines[0] != "jsr %0010" {
		t.Fatalf("lines[0] = %q, want %q", lines[0], "jsr %0010")
	}
	for i := 1; i < 4; i++ {
		if lines[i] != "" {
			t.Fatalf("lines[%d] = %q, want blank", i, lines[i])
		}
	}
}

func TestDisassembleSymbolDecoration(t *testing.T) {
	table := symtab.New()
	table.AddLabel("main.loop", 0)
	table.AddPointer("main.buf", 3)

	image := []byte{isa.Noop, isa.LoadAccumulatorAbsolute, 0x00, 0x03}
	table.AddPointerUse("main.buf", 3, 2)

	lines := Disassemble(image, 0, 4, table)
	if lines[0] != "~main.loop noop" {
		t.Fatalf("lines[0] = %q, want %q", lines[0], "~main.loop noop")
	}
	if lines[1] != "lda *main.buf" {
		t.Fatalf("lines[1] = %q, want %q", lines[1], "lda *main.buf")
	}
}

func TestDisassembleSubroutineHeader(t *testing.T) {
	table := symtab.New()
	table.AddLabel("main.helper_Subroutine", 5)

	image := []byte{isa.Noop, isa.Noop, isa.Noop, isa.Noop, isa.Noop, isa.Noop}
	lines := Disassemble(image, 0, 6, table)
	if lines[5] != "sr main.helper:" {
		t.Fatalf("lines[5] = %q, want %q", lines[5], "sr main.helper:")
	}
	if lines[6] != "noop" {
		t.Fatalf("lines[6] = %q, want %q", lines[6], "noop")
	}
}

func TestDisassembleBranchRegisterCompare(t *testing.T) {
	image := []byte{isa.BranchEqualAbsolute, 2, 0x01, 0x00}
	lines := Disassemble(image, 0, 4, nil)
	if lines[0] != "beq 02, %0100" {
		t.Fatalf("lines[0] = %q, want %q", lines[0], "beq 02, %0100")
	}
}
