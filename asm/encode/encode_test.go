package encode

import (
	"testing"

	"github.com/electricboy6/GoldASM/asm/lex"
	"github.com/electricboy6/GoldASM/asm/parse"
	"github.com/electricboy6/GoldASM/internal/isa"
)

func reg(n lex.Register) *lex.Register { return &n }

func TestEncodeNoop(t *testing.T) {
	image, _, err := Encode([]parse.Instruction{parse.SimpleInstr{Op: parse.OpNoop}}, 0x10)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if image[0] != isa.Noop {
		t.Fatalf("image[0] = %#x, want Noop", image[0])
	}
}

func TestEncodeAluOneAndTwoRegister(t *testing.T) {
	instrs := []parse.Instruction{
		parse.AluInstr{Op: parse.Add, Register: reg(3)},
		parse.AluInstr{Op: parse.Subtract, Pair: &[2]lex.Register{2, 4}},
	}
	image, _, err := Encode(instrs, 0x10)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if image[0] != isa.AddRegister || image[1] != 3 {
		t.Fatalf("got %x, want add-register 3", image[:2])
	}
	if image[2] != isa.SubPair || image[3] != 2 || image[4] != 4 {
		t.Fatalf("got %x, want sub-pair 2,4", image[2:5])
	}
}

func TestEncodeBranchToLabel(t *testing.T) {
	instrs := []parse.Instruction{
		parse.BranchInstr{Op: parse.OpJump, Target: parse.BranchTarget{Name: "main.target"}},
		parse.SimpleInstr{Op: parse.OpNoop},
		parse.LabelInstr{Name: "main.target"},
		parse.SimpleInstr{Op: parse.OpNot},
	}
	image, table, err := Encode(instrs, 0x10)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if image[0] != isa.JumpAbsolute {
		t.Fatalf("image[0] = %#x, want JumpAbsolute", image[0])
	}
	want := uint16(image[1])<<8 | uint16(image[2])
	if want != 4 {
		t.Fatalf("resolved jump target = %#x, want 4 (address of Label)", want)
	}
	sym, ok := table.Uses[2]
	if !ok || sym.Name != "main.target" {
		t.Fatalf("expected symbol table use entry at index 2, got %+v", table.Uses)
	}
}

func TestEncodeUnknownLabelErrors(t *testing.T) {
	instrs := []parse.Instruction{
		parse.BranchInstr{Op: parse.OpJump, Target: parse.BranchTarget{Name: "main.nowhere"}},
	}
	if _, _, err := Encode(instrs, 0x10); err == nil {
		t.Fatalf("expected error for unresolved label")
	}
}

func TestEncodePointerSixteenBit(t *testing.T) {
	instrs := []parse.Instruction{
		parse.LoadAccumulatorInstr{Address: &lex.Address{PointerRef: "buf"}},
		parse.PointerInstr{Name: "buf", Address: lex.Address{Value: 0x1234, Mode: lex.Absolute}},
	}
	image, table, err := Encode(instrs, 0x10)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if image[0] != isa.LoadAccumulatorAbsolute {
		t.Fatalf("image[0] = %#x, want LoadAccumulatorAbsolute", image[0])
	}
	if image[1] != 0x12 || image[2] != 0x34 {
		t.Fatalf("got %x, want pointer value 0x1234", image[1:3])
	}
	if _, ok := table.Symbols[0x1234]; !ok {
		t.Fatalf("expected pointer definition recorded in symbol table")
	}
}

func TestEncodeOriginDirective(t *testing.T) {
	instrs := []parse.Instruction{
		parse.SetOriginInstr{Address: &lex.Address{Value: 0x0004, Mode: lex.Absolute}},
		parse.SimpleInstr{Op: parse.OpNoop},
	}
	image, _, err := Encode(instrs, 0x10)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if image[4] != isa.Noop {
		t.Fatalf("expected Noop placed at origin 0x0004, got %x", image[:6])
	}
}

func TestEncodeBareOriginRequiresTwoPriorOrigins(t *testing.T) {
	instrs := []parse.Instruction{
		parse.SetOriginInstr{Address: &lex.Address{Value: 0x0004, Mode: lex.Absolute}},
		parse.SetOriginInstr{},
	}
	if _, _, err := Encode(instrs, 0x10); err == nil {
		t.Fatalf("expected error: bare .org needs two prior .org <addr> directives")
	}
}
