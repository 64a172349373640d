package exec

import (
	"testing"

	"github.com/electricboy6/GoldASM/internal/isa"
)

func TestResetInitialStatusIsZeroFlag(t *testing.T) {
	c := New()
	if c.Status != isa.FlagZero {
		t.Fatalf("Status = %#02x, want %#02x (Zero set)", c.Status, isa.FlagZero)
	}
}

func TestResetLoadsVectorBigEndian(t *testing.T) {
	c := New()
	c.Memory[isa.ResetVectorLow] = 0x12
	c.Memory[isa.ResetVectorHigh] = 0x34
	c.Reset()
	if c.ProgramCounter != 0x1234 {
		t.Fatalf("ProgramCounter = %#04x, want 0x1234", c.ProgramCounter)
	}
}

func TestFlagSemanticsCarryFromAddOverflow(t *testing.T) {
	// CLC; LDA #0xFF; CPA r0; LDA #0x01; ADD r0
	c := New()
	c.Memory[0] = isa.ClearCarry
	c.Memory[1] = isa.LoadAccumulatorImmediate
	c.Memory[2] = 0xFF
	c.Memory[3] = isa.CopyAccumulatorToRegister
	c.Memory[4] = 0
	c.Memory[5] = isa.LoadAccumulatorImmediate
	c.Memory[6] = 0x01
	c.Memory[7] = isa.AddRegister
	c.Memory[8] = 0
	for i := 0; i < 5; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if c.Accumulator != 0x00 {
		t.Fatalf("Accumulator = %#02x, want 0x00", c.Accumulator)
	}
	if c.Status&isa.FlagCarry == 0 {
		t.Fatalf("expected Carry set")
	}
}

func TestUpdateTwoOperandRecordsOperands(t *testing.T) {
	// add 01: one-register add, accumulator + r1. Operand1/Operand2 are
	// spec.md's mandatory observable ProcessorState fields and must end
	// up holding the two values the flag update just compared.
	c := New()
	c.Registers[1] = 0x05
	c.Memory[0] = isa.LoadAccumulatorImmediate
	c.Memory[1] = 0x03
	c.Memory[2] = isa.AddRegister
	c.Memory[3] = 1
	for i := 0; i < 2; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if c.Operand1 != 0x08 || c.Operand2 != 0x05 {
		t.Fatalf("Operand1/2 = %#02x/%#02x, want 0x08/0x05", c.Operand1, c.Operand2)
	}
}

func TestUpdateNoOperandZeroesOperands(t *testing.T) {
	c := New()
	c.Operand1, c.Operand2 = 0xAA, 0xBB
	c.Memory[0] = isa.Not
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Operand1 != 0 || c.Operand2 != 0 {
		t.Fatalf("Operand1/2 = %#02x/%#02x, want 0/0", c.Operand1, c.Operand2)
	}
}

func TestFlagSemanticsCarryClearedNegativeSet(t *testing.T) {
	// SC; LDA #0x7F; ADD r0 (r0=0)
	c := New()
	c.Memory[0] = isa.SetCarry
	c.Memory[1] = isa.LoadAccumulatorImmediate
	c.Memory[2] = 0x7F
	c.Memory[3] = isa.AddRegister
	c.Memory[4] = 0
	for i := 0; i < 3; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if c.Accumulator != 0x80 {
		t.Fatalf("Accumulator = %#02x, want 0x80", c.Accumulator)
	}
	if c.Status&isa.FlagCarry != 0 {
		t.Fatalf("expected Carry clear")
	}
	if c.Status&isa.FlagNegative == 0 {
		t.Fatalf("expected Negative set")
	}
}

func TestSubtractNoBorrowClearsCarry(t *testing.T) {
	// CLC; LDA #0x03; CPA r0 ; LDA #0x05 ; SUB r0  (0x05 - 0x03, no carry-in)
	c := New()
	c.Memory[0] = isa.ClearCarry
	c.Memory[1] = isa.LoadAccumulatorImmediate
	c.Memory[2] = 0x03
	c.Memory[3] = isa.CopyAccumulatorToRegister
	c.Memory[4] = 0
	c.Memory[5] = isa.LoadAccumulatorImmediate
	c.Memory[6] = 0x05
	c.Memory[7] = isa.SubRegister
	c.Memory[8] = 0
	for i := 0; i < 5; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if c.Accumulator != 0x02 {
		t.Fatalf("Accumulator = %#02x, want 0x02", c.Accumulator)
	}
	if c.Status&isa.FlagCarry != 0 {
		t.Fatalf("expected Carry clear (no borrow)")
	}
}

func TestSubtractUnderflowBorrows(t *testing.T) {
	// CLC; LDA #0x05; CPA r0; LDA #0x03; SUB r0 (0x03 - 0x05 underflows)
	c := New()
	c.Memory[0] = isa.ClearCarry
	c.Memory[1] = isa.LoadAccumulatorImmediate
	c.Memory[2] = 0x05
	c.Memory[3] = isa.CopyAccumulatorToRegister
	c.Memory[4] = 0
	c.Memory[5] = isa.LoadAccumulatorImmediate
	c.Memory[6] = 0x03
	c.Memory[7] = isa.SubRegister
	c.Memory[8] = 0
	for i := 0; i < 5; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if c.Accumulator != 0xFE {
		t.Fatalf("Accumulator = %#02x, want 0xFE", c.Accumulator)
	}
	if c.Status&isa.FlagCarry == 0 {
		t.Fatalf("expected Carry set (borrow occurred)")
	}
}

func TestPushPopProgramCounterByteOrder(t *testing.T) {
	c := New()
	c.ProgramCounter = 0x1234
	c.Memory[0x1234] = isa.PushProgramCounter
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	// low byte pushed first (deeper), high byte pushed second (on top).
	if c.Memory[isa.StackPageBase+0] != 0x34 {
		t.Fatalf("stack[0] = %#02x, want low byte 0x34", c.Memory[isa.StackPageBase+0])
	}
	if c.Memory[isa.StackPageBase+1] != 0x12 {
		t.Fatalf("stack[1] = %#02x, want high byte 0x12", c.Memory[isa.StackPageBase+1])
	}

	c.ProgramCounter = 1
	c.Memory[1] = isa.PopProgramCounter
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.ProgramCounter != 0x1234 {
		t.Fatalf("ProgramCounter = %#04x, want 0x1234", c.ProgramCounter)
	}
}

func TestPopProgramCounterSubroutineAddsThree(t *testing.T) {
	c := New()
	c.ProgramCounter = 0x0010
	c.Memory[0x0010] = isa.PushProgramCounter
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	c.ProgramCounter = 0x0200
	c.Memory[0x0200] = isa.PopProgramCounterSubroutine
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.ProgramCounter != 0x0013 {
		t.Fatalf("ProgramCounter = %#04x, want 0x0013", c.ProgramCounter)
	}
}

func TestJumpSetsProgramCounterWithoutAdvance(t *testing.T) {
	c := New()
	c.Memory[0] = isa.JumpAbsolute
	c.Memory[1] = 0x00
	c.Memory[2] = 0x10
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.ProgramCounter != 0x0010 {
		t.Fatalf("ProgramCounter = %#04x, want 0x0010", c.ProgramCounter)
	}
}

func TestStoreAndLoadAccumulatorAbsolute(t *testing.T) {
	c := New()
	c.Accumulator = 0x42
	c.Memory[0] = isa.StoreAccumulatorAbsolute
	c.Memory[1] = 0x01
	c.Memory[2] = 0x00
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Memory[0x0100] != 0x42 {
		t.Fatalf("Memory[0x0100] = %#02x, want 0x42", c.Memory[0x0100])
	}

	c.Memory[3] = isa.LoadAccumulatorAbsolute
	c.Memory[4] = 0x01
	c.Memory[5] = 0x00
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Accumulator != 0x42 {
		t.Fatalf("Accumulator = %#02x, want 0x42", c.Accumulator)
	}
}

func TestIndexedAddressAddsRegister(t *testing.T) {
	c := New()
	c.Registers[2] = 0x05
	c.Accumulator = 0x99
	c.Memory[0] = isa.StoreAccumulatorIndexed
	c.Memory[1] = 0x00
	c.Memory[2] = 0x10
	c.Memory[3] = 2
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Memory[0x0015] != 0x99 {
		t.Fatalf("Memory[0x0015] = %#02x, want 0x99", c.Memory[0x0015])
	}
}

func TestBranchGreaterAndLess(t *testing.T) {
	c := New()
	c.Accumulator = 5
	c.Registers[0] = 9
	c.Memory[0] = isa.BranchGreaterAbsolute
	c.Memory[1] = 0
	c.Memory[2] = 0x00
	c.Memory[3] = 0x20
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.ProgramCounter != 0x0020 {
		t.Fatalf("ProgramCounter = %#04x, want 0x0020 (9 > 5 branch taken)", c.ProgramCounter)
	}
	// The flag update compares (accumulator, register): 5 < 9 sets Less.
	if c.Status&isa.FlagLess == 0 {
		t.Fatalf("expected Less flag set from the comparison")
	}
}

func TestRotateRightMovesLsbToMsb(t *testing.T) {
	c := New()
	c.Accumulator = 0x01
	c.Memory[0] = isa.RotateRight
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Accumulator != 0x80 {
		t.Fatalf("Accumulator = %#02x, want 0x80", c.Accumulator)
	}
}

func TestShiftRightImportsCarryIntoMsb(t *testing.T) {
	c := New()
	c.Accumulator = 0x01
	c.Status |= isa.FlagCarry
	c.Memory[0] = isa.ShiftRight
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Accumulator != 0x80 {
		t.Fatalf("Accumulator = %#02x, want 0x80", c.Accumulator)
	}
	if c.Status&isa.FlagCarry == 0 {
		t.Fatalf("expected Carry set (old bit 0 was 1)")
	}
}
