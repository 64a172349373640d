// Package exec implements the machine's CPU state and its single-step
// executor, grounded on the register/flag/stack semantics of
// original_source/src/simulator/executor.rs and shaped after
// hejops-gone/cpu/cpu.go's fetch/decode/execute staging.
package exec

import (
	"fmt"

	"github.com/electricboy6/GoldASM/asm/lex"
	"github.com/electricboy6/GoldASM/asm/parse"
	"github.com/electricboy6/GoldASM/internal/bits"
	"github.com/electricboy6/GoldASM/internal/isa"
	"github.com/electricboy6/GoldASM/sim/decode"
)

// CPU holds the entire machine state: accumulator, eight general
// registers, the status byte, stack pointer, program counter, the last
// two decoded operand bytes (observable by the TUI), and the full 64K
// address space. Memory-mapped I/O (page 0xFF) lives inside Memory like
// any other byte; internal/ioport wraps it for host-side polling.
type CPU struct {
	Accumulator    byte
	Registers      [8]byte
	Status         byte
	StackPointer   byte
	ProgramCounter uint16
	Operand1       byte
	Operand2       byte
	Memory         [65536]byte
}

// New returns a CPU with its registers cleared and PC loaded from the
// reset vector, matching Processor::new()/reset() in executor.rs.
func New() *CPU {
	c := &CPU{}
	c.Reset()
	return c
}

// Reset clears every register and reloads PC from the big-endian reset
// vector at 0xFFFC..0xFFFD. The accumulator starts at zero, so the status
// register's initial value is Zero set and nothing else (0x40) — this
// matches Processor::new()'s literal 0b010000_00, not an all-clear byte.
func (c *CPU) Reset() {
	c.Accumulator = 0
	c.Registers = [8]byte{}
	c.StackPointer = 0
	c.Operand1 = 0
	c.Operand2 = 0
	c.Status = isa.FlagZero
	c.ProgramCounter = bits.Word(c.Memory[isa.ResetVectorLow], c.Memory[isa.ResetVectorHigh])
}

// Read returns the byte at addr.
func (c *CPU) Read(addr uint16) byte { return c.Memory[addr] }

// Write stores v at addr.
func (c *CPU) Write(addr uint16, v byte) { c.Memory[addr] = v }

func (c *CPU) flag(mask byte) bool { return c.Status&mask != 0 }

func (c *CPU) setFlag(mask byte, v bool) {
	if v {
		c.Status |= mask
	} else {
		c.Status &^= mask
	}
}

// carryIn reads the current Carry bit clamped to 0 or 1, matching
// executor.rs's `(status_register & 0x80).min(1)`.
func (c *CPU) carryIn() uint16 {
	if c.flag(isa.FlagCarry) {
		return 1
	}
	return 0
}

// updateTwoOperand sets Greater/Less/Equal from the two supplied operand
// values, updates Zero/Negative from the (already updated) accumulator,
// and records op1/op2 into Operand1/Operand2 — spec.md's ProcessorState
// names these mandatory, TUI-observable fields, matching
// update_status_two_operands's trailing `self.operand1 = ...; self.operand2
// = ...;` assignments in executor.rs.
func (c *CPU) updateTwoOperand(op1, op2 byte) {
	c.setFlag(isa.FlagGreater, op1 > op2)
	c.setFlag(isa.FlagLess, op1 < op2)
	c.setFlag(isa.FlagEqual, op1 == op2)
	c.updateZeroNegative()
	c.Operand1 = op1
	c.Operand2 = op2
}

// updateNoOperand clears Greater/Less/Equal unconditionally, updates
// Zero/Negative from the accumulator, and zeroes Operand1/Operand2 (there
// is no second operand to record), matching
// update_status_no_operands. Used after Not/Rotate*/Shift*.
func (c *CPU) updateNoOperand() {
	c.setFlag(isa.FlagGreater, false)
	c.setFlag(isa.FlagLess, false)
	c.setFlag(isa.FlagEqual, false)
	c.updateZeroNegative()
	c.Operand1 = 0
	c.Operand2 = 0
}

func (c *CPU) updateZeroNegative() {
	c.setFlag(isa.FlagZero, c.Accumulator == 0)
	c.setFlag(isa.FlagNegative, c.Accumulator&0x80 != 0)
}

func (c *CPU) pushStack(b byte) {
	c.Memory[isa.StackPageBase+uint16(c.StackPointer)] = b
	c.StackPointer++
}

func (c *CPU) popStack() byte {
	c.StackPointer--
	return c.Memory[isa.StackPageBase+uint16(c.StackPointer)]
}

// pushProgramCounter pushes the low byte first (it ends up deeper on the
// stack), then the high byte (which ends up on top) — see DESIGN.md Open
// Question #7.
func (c *CPU) pushProgramCounter() {
	high, low := bits.Split(c.ProgramCounter)
	c.pushStack(low)
	c.pushStack(high)
}

// popProgramCounter reverses pushProgramCounter: high byte first (it was
// pushed last, so it's on top), then low byte.
func (c *CPU) popProgramCounter() uint16 {
	high := c.popStack()
	low := c.popStack()
	return bits.Word(high, low)
}

// calculateAddress resolves an effective address, adding the indexing
// register's value when present. uint16 addition wraps mod 2^16, matching
// wrapping_add in the original.
func (c *CPU) calculateAddress(addr lex.Address) uint16 {
	if addr.Index != nil {
		return addr.Value + uint16(c.Registers[*addr.Index])
	}
	return addr.Value
}

// Step decodes and executes one instruction, advancing the program
// counter. Branch/Jump/PopProgramCounter* instructions set PC themselves
// and return before the trailing advance; every other instruction falls
// through to `PC += 1 + operandBytes`.
func (c *CPU) Step() error {
	instr, n, err := decode.Decode(c.Memory[:], c.ProgramCounter)
	if err != nil {
		return err
	}

	switch v := instr.(type) {
	case decode.AluInstr:
		c.execAlu(v)

	case decode.SimpleInstr:
		if done, err := c.execSimple(v); err != nil {
			return err
		} else if done {
			return nil
		}

	case decode.RegisterInstr:
		c.execRegister(v)

	case decode.LoadAccumulatorInstr:
		c.execLoadAccumulator(v)

	case decode.StoreAccumulatorInstr:
		addr := c.calculateAddress(v.Address)
		c.Write(addr, c.Accumulator)

	case decode.BranchInstr:
		if c.execBranch(v) {
			return nil
		}

	default:
		return fmt.Errorf("exec: unhandled decoded instruction %T", instr)
	}

	c.ProgramCounter += uint16(1 + n)
	return nil
}

func (c *CPU) execAlu(v decode.AluInstr) {
	var a, b byte
	twoRegister := v.Pair != nil
	if twoRegister {
		a, b = c.Registers[v.Pair[0]], c.Registers[v.Pair[1]]
	} else {
		a, b = c.Accumulator, c.Registers[*v.Register]
	}

	switch v.Op {
	case parse.Add:
		sum := uint16(a) + uint16(b) + c.carryIn()
		c.Accumulator = byte(sum)
		c.setFlag(isa.FlagCarry, sum > 0xFF)
	case parse.Subtract:
		// Like Add: carry-in joins at bit 0 of the 16-bit result and the
		// new Carry is bit 8 of that result (set when a - b wraps).
		diff := uint16(a) - uint16(b) + c.carryIn()
		c.Accumulator = byte(diff)
		c.setFlag(isa.FlagCarry, diff&0x100 != 0)
	case parse.Xor:
		c.Accumulator = a ^ b
	case parse.Xnor:
		c.Accumulator = ^(a ^ b)
	case parse.Or:
		c.Accumulator = a | b
	case parse.Nor:
		c.Accumulator = ^(a | b)
	case parse.And:
		c.Accumulator = a & b
	case parse.Nand:
		c.Accumulator = ^(a & b)
	}

	if twoRegister {
		c.updateTwoOperand(a, b)
	} else {
		c.updateTwoOperand(c.Accumulator, b)
	}
}

// execSimple handles every zero-operand op. The bool return reports
// whether Step should return immediately (true for the PC-setting pops).
func (c *CPU) execSimple(v decode.SimpleInstr) (bool, error) {
	switch v.Op {
	case decode.OpNoop:
	case decode.OpSetCarry:
		c.setFlag(isa.FlagCarry, true)
	case decode.OpClearCarry:
		c.setFlag(isa.FlagCarry, false)
	case decode.OpNot:
		c.Accumulator = ^c.Accumulator
		c.updateNoOperand()
	case decode.OpRotateRight:
		c.Accumulator = c.Accumulator>>1 | c.Accumulator<<7
		c.updateNoOperand()
	case decode.OpRotateLeft:
		c.Accumulator = c.Accumulator<<1 | c.Accumulator>>7
		c.updateNoOperand()
	case decode.OpShiftRight:
		carryOut := c.Accumulator&1 != 0
		carryIn := c.flag(isa.FlagCarry)
		c.Accumulator >>= 1
		if carryIn {
			c.Accumulator |= 0x80
		}
		c.setFlag(isa.FlagCarry, carryOut)
		c.updateNoOperand()
	case decode.OpShiftLeft:
		wide := uint16(c.Accumulator) << 1
		carryOut := wide&0x100 != 0
		c.Accumulator = byte(wide)
		if c.flag(isa.FlagCarry) {
			c.Accumulator |= 0x01
		}
		c.setFlag(isa.FlagCarry, carryOut)
		c.updateNoOperand()
	case decode.OpPushProgramCounter:
		c.pushProgramCounter()
	case decode.OpPopProgramCounter:
		c.ProgramCounter = c.popProgramCounter()
		return true, nil
	case decode.OpIncrementProgramCounter:
		c.ProgramCounter++
		return true, nil
	case decode.OpPopProgramCounterSubroutine:
		c.ProgramCounter = c.popProgramCounter() + 3
		return true, nil
	default:
		return false, fmt.Errorf("exec: unhandled simple op %v", v.Op)
	}
	return false, nil
}

func (c *CPU) execRegister(v decode.RegisterInstr) {
	switch v.Op {
	case decode.OpPushRegister:
		c.pushStack(c.Registers[v.Register])
	case decode.OpPopRegister:
		c.Registers[v.Register] = c.popStack()
	case decode.OpCopyAccumulatorToRegister:
		c.Registers[v.Register] = c.Accumulator
	case decode.OpCopyRegisterToAccumulator:
		c.Accumulator = c.Registers[v.Register]
	}
}

func (c *CPU) execLoadAccumulator(v decode.LoadAccumulatorInstr) {
	if v.Immediate != nil {
		c.Accumulator = v.Immediate.Value
		return
	}
	addr := c.calculateAddress(*v.Address)
	c.Accumulator = c.Read(addr)
}

// execBranch runs the condition test (and, for register-compare forms,
// the two-operand flag update) and — if taken — sets PC directly,
// reporting true so Step skips the trailing advance.
func (c *CPU) execBranch(v decode.BranchInstr) bool {
	taken := false
	switch v.Op {
	case decode.OpBranchCarrySet:
		taken = c.flag(isa.FlagCarry)
	case decode.OpBranchCarryClear:
		taken = !c.flag(isa.FlagCarry)
	case decode.OpBranchNegative:
		taken = c.flag(isa.FlagNegative)
	case decode.OpBranchPositive:
		taken = !c.flag(isa.FlagNegative)
	case decode.OpBranchZero:
		taken = c.flag(isa.FlagZero)
	case decode.OpBranchNotZero:
		taken = !c.flag(isa.FlagZero)
	case decode.OpBranchEqual, decode.OpBranchNotEqual, decode.OpBranchGreater, decode.OpBranchLess:
		regValue := c.Registers[*v.Register]
		c.updateTwoOperand(c.Accumulator, regValue)
		switch v.Op {
		case decode.OpBranchEqual:
			taken = regValue == c.Accumulator
		case decode.OpBranchNotEqual:
			taken = regValue != c.Accumulator
		case decode.OpBranchGreater:
			taken = regValue > c.Accumulator
		case decode.OpBranchLess:
			taken = regValue < c.Accumulator
		}
	case decode.OpJump:
		taken = true
	}

	if taken {
		c.ProgramCounter = c.calculateAddress(v.Address)
		return true
	}
	return false
}
