// Package decode turns a byte at a program counter into a typed machine
// instruction plus its operand-byte count. It is the mirror image of
// asm/encode: the same opcode bytes, read back off the dense table in
// internal/isa rather than written onto it.
//
// Decoding works purely on resolved addresses; by the time a program is an
// image, every label and pointer has already been patched into literal
// bytes, so there are no symbolic forms here (contrast asm/parse, whose
// Instruction nodes can still carry names).
package decode

import (
	"fmt"

	"github.com/electricboy6/GoldASM/asm/lex"
	"github.com/electricboy6/GoldASM/asm/parse"
	"github.com/electricboy6/GoldASM/internal/isa"
)

// Op identifies a decoded machine-level operation. Unlike parse.Op, this
// enum only contains primitives the decoder can actually produce from a
// byte stream — subroutine call/return and label/pointer directives never
// appear here, since the encoder already lowered and resolved them away.
type Op int

const (
	OpNoop Op = iota
	OpAlu
	OpSetCarry
	OpClearCarry
	OpNot
	OpRotateRight
	OpRotateLeft
	OpShiftRight
	OpShiftLeft
	OpPushRegister
	OpPopRegister
	OpLoadAccumulator
	OpStoreAccumulator
	OpCopyAccumulatorToRegister
	OpCopyRegisterToAccumulator
	OpBranchCarrySet
	OpBranchCarryClear
	OpBranchNegative
	OpBranchPositive
	OpBranchEqual
	OpBranchNotEqual
	OpBranchZero
	OpBranchNotZero
	OpBranchGreater
	OpBranchLess
	OpJump
	OpPushProgramCounter
	OpPopProgramCounter
	OpIncrementProgramCounter
	OpPopProgramCounterSubroutine
)

// Instruction is a decoded machine instruction ready for the executor.
type Instruction interface{ instrNode() }

// AluInstr covers Add/Sub/Xor/Xnor/Or/Nor/And/Nand, one- or two-register.
type AluInstr struct {
	Op       parse.AluOp
	Register *lex.Register
	Pair     *[2]lex.Register
}

// SimpleInstr carries no operand at all.
type SimpleInstr struct{ Op Op }

// RegisterInstr carries a single register operand: PushRegister,
// PopRegister, CopyAccumulatorToRegister, CopyRegisterToAccumulator.
type RegisterInstr struct {
	Op       Op
	Register lex.Register
}

// LoadAccumulatorInstr is either a resolved Address or an Immediate.
type LoadAccumulatorInstr struct {
	Address   *lex.Address
	Immediate *lex.Immediate
}

// StoreAccumulatorInstr always carries a resolved Address.
type StoreAccumulatorInstr struct {
	Address lex.Address
}

// BranchInstr covers every conditional branch and the unconditional Jump.
// Register is non-nil only for the register-compare forms (BEQ/BNE/BG/BL).
type BranchInstr struct {
	Op       Op
	Register *lex.Register
	Address  lex.Address
}

func (AluInstr) instrNode()              {}
func (SimpleInstr) instrNode()           {}
func (RegisterInstr) instrNode()         {}
func (LoadAccumulatorInstr) instrNode()  {}
func (StoreAccumulatorInstr) instrNode() {}
func (BranchInstr) instrNode()           {}

func reg(b byte) lex.Register { return lex.Register(b) }

func addressOperandLen(mode lex.AddressMode) int {
	switch mode {
	case lex.Absolute, lex.ZeroPageIndexed:
		return 2
	case lex.Indexed:
		return 3
	case lex.ZeroPage:
		return 1
	default:
		return 0
	}
}

func readAddress(image []byte, pc uint16, mode lex.AddressMode) (lex.Address, int) {
	switch mode {
	case lex.Absolute:
		v := uint16(image[pc+1])<<8 | uint16(image[pc+2])
		return lex.Address{Value: v, Mode: lex.Absolute}, 2
	case lex.Indexed:
		v := uint16(image[pc+1])<<8 | uint16(image[pc+2])
		idx := reg(image[pc+3])
		return lex.Address{Value: v, Mode: lex.Indexed, Index: &idx}, 3
	case lex.ZeroPage:
		return lex.Address{Value: uint16(image[pc+1]), Mode: lex.ZeroPage}, 1
	case lex.ZeroPageIndexed:
		idx := reg(image[pc+2])
		return lex.Address{Value: uint16(image[pc+1]), Mode: lex.ZeroPageIndexed, Index: &idx}, 2
	}
	return lex.Address{}, 0
}

type decodeFunc func(image []byte, pc uint16) (Instruction, int)

var table [256]decodeFunc

func aluDecoder(op parse.AluOp, oneReg, twoReg byte) {
	table[oneReg] = func(image []byte, pc uint16) (Instruction, int) {
		r := reg(image[pc+1])
		return AluInstr{Op: op, Register: &r}, 1
	}
	table[twoReg] = func(image []byte, pc uint16) (Instruction, int) {
		r1, r2 := reg(image[pc+1]), reg(image[pc+2])
		return AluInstr{Op: op, Pair: &[2]lex.Register{r1, r2}}, 2
	}
}

func simpleDecoder(opcode byte, op Op) {
	table[opcode] = func(image []byte, pc uint16) (Instruction, int) {
		return SimpleInstr{Op: op}, 0
	}
}

func registerDecoder(opcode byte, op Op) {
	table[opcode] = func(image []byte, pc uint16) (Instruction, int) {
		return RegisterInstr{Op: op, Register: reg(image[pc+1])}, 1
	}
}

func branchDecoder(absOp, idxOp byte, op Op) {
	table[absOp] = func(image []byte, pc uint16) (Instruction, int) {
		addr, n := readAddress(image, pc, lex.Absolute)
		return BranchInstr{Op: op, Address: addr}, n
	}
	table[idxOp] = func(image []byte, pc uint16) (Instruction, int) {
		addr, n := readAddress(image, pc, lex.Indexed)
		return BranchInstr{Op: op, Address: addr}, n
	}
}

// registerCompareBranchDecoder handles BEQ/BNE/BG/BL, which carry a
// register operand ahead of the address bytes.
func registerCompareBranchDecoder(absOp, idxOp byte, op Op) {
	table[absOp] = func(image []byte, pc uint16) (Instruction, int) {
		r := reg(image[pc+1])
		v := uint16(image[pc+2])<<8 | uint16(image[pc+3])
		return BranchInstr{Op: op, Register: &r, Address: lex.Address{Value: v, Mode: lex.Absolute}}, 3
	}
	table[idxOp] = func(image []byte, pc uint16) (Instruction, int) {
		r := reg(image[pc+1])
		v := uint16(image[pc+2])<<8 | uint16(image[pc+3])
		idx := reg(image[pc+4])
		return BranchInstr{Op: op, Register: &r, Address: lex.Address{Value: v, Mode: lex.Indexed, Index: &idx}}, 4
	}
}

func init() {
	simpleDecoder(isa.Noop, OpNoop)

	aluDecoder(parse.Add, isa.AddRegister, isa.AddPair)
	aluDecoder(parse.Subtract, isa.SubRegister, isa.SubPair)
	aluDecoder(parse.Xor, isa.XorRegister, isa.XorPair)
	aluDecoder(parse.Xnor, isa.XnorRegister, isa.XnorPair)
	aluDecoder(parse.Or, isa.OrRegister, isa.OrPair)
	aluDecoder(parse.Nor, isa.NorRegister, isa.NorPair)
	aluDecoder(parse.And, isa.AndRegister, isa.AndPair)
	aluDecoder(parse.Nand, isa.NandRegister, isa.NandPair)

	simpleDecoder(isa.SetCarry, OpSetCarry)
	simpleDecoder(isa.ClearCarry, OpClearCarry)
	simpleDecoder(isa.Not, OpNot)
	simpleDecoder(isa.RotateRight, OpRotateRight)
	simpleDecoder(isa.RotateLeft, OpRotateLeft)
	simpleDecoder(isa.ShiftRight, OpShiftRight)
	simpleDecoder(isa.ShiftLeft, OpShiftLeft)

	registerDecoder(isa.PushRegister, OpPushRegister)
	registerDecoder(isa.PopRegister, OpPopRegister)
	registerDecoder(isa.CopyAccumulatorToRegister, OpCopyAccumulatorToRegister)
	registerDecoder(isa.CopyRegisterToAccumulator, OpCopyRegisterToAccumulator)

	table[isa.LoadAccumulatorAbsolute] = func(image []byte, pc uint16) (Instruction, int) {
		addr, n := readAddress(image, pc, lex.Absolute)
		return LoadAccumulatorInstr{Address: &addr}, n
	}
	table[isa.LoadAccumulatorIndexed] = func(image []byte, pc uint16) (Instruction, int) {
		addr, n := readAddress(image, pc, lex.Indexed)
		return LoadAccumulatorInstr{Address: &addr}, n
	}
	table[isa.LoadAccumulatorZeroPage] = func(image []byte, pc uint16) (Instruction, int) {
		addr, n := readAddress(image, pc, lex.ZeroPage)
		return LoadAccumulatorInstr{Address: &addr}, n
	}
	table[isa.LoadAccumulatorZeroPageIndexed] = func(image []byte, pc uint16) (Instruction, int) {
		addr, n := readAddress(image, pc, lex.ZeroPageIndexed)
		return LoadAccumulatorInstr{Address: &addr}, n
	}
	table[isa.LoadAccumulatorImmediate] = func(image []byte, pc uint16) (Instruction, int) {
		imm := lex.Immediate{Value: image[pc+1]}
		return LoadAccumulatorInstr{Immediate: &imm}, 1
	}

	table[isa.StoreAccumulatorAbsolute] = func(image []byte, pc uint16) (Instruction, int) {
		addr, n := readAddress(image, pc, lex.Absolute)
		return StoreAccumulatorInstr{Address: addr}, n
	}
	table[isa.StoreAccumulatorIndexed] = func(image []byte, pc uint16) (Instruction, int) {
		addr, n := readAddress(image, pc, lex.Indexed)
		return StoreAccumulatorInstr{Address: addr}, n
	}
	table[isa.StoreAccumulatorZeroPage] = func(image []byte, pc uint16) (Instruction, int) {
		addr, n := readAddress(image, pc, lex.ZeroPage)
		return StoreAccumulatorInstr{Address: addr}, n
	}
	table[isa.StoreAccumulatorZeroPageIndexed] = func(image []byte, pc uint16) (Instruction, int) {
		addr, n := readAddress(image, pc, lex.ZeroPageIndexed)
		return StoreAccumulatorInstr{Address: addr}, n
	}

	branchDecoder(isa.BranchCarrySetAbsolute, isa.BranchCarrySetIndexed, OpBranchCarrySet)
	branchDecoder(isa.BranchCarryNotSetAbsolute, isa.BranchCarryNotSetIndexed, OpBranchCarryClear)
	branchDecoder(isa.BranchNegativeAbsolute, isa.BranchNegativeIndexed, OpBranchNegative)
	branchDecoder(isa.BranchPositiveAbsolute, isa.BranchPositiveIndexed, OpBranchPositive)
	branchDecoder(isa.BranchZeroAbsolute, isa.BranchZeroIndexed, OpBranchZero)
	branchDecoder(isa.BranchNotZeroAbsolute, isa.BranchNotZeroIndexed, OpBranchNotZero)
	branchDecoder(isa.JumpAbsolute, isa.JumpIndexed, OpJump)

	registerCompareBranchDecoder(isa.BranchEqualAbsolute, isa.BranchEqualIndexed, OpBranchEqual)
	registerCompareBranchDecoder(isa.BranchNotEqualAbsolute, isa.BranchNotEqualIndexed, OpBranchNotEqual)
	registerCompareBranchDecoder(isa.BranchGreaterAbsolute, isa.BranchGreaterIndexed, OpBranchGreater)
	registerCompareBranchDecoder(isa.BranchLessAbsolute, isa.BranchLessIndexed, OpBranchLess)

	simpleDecoder(isa.PushProgramCounter, OpPushProgramCounter)
	simpleDecoder(isa.PopProgramCounter, OpPopProgramCounter)
	simpleDecoder(isa.IncrementProgramCounter, OpIncrementProgramCounter)
	simpleDecoder(isa.PopProgramCounterSubroutine, OpPopProgramCounterSubroutine)
}

// Decode reads one instruction from image at pc, returning the typed
// instruction and the number of operand bytes consumed (0-4). The caller
// advances pc by 1+operandBytes unless the instruction itself sets pc
// (branches taken, Jump, PopProgramCounter*).
func Decode(image []byte, pc uint16) (Instruction, int, error) {
	opcode := image[pc]
	fn := table[opcode]
	if fn == nil {
		return nil, 0, fmt.Errorf("decode: unknown opcode %#02x at pc %#04x", opcode, pc)
	}
	instr, n := fn(image, pc)
	return instr, n, nil
}
