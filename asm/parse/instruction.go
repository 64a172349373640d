// Package parse turns a line-oriented .gasm source file into a flat slice
// of Instruction nodes, following an include graph and prefixing local
// label/subroutine names with their defining file's module stem.
package parse

import "github.com/electricboy6/GoldASM/asm/lex"

// Op names an instruction's operation. Instructions that accept either a
// single register or a register pair (Add, Subtract, Xor, Xnor, Or, Nor,
// And, Nand) share the AluInstr node instead of getting one Op each, since
// the source grammar treats them identically.
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
	OpBranchIfCarrySet
	OpBranchIfCarryNotSet
	OpBranchIfNegative
	OpBranchIfPositive
	OpBranchIfEqual
	OpBranchIfNotEqual
	OpBranchIfZero
	OpBranchIfNotZero
	OpBranchIfGreater
	OpBranchIfLess
	OpJump
	OpJumpSubroutine
	OpReturnFromSubroutine
	OpLabel
	OpSubroutine
	OpPushProgramCounter
	OpPopProgramCounter
	OpPopProgramCounterSubroutine
	OpPointer
	OpSetOrigin
	OpWord
)

// AluOp distinguishes which two-way logic/arithmetic op an AluInstr
// performs.
type AluOp int

const (
	Add AluOp = iota
	Subtract
	Xor
	Xnor
	Or
	Nor
	And
	Nand
)

// Instruction is one parsed line of source. Every concrete node below
// implements it; callers type-switch on the concrete type.
type Instruction interface {
	instrNode()
}

// AluInstr covers Add/Subtract/Xor/Xnor/Or/Nor/And/Nand, which each
// accept either one register (combine with the accumulator) or a pair of
// registers (combine two registers, result in the accumulator).
type AluInstr struct {
	Op       AluOp
	Register *lex.Register
	Pair     *[2]lex.Register
}

func (AluInstr) instrNode() {}

// SimpleInstr covers every zero-operand instruction: Noop, SetCarry,
// ClearCarry, Not, RotateRight, RotateLeft, ShiftRight, ShiftLeft,
// PushProgramCounter, PopProgramCounter, PopProgramCounterSubroutine.
type SimpleInstr struct {
	Op Op
}

func (SimpleInstr) instrNode() {}

// RegisterInstr covers the single-register instructions PushRegister,
// PopRegister, CopyAccumulatorToRegister and CopyRegisterToAccumulator.
type RegisterInstr struct {
	Op       Op
	Register lex.Register
}

func (RegisterInstr) instrNode() {}

// LoadAccumulatorInstr loads either from an address or from an immediate;
// exactly one of Address/Immediate is set.
type LoadAccumulatorInstr struct {
	Address   *lex.Address
	Immediate *lex.Immediate
}

func (LoadAccumulatorInstr) instrNode() {}

// StoreAccumulatorInstr stores the accumulator to an address.
type StoreAccumulatorInstr struct {
	Address lex.Address
}

func (StoreAccumulatorInstr) instrNode() {}

// BranchTarget is either a resolved non-zero-page address or a named
// label/subroutine awaiting resolution; exactly one of Address/Name is set.
type BranchTarget struct {
	Address *lex.Address
	Name    string
}

// BranchInstr covers every conditional/unconditional branch and Jump.
// Register is set only for BranchIfEqual, BranchIfNotEqual,
// BranchIfGreater and BranchIfLess, which compare a register against the
// accumulator before branching.
type BranchInstr struct {
	Op       Op
	Register *lex.Register
	Target   BranchTarget
}

func (BranchInstr) instrNode() {}

// JumpSubroutineInstr jumps to a subroutine by resolved address or by
// name; exactly one of Address/Name is set.
type JumpSubroutineInstr struct {
	Address *lex.Address
	Name    string
}

func (JumpSubroutineInstr) instrNode() {}

// ReturnFromSubroutineInstr names the subroutine being returned from. The
// "_EndSubroutine" suffix is appended at parse time, matching the source
// grammar's own placement of that suffix.
type ReturnFromSubroutineInstr struct {
	Name string
}

func (ReturnFromSubroutineInstr) instrNode() {}

// LabelInstr marks a resolvable jump/branch target at this point in the
// instruction stream.
type LabelInstr struct {
	Name string
}

func (LabelInstr) instrNode() {}

// SubroutineInstr marks a subroutine entry point at this point in the
// instruction stream.
type SubroutineInstr struct {
	Name string
}

func (SubroutineInstr) instrNode() {}

// PointerInstr defines a named pointer constant, resolved during
// placement like a label but carrying an explicit address/mode rather
// than being implied by instruction position.
type PointerInstr struct {
	Name    string
	Address lex.Address
}

func (PointerInstr) instrNode() {}

// SetOriginInstr repositions the placement cursor. A nil Address means
// "resume at the lowest unused address above the first .org".
type SetOriginInstr struct {
	Address *lex.Address
}

func (SetOriginInstr) instrNode() {}

// WordInstr emits a raw immediate value as data at the current cursor.
type WordInstr struct {
	Immediate lex.Immediate
}

func (WordInstr) instrNode() {}
