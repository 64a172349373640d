// Package isa is the single source of truth for opcode byte values, shared
// by the encoder (asm/encode) and the decoder (sim/decode) so the two
// halves of the toolchain can never disagree about what a byte means.
package isa

const (
	Noop byte = 0x00

	AddRegister  byte = 0x01
	AddPair      byte = 0x02
	SubRegister  byte = 0x03
	SubPair      byte = 0x04
	SetCarry     byte = 0x05
	ClearCarry   byte = 0x06
	XorRegister  byte = 0x07
	XorPair      byte = 0x08
	XnorRegister byte = 0x09
	XnorPair     byte = 0x0A
	OrRegister   byte = 0x0B
	OrPair       byte = 0x0C
	NorRegister  byte = 0x0D
	NorPair      byte = 0x0E
	AndRegister  byte = 0x0F
	AndPair      byte = 0x10
	NandRegister byte = 0x11
	NandPair     byte = 0x12

	Not         byte = 0x13
	RotateRight byte = 0x14
	RotateLeft  byte = 0x15
	ShiftRight  byte = 0x16
	ShiftLeft   byte = 0x17

	PushRegister byte = 0x21
	PopRegister  byte = 0x22

	LoadAccumulatorAbsolute         byte = 0x23
	LoadAccumulatorIndexed          byte = 0x24
	LoadAccumulatorZeroPage         byte = 0x25
	LoadAccumulatorZeroPageIndexed  byte = 0x26
	LoadAccumulatorImmediate        byte = 0x27
	StoreAccumulatorAbsolute        byte = 0x28
	StoreAccumulatorIndexed         byte = 0x29
	StoreAccumulatorZeroPage        byte = 0x2A
	StoreAccumulatorZeroPageIndexed byte = 0x2B

	CopyAccumulatorToRegister byte = 0x2C
	CopyRegisterToAccumulator byte = 0x2D

	BranchCarrySetAbsolute    byte = 0x42
	BranchCarrySetIndexed     byte = 0x43
	BranchCarryNotSetAbsolute byte = 0x44
	BranchCarryNotSetIndexed  byte = 0x45
	BranchNegativeAbsolute    byte = 0x46
	BranchNegativeIndexed     byte = 0x47
	BranchPositiveAbsolute    byte = 0x48
	BranchPositiveIndexed     byte = 0x49
	BranchEqualAbsolute       byte = 0x4A
	BranchEqualIndexed        byte = 0x4B
	BranchNotEqualAbsolute    byte = 0x4C
	BranchNotEqualIndexed     byte = 0x4D
	BranchZeroAbsolute        byte = 0x4E
	BranchZeroIndexed         byte = 0x4F
	BranchNotZeroAbsolute     byte = 0x50
	BranchNotZeroIndexed      byte = 0x51

	JumpAbsolute byte = 0x52
	JumpIndexed  byte = 0x53

	PushProgramCounter           byte = 0x54
	PopProgramCounter            byte = 0x55
	IncrementProgramCounter      byte = 0x56
	PopProgramCounterSubroutine  byte = 0x57

	BranchGreaterAbsolute byte = 0x58
	BranchGreaterIndexed  byte = 0x59
	BranchLessAbsolute    byte = 0x5A
	BranchLessIndexed     byte = 0x5B
)

// Status register bit masks, MSB to LSB: Carry, Zero, Greater, Less,
// Equal, Negative; the low two bits are unused.
const (
	FlagCarry    byte = 0x80
	FlagZero     byte = 0x40
	FlagGreater  byte = 0x20
	FlagLess     byte = 0x10
	FlagEqual    byte = 0x08
	FlagNegative byte = 0x04
)

const (
	ResetVectorLow  uint16 = 0xFFFC
	ResetVectorHigh uint16 = 0xFFFD
	StackPageBase   uint16 = 0x0100
)
