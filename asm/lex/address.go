package lex

import (
	"fmt"
	"strings"
)

// AddressMode names which of the four operand shapes an Address literal
// was written in.
type AddressMode int

const (
	Absolute AddressMode = iota
	Indexed
	ZeroPage
	ZeroPageIndexed
)

// Register is one of the eight general-purpose registers, numbered 0-7.
type Register uint8

// Address is a decoded memory operand. Index is non-nil only for Indexed
// and ZeroPageIndexed modes. PointerRef is non-empty when the literal was
// written as a named pointer (`*name`); Value is a zero placeholder until
// the pointer is resolved against the symbol table.
type Address struct {
	Value      uint16
	Mode       AddressMode
	Index      *Register
	PointerRef string
}

// ParseAddress decodes an operand written with the '%' (absolute/zero
// page) or '$' (indexed/zero-page-indexed) sigil, or a '*name' pointer
// reference. Width of the numeric part decides Absolute vs ZeroPage (and
// the indexed equivalents): a two-hex-digit or eight-binary-digit literal
// is zero page, anything wider is absolute.
func ParseAddress(operand string) (Address, error) {
	if operand == "" {
		return Address{}, fmt.Errorf("empty address operand")
	}

	if strings.HasPrefix(operand, "*") {
		return Address{PointerRef: operand[1:]}, nil
	}

	sigil := operand[0]
	if sigil != '%' && sigil != '$' {
		return Address{}, fmt.Errorf("address operand %q must start with %% or $", operand)
	}
	body := operand[1:]

	var litText, regText string
	if idx := strings.IndexByte(body, ','); idx >= 0 {
		litText = strings.TrimSpace(body[:idx])
		regText = strings.TrimSpace(body[idx+1:])
	} else {
		litText = body
	}

	n, err := ParseNumber(litText)
	if err != nil {
		return Address{}, fmt.Errorf("address operand %q: %w", operand, err)
	}
	value, err := n.Uint()
	if err != nil {
		return Address{}, fmt.Errorf("address operand %q: %w", operand, err)
	}

	indexed := regText != "" || sigil == '$'
	if indexed && regText == "" {
		return Address{}, fmt.Errorf("address operand %q: indexed form requires a register", operand)
	}

	var regPtr *Register
	if indexed {
		reg, err := ParseRegister(regText)
		if err != nil {
			return Address{}, fmt.Errorf("address operand %q: %w", operand, err)
		}
		regPtr = &reg
	}

	mode := Absolute
	switch {
	case indexed && n.Size == 8:
		mode = ZeroPageIndexed
	case indexed:
		mode = Indexed
	case n.Size == 8:
		mode = ZeroPage
	}

	return Address{Value: value, Mode: mode, Index: regPtr}, nil
}

// ParseRegister decodes a register operand, which per spec.md §3 ("A
// single byte 0..=7 identifying one of eight general registers. Parsed
// from an 8-bit Number") is just an 8-bit Number literal whose value
// falls in 0-7 — e.g. "01", not "r1".
func ParseRegister(text string) (Register, error) {
	n, err := ParseNumber(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("invalid register %q: %w", text, err)
	}
	if n.Size != 8 {
		return 0, fmt.Errorf("invalid register %q: must be an 8-bit number", text)
	}
	v, err := n.Uint()
	if err != nil {
		return 0, fmt.Errorf("invalid register %q: %w", text, err)
	}
	if v > 7 {
		return 0, fmt.Errorf("invalid register %q: must be 0-7", text)
	}
	return Register(v), nil
}

// Immediate is an 8-bit literal written with the '#' sigil.
type Immediate struct {
	Value byte
}

// ParseImmediate decodes a '#'-prefixed immediate operand.
func ParseImmediate(operand string) (Immediate, error) {
	if !strings.HasPrefix(operand, "#") {
		return Immediate{}, fmt.Errorf("immediate operand %q must start with #", operand)
	}
	n, err := ParseNumber(operand[1:])
	if err != nil {
		return Immediate{}, fmt.Errorf("immediate operand %q: %w", operand, err)
	}
	v, err := n.Uint()
	if err != nil {
		return Immediate{}, fmt.Errorf("immediate operand %q: %w", operand, err)
	}
	if v > 0xFF {
		return Immediate{}, fmt.Errorf("immediate operand %q: value %#x does not fit in 8 bits", operand, v)
	}
	return Immediate{Value: byte(v)}, nil
}
