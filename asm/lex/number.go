// Package lex tokenizes the numeric and address-operand literals that
// appear on the right-hand side of a GoldASM mnemonic: sized hex/binary
// numbers, the four addressing-mode sigils, and immediates.
package lex

import (
	"fmt"
	"strconv"
	"strings"
)

// Base names the textual radix a Number literal was written in.
type Base int

const (
	Hex Base = iota
	Binary
)

// Number is an unsigned literal whose width is inferred from the length of
// its text rather than declared explicitly: two hex digits or eight binary
// digits mean 8-bit, anything longer means 16-bit.
type Number struct {
	Text string
	Size int // 8 or 16
	Base Base
}

// ParseNumber decodes a bare numeric literal. Binary literals are prefixed
// with '^'; anything else is read as hex. Width is inferred from the
// digit count of the literal, not from its value.
func ParseNumber(text string) (Number, error) {
	if strings.HasPrefix(text, "^") {
		digits := text[1:]
		if len(digits) != 8 && len(digits) != 16 {
			return Number{}, fmt.Errorf("binary literal %q must be 8 or 16 digits", text)
		}
		size := 16
		if len(digits) == 8 {
			size = 8
		}
		return Number{Text: digits, Size: size, Base: Binary}, nil
	}

	if len(text) != 2 && len(text) != 4 {
		return Number{}, fmt.Errorf("hex literal %q must be 2 or 4 digits", text)
	}
	size := 16
	if len(text) == 2 {
		size = 8
	}
	return Number{Text: text, Size: size, Base: Hex}, nil
}

// Uint returns the literal's value as an unsigned 16-bit integer.
func (n Number) Uint() (uint16, error) {
	radix := 16
	if n.Base == Binary {
		radix = 2
	}
	v, err := strconv.ParseUint(n.Text, radix, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid number literal %q: %w", n.Text, err)
	}
	return uint16(v), nil
}

// Bytes serializes the literal big-endian: one byte if Size is 8, two
// bytes (high byte first) if Size is 16.
func (n Number) Bytes() ([]byte, error) {
	v, err := n.Uint()
	if err != nil {
		return nil, err
	}
	if n.Size == 8 {
		return []byte{byte(v)}, nil
	}
	return []byte{byte(v >> 8), byte(v)}, nil
}
