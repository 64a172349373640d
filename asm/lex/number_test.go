package lex

import (
	"reflect"
	"testing"
)

func TestParseNumberHex(t *testing.T) {
	cases := []struct {
		text string
		size int
	}{
		{"ff", 8},
		{"1234", 16},
	}
	for _, c := range cases {
		n, err := ParseNumber(c.text)
		if err != nil {
			t.Fatalf("ParseNumber(%q): %v", c.text, err)
		}
		if n.Size != c.size || n.Base != Hex {
			t.Fatalf("ParseNumber(%q) = %+v, want size %d hex", c.text, n, c.size)
		}
	}
}

func TestParseNumberBinary(t *testing.T) {
	n, err := ParseNumber("^11110000")
	if err != nil {
		t.Fatalf("ParseNumber: %v", err)
	}
	if n.Size != 8 || n.Base != Binary {
		t.Fatalf("got %+v, want 8-bit binary", n)
	}
	v, err := n.Uint()
	if err != nil {
		t.Fatalf("Uint: %v", err)
	}
	if v != 0xF0 {
		t.Fatalf("Uint() = %#x, want 0xf0", v)
	}
}

func TestParseNumberBadWidth(t *testing.T) {
	if _, err := ParseNumber("f"); err == nil {
		t.Fatalf("expected error for single hex digit")
	}
	if _, err := ParseNumber("^111"); err == nil {
		t.Fatalf("expected error for malformed binary literal")
	}
}

func TestNumberBytes(t *testing.T) {
	n, _ := ParseNumber("1234")
	b, err := n.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !reflect.DeepEqual(b, []byte{0x12, 0x34}) {
		t.Fatalf("Bytes() = %x, want 1234", b)
	}

	n8, _ := ParseNumber("ab")
	b8, err := n8.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !reflect.DeepEqual(b8, []byte{0xab}) {
		t.Fatalf("Bytes() = %x, want ab", b8)
	}
}
