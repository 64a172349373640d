// Package symtab records which source-level label, subroutine and pointer
// name produced which byte in an assembled image, and persists that map
// as a sidecar ".symbols" file for the disassembler and simulator to load.
package symtab

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind distinguishes what a Symbol's name refers to.
type Kind int

const (
	KindLabel Kind = iota
	KindPointer
	KindSubroutine
)

func (k Kind) String() string {
	switch k {
	case KindPointer:
		return "pointer"
	case KindSubroutine:
		return "subroutine"
	default:
		return "label"
	}
}

// Symbol names one resolved definition or use site.
type Symbol struct {
	Name  string `yaml:"name"`
	Value uint16 `yaml:"value"`
	Kind  Kind   `yaml:"kind"`
}

// Table maps image addresses to the definitions that live there, and
// separately maps instruction-stream byte indexes to the use sites that
// reference those definitions. The two maps are intentionally distinct:
// a label can be defined once but used from many call sites.
type Table struct {
	Symbols map[uint16]Symbol `yaml:"symbols"`
	Uses    map[uint16]Symbol `yaml:"uses"`
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{Symbols: make(map[uint16]Symbol), Uses: make(map[uint16]Symbol)}
}

// AddLabel records a label's definition address. A label ending in
// "_EndSubroutine" is recorded one byte before its own address: that
// label marks the first byte *after* a subroutine's body, and the
// symbol should point at the subroutine's last real instruction byte
// rather than the unrelated code that happens to follow it.
func (t *Table) AddLabel(name string, address uint16) {
	if strings.HasSuffix(name, "_EndSubroutine") {
		t.Symbols[address-1] = Symbol{Name: name, Value: address, Kind: KindLabel}
		return
	}
	t.Symbols[address] = Symbol{Name: name, Value: address, Kind: KindLabel}
}

// AddLabelUse records a use site (a label reference resolved to a
// concrete address) at the given instruction-stream index. A use of a
// "_Subroutine"-suffixed label is tagged Subroutine and recorded one
// byte earlier, mirroring the jsr/phpc peephole's one-byte offset
// between the pushed return address and the jump opcode itself.
func (t *Table) AddLabelUse(name string, address, index uint16) {
	if strings.HasSuffix(name, "_Subroutine") {
		t.Uses[index-1] = Symbol{Name: name, Value: address, Kind: KindSubroutine}
		return
	}
	t.Uses[index] = Symbol{Name: name, Value: address, Kind: KindLabel}
}

// AddPointer records a named pointer constant's address.
func (t *Table) AddPointer(name string, address uint16) {
	t.Symbols[address] = Symbol{Name: name, Value: address, Kind: KindPointer}
}

// AddPointerUse records where a pointer constant was spliced into the
// instruction stream.
func (t *Table) AddPointerUse(name string, address, index uint16) {
	t.Uses[index] = Symbol{Name: name, Value: address, Kind: KindPointer}
}

// Marshal serializes the table to its on-disk YAML form.
func (t *Table) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}

// Unmarshal decodes a table previously produced by Marshal.
func Unmarshal(data []byte) (*Table, error) {
	t := New()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decoding symbol table: %w", err)
	}
	if t.Symbols == nil {
		t.Symbols = make(map[uint16]Symbol)
	}
	if t.Uses == nil {
		t.Uses = make(map[uint16]Symbol)
	}
	return t, nil
}

// WriteFile marshals the table and writes it to path.
func (t *Table) WriteFile(path string) error {
	data, err := t.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a symbol table previously written by WriteFile.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading symbol file %s: %w", path, err)
	}
	return Unmarshal(data)
}
