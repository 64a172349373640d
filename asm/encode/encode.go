// Package encode runs the two-pass assembler back end: it places
// instructions into a fixed-size image with zero-filled placeholders for
// forward references, then resolves every label and pointer reference
// against the definitions collected along the way.
package encode

import (
	"fmt"

	"github.com/electricboy6/GoldASM/asm/lex"
	"github.com/electricboy6/GoldASM/asm/parse"
	"github.com/electricboy6/GoldASM/asm/symtab"
	"github.com/electricboy6/GoldASM/internal/isa"
)

type labelDef struct {
	name    string
	address uint16
}

type labelUse struct {
	name  string
	index uint16
}

type pointerDef struct {
	name    string
	address lex.Address
}

type pointerUse struct {
	name  string
	index uint16
}

var aluOpcodes = map[parse.AluOp][2]byte{
	parse.Add:      {isa.AddRegister, isa.AddPair},
	parse.Subtract: {isa.SubRegister, isa.SubPair},
	parse.Xor:      {isa.XorRegister, isa.XorPair},
	parse.Xnor:     {isa.XnorRegister, isa.XnorPair},
	parse.Or:       {isa.OrRegister, isa.OrPair},
	parse.Nor:      {isa.NorRegister, isa.NorPair},
	parse.And:      {isa.AndRegister, isa.AndPair},
	parse.Nand:     {isa.NandRegister, isa.NandPair},
}

var registerOpcodes = map[parse.Op]byte{
	parse.OpPushRegister:                isa.PushRegister,
	parse.OpPopRegister:                 isa.PopRegister,
	parse.OpCopyAccumulatorToRegister:   isa.CopyAccumulatorToRegister,
	parse.OpCopyRegisterToAccumulator:   isa.CopyRegisterToAccumulator,
}

var simpleOpcodes = map[parse.Op]byte{
	parse.OpNoop:                        isa.Noop,
	parse.OpSetCarry:                    isa.SetCarry,
	parse.OpClearCarry:                  isa.ClearCarry,
	parse.OpNot:                         isa.Not,
	parse.OpRotateRight:                 isa.RotateRight,
	parse.OpRotateLeft:                  isa.RotateLeft,
	parse.OpShiftRight:                  isa.ShiftRight,
	parse.OpShiftLeft:                   isa.ShiftLeft,
	parse.OpPushProgramCounter:          isa.PushProgramCounter,
	parse.OpPopProgramCounter:           isa.PopProgramCounter,
	parse.OpPopProgramCounterSubroutine: isa.PopProgramCounterSubroutine,
}

var branchOpcodes = map[parse.Op][2]byte{
	parse.OpBranchIfCarrySet:    {isa.BranchCarrySetAbsolute, isa.BranchCarrySetIndexed},
	parse.OpBranchIfCarryNotSet: {isa.BranchCarryNotSetAbsolute, isa.BranchCarryNotSetIndexed},
	parse.OpBranchIfNegative:    {isa.BranchNegativeAbsolute, isa.BranchNegativeIndexed},
	parse.OpBranchIfPositive:    {isa.BranchPositiveAbsolute, isa.BranchPositiveIndexed},
	parse.OpBranchIfEqual:       {isa.BranchEqualAbsolute, isa.BranchEqualIndexed},
	parse.OpBranchIfNotEqual:    {isa.BranchNotEqualAbsolute, isa.BranchNotEqualIndexed},
	parse.OpBranchIfZero:        {isa.BranchZeroAbsolute, isa.BranchZeroIndexed},
	parse.OpBranchIfNotZero:     {isa.BranchNotZeroAbsolute, isa.BranchNotZeroIndexed},
	parse.OpBranchIfGreater:     {isa.BranchGreaterAbsolute, isa.BranchGreaterIndexed},
	parse.OpBranchIfLess:        {isa.BranchLessAbsolute, isa.BranchLessIndexed},
	parse.OpJump:                {isa.JumpAbsolute, isa.JumpIndexed},
}

// addressValueBytes renders just the numeric part of addr, one byte for
// the zero-page modes and two (big-endian) otherwise.
func addressValueBytes(addr lex.Address) []byte {
	if addr.Mode == lex.ZeroPage || addr.Mode == lex.ZeroPageIndexed {
		return []byte{byte(addr.Value)}
	}
	return []byte{byte(addr.Value >> 8), byte(addr.Value)}
}

// placer holds the mutable state threaded through pass 2 (placement).
type placer struct {
	image  []byte
	target int
	max    int

	labels      []labelDef
	labelUses   []labelUse
	pointers    []pointerDef
	pointerUses []pointerUse
	origins     []uint16
}

func (p *placer) insert(b byte) error {
	if p.target > p.max {
		return fmt.Errorf("tried to write past the end of the image (check your .org directives)")
	}
	p.image[p.target] = b
	p.target++
	return nil
}

func (p *placer) append(bs []byte) error {
	for _, b := range bs {
		if err := p.insert(b); err != nil {
			return err
		}
	}
	return nil
}

// recordLabelUse emits a two-byte zero placeholder and remembers its
// position for pass 3 to fill in.
func (p *placer) recordLabelUse(name string) error {
	p.labelUses = append(p.labelUses, labelUse{name: name, index: uint16(p.target + 1)})
	return p.append([]byte{0x00, 0x00})
}

func (p *placer) placeAddressOperand(addr lex.Address, absOp, indexedOp, zeroPageOp, zeroPageIndexedOp byte) error {
	if addr.PointerRef != "" {
		p.pointerUses = append(p.pointerUses, pointerUse{name: addr.PointerRef, index: uint16(p.target + 2)})
	}
	switch addr.Mode {
	case lex.Absolute:
		if err := p.insert(absOp); err != nil {
			return err
		}
		return p.append(addressValueBytes(addr))
	case lex.Indexed:
		if err := p.insert(indexedOp); err != nil {
			return err
		}
		if err := p.append(addressValueBytes(addr)); err != nil {
			return err
		}
		return p.insert(byte(*addr.Index))
	case lex.ZeroPage:
		if err := p.insert(zeroPageOp); err != nil {
			return err
		}
		return p.append(addressValueBytes(addr))
	case lex.ZeroPageIndexed:
		if err := p.insert(zeroPageIndexedOp); err != nil {
			return err
		}
		if err := p.append(addressValueBytes(addr)); err != nil {
			return err
		}
		return p.insert(byte(*addr.Index))
	}
	return fmt.Errorf("unknown address mode %v", addr.Mode)
}

func (p *placer) placeBranch(instr parse.BranchInstr) error {
	opcodes, ok := branchOpcodes[instr.Op]
	if !ok {
		return fmt.Errorf("unsupported branch op %v", instr.Op)
	}
	if instr.Target.Address != nil {
		addr := *instr.Target.Address
		var op byte
		switch addr.Mode {
		case lex.Absolute:
			op = opcodes[0]
		case lex.Indexed:
			op = opcodes[1]
		default:
			return fmt.Errorf("branch target address must not be zero page")
		}
		if err := p.insert(op); err != nil {
			return err
		}
		if instr.Register != nil {
			if err := p.insert(byte(*instr.Register)); err != nil {
				return err
			}
		}
		return p.append(addressValueBytes(addr))
	}

	// Label targets always use the absolute-mode opcode; the address is
	// unknown until pass 3 resolves the label.
	if err := p.insert(opcodes[0]); err != nil {
		return err
	}
	if instr.Register != nil {
		if err := p.insert(byte(*instr.Register)); err != nil {
			return err
		}
	}
	return p.recordLabelUse(instr.Target.Name)
}

// Encode places instructions into a size-byte image (plus one, since
// address 0 is valid) and resolves every label/pointer reference,
// returning the finished image and the symbol table describing it.
func Encode(instructions []parse.Instruction, size uint16) ([]byte, *symtab.Table, error) {
	p := &placer{
		image: make([]byte, int(size)+1),
		max:   int(size),
	}

	for _, instr := range instructions {
		if err := p.placeOne(instr); err != nil {
			return nil, nil, err
		}
		if p.target > p.max {
			return nil, nil, fmt.Errorf("tried to overwrite code inside the binary (check your .orgs)")
		}
	}

	table := symtab.New()

	for _, use := range p.labelUses {
		target, err := findLabel(p.labels, use.name)
		if err != nil {
			return nil, nil, err
		}
		table.AddLabelUse(use.name, target.address, use.index)
		p.image[use.index] = byte(target.address)
		p.image[use.index-1] = byte(target.address >> 8)
	}

	for _, use := range p.pointerUses {
		def, err := findPointer(p.pointers, use.name)
		if err != nil {
			return nil, nil, err
		}
		table.AddPointerUse(use.name, def.address.Value, use.index)
		if def.address.Mode == lex.ZeroPage || def.address.Mode == lex.ZeroPageIndexed {
			p.image[use.index-1] = byte(def.address.Value)
			p.image = append(p.image[:use.index], p.image[use.index+1:]...)
		} else {
			p.image[use.index] = byte(def.address.Value)
			p.image[use.index-1] = byte(def.address.Value >> 8)
		}
	}

	for _, l := range p.labels {
		table.AddLabel(l.name, l.address)
	}
	for _, ptr := range p.pointers {
		table.AddPointer(ptr.name, ptr.address.Value)
	}

	if len(p.image) > int(size)+1 {
		return nil, nil, fmt.Errorf("could not fit assembled image in target size %d", size)
	}

	return p.image, table, nil
}

func findLabel(labels []labelDef, name string) (labelDef, error) {
	for _, l := range labels {
		if l.name == name {
			return l, nil
		}
	}
	if len(name) > len("_EndSubroutine") && name[len(name)-len("_EndSubroutine"):] == "_EndSubroutine" {
		return labelDef{}, fmt.Errorf("could not find label %q; perhaps you forgot to return from a subroutine?", name)
	}
	return labelDef{}, fmt.Errorf("could not find label %q", name)
}

func findPointer(pointers []pointerDef, name string) (pointerDef, error) {
	for _, p := range pointers {
		if p.name == name {
			return p, nil
		}
	}
	return pointerDef{}, fmt.Errorf("could not find pointer %q", name)
}

func (p *placer) placeOne(instr parse.Instruction) error {
	switch v := instr.(type) {
	case parse.SimpleInstr:
		op, ok := simpleOpcodes[v.Op]
		if !ok {
			return fmt.Errorf("unsupported simple op %v", v.Op)
		}
		return p.insert(op)

	case parse.AluInstr:
		opcodes := aluOpcodes[v.Op]
		if v.Register != nil {
			if err := p.insert(opcodes[0]); err != nil {
				return err
			}
			return p.insert(byte(*v.Register))
		}
		if v.Pair != nil {
			if err := p.insert(opcodes[1]); err != nil {
				return err
			}
			if err := p.insert(byte(v.Pair[0])); err != nil {
				return err
			}
			return p.insert(byte(v.Pair[1]))
		}
		return fmt.Errorf("alu instruction has neither register nor pair operand")

	case parse.RegisterInstr:
		op, ok := registerOpcodes[v.Op]
		if !ok {
			return fmt.Errorf("unsupported register op %v", v.Op)
		}
		if err := p.insert(op); err != nil {
			return err
		}
		return p.insert(byte(v.Register))

	case parse.LoadAccumulatorInstr:
		if v.Address != nil {
			return p.placeAddressOperand(*v.Address,
				isa.LoadAccumulatorAbsolute, isa.LoadAccumulatorIndexed,
				isa.LoadAccumulatorZeroPage, isa.LoadAccumulatorZeroPageIndexed)
		}
		if err := p.insert(isa.LoadAccumulatorImmediate); err != nil {
			return err
		}
		return p.insert(v.Immediate.Value)

	case parse.StoreAccumulatorInstr:
		return p.placeAddressOperand(v.Address,
			isa.StoreAccumulatorAbsolute, isa.StoreAccumulatorIndexed,
			isa.StoreAccumulatorZeroPage, isa.StoreAccumulatorZeroPageIndexed)

	case parse.BranchInstr:
		return p.placeBranch(v)

	case parse.LabelInstr:
		p.labels = append(p.labels, labelDef{name: v.Name, address: uint16(p.target)})
		return nil

	case parse.PointerInstr:
		p.pointers = append(p.pointers, pointerDef{name: v.Name, address: v.Address})
		return nil

	case parse.WordInstr:
		return p.insert(v.Immediate.Value)

	case parse.SetOriginInstr:
		if v.Address != nil {
			p.origins = append(p.origins, uint16(p.target), v.Address.Value)
			p.target = int(v.Address.Value)
			return nil
		}
		if len(p.origins) < 3 {
			return fmt.Errorf("attempted to resume at the post-.org segment before two .org <addr> directives were seen")
		}
		start := p.origins[2]
		end := len(p.image)
		if len(p.origins) > 3 {
			end = int(p.origins[3]) - 1
		}
		p.target = int(start)
		p.max = end
		return nil

	default:
		return fmt.Errorf("unsupported instruction node %T", instr)
	}
}
