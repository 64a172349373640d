package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/electricboy6/GoldASM/asm/lex"
	"github.com/electricboy6/GoldASM/internal/diag"
)

// Includes tracks which files have already been pulled in by #include
// directives (so a diamond-shaped include graph is only parsed once) and
// accumulates the instruction streams those files produced.
type Includes struct {
	Files        map[string]bool
	Instructions [][]Instruction
}

func newIncludes() *Includes {
	return &Includes{Files: make(map[string]bool)}
}

func (inc *Includes) parseInclude(line, directory string, bag *diag.Bag) error {
	target := strings.TrimSpace(strings.TrimPrefix(line, "#include "))
	if inc.Files[target] {
		return nil
	}
	inc.Files[target] = true

	instrs, nested, err := Parse(directory, target, bag)
	if err != nil {
		return err
	}
	inc.Instructions = append(inc.Instructions, instrs)
	for f := range nested.Files {
		inc.Files[f] = true
	}
	inc.Instructions = append(inc.Instructions, nested.Instructions...)
	return nil
}

// Flatten appends every file's instructions, in include order, after the
// top-level file's own instructions.
func Flatten(top []Instruction, includes *Includes) []Instruction {
	out := append([]Instruction(nil), top...)
	for _, instrs := range includes.Instructions {
		out = append(out, instrs...)
	}
	return out
}

// Parse reads directory+filename and returns its instruction stream along
// with the include graph it pulled in. Unrecognized mnemonics are
// recorded as warnings in bag and otherwise skipped, matching the
// original toolchain's tolerant behavior.
func Parse(directory, filename string, bag *diag.Bag) ([]Instruction, *Includes, error) {
	path := filepath.Join(directory, filename)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	modulePrefix := stem + "."

	var instructions []Instruction
	includes := newIncludes()

	lineNo := 0
	for _, rawLine := range strings.Split(string(content), "\n") {
		lineNo++
		pos := diag.Position{File: path, Line: lineNo}

		line := strings.TrimSpace(strings.SplitN(rawLine, "//", 2)[0])
		if line == "" {
			continue
		}

		if strings.Contains(line, "#include") {
			if err := includes.parseInclude(line, directory, bag); err != nil {
				return nil, nil, err
			}
			continue
		}

		if strings.Contains(line, ":") {
			instr, err := parseLabelOrSubroutine(line, modulePrefix, instructions)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", pos, err)
			}
			instructions = append(instructions, instr)
			continue
		}

		words := strings.Fields(line)
		_, rest, hasRest := strings.Cut(line, " ")
		parameterStr := ""
		if hasRest {
			parameterStr = rest
		}

		if strings.Contains(line, "#define") {
			addr, err := lex.ParseAddress(words[2])
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", pos, err)
			}
			instructions = append(instructions, PointerInstr{Name: words[1], Address: addr})
			continue
		}

		if strings.Contains(line, ".org") {
			if len(words) == 2 {
				addr, err := lex.ParseAddress(words[1])
				if err != nil {
					return nil, nil, fmt.Errorf("%s: %w", pos, err)
				}
				if addr.Mode != lex.Absolute {
					return nil, nil, fmt.Errorf("%s: .org address %q must be absolute", pos, words[1])
				}
				instructions = append(instructions, SetOriginInstr{Address: &addr})
			} else {
				instructions = append(instructions, SetOriginInstr{})
			}
			continue
		}

		if strings.Contains(line, ".word") {
			imm, err := lex.ParseImmediate(words[1])
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", pos, err)
			}
			instructions = append(instructions, WordInstr{Immediate: imm})
			continue
		}

		instr, ok, err := parseMnemonic(words, parameterStr, modulePrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", pos, err)
		}
		if !ok {
			bag.Warnf(pos, "%q is not an instruction", line)
			continue
		}
		if instr != nil {
			instructions = append(instructions, instr)
		}
	}

	return instructions, includes, nil
}

func parseLabelOrSubroutine(line, modulePrefix string, existing []Instruction) (Instruction, error) {
	if strings.Contains(line, "sr") {
		name := modulePrefix + strings.TrimSpace(strings.TrimPrefix(strings.TrimSuffix(line, ":"), "sr"))
		for _, i := range existing {
			if l, ok := i.(LabelInstr); ok && l.Name == name {
				return nil, fmt.Errorf("subroutine already exists as a label: %s", name)
			}
			if s, ok := i.(SubroutineInstr); ok && s.Name == name {
				return nil, fmt.Errorf("subroutine already exists: %s", name)
			}
		}
		return SubroutineInstr{Name: name}, nil
	}

	name := modulePrefix + strings.TrimSuffix(line, ":")
	for _, i := range existing {
		if l, ok := i.(LabelInstr); ok && l.Name == name {
			return nil, fmt.Errorf("label already exists: %s", name)
		}
		if s, ok := i.(SubroutineInstr); ok && s.Name == name {
			return nil, fmt.Errorf("label already exists as a subroutine: %s", name)
		}
	}
	return LabelInstr{Name: name}, nil
}

// branchTargetName resolves a '~name' reference: names containing a '.'
// are already cross-module and pass through unprefixed; bare names are
// prefixed with the defining file's module stem.
func branchTargetName(ref, modulePrefix string) string {
	name := strings.TrimPrefix(ref, "~")
	if strings.Contains(name, ".") {
		return name
	}
	return modulePrefix + name
}

func parseNonZeroPageAddress(text string) (lex.Address, error) {
	addr, err := lex.ParseAddress(text)
	if err != nil {
		return lex.Address{}, err
	}
	if addr.Mode != lex.Absolute && addr.Mode != lex.Indexed {
		return lex.Address{}, fmt.Errorf("address %q must not be zero page here", text)
	}
	return addr, nil
}

func parseAluOperands(words []string) (*lex.Register, *[2]lex.Register, error) {
	if len(words) == 2 {
		r, err := lex.ParseRegister(words[1])
		if err != nil {
			return nil, nil, err
		}
		return &r, nil, nil
	}
	r1, err := lex.ParseRegister(strings.TrimSuffix(words[1], ","))
	if err != nil {
		return nil, nil, err
	}
	r2, err := lex.ParseRegister(words[2])
	if err != nil {
		return nil, nil, err
	}
	return nil, &[2]lex.Register{r1, r2}, nil
}

func parseBranch(op Op, parameterStr string, words []string, modulePrefix string, hasLeadingRegister bool) (Instruction, error) {
	var reg *lex.Register
	targetWord := parameterStr
	targetWordIndex := 1

	if hasLeadingRegister {
		r, err := lex.ParseRegister(strings.TrimSuffix(words[1], ","))
		if err != nil {
			return nil, err
		}
		reg = &r
		targetWordIndex = 2
		targetWord = words[targetWordIndex]
	}

	if strings.Contains(targetWord, "~") {
		return BranchInstr{Op: op, Register: reg, Target: BranchTarget{Name: branchTargetName(targetWord, modulePrefix)}}, nil
	}

	addr, err := parseNonZeroPageAddress(words[targetWordIndex])
	if err != nil {
		return nil, err
	}
	return BranchInstr{Op: op, Register: reg, Target: BranchTarget{Address: &addr}}, nil
}

// parseMnemonic dispatches on the instruction's leading word. ok is false
// (with a nil error) when the word is not a recognized mnemonic, so the
// caller can record a warning and continue rather than aborting the parse.
func parseMnemonic(words []string, parameterStr, modulePrefix string) (Instruction, bool, error) {
	if len(words) == 0 {
		return nil, true, nil
	}
	switch strings.ToLower(strings.TrimSpace(words[0])) {
	case "noop":
		return SimpleInstr{Op: OpNoop}, true, nil
	case "add", "sub", "xor", "xnor", "or", "nor", "and", "nand":
		reg, pair, err := parseAluOperands(words)
		if err != nil {
			return nil, true, err
		}
		aluOps := map[string]AluOp{"add": Add, "sub": Subtract, "xor": Xor, "xnor": Xnor, "or": Or, "nor": Nor, "and": And, "nand": Nand}
		return AluInstr{Op: aluOps[strings.ToLower(words[0])], Register: reg, Pair: pair}, true, nil
	case "sc":
		return SimpleInstr{Op: OpSetCarry}, true, nil
	case "clc":
		return SimpleInstr{Op: OpClearCarry}, true, nil
	case "not":
		return SimpleInstr{Op: OpNot}, true, nil
	case "ror":
		return SimpleInstr{Op: OpRotateRight}, true, nil
	case "rol":
		return SimpleInstr{Op: OpRotateLeft}, true, nil
	case "shr":
		return SimpleInstr{Op: OpShiftRight}, true, nil
	case "shl":
		return SimpleInstr{Op: OpShiftLeft}, true, nil
	case "phr":
		r, err := lex.ParseRegister(parameterStr)
		if err != nil {
			return nil, true, err
		}
		return RegisterInstr{Op: OpPushRegister, Register: r}, true, nil
	case "plr":
		r, err := lex.ParseRegister(parameterStr)
		if err != nil {
			return nil, true, err
		}
		return RegisterInstr{Op: OpPopRegister, Register: r}, true, nil
	case "lda":
		if strings.Contains(parameterStr, "#") {
			imm, err := lex.ParseImmediate(parameterStr)
			if err != nil {
				return nil, true, err
			}
			return LoadAccumulatorInstr{Immediate: &imm}, true, nil
		}
		addr, err := lex.ParseAddress(parameterStr)
		if err != nil {
			return nil, true, err
		}
		return LoadAccumulatorInstr{Address: &addr}, true, nil
	case "sta":
		addr, err := lex.ParseAddress(parameterStr)
		if err != nil {
			return nil, true, err
		}
		return StoreAccumulatorInstr{Address: addr}, true, nil
	case "cpa":
		r, err := lex.ParseRegister(parameterStr)
		if err != nil {
			return nil, true, err
		}
		return RegisterInstr{Op: OpCopyAccumulatorToRegister, Register: r}, true, nil
	case "cpr":
		r, err := lex.ParseRegister(parameterStr)
		if err != nil {
			return nil, true, err
		}
		return RegisterInstr{Op: OpCopyRegisterToAccumulator, Register: r}, true, nil
	case "bcs":
		i, err := parseBranch(OpBranchIfCarrySet, parameterStr, words, modulePrefix, false)
		return i, true, err
	case "bcc":
		i, err := parseBranch(OpBranchIfCarryNotSet, parameterStr, words, modulePrefix, false)
		return i, true, err
	case "bn":
		i, err := parseBranch(OpBranchIfNegative, parameterStr, words, modulePrefix, false)
		return i, true, err
	case "bp":
		i, err := parseBranch(OpBranchIfPositive, parameterStr, words, modulePrefix, false)
		return i, true, err
	case "beq":
		i, err := parseBranch(OpBranchIfEqual, parameterStr, words, modulePrefix, true)
		return i, true, err
	case "bne":
		i, err := parseBranch(OpBranchIfNotEqual, parameterStr, words, modulePrefix, true)
		return i, true, err
	case "bze":
		i, err := parseBranch(OpBranchIfZero, parameterStr, words, modulePrefix, false)
		return i, true, err
	case "bnz":
		i, err := parseBranch(OpBranchIfNotZero, parameterStr, words, modulePrefix, false)
		return i, true, err
	case "bg":
		i, err := parseBranch(OpBranchIfGreater, parameterStr, words, modulePrefix, true)
		return i, true, err
	case "bl":
		i, err := parseBranch(OpBranchIfLess, parameterStr, words, modulePrefix, true)
		return i, true, err
	case "jmp":
		i, err := parseBranch(OpJump, parameterStr, words, modulePrefix, false)
		return i, true, err
	case "jsr":
		if strings.Contains(parameterStr, "~") {
			return JumpSubroutineInstr{Name: branchTargetName(parameterStr, modulePrefix)}, true, nil
		}
		addr, err := parseNonZeroPageAddress(parameterStr)
		if err != nil {
			return nil, true, err
		}
		return JumpSubroutineInstr{Address: &addr}, true, nil
	case "rts":
		name := modulePrefix + strings.TrimSpace(parameterStr) + "_EndSubroutine"
		return ReturnFromSubroutineInstr{Name: name}, true, nil
	case "phpc":
		return SimpleInstr{Op: OpPushProgramCounter}, true, nil
	case "plpc":
		return SimpleInstr{Op: OpPopProgramCounter}, true, nil
	default:
		return nil, false, nil
	}
}
