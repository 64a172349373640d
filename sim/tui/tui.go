// Package tui implements the interactive single-step simulator viewer
// (§5's "simulator runs as a single-threaded event loop driven by the
// terminal front-end"), grounded on hejops-gone/cpu/debugger.go's
// bubbletea Model/Update/View shape: a memory page table with the program
// counter highlighted, a status panel, and single-keypress stepping.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/electricboy6/GoldASM/asm/symtab"
	"github.com/electricboy6/GoldASM/internal/ioport"
	"github.com/electricboy6/GoldASM/sim/decode"
	"github.com/electricboy6/GoldASM/sim/disasm"
	"github.com/electricboy6/GoldASM/sim/exec"
)

// frameInterval matches spec.md §5's target cadence: 100 Hz input
// polling, one step per frame while auto-run is active.
const frameInterval = time.Second / 100

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model driving the simulator view. Unlike
// debugger.go's model, it also owns the memory-mapped serial port and an
// optional symbol table, and supports a running (auto-step) mode rather
// than stepping only on keypress.
type Model struct {
	cpu   *exec.CPU
	port  *ioport.Port
	table *symtab.Table

	offset   uint16 // page-table anchor, set to the program's load address
	prevPC   uint16
	running  bool
	rawDump  bool // toggled by "d": spew.Sdump the decoded Instruction struct
	err      error
	output   strings.Builder
}

// New returns a Model ready to drive cpu, polling port once per step and
// decorating disassembly with table (table may be nil).
func New(cpu *exec.CPU, port *ioport.Port, table *symtab.Table, offset uint16) Model {
	return Model{cpu: cpu, port: port, table: table, offset: offset}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			m.step()
			return m, nil
		case "d":
			m.rawDump = !m.rawDump
			return m, nil
		case "r":
			m.running = !m.running
			if m.running {
				return m, tick()
			}
			return m, nil
		}

	case tickMsg:
		if !m.running {
			return m, nil
		}
		m.step()
		if m.err != nil {
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

// step runs one executor cycle and drains any ready serial output, per
// spec.md §5: "after each step the host may observe memory[0xFF00..=0xFF0F]".
func (m *Model) step() {
	m.prevPC = m.cpu.ProgramCounter
	if err := m.cpu.Step(); err != nil {
		m.err = err
		m.running = false
		return
	}
	if m.port.OutputReady() {
		m.output.WriteByte(m.port.ConsumeOutput())
	}
}

func (m Model) renderPage(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := 0; i < 16; i++ {
		addr := start + uint16(i)
		b := m.cpu.Read(addr)
		if addr == m.cpu.ProgramCounter {
			s += fmt.Sprintf("[%02x]", b)
		} else {
			s += fmt.Sprintf(" %02x ", b)
		}
	}
	return s
}

func (m Model) pageTable() string {
	header := "page | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf(" %01x  ", b)
	}
	lines := []string{header}

	pcPage := m.cpu.ProgramCounter &^ 0x0F
	stackPage := uint16(0x0100)
	offsets := []uint16{m.offset &^ 0x0F, pcPage, stackPage}
	seen := map[uint16]bool{}
	for _, o := range offsets {
		if seen[o] {
			continue
		}
		seen[o] = true
		lines = append(lines, m.renderPage(o))
	}
	return strings.Join(lines, "\n")
}

func (m Model) status() string {
	flagBit := func(mask byte, letter string) string {
		if m.cpu.Status&mask != 0 {
			return letter
		}
		return "_"
	}
	flags := strings.Join([]string{
		flagBit(0x80, "C"), flagBit(0x40, "Z"), flagBit(0x20, "G"),
		flagBit(0x10, "L"), flagBit(0x08, "E"), flagBit(0x04, "N"),
	}, " ")

	var regs strings.Builder
	for i, r := range m.cpu.Registers {
		fmt.Fprintf(&regs, "r%d=%02x ", i, r)
	}

	return fmt.Sprintf(`
 PC: %04x (was %04x)
  A: %02x
 SP: %02x
Op1: %02x  Op2: %02x
  C Z G L E N
  %s
%s`,
		m.cpu.ProgramCounter, m.prevPC,
		m.cpu.Accumulator,
		m.cpu.StackPointer,
		m.cpu.Operand1, m.cpu.Operand2,
		flags,
		regs.String(),
	)
}

func (m Model) currentInstruction() string {
	end := m.cpu.ProgramCounter + 8
	if end < m.cpu.ProgramCounter {
		end = 0xFFFF
	}
	lines := disasm.Disassemble(m.cpu.Memory[:], m.cpu.ProgramCounter, end, m.table)
	if len(lines) == 0 {
		return ""
	}
	return "> " + lines[0]
}

// rawInstructionDump mirrors debugger.go's View spew.Sdump(Opcodes[...])
// panel: instead of dumping the teacher's static opcode-table entry, it
// dumps the live decoded sim/decode.Instruction struct at PC, toggled by
// the "d" key since it is far noisier than the mnemonic line.
func (m Model) rawInstructionDump() string {
	instr, _, err := decode.Decode(m.cpu.Memory[:], m.cpu.ProgramCounter)
	if err != nil {
		return spew.Sdump(err)
	}
	return spew.Sdump(instr)
}

func (m Model) View() string {
	help := "space/j: step   r: toggle run   d: toggle raw dump   q: quit"
	if m.err != nil {
		help = fmt.Sprintf("halted: %v   q: quit", m.err)
	}

	instructionPanel := m.currentInstruction()
	if m.rawDump {
		instructionPanel = m.rawInstructionDump()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, m.pageTable(), "   ", m.status()),
		"",
		instructionPanel,
		"",
		"serial out: "+m.output.String(),
		"",
		help,
	)
}

// Run launches the interactive TUI over cpu, returning the simulator's
// final error (if execution halted on a decode failure) once the user
// quits.
func Run(cpu *exec.CPU, port *ioport.Port, table *symtab.Table, offset uint16) error {
	p := tea.NewProgram(New(cpu, port, table, offset))
	final, err := p.Run()
	if err != nil {
		return err
	}
	return final.(Model).err
}
