// Package diag collects source-position diagnostics emitted while parsing,
// encoding and resolving a GoldASM program. It deliberately stays thin:
// there is no severity-specific formatting engine, no injected logger
// interface, just a slice of Diagnostic values and a couple of constructors,
// matching the teacher's habit of printing close to where the event
// happens rather than routing everything through a logging abstraction.
package diag

import "fmt"

// Severity distinguishes a hard-abort condition from advisory output.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Position names the source file and line a Diagnostic refers to. Line is
// 1-indexed; zero means "no specific line" (used for whole-file errors such
// as a missing include).
type Position struct {
	File string
	Line int
}

func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Diagnostic is one reported condition.
type Diagnostic struct {
	Pos      Position
	Message  string
	Severity Severity
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Bag accumulates diagnostics during a single assemble run.
type Bag struct {
	items []Diagnostic
}

// Warnf records a warning at pos.
func (b *Bag) Warnf(pos Position, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...), Severity: Warning})
}

// Errorf records an error at pos.
func (b *Bag) Errorf(pos Position, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...), Severity: Error})
}

// All returns every diagnostic recorded so far, in emission order.
func (b *Bag) All() []Diagnostic { return b.items }

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
