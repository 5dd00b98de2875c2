// Package diag collects lexer, parser and resolver diagnostics instead of
// writing them straight to stderr, so a caller (the REPL, in particular)
// can inspect whether a parse attempt produced any errors before deciding
// what to do with its output.
package diag

import (
	"fmt"
	"io"
)

// Stage identifies which pipeline phase raised a diagnostic.
type Stage uint8

const (
	Lex Stage = iota
	Parse
	Resolve
)

// Diagnostic is a single static (compile-time) error: lexical, syntactic
// or resolution. Runtime errors are not collected here — spec requires
// runtime errors to halt execution immediately with a single message,
// so they are reported directly by the evaluator (see internal/interp).
type Diagnostic struct {
	Stage   Stage
	Line    int
	At      string // offending lexeme, or "end" at EOF; empty if not applicable
	Message string
}

func (d Diagnostic) String() string {
	if d.At == "" {
		return fmt.Sprintf("[line %d] Error: %s", d.Line, d.Message)
	}
	return fmt.Sprintf("[line %d] Error at %s: %s", d.Line, d.At, d.Message)
}

// Bag accumulates diagnostics across a single lex/parse/resolve pass.
type Bag struct {
	entries []Diagnostic
}

func (b *Bag) Add(d Diagnostic) {
	b.entries = append(b.entries, d)
}

func (b *Bag) HadErrors() bool {
	return len(b.entries) > 0
}

func (b *Bag) Entries() []Diagnostic {
	return b.entries
}

// PrintTo writes every collected diagnostic to w, one per line, in the
// "[line N] Error<location>: message" format spec §6/§7 require.
func (b *Bag) PrintTo(w io.Writer) {
	for _, d := range b.entries {
		fmt.Fprintln(w, d.String())
	}
}
