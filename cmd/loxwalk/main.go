// Command loxwalk runs Lox programs: a file-mode driver and a REPL,
// per spec §6. Parsing/resolution/evaluation themselves live in
// internal/parser, internal/resolver and internal/interp; this package
// is only the process boundary (exit codes, stdio, profiling).
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"loxwalk/internal/ast"
	"loxwalk/internal/diag"
	"loxwalk/internal/interp"
	"loxwalk/internal/parser"
	"loxwalk/internal/resolver"
)

const (
	exitOK          = 0
	exitStaticError = 65
	exitRuntimeErr  = 70
	exitIOError     = 74
)

func main() {
	if profOut, has := os.LookupEnv("CPUPROFILE"); has && profOut != "" {
		f, err := os.Create(profOut)
		if err != nil {
			log.Fatalf("cannot create profile output file %q: %v", profOut, err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	switch len(os.Args) {
	case 1:
		runREPL()
	case 2:
		os.Exit(runFile(os.Args[1]))
	default:
		fmt.Fprintf(os.Stderr, "Usage: %s [script]\n", os.Args[0])
		os.Exit(1)
	}
}

func runFile(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open file %q: %v\n", path, err)
		return exitIOError
	}

	diags := &diag.Bag{}
	program := parser.New(string(source), diags).Parse()
	if !diags.HadErrors() {
		resolver.Resolve(program, diags)
	}
	if diags.HadErrors() {
		diags.PrintTo(os.Stderr)
		return exitStaticError
	}

	if err := interp.New().Interpret(program); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return exitRuntimeErr
	}
	return exitOK
}

// runREPL implements spec §6's line-at-a-time loop: each line is first
// tried as a sequence of statements; if that fails to parse, it is
// tried as a single expression and its value is printed. Interpreter
// state (globals, function/class definitions) persists across lines.
func runREPL() {
	scanner := bufio.NewScanner(os.Stdin)
	it := interp.New()

	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			break
		}

		runLine(it, line)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(exitIOError)
	}
}

func runLine(it *interp.Interpreter, line string) {
	stmtDiags := &diag.Bag{}
	program := parser.New(line, stmtDiags).Parse()

	if !stmtDiags.HadErrors() {
		resolver.Resolve(program, stmtDiags)
	}
	if !stmtDiags.HadErrors() {
		if err := it.Interpret(program); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return
	}

	exprDiags := &diag.Bag{}
	p := parser.New(line, exprDiags)
	expr, ok := p.ParseExpression()
	if !ok {
		stmtDiags.PrintTo(os.Stderr)
		return
	}

	resolver.Resolve([]ast.Stmt{&ast.Expression{Expression: expr}}, exprDiags)
	if exprDiags.HadErrors() {
		exprDiags.PrintTo(os.Stderr)
		return
	}

	value, err := it.EvaluateExpression(expr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return
	}
	fmt.Println(value.String())
}
