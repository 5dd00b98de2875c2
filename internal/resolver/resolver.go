// Package resolver is the static pre-pass described in spec §4.3: it
// walks the whole program exactly once, after parsing, and annotates
// every Variable/Assign/This/Super node with a scope distance (or -1 for
// a global reference), while enforcing the scope and usage rules that
// the evaluator depends on (self-referential initializers, `this`/`super`
// outside a class, initializers that `return` a value, and so on).
package resolver

import (
	"loxwalk/internal/ast"
	"loxwalk/internal/diag"
	"loxwalk/internal/token"
)

type Resolver struct {
	scopes []*scope

	currentFunction functionKind
	currentClass    classKind
	loopDepth       int

	diags *diag.Bag
}

// Resolve runs the static pass over a whole program. Errors are appended
// to diags; the caller should not execute the program if diags already
// had errors, or gained any during this call.
func Resolve(program []ast.Stmt, diags *diag.Bag) {
	r := &Resolver{diags: diags}
	r.resolveStmts(program)
}

// Statements
// --------------------------------------------------------

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(s.Statements)
		r.endScope()

	case *ast.Expression:
		r.resolveExpr(s.Expression)

	case *ast.Print:
		r.resolveExpr(s.Expression)

	case *ast.Assert:
		r.resolveExpr(s.Expression)

	case *ast.Break:
		if r.loopDepth == 0 {
			r.errorAt(s.Keyword, "Cannot use 'break' outside of a loop.")
		}

	case *ast.Continue:
		if r.loopDepth == 0 {
			r.errorAt(s.Keyword, "Cannot use 'continue' outside of a loop.")
		}

	case *ast.Return:
		if r.currentFunction == noFunction {
			r.errorAt(s.Keyword, "Cannot return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == inInitializer {
				r.errorAt(s.Keyword, "Cannot return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}

	case *ast.If:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.ThenBranch)
		if s.ElseBranch != nil {
			r.resolveStmt(s.ElseBranch)
		}

	case *ast.While:
		r.resolveExpr(s.Condition)
		r.loopDepth++
		r.resolveStmt(s.Body)
		r.loopDepth--

	case *ast.Var:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)

	case *ast.Function:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, inFunction)

	case *ast.Class:
		r.resolveClass(s)

	default:
		panic("resolver: unhandled statement type")
	}
}

func (r *Resolver) resolveClass(s *ast.Class) {
	r.declare(s.Name)
	r.define(s.Name)

	enclosingClass := r.currentClass
	r.currentClass = inClass

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.errorAt(s.Name, "A class cannot inherit from itself.")
		} else {
			r.currentClass = inSubclass
			r.resolveExpr(s.Superclass)
		}

		r.beginScope()
		r.declareAndDefineName("super")
	}

	r.beginScope()
	r.declareAndDefineName("this")

	for _, method := range s.Methods {
		kind := inMethod
		if method.Name.Lexeme == "init" {
			kind = inInitializer
		}
		r.resolveFunction(method, kind)
	}

	r.endScope()

	if s.Superclass != nil {
		r.endScope()
	}

	r.currentClass = enclosingClass
}

func (r *Resolver) resolveFunction(fn *ast.Function, kind functionKind) {
	enclosingFunction := r.currentFunction
	enclosingLoop := r.loopDepth
	r.currentFunction = kind
	r.loopDepth = 0

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()

	r.currentFunction = enclosingFunction
	r.loopDepth = enclosingLoop
}

// Expressions
// --------------------------------------------------------

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Literal:
		// no identifiers to resolve

	case *ast.Grouping:
		r.resolveExpr(e.Expr)

	case *ast.Unary:
		r.resolveExpr(e.Right)

	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Arguments {
			r.resolveExpr(arg)
		}

	case *ast.Get:
		r.resolveExpr(e.Object)

	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)

	case *ast.Variable:
		if len(r.scopes) > 0 {
			if state, ok := r.scopes[len(r.scopes)-1].vars[e.Name.Lexeme]; ok && state == declared {
				r.errorAt(e.Name, "Cannot read local variable in its own initializer.")
			}
		}
		e.Distance = r.resolveLocal(e.Name)

	case *ast.Assign:
		r.resolveExpr(e.Value)
		e.Distance = r.resolveLocal(e.Name)

	case *ast.This:
		if r.currentClass == noClass {
			r.errorAt(e.Keyword, "Cannot use 'this' outside of a class.")
			e.Distance = -1
			return
		}
		e.Distance = r.resolveLocal(e.Keyword)

	case *ast.Super:
		switch r.currentClass {
		case noClass:
			r.errorAt(e.Keyword, "Cannot use 'super' outside of a class.")
		case inClass:
			r.errorAt(e.Keyword, "Cannot use 'super' in a class with no superclass.")
		}
		e.Distance = r.resolveLocal(e.Keyword)

	default:
		panic("resolver: unhandled expression type")
	}
}

// Scope bookkeeping
// --------------------------------------------------------

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, newScope())
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare inserts name into the innermost scope as not-yet-initialized.
// Redeclaring a name in a local scope is an error; globals (no open
// scope) may be redeclared freely.
func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	top := r.scopes[len(r.scopes)-1]
	if _, exists := top.vars[name.Lexeme]; exists {
		r.errorAt(name, "Variable '"+name.Lexeme+"' already declared in this scope.")
		return
	}
	top.vars[name.Lexeme] = declared
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1].vars[name.Lexeme] = defined
}

// declareAndDefineName seeds a synthetic binding (`this`, `super`) that
// has no source token of its own.
func (r *Resolver) declareAndDefineName(name string) {
	r.scopes[len(r.scopes)-1].vars[name] = defined
}

// resolveLocal searches the scope stack innermost-first; on a match it
// marks the binding Read and returns its distance. No match means the
// reference is global, reported as distance -1.
func (r *Resolver) resolveLocal(name token.Token) int {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if state, ok := r.scopes[i].vars[name.Lexeme]; ok {
			r.scopes[i].vars[name.Lexeme] = maxState(state, read)
			return len(r.scopes) - 1 - i
		}
	}
	return -1
}

func maxState(a, b varState) varState {
	if b > a {
		return b
	}
	return a
}

func (r *Resolver) errorAt(tok token.Token, message string) {
	at := "'" + tok.Lexeme + "'"
	if tok.Kind == token.END_OF_FILE {
		at = "end"
	}
	r.diags.Add(diag.Diagnostic{Stage: diag.Resolve, Line: tok.Line, At: at, Message: message})
}
