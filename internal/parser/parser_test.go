package parser

import (
	"testing"

	"loxwalk/internal/ast"
	"loxwalk/internal/diag"
)

func parseProgram(t *testing.T, src string) ([]ast.Stmt, *diag.Bag) {
	t.Helper()
	var bag diag.Bag
	stmts := New(src, &bag).Parse()
	return stmts, &bag
}

func TestParseLiteralPrint(t *testing.T) {
	stmts, bag := parseProgram(t, `print 1 + 2;`)
	if bag.HadErrors() {
		t.Fatalf("unexpected errors: %v", bag.Entries())
	}
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	pr, ok := stmts[0].(*ast.Print)
	if !ok {
		t.Fatalf("stmt = %T, want *ast.Print", stmts[0])
	}
	bin, ok := pr.Expression.(*ast.Binary)
	if !ok {
		t.Fatalf("expr = %T, want *ast.Binary", pr.Expression)
	}
	if bin.Operator.Lexeme != "+" {
		t.Fatalf("operator = %q, want +", bin.Operator.Lexeme)
	}
}

func TestForDesugarsToWhileInBlock(t *testing.T) {
	stmts, bag := parseProgram(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	if bag.HadErrors() {
		t.Fatalf("unexpected errors: %v", bag.Entries())
	}
	block, ok := stmts[0].(*ast.Block)
	if !ok {
		t.Fatalf("top-level for-stmt = %T, want *ast.Block", stmts[0])
	}
	if len(block.Statements) != 2 {
		t.Fatalf("desugared block has %d statements, want 2 (init, while)", len(block.Statements))
	}
	if _, ok := block.Statements[0].(*ast.Var); !ok {
		t.Fatalf("first statement = %T, want *ast.Var", block.Statements[0])
	}
	while, ok := block.Statements[1].(*ast.While)
	if !ok {
		t.Fatalf("second statement = %T, want *ast.While", block.Statements[1])
	}
	body, ok := while.Body.(*ast.Block)
	if !ok {
		t.Fatalf("while body = %T, want *ast.Block (body + increment)", while.Body)
	}
	if len(body.Statements) != 2 {
		t.Fatalf("while body has %d statements, want 2 (print, increment)", len(body.Statements))
	}
}

func TestWhileWithoutConditionDefaultsToTrue(t *testing.T) {
	stmts, bag := parseProgram(t, `for (;;) print 1;`)
	if bag.HadErrors() {
		t.Fatalf("unexpected errors: %v", bag.Entries())
	}
	block := stmts[0].(*ast.Block)
	while := block.Statements[0].(*ast.While)
	lit, ok := while.Condition.(*ast.Literal)
	if !ok || lit.Value != true {
		t.Fatalf("condition = %#v, want literal true", while.Condition)
	}
}

func TestDanglingElseBindsToNearestIf(t *testing.T) {
	stmts, bag := parseProgram(t, `if (true) if (false) print 1; else print 2;`)
	if bag.HadErrors() {
		t.Fatalf("unexpected errors: %v", bag.Entries())
	}
	outer := stmts[0].(*ast.If)
	if outer.ElseBranch != nil {
		t.Fatal("outer if should have no else branch")
	}
	inner, ok := outer.ThenBranch.(*ast.If)
	if !ok {
		t.Fatalf("then-branch = %T, want *ast.If", outer.ThenBranch)
	}
	if inner.ElseBranch == nil {
		t.Fatal("inner if should capture the else branch")
	}
}

func TestAssignmentTargetMustBeVariableOrGet(t *testing.T) {
	_, bag := parseProgram(t, `1 + 2 = 3;`)
	if !bag.HadErrors() {
		t.Fatal("expected an invalid-assignment-target error")
	}
}

func TestGetBecomesSetOnAssignment(t *testing.T) {
	stmts, bag := parseProgram(t, `a.b = 1;`)
	if bag.HadErrors() {
		t.Fatalf("unexpected errors: %v", bag.Entries())
	}
	exprStmt := stmts[0].(*ast.Expression)
	set, ok := exprStmt.Expression.(*ast.Set)
	if !ok {
		t.Fatalf("expr = %T, want *ast.Set", exprStmt.Expression)
	}
	if set.Name.Lexeme != "b" {
		t.Fatalf("set field = %q, want b", set.Name.Lexeme)
	}
}

func TestSuperRequiresDotMethod(t *testing.T) {
	_, bag := parseProgram(t, `class A { m() { super; } }`)
	if !bag.HadErrors() {
		t.Fatal("expected a parse error for bare 'super'")
	}
}

func TestClassWithSuperclassAndMethods(t *testing.T) {
	stmts, bag := parseProgram(t, `class B < A { m() { print "hi"; } }`)
	if bag.HadErrors() {
		t.Fatalf("unexpected errors: %v", bag.Entries())
	}
	class := stmts[0].(*ast.Class)
	if class.Superclass == nil || class.Superclass.Name.Lexeme != "A" {
		t.Fatalf("superclass = %#v, want A", class.Superclass)
	}
	if len(class.Methods) != 1 || class.Methods[0].Name.Lexeme != "m" {
		t.Fatalf("methods = %#v, want [m]", class.Methods)
	}
}

func TestParserDeterminism(t *testing.T) {
	src := `fun fib(n) { if (n < 2) return n; return fib(n-2) + fib(n-1); }`
	a, bagA := parseProgram(t, src)
	b, bagB := parseProgram(t, src)
	if bagA.HadErrors() || bagB.HadErrors() {
		t.Fatalf("unexpected errors: %v / %v", bagA.Entries(), bagB.Entries())
	}
	if len(a) != len(b) {
		t.Fatalf("parse runs produced different statement counts: %d vs %d", len(a), len(b))
	}
	fnA := a[0].(*ast.Function)
	fnB := b[0].(*ast.Function)
	if fnA.Name.Lexeme != fnB.Name.Lexeme || len(fnA.Body) != len(fnB.Body) {
		t.Fatal("parse runs produced structurally different ASTs for identical input")
	}
}

func TestErrorRecoverySynchronizesAfterSemicolon(t *testing.T) {
	stmts, bag := parseProgram(t, `1 + ; print 1;`)
	if !bag.HadErrors() {
		t.Fatal("expected a parse error on the malformed first statement")
	}
	found := false
	for _, s := range stmts {
		if pr, ok := s.(*ast.Print); ok {
			if lit, ok := pr.Expression.(*ast.Literal); ok && lit.Value == float64(1) {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("parser did not recover and parse the trailing print statement")
	}
}

func TestTooManyParametersIsError(t *testing.T) {
	src := "fun f("
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += ", "
		}
		src += "a" + string(rune('0'+i%10))
	}
	src += ") {}"
	_, bag := parseProgram(t, src)
	if !bag.HadErrors() {
		t.Fatal("expected a too-many-parameters error")
	}
}
