// Package interp implements the tree-walking evaluator: the final
// stage of the pipeline, consuming an AST already annotated with
// resolver distances and producing side effects (print, runtime
// errors) plus a final control outcome.
package interp

import (
	"fmt"
	"os"

	"loxwalk/internal/ast"
	"loxwalk/internal/natives"
	"loxwalk/internal/object"
	"loxwalk/internal/token"
)

// Interpreter walks a resolved AST. Zero value is not usable; build one
// with New.
type Interpreter struct {
	globals *object.Global
	env     *object.Environment // nil while executing at top level
	stdout  *os.File

	// returnValue is the side channel a ControlReturn signal uses to
	// carry its value back up to the nearest call frame, since
	// ControlKind alone carries no payload.
	returnValue object.Value
}

// New builds an Interpreter with natives registered into a fresh
// global environment.
func New() *Interpreter {
	globals := object.NewGlobal()
	natives.Register(globals)
	return &Interpreter{globals: globals, stdout: os.Stdout}
}

// Interpret runs a resolved program to completion, or returns the
// runtime error that halted it (spec §7's third error taxon).
func (i *Interpreter) Interpret(program []ast.Stmt) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(runtimeError); ok {
				err = rerr
				return
			}
			panic(r)
		}
	}()

	for _, stmt := range program {
		i.execute(stmt)
	}
	return nil
}

func (i *Interpreter) execute(s ast.Stmt) ast.ControlKind {
	return s.Accept(i)
}

// EvaluateExpression runs a single standalone expression, for the
// REPL's "try statements, else try an expression" fallback (spec §6).
func (i *Interpreter) EvaluateExpression(e ast.Expr) (value object.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(runtimeError); ok {
				err = rerr
				return
			}
			panic(r)
		}
	}()
	return i.evaluate(e), nil
}

func (i *Interpreter) evaluate(e ast.Expr) object.Value {
	return e.Accept(i).(object.Value)
}

// define inserts into the current frame: the local environment if one
// is active, otherwise the global frame (spec §4.4's `define` rule).
func (i *Interpreter) define(name string, v object.Value) {
	if i.env == nil {
		i.globals.Define(name, v)
	} else {
		i.env.Define(name, v)
	}
}

// Statements
// --------------------------------------------------------

func (i *Interpreter) VisitBlockStmt(s *ast.Block) ast.ControlKind {
	return i.executeBlock(s.Statements, object.NewEnvironment(i.env))
}

func (i *Interpreter) executeBlock(statements []ast.Stmt, env *object.Environment) ast.ControlKind {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, stmt := range statements {
		if ck := i.execute(stmt); ck != ast.ControlNormal {
			return ck
		}
	}
	return ast.ControlNormal
}

func (i *Interpreter) VisitExpressionStmt(s *ast.Expression) ast.ControlKind {
	i.evaluate(s.Expression)
	return ast.ControlNormal
}

func (i *Interpreter) VisitPrintStmt(s *ast.Print) ast.ControlKind {
	fmt.Fprintln(i.stdout, i.evaluate(s.Expression).String())
	return ast.ControlNormal
}

func (i *Interpreter) VisitAssertStmt(s *ast.Assert) ast.ControlKind {
	if !object.Truthy(i.evaluate(s.Expression)) {
		panic(newRuntimeError(s.Keyword, "Assertion failure."))
	}
	return ast.ControlNormal
}

func (i *Interpreter) VisitBreakStmt(s *ast.Break) ast.ControlKind {
	return ast.ControlBreak
}

func (i *Interpreter) VisitContinueStmt(s *ast.Continue) ast.ControlKind {
	return ast.ControlContinue
}

func (i *Interpreter) VisitReturnStmt(s *ast.Return) ast.ControlKind {
	var value object.Value = object.Nil{}
	if s.Value != nil {
		value = i.evaluate(s.Value)
	}
	i.returnValue = value
	return ast.ControlReturn
}

func (i *Interpreter) VisitIfStmt(s *ast.If) ast.ControlKind {
	if object.Truthy(i.evaluate(s.Condition)) {
		return i.execute(s.ThenBranch)
	}
	if s.ElseBranch != nil {
		return i.execute(s.ElseBranch)
	}
	return ast.ControlNormal
}

func (i *Interpreter) VisitWhileStmt(s *ast.While) ast.ControlKind {
	for object.Truthy(i.evaluate(s.Condition)) {
		switch ck := i.execute(s.Body); ck {
		case ast.ControlNormal, ast.ControlContinue:
			// fall through to next iteration
		case ast.ControlBreak:
			return ast.ControlNormal
		default:
			return ck
		}
	}
	return ast.ControlNormal
}

func (i *Interpreter) VisitVarStmt(s *ast.Var) ast.ControlKind {
	var value object.Value = object.Nil{}
	if s.Initializer != nil {
		value = i.evaluate(s.Initializer)
	}
	i.define(s.Name.Lexeme, value)
	return ast.ControlNormal
}

func (i *Interpreter) VisitFunctionStmt(s *ast.Function) ast.ControlKind {
	fn := &object.Function{Declaration: s, Closure: i.env}
	i.define(s.Name.Lexeme, fn)
	return ast.ControlNormal
}

func (i *Interpreter) VisitClassStmt(s *ast.Class) ast.ControlKind {
	var superclass *object.Class
	if s.Superclass != nil {
		sc := i.evaluate(s.Superclass)
		class, ok := sc.(*object.Class)
		if !ok {
			panic(newRuntimeError(s.Superclass.Name, "Superclass must be a class."))
		}
		superclass = class
	}

	env := i.env
	if superclass != nil {
		env = object.NewEnvironment(i.env)
		env.Define("super", superclass)
	}

	methods := make(map[string]*object.Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = &object.Function{
			Declaration:   m,
			Closure:       env,
			IsInitializer: m.Name.Lexeme == "init",
		}
	}

	class := &object.Class{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}
	i.define(s.Name.Lexeme, class)
	return ast.ControlNormal
}

// Expressions
// --------------------------------------------------------

func (i *Interpreter) VisitLiteralExpr(e *ast.Literal) any {
	return literalValue(e.Value)
}

func literalValue(v any) object.Value {
	switch v := v.(type) {
	case nil:
		return object.Nil{}
	case bool:
		return object.Boolean(v)
	case float64:
		return object.Number(v)
	case string:
		return object.String(v)
	default:
		panic(fmt.Sprintf("interp: literal of unsupported Go type %T", v))
	}
}

func (i *Interpreter) VisitGroupingExpr(e *ast.Grouping) any {
	return i.evaluate(e.Expr)
}

func (i *Interpreter) VisitVariableExpr(e *ast.Variable) any {
	return i.lookUpVariable(e.Name, e.Distance)
}

func (i *Interpreter) lookUpVariable(name token.Token, distance int) object.Value {
	if distance >= 0 {
		return i.env.GetAt(distance, name.Lexeme)
	}
	v, ok := i.globals.Get(name.Lexeme)
	if !ok {
		panic(newRuntimeError(name, "Undefined variable '%s'.", name.Lexeme))
	}
	return v
}

func (i *Interpreter) VisitAssignExpr(e *ast.Assign) any {
	value := i.evaluate(e.Value)
	if e.Distance >= 0 {
		i.env.AssignAt(e.Distance, e.Name.Lexeme, value)
	} else if !i.globals.Assign(e.Name.Lexeme, value) {
		panic(newRuntimeError(e.Name, "Undefined variable '%s'.", e.Name.Lexeme))
	}
	return value
}

func (i *Interpreter) VisitLogicalExpr(e *ast.Logical) any {
	left := i.evaluate(e.Left)
	switch e.Operator.Kind {
	case token.OR:
		if object.Truthy(left) {
			return left
		}
	default: // token.AND
		if !object.Truthy(left) {
			return left
		}
	}
	return i.evaluate(e.Right)
}

func (i *Interpreter) VisitUnaryExpr(e *ast.Unary) any {
	right := i.evaluate(e.Right)
	switch e.Operator.Kind {
	case token.BANG:
		return object.Boolean(!object.Truthy(right))
	case token.MINUS:
		n, ok := right.(object.Number)
		if !ok {
			panic(newRuntimeError(e.Operator, "Operand must be a number."))
		}
		return -n
	default:
		panic("interp: invalid unary operator " + e.Operator.Kind.String())
	}
}

func (i *Interpreter) VisitBinaryExpr(e *ast.Binary) any {
	left := i.evaluate(e.Left)
	right := i.evaluate(e.Right)

	numbers := func() (object.Number, object.Number, bool) {
		ln, lok := left.(object.Number)
		rn, rok := right.(object.Number)
		return ln, rn, lok && rok
	}

	switch e.Operator.Kind {
	case token.PLUS:
		if ln, rn, ok := numbers(); ok {
			return ln + rn
		}
		if ls, ok := left.(object.String); ok {
			if rs, ok := right.(object.String); ok {
				return ls + rs
			}
		}
		panic(newRuntimeError(e.Operator, "Operands must be two numbers or two strings."))
	case token.MINUS:
		ln, rn, ok := numbers()
		if !ok {
			panic(newRuntimeError(e.Operator, "Operands must be numbers."))
		}
		return ln - rn
	case token.STAR:
		ln, rn, ok := numbers()
		if !ok {
			panic(newRuntimeError(e.Operator, "Operands must be numbers."))
		}
		return ln * rn
	case token.SLASH:
		ln, rn, ok := numbers()
		if !ok {
			panic(newRuntimeError(e.Operator, "Operands must be numbers."))
		}
		return ln / rn // division by zero yields the IEEE-754 result
	case token.GREATER:
		ln, rn, ok := numbers()
		if !ok {
			panic(newRuntimeError(e.Operator, "Operands must be numbers."))
		}
		return object.Boolean(ln > rn)
	case token.GREATER_EQUAL:
		ln, rn, ok := numbers()
		if !ok {
			panic(newRuntimeError(e.Operator, "Operands must be numbers."))
		}
		return object.Boolean(ln >= rn)
	case token.LESS:
		ln, rn, ok := numbers()
		if !ok {
			panic(newRuntimeError(e.Operator, "Operands must be numbers."))
		}
		return object.Boolean(ln < rn)
	case token.LESS_EQUAL:
		ln, rn, ok := numbers()
		if !ok {
			panic(newRuntimeError(e.Operator, "Operands must be numbers."))
		}
		return object.Boolean(ln <= rn)
	case token.EQUAL_EQUAL:
		return object.Boolean(object.Equal(left, right))
	case token.BANG_EQUAL:
		return object.Boolean(!object.Equal(left, right))
	default:
		panic("interp: invalid binary operator " + e.Operator.Kind.String())
	}
}

func (i *Interpreter) VisitCallExpr(e *ast.Call) any {
	callee := i.evaluate(e.Callee)

	args := make([]object.Value, len(e.Arguments))
	for idx, a := range e.Arguments {
		args[idx] = i.evaluate(a)
	}

	switch callee := callee.(type) {
	case *object.Function:
		return i.callFunction(callee, args, e.Paren)
	case *object.NativeFunction:
		if len(args) != callee.Arity {
			panic(newRuntimeError(e.Paren, "Expected %d arguments but got %d.", callee.Arity, len(args)))
		}
		result, err := callee.Fn(args)
		if err != nil {
			panic(newRuntimeError(e.Paren, "%s", err.Error()))
		}
		return result
	case *object.Class:
		return i.instantiate(callee, args, e.Paren)
	default:
		panic(newRuntimeError(e.Paren, "Can only call functions and classes."))
	}
}

func (i *Interpreter) callFunction(fn *object.Function, args []object.Value, site token.Token) object.Value {
	if len(args) != fn.Arity() {
		panic(newRuntimeError(site, "Expected %d arguments but got %d.", fn.Arity(), len(args)))
	}

	callEnv := object.NewEnvironment(fn.Closure)
	for idx, param := range fn.Declaration.Params {
		callEnv.Define(param.Lexeme, args[idx])
	}

	ck := i.executeBlock(fn.Declaration.Body, callEnv)

	if fn.IsInitializer {
		return fn.Closure.GetAt(0, "this")
	}
	if ck == ast.ControlReturn {
		return i.returnValue
	}
	return object.Nil{}
}

func (i *Interpreter) instantiate(class *object.Class, args []object.Value, site token.Token) object.Value {
	if len(args) != class.Arity() {
		panic(newRuntimeError(site, "Expected %d arguments but got %d.", class.Arity(), len(args)))
	}

	instance := object.NewInstance(class)
	if init := class.FindMethod("init"); init != nil {
		i.callFunction(init.Bind(instance), args, site)
	}
	return instance
}

func (i *Interpreter) VisitGetExpr(e *ast.Get) any {
	obj := i.evaluate(e.Object)
	instance, ok := obj.(*object.Instance)
	if !ok {
		panic(newRuntimeError(e.Name, "Only instances have properties."))
	}
	v, ok := instance.Get(e.Name.Lexeme)
	if !ok {
		panic(newRuntimeError(e.Name, "Undefined property '%s'.", e.Name.Lexeme))
	}
	return v
}

func (i *Interpreter) VisitSetExpr(e *ast.Set) any {
	obj := i.evaluate(e.Object)
	instance, ok := obj.(*object.Instance)
	if !ok {
		panic(newRuntimeError(e.Name, "Only instances have fields."))
	}
	value := i.evaluate(e.Value)
	instance.Set(e.Name.Lexeme, value)
	return value
}

func (i *Interpreter) VisitThisExpr(e *ast.This) any {
	return i.lookUpVariable(e.Keyword, e.Distance)
}

func (i *Interpreter) VisitSuperExpr(e *ast.Super) any {
	superclass := i.env.GetAt(e.Distance, "super").(*object.Class)
	// `this` always lives one frame closer than `super` (both injected
	// at class-resolution/method-binding time, see resolver.go).
	instance := i.env.GetAt(e.Distance-1, "this").(*object.Instance)

	method := superclass.FindMethod(e.Method.Lexeme)
	if method == nil {
		panic(newRuntimeError(e.Method, "Undefined property '%s'.", e.Method.Lexeme))
	}
	return method.Bind(instance)
}
