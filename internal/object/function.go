package object

import (
	"fmt"

	"loxwalk/internal/ast"
)

// Function is a user-defined Lox function or method, closing over the
// environment active at its point of declaration.
type Function struct {
	Declaration   *ast.Function
	Closure       *Environment
	IsInitializer bool
}

func (*Function) loxValue() {}

func (f *Function) String() string {
	return fmt.Sprintf("<fn %s>", f.Declaration.Name.Lexeme)
}

func (f *Function) Arity() int {
	return len(f.Declaration.Params)
}

// Bind produces a bound method: a fresh function whose closure extends
// f's closure with a one-entry frame holding `this`.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Declaration: f.Declaration, Closure: env, IsInitializer: f.IsInitializer}
}

// NativeFunction wraps a builtin implemented in Go; registered into the
// global environment at interpreter startup (spec §4.4).
type NativeFunction struct {
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

func (*NativeFunction) loxValue() {}

func (n *NativeFunction) String() string {
	return fmt.Sprintf("<native fn %s>", n.Name)
}
