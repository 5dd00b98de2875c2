// Package natives registers the builtin functions available to every
// Lox program into the global environment at interpreter startup
// (spec §4.4). Each concern gets its own small file, the way
// daios-ai-msg splits builtin_core.go / builtin_strings.go / etc.
// rather than one large switch.
package natives

import "loxwalk/internal/object"

// Register installs every native function into global.
func Register(global *object.Global) {
	for _, n := range all() {
		global.Define(n.Name, n)
	}
}

func all() []*object.NativeFunction {
	var fns []*object.NativeFunction
	fns = append(fns, clockFns()...)
	fns = append(fns, stringFns()...)
	fns = append(fns, reflectionFns()...)
	return fns
}
