package natives

import "loxwalk/internal/object"

// stringFns provides the `string()` conversion native, a teacher
// extension (object/native.go's `tostring`) kept as a supplemental
// builtin per SPEC_FULL.md.
func stringFns() []*object.NativeFunction {
	return []*object.NativeFunction{
		{
			Name:  "string",
			Arity: 1,
			Fn: func(args []object.Value) (object.Value, error) {
				return object.String(args[0].String()), nil
			},
		},
	}
}
