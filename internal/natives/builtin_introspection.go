package natives

import (
	"errors"
	"fmt"

	"loxwalk/internal/object"
)

// reflectionFns provides getattr/setattr/delattr/isinstance, teacher
// extensions (object/native.go) kept as supplemental builtins per
// SPEC_FULL.md. They exercise the same field map that `.` access uses.
func reflectionFns() []*object.NativeFunction {
	return []*object.NativeFunction{
		{
			Name:  "getattr",
			Arity: 2,
			Fn: func(args []object.Value) (object.Value, error) {
				inst, field, err := instanceAndField(args, "getattr")
				if err != nil {
					return nil, err
				}
				if v, ok := inst.Get(field); ok {
					return v, nil
				}
				return nil, fmt.Errorf("Instance has no attribute '%s'.", field)
			},
		},
		{
			Name:  "setattr",
			Arity: 3,
			Fn: func(args []object.Value) (object.Value, error) {
				inst, field, err := instanceAndField(args, "setattr")
				if err != nil {
					return nil, err
				}
				inst.Set(field, args[2])
				return object.Nil{}, nil
			},
		},
		{
			Name:  "delattr",
			Arity: 2,
			Fn: func(args []object.Value) (object.Value, error) {
				inst, field, err := instanceAndField(args, "delattr")
				if err != nil {
					return nil, err
				}
				if _, ok := inst.Fields[field]; !ok {
					return nil, fmt.Errorf("Instance has no attribute '%s'.", field)
				}
				delete(inst.Fields, field)
				return object.Nil{}, nil
			},
		},
		{
			Name:  "isinstance",
			Arity: 2,
			Fn: func(args []object.Value) (object.Value, error) {
				inst, ok := args[0].(*object.Instance)
				if !ok {
					return nil, errors.New("First argument to 'isinstance' must be an instance.")
				}
				class, ok := args[1].(*object.Class)
				if !ok {
					return nil, errors.New("Second argument to 'isinstance' must be a class.")
				}
				for c := inst.Class; c != nil; c = c.Superclass {
					if c == class {
						return object.Boolean(true), nil
					}
				}
				return object.Boolean(false), nil
			},
		},
	}
}

func instanceAndField(args []object.Value, fnName string) (*object.Instance, string, error) {
	inst, ok := args[0].(*object.Instance)
	if !ok {
		return nil, "", fmt.Errorf("First argument to '%s' must be an instance.", fnName)
	}
	field, ok := args[1].(object.String)
	if !ok {
		return nil, "", fmt.Errorf("Second argument to '%s' must be a field name.", fnName)
	}
	return inst, string(field), nil
}
