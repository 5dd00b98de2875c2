package natives

import (
	"time"

	"loxwalk/internal/object"
)

// clockFns provides the minimum native function spec §4.4 requires:
// wall-clock time in seconds, for crude benchmarking inside a script.
func clockFns() []*object.NativeFunction {
	return []*object.NativeFunction{
		{
			Name:  "clock",
			Arity: 0,
			Fn: func(args []object.Value) (object.Value, error) {
				return object.Number(float64(time.Now().UnixNano()) / 1e9), nil
			},
		},
	}
}
