package eval

import (
	"fmt"
	"time"
)

// registerBuiltins installs the host-provided functions into the
// global environment. clock and echo are the minimum required surface;
// len, type, and str round out the set the way the teacher's
// commonMethods table (length, typeof, tostring) does for its dialect.
func registerBuiltins(in *Interpreter) {
	define := func(name string, arity int, fn BuiltinFunc) {
		in.Globals.Define(name, &Builtin{Name: name, Arg: arity, Fn: fn})
	}

	define("clock", 0, func(in *Interpreter, args []any) (any, error) {
		return float64(time.Now().UnixNano()) / float64(time.Second), nil
	})

	define("echo", 1, func(in *Interpreter, args []any) (any, error) {
		return args[0], nil
	})

	define("len", 1, func(in *Interpreter, args []any) (any, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("len: argument must be a string")
		}
		return float64(len(s)), nil
	})

	define("type", 1, func(in *Interpreter, args []any) (any, error) {
		return typeName(args[0]), nil
	})

	define("str", 1, func(in *Interpreter, args []any) (any, error) {
		return stringify(args[0]), nil
	})
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case Callable:
		return "function"
	default:
		return "object"
	}
}
