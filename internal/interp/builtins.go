package interp

import (
	"strconv"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/host"
	"github.com/dana-lang/dana/internal/registry"
	"github.com/dana-lang/dana/internal/values"
)

// RegisterBuiltins installs the small set of always-available host
// functions every Dana program can call unqualified: len, str, int,
// float, bool, range, and reason. Each is registered under the
// "builtin." namespace so Registry.Resolve's unqualified fallback finds
// it without a bare "len" entry colliding with a user-defined function
// named len in the same namespace.
func (i *Interpreter) RegisterBuiltins() {
	reg := i.Registry
	reg.Register("builtin.len", registry.NewHostFunction("len", builtinLen))
	reg.Register("builtin.str", registry.NewHostFunction("str", builtinStr))
	reg.Register("builtin.int", registry.NewHostFunction("int", builtinInt))
	reg.Register("builtin.float", registry.NewHostFunction("float", builtinFloat))
	reg.Register("builtin.bool", registry.NewHostFunction("bool", builtinBool))
	reg.Register("builtin.range", registry.NewHostFunction("range", builtinRange))
	reg.Register("builtin.reason", registry.NewHostFunction("reason", i.builtinReason))
}

func builtinLen(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return values.None(), TypeError(ast.Position{}, "len() takes exactly one argument")
	}
	switch args[0].Kind() {
	case values.KindString:
		s, _ := args[0].AsString()
		return values.Int(int64(len([]rune(s)))), nil
	case values.KindList, values.KindTuple:
		items, _ := args[0].AsList()
		return values.Int(int64(len(items))), nil
	case values.KindDict:
		return values.Int(int64(values.DictLen(args[0]))), nil
	case values.KindSet:
		return values.Int(int64(len(args[0].SetItems()))), nil
	default:
		return values.None(), TypeError(ast.Position{}, "object of type %s has no len()", args[0].Kind())
	}
}

func builtinStr(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return values.None(), TypeError(ast.Position{}, "str() takes exactly one argument")
	}
	return values.Str(args[0].Str()), nil
}

func builtinInt(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return values.None(), TypeError(ast.Position{}, "int() takes exactly one argument")
	}
	switch args[0].Kind() {
	case values.KindInt:
		return args[0], nil
	case values.KindFloat:
		f, _ := args[0].AsFloat()
		return values.Int(int64(f)), nil
	case values.KindBool:
		b, _ := args[0].AsBool()
		if b {
			return values.Int(1), nil
		}
		return values.Int(0), nil
	case values.KindString:
		s, _ := args[0].AsString()
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return values.None(), ValueError(ast.Position{}, "invalid literal for int(): %q", s)
		}
		return values.Int(n), nil
	default:
		return values.None(), TypeError(ast.Position{}, "cannot convert %s to int", args[0].Kind())
	}
}

func builtinFloat(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return values.None(), TypeError(ast.Position{}, "float() takes exactly one argument")
	}
	switch args[0].Kind() {
	case values.KindFloat:
		return args[0], nil
	case values.KindInt:
		i, _ := args[0].AsInt()
		return values.Float(float64(i)), nil
	default:
		return values.None(), TypeError(ast.Position{}, "cannot convert %s to float", args[0].Kind())
	}
}

func builtinBool(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return values.None(), TypeError(ast.Position{}, "bool() takes exactly one argument")
	}
	return values.Bool(args[0].Truthy()), nil
}

func builtinRange(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		v, ok := args[0].AsInt()
		if !ok {
			return values.None(), TypeError(ast.Position{}, "range() arguments must be integers")
		}
		stop = v
	case 2, 3:
		sv, ok1 := args[0].AsInt()
		ev, ok2 := args[1].AsInt()
		if !ok1 || !ok2 {
			return values.None(), TypeError(ast.Position{}, "range() arguments must be integers")
		}
		start, stop = sv, ev
		if len(args) == 3 {
			stv, ok := args[2].AsInt()
			if !ok {
				return values.None(), TypeError(ast.Position{}, "range() arguments must be integers")
			}
			step = stv
		}
	default:
		return values.None(), TypeError(ast.Position{}, "range() takes 1 to 3 arguments")
	}
	if step == 0 {
		return values.None(), ValueError(ast.Position{}, "range() step argument must not be zero")
	}
	var out []values.Value
	if step > 0 {
		for v := start; v < stop; v += step {
			out = append(out, values.Int(v))
		}
	} else {
		for v := start; v > stop; v += step {
			out = append(out, values.Int(v))
		}
	}
	return values.List(out), nil
}

// coerceAssign applies assignment-time type-hint coercion: a target
// declared "x: int"/"float"/"bool"/"string" converts the assigned value
// through the same semantic table the builtinInt/builtinFloat/builtinBool/
// builtinStr conversions use, raising with the target's declared type
// named in the error when the value doesn't convert. Any other (e.g.
// struct) type hint passes the value through unchanged. Struct field
// values are not checked against their declared types here or in
// structs.NewInstance, which validates field names only.
func coerceAssign(pos ast.Position, typeHint string, v values.Value) (values.Value, error) {
	switch typeHint {
	case "", "any":
		return v, nil
	case "int":
		out, err := builtinInt([]values.Value{v}, nil)
		if err != nil {
			return values.None(), ValueError(pos, "cannot assign %s to int-typed target: %v", v.Kind(), err)
		}
		return out, nil
	case "float":
		out, err := builtinFloat([]values.Value{v}, nil)
		if err != nil {
			return values.None(), ValueError(pos, "cannot assign %s to float-typed target: %v", v.Kind(), err)
		}
		return out, nil
	case "bool":
		out, _ := builtinBool([]values.Value{v}, nil)
		return out, nil
	case "str", "string":
		out, _ := builtinStr([]values.Value{v}, nil)
		return out, nil
	default:
		return v, nil
	}
}

func (i *Interpreter) builtinReason(args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
	if len(args) != 1 {
		return values.None(), TypeError(ast.Position{}, "reason() takes exactly one positional argument")
	}
	prompt, ok := args[0].AsString()
	if !ok {
		return values.None(), TypeError(ast.Position{}, "reason() prompt must be a string")
	}
	opts := host.Options{Temperature: 0.7}
	if v, ok := kwargs["temperature"]; ok {
		if f, ok := v.AsFloat(); ok {
			opts.Temperature = f
		}
	}
	if v, ok := kwargs["max_tokens"]; ok {
		if n, ok := v.AsInt(); ok {
			opts.MaxTokens = int(n)
		}
	}
	if v, ok := kwargs["enable_ipv"]; ok {
		opts.EnableIPV = v.Truthy()
	}
	return host.Reason(i.ReasonRes, i.Logger, prompt, opts)
}
