package interp

import (
	"math"
	"strings"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/registry"
	"github.com/dana-lang/dana/internal/values"
)

func (i *Interpreter) evalExpr(ctx *context.Context, e ast.Expression) (values.Value, error) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return values.Int(n.Value), nil
	case *ast.FloatLiteral:
		return values.Float(n.Value), nil
	case *ast.StringLiteral:
		return values.Str(n.Value), nil
	case *ast.BoolLiteral:
		return values.Bool(n.Value), nil
	case *ast.NoneLiteral:
		return values.None(), nil
	case *ast.FStringLiteral:
		return i.evalFString(ctx, n)
	case *ast.Identifier:
		return i.evalIdentifier(ctx, n)
	case *ast.ListLiteral:
		items, err := i.evalExprList(ctx, n.Items)
		if err != nil {
			return values.None(), err
		}
		return values.List(items), nil
	case *ast.TupleLiteral:
		items, err := i.evalExprList(ctx, n.Items)
		if err != nil {
			return values.None(), err
		}
		return values.Tuple(items), nil
	case *ast.SetLiteral:
		items, err := i.evalExprList(ctx, n.Items)
		if err != nil {
			return values.None(), err
		}
		return values.Set(items), nil
	case *ast.DictLiteral:
		entries := make([]values.DictEntry, 0, len(n.Entries))
		for _, e := range n.Entries {
			k, err := i.evalExpr(ctx, e.Key)
			if err != nil {
				return values.None(), err
			}
			v, err := i.evalExpr(ctx, e.Value)
			if err != nil {
				return values.None(), err
			}
			entries = append(entries, values.DictEntry{Key: k, Value: v})
		}
		return values.Dict(entries), nil
	case *ast.UnaryOp:
		return i.evalUnary(ctx, n)
	case *ast.BinaryOp:
		return i.evalBinary(ctx, n)
	case *ast.PipeExpression:
		return i.evalPipe(ctx, n)
	case *ast.FunctionCall:
		return i.evalCall(ctx, n)
	case *ast.AttributeAccess:
		return i.evalAttr(ctx, n)
	case *ast.SubscriptExpression:
		return i.evalSubscript(ctx, n)
	case *ast.SliceExpression:
		return i.evalSlice(ctx, n)
	default:
		return values.None(), RuntimeError(e.Pos(), "unhandled expression node %T", e)
	}
}

func (i *Interpreter) evalExprList(ctx *context.Context, es []ast.Expression) ([]values.Value, error) {
	out := make([]values.Value, 0, len(es))
	for _, e := range es {
		v, err := i.evalExpr(ctx, e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (i *Interpreter) evalIdentifier(ctx *context.Context, id *ast.Identifier) (values.Value, error) {
	if id.Scope != ast.ScopeUnspecified {
		v, ok := ctx.GetScope(context.Scope(id.Scope), id.Name)
		if !ok {
			if ctx.StrictUndefined() {
				return values.None(), NameError(id.Position, string(id.Scope)+":"+id.Name)
			}
			return values.None(), nil
		}
		return v, nil
	}
	if v, ok := ctx.Get(id.Name); ok {
		return v, nil
	}
	if fn, ok := i.Registry.Resolve(id.Name); ok {
		return values.Func(fn), nil
	}
	if ctx.StrictUndefined() {
		return values.None(), NameError(id.Position, id.Name)
	}
	return values.None(), nil
}

func (i *Interpreter) evalFString(ctx *context.Context, f *ast.FStringLiteral) (values.Value, error) {
	var b strings.Builder
	for _, part := range f.Parts {
		if part.Expr == nil {
			b.WriteString(part.Literal)
			continue
		}
		v, err := i.evalExpr(ctx, part.Expr)
		if err != nil {
			return values.None(), err
		}
		b.WriteString(v.Str())
	}
	return values.Str(b.String()), nil
}

func (i *Interpreter) evalUnary(ctx *context.Context, n *ast.UnaryOp) (values.Value, error) {
	v, err := i.evalExpr(ctx, n.Operand)
	if err != nil {
		return values.None(), err
	}
	switch n.Op {
	case "not":
		return values.Bool(!v.Truthy()), nil
	case "-":
		if iv, ok := v.AsInt(); ok {
			return values.Int(-iv), nil
		}
		if fv, ok := v.AsFloat(); ok {
			return values.Float(-fv), nil
		}
		return values.None(), TypeError(n.Position, "bad operand type for unary -: %s", v.Kind())
	case "+":
		if v.Kind() == values.KindInt || v.Kind() == values.KindFloat {
			return v, nil
		}
		return values.None(), TypeError(n.Position, "bad operand type for unary +: %s", v.Kind())
	default:
		return values.None(), RuntimeError(n.Position, "unknown unary operator %q", n.Op)
	}
}

func (i *Interpreter) evalBinary(ctx *context.Context, n *ast.BinaryOp) (values.Value, error) {
	if n.Op == "and" {
		l, err := i.evalExpr(ctx, n.Left)
		if err != nil {
			return values.None(), err
		}
		if !l.Truthy() {
			return l, nil
		}
		return i.evalExpr(ctx, n.Right)
	}
	if n.Op == "or" {
		l, err := i.evalExpr(ctx, n.Left)
		if err != nil {
			return values.None(), err
		}
		if l.Truthy() {
			return l, nil
		}
		return i.evalExpr(ctx, n.Right)
	}

	l, err := i.evalExpr(ctx, n.Left)
	if err != nil {
		return values.None(), err
	}
	r, err := i.evalExpr(ctx, n.Right)
	if err != nil {
		return values.None(), err
	}

	switch n.Op {
	case "==":
		return values.Bool(values.Equal(l, r)), nil
	case "!=":
		return values.Bool(!values.Equal(l, r)), nil
	case "<", "<=", ">", ">=":
		return compareOrdered(n.Position, n.Op, l, r)
	case "in":
		return containment(l, r), nil
	case "+", "-", "*", "/", "//", "%", "**":
		return arithmetic(n.Position, n.Op, l, r)
	default:
		return values.None(), RuntimeError(n.Position, "unknown binary operator %q", n.Op)
	}
}

func compareOrdered(pos ast.Position, op string, l, r values.Value) (values.Value, error) {
	var cmp int
	switch {
	case isNumeric(l) && isNumeric(r):
		lf, rf := numericAsFloat(l), numericAsFloat(r)
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		default:
			cmp = 0
		}
	case l.Kind() == values.KindString && r.Kind() == values.KindString:
		ls, _ := l.AsString()
		rs, _ := r.AsString()
		cmp = strings.Compare(ls, rs)
	default:
		return values.None(), TypeError(pos, "'%s' not supported between instances of %s and %s", op, l.Kind(), r.Kind())
	}
	switch op {
	case "<":
		return values.Bool(cmp < 0), nil
	case "<=":
		return values.Bool(cmp <= 0), nil
	case ">":
		return values.Bool(cmp > 0), nil
	case ">=":
		return values.Bool(cmp >= 0), nil
	}
	return values.None(), RuntimeError(pos, "unreachable comparison operator %q", op)
}

func containment(needle, haystack values.Value) values.Value {
	switch haystack.Kind() {
	case values.KindList, values.KindTuple:
		items, _ := haystack.AsList()
		for _, it := range items {
			if values.Equal(it, needle) {
				return values.Bool(true)
			}
		}
		return values.Bool(false)
	case values.KindSet:
		return values.Bool(values.SetContains(haystack, needle))
	case values.KindDict:
		_, ok := values.DictGet(haystack, needle)
		return values.Bool(ok)
	case values.KindString:
		hs, _ := haystack.AsString()
		ns, ok := needle.AsString()
		return values.Bool(ok && strings.Contains(hs, ns))
	default:
		return values.Bool(false)
	}
}

func isNumeric(v values.Value) bool {
	return v.Kind() == values.KindInt || v.Kind() == values.KindFloat
}

func numericAsFloat(v values.Value) float64 {
	if iv, ok := v.AsInt(); ok {
		return float64(iv)
	}
	fv, _ := v.AsFloat()
	return fv
}

func arithmetic(pos ast.Position, op string, l, r values.Value) (values.Value, error) {
	if op == "+" && l.Kind() == values.KindString && r.Kind() == values.KindString {
		ls, _ := l.AsString()
		rs, _ := r.AsString()
		return values.Str(ls + rs), nil
	}
	if op == "+" && (l.Kind() == values.KindList || l.Kind() == values.KindTuple) && l.Kind() == r.Kind() {
		la, _ := l.AsList()
		ra, _ := r.AsList()
		combined := append(append([]values.Value{}, la...), ra...)
		if l.Kind() == values.KindTuple {
			return values.Tuple(combined), nil
		}
		return values.List(combined), nil
	}
	if !isNumeric(l) || !isNumeric(r) {
		return values.None(), TypeError(pos, "unsupported operand type(s) for %s: %s and %s", op, l.Kind(), r.Kind())
	}
	bothInt := l.Kind() == values.KindInt && r.Kind() == values.KindInt
	li, _ := l.AsInt()
	ri, _ := r.AsInt()
	lf, rf := numericAsFloat(l), numericAsFloat(r)

	switch op {
	case "+":
		if bothInt {
			return values.Int(li + ri), nil
		}
		return values.Float(lf + rf), nil
	case "-":
		if bothInt {
			return values.Int(li - ri), nil
		}
		return values.Float(lf - rf), nil
	case "*":
		if bothInt {
			return values.Int(li * ri), nil
		}
		return values.Float(lf * rf), nil
	case "/":
		if rf == 0 {
			return values.None(), ValueError(pos, "division by zero")
		}
		return values.Float(lf / rf), nil
	case "//":
		if bothInt {
			if ri == 0 {
				return values.None(), ValueError(pos, "integer division by zero")
			}
			return values.Int(floorDivInt(li, ri)), nil
		}
		if rf == 0 {
			return values.None(), ValueError(pos, "division by zero")
		}
		return values.Float(math.Floor(lf / rf)), nil
	case "%":
		if bothInt {
			if ri == 0 {
				return values.None(), ValueError(pos, "modulo by zero")
			}
			return values.Int(floorModInt(li, ri)), nil
		}
		if rf == 0 {
			return values.None(), ValueError(pos, "modulo by zero")
		}
		return values.Float(math.Mod(math.Mod(lf, rf)+rf, rf)), nil
	case "**":
		if bothInt && ri >= 0 {
			return values.Int(intPow(li, ri)), nil
		}
		return values.Float(math.Pow(lf, rf)), nil
	}
	return values.None(), RuntimeError(pos, "unreachable arithmetic operator %q", op)
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

// evalPipe implements the dual pipe-operator dispatch: if both sides
// evaluate to function values, "|" composes them into a new callable
// without invoking either; otherwise the left side is treated as data and
// immediately fed into the right side, which must be callable.
func (i *Interpreter) evalPipe(ctx *context.Context, n *ast.PipeExpression) (values.Value, error) {
	l, err := i.evalExpr(ctx, n.Left)
	if err != nil {
		return values.None(), err
	}
	r, err := i.evalExpr(ctx, n.Right)
	if err != nil {
		return values.None(), err
	}
	rightFn, rightIsFn := r.AsFunc()
	if !rightIsFn {
		return values.None(), TypeError(n.Position, "right side of '|' must be callable, got %s", r.Kind())
	}
	if leftFn, leftIsFn := l.AsFunc(); leftIsFn {
		return values.Func(registry.NewComposedFunction(leftFn, rightFn)), nil
	}
	return rightFn.Call([]values.Value{l}, nil)
}

// evalCall dispatches a call expression: struct construction when the
// callee names a registered struct type, method-sugar dispatch when the
// callee is an attribute access on a struct instance, a direct Callable
// value otherwise.
func (i *Interpreter) evalCall(ctx *context.Context, n *ast.FunctionCall) (values.Value, error) {
	if attr, ok := n.Callee.(*ast.AttributeAccess); ok {
		obj, err := i.evalExpr(ctx, attr.Object)
		if err != nil {
			return values.None(), err
		}
		if inst, ok := obj.AsStruct(); ok {
			args, kwargs, err := i.evalArgs(ctx, n.Args)
			if err != nil {
				return values.None(), err
			}
			fullArgs := append([]values.Value{values.Struct(inst)}, args...)
			fn, ok := i.Registry.Resolve(attr.Attr)
			if !ok {
				return values.None(), StructAttributeError(n.Position, inst.TypeName(), attr.Attr, inst.FieldNames())
			}
			v, err := fn.Call(fullArgs, kwargs)
			if err != nil {
				return values.None(), &CallError{FuncName: attr.Attr, Pos: n.Position, Cause: err}
			}
			return v, nil
		}
	}

	if id, ok := n.Callee.(*ast.Identifier); ok && id.Scope == ast.ScopeUnspecified {
		if t, ok := i.Structs.Get(id.Name); ok {
			fields := map[string]values.Value{}
			for _, a := range n.Args {
				if a.Name == "" {
					return values.None(), TypeError(n.Position, "struct %s construction requires keyword arguments", id.Name)
				}
				v, err := i.evalExpr(ctx, a.Value)
				if err != nil {
					return values.None(), err
				}
				fields[a.Name] = v
			}
			inst, err := NewInstanceOrError(n.Position, t, fields)
			if err != nil {
				return values.None(), err
			}
			return values.Struct(inst), nil
		}
	}

	callee, err := i.evalExpr(ctx, n.Callee)
	if err != nil {
		return values.None(), err
	}
	fn, ok := callee.AsFunc()
	if !ok {
		return values.None(), TypeError(n.Position, "%s is not callable", callee.Kind())
	}
	args, kwargs, err := i.evalArgs(ctx, n.Args)
	if err != nil {
		return values.None(), err
	}
	v, err := fn.Call(args, kwargs)
	if err != nil {
		return values.None(), &CallError{FuncName: fn.Name(), Pos: n.Position, Cause: err}
	}
	return v, nil
}

func (i *Interpreter) evalArgs(ctx *context.Context, args []ast.Argument) ([]values.Value, map[string]values.Value, error) {
	var positional []values.Value
	var kwargs map[string]values.Value
	for _, a := range args {
		v, err := i.evalExpr(ctx, a.Value)
		if err != nil {
			return nil, nil, err
		}
		if a.Name == "" {
			positional = append(positional, v)
			continue
		}
		if kwargs == nil {
			kwargs = map[string]values.Value{}
		}
		kwargs[a.Name] = v
	}
	return positional, kwargs, nil
}

func (i *Interpreter) evalAttr(ctx *context.Context, n *ast.AttributeAccess) (values.Value, error) {
	obj, err := i.evalExpr(ctx, n.Object)
	if err != nil {
		return values.None(), err
	}
	if inst, ok := obj.AsStruct(); ok {
		v, ok := inst.Field(n.Attr)
		if !ok {
			return values.None(), StructAttributeError(n.Position, inst.TypeName(), n.Attr, inst.FieldNames())
		}
		return v, nil
	}
	return values.None(), AttributeError(n.Position, obj.Kind().String(), n.Attr)
}

func (i *Interpreter) evalSubscript(ctx *context.Context, n *ast.SubscriptExpression) (values.Value, error) {
	obj, err := i.evalExpr(ctx, n.Object)
	if err != nil {
		return values.None(), err
	}
	idx, err := i.evalExpr(ctx, n.Index)
	if err != nil {
		return values.None(), err
	}
	switch obj.Kind() {
	case values.KindList, values.KindTuple:
		items, _ := obj.AsList()
		iv, ok := idx.AsInt()
		if !ok {
			return values.None(), TypeError(n.Position, "list indices must be integers, not %s", idx.Kind())
		}
		pos := resolveIndex(iv, len(items))
		if pos < 0 || pos >= len(items) {
			return values.None(), IndexError(n.Position, "index out of range")
		}
		return items[pos], nil
	case values.KindString:
		s, _ := obj.AsString()
		runes := []rune(s)
		iv, ok := idx.AsInt()
		if !ok {
			return values.None(), TypeError(n.Position, "string indices must be integers, not %s", idx.Kind())
		}
		pos := resolveIndex(iv, len(runes))
		if pos < 0 || pos >= len(runes) {
			return values.None(), IndexError(n.Position, "string index out of range")
		}
		return values.Str(string(runes[pos])), nil
	case values.KindDict:
		v, ok := values.DictGet(obj, idx)
		if !ok {
			return values.None(), KeyError(n.Position, idx.Repr())
		}
		return v, nil
	default:
		return values.None(), TypeError(n.Position, "%s is not subscriptable", obj.Kind())
	}
}

func resolveIndex(i int64, length int) int {
	if i < 0 {
		return length + int(i)
	}
	return int(i)
}

func (i *Interpreter) evalSlice(ctx *context.Context, n *ast.SliceExpression) (values.Value, error) {
	obj, err := i.evalExpr(ctx, n.Object)
	if err != nil {
		return values.None(), err
	}
	length, isList, isTuple, runes, items := 0, false, false, []rune(nil), []values.Value(nil)
	switch obj.Kind() {
	case values.KindList:
		items, _ = obj.AsList()
		length, isList = len(items), true
	case values.KindTuple:
		items, _ = obj.AsTuple()
		length, isTuple = len(items), true
	case values.KindString:
		s, _ := obj.AsString()
		runes = []rune(s)
		length = len(runes)
	default:
		return values.None(), TypeError(n.Position, "%s is not sliceable", obj.Kind())
	}

	step := int64(1)
	if n.HasStep && n.Step != nil {
		sv, err := i.evalExpr(ctx, n.Step)
		if err != nil {
			return values.None(), err
		}
		iv, ok := sv.AsInt()
		if !ok {
			return values.None(), TypeError(n.Position, "slice step must be an integer")
		}
		step = iv
	}
	if step == 0 {
		return values.None(), ValueError(n.Position, "slice step cannot be zero")
	}

	start, stop := sliceDefaults(length, step)
	if n.Start != nil {
		v, err := i.evalExpr(ctx, n.Start)
		if err != nil {
			return values.None(), err
		}
		iv, ok := v.AsInt()
		if !ok {
			return values.None(), TypeError(n.Position, "slice indices must be integers")
		}
		start = clampIndex(iv, length, step)
	}
	if n.Stop != nil {
		v, err := i.evalExpr(ctx, n.Stop)
		if err != nil {
			return values.None(), err
		}
		iv, ok := v.AsInt()
		if !ok {
			return values.None(), TypeError(n.Position, "slice indices must be integers")
		}
		stop = clampIndex(iv, length, step)
	}

	var out []values.Value
	if isList || isTuple {
		for idx := start; stepInBounds(idx, stop, step); idx += int(step) {
			out = append(out, items[idx])
		}
		if isTuple {
			return values.Tuple(out), nil
		}
		return values.List(out), nil
	}
	var b strings.Builder
	for idx := start; stepInBounds(idx, stop, step); idx += int(step) {
		b.WriteRune(runes[idx])
	}
	return values.Str(b.String()), nil
}

func sliceDefaults(length int, step int64) (start, stop int) {
	if step > 0 {
		return 0, length
	}
	return length - 1, -1
}

func clampIndex(i int64, length int, step int64) int {
	if i < 0 {
		i += int64(length)
	}
	if step > 0 {
		if i < 0 {
			return 0
		}
		if i > int64(length) {
			return length
		}
		return int(i)
	}
	if i < -1 {
		return -1
	}
	if i >= int64(length) {
		return length - 1
	}
	return int(i)
}

func stepInBounds(idx, stop int, step int64) bool {
	if step > 0 {
		return idx < stop
	}
	return idx > stop
}
