package interp

import (
	"errors"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/module"
	"github.com/dana-lang/dana/internal/registry"
	"github.com/dana-lang/dana/internal/structs"
	"github.com/dana-lang/dana/internal/values"
)

// NewInstanceOrError wraps structs.NewInstance, translating its plain
// validation errors into Dana's typed ValueError so construction failures
// look like every other runtime error at the call site.
func NewInstanceOrError(pos ast.Position, t *structs.Type, fields map[string]values.Value) (*structs.Instance, error) {
	inst, err := structs.NewInstance(t, fields)
	if err != nil {
		return nil, ValueError(pos, "%v", err)
	}
	return inst, nil
}

// execStmt executes one statement, returning the Value of an
// ExpressionStatement (None for everything else) so Run can surface the
// last top-level expression's result.
func (i *Interpreter) execStmt(ctx *context.Context, s ast.Statement) (values.Value, error) {
	switch n := s.(type) {
	case *ast.Assignment:
		return values.None(), i.execAssignment(ctx, n)
	case *ast.Conditional:
		return values.None(), i.execConditional(ctx, n)
	case *ast.WhileLoop:
		return values.None(), i.execWhile(ctx, n)
	case *ast.ForLoop:
		return values.None(), i.execFor(ctx, n)
	case *ast.FunctionDefinition:
		return values.None(), i.execFuncDef(ctx, n)
	case *ast.StructDefinition:
		return values.None(), i.execStructDef(ctx, n)
	case *ast.Return:
		var v values.Value = values.None()
		if n.Value != nil {
			var err error
			v, err = i.evalExpr(ctx, n.Value)
			if err != nil {
				return values.None(), err
			}
		}
		return values.None(), ReturnSignal{Value: v}
	case *ast.Break:
		return values.None(), BreakSignal{}
	case *ast.Continue:
		return values.None(), ContinueSignal{}
	case *ast.Pass:
		return values.None(), nil
	case *ast.Raise:
		return values.None(), i.execRaise(ctx, n)
	case *ast.Assert:
		return values.None(), i.execAssert(ctx, n)
	case *ast.TryStatement:
		return values.None(), i.execTry(ctx, n)
	case *ast.Import:
		return values.None(), i.execImport(ctx, n)
	case *ast.ImportFrom:
		return values.None(), i.execImportFrom(ctx, n)
	case *ast.Export:
		return values.None(), nil // export's only effect is read by execModule
	case *ast.Print:
		v, err := i.evalExpr(ctx, n.Value)
		if err != nil {
			return values.None(), err
		}
		ctx.Write(v.Str() + "\n")
		return values.None(), nil
	case *ast.ExpressionStatement:
		return i.evalExpr(ctx, n.Value)
	default:
		return values.None(), RuntimeError(s.Pos(), "unhandled statement node %T", s)
	}
}

func (i *Interpreter) execBlock(ctx *context.Context, stmts []ast.Statement) error {
	for _, s := range stmts {
		if _, err := i.execStmt(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execAssignment(ctx *context.Context, a *ast.Assignment) error {
	val, err := i.evalExpr(ctx, a.Value)
	if err != nil {
		return err
	}
	if a.TypeHint != "" {
		val, err = coerceAssign(a.Position, a.TypeHint, val)
		if err != nil {
			return err
		}
	}
	switch target := a.Target.(type) {
	case *ast.Identifier:
		if target.Scope != ast.ScopeUnspecified {
			ctx.SetInScope(context.Scope(target.Scope), target.Name, val)
			return nil
		}
		ctx.Set(target.Name, val)
		return nil
	case *ast.AttributeAccess:
		obj, err := i.evalExpr(ctx, target.Object)
		if err != nil {
			return err
		}
		inst, ok := obj.AsStruct()
		if !ok {
			return TypeError(a.Position, "%s has no attribute %q", obj.Kind(), target.Attr)
		}
		if !inst.SetField(target.Attr, val) {
			return StructAttributeError(a.Position, inst.TypeName(), target.Attr, inst.FieldNames())
		}
		return nil
	case *ast.SubscriptExpression:
		obj, err := i.evalExpr(ctx, target.Object)
		if err != nil {
			return err
		}
		idx, err := i.evalExpr(ctx, target.Index)
		if err != nil {
			return err
		}
		return i.assignSubscript(ctx, target, obj, idx, val)
	default:
		return RuntimeError(a.Position, "invalid assignment target %T", a.Target)
	}
}

// assignSubscript mutates list/dict targets in place and writes structs
// assigned via a bare identifier base back through the identifier, since
// Dana lists/dicts held in a Value are reference-like (backed by a slice
// or *orderedDict) while the dict case specifically needs a fresh Value
// written back to the binding because DictSet is copy-on-write.
func (i *Interpreter) assignSubscript(ctx *context.Context, target *ast.SubscriptExpression, obj, idx, val values.Value) error {
	switch obj.Kind() {
	case values.KindList:
		items, _ := obj.AsList()
		iv, ok := idx.AsInt()
		if !ok {
			return TypeError(target.Position, "list indices must be integers, not %s", idx.Kind())
		}
		pos := resolveIndex(iv, len(items))
		if pos < 0 || pos >= len(items) {
			return IndexError(target.Position, "index out of range")
		}
		items[pos] = val
		return nil
	case values.KindDict:
		updated := values.DictSet(obj, idx, val)
		return i.writeBack(ctx, target.Object, updated)
	default:
		return TypeError(target.Position, "%s does not support item assignment", obj.Kind())
	}
}

// writeBack re-binds base (an Identifier or AttributeAccess) to a new
// Value, used after a copy-on-write dict mutation.
func (i *Interpreter) writeBack(ctx *context.Context, base ast.Expression, val values.Value) error {
	switch b := base.(type) {
	case *ast.Identifier:
		if b.Scope != ast.ScopeUnspecified {
			ctx.SetInScope(context.Scope(b.Scope), b.Name, val)
			return nil
		}
		ctx.Set(b.Name, val)
		return nil
	case *ast.AttributeAccess:
		obj, err := i.evalExpr(ctx, b.Object)
		if err != nil {
			return err
		}
		inst, ok := obj.AsStruct()
		if !ok {
			return TypeError(b.Position, "%s has no attribute %q", obj.Kind(), b.Attr)
		}
		inst.SetField(b.Attr, val)
		return nil
	default:
		return RuntimeError(base.Pos(), "cannot write back through %T", base)
	}
}

func (i *Interpreter) execConditional(ctx *context.Context, c *ast.Conditional) error {
	cond, err := i.evalExpr(ctx, c.Cond)
	if err != nil {
		return err
	}
	if cond.Truthy() {
		return i.execBlock(ctx, c.Then)
	}
	return i.execBlock(ctx, c.Else)
}

func (i *Interpreter) execWhile(ctx *context.Context, w *ast.WhileLoop) error {
	for {
		cond, err := i.evalExpr(ctx, w.Cond)
		if err != nil {
			return err
		}
		if !cond.Truthy() {
			return nil
		}
		if err := i.execBlock(ctx, w.Body); err != nil {
			var brk BreakSignal
			if errors.As(err, &brk) {
				return nil
			}
			var cont ContinueSignal
			if errors.As(err, &cont) {
				continue
			}
			return err
		}
	}
}

func (i *Interpreter) execFor(ctx *context.Context, f *ast.ForLoop) error {
	iterable, err := i.evalExpr(ctx, f.Iterable)
	if err != nil {
		return err
	}
	items, err := iterate(f.Position, iterable)
	if err != nil {
		return err
	}
	for _, item := range items {
		ctx.Set(f.Target, item)
		if err := i.execBlock(ctx, f.Body); err != nil {
			var brk BreakSignal
			if errors.As(err, &brk) {
				return nil
			}
			var cont ContinueSignal
			if errors.As(err, &cont) {
				continue
			}
			return err
		}
	}
	return nil
}

func iterate(pos ast.Position, v values.Value) ([]values.Value, error) {
	switch v.Kind() {
	case values.KindList:
		items, _ := v.AsList()
		return items, nil
	case values.KindTuple:
		items, _ := v.AsTuple()
		return items, nil
	case values.KindSet:
		return v.SetItems(), nil
	case values.KindString:
		s, _ := v.AsString()
		out := make([]values.Value, 0, len(s))
		for _, r := range s {
			out = append(out, values.Str(string(r)))
		}
		return out, nil
	case values.KindDict:
		entries := v.DictEntries()
		out := make([]values.Value, len(entries))
		for i, e := range entries {
			out[i] = e.Key
		}
		return out, nil
	default:
		return nil, TypeError(pos, "%s is not iterable", v.Kind())
	}
}

// execFuncDef builds a UserFunction closing over the defining Context and
// the AST body, applies any decorators, then registers the result under
// the bare name in the interpreter-wide Registry — both for module-level
// defs (captured by the loader's export scan) and for nested defs, which
// therefore replace any earlier function of that name everywhere.
func (i *Interpreter) execFuncDef(ctx *context.Context, f *ast.FunctionDefinition) error {
	params := f.Params
	body := f.Body
	definingCtx := ctx

	run := func(args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		callCtx := definingCtx.Child()
		if err := bindParams(f.Position, callCtx, params, args, kwargs, i); err != nil {
			return values.None(), err
		}
		if err := i.execBlock(callCtx, body); err != nil {
			var ret ReturnSignal
			if errors.As(err, &ret) {
				return ret.Value, nil
			}
			var brk BreakSignal
			if errors.As(err, &brk) {
				return values.None(), RuntimeError(f.Position, "break outside loop in function %s", f.Name)
			}
			var cont ContinueSignal
			if errors.As(err, &cont) {
				return values.None(), RuntimeError(f.Position, "continue outside loop in function %s", f.Name)
			}
			return values.None(), err
		}
		return values.None(), nil
	}

	var fn values.Callable = registry.NewUserFunction(f.Name, run)
	for _, dec := range f.Decorators {
		wrapped, err := i.applyDecorator(ctx, dec, fn)
		if err != nil {
			return err
		}
		fn = wrapped
	}

	i.Registry.Register(f.Name, fn)
	return nil
}

func bindParams(pos ast.Position, callCtx *context.Context, params []ast.Param, args []values.Value, kwargs map[string]values.Value, i *Interpreter) error {
	if len(args) > len(params) {
		return TypeError(pos, "too many positional arguments: got %d, want at most %d", len(args), len(params))
	}
	for idx, p := range params {
		var v values.Value
		switch {
		case idx < len(args):
			v = args[idx]
		case kwargs != nil:
			if kv, ok := kwargs[p.Name]; ok {
				v = kv
				break
			}
			fallthrough
		default:
			if p.Default != nil {
				dv, err := i.evalExpr(callCtx, p.Default)
				if err != nil {
					return err
				}
				v = dv
			} else {
				return TypeError(pos, "missing required argument %q", p.Name)
			}
		}
		callCtx.Set(p.Name, v)
	}
	return nil
}

// applyDecorator evaluates "@name(args)" or bare "@name" over fn: a
// factory decorator (with call args) is invoked first to produce the real
// wrapper, then that wrapper (or the bare decorator itself) is called
// with fn as its sole argument, exactly as Python's decorator sugar
// desugars "@dec\ndef f(): ..." to "f = dec(f)".
func (i *Interpreter) applyDecorator(ctx *context.Context, dec *ast.Decorator, fn values.Callable) (values.Callable, error) {
	decFn, ok := i.Registry.Resolve(dec.Call.Callee.(*ast.Identifier).Name)
	if !ok {
		return nil, NameError(dec.Position, dec.Call.Callee.(*ast.Identifier).Name)
	}
	wrapper := decFn
	if len(dec.Call.Args) > 0 {
		args, kwargs, err := i.evalArgs(ctx, dec.Call.Args)
		if err != nil {
			return nil, err
		}
		factoryResult, err := decFn.Call(args, kwargs)
		if err != nil {
			return nil, err
		}
		wf, ok := factoryResult.AsFunc()
		if !ok {
			return nil, TypeError(dec.Position, "decorator factory must return a callable")
		}
		wrapper = wf
	}
	result, err := wrapper.Call([]values.Value{values.Func(fn)}, nil)
	if err != nil {
		return nil, err
	}
	wrapped, ok := result.AsFunc()
	if !ok {
		return nil, TypeError(dec.Position, "decorator must return a callable")
	}
	return wrapped, nil
}

func (i *Interpreter) execStructDef(ctx *context.Context, s *ast.StructDefinition) error {
	fields := make([]structs.Field, len(s.Fields))
	for idx, f := range s.Fields {
		fields[idx] = structs.Field{Name: f.Name, Type: f.TypeHint}
	}
	t, err := structs.NewType(s.Name, fields)
	if err != nil {
		return ValueError(s.Position, "%v", err)
	}
	if err := i.Structs.Register(t); err != nil {
		return ValueError(s.Position, "%v", err)
	}
	return nil
}

func (i *Interpreter) execRaise(ctx *context.Context, r *ast.Raise) error {
	if r.Value == nil {
		return RuntimeError(r.Position, "bare raise outside an except handler is not supported")
	}
	v, err := i.evalExpr(ctx, r.Value)
	if err != nil {
		return err
	}
	var cause error
	if r.From != nil {
		causeVal, err := i.evalExpr(ctx, r.From)
		if err != nil {
			return err
		}
		cause = errors.New(causeVal.Str())
	}
	base := RuntimeError(r.Position, "%s", v.Str())
	if cause != nil {
		return &CallError{FuncName: "raise", Pos: r.Position, Cause: cause}
	}
	return base
}

func (i *Interpreter) execAssert(ctx *context.Context, a *ast.Assert) error {
	cond, err := i.evalExpr(ctx, a.Cond)
	if err != nil {
		return err
	}
	if cond.Truthy() {
		return nil
	}
	if a.Message != nil {
		msg, err := i.evalExpr(ctx, a.Message)
		if err != nil {
			return err
		}
		return AssertionError(a.Position, "%s", msg.Str())
	}
	return AssertionError(a.Position, "assertion failed")
}

func (i *Interpreter) execTry(ctx *context.Context, t *ast.TryStatement) error {
	err := i.execBlock(ctx, t.Body)
	if err != nil {
		var brk BreakSignal
		var cont ContinueSignal
		var ret ReturnSignal
		if errors.As(err, &brk) || errors.As(err, &cont) || errors.As(err, &ret) {
			if len(t.Finally) > 0 {
				if ferr := i.execBlock(ctx, t.Finally); ferr != nil {
					return ferr
				}
			}
			return err
		}
		handled := false
		for _, h := range t.Handlers {
			if h.ErrorType != "" && !errorMatches(err, h.ErrorType) {
				continue
			}
			handled = true
			if h.Alias != "" {
				ctx.Set(h.Alias, values.Str(err.Error()))
			}
			err = i.execBlock(ctx, h.Body)
			break
		}
		if !handled {
			if len(t.Finally) > 0 {
				if ferr := i.execBlock(ctx, t.Finally); ferr != nil {
					return ferr
				}
			}
			return err
		}
	}
	if len(t.Finally) > 0 {
		return i.execBlock(ctx, t.Finally)
	}
	return err
}

func errorMatches(err error, kind string) bool {
	var de *danaError
	if errors.As(err, &de) {
		return de.kind == kind
	}
	return true
}

func (i *Interpreter) execImport(ctx *context.Context, imp *ast.Import) error {
	res, err := i.Loader.Load(imp.Path, imp.Host)
	if err != nil {
		return ImportError(imp.Position, "%v", err)
	}
	name := imp.Alias
	if name == "" {
		name = imp.Path[len(imp.Path)-1]
	}
	i.bindModule(ctx, name, res)
	return nil
}

func (i *Interpreter) execImportFrom(ctx *context.Context, imp *ast.ImportFrom) error {
	res, err := i.Loader.Load(imp.Path, imp.Host)
	if err != nil {
		return ImportError(imp.Position, "%v", err)
	}
	for _, n := range imp.Names {
		alias := n.Alias
		if alias == "" {
			alias = n.Name
		}
		if fn, ok := res.Funcs[n.Name]; ok {
			i.Registry.Register(alias, fn)
			continue
		}
		if v, ok := res.Exports[n.Name]; ok {
			ctx.Set(alias, v)
			continue
		}
		found := false
		for _, t := range res.Structs {
			if t.Name == n.Name {
				i.Structs.Register(t)
				found = true
				break
			}
		}
		if !found {
			return ImportError(imp.Position, "module %v has no exported name %q", imp.Path, n.Name)
		}
	}
	return nil
}

// bindModule registers an imported module's functions under an
// "alias.name" qualified key, its struct types under their own names, and
// binds its plain exports as a dict under the module's local name. There
// is no Module value kind: the exports are reached by subscript
// (alias["x"]), and alias.x is an attribute access on a dict, which fails.
func (i *Interpreter) bindModule(ctx *context.Context, alias string, res *module.Result) {
	for name, fn := range res.Funcs {
		i.Registry.Register(alias+"."+name, fn)
	}
	for _, t := range res.Structs {
		i.Structs.Register(t)
	}
	entries := make([]values.DictEntry, 0, len(res.Exports))
	for name, v := range res.Exports {
		entries = append(entries, values.DictEntry{Key: values.Str(name), Value: v})
	}
	ctx.Set(alias, values.Dict(entries))
}
