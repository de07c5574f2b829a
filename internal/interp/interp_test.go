package interp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/host"
	"github.com/dana-lang/dana/internal/interp"
	"github.com/dana-lang/dana/internal/parser"
	"github.com/dana-lang/dana/internal/registry"
	"github.com/dana-lang/dana/internal/values"
)

type fixedReasonResource struct{ text string }

func (f fixedReasonResource) Complete(string, host.Options) (string, error) {
	return f.text, nil
}

func run(t *testing.T, i *interp.Interpreter, ctx *context.Context, src string) values.Value {
	t.Helper()
	p, err := parser.NewParser()
	require.NoError(t, err)
	concrete, err := p.Parse("<test>", src)
	require.NoError(t, err)
	prog, err := ast.Transform("<test>", concrete)
	require.NoError(t, err)
	require.NoError(t, ast.Validate(prog))
	v, err := i.Run(ctx, prog)
	require.NoError(t, err)
	return v
}

func TestSliceNegativeStepReversesList(t *testing.T) {
	i := interp.New("<test>", nil)
	ctx := context.New(false)
	v := run(t, i, ctx, "result = [1, 2, 3, 4][::-1]\nresult\n")
	items, ok := v.AsList()
	require.True(t, ok)
	require.Len(t, items, 4)
	n0, _ := items[0].AsInt()
	n3, _ := items[3].AsInt()
	require.Equal(t, int64(4), n0)
	require.Equal(t, int64(1), n3)
}

func TestSliceStartStopOnString(t *testing.T) {
	i := interp.New("<test>", nil)
	ctx := context.New(false)
	v := run(t, i, ctx, `s = "abcdef"[1:4]
s
`)
	s, ok := v.AsString()
	require.True(t, ok)
	require.Equal(t, "bcd", s)
}

func TestSliceZeroStepIsAnError(t *testing.T) {
	i := interp.New("<test>", nil)
	ctx := context.New(false)
	p, err := parser.NewParser()
	require.NoError(t, err)
	concrete, err := p.Parse("<test>", "[1, 2][::0]\n")
	require.NoError(t, err)
	prog, err := ast.Transform("<test>", concrete)
	require.NoError(t, err)
	require.NoError(t, ast.Validate(prog))
	_, err = i.Run(ctx, prog)
	require.Error(t, err)
}

func TestDecoratorWrapsDefinedFunction(t *testing.T) {
	i := interp.New("<test>", nil)
	i.Registry.Register("doubles", registry.NewHostFunction("doubles", func(args []values.Value, _ map[string]values.Value) (values.Value, error) {
		inner, _ := args[0].AsFunc()
		wrapped := registry.NewUserFunction("wrapped", func(innerArgs []values.Value, kwargs map[string]values.Value) (values.Value, error) {
			v, err := inner.Call(innerArgs, kwargs)
			if err != nil {
				return values.None(), err
			}
			n, _ := v.AsInt()
			return values.Int(n * 2), nil
		})
		return values.Func(wrapped), nil
	}))

	ctx := context.New(false)
	src := `@doubles
def addOne(n):
    return n + 1
`
	run(t, i, ctx, src)
	fn, ok := i.Registry.Resolve("addOne")
	require.True(t, ok)
	v, err := fn.Call([]values.Value{values.Int(4)}, nil)
	require.NoError(t, err)
	n, _ := v.AsInt()
	require.Equal(t, int64(10), n) // (4+1)*2
}

func TestTryFinallyRunsOnReturn(t *testing.T) {
	i := interp.New("<test>", nil)
	ctx := context.New(false)
	src := `def f():
    try:
        return 1
    finally:
        public:ran = true

f()
`
	run(t, i, ctx, src)
	v, ok := ctx.GetScope(context.Public, "ran")
	require.True(t, ok)
	b, _ := v.AsBool()
	require.True(t, b)
}

func TestTryFinallyRunsOnBreak(t *testing.T) {
	i := interp.New("<test>", nil)
	ctx := context.New(false)
	src := `public:iterations = 0
for x in [1, 2, 3]:
    try:
        if x == 2:
            break
    finally:
        public:iterations = iterations + 1
`
	run(t, i, ctx, src)
	v, ok := ctx.GetScope(context.Public, "iterations")
	require.True(t, ok)
	n, _ := v.AsInt()
	require.Equal(t, int64(2), n)
}

func TestAssignmentTypeHintCoercesStringToBool(t *testing.T) {
	i := interp.New("<test>", nil)
	ctx := context.New(false)
	run(t, i, ctx, `x: bool = "yes"
x
`)
	v, ok := ctx.Get("x")
	require.True(t, ok)
	b, _ := v.AsBool()
	require.True(t, b)
}

func TestAssignmentTypeHintCoercesStringToInt(t *testing.T) {
	i := interp.New("<test>", nil)
	ctx := context.New(false)
	run(t, i, ctx, `x: int = "42"
x
`)
	v, ok := ctx.Get("x")
	require.True(t, ok)
	n, _ := v.AsInt()
	require.Equal(t, int64(42), n)
}

func TestAssignmentTypeHintFailureNamesTargetType(t *testing.T) {
	i := interp.New("<test>", nil)
	ctx := context.New(false)
	p, err := parser.NewParser()
	require.NoError(t, err)
	concrete, err := p.Parse("<test>", "x: int = \"not a number\"\n")
	require.NoError(t, err)
	prog, err := ast.Transform("<test>", concrete)
	require.NoError(t, err)
	require.NoError(t, ast.Validate(prog))
	_, err = i.Run(ctx, prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "int-typed target")
}

func TestReasonDefaultsToStringUntypedAssignment(t *testing.T) {
	i := interp.New("<test>", nil)
	i.SetReasonResource(fixedReasonResource{text: "42"})
	ctx := context.New(false)
	v := run(t, i, ctx, `y = reason("what is the answer?")
y
`)
	s, ok := v.AsString()
	require.True(t, ok)
	require.Equal(t, "42", s)
}

func TestReasonResultCoercesOnlyAtTypedCallSite(t *testing.T) {
	i := interp.New("<test>", nil)
	i.SetReasonResource(fixedReasonResource{text: "42"})
	ctx := context.New(false)
	run(t, i, ctx, `y: int = reason("what is the answer?")
`)
	v, ok := ctx.Get("y")
	require.True(t, ok)
	n, ok := v.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(42), n)
}

func TestTryExceptHandlerBindsAlias(t *testing.T) {
	i := interp.New("<test>", nil)
	ctx := context.New(false)
	src := `try:
    raise "boom"
except as e:
    public:caught = e
`
	run(t, i, ctx, src)
	v, ok := ctx.GetScope(context.Public, "caught")
	require.True(t, ok)
	s, _ := v.AsString()
	require.Contains(t, s, "boom")
}
