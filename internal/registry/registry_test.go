package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/registry"
	"github.com/dana-lang/dana/internal/values"
)

func double(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	n, _ := args[0].AsInt()
	return values.Int(n * 2), nil
}

func increment(args []values.Value, _ map[string]values.Value) (values.Value, error) {
	n, _ := args[0].AsInt()
	return values.Int(n + 1), nil
}

func TestResolveFallsBackToBuiltinNamespace(t *testing.T) {
	r := registry.New()
	r.Register("builtin.len", registry.NewHostFunction("len", double))

	fn, ok := r.Resolve("len")
	require.True(t, ok)
	require.Equal(t, "len", fn.Name())
}

func TestResolveExactNameShadowsBuiltin(t *testing.T) {
	r := registry.New()
	r.Register("builtin.len", registry.NewHostFunction("len", double))
	r.Register("len", registry.NewUserFunction("len", increment))

	fn, ok := r.Resolve("len")
	require.True(t, ok)
	v, err := fn.Call([]values.Value{values.Int(10)}, nil)
	require.NoError(t, err)
	n, _ := v.AsInt()
	require.Equal(t, int64(11), n) // user-defined increment, not builtin double
}

func TestComposedFunctionChainsLeftThenRight(t *testing.T) {
	left := registry.NewUserFunction("double", double)
	right := registry.NewUserFunction("increment", increment)
	composed := registry.NewComposedFunction(left, right)

	v, err := composed.Call([]values.Value{values.Int(5)}, nil)
	require.NoError(t, err)
	n, _ := v.AsInt()
	require.Equal(t, int64(11), n)
	require.Equal(t, "double|increment", composed.Name())
}

func TestComposedFunctionShortCircuitsOnLeftError(t *testing.T) {
	boom := registry.NewUserFunction("boom", func(args []values.Value, _ map[string]values.Value) (values.Value, error) {
		return values.None(), errBoom
	})
	neverCalled := registry.NewUserFunction("never", func(args []values.Value, _ map[string]values.Value) (values.Value, error) {
		t.Fatal("right side must not be called when left side errors")
		return values.None(), nil
	})
	composed := registry.NewComposedFunction(boom, neverCalled)

	_, err := composed.Call([]values.Value{values.Int(1)}, nil)
	require.Error(t, err)
}

var errBoom = &boomErr{}

type boomErr struct{}

func (*boomErr) Error() string { return "boom" }
