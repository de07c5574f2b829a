package values_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/values"
)

func TestTruthyEnhancedWordList(t *testing.T) {
	require.True(t, values.Str("yes").Truthy())
	require.True(t, values.Str("Y").Truthy())
	require.False(t, values.Str("no").Truthy())
	require.False(t, values.Str("").Truthy())
	require.True(t, values.Str("anything else").Truthy())
	require.False(t, values.Int(0).Truthy())
	require.True(t, values.Int(1).Truthy())
	require.False(t, values.List(nil).Truthy())
	require.False(t, values.None().Truthy())
}

func TestEqualCrossNumeric(t *testing.T) {
	require.True(t, values.Equal(values.Int(2), values.Float(2.0)))
	require.True(t, values.Equal(values.Float(2.0), values.Int(2)))
	require.False(t, values.Equal(values.Int(2), values.Float(2.5)))
	require.False(t, values.Equal(values.Int(1), values.Str("1")))
}

func TestEqualStructural(t *testing.T) {
	a := values.List([]values.Value{values.Int(1), values.Str("x")})
	b := values.List([]values.Value{values.Int(1), values.Str("x")})
	c := values.List([]values.Value{values.Int(1), values.Str("y")})
	require.True(t, values.Equal(a, b))
	require.False(t, values.Equal(a, c))
}

func TestDictCopyOnWrite(t *testing.T) {
	d := values.Dict([]values.DictEntry{{Key: values.Str("a"), Value: values.Int(1)}})
	d2 := values.DictSet(d, values.Str("b"), values.Int(2))

	_, hasB := values.DictGet(d, values.Str("b"))
	require.False(t, hasB, "original dict must not be mutated")

	v, ok := values.DictGet(d2, values.Str("b"))
	require.True(t, ok)
	n, _ := v.AsInt()
	require.Equal(t, int64(2), n)
	require.Equal(t, 1, values.DictLen(d))
	require.Equal(t, 2, values.DictLen(d2))
}

func TestSetMembership(t *testing.T) {
	s := values.Set([]values.Value{values.Int(1), values.Int(2)})
	require.True(t, values.SetContains(s, values.Int(1)))
	require.False(t, values.SetContains(s, values.Int(3)))
	s2 := values.SetAdd(s, values.Int(3))
	require.True(t, values.SetContains(s2, values.Int(3)))
	require.False(t, values.SetContains(s, values.Int(3)), "original set must not be mutated")
}

func TestReprQuotesStringsStrDoesNot(t *testing.T) {
	v := values.Str("hi")
	require.Equal(t, "hi", v.Str())
	require.Equal(t, `"hi"`, v.Repr())
}

func TestFloatFormatting(t *testing.T) {
	require.Equal(t, "1.0", values.Float(1).Str())
	require.Equal(t, "1.5", values.Float(1.5).Str())
}
