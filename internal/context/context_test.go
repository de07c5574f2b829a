package context_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/values"
)

func TestSetGetLocalRoundTrip(t *testing.T) {
	ctx := context.New(false)
	ctx.Set("x", values.Int(1))
	v, ok := ctx.Get("x")
	require.True(t, ok)
	n, _ := v.AsInt()
	require.Equal(t, int64(1), n)
}

func TestChildSeesParentPublicScope(t *testing.T) {
	root := context.New(false)
	root.SetInScope(context.Public, "greeting", values.Str("hi"))
	child := root.Child()

	v, ok := child.Get("greeting")
	require.True(t, ok)
	s, _ := v.AsString()
	require.Equal(t, "hi", s)
}

func TestChildWriteToPublicPropagatesToRoot(t *testing.T) {
	root := context.New(false)
	child := root.Child()
	child.SetInScope(context.Public, "counter", values.Int(1))

	v, ok := root.GetScope(context.Public, "counter")
	require.True(t, ok)
	n, _ := v.AsInt()
	require.Equal(t, int64(1), n)
}

func TestChildWriteToPrivatePropagatesToRoot(t *testing.T) {
	root := context.New(false)
	child := root.Child()
	child.SetInScope(context.Private, "x", values.Int(1))

	v, ok := root.GetScope(context.Private, "x")
	require.True(t, ok)
	n, _ := v.AsInt()
	require.Equal(t, int64(1), n)
}

func TestChildLocalsDoNotLeakToParent(t *testing.T) {
	root := context.New(false)
	child := root.Child()
	child.Set("x", values.Int(42))

	_, ok := root.Get("x")
	require.False(t, ok)
}

func TestSetUpdatesExistingOuterBinding(t *testing.T) {
	root := context.New(false)
	root.Set("x", values.Int(1))
	child := root.Child()
	// x isn't in child's own local map, but Set should find and update the
	// parent's existing binding rather than shadow it with a new one.
	child.Set("x", values.Int(2))

	v, ok := root.Get("x")
	require.True(t, ok)
	n, _ := v.AsInt()
	require.Equal(t, int64(2), n)
}

func TestStrictUndefinedDefaultsLenient(t *testing.T) {
	ctx := context.New(false)
	require.False(t, ctx.StrictUndefined())
	_, ok := ctx.Get("nope")
	require.False(t, ok)
}

func TestDrainOutputClearsBuffer(t *testing.T) {
	ctx := context.New(false)
	ctx.Write("hello ")
	ctx.Write("world")
	require.Equal(t, "hello world", ctx.DrainOutput())
	require.Equal(t, "", ctx.DrainOutput())
}

func TestSnapshotIncludesLocalAndPublicScopes(t *testing.T) {
	ctx := context.New(false)
	ctx.Set("local_name", values.Int(1))
	ctx.SetInScope(context.Public, "pub_name", values.Int(2))

	snap := ctx.Snapshot()
	_, hasLocal := snap["local:local_name"]
	_, hasPublic := snap["public:pub_name"]
	require.True(t, hasLocal)
	require.True(t, hasPublic)
}
