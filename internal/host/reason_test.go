package host_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/danalog"
	"github.com/dana-lang/dana/internal/host"
)

type fixedResource struct {
	text string
	err  error
}

func (f fixedResource) Complete(string, host.Options) (string, error) {
	return f.text, f.err
}

func TestReasonReturnsPlainStringByDefault(t *testing.T) {
	v, err := host.Reason(fixedResource{text: "42"}, danalog.NullLogger(), "prompt", host.Options{})
	require.NoError(t, err)
	require.Equal(t, "42", v.Str())
	_, isInt := v.AsInt()
	require.False(t, isInt, "reason() must not coerce its result itself — coercion happens at a typed call site")
}

func TestReasonFallsBackToMockWhenEnabled(t *testing.T) {
	t.Setenv("OPENDXA_MOCK_LLM", "1")
	v, err := host.Reason(nil, danalog.NullLogger(), "hello", host.Options{})
	require.NoError(t, err)
	s, _ := v.AsString()
	require.Contains(t, s, "hello")
}

func TestReasonErrorsWithoutResourceOrMock(t *testing.T) {
	t.Setenv("OPENDXA_MOCK_LLM", "")
	_, err := host.Reason(nil, danalog.NullLogger(), "hello", host.Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "RuntimeError")
}

func TestReasonPropagatesBackendError(t *testing.T) {
	_, err := host.Reason(fixedResource{err: errBoom}, danalog.NullLogger(), "hello", host.Options{})
	require.Error(t, err)
}

var errBoom = boomErr{}

type boomErr struct{}

func (boomErr) Error() string { return "backend unavailable" }
