package sandbox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/sandbox"
)

func TestEvalArithmeticPrecedence(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	res := sb.Eval("2 + 3 * 4 - 1", "")
	require.True(t, res.Success, "eval error: %v", res.Error)
	n, ok := res.Result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(13), n)
}

func TestEvalPowerIsRightAssociative(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	res := sb.Eval("2 ** 3 ** 2", "")
	require.True(t, res.Success, "eval error: %v", res.Error)
	n, ok := res.Result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(512), n) // 2 ** (3 ** 2), not (2 ** 3) ** 2
}

func TestPipelineComposition(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	src := `
def double(x):
    return x * 2

def increment(x):
    return x + 1

pipeline = double | increment
pipeline(5)
`
	res := sb.Eval(src, "<test>")
	require.True(t, res.Success, "eval error: %v", res.Error)
	n, ok := res.Result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(11), n) // double(5) = 10, increment(10) = 11
}

func TestPipeImmediateDataApplication(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	src := `
def double(x):
    return x * 2

5 | double
`
	res := sb.Eval(src, "<test>")
	require.True(t, res.Success, "eval error: %v", res.Error)
	n, ok := res.Result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(10), n)
}

func TestStructConstructionAndMethodSugar(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	src := `
struct Point:
    x: int
    y: int

def magnitude_squared(self):
    return self.x * self.x + self.y * self.y

p = Point(x=3, y=4)
p.magnitude_squared()
`
	res := sb.Eval(src, "<test>")
	require.True(t, res.Success, "eval error: %v", res.Error)
	n, ok := res.Result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(25), n)
}

func TestStructConstructionMissingFieldErrors(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	src := `
struct Point:
    x: int
    y: int

Point(x=1)
`
	res := sb.Eval(src, "<test>")
	require.False(t, res.Success)
	require.Contains(t, res.Error.Error(), "missing required field")
}

func TestStructFieldNotFoundCitesValidFields(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	src := `
struct Point:
    x: int
    y: int

p = Point(x=1, y=2)
p.z
`
	res := sb.Eval(src, "<test>")
	require.False(t, res.Success)
	require.Contains(t, res.Error.Error(), "valid fields")
	require.Contains(t, res.Error.Error(), "x")
	require.Contains(t, res.Error.Error(), "y")
}

func TestFStringInterpolation(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	src := `
name = "world"
count = 3
f"hello {name}, count={count + 1}"
`
	res := sb.Eval(src, "<test>")
	require.True(t, res.Success, "eval error: %v", res.Error)
	s, ok := res.Result.AsString()
	require.True(t, ok)
	require.Equal(t, "hello world, count=4", s)
}

func TestForLoopAndPrintCapturesOutput(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	src := `
total = 0
for n in range(5):
    print(n)
    total = total + n
total
`
	res := sb.Eval(src, "<test>")
	require.True(t, res.Success, "eval error: %v", res.Error)
	n, ok := res.Result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(10), n)
	require.Equal(t, "0\n1\n2\n3\n4\n", res.Output)
}

func TestTryExceptCatchesTypedError(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	src := `
result = 0
try:
    result = 1 / 0
except ValueError as e:
    result = -1
result
`
	res := sb.Eval(src, "<test>")
	require.True(t, res.Success, "eval error: %v", res.Error)
	n, ok := res.Result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(-1), n)
}

func TestRunRejectsNonNaExtension(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	res := sb.Run("script.txt")
	require.False(t, res.Success)
	require.Contains(t, res.Error.Error(), ".na")
}

func TestRunMissingFile(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	res := sb.Run(filepath.Join(t.TempDir(), "nope.na"))
	require.False(t, res.Success)
	require.Contains(t, res.Error.Error(), "FileNotFoundError")
}

func TestRunExecutesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.na")
	require.NoError(t, os.WriteFile(path, []byte("1 + 1\n"), 0o644))

	res := sandbox.QuickRun(path)
	require.True(t, res.Success, "run error: %v", res.Error)
	n, ok := res.Result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(2), n)
}

func TestEvalPersistsBindingsAcrossCalls(t *testing.T) {
	sb := sandbox.New(sandbox.Options{})
	defer sb.Shutdown()

	res := sb.Eval("x = 10", "<repl>")
	require.True(t, res.Success, "eval error: %v", res.Error)

	res = sb.Eval("x + 5", "<repl>")
	require.True(t, res.Success, "eval error: %v", res.Error)
	n, ok := res.Result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(15), n)
}

func TestQuickEval(t *testing.T) {
	res := sandbox.QuickEval("3 * 3")
	require.True(t, res.Success, "eval error: %v", res.Error)
	n, ok := res.Result.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(9), n)
}

func TestExecutionResultString(t *testing.T) {
	res := sandbox.QuickEval("42")
	require.Equal(t, "Success: 42", res.String())

	res = sandbox.QuickEval("1 / 0")
	require.Contains(t, res.String(), "Error:")
}
