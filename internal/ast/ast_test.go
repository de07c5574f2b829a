package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/parser"
)

func transform(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := parser.NewParser()
	require.NoError(t, err)
	concrete, err := p.Parse("<test>", src)
	require.NoError(t, err)
	prog, err := ast.Transform("<test>", concrete)
	require.NoError(t, err)
	return prog
}

func TestTransformBinaryPrecedenceShapesTree(t *testing.T) {
	prog := transform(t, "x = 1 + 2 * 3\n")
	assign := prog.Statements[0].(*ast.Assignment)
	add, ok := assign.Value.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, "+", add.Op)
	_, leftIsInt := add.Left.(*ast.IntegerLiteral)
	require.True(t, leftIsInt)
	mul, ok := add.Right.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, "*", mul.Op)
}

func TestTransformElifChainNestsInElse(t *testing.T) {
	src := `if a:
    x = 1
elif b:
    x = 2
else:
    x = 3
`
	prog := transform(t, src)
	cond := prog.Statements[0].(*ast.Conditional)
	require.Len(t, cond.Then, 1)
	require.Len(t, cond.Else, 1)
	nested, ok := cond.Else[0].(*ast.Conditional)
	require.True(t, ok)
	require.Len(t, nested.Then, 1)
	require.Len(t, nested.Else, 1)
}

func TestTransformPipeChainIsLeftAssociative(t *testing.T) {
	prog := transform(t, "y = data | f | g\n")
	assign := prog.Statements[0].(*ast.Assignment)
	outer, ok := assign.Value.(*ast.PipeExpression)
	require.True(t, ok)
	_, rightIsG := outer.Right.(*ast.Identifier)
	require.True(t, rightIsG)
	inner, ok := outer.Left.(*ast.PipeExpression)
	require.True(t, ok)
	left, ok := inner.Left.(*ast.Identifier)
	require.True(t, ok)
	require.Equal(t, "data", left.Name)
}

func TestTransformSliceExpressionComponents(t *testing.T) {
	prog := transform(t, "y = items[1:5:2]\n")
	assign := prog.Statements[0].(*ast.Assignment)
	sl, ok := assign.Value.(*ast.SliceExpression)
	require.True(t, ok)
	require.NotNil(t, sl.Start)
	require.NotNil(t, sl.Stop)
	require.True(t, sl.HasStep)
	require.NotNil(t, sl.Step)
}

func TestTransformFStringSplitsLiteralsAndExpressions(t *testing.T) {
	prog := transform(t, `y = f"hello {name}!"` + "\n")
	assign := prog.Statements[0].(*ast.Assignment)
	fstr, ok := assign.Value.(*ast.FStringLiteral)
	require.True(t, ok)
	require.Len(t, fstr.Parts, 3)
	require.Equal(t, "hello ", fstr.Parts[0].Literal)
	require.NotNil(t, fstr.Parts[1].Expr)
	ident, ok := fstr.Parts[1].Expr.(*ast.Identifier)
	require.True(t, ok)
	require.Equal(t, "name", ident.Name)
	require.Equal(t, "!", fstr.Parts[2].Literal)
}

func TestTransformFunctionDefDecorators(t *testing.T) {
	src := `@cached
def square(n):
    return n * n
`
	prog := transform(t, src)
	fn := prog.Statements[0].(*ast.FunctionDefinition)
	require.Equal(t, "square", fn.Name)
	require.Len(t, fn.Decorators, 1)
	require.Equal(t, "cached", fn.Decorators[0].Call.Callee.(*ast.Identifier).Name)
}

func TestTransformExplicitScopePrefix(t *testing.T) {
	prog := transform(t, "public:counter = 0\n")
	assign := prog.Statements[0].(*ast.Assignment)
	ident := assign.Target.(*ast.Identifier)
	require.Equal(t, ast.ScopePublic, ident.Scope)
	require.Equal(t, "counter", ident.Name)
}

func TestValidateRejectsDuplicateStructField(t *testing.T) {
	prog := transform(t, "struct Point:\n    x: int\n    x: int\n")
	err := ast.Validate(prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate field")
}

func TestValidateRejectsRequiredParamAfterDefault(t *testing.T) {
	prog := transform(t, "def f(a=1, b):\n    return a\n")
	err := ast.Validate(prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "follows a defaulted parameter")
}

func TestValidateAcceptsWellFormedProgram(t *testing.T) {
	prog := transform(t, "def f(a, b=1):\n    return a + b\n")
	require.NoError(t, ast.Validate(prog))
}
