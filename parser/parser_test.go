package parser

import (
	"testing"

	"github.com/lumen-lang/lumen/ast"
	"github.com/lumen-lang/lumen/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) ([]ast.Stmt, []Diagnostic) {
	t.Helper()
	tokens, diags := lexer.NewLexer(src).ScanTokens()
	require.Empty(t, diags)
	return NewParser(tokens).Parse()
}

func TestParse_VarDeclAndPrint(t *testing.T) {
	stmts, diags := parse(t, `var a = 1; print a;`)
	require.Empty(t, diags)
	require.Len(t, stmts, 2)

	varStmt, ok := stmts[0].(*ast.VarStmt)
	require.True(t, ok)
	assert.Equal(t, "a", varStmt.Name.Lexeme)

	_, ok = stmts[1].(*ast.PrintStmt)
	assert.True(t, ok)
}

func TestParse_ForLoopDesugarsToWhileWithIncrementStmt(t *testing.T) {
	stmts, diags := parse(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	require.Empty(t, diags)
	require.Len(t, stmts, 1)

	block, ok := stmts[0].(*ast.Block)
	require.True(t, ok)
	require.Len(t, block.Statements, 2)

	_, ok = block.Statements[0].(*ast.VarStmt)
	assert.True(t, ok)

	while, ok := block.Statements[1].(*ast.While)
	require.True(t, ok)

	body, ok := while.Body.(*ast.Block)
	require.True(t, ok)
	require.Len(t, body.Statements, 2)

	_, ok = body.Statements[1].(*ast.ForIncrementStmt)
	assert.True(t, ok)
}

func TestParse_CompoundAssignDesugarsToAssignOfBinary(t *testing.T) {
	stmts, diags := parse(t, `a += 2;`)
	require.Empty(t, diags)
	require.Len(t, stmts, 1)

	exprStmt := stmts[0].(*ast.ExpressionStmt)
	assign, ok := exprStmt.Expression.(*ast.Assign)
	require.True(t, ok)

	bin, ok := assign.Value.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, lexer.Plus, bin.Operator.Type)
}

func TestParse_IncrementDesugarsToAssign(t *testing.T) {
	stmts, diags := parse(t, `a++;`)
	require.Empty(t, diags)
	exprStmt := stmts[0].(*ast.ExpressionStmt)
	assign, ok := exprStmt.Expression.(*ast.Assign)
	require.True(t, ok)
	bin := assign.Value.(*ast.Binary)
	assert.Equal(t, lexer.Plus, bin.Operator.Type)
	assert.Equal(t, 1.0, bin.Right.(*ast.Literal).Value)
}

func TestParse_MissingLeftOperandIsReported(t *testing.T) {
	_, diags := parse(t, `!= 2;`)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "Missing left-hand operand")
}

func TestParse_BreakOutsideLoopIsError(t *testing.T) {
	_, diags := parse(t, `break;`)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "break")
}

func TestParse_ReturnOutsideFunctionIsError(t *testing.T) {
	_, diags := parse(t, `return 1;`)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "top-level")
}

func TestParse_FunctionDeclaration(t *testing.T) {
	stmts, diags := parse(t, `fun add(a, b) { return a + b; }`)
	require.Empty(t, diags)
	require.Len(t, stmts, 1)
	fn, ok := stmts[0].(*ast.FunctionDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name.Lexeme)
	assert.Len(t, fn.Params, 2)
	assert.Len(t, fn.Body, 1)
}

func TestParse_TernaryConditional(t *testing.T) {
	stmts, diags := parse(t, `print a ? 1 : 2;`)
	require.Empty(t, diags)
	printStmt := stmts[0].(*ast.PrintStmt)
	_, ok := printStmt.Expression.(*ast.Conditional)
	assert.True(t, ok)
}
