package resolver

import (
	"testing"

	"github.com/lumen-lang/lumen/ast"
	"github.com/lumen-lang/lumen/lexer"
	"github.com/lumen-lang/lumen/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, src string) ([]ast.Stmt, Depths, []Diagnostic) {
	t.Helper()
	tokens, diags := lexer.NewLexer(src).ScanTokens()
	require.Empty(t, diags)
	stmts, pdiags := parser.NewParser(tokens).Parse()
	require.Empty(t, pdiags)
	depths, rdiags := NewResolver().Resolve(stmts)
	return stmts, depths, rdiags
}

func TestResolve_LocalVariableGetsDepth(t *testing.T) {
	_, depths, diags := resolve(t, `{ var a = 1; print a; }`)
	require.Empty(t, diags)
	assert.Len(t, depths, 1)
}

func TestResolve_GlobalVariableIsUnresolved(t *testing.T) {
	_, depths, diags := resolve(t, `var a = 1; print a;`)
	require.Empty(t, diags)
	assert.Empty(t, depths)
}

func TestResolve_ReadingLocalInOwnInitializerIsError(t *testing.T) {
	_, _, diags := resolve(t, `{ var a = a; }`)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "its own initializer")
}

func TestResolve_ClosureCapturesOuterFunctionParam(t *testing.T) {
	stmts, depths, diags := resolve(t, `
		fun makeCounter(start) {
			fun inc() {
				start = start + 1;
				return start;
			}
			return inc;
		}
	`)
	require.Empty(t, diags)
	require.Len(t, stmts, 1)
	assert.NotEmpty(t, depths)
}

func TestResolve_UnusedLocalWarns(t *testing.T) {
	_, _, diags := resolve(t, `{ var unused = 1; }`)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "never used")
}

func TestResolve_ShadowingIsAllowedAtDifferentDepths(t *testing.T) {
	_, _, diags := resolve(t, `
		var a = 1;
		{
			var a = 2;
			print a;
		}
		print a;
	`)
	require.Empty(t, diags)
}
