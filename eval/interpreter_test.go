package eval

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lumen-lang/lumen/lexer"
	"github.com/lumen-lang/lumen/parser"
	"github.com/lumen-lang/lumen/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	tokens, ldiags := lexer.NewLexer(src).ScanTokens()
	require.Empty(t, ldiags)

	stmts, pdiags := parser.NewParser(tokens).Parse()
	require.Empty(t, pdiags)

	depths, rdiags := resolver.NewResolver().Resolve(stmts)
	var fatal []resolver.Diagnostic
	for _, d := range rdiags {
		if !strings.Contains(d.Message, "never used") {
			fatal = append(fatal, d)
		}
	}
	require.Empty(t, fatal)

	var out bytes.Buffer
	in := NewInterpreter(WithWriter(&out))
	err := in.Interpret(stmts, depths)
	return out.String(), err
}

func TestInterpret_FibonacciLoopCapsAt6765(t *testing.T) {
	out, err := run(t, `
		var a = 0;
		var b = 1;
		for (var i = 0; i < 20; i = i + 1) {
			var next = a + b;
			a = b;
			b = next;
		}
		print a;
	`)
	require.NoError(t, err)
	assert.Equal(t, "6765\n", out)
}

func TestInterpret_RecursiveFibonacciOfTen(t *testing.T) {
	out, err := run(t, `
		fun fib(n) {
			if (n < 2) { return n; }
			return fib(n - 1) + fib(n - 2);
		}
		print fib(10);
	`)
	require.NoError(t, err)
	assert.Equal(t, "55\n", out)
}

func TestInterpret_ClosureSharesMutableState(t *testing.T) {
	out, err := run(t, `
		fun makeCounter() {
			var count = 0;
			fun inc() {
				count = count + 1;
				return count;
			}
			return inc;
		}
		var counter = makeCounter();
		print counter();
		print counter();
		print counter();
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestInterpret_BreakStopsLoopAtTwo(t *testing.T) {
	out, err := run(t, `
		var a = 0;
		while (true) {
			a = a + 1;
			if (a == 2) { break; }
		}
		print a;
	`)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestInterpret_ContinueStillRunsIncrement(t *testing.T) {
	out, err := run(t, `
		var b = 0;
		var a = 0;
		for (; a < 3; a = a + 1) {
			if (a == 1) { continue; }
			b = b + 1;
		}
		print b;
		print a;
	`)
	require.NoError(t, err)
	assert.Equal(t, "2\n3\n", out)
}

func TestInterpret_StringPlusNumberConcatenates(t *testing.T) {
	out, err := run(t, `print "foo" + 4;`)
	require.NoError(t, err)
	assert.Equal(t, "foo4\n", out)
}

func TestInterpret_CallingNonFunctionIsRuntimeError(t *testing.T) {
	_, err := run(t, `var a = 1; a();`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can only call functions and classes")
}

func TestInterpret_DivisionByZeroIsRuntimeError(t *testing.T) {
	_, err := run(t, `print 1 / 0;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Division by zero")
}

func TestInterpret_LogicalOperatorsReturnOperandValue(t *testing.T) {
	out, err := run(t, `
		print nil or "default";
		print "set" and "second";
	`)
	require.NoError(t, err)
	assert.Equal(t, "default\nsecond\n", out)
}

func TestInterpret_TernaryConditional(t *testing.T) {
	out, err := run(t, `print 1 < 2 ? "yes" : "no";`)
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)
}

func TestInterpret_EqualityRequiresNumbers(t *testing.T) {
	_, err := run(t, `print 1 == "1";`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be numbers")
}

func TestInterpret_ConcatenationRejectsNonStringOrNumberOperand(t *testing.T) {
	_, err := run(t, `print "x" + true;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be two numbers or include a string")
}

func TestInterpret_Builtins(t *testing.T) {
	out, err := run(t, `
		print echo(42);
		print len("hello");
		print type(1);
		print str(1);
	`)
	require.NoError(t, err)
	assert.Equal(t, "42\n5\nnumber\n1\n", out)
}
