// Package eval tree-walks a resolved Lumen AST and produces effects:
// printed output, mutated environment state, and a final runtime error
// if one occurred. Control flow (break/continue/return) is threaded as
// a distinguished signal value alongside the ordinary Go error return,
// rather than mixed into the error channel or implemented with
// panic/recover.
package eval

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/lumen-lang/lumen/ast"
	"github.com/lumen-lang/lumen/env"
	"github.com/lumen-lang/lumen/lexer"
	"github.com/lumen-lang/lumen/resolver"
)

// Interpreter holds the mutable state of a single evaluation session:
// the global environment, the currently active environment, the
// resolver's depth table, and the output sink for `print`.
type Interpreter struct {
	Globals *env.Environment
	env     *env.Environment
	depths  resolver.Depths
	writer  io.Writer

	// HasErrors is set once a RuntimeError has halted an Interpret call.
	HasErrors bool

	maxCallDepth int
	callDepth    int
}

// Option configures an Interpreter at construction time.
type Option func(*Interpreter)

// WithWriter redirects `print` output away from os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(in *Interpreter) { in.writer = w }
}

// WithMaxCallDepth bounds recursion depth; the default is 1000.
func WithMaxCallDepth(depth int) Option {
	return func(in *Interpreter) { in.maxCallDepth = depth }
}

// WithDisabledBuiltins removes named builtins from the global
// environment after registration, letting a host restrict what a
// script may call.
func WithDisabledBuiltins(names []string) Option {
	return func(in *Interpreter) {
		for _, name := range names {
			in.Globals.Delete(name)
		}
	}
}

// NewInterpreter builds an Interpreter with the standard builtins
// registered in its global environment.
func NewInterpreter(opts ...Option) *Interpreter {
	globals := env.NewEnvironment(nil)
	in := &Interpreter{
		Globals:      globals,
		env:          globals,
		writer:       os.Stdout,
		maxCallDepth: 1000,
	}
	registerBuiltins(in)
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Interpret resolves variable references against depths and executes
// stmts in order, stopping at the first RuntimeError.
func (in *Interpreter) Interpret(stmts []ast.Stmt, depths resolver.Depths) error {
	in.depths = depths
	for _, stmt := range stmts {
		if _, err := in.execute(stmt); err != nil {
			in.HasErrors = true
			return err
		}
	}
	return nil
}

func (in *Interpreter) execute(stmt ast.Stmt) (signal, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		_, err := in.evaluate(s.Expression)
		return nil, err
	case *ast.ForIncrementStmt:
		_, err := in.evaluate(s.Expression)
		return nil, err
	case *ast.PrintStmt:
		v, err := in.evaluate(s.Expression)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(in.writer, stringify(v))
		return nil, nil
	case *ast.VarStmt:
		var value any
		if s.Initializer != nil {
			v, err := in.evaluate(s.Initializer)
			if err != nil {
				return nil, err
			}
			value = v
		}
		in.env.Define(s.Name.Lexeme, value)
		return nil, nil
	case *ast.Block:
		return in.executeBlock(s.Statements, env.NewEnvironment(in.env))
	case *ast.If:
		cond, err := in.evaluate(s.Condition)
		if err != nil {
			return nil, err
		}
		if isTruthy(cond) {
			return in.execute(s.Then)
		}
		if s.Else != nil {
			return in.execute(s.Else)
		}
		return nil, nil
	case *ast.While:
		return in.executeWhile(s)
	case *ast.FunctionDecl:
		fn := &UserFunction{Declaration: s, Closure: in.env}
		in.env.Define(s.Name.Lexeme, fn)
		return nil, nil
	case *ast.Return:
		var value any
		if s.Value != nil {
			v, err := in.evaluate(s.Value)
			if err != nil {
				return nil, err
			}
			value = v
		}
		return returnSignal{value: value}, nil
	case *ast.Break:
		return breakSignal{}, nil
	case *ast.Continue:
		return continueSignal{}, nil
	}
	panic(fmt.Sprintf("eval: unhandled statement type %T", stmt))
}

// executeBlock runs stmts in a fresh child environment, restoring the
// interpreter's active environment before returning regardless of how
// execution ends.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, blockEnv *env.Environment) (signal, error) {
	previous := in.env
	in.env = blockEnv
	defer func() { in.env = previous }()

	for i, stmt := range stmts {
		sig, err := in.execute(stmt)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			if _, ok := sig.(continueSignal); ok {
				// A desugared `for` loop appends its increment as a
				// ForIncrementStmt sibling after the user's body in
				// this same block. `continue` must still run it
				// before the loop condition is re-tested, even though
				// it skips everything else in the block.
				if err := in.runIncrementsAfter(stmts, i); err != nil {
					return nil, err
				}
			}
			return sig, nil
		}
	}
	return nil, nil
}

func (in *Interpreter) runIncrementsAfter(stmts []ast.Stmt, index int) error {
	for _, stmt := range stmts[index+1:] {
		if inc, ok := stmt.(*ast.ForIncrementStmt); ok {
			if _, err := in.evaluate(inc.Expression); err != nil {
				return err
			}
		}
	}
	return nil
}

// executeWhile drives the loop state machine: evaluate condition, run
// body, interpret any break/continue signal it produced, repeat. `for`
// loops reach this as a desugared While whose body ends in a
// ForIncrementStmt; when continue fires, executeBlock runs that
// increment before the signal reaches this loop.
func (in *Interpreter) executeWhile(s *ast.While) (signal, error) {
	for {
		cond, err := in.evaluate(s.Condition)
		if err != nil {
			return nil, err
		}
		if !isTruthy(cond) {
			return nil, nil
		}

		sig, err := in.execute(s.Body)
		if err != nil {
			return nil, err
		}
		switch sig.(type) {
		case nil:
			// fall through to next iteration
		case breakSignal:
			return nil, nil
		case continueSignal:
			// the increment, if any, was already run by the body
			// block after the continue was raised — nothing further
			// to do here.
		case returnSignal:
			return sig, nil
		}
	}
}

func (in *Interpreter) evaluate(expr ast.Expr) (any, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return e.Value, nil
	case *ast.Grouping:
		return in.evaluate(e.Expression)
	case *ast.Variable:
		return in.lookupVariable(e.Name, e)
	case *ast.Assign:
		value, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if distance, ok := in.depths[e]; ok {
			in.env.AssignAt(distance, e.Name.Lexeme, value)
		} else if !in.Globals.Assign(e.Name.Lexeme, value) {
			return nil, newRuntimeError(e.Name, "Undefined variable '%s'.", e.Name.Lexeme)
		}
		return value, nil
	case *ast.Logical:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Operator.Type == lexer.Or {
			if isTruthy(left) {
				return left, nil
			}
		} else {
			if !isTruthy(left) {
				return left, nil
			}
		}
		return in.evaluate(e.Right)
	case *ast.Conditional:
		cond, err := in.evaluate(e.Condition)
		if err != nil {
			return nil, err
		}
		if isTruthy(cond) {
			return in.evaluate(e.Then)
		}
		return in.evaluate(e.Else)
	case *ast.Unary:
		right, err := in.evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		switch e.Operator.Type {
		case lexer.Minus:
			n, ok := right.(float64)
			if !ok {
				return nil, newRuntimeError(e.Operator, "Operand must be a number.")
			}
			return -n, nil
		case lexer.Bang:
			return !isTruthy(right), nil
		}
	case *ast.Binary:
		return in.evaluateBinary(e)
	case *ast.Call:
		return in.evaluateCall(e)
	}
	panic(fmt.Sprintf("eval: unhandled expression type %T", expr))
}

func (in *Interpreter) lookupVariable(name lexer.Token, expr ast.Expr) (any, error) {
	if distance, ok := in.depths[expr]; ok {
		return in.env.GetAt(distance, name.Lexeme), nil
	}
	if v, ok := in.Globals.Get(name.Lexeme); ok {
		return v, nil
	}
	return nil, newRuntimeError(name, "Undefined variable '%s'.", name.Lexeme)
}

func (in *Interpreter) evaluateBinary(e *ast.Binary) (any, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case lexer.Plus:
		ln, lok := left.(float64)
		rn, rok := right.(float64)
		if lok && rok {
			return ln + rn, nil
		}
		ls, lstrOk := left.(string)
		rs, rstrOk := right.(string)
		if (lstrOk || rstrOk) && isStringOrNumber(left) && isStringOrNumber(right) {
			if !lstrOk {
				ls = stringify(left)
			}
			if !rstrOk {
				rs = stringify(right)
			}
			return ls + rs, nil
		}
		return nil, newRuntimeError(e.Operator, "Operands must be two numbers or include a string.")
	case lexer.Minus:
		ln, rn, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return ln - rn, nil
	case lexer.Star:
		ln, rn, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return ln * rn, nil
	case lexer.Slash:
		ln, rn, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		if rn == 0 {
			return nil, newRuntimeError(e.Operator, "Division by zero.")
		}
		return ln / rn, nil
	case lexer.Greater:
		ln, rn, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return ln > rn, nil
	case lexer.GreaterEqual:
		ln, rn, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return ln >= rn, nil
	case lexer.Less:
		ln, rn, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return ln < rn, nil
	case lexer.LessEqual:
		ln, rn, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return ln <= rn, nil
	case lexer.EqualEqual:
		ln, rn, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return ln == rn, nil
	case lexer.BangEqual:
		ln, rn, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return ln != rn, nil
	}
	panic(fmt.Sprintf("eval: unhandled binary operator %s", e.Operator.Type))
}

// isStringOrNumber reports whether v is a Lumen string or number, the
// only two types the reference evaluator permits on either side of a
// `+` expression (lox.py's binary-op type check).
func isStringOrNumber(v any) bool {
	switch v.(type) {
	case string, float64:
		return true
	default:
		return false
	}
}

func numberOperands(op lexer.Token, left, right any) (float64, float64, error) {
	ln, lok := left.(float64)
	rn, rok := right.(float64)
	if !lok || !rok {
		return 0, 0, newRuntimeError(op, "Operands must be numbers.")
	}
	return ln, rn, nil
}

func (in *Interpreter) evaluateCall(e *ast.Call) (any, error) {
	callee, err := in.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]any, len(e.Arguments))
	for i, argExpr := range e.Arguments {
		v, err := in.evaluate(argExpr)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, newRuntimeError(e.Paren, "Can only call functions and classes.")
	}
	if len(args) != callable.Arity() {
		return nil, newRuntimeError(e.Paren, "Expected %d arguments but got %d.", callable.Arity(), len(args))
	}

	if in.callDepth >= in.maxCallDepth {
		return nil, newRuntimeError(e.Paren, "Stack overflow.")
	}
	in.callDepth++
	defer func() { in.callDepth-- }()

	return callable.Call(in, args)
}

// isTruthy implements Lumen's truthiness rule: nil and false are
// falsy, everything else (including 0 and "") is truthy.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return val
	case Callable:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
