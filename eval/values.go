package eval

import (
	"fmt"

	"github.com/lumen-lang/lumen/ast"
	"github.com/lumen-lang/lumen/env"
	"github.com/lumen-lang/lumen/lexer"
)

// Callable is anything that can appear on the left of a call expression.
type Callable interface {
	Arity() int
	Call(in *Interpreter, args []any) (any, error)
	String() string
}

// BuiltinFunc is the Go function backing a Builtin value.
type BuiltinFunc func(in *Interpreter, args []any) (any, error)

// Builtin is a host-provided function such as clock or echo.
type Builtin struct {
	Name string
	Arg  int
	Fn   BuiltinFunc
}

func (b *Builtin) Arity() int { return b.Arg }
func (b *Builtin) Call(in *Interpreter, args []any) (any, error) {
	return b.Fn(in, args)
}
func (b *Builtin) String() string { return fmt.Sprintf("<native fn %s>", b.Name) }

// UserFunction is a function declared in Lumen source. Closure is the
// environment frame active when the declaration was evaluated — shared
// by pointer, so the function observes later mutations to that frame.
type UserFunction struct {
	Declaration *ast.FunctionDecl
	Closure     *env.Environment
}

func (f *UserFunction) Arity() int { return len(f.Declaration.Params) }

func (f *UserFunction) Call(in *Interpreter, args []any) (any, error) {
	callEnv := env.NewEnvironment(f.Closure)
	for i, param := range f.Declaration.Params {
		callEnv.Define(param.Lexeme, args[i])
	}

	sig, err := in.executeBlock(f.Declaration.Body, callEnv)
	if err != nil {
		return nil, err
	}
	if ret, ok := sig.(returnSignal); ok {
		return ret.value, nil
	}
	return nil, nil
}

func (f *UserFunction) String() string {
	return fmt.Sprintf("<fn %s>", f.Declaration.Name.Lexeme)
}

// RuntimeError is a failure during evaluation. It halts the enclosing
// Interpret call and carries the token nearest the offending operation
// so the driver can report a position.
type RuntimeError struct {
	Token   lexer.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] Runtime Error: %s", e.Token.Line, e.Message)
}

func newRuntimeError(tok lexer.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

// signal is the non-error, non-value result of executing a statement:
// normal completion (nil), or a break/continue/return that must
// propagate up past enclosing statements without being mistaken for a
// Go error.
type signal interface {
	isSignal()
}

type breakSignal struct{}
type continueSignal struct{}
type returnSignal struct{ value any }

func (breakSignal) isSignal()    {}
func (continueSignal) isSignal() {}
func (returnSignal) isSignal()   {}
