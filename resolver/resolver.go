// Package resolver performs a static pass over the AST that determines,
// for every variable reference, how many enclosing scopes separate it
// from its declaration. The evaluator uses this side table to walk
// environment chains in O(depth) instead of searching by name.
package resolver

import (
	"fmt"

	"github.com/lumen-lang/lumen/ast"
	"github.com/lumen-lang/lumen/lexer"
)

// Diagnostic is a resolver error or an unused-variable warning. The
// resolver records every diagnostic and keeps walking the tree; the
// warnings are the ones whose message contains "never used".
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("[line %d] Resolver Error: %s", d.Line, d.Message)
}

// bindingState tracks a local variable's lifecycle within its scope, so
// the resolver can catch `var a = a;` and warn about bindings that are
// declared but never read.
type bindingState int

const (
	declared bindingState = iota
	defined
	used
)

type binding struct {
	state bindingState
	line  int
}

type scope map[string]*binding

// Depths maps a resolved expression node (by pointer identity, not by
// name) to the number of environment frames to walk to find its
// binding. An expression missing from Depths is a global reference.
type Depths map[ast.Expr]int

type functionKind int

const (
	kindNone functionKind = iota
	kindFunction
)

// Resolver walks the AST once, before evaluation.
type Resolver struct {
	scopes      []scope
	depths      Depths
	currentFn   functionKind
	diagnostics []Diagnostic
}

// NewResolver prepares an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{depths: Depths{}}
}

// Resolve resolves every statement in stmts at the global scope and
// returns the accumulated depth table and diagnostics.
func (r *Resolver) Resolve(stmts []ast.Stmt) (Depths, []Diagnostic) {
	r.resolveStmts(stmts)
	return r.depths, r.diagnostics
}

func (r *Resolver) error(line int, format string, args ...any) {
	r.diagnostics = append(r.diagnostics, Diagnostic{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, scope{}) }

func (r *Resolver) endScope() {
	top := r.scopes[len(r.scopes)-1]
	for name, b := range top {
		if b.state != used {
			r.error(b.line, "local variable %q is declared but never used", name)
		}
	}
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExpressionStmt:
		r.resolveExpr(n.Expression)
	case *ast.ForIncrementStmt:
		r.resolveExpr(n.Expression)
	case *ast.PrintStmt:
		r.resolveExpr(n.Expression)
	case *ast.VarStmt:
		r.declare(n.Name)
		if n.Initializer != nil {
			r.resolveExpr(n.Initializer)
		}
		r.define(n.Name)
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(n.Statements)
		r.endScope()
	case *ast.If:
		r.resolveExpr(n.Condition)
		r.resolveStmt(n.Then)
		if n.Else != nil {
			r.resolveStmt(n.Else)
		}
	case *ast.While:
		r.resolveExpr(n.Condition)
		r.resolveStmt(n.Body)
	case *ast.FunctionDecl:
		r.declare(n.Name)
		r.define(n.Name)
		r.resolveFunction(n)
	case *ast.Return:
		if r.currentFn == kindNone {
			r.error(n.Keyword.Line, "can't return from top-level code")
		}
		if n.Value != nil {
			r.resolveExpr(n.Value)
		}
	case *ast.Break, *ast.Continue:
		// no bindings to resolve
	default:
		panic(fmt.Sprintf("resolver: unhandled statement type %T", s))
	}
}

func (r *Resolver) resolveFunction(fn *ast.FunctionDecl) {
	enclosing := r.currentFn
	r.currentFn = kindFunction
	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
	r.currentFn = enclosing
}

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		// nothing to resolve
	case *ast.Grouping:
		r.resolveExpr(n.Expression)
	case *ast.Unary:
		r.resolveExpr(n.Right)
	case *ast.Binary:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.Logical:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.Conditional:
		r.resolveExpr(n.Condition)
		r.resolveExpr(n.Then)
		r.resolveExpr(n.Else)
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if b, ok := r.scopes[len(r.scopes)-1][n.Name.Lexeme]; ok && b.state == declared {
				r.error(n.Name.Line, "can't read local variable %q in its own initializer", n.Name.Lexeme)
			}
		}
		r.resolveLocal(n, n.Name, true)
	case *ast.Assign:
		r.resolveExpr(n.Value)
		r.resolveLocal(n, n.Name, false)
	case *ast.Call:
		r.resolveExpr(n.Callee)
		for _, arg := range n.Arguments {
			r.resolveExpr(arg)
		}
	default:
		panic(fmt.Sprintf("resolver: unhandled expression type %T", e))
	}
}

func (r *Resolver) declare(name lexer.Token) {
	if len(r.scopes) == 0 {
		return
	}
	top := r.scopes[len(r.scopes)-1]
	if _, exists := top[name.Lexeme]; exists {
		r.error(name.Line, "variable %q already declared in this scope", name.Lexeme)
	}
	top[name.Lexeme] = &binding{state: declared, line: name.Line}
}

func (r *Resolver) define(name lexer.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme].state = defined
}

// resolveLocal records expr's scope distance. markUsed is false for an
// assignment target, since writing a binding does not count as reading it.
func (r *Resolver) resolveLocal(expr ast.Expr, name lexer.Token, markUsed bool) {
	for depth := len(r.scopes) - 1; depth >= 0; depth-- {
		if b, ok := r.scopes[depth][name.Lexeme]; ok {
			if markUsed {
				b.state = used
			}
			r.depths[expr] = len(r.scopes) - 1 - depth
			return
		}
	}
	// not found in any local scope: treat as a global, resolved by the
	// environment's global-fallback lookup at evaluation time.
}
