// Package ast defines the Lumen abstract syntax tree as a tagged sum:
// every node is a distinct Go struct type satisfying a marker interface,
// and consumers (the resolver, the evaluator) dispatch over the concrete
// set with a single exhaustive type switch rather than a Visitor.
package ast

import "github.com/lumen-lang/lumen/lexer"

// Expr is satisfied by every expression node.
type Expr interface {
	exprNode()
}

// Literal is a constant value baked in at parse time: a number, string,
// boolean, or nil.
type Literal struct {
	Value any
}

// Grouping is a parenthesized expression, kept distinct from its inner
// expression so error messages can point at the parentheses.
type Grouping struct {
	Expression Expr
}

// Unary is a prefix operator applied to a single operand (`-x`, `!x`).
type Unary struct {
	Operator lexer.Token
	Right    Expr
}

// Binary is an infix arithmetic or comparison expression.
type Binary struct {
	Left     Expr
	Operator lexer.Token
	Right    Expr
}

// Logical is `and`/`or`, kept separate from Binary because both
// short-circuit and return the deciding operand's value unconverted.
type Logical struct {
	Left     Expr
	Operator lexer.Token
	Right    Expr
}

// Conditional is the ternary `cond ? then : else` expression.
type Conditional struct {
	Condition Expr
	Then      Expr
	Else      Expr
}

// Variable is a reference to a named binding.
type Variable struct {
	Name lexer.Token
}

// Assign stores a new value into an existing binding and evaluates to
// that value.
type Assign struct {
	Name  lexer.Token
	Value Expr
}

// Call invokes a callable with a list of argument expressions.
type Call struct {
	Callee    Expr
	Paren     lexer.Token // closing ')', used to position runtime errors
	Arguments []Expr
}

func (*Literal) exprNode()     {}
func (*Grouping) exprNode()    {}
func (*Unary) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Logical) exprNode()     {}
func (*Conditional) exprNode() {}
func (*Variable) exprNode()    {}
func (*Assign) exprNode()      {}
func (*Call) exprNode()        {}
