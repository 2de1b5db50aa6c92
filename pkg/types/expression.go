// Package types defines the core type system for GoFormula.
//
// This package contains type definitions for:
//   - Expression: Compiled formula expressions
//   - Node: Abstract Syntax Tree nodes
//   - Null: The explicit null value, distinct from absence
//   - Error types: Structured errors with codes
package types

// Expression represents a compiled formula.
//
// An Expression can be evaluated multiple times against different states by
// passing it to [evaluator.Evaluator.Eval]. It is safe for concurrent use by
// multiple goroutines: neither the evaluator nor the parser mutates it after
// construction.
type Expression struct {
	ast    *Node
	source string
}

// NewExpression creates a new Expression from an AST root.
func NewExpression(ast *Node, source string) *Expression {
	return &Expression{
		ast:    ast,
		source: source,
	}
}

// AST returns the Abstract Syntax Tree of the expression.
func (e *Expression) AST() *Node {
	return e.ast
}

// Source returns the original source text of the expression.
func (e *Expression) Source() string {
	return e.source
}

// String returns a string representation of the expression.
func (e *Expression) String() string {
	return e.source
}
