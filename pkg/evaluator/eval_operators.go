package evaluator

import (
	"fmt"
	"math"

	"github.com/sandrolain/goformula/pkg/types"
)

// evalBinary evaluates a binary expression.
//
// Both operands are always evaluated, left then right, before the operator is
// applied. That holds for && and || too: the formula language intentionally
// has no short-circuit semantics for the logical operators, so a host
// function call on the right-hand side runs even when the left operand
// already decides the result. Do not "fix" this.
func (e *Evaluator) evalBinary(node *types.Node, st *State) (interface{}, error) {
	left, err := e.evalNode(node.Left, st)
	if err != nil {
		return nil, err
	}
	right, err := e.evalNode(node.Right, st)
	if err != nil {
		return nil, err
	}

	switch node.Operator {
	case "+":
		// Numeric addition only when both operands are numbers; any other
		// combination falls back to concatenating string representations.
		if lf, ok := left.(float64); ok {
			if rf, ok := right.(float64); ok {
				return lf + rf, nil
			}
		}
		return stringify(left) + stringify(right), nil

	case "-":
		return toNumber(left) - toNumber(right), nil
	case "*":
		return toNumber(left) * toNumber(right), nil
	case "/":
		// IEEE semantics: division by zero yields Inf or NaN, never an error.
		return toNumber(left) / toNumber(right), nil
	case "%":
		return math.Mod(toNumber(left), toNumber(right)), nil

	case "===":
		return strictEquals(left, right), nil
	case "!==":
		return !strictEquals(left, right), nil

	case "<":
		return toNumber(left) < toNumber(right), nil
	case "<=":
		return toNumber(left) <= toNumber(right), nil
	case ">":
		return toNumber(left) > toNumber(right), nil
	case ">=":
		return toNumber(left) >= toNumber(right), nil

	case "&&":
		return truthy(left) && truthy(right), nil
	case "||":
		return truthy(left) || truthy(right), nil

	default:
		return nil, types.NewError(types.ErrUnknownOperator,
			fmt.Sprintf("unknown binary operator %q", node.Operator),
			node.Position).WithToken(node.Operator)
	}
}

// evalUnary evaluates a prefix unary expression. The grammar has no postfix
// operators; a non-prefix node can only come from a hand-built AST and is
// rejected.
func (e *Evaluator) evalUnary(node *types.Node, st *State) (interface{}, error) {
	if !node.Prefix {
		return nil, types.NewError(types.ErrUnsupportedPostfix,
			fmt.Sprintf("postfix operator %q is not supported", node.Operator),
			node.Position).WithToken(node.Operator)
	}

	argument, err := e.evalNode(node.Argument, st)
	if err != nil {
		return nil, err
	}

	switch node.Operator {
	case "!":
		return !truthy(argument), nil
	case "-":
		// Unlike the arithmetic binary operators, negation does not coerce.
		f, ok := argument.(float64)
		if !ok {
			return nil, types.NewError(types.ErrNonNumericNegation,
				fmt.Sprintf("cannot negate non-numeric value %s", stringify(argument)),
				node.Position)
		}
		return -f, nil
	default:
		return nil, types.NewError(types.ErrUnknownOperator,
			fmt.Sprintf("unknown unary operator %q", node.Operator),
			node.Position).WithToken(node.Operator)
	}
}
