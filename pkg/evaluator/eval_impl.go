package evaluator

import (
	"errors"
	"fmt"

	"github.com/sandrolain/goformula/pkg/types"
)

// evalNode evaluates an AST node against a State. It is the single dispatch
// point: every recursive step funnels through here, which is also where the
// breadcrumb error wrapping happens (see wrapNodeError).
func (e *Evaluator) evalNode(node *types.Node, st *State) (interface{}, error) {
	if e.opts.Debug {
		e.logger.Debug("evaluating node",
			"type", node.Type,
			"position", node.Position)
	}

	result, err := e.dispatch(node, st)
	if err != nil {
		// Only the evaluator's own errors gain breadcrumb context as the
		// stack unwinds. Host function failures pass through untouched so
		// the caller can tell them apart from malformed formulas.
		var fe *types.Error
		if errors.As(err, &fe) {
			return nil, wrapNodeError(node, fe)
		}
		return nil, err
	}
	return result, nil
}

// dispatch routes a node to its kind-specific evaluation.
func (e *Evaluator) dispatch(node *types.Node, st *State) (interface{}, error) {
	switch node.Type {
	case types.NodeProgram:
		return e.evalNode(node.Body, st)
	case types.NodeLiteral:
		return e.evalLiteral(node)
	case types.NodeIdentifier:
		return e.evalIdentifier(node, st)
	case types.NodeMember:
		return e.evalMember(node, st)
	case types.NodeCall:
		return e.evalCall(node, st)
	case types.NodeBinary:
		return e.evalBinary(node, st)
	case types.NodeUnary:
		return e.evalUnary(node, st)
	case types.NodeConditional:
		return e.evalConditional(node, st)
	default:
		return nil, types.NewError(types.ErrUnsupportedNodeType,
			fmt.Sprintf("unsupported node type %q", node.Type), node.Position)
	}
}

// evalLiteral returns the literal's stored value verbatim. The parser encodes
// the null literal as a nil Value; internally that becomes the explicit-null
// sentinel so it stays distinct from "absent".
func (e *Evaluator) evalLiteral(node *types.Node) (interface{}, error) {
	if node.Value == nil {
		return types.NullValue, nil
	}
	return node.Value, nil
}

// evalIdentifier resolves a variable in the effective context. Absence is an
// error; a stored nil resolves successfully to null.
func (e *Evaluator) evalIdentifier(node *types.Node, st *State) (interface{}, error) {
	value, ok := st.Variable(node.Name)
	if !ok {
		return nil, types.NewError(types.ErrUndefinedVariable,
			fmt.Sprintf("undefined variable %q", node.Name), node.Position).
			WithToken(node.Name)
	}
	if value == nil {
		return types.NullValue, nil
	}
	return value, nil
}

// evalMember resolves a property on a structured value.
//
// Accessing a property of a null or absent object is an error, but a missing
// key on a real object resolves to absence, not an error. The two behaviors
// are deliberately asymmetric and both are load-bearing.
func (e *Evaluator) evalMember(node *types.Node, st *State) (interface{}, error) {
	object, err := e.evalNode(node.Object, st)
	if err != nil {
		return nil, err
	}

	if object == nil || object == types.NullValue {
		return nil, types.NewError(types.ErrNullPropertyAccess,
			fmt.Sprintf("cannot read property %s of null", describeProperty(node)),
			node.Position)
	}

	var key interface{}
	if node.Computed {
		key, err = e.evalNode(node.Property, st)
		if err != nil {
			return nil, err
		}
	} else {
		key = node.Property.Name
	}

	value, found := lookupProperty(object, key)
	if !found {
		return nil, nil // absent, not an error
	}
	if value == nil {
		return types.NullValue, nil
	}
	return value, nil
}

// evalCall invokes a host function with fully evaluated arguments.
// Arguments are evaluated left-to-right with no laziness; an argument error
// aborts before the function is ever invoked.
func (e *Evaluator) evalCall(node *types.Node, st *State) (interface{}, error) {
	name := node.Callee.Name
	fn, ok := st.Function(name)
	if !ok {
		return nil, types.NewError(types.ErrUndefinedFunction,
			fmt.Sprintf("undefined function %q", name), node.Position).
			WithToken(name)
	}

	args := make([]interface{}, len(node.Arguments))
	for i, argNode := range node.Arguments {
		arg, err := e.evalNode(argNode, st)
		if err != nil {
			return nil, err
		}
		// Host functions receive plain nil for an explicit null.
		args[i] = convertNullToNil(arg)
	}

	result, err := fn(args...)
	if err != nil {
		// Host-defined failure: propagate as-is, never reclassified.
		return nil, err
	}
	if result == nil {
		return types.NullValue, nil
	}
	return result, nil
}

// evalConditional evaluates a ternary expression. Exactly one branch is
// evaluated: unlike && and ||, the conditional DOES short-circuit.
func (e *Evaluator) evalConditional(node *types.Node, st *State) (interface{}, error) {
	test, err := e.evalNode(node.Test, st)
	if err != nil {
		return nil, err
	}

	if truthy(test) {
		return e.evalNode(node.Consequent, st)
	}
	return e.evalNode(node.Alternate, st)
}

// wrapNodeError adds one breadcrumb frame to an evaluator error, preserving
// the code and chaining the original for errors.Is/As.
func wrapNodeError(node *types.Node, cause *types.Error) *types.Error {
	return types.NewError(cause.Code,
		fmt.Sprintf("evaluating %s: %s", node.Type, cause.Message),
		node.Position).WithCause(cause)
}

// describeProperty renders a member property for error messages.
func describeProperty(node *types.Node) string {
	if !node.Computed {
		return fmt.Sprintf("%q", node.Property.Name)
	}
	return "(computed)"
}
