package evaluator_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goformula/pkg/evaluator"
	"github.com/sandrolain/goformula/pkg/parser"
	"github.com/sandrolain/goformula/pkg/types"
)

// Helper functions

func eval(t *testing.T, formula string, state *evaluator.State) interface{} {
	t.Helper()

	expr, err := parser.Parse(formula)
	require.NoError(t, err, "parse %q", formula)

	result, err := evaluator.New().Eval(expr, state)
	require.NoError(t, err, "eval %q", formula)
	return result
}

func evalExpectError(t *testing.T, formula string, state *evaluator.State) error {
	t.Helper()

	expr, err := parser.Parse(formula)
	require.NoError(t, err, "parse %q", formula)

	_, err = evaluator.New().Eval(expr, state)
	require.Error(t, err, "eval %q", formula)
	return err
}

func requireCode(t *testing.T, err error, code types.ErrorCode) *types.Error {
	t.Helper()

	var fe *types.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, code, fe.Code)
	return fe
}

// Literals

func TestEvalLiterals(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    interface{}
	}{
		{"number int", "42", 42.0},
		{"number float", "3.14", 3.14},
		{"number exponent", "1e3", 1000.0},
		{"string double quoted", `"hello"`, "hello"},
		{"string single quoted", `'hello'`, "hello"},
		{"string escape", `"a\nb"`, "a\nb"},
		{"boolean true", "true", true},
		{"boolean false", "false", false},
		{"null", "null", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.formula, nil))
		})
	}
}

// Identifiers

func TestEvalIdentifier(t *testing.T) {
	state := evaluator.NewState(map[string]interface{}{
		"name":   "John",
		"age":    30.0,
		"active": true,
		"gone":   nil,
	}, nil)

	assert.Equal(t, "John", eval(t, "name", state))
	assert.Equal(t, 30.0, eval(t, "age", state))
	assert.Equal(t, true, eval(t, "active", state))
}

func TestEvalIdentifierStoredNull(t *testing.T) {
	// A stored nil resolves successfully to null; it is not "absent".
	state := evaluator.NewState(map[string]interface{}{"gone": nil}, nil)
	assert.Nil(t, eval(t, "gone", state))
}

func TestEvalIdentifierUndefined(t *testing.T) {
	err := evalExpectError(t, "missing", evaluator.EmptyState())
	fe := requireCode(t, err, types.ErrUndefinedVariable)
	assert.Contains(t, fe.Message, `"missing"`)
}

// Arithmetic

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    float64
	}{
		{"addition", "1 + 2", 3},
		{"subtraction", "10 - 4", 6},
		{"multiplication", "6 * 7", 42},
		{"division", "10 / 4", 2.5},
		{"modulo", "10 % 3", 1},
		{"precedence", "1 + 2 * 3", 7},
		{"parentheses", "(1 + 2) * 3", 9},
		{"negation", "-5 + 2", -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.formula, nil))
		})
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	// IEEE semantics: no error, positive infinity.
	result := eval(t, "1 / 0", nil)
	f, ok := result.(float64)
	require.True(t, ok)
	assert.True(t, math.IsInf(f, 1))
}

func TestEvalAdditionStringFallback(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    interface{}
	}{
		{"both numeric", "1 + 2", 3.0},
		{"string then number", `"a" + 1`, "a1"},
		{"number then string", `1 + "a"`, "1a"},
		{"both strings", `"a" + "b"`, "ab"},
		{"boolean operand", `"is " + true`, "is true"},
		{"null operand", `"v=" + null`, "v=null"},
		{"boolean is not numeric", "true + 1", "true1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.formula, nil))
		})
	}
}

func TestEvalNumericCoercion(t *testing.T) {
	// Subtraction coerces; addition does not.
	assert.Equal(t, 4.0, eval(t, `"7" - 3`, nil))
	assert.Equal(t, 1.0, eval(t, "true - 0", nil))
	f, ok := eval(t, `"abc" * 2`, nil).(float64)
	require.True(t, ok)
	assert.True(t, math.IsNaN(f))
}

// Equality and comparison

func TestEvalStrictEquality(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    bool
	}{
		{"equal numbers", "1 === 1", true},
		{"no numeric coercion", `1 === "1"`, false},
		{"not equal", "1 !== 2", true},
		{"strings", `"a" === "a"`, true},
		{"booleans", "true === true", true},
		{"bool vs number", "true === 1", false},
		{"null equals null", "null === null", true},
		{"null vs zero", "null === 0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.formula, nil))
		})
	}
}

func TestEvalComparison(t *testing.T) {
	assert.Equal(t, true, eval(t, "2 > 1", nil))
	assert.Equal(t, true, eval(t, "1 <= 1", nil))
	assert.Equal(t, false, eval(t, "1 > 2", nil))
	// Comparison coerces strings to numbers.
	assert.Equal(t, true, eval(t, `"10" > 9`, nil))
	// NaN comparisons are always false.
	assert.Equal(t, false, eval(t, `"abc" > 0`, nil))
	assert.Equal(t, false, eval(t, `"abc" <= 0`, nil))
}

// Logical operators: no short-circuit.

func TestEvalLogicalOperatorsEvaluateBothOperands(t *testing.T) {
	calls := 0
	state := evaluator.EmptyState().WithFunction("probe", func(args ...interface{}) (interface{}, error) {
		calls++
		return args[0], nil
	})

	assert.Equal(t, false, eval(t, "false && @probe(true)", state))
	assert.Equal(t, 1, calls, "right operand of && must run even when left is false")

	calls = 0
	assert.Equal(t, true, eval(t, "true || @probe(false)", state))
	assert.Equal(t, 1, calls, "right operand of || must run even when left is true")
}

func TestEvalLogicalTruthiness(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    bool
	}{
		{"and", "true && true", true},
		{"and false", "true && false", false},
		{"or", "false || true", true},
		{"empty string falsy", `"" || false`, false},
		{"zero falsy", "0 && true", false},
		{"non-empty string truthy", `"0" && true`, true},
		{"null falsy", "null || false", false},
		{"not", "!true", false},
		{"not null", "!null", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.formula, nil))
		})
	}
}

// Conditional: short-circuits, unlike && and ||.

func TestEvalConditional(t *testing.T) {
	assert.Equal(t, 1.0, eval(t, "true ? 1 : 2", nil))
	assert.Equal(t, 2.0, eval(t, "false ? 1 : 2", nil))
	assert.Equal(t, "big", eval(t, `10 > 5 ? "big" : "small"`, nil))
}

func TestEvalConditionalDoesNotEvaluateUntakenBranch(t *testing.T) {
	state := evaluator.EmptyState().WithFunction("boom", func(args ...interface{}) (interface{}, error) {
		return nil, errors.New("must never be called")
	})

	assert.Equal(t, 5.0, eval(t, "false ? @boom() : 5", state))
	assert.Equal(t, 5.0, eval(t, "true ? 5 : @boom()", state))
}

func TestEvalConditionalNesting(t *testing.T) {
	state := evaluator.NewState(map[string]interface{}{"x": 5.0}, nil)
	assert.Equal(t, "mid", eval(t, `x > 9 ? "high" : x > 3 ? "mid" : "low"`, state))
}

// Unary

func TestEvalUnaryNegation(t *testing.T) {
	state := evaluator.NewState(map[string]interface{}{"n": 7.0}, nil)
	assert.Equal(t, -7.0, eval(t, "-n", state))
}

func TestEvalNonNumericNegation(t *testing.T) {
	state := evaluator.NewState(map[string]interface{}{"s": "abc"}, nil)
	err := evalExpectError(t, "-s", state)
	requireCode(t, err, types.ErrNonNumericNegation)
}

// Member access

func memberState() *evaluator.State {
	return evaluator.NewState(map[string]interface{}{
		"data": map[string]interface{}{
			"value": 42.0,
			"inner": map[string]interface{}{"deep": "d"},
			"nope":  nil,
		},
		"items": []interface{}{"a", "b", "c"},
		"key":   "value",
		"void":  nil,
	}, nil)
}

func TestEvalMemberStatic(t *testing.T) {
	assert.Equal(t, 42.0, eval(t, "data.value", memberState()))
	assert.Equal(t, "d", eval(t, "data.inner.deep", memberState()))
}

func TestEvalMemberComputed(t *testing.T) {
	assert.Equal(t, 42.0, eval(t, `data["value"]`, memberState()))
	assert.Equal(t, 42.0, eval(t, "data[key]", memberState()))
	assert.Equal(t, "b", eval(t, "items[1]", memberState()))
	assert.Equal(t, "c", eval(t, "items[1 + 1]", memberState()))
}

func TestEvalMemberMissingKeyIsAbsent(t *testing.T) {
	// A missing key resolves to absence rather than failing.
	assert.Nil(t, eval(t, "data.missing", memberState()))
	assert.Nil(t, eval(t, "items[99]", memberState()))
}

func TestEvalMemberOnNullFails(t *testing.T) {
	err := evalExpectError(t, "void.x", memberState())
	requireCode(t, err, types.ErrNullPropertyAccess)

	// Stored null inside an object behaves the same.
	err = evalExpectError(t, "data.nope.x", memberState())
	requireCode(t, err, types.ErrNullPropertyAccess)

	// An absent-key result is also a null receiver.
	err = evalExpectError(t, "data.missing.x", memberState())
	requireCode(t, err, types.ErrNullPropertyAccess)
}

func TestEvalMemberStruct(t *testing.T) {
	type point struct {
		X float64
		Y float64
	}
	state := evaluator.NewState(map[string]interface{}{
		"p": point{X: 1, Y: 2},
	}, nil)

	assert.Equal(t, 2.0, eval(t, "p.Y", state))
	assert.Nil(t, eval(t, "p.Z", state))
}

// Function calls

func TestEvalCall(t *testing.T) {
	state := evaluator.EmptyState().WithFunction("sum", func(args ...interface{}) (interface{}, error) {
		total := 0.0
		for _, a := range args {
			total += a.(float64)
		}
		return total, nil
	})

	assert.Equal(t, 3.0, eval(t, "@sum(1, 2)", state))
	assert.Equal(t, 10.0, eval(t, "@sum(1, 2, 3, 4)", state))
	assert.Equal(t, 0.0, eval(t, "@sum()", state))
}

func TestEvalCallUndefinedFunction(t *testing.T) {
	err := evalExpectError(t, "@nope()", evaluator.EmptyState())
	fe := requireCode(t, err, types.ErrUndefinedFunction)
	assert.Contains(t, fe.Message, `"nope"`)
}

func TestEvalCallArgumentOrder(t *testing.T) {
	var seen []interface{}
	state := evaluator.EmptyState().WithFunction("record", func(args ...interface{}) (interface{}, error) {
		seen = append(seen, args...)
		return nil, nil
	})

	eval(t, `@record(1, "two", true)`, state)
	assert.Equal(t, []interface{}{1.0, "two", true}, seen)
}

func TestEvalCallHostErrorPassesThroughUnwrapped(t *testing.T) {
	sentinel := errors.New("host failure")
	state := evaluator.EmptyState().WithFunction("fail", func(args ...interface{}) (interface{}, error) {
		return nil, sentinel
	})

	expr, err := parser.Parse("1 + @fail()")
	require.NoError(t, err)

	_, err = evaluator.New().Eval(expr, state)
	require.Error(t, err)
	assert.Same(t, sentinel, err, "host errors must not be reclassified or wrapped")
}

// Error breadcrumbs

func TestEvalErrorBreadcrumb(t *testing.T) {
	err := evalExpectError(t, "1 + missing * 2", evaluator.EmptyState())
	fe := requireCode(t, err, types.ErrUndefinedVariable)

	// Each enclosing dispatch frame adds one breadcrumb.
	assert.Contains(t, fe.Message, "evaluating Program")
	assert.Contains(t, fe.Message, "evaluating BinaryExpression")
	assert.Contains(t, fe.Message, `undefined variable "missing"`)

	// The original error stays reachable through the chain.
	var inner *types.Error
	require.ErrorAs(t, fe.Err, &inner)
}

// Defensive node handling (hand-built ASTs)

func TestEvalUnsupportedPostfix(t *testing.T) {
	arg := types.NewNode(types.NodeLiteral, 0)
	arg.Value = 1.0
	unary := types.NewNode(types.NodeUnary, 0)
	unary.Operator = "!"
	unary.Prefix = false
	unary.Argument = arg
	program := types.NewNode(types.NodeProgram, 0)
	program.Body = unary

	_, err := evaluator.New().Eval(types.NewExpression(program, "!"), nil)
	requireCode(t, err, types.ErrUnsupportedPostfix)
}

func TestEvalUnknownOperator(t *testing.T) {
	left := types.NewNode(types.NodeLiteral, 0)
	left.Value = 1.0
	right := types.NewNode(types.NodeLiteral, 0)
	right.Value = 2.0
	binary := types.NewNode(types.NodeBinary, 0)
	binary.Operator = "**"
	binary.Left = left
	binary.Right = right
	program := types.NewNode(types.NodeProgram, 0)
	program.Body = binary

	_, err := evaluator.New().Eval(types.NewExpression(program, "1 ** 2"), nil)
	requireCode(t, err, types.ErrUnknownOperator)
}

func TestEvalUnsupportedNodeType(t *testing.T) {
	bogus := types.NewNode(types.NodeType("ArrowFunctionExpression"), 0)
	program := types.NewNode(types.NodeProgram, 0)
	program.Body = bogus

	_, err := evaluator.New().Eval(types.NewExpression(program, ""), nil)
	fe := requireCode(t, err, types.ErrUnsupportedNodeType)
	assert.Contains(t, fe.Message, "ArrowFunctionExpression")
}

// Context override

func TestEvalWithBindings(t *testing.T) {
	state := evaluator.NewState(map[string]interface{}{
		"a": 1.0,
		"b": 2.0,
	}, nil)

	expr, err := parser.Parse("a + b")
	require.NoError(t, err)

	// Override keys win; non-overridden keys keep their values.
	result, err := evaluator.New().EvalWithBindings(expr, state, map[string]interface{}{"a": 10.0})
	require.NoError(t, err)
	assert.Equal(t, 12.0, result)

	// The override is per-call only.
	result, err = evaluator.New().Eval(expr, state)
	require.NoError(t, err)
	assert.Equal(t, 3.0, result)

	v, ok := state.Variable("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

// Idempotence

func TestEvalIdempotent(t *testing.T) {
	state := evaluator.NewState(map[string]interface{}{
		"x": 3.0,
		"d": map[string]interface{}{"k": "v"},
	}, nil)
	expr, err := parser.Parse(`x * 2 + (d.k === "v" ? 1 : 0)`)
	require.NoError(t, err)

	ev := evaluator.New()
	first, err := ev.Eval(expr, state)
	require.NoError(t, err)
	second, err := ev.Eval(expr, state)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// Concurrent sharing of an immutable state.

func TestEvalConcurrent(t *testing.T) {
	state := evaluator.NewState(map[string]interface{}{"x": 2.0}, nil).
		WithFunction("double", func(args ...interface{}) (interface{}, error) {
			return args[0].(float64) * 2, nil
		})
	expr, err := parser.Parse("@double(x) + 1")
	require.NoError(t, err)

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			result, err := evaluator.New().Eval(expr, state)
			if err == nil && result != 5.0 {
				err = errors.New("unexpected result")
			}
			done <- err
		}()
	}
	for i := 0; i < 16; i++ {
		require.NoError(t, <-done)
	}
}
