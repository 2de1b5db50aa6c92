// Package evaluator implements the formula evaluation engine.
//
// The evaluator receives a parsed Abstract Syntax Tree (AST) from the parser
// and evaluates it against a [State] of named variables and host functions.
// It is a pure recursive walker: children are resolved before parents, one
// call produces one value or one classified error, and neither the AST nor
// the State is retained or mutated across calls.
//
// # Example
//
//	expr, _ := parser.Parse(`price * quantity > 100 ? "bulk" : "unit"`)
//	state := evaluator.NewState(map[string]interface{}{
//	    "price":    12.5,
//	    "quantity": 10.0,
//	}, nil)
//	result, err := evaluator.New().Eval(expr, state)
//
// # Concurrency
//
// A State is immutable after construction and an Expression is never
// mutated, so both may be shared freely across goroutines running
// evaluations in parallel. The evaluator itself holds no per-call state.
package evaluator

import (
	"log/slog"

	"github.com/sandrolain/goformula/pkg/types"
)

// Evaluator evaluates compiled formula expressions against a State.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Debug enables per-node debug logging.
	Debug bool
	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	var options EvalOptions
	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
	}
}

// Eval evaluates an expression against a State and returns the result.
//
// The result is a float64, string, bool, nil, or a structured value passed
// through from the State. Failures surface as a *types.Error carrying a
// breadcrumb of the nesting levels the failure unwound through, except
// errors returned by host functions, which propagate unchanged.
func (e *Evaluator) Eval(expr *types.Expression, state *State) (interface{}, error) {
	return e.EvalWithBindings(expr, state, nil)
}

// EvalWithBindings evaluates an expression with a per-call context override.
//
// The override is merged over the State's variable context for the duration
// of this call only (override keys win); the State itself is not modified
// and concurrent evaluations never observe the override.
func (e *Evaluator) EvalWithBindings(expr *types.Expression, state *State, bindings map[string]interface{}) (interface{}, error) {
	if expr == nil || expr.AST() == nil {
		return nil, types.NewError(types.ErrUnsupportedNodeType, "invalid expression", -1)
	}
	if state == nil {
		state = EmptyState()
	}

	result, err := e.evalNode(expr.AST(), state.merged(bindings))
	if err != nil {
		return nil, err
	}

	// The explicit-null sentinel is internal; callers see plain nil.
	return convertNullToNil(result), nil
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// convertNullToNil converts types.Null to nil in a result value.
//
// The conversion is shallow on purpose: the language has no array or object
// constructors, so a Null can only ever sit at the top of a result. Host
// containers are returned exactly as stored in the State, never copied.
func convertNullToNil(value interface{}) interface{} {
	if _, ok := value.(types.Null); ok {
		return nil
	}
	return value
}
