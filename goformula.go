// Package goformula evaluates a small formula expression language against a
// runtime environment of named variables and host functions.
//
// The language supports arithmetic, comparison, logical, conditional, member
// access and @function-call expressions, e.g.:
//
//	a.b + @sum(x, y) > 10 ? "yes" : "no"
//
// It targets embedding scenarios where a host application lets users write
// short formulas and evaluates them safely against dynamic data, without
// exposing a full scripting language.
//
// # Quick Start
//
//	state := evaluator.NewState(map[string]interface{}{
//	    "x": 2.0,
//	    "y": 3.0,
//	}, nil).WithFunction("sum", func(args ...interface{}) (interface{}, error) {
//	    total := 0.0
//	    for _, a := range args {
//	        total += a.(float64)
//	    }
//	    return total, nil
//	})
//
//	// Simple evaluation
//	result, err := goformula.Eval(`@sum(x, y) * 2`, state)
//
//	// Compile once, evaluate many times
//	expr, err := goformula.Compile(`x > y ? "x" : "y"`)
//	result1, _ := evaluator.New().Eval(expr, state1)
//	result2, _ := evaluator.New().Eval(expr, state2)
//
// # Semantics worth knowing
//
// The logical operators && and || always evaluate both operands (no
// short-circuit); the ternary conditional evaluates only the taken branch.
// The + operator adds when both operands are numbers and concatenates string
// representations otherwise. Division by zero follows IEEE semantics and
// returns infinity rather than failing.
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/goformula/pkg/parser
//   - Evaluator: github.com/sandrolain/goformula/pkg/evaluator
//   - Extension functions: github.com/sandrolain/goformula/pkg/ext
//   - Types: github.com/sandrolain/goformula/pkg/types
package goformula

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sandrolain/goformula/pkg/cache"
	"github.com/sandrolain/goformula/pkg/evaluator"
	"github.com/sandrolain/goformula/pkg/parser"
	"github.com/sandrolain/goformula/pkg/types"
)

// Version returns the current version of GoFormula.
func Version() string {
	return "v0.1.0-dev"
}

// Compile compiles a formula for repeated evaluation.
//
// The compiled expression can be evaluated multiple times against different
// states. It is safe for concurrent use.
func Compile(source string, opts ...parser.CompileOption) (*types.Expression, error) {
	return parser.Compile(source, opts...)
}

// MustCompile is like Compile but panics if the formula cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(source string) *types.Expression {
	expr, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("goformula: Compile(%q): %v", source, err))
	}
	return expr
}

// Option configures the one-shot evaluation helpers Eval and EvalWithBindings.
type Option func(*options)

type options struct {
	caching   bool
	cacheSize int
	cache     *cache.Cache
	debug     bool
	logger    *slog.Logger
}

// WithCaching enables compilation caching. When enabled, a default LRU cache
// of 256 entries shared by all Eval calls is used. To control the size use
// WithCacheSize; to supply your own cache use WithCache.
func WithCaching(enabled bool) Option {
	return func(o *options) {
		o.caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached formulas.
// Only effective combined with WithCaching(true).
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithCache attaches an external formula cache.
// The cache is used regardless of the WithCaching flag.
func WithCache(c *cache.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithDebug enables debug logging on the underlying evaluator.
func WithDebug(enabled bool) Option {
	return func(o *options) {
		o.debug = enabled
	}
}

// WithLogger sets a custom logger on the underlying evaluator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// defaultCache backs WithCaching(true) when no explicit cache is supplied.
// It is created on first use; the first WithCacheSize seen wins, later sizes
// are ignored. Callers needing tighter control should pass WithCache.
var (
	defaultCacheOnce sync.Once
	defaultCache     *cache.Cache
)

func sharedCache(size int) *cache.Cache {
	defaultCacheOnce.Do(func() {
		defaultCache = cache.New(size)
	})
	return defaultCache
}

// Eval is a convenience function that compiles and evaluates a formula in a
// single call.
//
// For repeated evaluations of the same formula, use Compile once and
// [evaluator.Evaluator.Eval], or pass WithCaching(true).
func Eval(source string, state *evaluator.State, opts ...Option) (interface{}, error) {
	return EvalWithBindings(source, state, nil, opts...)
}

// EvalWithBindings compiles and evaluates a formula with a per-call variable
// override merged over the state's context (override keys win). The state is
// not modified.
func EvalWithBindings(source string, state *evaluator.State, bindings map[string]interface{}, opts ...Option) (interface{}, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	expr, err := compileWith(source, o)
	if err != nil {
		return nil, err
	}

	var evalOpts []evaluator.EvalOption
	if o.debug {
		evalOpts = append(evalOpts, evaluator.WithDebug(true))
	}
	if o.logger != nil {
		evalOpts = append(evalOpts, evaluator.WithLogger(o.logger))
	}

	return evaluator.New(evalOpts...).EvalWithBindings(expr, state, bindings)
}

// compileWith resolves the caching configuration and compiles source.
func compileWith(source string, o options) (*types.Expression, error) {
	c := o.cache
	if c == nil && o.caching {
		size := o.cacheSize
		if size <= 0 {
			size = 256
		}
		c = sharedCache(size)
	}
	if c == nil {
		return Compile(source)
	}
	return c.GetOrCompile(source, func() (*types.Expression, error) {
		return Compile(source)
	})
}
