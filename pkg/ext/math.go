package ext

import (
	"fmt"
	"math"

	"github.com/sandrolain/goformula/pkg/evaluator"
)

// Math returns the numeric extension functions:
// @abs, @ceil, @floor, @round, @sqrt, @pow, @min, @max, @sum.
func Math() map[string]evaluator.Function {
	return map[string]evaluator.Function{
		"abs":   unaryMath("abs", math.Abs),
		"ceil":  unaryMath("ceil", math.Ceil),
		"floor": unaryMath("floor", math.Floor),
		"sqrt":  unaryMath("sqrt", math.Sqrt),
		"round": roundFn,
		"pow":   powFn,
		"min":   spreadFn("min", math.Min),
		"max":   spreadFn("max", math.Max),
		"sum":   sumFn,
	}
}

// unaryMath adapts a one-argument math function.
func unaryMath(name string, fn func(float64) float64) evaluator.Function {
	return func(args ...interface{}) (interface{}, error) {
		if err := argCount(name, args, 1); err != nil {
			return nil, err
		}
		f, err := argNumber(name, args, 0)
		if err != nil {
			return nil, err
		}
		return fn(f), nil
	}
}

// roundFn implements @round(value) and @round(value, digits).
func roundFn(args ...interface{}) (interface{}, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, fmt.Errorf("@round: expected 1 or 2 arguments, got %d", len(args))
	}
	f, err := argNumber("round", args, 0)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return math.Round(f), nil
	}
	digits, err := argNumber("round", args, 1)
	if err != nil {
		return nil, err
	}
	scale := math.Pow(10, math.Trunc(digits))
	return math.Round(f*scale) / scale, nil
}

// powFn implements @pow(base, exponent).
func powFn(args ...interface{}) (interface{}, error) {
	if err := argCount("pow", args, 2); err != nil {
		return nil, err
	}
	base, err := argNumber("pow", args, 0)
	if err != nil {
		return nil, err
	}
	exp, err := argNumber("pow", args, 1)
	if err != nil {
		return nil, err
	}
	return math.Pow(base, exp), nil
}

// spreadFn adapts a two-argument reducer over one or more arguments.
func spreadFn(name string, fn func(float64, float64) float64) evaluator.Function {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("@%s: expected at least 1 argument", name)
		}
		acc, err := argNumber(name, args, 0)
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(args); i++ {
			f, err := argNumber(name, args, i)
			if err != nil {
				return nil, err
			}
			acc = fn(acc, f)
		}
		return acc, nil
	}
}

// sumFn implements @sum(values...). Arguments that are sequences are summed
// element-wise, so @sum(items) works on a context array as well as on
// spread scalars.
func sumFn(args ...interface{}) (interface{}, error) {
	total := 0.0
	for i, arg := range args {
		switch v := arg.(type) {
		case float64:
			total += v
		case []interface{}:
			for _, item := range v {
				f, ok := item.(float64)
				if !ok {
					return nil, fmt.Errorf("@sum: sequence argument %d contains a non-number", i+1)
				}
				total += f
			}
		default:
			return nil, fmt.Errorf("@sum: argument %d must be a number or a sequence of numbers", i+1)
		}
	}
	return total, nil
}
