package ext

import (
	"github.com/sandrolain/goformula/pkg/evaluator"
)

// Types returns the type predicate and defaulting functions:
// @isNumber, @isString, @isBool, @isNull, @default.
func Types() map[string]evaluator.Function {
	return map[string]evaluator.Function{
		"isNumber": typePred("isNumber", func(v interface{}) bool {
			_, ok := v.(float64)
			return ok
		}),
		"isString": typePred("isString", func(v interface{}) bool {
			_, ok := v.(string)
			return ok
		}),
		"isBool": typePred("isBool", func(v interface{}) bool {
			_, ok := v.(bool)
			return ok
		}),
		"isNull": typePred("isNull", func(v interface{}) bool {
			return v == nil
		}),
		"default": defaultFn,
	}
}

func typePred(name string, pred func(interface{}) bool) evaluator.Function {
	return func(args ...interface{}) (interface{}, error) {
		if err := argCount(name, args, 1); err != nil {
			return nil, err
		}
		return pred(args[0]), nil
	}
}

// defaultFn implements @default(value, fallback): the fallback is returned
// when value is null. Note that both arguments are always evaluated before
// the call, consistent with the language's strict argument evaluation.
func defaultFn(args ...interface{}) (interface{}, error) {
	if err := argCount("default", args, 2); err != nil {
		return nil, err
	}
	if args[0] == nil {
		return args[1], nil
	}
	return args[0], nil
}
