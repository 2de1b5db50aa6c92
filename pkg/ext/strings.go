package ext

import (
	"fmt"
	"strings"

	"github.com/sandrolain/goformula/pkg/evaluator"
)

// Strings returns the string extension functions:
// @upper, @lower, @trim, @length, @contains, @startsWith, @endsWith,
// @substring, @split, @join, @replace.
func Strings() map[string]evaluator.Function {
	return map[string]evaluator.Function{
		"upper":      unaryString("upper", strings.ToUpper),
		"lower":      unaryString("lower", strings.ToLower),
		"trim":       unaryString("trim", strings.TrimSpace),
		"length":     lengthFn,
		"contains":   binaryStringPred("contains", strings.Contains),
		"startsWith": binaryStringPred("startsWith", strings.HasPrefix),
		"endsWith":   binaryStringPred("endsWith", strings.HasSuffix),
		"substring":  substringFn,
		"split":      splitFn,
		"join":       joinFn,
		"replace":    replaceFn,
	}
}

func unaryString(name string, fn func(string) string) evaluator.Function {
	return func(args ...interface{}) (interface{}, error) {
		if err := argCount(name, args, 1); err != nil {
			return nil, err
		}
		s, err := argString(name, args, 0)
		if err != nil {
			return nil, err
		}
		return fn(s), nil
	}
}

func binaryStringPred(name string, fn func(string, string) bool) evaluator.Function {
	return func(args ...interface{}) (interface{}, error) {
		if err := argCount(name, args, 2); err != nil {
			return nil, err
		}
		s, err := argString(name, args, 0)
		if err != nil {
			return nil, err
		}
		sub, err := argString(name, args, 1)
		if err != nil {
			return nil, err
		}
		return fn(s, sub), nil
	}
}

// lengthFn implements @length(value) for strings and sequences.
func lengthFn(args ...interface{}) (interface{}, error) {
	if err := argCount("length", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case string:
		return float64(len([]rune(v))), nil
	case []interface{}:
		return float64(len(v)), nil
	default:
		return nil, fmt.Errorf("@length: argument must be a string or a sequence")
	}
}

// substringFn implements @substring(str, start) and @substring(str, start, end)
// with rune indexing. Out-of-range bounds are clamped.
func substringFn(args ...interface{}) (interface{}, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, fmt.Errorf("@substring: expected 2 or 3 arguments, got %d", len(args))
	}
	s, err := argString("substring", args, 0)
	if err != nil {
		return nil, err
	}
	startF, err := argNumber("substring", args, 1)
	if err != nil {
		return nil, err
	}

	runes := []rune(s)
	end := len(runes)
	if len(args) == 3 {
		endF, err := argNumber("substring", args, 2)
		if err != nil {
			return nil, err
		}
		end = clampIndex(int(endF), len(runes))
	}
	start := clampIndex(int(startF), len(runes))
	if start > end {
		return "", nil
	}
	return string(runes[start:end]), nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// splitFn implements @split(str, separator), returning a sequence of strings.
func splitFn(args ...interface{}) (interface{}, error) {
	if err := argCount("split", args, 2); err != nil {
		return nil, err
	}
	s, err := argString("split", args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := argString("split", args, 1)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	out := make([]interface{}, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

// joinFn implements @join(sequence, separator); every element must be a string.
func joinFn(args ...interface{}) (interface{}, error) {
	if err := argCount("join", args, 2); err != nil {
		return nil, err
	}
	seq, ok := args[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("@join: argument 1 must be a sequence")
	}
	sep, err := argString("join", args, 1)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(seq))
	for i, item := range seq {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("@join: sequence contains a non-string at index %d", i)
		}
		parts[i] = s
	}
	return strings.Join(parts, sep), nil
}

// replaceFn implements @replace(str, old, new), replacing all occurrences.
func replaceFn(args ...interface{}) (interface{}, error) {
	if err := argCount("replace", args, 3); err != nil {
		return nil, err
	}
	s, err := argString("replace", args, 0)
	if err != nil {
		return nil, err
	}
	old, err := argString("replace", args, 1)
	if err != nil {
		return nil, err
	}
	repl, err := argString("replace", args, 2)
	if err != nil {
		return nil, err
	}
	return strings.ReplaceAll(s, old, repl), nil
}
