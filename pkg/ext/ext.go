// Package ext provides an optional library of host functions for GoFormula.
//
// The core function table is empty by default; nothing is registered
// implicitly. A host opts in by merging a category (or everything) into its
// evaluation state:
//
//	state := ext.Register(evaluator.EmptyState())        // everything
//	state := ext.RegisterMath(evaluator.EmptyState())    // one category
//	state := state.WithFunctions(ext.Strings())          // raw tables
//
// Inside a formula the functions are called with the "@" prefix:
//
//	@round(price * 1.21, 2)
//	@upper(name)
//	@uuid()
//
// All registration goes through [evaluator.State.WithFunctions], so it
// follows the same functional-update discipline as the rest of the state
// API: the input state is never mutated.
package ext

import (
	"fmt"

	"github.com/sandrolain/goformula/pkg/evaluator"
)

// All returns every extension function, grouped tables merged into one.
func All() map[string]evaluator.Function {
	all := make(map[string]evaluator.Function)
	for _, table := range []map[string]evaluator.Function{
		Math(), Strings(), Types(), Ident(),
	} {
		for name, fn := range table {
			all[name] = fn
		}
	}
	return all
}

// Register returns a new state with every extension function registered.
func Register(st *evaluator.State) *evaluator.State {
	return st.WithFunctions(All())
}

// RegisterMath returns a new state with the numeric functions registered.
func RegisterMath(st *evaluator.State) *evaluator.State {
	return st.WithFunctions(Math())
}

// RegisterStrings returns a new state with the string functions registered.
func RegisterStrings(st *evaluator.State) *evaluator.State {
	return st.WithFunctions(Strings())
}

// RegisterTypes returns a new state with the type predicates registered.
func RegisterTypes(st *evaluator.State) *evaluator.State {
	return st.WithFunctions(Types())
}

// RegisterIdent returns a new state with the identifier/digest functions
// registered.
func RegisterIdent(st *evaluator.State) *evaluator.State {
	return st.WithFunctions(Ident())
}

// Argument helpers shared by the category files.

func argCount(name string, args []interface{}, want int) error {
	if len(args) != want {
		return fmt.Errorf("@%s: expected %d arguments, got %d", name, want, len(args))
	}
	return nil
}

func argNumber(name string, args []interface{}, i int) (float64, error) {
	f, ok := args[i].(float64)
	if !ok {
		return 0, fmt.Errorf("@%s: argument %d must be a number", name, i+1)
	}
	return f, nil
}

func argString(name string, args []interface{}, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("@%s: argument %d must be a string", name, i+1)
	}
	return s, nil
}
