package evaluator

// Function is the signature for host-supplied functions callable from a
// formula with the "@" prefix. args contains the evaluated argument values in
// source order; an explicit formula null arrives as Go nil.
//
// Evaluation is synchronous: the evaluator calls the function directly on the
// evaluating goroutine and returns its result (or error) unchanged. A
// function needing cancellation or deadlines must capture its own
// context.Context at registration time.
type Function func(args ...interface{}) (interface{}, error)

// State is an immutable snapshot of the runtime environment a formula is
// evaluated against: a variable context (name to value) and a function table
// (name to Function). The two are separate namespaces; a name collision
// between them is permitted and meaningless.
//
// A State is never mutated after construction. The With* methods return a new
// State and leave the receiver untouched, so a State may be shared read-only
// across any number of concurrent evaluations.
type State struct {
	context   map[string]interface{}
	functions map[string]Function
}

// NewState creates a State from a variable context and a function table.
// Either argument may be nil. Both maps are copied, so later changes to the
// caller's maps do not leak into the State.
func NewState(context map[string]interface{}, functions map[string]Function) *State {
	return &State{
		context:   copyContext(context),
		functions: copyFunctions(functions),
	}
}

// EmptyState returns a State with no variables and no functions.
func EmptyState() *State {
	return NewState(nil, nil)
}

// Variable looks up a context variable by name.
// The second return value distinguishes an absent name from a stored nil.
func (s *State) Variable(name string) (interface{}, bool) {
	v, ok := s.context[name]
	return v, ok
}

// Function looks up a registered function by name.
func (s *State) Function(name string) (Function, bool) {
	fn, ok := s.functions[name]
	return fn, ok
}

// WithFunction returns a new State equal to the receiver except that the
// function table maps name to fn (inserted or overwritten). The receiver is
// unchanged; callers holding it continue to see the old table.
func (s *State) WithFunction(name string, fn Function) *State {
	functions := copyFunctions(s.functions)
	functions[name] = fn
	return &State{
		context:   s.context,
		functions: functions,
	}
}

// WithFunctions returns a new State with every entry of functions merged into
// the function table. Later entries shadow earlier registrations of the same
// name. The receiver is unchanged.
func (s *State) WithFunctions(functions map[string]Function) *State {
	merged := copyFunctions(s.functions)
	for name, fn := range functions {
		merged[name] = fn
	}
	return &State{
		context:   s.context,
		functions: merged,
	}
}

// WithVariable returns a new State whose context maps name to value.
// The receiver is unchanged.
func (s *State) WithVariable(name string, value interface{}) *State {
	context := copyContext(s.context)
	context[name] = value
	return &State{
		context:   context,
		functions: s.functions,
	}
}

// merged returns the effective State for one evaluation with the override
// context merged over the receiver's context (override keys win). The
// function table is shared, not copied. With a nil or empty override the
// receiver itself is returned.
func (s *State) merged(override map[string]interface{}) *State {
	if len(override) == 0 {
		return s
	}
	context := copyContext(s.context)
	for name, value := range override {
		context[name] = value
	}
	return &State{
		context:   context,
		functions: s.functions,
	}
}

func copyContext(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyFunctions(src map[string]Function) map[string]Function {
	dst := make(map[string]Function, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
