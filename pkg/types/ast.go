package types

// NodeType identifies the kind of an AST node.
type NodeType string

// Null represents a formula null literal distinct from undefined (nil).
// Inside the evaluator, Go nil means "absent" (an undefined variable slot or
// a missing property), while Null means an explicit null value. Both are
// folded to nil at the public API boundary.
type Null struct{}

// MarshalJSON implements json.Marshaler for Null.
// This ensures that Null serializes to JSON null instead of {}.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// NullValue is the singleton value used for formula null.
var NullValue = Null{}

// AST node kinds produced by the parser.
const (
	NodeLiteral     NodeType = "Literal"               // number, string, boolean, null
	NodeIdentifier  NodeType = "Identifier"            // variable reference
	NodeMember      NodeType = "MemberExpression"      // a.b or a["b"]
	NodeCall        NodeType = "CallExpression"        // @fn(args...)
	NodeBinary      NodeType = "BinaryExpression"      // + - * / % === !== > >= < <= && ||
	NodeUnary       NodeType = "UnaryExpression"       // ! -
	NodeConditional NodeType = "ConditionalExpression" // test ? consequent : alternate
	NodeProgram     NodeType = "Program"               // root; wraps one expression
)

// Node represents a node in the Abstract Syntax Tree.
//
// A single struct is shared by all node kinds; which fields are meaningful
// depends on Type:
//
//   - Literal: Value (float64, string, bool, or nil for null)
//   - Identifier: Name
//   - MemberExpression: Object, Property, Computed
//   - CallExpression: Callee (an Identifier node), Arguments
//   - BinaryExpression: Operator, Left, Right
//   - UnaryExpression: Operator, Prefix, Argument
//   - ConditionalExpression: Test, Consequent, Alternate
//   - Program: Body
type Node struct {
	Type     NodeType
	Position int

	Value    interface{} // Literal value; nil encodes the null literal
	Name     string      // Identifier name
	Operator string      // Binary/unary operator token
	Computed bool        // True for a[expr], false for a.name
	Prefix   bool        // True for prefix unary operators

	Object   *Node // Member object
	Property *Node // Member property (Identifier when not computed)

	Callee    *Node   // Call target (Identifier)
	Arguments []*Node // Call arguments, in source order

	Left  *Node // Binary left operand
	Right *Node // Binary right operand

	Argument *Node // Unary operand

	Test       *Node // Conditional test
	Consequent *Node // Conditional "then" branch
	Alternate  *Node // Conditional "else" branch

	Body *Node // Program body
}

// NewNode creates a new AST node of the specified kind.
// Prefer NodeArena.Alloc when parsing to reduce per-node heap allocations.
func NewNode(nodeType NodeType, position int) *Node {
	return &Node{
		Type:     nodeType,
		Position: position,
	}
}

// arenaChunkSize is the number of Node values pre-allocated per arena chunk.
// Most formulas fit comfortably in a single chunk.
const arenaChunkSize = 64

// NodeArena is a bump-pointer allocator for Node values.
//
// Instead of allocating each node individually on the heap (one GC-tracked
// object per node), the arena pre-allocates fixed-size chunks of Node structs
// and returns pointers into them. A typical formula (< 64 nodes) requires only
// a single chunk allocation.
//
// The chunks stay reachable for as long as any node pointer returned by Alloc
// is reachable, so no explicit lifetime management is needed.
//
// NodeArena is NOT thread-safe. Each parser owns its own arena and the arena
// is never shared across goroutines.
type NodeArena struct {
	chunks [][]Node
	pos    int // next free index in the last chunk
}

// NewNodeArena allocates an arena pre-warmed with one initial chunk.
func NewNodeArena() *NodeArena {
	return &NodeArena{
		chunks: [][]Node{make([]Node, arenaChunkSize)},
		pos:    0,
	}
}

// Alloc returns a pointer to a zero-valued Node inside the arena, with Type
// and Position set. All other fields remain at their zero values and must be
// filled by the caller.
func (a *NodeArena) Alloc(nodeType NodeType, position int) *Node {
	if a.pos >= arenaChunkSize {
		// Current chunk exhausted, allocate a new one.
		a.chunks = append(a.chunks, make([]Node, arenaChunkSize))
		a.pos = 0
	}
	n := &a.chunks[len(a.chunks)-1][a.pos]
	a.pos++
	n.Type = nodeType
	n.Position = position
	return n
}

// String returns a string representation of the node kind.
func (n *Node) String() string {
	return string(n.Type)
}
