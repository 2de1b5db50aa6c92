// Package parser implements the formula expression parser.
//
// The parser uses a hand-written recursive descent approach with precedence
// climbing for binary operators. It produces the AST consumed by the
// evaluator package.
//
// # Grammar
//
// From loosest to tightest binding:
//
//	conditional:    binary ("?" conditional ":" conditional)?
//	binary:         ||  <  &&  <  === !==  <  < <= > >=  <  + -  <  * / %
//	unary:          ("!" | "-") unary
//	member:         primary (("." name) | ("[" expression "]"))*
//	primary:        literal | name | "@" name "(" args ")" | "(" expression ")"
//
// # Example
//
//	expr, err := parser.Parse(`a.b + @sum(x, y) > 10 ? "yes" : "no"`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ast := expr.AST()
package parser

import (
	"strconv"

	"github.com/sandrolain/goformula/pkg/types"
)

// Parse parses a formula expression and returns the compiled Expression.
//
// The function tokenizes the input, builds an AST, and validates the syntax.
// If parsing fails, it returns a *types.Error with position information.
func Parse(source string) (*types.Expression, error) {
	p := NewParser(source)
	return p.Parse()
}

// Compile is an alias for Parse, provided for API consistency.
func Compile(source string, opts ...CompileOption) (*types.Expression, error) {
	p := NewParser(source, opts...)
	return p.Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits grammar recursion depth to prevent stack overflow on
	// pathological inputs. Defaults to 200.
	MaxDepth int
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}

// Parser builds an AST from a stream of tokens.
type Parser struct {
	source string
	lexer  *Lexer
	arena  *types.NodeArena
	token  Token // single-token lookahead
	depth  int
	opts   CompileOptions
}

// NewParser creates a parser for the given source.
func NewParser(source string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: 200,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Parser{
		source: source,
		lexer:  NewLexer(source),
		arena:  types.NewNodeArena(),
		opts:   options,
	}
}

// Parse consumes the whole input and returns the compiled Expression.
// The AST root is always a Program node wrapping one expression.
func (p *Parser) Parse() (*types.Expression, error) {
	p.advance()

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.token.Type != TokenEOF {
		if err := p.lexError(); err != nil {
			return nil, err
		}
		return nil, p.syntaxError("unexpected token " + p.describeToken())
	}

	program := p.arena.Alloc(types.NodeProgram, 0)
	program.Body = body
	return types.NewExpression(program, p.source), nil
}

// advance moves the lookahead to the next token.
func (p *Parser) advance() {
	p.token = p.lexer.Next()
}

// expect consumes the current token if it has the given type, or fails.
func (p *Parser) expect(tt TokenType) (Token, error) {
	if p.token.Type != tt {
		if p.token.Type == TokenError {
			return Token{}, p.lexError()
		}
		if p.token.Type == TokenEOF {
			return Token{}, types.NewError(types.ErrUnexpectedEnd,
				"expected "+tt.String()+" but reached end of input", p.token.Position)
		}
		return Token{}, types.NewError(types.ErrExpectedToken,
			"expected "+tt.String()+" but found "+p.describeToken(), p.token.Position).
			WithToken(p.token.Value)
	}
	t := p.token
	p.advance()
	return t, nil
}

// parseExpression parses one full expression. It is the recursion entry for
// every nested position (ternary branches, call arguments, computed keys).
func (p *Parser) parseExpression() (*types.Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.opts.MaxDepth {
		return nil, p.syntaxError("expression nesting too deep")
	}

	if err := p.lexError(); err != nil {
		return nil, err
	}
	return p.parseConditional()
}

// parseConditional parses a ternary conditional expression.
func (p *Parser) parseConditional() (*types.Node, error) {
	test, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}

	if p.token.Type != TokenCondition {
		return test, nil
	}
	pos := p.token.Position
	p.advance()

	consequent, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	alternate, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	node := p.arena.Alloc(types.NodeConditional, pos)
	node.Test = test
	node.Consequent = consequent
	node.Alternate = alternate
	return node, nil
}

// parseBinary parses binary operator chains with precedence climbing.
// All binary operators are left-associative.
func (p *Parser) parseBinary(minPrec int) (*types.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		prec := binaryPrecedence(p.token.Type)
		if prec == 0 || prec < minPrec {
			return left, nil
		}

		op := p.token
		p.advance()

		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}

		node := p.arena.Alloc(types.NodeBinary, op.Position)
		node.Operator = op.Type.String()
		node.Left = left
		node.Right = right
		left = node
	}
}

// parseUnary parses prefix unary operators. The grammar has no postfix
// operators; the Prefix flag exists on the node because the evaluator
// rejects non-prefix forms defensively.
func (p *Parser) parseUnary() (*types.Node, error) {
	if p.token.Type != TokenNot && p.token.Type != TokenMinus {
		return p.parseMember()
	}

	op := p.token
	p.advance()

	argument, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	node := p.arena.Alloc(types.NodeUnary, op.Position)
	node.Operator = op.Type.String()
	node.Prefix = true
	node.Argument = argument
	return node, nil
}

// parseMember parses a primary expression followed by any number of member
// accesses, static (a.b) or computed (a[expr]).
func (p *Parser) parseMember() (*types.Node, error) {
	object, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.token.Type {
		case TokenDot:
			pos := p.token.Position
			p.advance()
			name, err := p.expect(TokenName)
			if err != nil {
				return nil, err
			}
			property := p.arena.Alloc(types.NodeIdentifier, name.Position)
			property.Name = name.Value

			node := p.arena.Alloc(types.NodeMember, pos)
			node.Object = object
			node.Property = property
			object = node

		case TokenBracketOpen:
			pos := p.token.Position
			p.advance()
			property, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenBracketClose); err != nil {
				return nil, err
			}

			node := p.arena.Alloc(types.NodeMember, pos)
			node.Object = object
			node.Property = property
			node.Computed = true
			object = node

		default:
			return object, nil
		}
	}
}

// parsePrimary parses literals, identifiers, @function calls and
// parenthesized groups.
func (p *Parser) parsePrimary() (*types.Node, error) {
	t := p.token

	switch t.Type {
	case TokenNumber:
		value, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, types.NewError(types.ErrInvalidNumber,
				"invalid number literal "+t.Value, t.Position).WithToken(t.Value)
		}
		p.advance()
		return p.literal(t.Position, value), nil

	case TokenString:
		p.advance()
		return p.literal(t.Position, t.Value), nil

	case TokenBoolean:
		p.advance()
		return p.literal(t.Position, t.Value == "true"), nil

	case TokenNull:
		p.advance()
		return p.literal(t.Position, nil), nil

	case TokenName:
		p.advance()
		node := p.arena.Alloc(types.NodeIdentifier, t.Position)
		node.Name = t.Value
		return node, nil

	case TokenAt:
		return p.parseCall()

	case TokenParenOpen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenParenClose); err != nil {
			return nil, err
		}
		return inner, nil

	case TokenEOF:
		return nil, types.NewError(types.ErrUnexpectedEnd,
			"unexpected end of expression", t.Position)

	case TokenError:
		return nil, p.lexError()

	default:
		return nil, p.syntaxError("unexpected token " + p.describeToken())
	}
}

// parseCall parses a function call: "@" name "(" arguments ")".
// The callee is always a plain identifier; computed callees are not part of
// the grammar.
func (p *Parser) parseCall() (*types.Node, error) {
	at, err := p.expect(TokenAt)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(TokenName)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}

	callee := p.arena.Alloc(types.NodeIdentifier, name.Position)
	callee.Name = name.Value

	node := p.arena.Alloc(types.NodeCall, at.Position)
	node.Callee = callee

	if p.token.Type != TokenParenClose {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			node.Arguments = append(node.Arguments, arg)

			if p.token.Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return node, nil
}

// literal allocates a Literal node with the given value.
func (p *Parser) literal(pos int, value interface{}) *types.Node {
	node := p.arena.Alloc(types.NodeLiteral, pos)
	node.Value = value
	return node
}

// lexError surfaces the lexer's stored error, or a generic one when the
// current token is TokenError without a recorded cause.
func (p *Parser) lexError() error {
	if p.token.Type != TokenError {
		return nil
	}
	if err := p.lexer.Error(); err != nil {
		return err
	}
	return p.syntaxError("invalid token")
}

// syntaxError builds a syntax error at the current token position.
func (p *Parser) syntaxError(message string) *types.Error {
	return types.NewError(types.ErrSyntaxError, message, p.token.Position).
		WithToken(p.token.Value)
}

// describeToken renders the lookahead token for error messages.
func (p *Parser) describeToken() string {
	if p.token.Value != "" {
		return "'" + p.token.Value + "'"
	}
	return p.token.Type.String()
}
