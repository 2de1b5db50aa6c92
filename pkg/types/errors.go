package types

import "fmt"

// ErrorCode classifies a formula error.
type ErrorCode string

// Error codes, grouped by the component that raises them.
const (
	// Parser/syntax errors
	ErrStringNotClosed ErrorCode = "StringNotClosed"
	ErrInvalidNumber   ErrorCode = "InvalidNumber"
	ErrUnexpectedEnd   ErrorCode = "UnexpectedEnd"
	ErrSyntaxError     ErrorCode = "SyntaxError"
	ErrExpectedToken   ErrorCode = "ExpectedToken"

	// Evaluation errors
	ErrUndefinedVariable   ErrorCode = "UndefinedVariable"
	ErrNullPropertyAccess  ErrorCode = "NullPropertyAccess"
	ErrUndefinedFunction   ErrorCode = "UndefinedFunction"
	ErrNonNumericNegation  ErrorCode = "NonNumericNegation"
	ErrUnsupportedPostfix  ErrorCode = "UnsupportedPostfix"
	ErrUnknownOperator     ErrorCode = "UnknownOperator"
	ErrUnsupportedNodeType ErrorCode = "UnsupportedNodeType"
)

// Error represents a structured formula error.
//
// Every error the lexer, parser and evaluator raise is of this type; errors
// returned by host-supplied functions are never converted to it, so a caller
// can distinguish "the formula was malformed" from "my function failed".
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new formula error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
