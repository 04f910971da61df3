package symbolic

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOperator matches any *UnsupportedOperatorError via errors.Is.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrUnsupportedExpressionKind matches any *UnsupportedExpressionKindError via errors.Is.
	ErrUnsupportedExpressionKind = errors.New("unsupported expression kind")
	// ErrDialectRequired is returned when a nil dialect is passed to Translate.
	ErrDialectRequired = errors.New("dialect is required")
	// ErrNumberFactoryRequired is returned when a dialect has no number factory.
	ErrNumberFactoryRequired = errors.New("dialect has no number factory")
	// ErrSymbolFactoryRequired is returned when a dialect has no symbol factory.
	ErrSymbolFactoryRequired = errors.New("dialect has no symbol factory")
)

// UnsupportedOperatorError is returned when a function call names an operator
// that the active dialect does not map.
type UnsupportedOperatorError struct {
	Operator string
	Dialect  string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("operator %q is not supported by dialect %q", e.Operator, e.Dialect)
}

// Is makes errors.Is(err, ErrUnsupportedOperator) succeed.
func (e *UnsupportedOperatorError) Is(target error) bool {
	return target == ErrUnsupportedOperator
}

// UnsupportedExpressionKindError is returned for expression nodes the
// translator does not recognize.
type UnsupportedExpressionKindError struct {
	Value any
	Type  string
}

func (e *UnsupportedExpressionKindError) Error() string {
	return fmt.Sprintf("expression %v of type %s is currently not supported", e.Value, e.Type)
}

// Is makes errors.Is(err, ErrUnsupportedExpressionKind) succeed.
func (e *UnsupportedExpressionKindError) Is(target error) bool {
	return target == ErrUnsupportedExpressionKind
}

// NewUnsupportedExpressionKind builds an UnsupportedExpressionKindError for v.
// Reverse converters in pkg/dialects use it for unknown native nodes.
func NewUnsupportedExpressionKind(v any) *UnsupportedExpressionKindError {
	return &UnsupportedExpressionKindError{Value: v, Type: fmt.Sprintf("%T", v)}
}

// ArityError is returned by function adapters called with the wrong number of arguments.
type ArityError struct {
	Function string
	Want     int // minimum when Variadic is set
	Got      int
	Variadic bool
}

func (e *ArityError) Error() string {
	if e.Variadic {
		return fmt.Sprintf("%s expects at least %d arguments, got %d", e.Function, e.Want, e.Got)
	}
	return fmt.Sprintf("%s expects %d arguments, got %d", e.Function, e.Want, e.Got)
}
