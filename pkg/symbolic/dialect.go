// Package symbolic translates backend-agnostic expression trees into the
// native symbolic representation of a target backend.
//
// A Dialect bundles a symbol factory, a number factory and a table of named
// functions over one native type T. Concrete dialects live in pkg/dialects/*
// and register themselves with this package on init.
package symbolic

import (
	"sort"

	"github.com/leapstack-labs/leapq/pkg/core"
)

// Func is a native implementation of a named operator.
// It receives the already translated arguments in their original order.
type Func[T any] func(args ...T) (T, error)

// SymbolFactory produces the native value for a symbol reference.
type SymbolFactory[T any] func(core.Symbol) (T, error)

// NumberFactory produces the native value for a numeric literal.
type NumberFactory[T any] func(core.Number) (T, error)

// Identity is the number factory of float64 dialects: literals pass
// through unchanged.
func Identity(n core.Number) (float64, error) { return n.Value, nil }

// Dialect maps the core expression vocabulary onto one backend's native
// symbolic or numeric primitives. A Dialect is immutable once built and can
// be shared between goroutines.
type Dialect[T any] struct {
	Name        string
	Description string

	symbols   SymbolFactory[T]
	numbers   NumberFactory[T]
	functions map[string]Func[T]
}

// GetName returns the dialect name.
// This method allows Dialect to satisfy Info.
func (d *Dialect[T]) GetName() string {
	return d.Name
}

// GetDescription returns the human readable description of the dialect.
func (d *Dialect[T]) GetDescription() string {
	return d.Description
}

// Function returns the native implementation of an operator.
func (d *Dialect[T]) Function(name string) (Func[T], bool) {
	fn, ok := d.functions[name]
	return fn, ok
}

// Supports reports whether the dialect maps the operator.
func (d *Dialect[T]) Supports(name string) bool {
	_, ok := d.functions[name]
	return ok
}

// FunctionNames returns all mapped operator names (sorted).
func (d *Dialect[T]) FunctionNames() []string {
	names := make([]string, 0, len(d.functions))
	for name := range d.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Symbol applies the symbol factory.
func (d *Dialect[T]) Symbol(s core.Symbol) (T, error) {
	if d.symbols == nil {
		var zero T
		return zero, ErrSymbolFactoryRequired
	}
	return d.symbols(s)
}

// Number applies the number factory.
func (d *Dialect[T]) Number(n core.Number) (T, error) {
	if d.numbers == nil {
		var zero T
		return zero, ErrNumberFactoryRequired
	}
	return d.numbers(n)
}

// Extend returns a builder seeded with a copy of this dialect's configuration.
// The receiver is left untouched.
func (d *Dialect[T]) Extend(name string) *Builder[T] {
	b := NewDialect[T](name).
		Describe(d.Description).
		Symbols(d.symbols).
		Numbers(d.numbers)
	for op, fn := range d.functions {
		b.dialect.functions[op] = fn
	}
	return b
}

// Builder provides a fluent API for constructing dialects.
type Builder[T any] struct {
	dialect *Dialect[T]
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect[T any](name string) *Builder[T] {
	return &Builder[T]{
		dialect: &Dialect[T]{
			Name:      name,
			functions: make(map[string]Func[T]),
		},
	}
}

// Describe sets the dialect description.
func (b *Builder[T]) Describe(description string) *Builder[T] {
	b.dialect.Description = description
	return b
}

// Symbols sets the symbol factory.
func (b *Builder[T]) Symbols(f SymbolFactory[T]) *Builder[T] {
	b.dialect.symbols = f
	return b
}

// Numbers sets the number factory.
func (b *Builder[T]) Numbers(f NumberFactory[T]) *Builder[T] {
	b.dialect.numbers = f
	return b
}

// Function maps an operator name to its native implementation.
// Mapping the same name twice replaces the earlier implementation.
func (b *Builder[T]) Function(name string, fn Func[T]) *Builder[T] {
	b.dialect.functions[name] = fn
	return b
}

// Functions maps several operators at once.
func (b *Builder[T]) Functions(fns map[string]Func[T]) *Builder[T] {
	for name, fn := range fns {
		b.dialect.functions[name] = fn
	}
	return b
}

// Build returns the constructed dialect.
// The builder can keep being used; later changes do not affect the returned dialect.
func (b *Builder[T]) Build() *Dialect[T] {
	d := *b.dialect
	d.functions = make(map[string]Func[T], len(b.dialect.functions))
	for name, fn := range b.dialect.functions {
		d.functions[name] = fn
	}
	return &d
}
