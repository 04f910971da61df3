package symbolic

// Unary adapts a one-argument native function.
func Unary[T any](fn func(T) T) Func[T] {
	return func(args ...T) (T, error) {
		if len(args) != 1 {
			var zero T
			return zero, &ArityError{Want: 1, Got: len(args)}
		}
		return fn(args[0]), nil
	}
}

// UnaryE adapts a one-argument native function that can fail.
func UnaryE[T any](fn func(T) (T, error)) Func[T] {
	return func(args ...T) (T, error) {
		if len(args) != 1 {
			var zero T
			return zero, &ArityError{Want: 1, Got: len(args)}
		}
		return fn(args[0])
	}
}

// Binary adapts a two-argument native function.
func Binary[T any](fn func(a, b T) T) Func[T] {
	return func(args ...T) (T, error) {
		if len(args) != 2 {
			var zero T
			return zero, &ArityError{Want: 2, Got: len(args)}
		}
		return fn(args[0], args[1]), nil
	}
}

// BinaryE adapts a two-argument native function that can fail.
func BinaryE[T any](fn func(a, b T) (T, error)) Func[T] {
	return func(args ...T) (T, error) {
		if len(args) != 2 {
			var zero T
			return zero, &ArityError{Want: 2, Got: len(args)}
		}
		return fn(args[0], args[1])
	}
}

// Fold adapts an associative binary function to any number of arguments
// (at least two) by folding from the left: fn(fn(a, b), c).
func Fold[T any](fn func(a, b T) T) Func[T] {
	return func(args ...T) (T, error) {
		if len(args) < 2 {
			var zero T
			return zero, &ArityError{Want: 2, Got: len(args), Variadic: true}
		}
		acc := args[0]
		for _, arg := range args[1:] {
			acc = fn(acc, arg)
		}
		return acc, nil
	}
}

// FoldE is Fold for native functions that can fail.
func FoldE[T any](fn func(a, b T) (T, error)) Func[T] {
	return func(args ...T) (T, error) {
		if len(args) < 2 {
			var zero T
			return zero, &ArityError{Want: 2, Got: len(args), Variadic: true}
		}
		acc := args[0]
		for _, arg := range args[1:] {
			var err error
			if acc, err = fn(acc, arg); err != nil {
				return acc, err
			}
		}
		return acc, nil
	}
}
