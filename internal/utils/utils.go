package utils

func Any[T any](xs []T, pred func(T) bool) bool {
	for _, x := range xs {
		if pred(x) {
			return true
		}
	}
	return false
}

// Filter returns a new slice holding the elements of xs that satisfy pred.
func Filter[T any](xs []T, pred func(T) bool) []T {
	result := make([]T, 0, len(xs))
	for _, x := range xs {
		if pred(x) {
			result = append(result, x)
		}
	}
	return result
}
