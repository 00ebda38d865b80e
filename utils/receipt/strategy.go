package receipt

// Strategy is one step of a fallback chain. It reports false when it has
// nothing to offer so the next step can run.
type Strategy[T any] func() (T, bool)

// FirstSuccess runs strategies in order and returns the first result that
// succeeds.
func FirstSuccess[T any](strategies ...Strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
