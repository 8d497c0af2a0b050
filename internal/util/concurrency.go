package util

import "golang.org/x/sync/errgroup"

// Op represents a function that returns a value and/or an error
type Op[T any] = func() (T, error)

// Concurrent runs the operations specified in multiple goroutines, up to the limit of max_concurrent at the same time.
// Results and errors are returned in the order of ops: for each index either errors[i] is nil and results[i]
// holds the value, or errors[i] is set. A failing op does not stop the others.
func Concurrent[T any](ops []Op[T], max_concurrent int) ([]T, []error) {
	results := make([]T, len(ops))
	errors := make([]error, len(ops))

	var group errgroup.Group
	group.SetLimit(max(max_concurrent, 1))

	for i, o := range ops {
		group.Go(func() error {
			results[i], errors[i] = o() // each goroutine owns its own index
			return nil
		})
	}

	group.Wait() // ops never return an error to the group, so there is nothing to check
	return results, errors
}
