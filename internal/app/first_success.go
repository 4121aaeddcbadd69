package app

import (
	"context"
	"errors"
)

// errNoCandidates is returned by FirstSuccess for an empty candidate list
var errNoCandidates = errors.New("no candidates")

// FirstSuccess calls try for each candidate in order and returns the first
// successful result with its index. Candidates after a success are never
// tried. When every attempt fails the last error is returned with index -1.
func FirstSuccess[C, T any](ctx context.Context, candidates []C, try func(context.Context, C) (T, error)) (T, int, error) {
	var zero T
	lastErr := errNoCandidates
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return zero, -1, err
		}
		result, err := try(ctx, c)
		if err == nil {
			return result, i, nil
		}
		lastErr = err
	}
	return zero, -1, lastErr
}
