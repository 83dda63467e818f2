// Package collab runs calls to external collaborators (weather service, language
// model, document extraction) as bounded tasks that never fail the dialogue:
// every failure becomes an unavailable Outcome.
package collab

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned by adapters when the collaborator is not configured
var ErrUnavailable = errors.New("collaborator unavailable")

// ErrNotFound is returned by lookups that completed without a match
var ErrNotFound = errors.New("not found")

// Outcome is the structured result of a collaborator call
type Outcome[T any] struct {
	Value T
	OK    bool
	// Reason says why the value is missing; empty when OK
	Reason string
	Err    error
}

// Available wraps a value
func Available[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, OK: true}
}

// Unavailable wraps a failure
func Unavailable[T any](err error) Outcome[T] {
	reason := "unavailable"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	case errors.Is(err, ErrNotFound):
		reason = "not_found"
	case errors.Is(err, ErrUnavailable):
		reason = "not_configured"
	case err != nil:
		reason = err.Error()
	}
	return Outcome[T]{Reason: reason, Err: err}
}

// NotFound reports whether the call completed but found nothing
func (o Outcome[T]) NotFound() bool {
	return errors.Is(o.Err, ErrNotFound)
}

// Call runs fn with a timeout. A panic, an error or an expired deadline all
// produce an unavailable outcome. A zero timeout only inherits ctx's deadline.
func Call[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) Outcome[T] {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("collaborator panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return Unavailable[T](r.err)
		}
		return Available(r.value)
	case <-ctx.Done():
		return Unavailable[T](ctx.Err())
	}
}
