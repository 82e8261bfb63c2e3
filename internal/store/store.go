package store

import (
	"context"
	"errors"
	"fmt"
)

// Collection names of the persisted schema.
const (
	Owners         = "owners"
	Properties     = "properties"
	PropertyImages = "propertyImages"
	PropertyTraces = "propertyTraces"
)

var (
	// ErrPattern means a text predicate compiled into a pattern the store rejected.
	ErrPattern = errors.New("invalid search pattern")
	// ErrCancelled means the caller cancelled the context or its deadline passed.
	ErrCancelled = errors.New("query cancelled")
	// ErrUnavailable covers every other store failure.
	ErrUnavailable = errors.New("store unavailable")
	// ErrInvalidPipeline is returned for pipelines the store cannot run.
	ErrInvalidPipeline = errors.New("invalid pipeline")
	// ErrDuplicate means a write collided with a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// Store runs typed pipelines against named collections. Implementations
// must honour ctx cancellation and return errors wrapping one of the
// sentinels above; raw driver errors never reach callers unwrapped.
// Adapters with codec conventions apply them before being handed out.
type Store interface {
	// Aggregate runs p against collection and returns the projected rows in order.
	Aggregate(ctx context.Context, collection string, p Pipeline) ([]Row, error)
	// Count returns how many documents of collection satisfy m.
	Count(ctx context.Context, collection string, m Match) (int64, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
}

// Cancelled wraps a context error so that both ErrCancelled and the
// original context error match with errors.Is.
func Cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}

// Unavailable wraps an opaque store failure.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// ContextError reports ctx's error wrapped as a cancellation, or nil.
func ContextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return Cancelled(err)
	}
	return nil
}
