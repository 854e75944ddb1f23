// Package reqid tags a context with an operation ID so start and finish
// events of one operation can be paired by subscribers.
package reqid

import (
	"context"
	"math/rand/v2"
)

type key struct{}

// NewContext returns a copy of parent carrying a fresh random ID.
func NewContext(parent context.Context) (context.Context, uint64) {
	id := rand.Uint64()
	return context.WithValue(parent, key{}, id), id
}

// Ensure returns ctx unchanged when it already carries an ID, and a derived
// context with a fresh ID otherwise.
func Ensure(ctx context.Context) (context.Context, uint64) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	return NewContext(ctx)
}

// FromContext extracts the ID from ctx.
func FromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(key{}).(uint64)
	return id, ok
}
