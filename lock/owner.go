package lock

import (
	"context"

	"github.com/google/uuid"
)

// Owner identifies a logical lock holder. Goroutines do not have stable
// identities, so reentrancy is keyed on an explicit owner token carried in
// the context: all acquisitions sharing an owner count as the same holder.
type Owner string

// NewOwner returns a fresh, unique owner token.
func NewOwner() Owner {
	return Owner(uuid.NewString())
}

// Context keys for lock-related values.
type contextKey int

const ownerKey contextKey = iota

// WithOwner returns a new context with the given owner attached.
func WithOwner(ctx context.Context, o Owner) context.Context {
	return context.WithValue(ctx, ownerKey, o)
}

// OwnerFromContext retrieves the owner from the context.
// Returns false if no owner is present.
func OwnerFromContext(ctx context.Context) (Owner, bool) {
	o, ok := ctx.Value(ownerKey).(Owner)
	if !ok || o == "" {
		return "", false
	}
	return o, true
}

// EnsureOwner returns a context that carries an owner, minting a new token
// if the context does not already have one. Callers that may acquire the
// same lock more than once in a call chain should pass the returned context
// down so the acquisitions are recognized as reentrant.
func EnsureOwner(ctx context.Context) (context.Context, Owner) {
	if o, ok := OwnerFromContext(ctx); ok {
		return ctx, o
	}
	o := NewOwner()
	return WithOwner(ctx, o), o
}
