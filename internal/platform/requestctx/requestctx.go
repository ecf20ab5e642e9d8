// Package requestctx carries the per-request correlation ID through a
// context. It sits under platform so domain services can read the ID for
// audit rows without importing the transport layer.
package requestctx

import "context"

type idKey struct{}

// Set tags the context with the request's correlation ID.
func Set(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// ID returns the correlation ID, or "" when no middleware tagged one.
func ID(ctx context.Context) string {
	id, _ := ctx.Value(idKey{}).(string)
	return id
}
