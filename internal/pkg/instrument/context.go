package instrument

import "context"

type attemptIDKey struct{}

// WithAttemptID returns a copy of ctx carrying the authentication attempt id.
func WithAttemptID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, attemptIDKey{}, id)
}

// AttemptID returns the attempt id stored in ctx, or "".
func AttemptID(ctx context.Context) string {
	id, _ := ctx.Value(attemptIDKey{}).(string)
	return id
}
