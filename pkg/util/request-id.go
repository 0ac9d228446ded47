package util

import (
	"context"

	"github.com/google/uuid"
)

type key string

const (
	requestIDKey = key("x-request-id")
	pairKey      = key("pair-id")
)

// ContextWithRequestID returns a context with a request id.
// It will generate new request id if the provided id is empty.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewID()
	}

	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id from ctx if available.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

// WithPairID returns a context carrying the trading pair being processed.
func WithPairID(ctx context.Context, pairID string) context.Context {
	return context.WithValue(ctx, pairKey, pairID)
}

// GetPairID returns the trading pair from ctx, empty when not present.
func GetPairID(ctx context.Context) string {
	id, _ := ctx.Value(pairKey).(string)
	return id
}

// NewID returns a uuid-v4 string.
func NewID() string {
	return uuid.NewString()
}
