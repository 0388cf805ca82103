package constants

// contextKey keeps these keys from colliding with other packages' string keys.
type contextKey string

const (
	HeaderXRequestId      = "x-request-id"
	HeaderXIdempotencyKey = "x-idempotency-key"
	// HeaderXIdempotentReplay is set on responses served from the replay cache.
	HeaderXIdempotentReplay = "x-idempotent-replay"

	ContextKeyRequestID      contextKey = HeaderXRequestId
	ContextKeyIdempotencyKey contextKey = HeaderXIdempotencyKey
)
