package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/gift-cart/internal/pkg/interceptors/constants"
)

// AttachRequestMetadata puts the chi request ID and the X-Idempotency-Key
// header into the context and tags the active span with them.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(constants.HeaderXIdempotencyKey)

		ctx := context.WithValue(r.Context(), constants.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, constants.ContextKeyIdempotencyKey, idempotencyKey)

		span := trace.SpanFromContext(ctx)
		span.SetAttributes(attribute.String("http.request_id", requestID))
		if idempotencyKey != "" {
			span.SetAttributes(attribute.String("http.idempotency_key", idempotencyKey))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
