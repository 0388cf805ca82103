package interceptors

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/gift-cart/internal/pkg/interceptors/constants"
)

// TraceServerInterceptor copies x-request-id and x-idempotency-key from the
// incoming metadata into the context and logs each call.
func TraceServerInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = slog.Default()
	}
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		requestID := GetMetadataValue(ctx, constants.HeaderXRequestId)
		idempotencyKey := GetMetadataValue(ctx, constants.HeaderXIdempotencyKey)

		newCtx := context.WithValue(ctx, constants.ContextKeyRequestID, requestID)
		newCtx = context.WithValue(newCtx, constants.ContextKeyIdempotencyKey, idempotencyKey)

		start := time.Now()
		resp, err := handler(newCtx, req)

		log.InfoContext(newCtx, "grpc call",
			"method", info.FullMethod,
			"request_id", requestID,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

// GetMetadataValue looks key up in the incoming then outgoing gRPC metadata.
func GetMetadataValue(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(key); len(vals) > 0 {
			return vals[0]
		}
	}

	if md, ok := metadata.FromOutgoingContext(ctx); ok {
		if vals := md.Get(key); len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}
