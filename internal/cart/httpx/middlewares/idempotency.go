package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/gift-cart/internal/pkg/cache"
	"github.com/jcmexdev/gift-cart/internal/pkg/interceptors/constants"
)

const (
	replayOperation = "http-replay"

	// inFlight marks a key claimed by a request that has not finished yet.
	// It is never valid JSON, so it cannot be mistaken for a stored response.
	inFlight = "in-flight"
)

// storedResponse is what gets cached for a replayable request.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Idempotency runs a mutating request that carries an idempotency key at most
// once per method, path and key, and replays its first response afterwards.
//
// The key is claimed with SetIfAbsent before the handler runs. A request that
// finds the key claimed but not yet answered gets 409 request_in_progress and
// may retry. 5xx responses and panics release the claim so a retry runs
// again. Cache failures are logged and the request is served uncached.
func Idempotency(c cache.Cache, ttl time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey, _ := r.Context().Value(constants.ContextKeyIdempotencyKey).(string)
			if idempotencyKey == "" {
				idempotencyKey = r.Header.Get(constants.HeaderXIdempotencyKey)
			}
			if idempotencyKey == "" || !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := c.GenerateKey(replayOperation, r.Method+" "+r.URL.Path+" "+idempotencyKey)

			claimed, err := c.SetIfAbsent(ctx, key, inFlight, ttl)
			if err != nil {
				log.WarnContext(ctx, "idempotency claim failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !claimed {
				answerClaimed(ctx, w, c, key, idempotencyKey, log)
				return
			}

			stored := false
			defer func() {
				if stored {
					return
				}
				// the request context may already be cancelled
				if err := c.Delete(context.WithoutCancel(ctx), key); err != nil {
					log.WarnContext(ctx, "idempotency release failed", "key", key, "error", err)
				}
			}()

			var body bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				return
			}

			payload, err := json.Marshal(storedResponse{
				Status:      status,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        body.Bytes(),
			})
			if err != nil {
				return
			}
			if err := c.Set(context.WithoutCancel(ctx), key, string(payload), ttl); err != nil {
				log.WarnContext(ctx, "idempotency store failed", "error", err)
				return
			}
			stored = true
		})
	}
}

// answerClaimed serves a request whose key another request already holds.
func answerClaimed(ctx context.Context, w http.ResponseWriter, c cache.Cache, key, idempotencyKey string, log *slog.Logger) {
	cached, err := c.Get(ctx, key)
	if err != nil {
		log.WarnContext(ctx, "idempotency lookup failed", "error", err)
	}

	var stored storedResponse
	if cached != "" && cached != inFlight {
		if err := json.Unmarshal([]byte(cached), &stored); err == nil {
			log.DebugContext(ctx, "replaying response", "idempotency_key", idempotencyKey)
			replay(w, stored)
			return
		}
		log.WarnContext(ctx, "unreadable replay entry", "key", key)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusConflict)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "request_in_progress",
		"message": "a request with this idempotency key is still being processed",
	})
}

func replay(w http.ResponseWriter, stored storedResponse) {
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(constants.HeaderXIdempotentReplay, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
