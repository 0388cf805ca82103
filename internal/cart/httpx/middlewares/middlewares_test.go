package middlewares

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/gift-cart/internal/pkg/cache"
	"github.com/jcmexdev/gift-cart/internal/pkg/interceptors/constants"
)

func TestAttachRequestMetadata(t *testing.T) {
	var gotReq, gotIdem string
	h := middleware.RequestID(AttachRequestMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq, _ = r.Context().Value(constants.ContextKeyRequestID).(string)
		gotIdem, _ = r.Context().Value(constants.ContextKeyIdempotencyKey).(string)
	})))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	req.Header.Set(constants.HeaderXIdempotencyKey, "idem-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-42", gotReq)
	assert.Equal(t, "idem-42", gotIdem)
}

func countingHandler(calls *int, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, "call")
	})
}

func serve(h http.Handler, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(constants.HeaderXIdempotencyKey, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("replays same method path and key", func(t *testing.T) {
		calls := 0
		h := Idempotency(cache.NewMemoryCache("t"), time.Minute, log)(countingHandler(&calls, http.StatusAccepted))

		first := serve(h, http.MethodPost, "/a", "k")
		second := serve(h, http.MethodPost, "/a", "k")

		assert.Equal(t, 1, calls)
		assert.Equal(t, http.StatusAccepted, second.Code)
		assert.Equal(t, "call", second.Body.String())
		assert.Equal(t, "text/plain", second.Header().Get("Content-Type"))
		assert.Equal(t, "true", second.Header().Get(constants.HeaderXIdempotentReplay))
		assert.Empty(t, first.Header().Get(constants.HeaderXIdempotentReplay))
	})

	t.Run("different path runs again", func(t *testing.T) {
		calls := 0
		h := Idempotency(cache.NewMemoryCache("t"), time.Minute, log)(countingHandler(&calls, http.StatusOK))

		serve(h, http.MethodPost, "/a", "k")
		serve(h, http.MethodPost, "/b", "k")
		assert.Equal(t, 2, calls)
	})

	t.Run("reads and keyless requests pass through", func(t *testing.T) {
		calls := 0
		h := Idempotency(cache.NewMemoryCache("t"), time.Minute, log)(countingHandler(&calls, http.StatusOK))

		serve(h, http.MethodGet, "/a", "k")
		serve(h, http.MethodGet, "/a", "k")
		serve(h, http.MethodPost, "/a", "")
		serve(h, http.MethodPost, "/a", "")
		assert.Equal(t, 4, calls)
	})

	t.Run("server errors are not stored", func(t *testing.T) {
		calls := 0
		h := Idempotency(cache.NewMemoryCache("t"), time.Minute, log)(countingHandler(&calls, http.StatusInternalServerError))

		serve(h, http.MethodPost, "/a", "k")
		rec := serve(h, http.MethodPost, "/a", "k")
		require.Equal(t, 2, calls)
		assert.Empty(t, rec.Header().Get(constants.HeaderXIdempotentReplay))
	})

	t.Run("claimed key answers 409 until the first response is stored", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		var calls atomic.Int32
		h := Idempotency(cache.NewMemoryCache("t"), time.Minute, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			close(entered)
			<-release
			w.WriteHeader(http.StatusCreated)
		}))

		done := make(chan *httptest.ResponseRecorder)
		go func() { done <- serve(h, http.MethodPost, "/a", "k") }()
		<-entered

		busy := serve(h, http.MethodPost, "/a", "k")
		assert.Equal(t, http.StatusConflict, busy.Code)
		assert.Contains(t, busy.Body.String(), "request_in_progress")
		assert.Equal(t, "1", busy.Header().Get("Retry-After"))

		close(release)
		assert.Equal(t, http.StatusCreated, (<-done).Code)

		again := serve(h, http.MethodPost, "/a", "k")
		assert.Equal(t, http.StatusCreated, again.Code)
		assert.Equal(t, "true", again.Header().Get(constants.HeaderXIdempotentReplay))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("concurrent requests with one key run once", func(t *testing.T) {
		var calls atomic.Int32
		h := Idempotency(cache.NewMemoryCache("t"), time.Minute, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			time.Sleep(10 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))

		const n = 20
		start := make(chan struct{})
		codes := make([]int, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				codes[i] = serve(h, http.MethodPost, "/a", "k").Code
			}()
		}
		close(start)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, code := range codes {
			assert.Contains(t, []int{http.StatusOK, http.StatusConflict}, code)
		}
	})

	t.Run("panic releases the claim", func(t *testing.T) {
		calls := 0
		h := Idempotency(cache.NewMemoryCache("t"), time.Minute, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				panic("boom")
			}
			w.WriteHeader(http.StatusOK)
		}))

		assert.Panics(t, func() { serve(h, http.MethodPost, "/a", "k") })

		rec := serve(h, http.MethodPost, "/a", "k")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(constants.HeaderXIdempotentReplay))
		assert.Equal(t, 2, calls)
	})
}
