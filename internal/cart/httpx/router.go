package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/gift-cart/internal/cart/httpx/middlewares"
	"github.com/jcmexdev/gift-cart/internal/pkg/cache"
)

// RouterConfig carries what the router needs besides the handler.
type RouterConfig struct {
	// Replay caches responses of requests sent with X-Idempotency-Key.
	// Nil disables replay.
	Replay    cache.Cache
	ReplayTTL time.Duration
	Log       *slog.Logger
	// ServiceName names the server spans.
	ServiceName string
}

func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)
	r.Get("/catalog", handler.Catalog)

	r.Group(func(r chi.Router) {
		if cfg.Replay != nil {
			r.Use(middlewares.Idempotency(cfg.Replay, cfg.ReplayTTL, cfg.Log))
		}

		r.Post("/sessions", handler.StartSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", handler.GetSession)
			r.Delete("/", handler.EndSession)
			r.Get("/journal", handler.Journal)
			r.Post("/pending/{productID}", handler.AdjustPending)
			r.Post("/items/{productID}", handler.AddItem)
			r.Patch("/items/{productID}", handler.UpdateItem)
			r.Delete("/items/{productID}", handler.RemoveItem)
		})
	})

	name := cfg.ServiceName
	if name == "" {
		name = "cart-api"
	}
	return otelhttp.NewHandler(r, name)
}
