package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/gift-cart/internal/cart/app"
	"github.com/jcmexdev/gift-cart/internal/cart/domain"
	"github.com/jcmexdev/gift-cart/internal/cart/journal"
	"github.com/jcmexdev/gift-cart/internal/pkg/interceptors/constants"
)

// Handler exposes cart sessions over HTTP.
type Handler struct {
	carts app.CartService
	log   *slog.Logger
}

// NewHandler wires the handler to a cart service. A nil logger falls back to
// slog.Default().
func NewHandler(carts app.CartService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{carts: carts, log: log}
}

// Catalog lists the purchasable products.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	products := domain.Catalog()
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = mapProduct(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// StartSession creates an empty cart.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	requestID, _ := r.Context().Value(constants.ContextKeyRequestID).(string)

	id, view := h.carts.StartSession(r.Context())
	h.log.InfoContext(r.Context(), "session created", "request_id", requestID, "session_id", id)

	writeJSON(w, http.StatusCreated, mapView(id, view))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := h.carts.View(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapView(id, view))
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustPending moves the quantity staged for the next add of a product.
func (h *Handler) AdjustPending(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	delta, ok := decodeDelta(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	view, err := h.carts.AdjustPendingQuantity(r.Context(), id, productID, delta)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapView(id, view))
}

// AddItem adds the staged quantity of a product to the cart. Unlike the
// other item routes, an id outside the catalog (the gift's included) is a
// 422 rather than a no-op.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	view, err := h.carts.AddToCart(r.Context(), id, productID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapView(id, view))
}

// UpdateItem moves a cart line's quantity by delta. The free gift's line is
// a 422; ids not in the cart are a no-op.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	delta, ok := decodeDelta(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	view, err := h.carts.UpdateCartQuantity(r.Context(), id, productID, delta)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapView(id, view))
}

// RemoveItem drops a cart line. Removing the free gift or an id not in the
// cart leaves the cart as is and still answers 200.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	view, err := h.carts.RemoveFromCart(r.Context(), id, productID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapView(id, view))
}

// Journal returns the audit trail of a session.
func (h *Handler) Journal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entries, err := h.carts.Journal(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, JournalResponse{SessionID: id, Entries: mapEntries(entries)})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, app.ErrUnknownProduct):
		writeError(w, http.StatusUnprocessableEntity, "unknown_product", err.Error())
	case errors.Is(err, app.ErrGiftLocked):
		writeError(w, http.StatusUnprocessableEntity, "gift_locked", err.Error())
	default:
		h.log.ErrorContext(r.Context(), "cart request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func parseProductID(w http.ResponseWriter, r *http.Request) (domain.ProductID, bool) {
	raw := chi.URLParam(r, "productID")
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", "product id must be an integer")
		return 0, false
	}
	return domain.ProductID(n), true
}

func decodeDelta(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req DeltaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return 0, false
	}
	if req.Delta == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "delta is required")
		return 0, false
	}
	return *req.Delta, true
}

func mapProduct(p domain.Product) ProductResponse {
	return ProductResponse{ID: int(p.ID), Name: p.Name, Price: p.Price}
}

func mapView(id string, v domain.View) CartResponse {
	catalog := make([]CatalogEntryResponse, len(v.Catalog))
	for i, e := range v.Catalog {
		catalog[i] = CatalogEntryResponse{ProductResponse: mapProduct(e.Product), Pending: e.Pending}
	}

	items := make([]LineItemResponse, len(v.Items))
	for i, l := range v.Items {
		items[i] = LineItemResponse{
			ProductID: int(l.ID),
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal,
			Label:     l.Label(),
			Controls:  l.Controls,
		}
	}

	return CartResponse{
		SessionID:    id,
		Catalog:      catalog,
		Items:        items,
		Subtotal:     v.Subtotal,
		Threshold:    v.Threshold,
		ThresholdMet: v.ThresholdMet,
		GiftAdded:    v.GiftAdded,
		Progress:     v.Progress,
		Remaining:    v.Remaining,
		Message:      v.Message(),
		Banner:       v.Banner(),
		Total:        v.TotalLabel(),
		Empty:        v.Empty(),
	}
}

func mapEntries(entries []journal.Entry) []JournalEntryResponse {
	out := make([]JournalEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = JournalEntryResponse{
			Action:      string(e.Action),
			ProductID:   e.ProductID,
			Delta:       e.Delta,
			Subtotal:    e.Subtotal,
			GiftPresent: e.GiftPresent,
			TraceID:     e.TraceID,
			SpanID:      e.SpanID,
			RecordedAt:  e.RecordedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
