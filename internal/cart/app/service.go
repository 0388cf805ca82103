package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/gift-cart/internal/cart/domain"
	"github.com/jcmexdev/gift-cart/internal/cart/journal"
)

const tracerName = "github.com/jcmexdev/gift-cart/internal/cart/app"

var (
	ErrSessionNotFound = errors.New("cart: session not found")
	ErrUnknownProduct  = errors.New("cart: unknown product")
	// ErrGiftLocked rejects edits to the free gift's line; only the
	// promotion rule sets its quantity.
	ErrGiftLocked = errors.New("cart: free gift cannot be edited")
)

// session is one shopper's cart. mu orders the operations of a session.
type session struct {
	mu   sync.Mutex
	cart *domain.Cart
}

// Service hosts independent cart sessions in memory and journals every
// effective change. Sessions are lost when the process exits.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	journal journal.Repository // nil-safe: journaling skipped if nil
	log     *slog.Logger
	tracer  trace.Tracer
	newID   func() string
}

// NewService builds a Service. repo may be nil, in which case nothing is
// journaled. A nil logger falls back to slog.Default().
func NewService(repo journal.Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		sessions: make(map[string]*session),
		journal:  repo,
		log:      log,
		tracer:   otel.Tracer(tracerName),
		newID:    uuid.NewString,
	}
}

// StartSession creates an empty cart and returns its id and initial view.
func (s *Service) StartSession(ctx context.Context) (string, domain.View) {
	ctx, span := s.tracer.Start(ctx, "cart.StartSession")
	defer span.End()

	id := s.newID()
	sess := &session{cart: domain.NewCart()}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	span.SetAttributes(attribute.String("cart.session_id", id))
	s.log.InfoContext(ctx, "cart session started", "session_id", id)
	s.record(ctx, journal.NewEntry(ctx, id, journal.ActionSessionStarted, 0, 0, 0, false))

	return id, sess.cart.View()
}

// EndSession discards a session's cart.
func (s *Service) EndSession(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "cart.EndSession",
		trace.WithAttributes(attribute.String("cart.session_id", id)))
	defer span.End()

	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fail(span, ErrSessionNotFound)
	}

	sess.mu.Lock()
	subtotal, gift := sess.cart.Subtotal(), sess.cart.GiftAdded()
	sess.mu.Unlock()

	s.log.InfoContext(ctx, "cart session ended", "session_id", id, "subtotal", subtotal)
	s.record(ctx, journal.NewEntry(ctx, id, journal.ActionSessionEnded, 0, 0, subtotal, gift))
	return nil
}

// View returns the current derived state of a session.
func (s *Service) View(ctx context.Context, id string) (domain.View, error) {
	sess, err := s.session(id)
	if err != nil {
		return domain.View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.cart.View(), nil
}

// AdjustPendingQuantity changes the staged "add" quantity for a product.
func (s *Service) AdjustPendingQuantity(ctx context.Context, id string, productID domain.ProductID, delta int) (domain.View, error) {
	return s.mutate(ctx, "AdjustPendingQuantity", journal.ActionPendingAdjusted, id, productID, delta,
		func(c *domain.Cart) domain.Outcome { return c.AdjustPendingQuantity(productID, delta) })
}

// AddToCart adds the staged quantity of a catalog product to the cart.
// Ids outside the catalog, the free gift's included, yield ErrUnknownProduct.
func (s *Service) AddToCart(ctx context.Context, id string, productID domain.ProductID) (domain.View, error) {
	if _, ok := domain.LookupProduct(productID); !ok {
		_, span := s.tracer.Start(ctx, "cart.AddToCart")
		defer span.End()
		return domain.View{}, fail(span, ErrUnknownProduct)
	}
	return s.mutate(ctx, "AddToCart", journal.ActionItemAdded, id, productID, 0,
		func(c *domain.Cart) domain.Outcome { return c.AddToCart(productID) })
}

// UpdateCartQuantity moves a cart line's quantity, removing it at zero.
// The free gift's line yields ErrGiftLocked.
func (s *Service) UpdateCartQuantity(ctx context.Context, id string, productID domain.ProductID, delta int) (domain.View, error) {
	if domain.IsGift(productID) {
		_, span := s.tracer.Start(ctx, "cart.UpdateCartQuantity")
		defer span.End()
		return domain.View{}, fail(span, ErrGiftLocked)
	}
	return s.mutate(ctx, "UpdateCartQuantity", journal.ActionQuantityUpdated, id, productID, delta,
		func(c *domain.Cart) domain.Outcome { return c.UpdateCartQuantity(productID, delta) })
}

// RemoveFromCart drops a cart line. The free gift cannot be removed.
func (s *Service) RemoveFromCart(ctx context.Context, id string, productID domain.ProductID) (domain.View, error) {
	return s.mutate(ctx, "RemoveFromCart", journal.ActionItemRemoved, id, productID, 0,
		func(c *domain.Cart) domain.Outcome { return c.RemoveFromCart(productID) })
}

// Journal lists a session's journal. Without a repository it is empty.
func (s *Service) Journal(ctx context.Context, id string) ([]journal.Entry, error) {
	if _, err := s.session(id); err != nil {
		return nil, err
	}
	if s.journal == nil {
		return []journal.Entry{}, nil
	}
	return s.journal.List(ctx, id)
}

func (s *Service) mutate(
	ctx context.Context,
	op string,
	action journal.Action,
	id string,
	productID domain.ProductID,
	delta int,
	apply func(*domain.Cart) domain.Outcome,
) (domain.View, error) {
	ctx, span := s.tracer.Start(ctx, "cart."+op, trace.WithAttributes(
		attribute.String("cart.session_id", id),
		attribute.Int("cart.product_id", int(productID)),
		attribute.Int("cart.delta", delta),
	))
	defer span.End()

	sess, err := s.session(id)
	if err != nil {
		return domain.View{}, fail(span, err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := apply(sess.cart)
	view := sess.cart.View()

	span.SetAttributes(
		attribute.Bool("cart.changed", out.Changed),
		attribute.String("cart.gift", out.Gift.String()),
		attribute.Int64("cart.subtotal", view.Subtotal),
	)
	s.log.DebugContext(ctx, "cart operation applied",
		"op", op,
		"session_id", id,
		"product_id", int(productID),
		"delta", delta,
		"changed", out.Changed,
		"subtotal", view.Subtotal,
	)

	if out.Changed {
		s.record(ctx, journal.NewEntry(ctx, id, action, int(productID), delta, view.Subtotal, view.GiftAdded))
	}

	switch out.Gift {
	case domain.GiftGranted:
		s.log.InfoContext(ctx, "free gift granted", "session_id", id, "subtotal", view.Subtotal)
		s.record(ctx, journal.NewEntry(ctx, id, journal.ActionGiftGranted, int(domain.GiftID), 0, view.Subtotal, true))
	case domain.GiftRevoked:
		s.log.InfoContext(ctx, "free gift revoked", "session_id", id, "subtotal", view.Subtotal)
		s.record(ctx, journal.NewEntry(ctx, id, journal.ActionGiftRevoked, int(domain.GiftID), 0, view.Subtotal, false))
	}

	return view, nil
}

func (s *Service) session(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// record saves a journal entry. Journal failures never fail the cart
// operation; they are logged.
func (s *Service) record(ctx context.Context, entry *journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Save(ctx, entry); err != nil {
		s.log.WarnContext(ctx, "journal write failed",
			"session_id", entry.SessionID,
			"action", string(entry.Action),
			"error", err,
		)
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
