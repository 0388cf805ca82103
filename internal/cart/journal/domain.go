// Package journal defines the audit trail of a cart session.
//
// Every effective change to a session's cart is appended as one Entry, and
// each promotion transition gets its own entry right after the operation
// that caused it. The journal is write-mostly and never used to rebuild a
// cart: a restarted process starts every session empty.
package journal

import "time"

// Action names what happened to the cart.
type Action string

const (
	ActionSessionStarted  Action = "SESSION_STARTED"
	ActionSessionEnded    Action = "SESSION_ENDED"
	ActionPendingAdjusted Action = "PENDING_ADJUSTED"
	ActionItemAdded       Action = "ITEM_ADDED"
	ActionQuantityUpdated Action = "QUANTITY_UPDATED"
	ActionItemRemoved     Action = "ITEM_REMOVED"
	ActionGiftGranted     Action = "GIFT_GRANTED"
	ActionGiftRevoked     Action = "GIFT_REVOKED"
)

// Entry is a single row in the cart_journal table.
type Entry struct {
	// SessionID is the cart session the entry belongs to.
	SessionID string

	Action Action

	// ProductID is zero for session-level actions.
	ProductID int

	// Delta is the requested change for pending and quantity updates.
	Delta int

	// Subtotal and GiftPresent capture the cart after the action.
	Subtotal    int64
	GiftPresent bool

	// TraceID and SpanID tie the entry to the request's trace.
	TraceID string
	SpanID  string

	RecordedAt time.Time
}
