package journal

import "context"

// Repository is the port for storing journal entries. The cart service
// depends on this, not on SQLite.
type Repository interface {
	// Save appends an entry. Entries are never updated.
	Save(ctx context.Context, entry *Entry) error

	// List returns a session's entries oldest first. An unknown session
	// yields an empty slice.
	List(ctx context.Context, sessionID string) ([]Entry, error)
}
