package repository

import (
	"context"

	"github.com/pairtalk/chat-backend/internal/domain/entity"
)

// MessageRepository owns message rows and their read flags.
type MessageRepository interface {
	// Insert persists a new message and fills in the server-assigned ID,
	// Timestamp and IsRead=false. Returns ErrNotFound when sender or
	// recipient does not reference an existing user.
	Insert(ctx context.Context, m *entity.Message) error

	GetByID(ctx context.Context, id int64) (*entity.Message, error)

	// Conversation returns every message exchanged between a and b in either
	// direction, ascending by timestamp with the row id as tie-break so the
	// order is stable across repeated calls. Empty slice when none exist.
	Conversation(ctx context.Context, a, b string) ([]entity.Message, error)

	// Delete hard-deletes a message. Returns ErrNotFound when the id is absent.
	Delete(ctx context.Context, id int64) error

	// UnreadCounts returns, per sender, how many unread messages the given
	// recipient has. Senders with nothing unread are absent from the map.
	UnreadCounts(ctx context.Context, recipient string) (map[string]int, error)

	// MarkRead flips every unread message from sender to recipient to read in
	// a single atomic update. Calling it when nothing is unread is a no-op.
	MarkRead(ctx context.Context, sender, recipient string) error
}
