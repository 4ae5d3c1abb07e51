package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pairtalk/chat-backend/internal/domain/entity"
	"github.com/pairtalk/chat-backend/internal/domain/repository"
)

// MessageRepository is an in-memory message store mirroring the postgres
// contract: monotonic ids, store-assigned timestamps, and bulk read-state
// transitions applied under one lock so readers never observe a partial
// MarkRead. The clock is injectable so tests can force timestamp collisions.
type MessageRepository struct {
	mu     sync.RWMutex
	msgs   []entity.Message
	nextID int64
	now    func() time.Time

	users *UserRepository // optional referential-integrity check
}

func NewMessageRepository(users *UserRepository) *MessageRepository {
	return &MessageRepository{nextID: 1, now: time.Now, users: users}
}

// SetClock replaces the timestamp source. Test hook.
func (r *MessageRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MessageRepository) Insert(ctx context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.users != nil {
		if _, err := r.users.GetByEmail(ctx, m.SenderEmail); err != nil {
			return repository.ErrNotFound
		}
		if _, err := r.users.GetByEmail(ctx, m.RecipientEmail); err != nil {
			return repository.ErrNotFound
		}
	}
	m.ID = r.nextID
	r.nextID++
	m.Timestamp = r.now().UTC()
	m.IsRead = false
	r.msgs = append(r.msgs, *m)
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.msgs {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MessageRepository) Conversation(ctx context.Context, a, b string) ([]entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Message, 0)
	for _, m := range r.msgs {
		if (m.SenderEmail == a && m.RecipientEmail == b) ||
			(m.SenderEmail == b && m.RecipientEmail == a) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.msgs {
		if m.ID == id {
			r.msgs = append(r.msgs[:i], r.msgs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *MessageRepository) UnreadCounts(ctx context.Context, recipient string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, m := range r.msgs {
		if m.RecipientEmail == recipient && !m.IsRead {
			counts[m.SenderEmail]++
		}
	}
	return counts, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, sender, recipient string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.msgs {
		if r.msgs[i].SenderEmail == sender && r.msgs[i].RecipientEmail == recipient {
			r.msgs[i].IsRead = true
		}
	}
	return nil
}

var _ repository.MessageRepository = (*MessageRepository)(nil)
