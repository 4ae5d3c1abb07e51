package application

import (
	"context"
	"errors"
	"expvar"

	"github.com/sirupsen/logrus"

	"github.com/pairtalk/chat-backend/internal/domain/entity"
	repo "github.com/pairtalk/chat-backend/internal/domain/repository"
)

// Counters surfaced on /api/debug/vars.
var (
	messagesSent     = expvar.NewInt("messages_sent")
	messagesReadAcks = expvar.NewInt("messages_read_acks")
)

var (
	ErrEmptyContent    = errors.New("message content is empty")
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotParticipant is returned when a caller tries to delete a message
	// of a conversation they are not part of.
	ErrNotParticipant = errors.New("not a conversation participant")
)

// MessageService implements the message store and the read-state tracker.
type MessageService struct {
	Messages repo.MessageRepository
	Users    repo.UserRepository
	Logger   *logrus.Logger
}

func NewMessageService(messages repo.MessageRepository, users repo.UserRepository, logger *logrus.Logger) *MessageService {
	return &MessageService{Messages: messages, Users: users, Logger: logger}
}

// Send appends a message. Both emails must denote existing users and the
// content must be non-empty; id, timestamp and isRead=false are assigned by
// the store at insert.
func (s *MessageService) Send(ctx context.Context, sender, recipient, content string) (*entity.Message, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if _, err := s.Users.GetByEmail(ctx, sender); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if _, err := s.Users.GetByEmail(ctx, recipient); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	m := &entity.Message{SenderEmail: sender, RecipientEmail: recipient, Content: content}
	if err := s.Messages.Insert(ctx, m); err != nil {
		// The FK constraint can still fire if a user row vanished between the
		// existence check and the insert.
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	messagesSent.Add(1)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"message_id": m.ID,
			"sender":     m.SenderEmail,
			"recipient":  m.RecipientEmail,
		}).Debug("message stored")
	}
	return m, nil
}

// History returns the conversation between a and b: every message in either
// direction, ascending by timestamp with a stable id tie-break. The result is
// the same whichever way round the pair is given.
func (s *MessageService) History(ctx context.Context, a, b string) ([]entity.Message, error) {
	return s.Messages.Conversation(ctx, a, b)
}

// Delete hard-deletes a message. Only the two conversation participants may
// delete it; there is no tombstone and no undo.
func (s *MessageService) Delete(ctx context.Context, caller string, id int64) error {
	m, err := s.Messages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if m.SenderEmail != caller && m.RecipientEmail != caller {
		return ErrNotParticipant
	}
	if err := s.Messages.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	return nil
}

// UnreadCounts returns, per sender, the number of unread messages waiting for
// recipient. Senders with nothing unread do not appear.
func (s *MessageService) UnreadCounts(ctx context.Context, recipient string) (map[string]int, error) {
	return s.Messages.UnreadCounts(ctx, recipient)
}

// MarkRead acknowledges the sender->recipient direction of a conversation:
// every unread message in that direction becomes read. Idempotent; the
// reverse direction is untouched.
func (s *MessageService) MarkRead(ctx context.Context, sender, recipient string) error {
	if err := s.Messages.MarkRead(ctx, sender, recipient); err != nil {
		return err
	}
	messagesReadAcks.Add(1)
	return nil
}
