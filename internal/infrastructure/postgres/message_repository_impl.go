package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pairtalk/chat-backend/internal/domain/entity"
	"github.com/pairtalk/chat-backend/internal/domain/repository"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Insert(ctx context.Context, m *entity.Message) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_email, recipient_email, content)
		VALUES ($1, $2, $3)
		RETURNING id, timestamp, is_read
	`, m.SenderEmail, m.RecipientEmail, m.Content)

	if err := row.Scan(&m.ID, &m.Timestamp, &m.IsRead); err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*entity.Message, error) {
	m := &entity.Message{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, sender_email, recipient_email, content, timestamp, is_read
		FROM messages
		WHERE id = $1
	`, id)

	if err := row.Scan(&m.ID, &m.SenderEmail, &m.RecipientEmail, &m.Content, &m.Timestamp, &m.IsRead); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// Conversation matches both directional orderings of the pair. The id
// tie-break keeps the order deterministic when two rows share a timestamp.
func (r *MessageRepository) Conversation(ctx context.Context, a, b string) ([]entity.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_email, recipient_email, content, timestamp, is_read
		FROM messages
		WHERE (sender_email = $1 AND recipient_email = $2)
		   OR (sender_email = $2 AND recipient_email = $1)
		ORDER BY timestamp ASC, id ASC
	`, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]entity.Message, 0)
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.SenderEmail, &m.RecipientEmail, &m.Content, &m.Timestamp, &m.IsRead); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MessageRepository) UnreadCounts(ctx context.Context, recipient string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sender_email, COUNT(*)
		FROM messages
		WHERE recipient_email = $1 AND is_read = FALSE
		GROUP BY sender_email
	`, recipient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var sender string
		var n int
		if err := rows.Scan(&sender, &n); err != nil {
			return nil, err
		}
		counts[sender] = n
	}
	return counts, rows.Err()
}

// MarkRead is a single UPDATE statement so a concurrent UnreadCounts sees
// either the whole pre-update or the whole post-update row set, never a mix.
func (r *MessageRepository) MarkRead(ctx context.Context, sender, recipient string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE
		WHERE sender_email = $1 AND recipient_email = $2 AND is_read = FALSE
	`, sender, recipient)
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

var _ repository.MessageRepository = (*MessageRepository)(nil)
