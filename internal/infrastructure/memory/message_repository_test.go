package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairtalk/chat-backend/internal/domain/entity"
	"github.com/pairtalk/chat-backend/internal/domain/repository"
)

func seedUsers(t *testing.T, emails ...string) *UserRepository {
	t.Helper()
	users := NewUserRepository()
	for _, e := range emails {
		require.NoError(t, users.Create(context.Background(), &entity.User{Email: e, Password: "x"}))
	}
	return users
}

func TestInsertAssignsMonotonicIDs(t *testing.T) {
	users := seedUsers(t, "a@x.com", "b@x.com")
	repo := NewMessageRepository(users)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		m := &entity.Message{SenderEmail: "a@x.com", RecipientEmail: "b@x.com", Content: "m"}
		require.NoError(t, repo.Insert(ctx, m))
		assert.Greater(t, m.ID, last)
		last = m.ID
	}
}

func TestInsertEnforcesReferentialIntegrity(t *testing.T) {
	users := seedUsers(t, "a@x.com")
	repo := NewMessageRepository(users)

	m := &entity.Message{SenderEmail: "a@x.com", RecipientEmail: "ghost@x.com", Content: "m"}
	err := repo.Insert(context.Background(), m)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConversationOrderIsReproducible(t *testing.T) {
	users := seedUsers(t, "a@x.com", "b@x.com")
	repo := NewMessageRepository(users)
	ctx := context.Background()

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time { return fixed })

	for i := 0; i < 10; i++ {
		m := &entity.Message{SenderEmail: "a@x.com", RecipientEmail: "b@x.com", Content: "m"}
		require.NoError(t, repo.Insert(ctx, m))
	}

	first, err := repo.Conversation(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := repo.Conversation(ctx, "b@x.com", "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].ID, first[i].ID)
	}
}

func TestDeleteMissing(t *testing.T) {
	users := seedUsers(t, "a@x.com", "b@x.com")
	repo := NewMessageRepository(users)

	err := repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// A reader racing a bulk MarkRead must see either all rows unread or all
// rows read for the pair, never a partially applied transition.
func TestMarkReadIsAtomicForReaders(t *testing.T) {
	users := seedUsers(t, "a@x.com", "b@x.com")
	repo := NewMessageRepository(users)
	ctx := context.Background()

	const total = 200
	for i := 0; i < total; i++ {
		m := &entity.Message{SenderEmail: "a@x.com", RecipientEmail: "b@x.com", Content: "m"}
		require.NoError(t, repo.Insert(ctx, m))
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	var observed sync.Map

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			counts, err := repo.UnreadCounts(ctx, "b@x.com")
			if err != nil {
				return
			}
			observed.Store(counts["a@x.com"], true)
		}
	}()

	require.NoError(t, repo.MarkRead(ctx, "a@x.com", "b@x.com"))
	close(stop)
	wg.Wait()

	observed.Range(func(k, _ any) bool {
		n := k.(int)
		assert.Contains(t, []int{0, total}, n)
		return true
	})

	counts, err := repo.UnreadCounts(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Empty(t, counts)
}
