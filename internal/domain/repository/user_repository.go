package repository

import (
	"context"

	"github.com/pairtalk/chat-backend/internal/domain/entity"
)

// UserRepository defines the interface for the user directory.
type UserRepository interface {
	// Create persists a new user and fills in the server-assigned ID and
	// CreatedAt. Returns ErrConflict when the email is already registered.
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
}
