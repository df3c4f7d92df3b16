package repo

import (
	"context"

	"github.com/memeboard/memeboard/internal/auth/model"
)

// UserRepo is the store capability the auth core consumes. Lookups
// return ErrNotFound when no row matches; CreateUser surfaces the
// store's unique constraints as ErrDuplicateUsername/ErrDuplicateEmail,
// which makes the constraint the true duplicate enforcement point even
// when two registrations race past the existence checks.
type UserRepo interface {
	CreateUser(ctx context.Context, user model.User) (uint64, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetUserByID(ctx context.Context, id uint64) (model.User, error)
	UpdatePasswordHash(ctx context.Context, id uint64, passwordHash string) error
}
