package repository

import (
	"context"
	"errors"

	"github.com/learnflow/learnflow-auth/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines the interface for user-related database operations.
// Emails passed in are already normalized. Create must rely on the backing
// store's uniqueness guarantee and report ErrDuplicateEmail on conflict.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateRole(ctx context.Context, id string, role entity.Role) error
}
