package repository

import (
	"context"
	"errors"

	"github.com/inkwell-labs/inkwell/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when an insert hits the unique email
	// constraint. The constraint lives in the database so two concurrent
	// registrations for the same address cannot both succeed.
	ErrAlreadyExists = errors.New("already exists")
)

// UserRepository defines the persistence operations of the user directory.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	MarkVerified(ctx context.Context, email string) (*entity.User, error)
}
