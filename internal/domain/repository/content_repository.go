package repository

import (
	"context"

	"github.com/inkwell-labs/inkwell/internal/domain/entity"
)

// ContentRepository persists content-history entries per user email.
type ContentRepository interface {
	Create(ctx context.Context, e *entity.ContentEntry) error
	ListByEmail(ctx context.Context, email string, limit int) ([]*entity.ContentEntry, error)
}
