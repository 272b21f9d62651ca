package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-labs/inkwell/internal/domain/entity"
	"github.com/inkwell-labs/inkwell/internal/domain/repository"
)

type ContentRepository struct {
	pool *pgxpool.Pool
}

func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

func (r *ContentRepository) Create(ctx context.Context, e *entity.ContentEntry) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO content_history
			(user_email, title, content_type, tone, audience, purpose, word_limit, generated_content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, e.UserEmail, e.Title, e.ContentType, e.Tone, e.Audience, e.Purpose, e.WordLimit, e.GeneratedContent)

	return row.Scan(&e.ID, &e.CreatedAt)
}

func (r *ContentRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*entity.ContentEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_email, title, content_type, tone, audience, purpose, word_limit, generated_content, created_at
		FROM content_history
		WHERE user_email = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.ContentEntry
	for rows.Next() {
		e := &entity.ContentEntry{}
		if err := rows.Scan(&e.ID, &e.UserEmail, &e.Title, &e.ContentType, &e.Tone,
			&e.Audience, &e.Purpose, &e.WordLimit, &e.GeneratedContent, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ repository.ContentRepository = (*ContentRepository)(nil)
