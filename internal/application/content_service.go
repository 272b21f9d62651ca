package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/inkwell-labs/inkwell/internal/domain/entity"
	"github.com/inkwell-labs/inkwell/internal/domain/repository"
)

// ContentService stores and retrieves generated drafts for a verified
// subject. The generation itself happens outside this service; entries
// arrive already written.
type ContentService struct {
	Repo    repository.ContentRepository
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewContentService(repo repository.ContentRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ContentService {
	return &ContentService{Repo: repo, Logger: logger, ES: es, ESIndex: esIndex}
}

type SaveContentInput struct {
	Title            string
	ContentType      string
	Tone             string
	Audience         string
	Purpose          string
	WordLimit        int
	GeneratedContent string
}

// Save persists one draft under the caller's email and indexes it for search.
func (s *ContentService) Save(ctx context.Context, email string, in SaveContentInput) (*entity.ContentEntry, error) {
	e := &entity.ContentEntry{
		UserEmail:        email,
		Title:            in.Title,
		ContentType:      in.ContentType,
		Tone:             in.Tone,
		Audience:         in.Audience,
		Purpose:          in.Purpose,
		WordLimit:        in.WordLimit,
		GeneratedContent: in.GeneratedContent,
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}
	// Indexing is best-effort; Postgres stays the source of truth.
	_ = s.indexEntry(ctx, e)
	return e, nil
}

// List returns the caller's entries, newest first.
func (s *ContentService) List(ctx context.Context, email string, limit int) ([]*entity.ContentEntry, error) {
	return s.Repo.ListByEmail(ctx, email, limit)
}

func (s *ContentService) indexEntry(ctx context.Context, e *entity.ContentEntry) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":           e.ID,
		"user_email":   e.UserEmail,
		"title":        e.Title,
		"content_type": e.ContentType,
		"tone":         e.Tone,
		"audience":     e.Audience,
		"purpose":      e.Purpose,
		"content":      e.GeneratedContent,
		"created_at":   e.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: e.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("entry_id", e.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("entry_id", e.ID).Warn("es index response error")
	}
	return nil
}

// Search runs a multi_match over the caller's own entries.
func (s *ContentService) Search(ctx context.Context, email, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "content"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_email": email},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
