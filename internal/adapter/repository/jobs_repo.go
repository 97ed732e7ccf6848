package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"career-coach/internal/domain"
)

// JobsRepo is the external job cache, unique on canonical_url.
type JobsRepo struct {
	db DBTX
}

func NewJobsRepo(db DBTX) *JobsRepo {
	return &JobsRepo{db: db}
}

// Upsert inserts a job or refreshes the cached fields of an existing one.
// It returns the stored row's id and first_seen_at.
func (r *JobsRepo) Upsert(ctx context.Context, j domain.ExternalJob) (domain.ExternalJob, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO external_jobs (id, canonical_url, source_url, title, company, location, summary, first_seen_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (canonical_url) DO UPDATE SET title = EXCLUDED.title, company = EXCLUDED.company,
			location = EXCLUDED.location, summary = EXCLUDED.summary, updated_at = EXCLUDED.updated_at
		RETURNING id, first_seen_at`,
		j.ID, j.CanonicalURL, j.SourceURL, j.Title, j.Company, j.Location, j.Summary, j.UpdatedAt).
		Scan(&j.ID, &j.FirstSeenAt)
	if err != nil {
		return j, fmt.Errorf("upsert external job: %w", err)
	}
	return j, nil
}

func (r *JobsRepo) Lookup(ctx context.Context, canonicalURL string) (*domain.ExternalJob, error) {
	var j domain.ExternalJob
	err := r.db.QueryRowContext(ctx,
		`SELECT id, canonical_url, source_url, title, company, location, summary, first_seen_at, updated_at
		FROM external_jobs WHERE canonical_url = $1`, canonicalURL).
		Scan(&j.ID, &j.CanonicalURL, &j.SourceURL, &j.Title, &j.Company, &j.Location, &j.Summary, &j.FirstSeenAt, &j.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup external job: %w", err)
	}
	return &j, nil
}
