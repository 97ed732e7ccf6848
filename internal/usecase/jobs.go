package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"career-coach/internal/adapter/repository"
	"career-coach/internal/domain"
	"career-coach/internal/model"
	"career-coach/pkg/apperr"

	"github.com/google/uuid"
)

// trackingParams are dropped from job URLs along with every utm_* key.
// Keys are compared lower-cased.
var trackingParams = map[string]bool{
	"gclid":      true,
	"fbclid":     true,
	"ref":        true,
	"refid":      true,
	"trackingid": true,
	"trk":        true,
	"mc_cid":     true,
	"mc_eid":     true,
}

// CanonicalURL normalizes a job posting URL so the same posting found
// through different links maps to one cache row.
func CanonicalURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", errors.New("url has no host")
	}
	if port := u.Port(); port != "" && !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
		host += ":" + port
	}

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || trackingParams[lk] {
			q.Del(k)
		}
	}

	out := scheme + "://" + host + strings.TrimRight(u.EscapedPath(), "/")
	if enc := q.Encode(); enc != "" {
		out += "?" + enc
	}
	return out, nil
}

// JobCache deduplicates postings returned by job searches.
type JobCache struct {
	store JobStore
	now   func() time.Time
}

func NewJobCache(store JobStore) *JobCache {
	return &JobCache{store: store, now: time.Now}
}

func (c *JobCache) Remember(ctx context.Context, l model.JobListing) (domain.ExternalJob, error) {
	canonical, err := CanonicalURL(l.URL)
	if err != nil {
		return domain.ExternalJob{}, err
	}
	now := c.now().UTC()
	return c.store.Upsert(ctx, domain.ExternalJob{
		ID:           uuid.New(),
		CanonicalURL: canonical,
		SourceURL:    l.URL,
		Title:        l.Title,
		Company:      l.Company,
		Location:     l.Location,
		Summary:      l.Summary,
		FirstSeenAt:  now,
		UpdatedAt:    now,
	})
}

// RememberAll caches every listing it can and reports the ones it could not.
func (c *JobCache) RememberAll(ctx context.Context, listings []model.JobListing) error {
	var errs []error
	for _, l := range listings {
		if _, err := c.Remember(ctx, l); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.URL, err))
		}
	}
	return errors.Join(errs...)
}

func (c *JobCache) Lookup(ctx context.Context, rawURL string) (*domain.ExternalJob, error) {
	canonical, err := CanonicalURL(rawURL)
	if err != nil {
		return nil, apperr.Invalid("Invalid job URL")
	}
	job, err := c.store.Lookup(ctx, canonical)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Missing("Job not found")
	}
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	return job, nil
}
