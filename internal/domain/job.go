package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExternalJob is a posting discovered by a job search, deduplicated by its
// canonical URL.
type ExternalJob struct {
	ID           uuid.UUID `json:"id"`
	CanonicalURL string    `json:"canonical_url"`
	SourceURL    string    `json:"source_url"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Summary      string    `json:"summary"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
