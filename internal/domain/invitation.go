package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type InvitationKind string

const (
	InvitePlanCollaborator InvitationKind = "plan_collaborator"
	InviteMentor           InvitationKind = "mentor"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation grants TargetEmail access to ResourceID (a plan, or the job
// seeker for mentor invitations). Only the token hash is stored.
type Invitation struct {
	ID          uuid.UUID        `json:"id"`
	Kind        InvitationKind   `json:"kind"`
	ResourceID  string           `json:"resource_id"`
	InviterID   string           `json:"inviter_id"`
	TargetEmail string           `json:"target_email"`
	TokenHash   string           `json:"-"`
	Status      InvitationStatus `json:"status"`
	RespondedBy string           `json:"responded_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// ExpiredAt reports whether a pending invitation is past its TTL. Expiry is
// derived, never stored.
func (i Invitation) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return i.Status == InvitationPending && i.CreatedAt.Add(ttl).Before(now)
}

// AddressedTo compares the target email case-insensitively.
func (i Invitation) AddressedTo(email string) bool {
	return email != "" && strings.EqualFold(strings.TrimSpace(i.TargetEmail), strings.TrimSpace(email))
}

// AccessGrant is written together with an accepted invitation.
type AccessGrant struct {
	Kind       InvitationKind
	ResourceID string
	GranteeID  string
	GrantedAt  time.Time
}
