package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"career-coach/internal/adapter/email"
	"career-coach/internal/adapter/repository"
	"career-coach/internal/domain"
	"career-coach/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

const tokenBytes = 32

// NewToken returns 32 random bytes, hex encoded. Only its hash is stored.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// TokenHasher computes keyed BLAKE2b-256 digests of invitation tokens.
type TokenHasher struct {
	key []byte
}

// NewTokenHasher accepts keys of up to 64 bytes.
func NewTokenHasher(secret string) (*TokenHasher, error) {
	key := []byte(secret)
	if len(key) == 0 || len(key) > blake2b.Size {
		return nil, fmt.Errorf("hash secret must be 1-%d bytes", blake2b.Size)
	}
	return &TokenHasher{key: key}, nil
}

func (h *TokenHasher) Hash(token string) string {
	// New256 only fails for an oversized key, which NewTokenHasher rejects.
	d, _ := blake2b.New256(h.key)
	d.Write([]byte(token))
	return hex.EncodeToString(d.Sum(nil))
}

// Matches compares in constant time.
func (h *TokenHasher) Matches(token, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(token)), []byte(hash)) == 1
}

// Invitations runs the invite → accept | decline state machine. Expiry is
// derived from created_at at response time.
type Invitations struct {
	store     InvitationStore
	plans     PlanStore
	notifier  Notifier
	hasher    *TokenHasher
	ttl       time.Duration
	acceptURL string
	log       *zap.Logger
	now       func() time.Time
}

func NewInvitations(store InvitationStore, plans PlanStore, notifier Notifier, hasher *TokenHasher,
	ttl time.Duration, acceptURL string, log *zap.Logger) *Invitations {
	return &Invitations{
		store:     store,
		plans:     plans,
		notifier:  notifier,
		hasher:    hasher,
		ttl:       ttl,
		acceptURL: acceptURL,
		log:       log.With(zap.String("component", "invitations")),
		now:       time.Now,
	}
}

// InviteCollaborator lets a plan owner share the plan with another person.
func (s *Invitations) InviteCollaborator(ctx context.Context, id domain.Identity, planID, target string) (*domain.Invitation, error) {
	pid, err := uuid.Parse(planID)
	if err != nil {
		return nil, apperr.Invalid("planId must be a valid id")
	}
	addr, err := s.checkTarget(id, target)
	if err != nil {
		return nil, err
	}
	if err := CheckPlanOwner(ctx, s.plans, id, pid); err != nil {
		return nil, err
	}
	return s.invite(ctx, id, domain.InvitePlanCollaborator, pid.String(), addr,
		"You've been invited to collaborate on a career plan")
}

// InviteMentor lets a job seeker invite a mentor to follow their progress.
func (s *Invitations) InviteMentor(ctx context.Context, id domain.Identity, target string) (*domain.Invitation, error) {
	addr, err := s.checkTarget(id, target)
	if err != nil {
		return nil, err
	}
	return s.invite(ctx, id, domain.InviteMentor, id.ID, addr,
		"You've been invited to mentor a job seeker")
}

func (s *Invitations) checkTarget(id domain.Identity, target string) (string, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(target))
	if err != nil || parsed.Address != strings.TrimSpace(target) {
		return "", apperr.Invalid("A valid email address is required")
	}
	if strings.EqualFold(parsed.Address, id.Email) {
		return "", apperr.Invalid("You cannot invite yourself")
	}
	return parsed.Address, nil
}

func (s *Invitations) invite(ctx context.Context, id domain.Identity, kind domain.InvitationKind, resourceID, target, subject string) (*domain.Invitation, error) {
	token, err := NewToken()
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	inv := domain.Invitation{
		ID:          uuid.New(),
		Kind:        kind,
		ResourceID:  resourceID,
		InviterID:   id.ID,
		TargetEmail: target,
		TokenHash:   s.hasher.Hash(token),
		Status:      domain.InvitationPending,
		CreatedAt:   s.now().UTC(),
	}
	err = s.store.Create(ctx, inv)
	if errors.Is(err, repository.ErrConflict) {
		return nil, apperr.Conflicting("This person has already been invited")
	}
	if err != nil {
		s.log.Error("create invitation", zap.Error(err))
		return nil, apperr.Unavailable(err)
	}

	s.notifier.Notify(email.Message{To: target, Subject: subject, HTML: s.inviteBody(kind, token)})
	s.log.Info("invitation created", zap.String("invitation_id", inv.ID.String()), zap.String("kind", string(kind)))
	return &inv, nil
}

func (s *Invitations) inviteBody(kind domain.InvitationKind, token string) string {
	link := s.acceptURL + "?token=" + url.QueryEscape(token)
	what := "collaborate on their career plan"
	if kind == domain.InviteMentor {
		what = "mentor them through their job search"
	}
	return fmt.Sprintf(`<p>You have been invited to %s.</p><p><a href="%s">Accept the invitation</a></p><p>This link expires in %d days.</p>`,
		what, link, int(s.ttl.Hours()/24))
}

func (s *Invitations) lookup(ctx context.Context, token string) (*domain.Invitation, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperr.Invalid("token is required")
	}
	hash := s.hasher.Hash(token)
	inv, err := s.store.GetByTokenHash(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Missing("Invitation not found")
	}
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if !s.hasher.Matches(token, inv.TokenHash) {
		return nil, apperr.Missing("Invitation not found")
	}
	return inv, nil
}

// Accept is idempotent for the identity that already accepted.
func (s *Invitations) Accept(ctx context.Context, id domain.Identity, token string) (*domain.Invitation, error) {
	inv, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvitationPending {
		return settledAccept(inv, id)
	}

	now := s.now().UTC()
	if inv.ExpiredAt(now, s.ttl) {
		return nil, apperr.ExpiredError(nil)
	}
	if !inv.AddressedTo(id.Email) {
		return nil, apperr.Denied("This invitation was sent to a different email address")
	}

	ok, err := s.store.Accept(ctx, *inv, id.ID, now)
	if err != nil {
		s.log.Error("accept invitation", zap.String("invitation_id", inv.ID.String()), zap.Error(err))
		return nil, apperr.Unavailable(err)
	}
	if !ok {
		// lost a race with another response; judge by what won
		current, err := s.lookup(ctx, token)
		if err != nil {
			return nil, err
		}
		return settledAccept(current, id)
	}

	inv.Status = domain.InvitationAccepted
	inv.RespondedBy = id.ID
	inv.RespondedAt = &now
	s.log.Info("invitation accepted", zap.String("invitation_id", inv.ID.String()))
	return inv, nil
}

func settledAccept(inv *domain.Invitation, id domain.Identity) (*domain.Invitation, error) {
	if inv.Status == domain.InvitationAccepted && inv.RespondedBy == id.ID {
		return inv, nil
	}
	if inv.Status == domain.InvitationDeclined {
		return nil, apperr.Conflicting("This invitation has been declined")
	}
	return nil, apperr.Conflicting("This invitation has already been accepted")
}

func (s *Invitations) Decline(ctx context.Context, id domain.Identity, token string) (*domain.Invitation, error) {
	inv, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if !inv.AddressedTo(id.Email) {
		return nil, apperr.Denied("This invitation was sent to a different email address")
	}
	if inv.Status != domain.InvitationPending {
		return settledDecline(inv)
	}

	now := s.now().UTC()
	ok, err := s.store.Decline(ctx, *inv, id.ID, now)
	if err != nil {
		s.log.Error("decline invitation", zap.String("invitation_id", inv.ID.String()), zap.Error(err))
		return nil, apperr.Unavailable(err)
	}
	if !ok {
		current, err := s.lookup(ctx, token)
		if err != nil {
			return nil, err
		}
		return settledDecline(current)
	}

	inv.Status = domain.InvitationDeclined
	inv.RespondedBy = id.ID
	inv.RespondedAt = &now
	return inv, nil
}

func settledDecline(inv *domain.Invitation) (*domain.Invitation, error) {
	if inv.Status == domain.InvitationDeclined {
		return inv, nil
	}
	return nil, apperr.Conflicting("This invitation has already been accepted")
}
