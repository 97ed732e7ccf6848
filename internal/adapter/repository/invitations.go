package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"career-coach/internal/domain"
)

type InvitationsRepo struct {
	db *sql.DB
}

func NewInvitationsRepo(db *sql.DB) *InvitationsRepo {
	return &InvitationsRepo{db: db}
}

// Create inserts a pending invitation. The unique index on (kind,
// resource_id, lower(target_email)) turns a duplicate or racing invite into
// ErrConflict.
func (r *InvitationsRepo) Create(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, kind, resource_id, inviter_id, target_email, token_hash, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, string(inv.Kind), inv.ResourceID, inv.InviterID, inv.TargetEmail, inv.TokenHash, string(inv.Status), inv.CreatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

const invitationColumns = `id, kind, resource_id, inviter_id, target_email, token_hash, status, coalesce(responded_by, ''), created_at, responded_at`

func scanInvitation(row *sql.Row) (*domain.Invitation, error) {
	var (
		inv          domain.Invitation
		kind, status string
		respondedAt  sql.NullTime
	)
	err := row.Scan(&inv.ID, &kind, &inv.ResourceID, &inv.InviterID, &inv.TargetEmail, &inv.TokenHash,
		&status, &inv.RespondedBy, &inv.CreatedAt, &respondedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan invitation: %w", err)
	}
	inv.Kind = domain.InvitationKind(kind)
	inv.Status = domain.InvitationStatus(status)
	if respondedAt.Valid {
		t := respondedAt.Time
		inv.RespondedAt = &t
	}
	return &inv, nil
}

func (r *InvitationsRepo) GetByTokenHash(ctx context.Context, hash string) (*domain.Invitation, error) {
	return scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token_hash = $1`, hash))
}

// Accept moves a pending invitation to accepted and writes the access grant
// in one transaction. It returns false when the row was no longer pending.
func (r *InvitationsRepo) Accept(ctx context.Context, inv domain.Invitation, granteeID string, at time.Time) (bool, error) {
	accepted := false
	err := WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE invitations SET status = 'accepted', responded_by = $2, responded_at = $3 WHERE id = $1 AND status = 'pending'`,
			inv.ID, granteeID, at)
		if err != nil {
			return fmt.Errorf("update invitation: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		grant := domain.AccessGrant{Kind: inv.Kind, ResourceID: inv.ResourceID, GranteeID: granteeID, GrantedAt: at}
		if err := insertGrant(ctx, tx, grant); err != nil {
			return err
		}
		accepted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return accepted, nil
}

func insertGrant(ctx context.Context, tx DBTX, g domain.AccessGrant) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO access_grants (kind, resource_id, grantee_id, granted_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (kind, resource_id, grantee_id) DO NOTHING`,
		string(g.Kind), g.ResourceID, g.GranteeID, g.GrantedAt); err != nil {
		return fmt.Errorf("insert access grant: %w", err)
	}
	return nil
}

// Decline returns false when the row was no longer pending.
func (r *InvitationsRepo) Decline(ctx context.Context, inv domain.Invitation, identityID string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = 'declined', responded_by = $2, responded_at = $3 WHERE id = $1 AND status = 'pending'`,
		inv.ID, identityID, at)
	if err != nil {
		return false, fmt.Errorf("decline invitation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
