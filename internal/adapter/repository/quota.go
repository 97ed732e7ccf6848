package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"career-coach/internal/domain"
)

// PostgresQuotaLedger keeps usage_counters rows keyed by (user, feature,
// period).
type PostgresQuotaLedger struct {
	db DBTX
}

func NewPostgresQuotaLedger(db DBTX) *PostgresQuotaLedger {
	return &PostgresQuotaLedger{db: db}
}

// The conditional upsert is the whole check-and-increment: a row at the
// limit is not updated and returns nothing, so concurrent callers are
// serialized by the row lock and at most limit of them get a count back.
const incrementSQL = `INSERT INTO usage_counters (user_id, feature, period, count)
VALUES ($1, $2, $3, 1)
ON CONFLICT (user_id, feature, period)
DO UPDATE SET count = usage_counters.count + 1, updated_at = now()
WHERE usage_counters.count < $4
RETURNING count`

func (l *PostgresQuotaLedger) CheckAndIncrement(ctx context.Context, userID, feature, period string, limit int) (domain.QuotaDecision, error) {
	d := domain.QuotaDecision{Feature: feature, Period: period, Limit: limit}
	if limit <= 0 {
		count, err := l.current(ctx, userID, feature, period)
		if err != nil {
			return d, err
		}
		d.Count = count
		return d, nil
	}

	var count int
	err := l.db.QueryRowContext(ctx, incrementSQL, userID, feature, period, limit).Scan(&count)
	switch {
	case err == nil:
		d.Allowed = true
		d.Count = count
		return d, nil
	case errors.Is(err, sql.ErrNoRows):
		// denied; the read below only reports the count
		d.Count = limit
		if count, err := l.current(ctx, userID, feature, period); err == nil {
			d.Count = count
		}
		return d, nil
	default:
		return d, fmt.Errorf("increment usage: %w", err)
	}
}

func (l *PostgresQuotaLedger) current(ctx context.Context, userID, feature, period string) (int, error) {
	var count int
	err := l.db.QueryRowContext(ctx,
		`SELECT count FROM usage_counters WHERE user_id = $1 AND feature = $2 AND period = $3`,
		userID, feature, period).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read usage: %w", err)
	}
	return count, nil
}
