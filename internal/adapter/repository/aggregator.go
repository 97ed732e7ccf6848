package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// UsageSummary combines a user's counters for one period with their most
// recent task results.
type UsageSummary struct {
	Counts map[string]int `json:"counts"`
	Recent []RecentResult `json:"recent"`
}

type RecentResult struct {
	ID        string `json:"id"`
	TaskType  string `json:"task_type"`
	CreatedAt string `json:"created_at"`
}

// queryJSON runs a SQL that returns a single json value and unmarshals it.
func queryJSON(ctx context.Context, db DBTX, query string, out interface{}, args ...interface{}) error {
	var raw []byte
	if err := db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

type UsageRepo struct {
	db DBTX
}

func NewUsageRepo(db DBTX) *UsageRepo {
	return &UsageRepo{db: db}
}

func (r *UsageRepo) UsageForUser(ctx context.Context, userID, period string, recent int) (*UsageSummary, error) {
	sum := &UsageSummary{Counts: map[string]int{}, Recent: []RecentResult{}}

	if err := queryJSON(ctx, r.db,
		`SELECT coalesce(json_object_agg(feature, count), '{}') FROM usage_counters WHERE user_id = $1 AND period = $2`,
		&sum.Counts, userID, period); err != nil {
		return nil, fmt.Errorf("usage counters: %w", err)
	}

	if err := queryJSON(ctx, r.db,
		`SELECT coalesce(json_agg(json_build_object('id', t.id, 'task_type', t.task_type, 'created_at', t.created_at)), '[]')
		FROM (SELECT id, task_type, created_at FROM task_results WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2) t`,
		&sum.Recent, userID, recent); err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	return sum, nil
}
