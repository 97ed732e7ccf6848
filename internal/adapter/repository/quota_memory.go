package repository

import (
	"context"
	"sync"

	"career-coach/internal/domain"
)

// MemoryQuotaLedger is a process-local ledger for tests and single-node
// development runs.
type MemoryQuotaLedger struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryQuotaLedger() *MemoryQuotaLedger {
	return &MemoryQuotaLedger{counts: map[string]int{}}
}

func (l *MemoryQuotaLedger) CheckAndIncrement(_ context.Context, userID, feature, period string, limit int) (domain.QuotaDecision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := quotaKey(userID, feature, period)
	d := domain.QuotaDecision{Feature: feature, Period: period, Limit: limit, Count: l.counts[key]}
	if d.Count >= limit {
		return d, nil
	}
	l.counts[key]++
	d.Allowed = true
	d.Count = l.counts[key]
	return d, nil
}
