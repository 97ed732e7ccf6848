package usecase

import (
	"context"
	"time"

	"career-coach/internal/adapter/repository"
	"career-coach/internal/domain"
	"career-coach/pkg/apperr"

	"go.uber.org/zap"
)

const recentResults = 10

type FeatureUsage struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

type UsageReport struct {
	Period   string                    `json:"period"`
	Features map[string]FeatureUsage   `json:"features"`
	Recent   []repository.RecentResult `json:"recent"`
}

// Usage reports the caller's counters for the current period. It reads
// only; nothing here takes part in quota decisions.
type Usage struct {
	reader UsageReader
	limits Limits
	log    *zap.Logger
	now    func() time.Time
}

func NewUsage(reader UsageReader, limits Limits, log *zap.Logger) *Usage {
	return &Usage{reader: reader, limits: limits, log: log.With(zap.String("component", "usage")), now: time.Now}
}

func (u *Usage) Report(ctx context.Context, id domain.Identity) (*UsageReport, error) {
	period := Period(u.now())
	sum, err := u.reader.UsageForUser(ctx, id.ID, period, recentResults)
	if err != nil {
		u.log.Error("usage summary", zap.String("user_id", id.ID), zap.Error(err))
		return nil, apperr.Unavailable(err)
	}

	rep := &UsageReport{Period: period, Features: map[string]FeatureUsage{}, Recent: sum.Recent}
	for _, t := range Tasks {
		used := sum.Counts[t.Feature]
		limit := u.limits(t.Feature)
		d := domain.QuotaDecision{Count: used, Limit: limit}
		rep.Features[t.Feature] = FeatureUsage{Used: used, Limit: limit, Remaining: d.Remaining()}
	}
	return rep, nil
}
