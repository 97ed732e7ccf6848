package usecase

import (
	"context"
	"time"

	"career-coach/internal/adapter/email"
	"career-coach/internal/metrics"

	"go.uber.org/zap"
)

type SweepResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// ReminderSweeper sends due milestone reminders. Rows are claimed before
// sending so concurrent sweeps never mail the same reminder twice.
type ReminderSweeper struct {
	store  ReminderStore
	sender email.Sender
	batch  int
	log    *zap.Logger
	now    func() time.Time
}

func NewReminderSweeper(store ReminderStore, sender email.Sender, batch int, log *zap.Logger) *ReminderSweeper {
	if batch <= 0 {
		batch = 100
	}
	return &ReminderSweeper{
		store:  store,
		sender: sender,
		batch:  batch,
		log:    log.With(zap.String("component", "reminders")),
		now:    time.Now,
	}
}

// Sweep processes one batch. A failed send puts the reminder back on the
// due-list and the sweep continues with the next one.
func (s *ReminderSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	due, err := s.store.ClaimDue(ctx, s.now().UTC(), s.batch)
	if err != nil {
		return res, err
	}

	for _, rem := range due {
		err := s.sender.Send(ctx, email.Message{To: rem.Email, Subject: rem.Subject, HTML: rem.Body})
		if err == nil {
			res.Sent++
			metrics.RemindersSentTotal.WithLabelValues("sent").Inc()
			continue
		}
		res.Failed++
		metrics.RemindersSentTotal.WithLabelValues("failed").Inc()
		s.log.Warn("send reminder", zap.String("reminder_id", rem.ID.String()), zap.Error(err))
		if err := s.store.Release(ctx, rem); err != nil {
			s.log.Error("release reminder", zap.String("reminder_id", rem.ID.String()), zap.Error(err))
		}
	}

	s.log.Info("reminder sweep finished", zap.Int("claimed", len(due)), zap.Int("sent", res.Sent), zap.Int("failed", res.Failed))
	return res, nil
}
