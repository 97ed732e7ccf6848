package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"career-coach/internal/domain"
	"career-coach/internal/metrics"
	ai "career-coach/pkg/ai"
	"career-coach/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const reuploadHint = "Could not read text from this PDF. Please upload a text-based (not scanned) PDF."

// Task describes one quota-gated LLM task type.
type Task struct {
	Type         domain.TaskType
	Feature      string
	Temperature  float64
	MaxTokens    int
	RemainingKey string
	LimitMessage string
}

// Run is a single invocation prepared by a task method. ArtifactPath and
// PlanID are optional; Prompt receives the extracted artifact text, or ""
// when there is no artifact.
type Run struct {
	Task         Task
	Identity     domain.Identity
	ArtifactPath string
	PlanID       uuid.UUID
	Input        interface{}
	Prompt       func(text string) string
	Decode       func(raw []byte) (interface{}, error)
	// AfterSave runs once the result row exists. Its failures are logged
	// and never fail the request.
	AfterSave func(ctx context.Context, resultID uuid.UUID, output interface{}) error
}

type Outcome struct {
	Task      Task
	Result    interface{}
	ResultID  uuid.UUID
	Decision  domain.QuotaDecision
	Remaining int
}

// TaskRunner executes the fixed request pipeline: ownership, quota, fetch,
// extract, model call, validation, persistence. Each step's failure ends the
// request; nothing already done is undone.
type TaskRunner struct {
	ledger    QuotaLedger
	limits    Limits
	fetcher   ArtifactFetcher
	extractor TextExtractor
	llm       Completer
	results   ResultStore
	plans     PlanStore
	log       *zap.Logger
	now       func() time.Time
}

func NewTaskRunner(ledger QuotaLedger, limits Limits, fetcher ArtifactFetcher, extractor TextExtractor,
	llm Completer, results ResultStore, plans PlanStore, log *zap.Logger) *TaskRunner {
	return &TaskRunner{
		ledger:    ledger,
		limits:    limits,
		fetcher:   fetcher,
		extractor: extractor,
		llm:       llm,
		results:   results,
		plans:     plans,
		log:       log.With(zap.String("component", "runner")),
		now:       time.Now,
	}
}

func (r *TaskRunner) Run(ctx context.Context, run Run) (*Outcome, error) {
	if !run.Identity.Valid() {
		return nil, apperr.Unauthorized(nil)
	}
	log := r.log.With(zap.String("task", string(run.Task.Type)), zap.String("user_id", run.Identity.ID))

	if run.ArtifactPath != "" {
		if err := ValidateArtifactPath(run.Identity, run.ArtifactPath); err != nil {
			return nil, err
		}
	}
	if run.PlanID != uuid.Nil {
		if err := CheckPlanOwner(ctx, r.plans, run.Identity, run.PlanID); err != nil {
			return nil, err
		}
	}

	decision, err := r.ledger.CheckAndIncrement(ctx, run.Identity.ID, run.Task.Feature, Period(r.now()), r.limits(run.Task.Feature))
	if err != nil {
		log.Error("quota ledger", zap.Error(err))
		return nil, apperr.Unavailable(err)
	}
	metrics.QuotaDecisionsTotal.WithLabelValues(run.Task.Feature, strconv.FormatBool(decision.Allowed)).Inc()
	if !decision.Allowed {
		log.Info("quota exhausted", zap.Int("count", decision.Count), zap.Int("limit", decision.Limit))
		return nil, apperr.Limited(run.Task.LimitMessage)
	}

	var text string
	if run.ArtifactPath != "" {
		data, err := r.fetcher.Fetch(ctx, run.ArtifactPath)
		if err != nil {
			return nil, classify(err)
		}
		res, err := r.extractor.Extract(data)
		if err != nil {
			log.Info("text extraction failed", zap.Int("bytes", len(data)), zap.Error(err))
			return nil, apperr.WithMessage(apperr.InvalidInput, reuploadHint, err)
		}
		log.Debug("text extracted", zap.String("strategy", res.Strategy),
			zap.Int("pages", res.Pages), zap.Int("chars", len(res.Text)))
		text = res.Text
	}

	raw, err := r.llm.Complete(ctx, ai.Request{
		Task:        string(run.Task.Type),
		Prompt:      run.Prompt(text),
		Temperature: run.Task.Temperature,
		MaxTokens:   run.Task.MaxTokens,
	})
	switch {
	case errors.Is(err, ai.ErrEmptyResponse):
		metrics.LLMCallsTotal.WithLabelValues(string(run.Task.Type), "invalid_output").Inc()
		return nil, apperr.BadUpstream(err)
	case err != nil:
		metrics.LLMCallsTotal.WithLabelValues(string(run.Task.Type), "unavailable").Inc()
		return nil, apperr.Unavailable(err)
	}

	output, err := run.Decode([]byte(ai.StripFences(raw)))
	if err != nil {
		metrics.LLMCallsTotal.WithLabelValues(string(run.Task.Type), "invalid_output").Inc()
		log.Warn("model output rejected", zap.Error(err))
		return nil, apperr.BadUpstream(err)
	}
	metrics.LLMCallsTotal.WithLabelValues(string(run.Task.Type), "ok").Inc()

	result, err := r.persist(ctx, run, output)
	if err != nil {
		// the quota increment stands
		log.Error("persist result", zap.Error(err))
		return nil, apperr.Unavailable(err)
	}

	if run.AfterSave != nil {
		if err := run.AfterSave(ctx, result.ID, output); err != nil {
			log.Warn("post-save step failed", zap.String("result_id", result.ID.String()), zap.Error(err))
		}
	}

	return &Outcome{
		Task:      run.Task,
		Result:    output,
		ResultID:  result.ID,
		Decision:  decision,
		Remaining: decision.Remaining(),
	}, nil
}

func (r *TaskRunner) persist(ctx context.Context, run Run, output interface{}) (domain.TaskResult, error) {
	res := domain.TaskResult{
		ID:        uuid.New(),
		UserID:    run.Identity.ID,
		TaskType:  run.Task.Type,
		CreatedAt: r.now().UTC(),
	}
	in, err := json.Marshal(run.Input)
	if err != nil {
		return res, err
	}
	out, err := json.Marshal(output)
	if err != nil {
		return res, err
	}
	res.Input, res.Output = in, out
	return res, r.results.SaveResult(ctx, res)
}

// classify keeps errors that already carry a kind and treats the rest as a
// dependency failure.
func classify(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Unavailable(err)
}
