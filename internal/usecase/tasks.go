package usecase

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"career-coach/internal/domain"
	"career-coach/internal/model"
	"career-coach/pkg/ai/prompts"
	"career-coach/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxFieldRunes       = 200
	maxDescriptionRunes = 20000
	defaultSearchCount  = 10
	maxSearchCount      = 25
)

var (
	ResumeAnalysisTask = Task{
		Type: domain.TaskResumeAnalysis, Feature: "resume_analysis",
		Temperature: 0.2, MaxTokens: 2000, RemainingKey: "remainingAnalyses",
		LimitMessage: "You have used all resume analyses for this month",
	}
	JobMatchTask = Task{
		Type: domain.TaskJobMatch, Feature: "job_match",
		Temperature: 0.2, MaxTokens: 1500, RemainingKey: "remainingUses",
		LimitMessage: "You have used all job matches for this month",
	}
	MilestonesTask = Task{
		Type: domain.TaskMilestones, Feature: "milestone_generation",
		Temperature: 0.7, MaxTokens: 3000, RemainingKey: "remainingUses",
		LimitMessage: "You have used all milestone generations for this month",
	}
	JobSearchTask = Task{
		Type: domain.TaskJobSearch, Feature: "job_search",
		Temperature: 0.4, MaxTokens: 2500, RemainingKey: "remainingUses",
		LimitMessage: "You have used all job searches for this month",
	}
	CoverLetterTask = Task{
		Type: domain.TaskCoverLetter, Feature: "cover_letter",
		Temperature: 0.8, MaxTokens: 1200, RemainingKey: "remainingUses",
		LimitMessage: "You have used all cover letters for this month",
	}
)

// Tasks lists every quota-gated task.
var Tasks = []Task{ResumeAnalysisTask, JobMatchTask, MilestonesTask, JobSearchTask, CoverLetterTask}

type AnalyzeResumeInput struct {
	ResumePath string `json:"resumePath"`
	TargetRole string `json:"targetRole,omitempty"`
}

type MatchJobInput struct {
	ResumePath     string `json:"resumePath"`
	JobDescription string `json:"jobDescription,omitempty"`
	JobURL         string `json:"jobUrl,omitempty"`
}

type GenerateMilestonesInput struct {
	PlanID     string `json:"planId"`
	TargetRole string `json:"targetRole"`
	Weeks      int    `json:"weeks"`
	Focus      string `json:"focus,omitempty"`
}

type SearchJobsInput struct {
	TargetRole string `json:"targetRole"`
	Location   string `json:"location,omitempty"`
	Count      int    `json:"count,omitempty"`
}

type CoverLetterInput struct {
	ResumePath     string `json:"resumePath"`
	JobDescription string `json:"jobDescription"`
	Tone           string `json:"tone,omitempty"`
}

// Coach exposes one method per task. Each validates its input and hands a
// prepared Run to the TaskRunner.
type Coach struct {
	runner    *TaskRunner
	plans     PlanStore
	reminders ReminderStore
	jobs      *JobCache
	log       *zap.Logger
	now       func() time.Time
}

func NewCoach(runner *TaskRunner, plans PlanStore, reminders ReminderStore, jobs *JobCache, log *zap.Logger) *Coach {
	return &Coach{
		runner:    runner,
		plans:     plans,
		reminders: reminders,
		jobs:      jobs,
		log:       log.With(zap.String("component", "coach")),
		now:       time.Now,
	}
}

func (c *Coach) AnalyzeResume(ctx context.Context, id domain.Identity, in AnalyzeResumeInput) (*Outcome, error) {
	if in.ResumePath == "" {
		return nil, apperr.Invalid("resumePath is required")
	}
	if err := checkLength("targetRole", in.TargetRole, maxFieldRunes); err != nil {
		return nil, err
	}
	role := orDefault(in.TargetRole, "a role matching the candidate's experience")
	return c.runner.Run(ctx, Run{
		Task:         ResumeAnalysisTask,
		Identity:     id,
		ArtifactPath: in.ResumePath,
		Input:        in,
		Prompt: func(text string) string {
			return prompts.ResumeAnalysis.Render(prompts.ResumeAnalysisInput{TargetRole: role, ResumeText: text})
		},
		Decode: func(raw []byte) (interface{}, error) { return model.DecodeResumeAnalysis(raw) },
	})
}

func (c *Coach) MatchJob(ctx context.Context, id domain.Identity, in MatchJobInput) (*Outcome, error) {
	if !id.Valid() {
		return nil, apperr.Unauthorized(nil)
	}
	// the cached posting lookup is I/O, so ownership goes first
	if err := ValidateArtifactPath(id, in.ResumePath); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.JobDescription)
	if description == "" && in.JobURL == "" {
		return nil, apperr.Invalid("jobDescription or jobUrl is required")
	}
	if err := checkLength("jobDescription", description, maxDescriptionRunes); err != nil {
		return nil, err
	}
	if description == "" {
		job, err := c.jobs.Lookup(ctx, in.JobURL)
		if err != nil {
			return nil, err
		}
		description = fmt.Sprintf("%s at %s (%s)\n%s", job.Title, job.Company, job.Location, job.Summary)
	}
	return c.runner.Run(ctx, Run{
		Task:         JobMatchTask,
		Identity:     id,
		ArtifactPath: in.ResumePath,
		Input:        in,
		Prompt: func(text string) string {
			return prompts.JobMatch.Render(prompts.JobMatchInput{ResumeText: text, JobDescription: description})
		},
		Decode: func(raw []byte) (interface{}, error) { return model.DecodeJobMatch(raw) },
	})
}

func (c *Coach) GenerateMilestones(ctx context.Context, id domain.Identity, in GenerateMilestonesInput) (*Outcome, error) {
	planID, err := uuid.Parse(in.PlanID)
	if err != nil {
		return nil, apperr.Invalid("planId must be a valid id")
	}
	if strings.TrimSpace(in.TargetRole) == "" {
		return nil, apperr.Invalid("targetRole is required")
	}
	if err := checkLength("targetRole", in.TargetRole, maxFieldRunes); err != nil {
		return nil, err
	}
	if err := checkLength("focus", in.Focus, maxFieldRunes); err != nil {
		return nil, err
	}
	if in.Weeks < 1 || in.Weeks > model.MaxPlanWeeks {
		return nil, apperr.Invalid(fmt.Sprintf("weeks must be between 1 and %d", model.MaxPlanWeeks))
	}
	return c.runner.Run(ctx, Run{
		Task:     MilestonesTask,
		Identity: id,
		PlanID:   planID,
		Input:    in,
		Prompt: func(string) string {
			return prompts.Milestones.Render(prompts.MilestonesInput{
				TargetRole: in.TargetRole,
				Weeks:      in.Weeks,
				Focus:      orDefault(in.Focus, "none"),
			})
		},
		Decode: func(raw []byte) (interface{}, error) { return model.DecodeMilestones(raw, in.Weeks) },
		AfterSave: func(ctx context.Context, resultID uuid.UUID, out interface{}) error {
			return c.savePlan(ctx, id, planID, resultID, out.(*model.MilestonePlan))
		},
	})
}

// savePlan stores the generated weeks and schedules one reminder per week,
// the first due immediately.
func (c *Coach) savePlan(ctx context.Context, id domain.Identity, planID, resultID uuid.UUID, plan *model.MilestonePlan) error {
	start := c.now().UTC()
	ms := make([]domain.Milestone, 0, len(plan.Milestones))
	rs := make([]domain.Reminder, 0, len(plan.Milestones))
	for _, m := range plan.Milestones {
		due := start.Add(time.Duration(m.Week-1) * 7 * 24 * time.Hour)
		ms = append(ms, domain.Milestone{PlanID: planID, Week: m.Week, Title: m.Title, Tasks: m.Tasks, DueAt: due})
		if id.Email == "" {
			continue
		}
		rs = append(rs, domain.Reminder{
			ID:      uuid.New(),
			UserID:  id.ID,
			Email:   id.Email,
			Subject: fmt.Sprintf("Week %d: %s", m.Week, m.Title),
			Body:    reminderBody(m),
			DueAt:   due,
		})
	}
	if err := c.plans.SaveMilestones(ctx, resultID, ms); err != nil {
		return err
	}
	if len(rs) == 0 {
		return nil
	}
	return c.reminders.Schedule(ctx, rs)
}

func reminderBody(m model.WeeklyMilestone) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Week %d: %s</h2><ul>", m.Week, html.EscapeString(m.Title))
	for _, t := range m.Tasks {
		fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(t))
	}
	b.WriteString("</ul>")
	return b.String()
}

func (c *Coach) SearchJobs(ctx context.Context, id domain.Identity, in SearchJobsInput) (*Outcome, error) {
	if strings.TrimSpace(in.TargetRole) == "" {
		return nil, apperr.Invalid("targetRole is required")
	}
	if err := checkLength("targetRole", in.TargetRole, maxFieldRunes); err != nil {
		return nil, err
	}
	if err := checkLength("location", in.Location, maxFieldRunes); err != nil {
		return nil, err
	}
	count := in.Count
	if count <= 0 {
		count = defaultSearchCount
	}
	if count > maxSearchCount {
		count = maxSearchCount
	}
	return c.runner.Run(ctx, Run{
		Task:     JobSearchTask,
		Identity: id,
		Input:    in,
		Prompt: func(string) string {
			return prompts.JobSearch.Render(prompts.JobSearchInput{
				TargetRole: in.TargetRole,
				Location:   orDefault(in.Location, "remote"),
				Count:      count,
			})
		},
		Decode: func(raw []byte) (interface{}, error) { return model.DecodeJobSearch(raw) },
		AfterSave: func(ctx context.Context, _ uuid.UUID, out interface{}) error {
			return c.jobs.RememberAll(ctx, out.(*model.JobSearch).Jobs)
		},
	})
}

func (c *Coach) WriteCoverLetter(ctx context.Context, id domain.Identity, in CoverLetterInput) (*Outcome, error) {
	if in.ResumePath == "" {
		return nil, apperr.Invalid("resumePath is required")
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		return nil, apperr.Invalid("jobDescription is required")
	}
	if err := checkLength("jobDescription", in.JobDescription, maxDescriptionRunes); err != nil {
		return nil, err
	}
	if err := checkLength("tone", in.Tone, maxFieldRunes); err != nil {
		return nil, err
	}
	return c.runner.Run(ctx, Run{
		Task:         CoverLetterTask,
		Identity:     id,
		ArtifactPath: in.ResumePath,
		Input:        in,
		Prompt: func(text string) string {
			return prompts.CoverLetter.Render(prompts.CoverLetterInput{
				ResumeText:     text,
				JobDescription: in.JobDescription,
				Tone:           orDefault(in.Tone, "professional"),
			})
		},
		Decode: func(raw []byte) (interface{}, error) { return model.DecodeCoverLetter(raw) },
	})
}

func checkLength(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return apperr.Invalid(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
