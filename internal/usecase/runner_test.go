package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"career-coach/internal/adapter/repository"
	"career-coach/internal/domain"
	"career-coach/internal/model"
	ai "career-coach/pkg/ai"
	"career-coach/pkg/apperr"
	"career-coach/pkg/pdftext"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const analysisReply = "```json\n{\"candidate_name\":\"Ada\",\"ats_score\":104,\"summary\":\"Solid.\"}\n```"

var user = domain.Identity{ID: "U", Email: "ada@example.com"}

type harness struct {
	ledger    *countingLedger
	fetcher   *fakeFetcher
	extractor fakeExtractor
	llm       *fakeLLM
	results   *fakeResults
	plans     *fakePlans
	reminders *fakeReminders
	jobs      *fakeJobs
	limits    map[string]int
}

func newHarness() *harness {
	return &harness{
		ledger:    &countingLedger{inner: repository.NewMemoryQuotaLedger()},
		fetcher:   &fakeFetcher{data: []byte("%PDF-1.4")},
		extractor: fakeExtractor{text: strings.Repeat("experienced engineer ", 10)},
		llm:       &fakeLLM{reply: analysisReply},
		results:   &fakeResults{},
		plans:     &fakePlans{owners: map[uuid.UUID]string{}},
		reminders: &fakeReminders{},
		jobs:      &fakeJobs{},
		limits: map[string]int{
			"resume_analysis": 2, "job_match": 5, "milestone_generation": 5, "job_search": 5, "cover_letter": 5,
		},
	}
}

func (h *harness) coach() *Coach {
	runner := NewTaskRunner(h.ledger, func(f string) int { return h.limits[f] }, h.fetcher, h.extractor,
		h.llm, h.results, h.plans, zap.NewNop())
	runner.now = func() time.Time { return fixedNow }
	c := NewCoach(runner, h.plans, h.reminders, NewJobCache(h.jobs), zap.NewNop())
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestAnalyzeResume_QuotaScenario(t *testing.T) {
	h := newHarness()
	c := h.coach()
	in := AnalyzeResumeInput{ResumePath: "U/resume.pdf", TargetRole: "Backend engineer"}

	out, err := c.AnalyzeResume(context.Background(), user, in)
	require.NoError(t, err)
	assert.True(t, out.Decision.Allowed)
	assert.Equal(t, 1, out.Decision.Count)
	assert.Equal(t, 1, out.Remaining)
	assert.Equal(t, "2025-06", out.Decision.Period)

	out, err = c.AnalyzeResume(context.Background(), user, in)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Decision.Count)
	assert.Equal(t, 0, out.Remaining)

	_, err = c.AnalyzeResume(context.Background(), user, in)
	assert.Equal(t, apperr.RateLimited, apperr.KindOf(err))

	d, err := h.ledger.inner.CheckAndIncrement(context.Background(), "U", "resume_analysis", "2025-06", 2)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 2, d.Count)

	assert.Len(t, h.results.saved, 2)
	assert.Len(t, h.fetcher.calls, 2, "denied request must not fetch")
}

func TestAnalyzeResume_OutputIsValidatedAndClamped(t *testing.T) {
	h := newHarness()

	out, err := h.coach().AnalyzeResume(context.Background(), user, AnalyzeResumeInput{ResumePath: "U/resume.pdf"})
	require.NoError(t, err)

	analysis := out.Result.(*model.ResumeAnalysis)
	assert.Equal(t, 100, analysis.ATSScore)
	assert.Equal(t, "Ada", analysis.CandidateName)
	assert.Equal(t, []string{}, analysis.Strengths)

	require.Len(t, h.llm.requests, 1)
	req := h.llm.requests[0]
	assert.Equal(t, "resume_analysis", req.Task)
	assert.Equal(t, 0.2, req.Temperature)
	assert.Equal(t, 2000, req.MaxTokens)
	assert.Contains(t, req.Prompt, "experienced engineer")

	saved := h.results.saved[0]
	assert.Equal(t, out.ResultID, saved.ID)
	assert.Equal(t, "U", saved.UserID)
	assert.JSONEq(t, `{"resumePath":"U/resume.pdf"}`, string(saved.Input))
	assert.Contains(t, string(saved.Output), `"ats_score":100`)
}

func TestRun_ForeignPathRejectedBeforeAnyIO(t *testing.T) {
	for _, p := range []string{"someone-else/resume.pdf", "u/resume.pdf", "/U/resume.pdf", "victim/../U/cv.pdf", "victim", "victim//cv.pdf"} {
		h := newHarness()
		_, err := h.coach().AnalyzeResume(context.Background(), user, AnalyzeResumeInput{ResumePath: p})
		require.Error(t, err, p)
		assert.Equal(t, apperr.Forbidden, apperr.KindOf(err), p)
		assert.Zero(t, h.ledger.calls, p)
		assert.Empty(t, h.fetcher.calls, p)
		assert.Empty(t, h.llm.requests, p)
	}
}

func TestRun_Failures(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(h *harness)
		kind    apperr.Kind
		charged bool
	}{
		{"ledger down", func(h *harness) { h.ledger.err = errors.New("conn refused") }, apperr.ServiceUnavailable, false},
		{"artifact missing", func(h *harness) { h.fetcher.err = apperr.Missing("File not found") }, apperr.NotFound, true},
		{"storage down", func(h *harness) { h.fetcher.err = errors.New("dial tcp") }, apperr.ServiceUnavailable, true},
		{"scanned pdf", func(h *harness) { h.extractor.err = pdftext.ErrNoText }, apperr.InvalidInput, true},
		{"llm down", func(h *harness) { h.llm.err = ai.ErrUnavailable }, apperr.ServiceUnavailable, true},
		{"llm empty", func(h *harness) { h.llm.err = ai.ErrEmptyResponse }, apperr.UpstreamInvalidResponse, true},
		{"not json", func(h *harness) { h.llm.reply = "Sure! Here is your analysis." }, apperr.UpstreamInvalidResponse, true},
		{"missing score", func(h *harness) { h.llm.reply = `{"candidate_name":"Ada"}` }, apperr.UpstreamInvalidResponse, true},
		{"persist fails", func(h *harness) { h.results.err = errors.New("disk full") }, apperr.ServiceUnavailable, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			tc.setup(h)

			_, err := h.coach().AnalyzeResume(context.Background(), user, AnalyzeResumeInput{ResumePath: "U/resume.pdf"})
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
			assert.NotContains(t, apperr.PublicMessage(err), "disk full")

			if !tc.charged {
				return
			}
			// the increment is never rolled back
			d, _ := h.ledger.inner.CheckAndIncrement(context.Background(), "U", "resume_analysis", "2025-06", 2)
			assert.Equal(t, 2, d.Count)
		})
	}
}

func TestRun_ScannedPDFCarriesReuploadHint(t *testing.T) {
	h := newHarness()
	h.extractor.err = pdftext.ErrNoText

	_, err := h.coach().AnalyzeResume(context.Background(), user, AnalyzeResumeInput{ResumePath: "U/resume.pdf"})
	assert.Equal(t, reuploadHint, apperr.PublicMessage(err))
}

func TestRun_AnonymousIdentity(t *testing.T) {
	h := newHarness()
	_, err := h.coach().AnalyzeResume(context.Background(), domain.Identity{}, AnalyzeResumeInput{ResumePath: "U/resume.pdf"})
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
}

func TestGenerateMilestones(t *testing.T) {
	planID := uuid.New()
	h := newHarness()
	h.plans.owners[planID] = "U"
	h.llm.reply = `{"milestones":[
		{"week":1,"title":"Audit skills","tasks":["list gaps"]},
		{"week":9,"title":"Apply","tasks":["send 5 applications"]}]}`

	out, err := h.coach().GenerateMilestones(context.Background(), user,
		GenerateMilestonesInput{PlanID: planID.String(), TargetRole: "Data engineer", Weeks: 2})
	require.NoError(t, err)

	plan := out.Result.(*model.MilestonePlan)
	assert.Equal(t, 2, plan.Milestones[1].Week)
	assert.Equal(t, 0.7, h.llm.requests[0].Temperature)
	assert.Contains(t, h.llm.requests[0].Prompt, "2-week plan")

	require.Len(t, h.plans.milestones, 2)
	assert.Equal(t, fixedNow, h.plans.milestones[0].DueAt)
	assert.Equal(t, fixedNow.Add(7*24*time.Hour), h.plans.milestones[1].DueAt)

	require.Len(t, h.reminders.scheduled, 2)
	assert.Equal(t, "ada@example.com", h.reminders.scheduled[0].Email)
	assert.Equal(t, "Week 2: Apply", h.reminders.scheduled[1].Subject)
	assert.Contains(t, h.reminders.scheduled[1].Body, "send 5 applications")
}

func TestGenerateMilestones_Ownership(t *testing.T) {
	mine, theirs := uuid.New(), uuid.New()
	h := newHarness()
	h.plans.owners[mine] = "U"
	h.plans.owners[theirs] = "someone-else"
	c := h.coach()

	_, err := c.GenerateMilestones(context.Background(), user,
		GenerateMilestonesInput{PlanID: theirs.String(), TargetRole: "x", Weeks: 4})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = c.GenerateMilestones(context.Background(), user,
		GenerateMilestonesInput{PlanID: uuid.NewString(), TargetRole: "x", Weeks: 4})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = c.GenerateMilestones(context.Background(), user,
		GenerateMilestonesInput{PlanID: mine.String(), TargetRole: "x", Weeks: 53})
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	assert.Zero(t, h.ledger.calls)
}

func TestGenerateMilestones_PlanSaveFailureStillReturnsResult(t *testing.T) {
	planID := uuid.New()
	h := newHarness()
	h.plans.owners[planID] = "U"
	h.plans.saveErr = errors.New("fk violation")
	h.llm.reply = `{"milestones":[{"week":1,"title":"Start","tasks":[]}]}`

	out, err := h.coach().GenerateMilestones(context.Background(), user,
		GenerateMilestonesInput{PlanID: planID.String(), TargetRole: "x", Weeks: 1})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, out.ResultID)
	assert.Empty(t, h.reminders.scheduled)
}

func TestSearchJobs_CachesListings(t *testing.T) {
	h := newHarness()
	h.llm.reply = `{"jobs":[
		{"title":"SRE","company":"Acme","url":"https://Jobs.Acme.com/sre/?utm_source=x"},
		{"title":"SRE","company":"Acme","url":"https://jobs.acme.com/sre"},
		{"title":"Broken","company":"Nope","url":"ftp://example.com/job"}]}`

	out, err := h.coach().SearchJobs(context.Background(), user, SearchJobsInput{TargetRole: "SRE", Count: 100})
	require.NoError(t, err)

	assert.Len(t, out.Result.(*model.JobSearch).Jobs, 3)
	assert.Len(t, h.jobs.byURL, 1)
	assert.Contains(t, h.jobs.byURL, "https://jobs.acme.com/sre")
	assert.Contains(t, h.llm.requests[0].Prompt, "up to 25")
	assert.Equal(t, "remainingUses", out.Task.RemainingKey)
}

func TestMatchJob_UsesCachedPosting(t *testing.T) {
	h := newHarness()
	h.jobs.byURL = map[string]domain.ExternalJob{
		"https://jobs.acme.com/sre": {Title: "SRE", Company: "Acme", Location: "Remote", Summary: "Run Kubernetes."},
	}
	h.llm.reply = `{"match_score":-4}`
	c := h.coach()

	out, err := c.MatchJob(context.Background(), user, MatchJobInput{ResumePath: "U/cv.PDF", JobURL: "https://jobs.acme.com/sre?trk=feed"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Result.(*model.JobMatch).MatchScore)
	assert.Contains(t, h.llm.requests[0].Prompt, "Run Kubernetes.")

	_, err = c.MatchJob(context.Background(), user, MatchJobInput{ResumePath: "U/cv.pdf", JobURL: "https://jobs.acme.com/other"})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = c.MatchJob(context.Background(), user, MatchJobInput{ResumePath: "U/cv.pdf"})
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestMatchJob_ForeignPathBeforeJobLookup(t *testing.T) {
	for _, cached := range []bool{false, true} {
		h := newHarness()
		if cached {
			h.jobs.byURL = map[string]domain.ExternalJob{"https://jobs.acme.com/x": {Title: "SRE", Company: "Acme"}}
		}

		_, err := h.coach().MatchJob(context.Background(), user,
			MatchJobInput{ResumePath: "victim/cv.pdf", JobURL: "https://jobs.acme.com/x"})

		assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
		assert.Zero(t, h.jobs.lookups)
		assert.Zero(t, h.ledger.calls)
		assert.Empty(t, h.fetcher.calls)
	}
}

func TestWriteCoverLetter(t *testing.T) {
	h := newHarness()
	h.llm.reply = `{"letter":"Dear hiring manager"}`

	out, err := h.coach().WriteCoverLetter(context.Background(), user,
		CoverLetterInput{ResumePath: "U/cv.pdf", JobDescription: "Build APIs"})
	require.NoError(t, err)
	assert.Equal(t, "Dear hiring manager", out.Result.(*model.CoverLetter).Letter)
	assert.Contains(t, h.llm.requests[0].Prompt, "professional tone")
	assert.Equal(t, 0.8, h.llm.requests[0].Temperature)

	_, err = h.coach().WriteCoverLetter(context.Background(), user,
		CoverLetterInput{ResumePath: "U/cv.pdf", JobDescription: strings.Repeat("x", maxDescriptionRunes+1)})
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestPeriod(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	assert.Equal(t, "2025-05", Period(time.Date(2025, 6, 1, 1, 0, 0, 0, loc)))
	assert.Equal(t, "2025-06", Period(fixedNow))
}
