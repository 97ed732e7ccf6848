package http

import (
	"context"

	"career-coach/internal/domain"
	"career-coach/internal/usecase"
	"career-coach/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Coach interface {
	AnalyzeResume(ctx context.Context, id domain.Identity, in usecase.AnalyzeResumeInput) (*usecase.Outcome, error)
	MatchJob(ctx context.Context, id domain.Identity, in usecase.MatchJobInput) (*usecase.Outcome, error)
	GenerateMilestones(ctx context.Context, id domain.Identity, in usecase.GenerateMilestonesInput) (*usecase.Outcome, error)
	SearchJobs(ctx context.Context, id domain.Identity, in usecase.SearchJobsInput) (*usecase.Outcome, error)
	WriteCoverLetter(ctx context.Context, id domain.Identity, in usecase.CoverLetterInput) (*usecase.Outcome, error)
}

type Invitations interface {
	InviteCollaborator(ctx context.Context, id domain.Identity, planID, target string) (*domain.Invitation, error)
	InviteMentor(ctx context.Context, id domain.Identity, target string) (*domain.Invitation, error)
	Accept(ctx context.Context, id domain.Identity, token string) (*domain.Invitation, error)
	Decline(ctx context.Context, id domain.Identity, token string) (*domain.Invitation, error)
}

type Exporter interface {
	Export(ctx context.Context, id domain.Identity, resultID string) ([]byte, error)
}

type UsageReporter interface {
	Report(ctx context.Context, id domain.Identity) (*usecase.UsageReport, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	coach       Coach
	invitations Invitations
	exporter    Exporter
	usage       UsageReporter
	db          Pinger
	log         *zap.Logger
}

func NewHandler(coach Coach, inv Invitations, exp Exporter, usage UsageReporter, db Pinger, log *zap.Logger) *Handler {
	return &Handler{
		coach:       coach,
		invitations: inv,
		exporter:    exp,
		usage:       usage,
		db:          db,
		log:         log.With(zap.String("component", "http")),
	}
}

// parse decodes the JSON body into v. Any decode failure is a 400.
func parse(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return apperr.WithMessage(apperr.InvalidInput, "Invalid JSON body", err)
	}
	return nil
}

// taskResponse is the shape shared by every task endpoint: the validated
// result, its row id, and what is left of the caller's quota.
func taskResponse(c *fiber.Ctx, out *usecase.Outcome) error {
	return c.JSON(fiber.Map{
		"result":              out.Result,
		"resultId":            out.ResultID.String(),
		out.Task.RemainingKey: out.Remaining,
	})
}

func (h *Handler) AnalyzeResume(c *fiber.Ctx) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req usecase.AnalyzeResumeInput
	if err := parse(c, &req); err != nil {
		return err
	}
	out, err := h.coach.AnalyzeResume(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return taskResponse(c, out)
}

func (h *Handler) MatchJob(c *fiber.Ctx) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req usecase.MatchJobInput
	if err := parse(c, &req); err != nil {
		return err
	}
	out, err := h.coach.MatchJob(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return taskResponse(c, out)
}

func (h *Handler) GenerateMilestones(c *fiber.Ctx) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req usecase.GenerateMilestonesInput
	if err := parse(c, &req); err != nil {
		return err
	}
	out, err := h.coach.GenerateMilestones(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return taskResponse(c, out)
}

func (h *Handler) SearchJobs(c *fiber.Ctx) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req usecase.SearchJobsInput
	if err := parse(c, &req); err != nil {
		return err
	}
	out, err := h.coach.SearchJobs(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return taskResponse(c, out)
}

func (h *Handler) CoverLetter(c *fiber.Ctx) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req usecase.CoverLetterInput
	if err := parse(c, &req); err != nil {
		return err
	}
	out, err := h.coach.WriteCoverLetter(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return taskResponse(c, out)
}

type exportReq struct {
	AnalysisID string `json:"analysisId"`
}

func (h *Handler) ExportAnalysis(c *fiber.Ctx) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	var req exportReq
	if err := parse(c, &req); err != nil {
		return err
	}
	pdf, err := h.exporter.Export(c.UserContext(), id, req.AnalysisID)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="resume-analysis.pdf"`)
	return c.Send(pdf)
}

func (h *Handler) Usage(c *fiber.Ctx) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	report, err := h.usage.Report(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (h *Handler) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) Readyz(c *fiber.Ctx) error {
	if err := h.db.PingContext(c.UserContext()); err != nil {
		h.log.Warn("readiness check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
