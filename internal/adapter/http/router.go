package http

import (
	"time"

	"career-coach/internal/adapter/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type AppConfig struct {
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp builds the fiber app with the middleware every route shares.
// Routes are added by Register.
func NewApp(cfg AppConfig, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "career-coach",
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          ErrorHandler(log),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(Metrics())
	app.Use(CORS())
	return app
}

func (h *Handler) Register(app *fiber.App, gate *auth.Gate) {
	app.Get("/healthz", h.Healthz)
	app.Get("/readyz", h.Readyz)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authed := RequireIdentity(gate)
	post := func(path string, handler fiber.Handler) {
		app.Post(path, authed, handler)
		app.All(path, MethodNotAllowed)
	}

	post("/analyze-resume", h.AnalyzeResume)
	post("/match-job", h.MatchJob)
	post("/generate-milestones", h.GenerateMilestones)
	post("/search-jobs", h.SearchJobs)
	post("/cover-letter", h.CoverLetter)

	post("/invite-collaborator", h.InviteCollaborator)
	post("/invite-mentor", h.InviteMentor)
	post("/accept-invitation", h.AcceptInvitation)
	post("/decline-invitation", h.DeclineInvitation)
	post("/export-analysis", h.ExportAnalysis)

	app.Get("/usage", authed, h.Usage)
}
