package usecase

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"

	"career-coach/internal/domain"
	"career-coach/internal/model"
	"career-coach/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var analysisTemplate = template.Must(template.ParseFS(templateFS, "templates/analysis.html"))

// Exporter renders a stored resume analysis to PDF for its owner.
type Exporter struct {
	results  ResultStore
	renderer Renderer
	log      *zap.Logger
}

func NewExporter(results ResultStore, renderer Renderer, log *zap.Logger) *Exporter {
	return &Exporter{results: results, renderer: renderer, log: log.With(zap.String("component", "export"))}
}

type analysisView struct {
	Analysis  *model.ResumeAnalysis
	CreatedAt string
}

func (e *Exporter) Export(ctx context.Context, id domain.Identity, resultID string) ([]byte, error) {
	rid, err := uuid.Parse(resultID)
	if err != nil {
		return nil, apperr.Invalid("analysisId must be a valid id")
	}
	res, err := CheckResultOwner(ctx, e.results, id, rid)
	if err != nil {
		return nil, err
	}
	if res.TaskType != domain.TaskResumeAnalysis {
		return nil, apperr.Invalid("Only resume analyses can be exported")
	}

	var analysis model.ResumeAnalysis
	if err := json.Unmarshal(res.Output, &analysis); err != nil {
		e.log.Error("decode stored analysis", zap.String("result_id", rid.String()), zap.Error(err))
		return nil, apperr.Unavailable(err)
	}

	var buf bytes.Buffer
	if err := analysisTemplate.Execute(&buf, analysisView{
		Analysis:  &analysis,
		CreatedAt: res.CreatedAt.Format("January 2, 2006"),
	}); err != nil {
		return nil, apperr.Unavailable(err)
	}

	pdf, err := e.renderer.RenderHTMLToPDF(ctx, buf.String())
	if err != nil {
		e.log.Error("render analysis pdf", zap.String("result_id", rid.String()), zap.Error(err))
		return nil, apperr.Unavailable(err)
	}
	return pdf, nil
}
