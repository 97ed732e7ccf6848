package usecase

import (
	"context"
	"errors"
	"path"
	"strings"

	"career-coach/internal/adapter/repository"
	"career-coach/internal/domain"
	"career-coach/pkg/apperr"

	"github.com/google/uuid"
)

// ValidateArtifactPath checks an uploaded file reference before anything is
// signed or downloaded. The first segment must be the caller's id.
func ValidateArtifactPath(id domain.Identity, p string) error {
	if p == "" {
		return apperr.Invalid("resumePath is required")
	}
	if owner := strings.SplitN(p, "/", 2)[0]; owner != id.ID {
		return apperr.Denied("You do not have access to this file")
	}
	segments := strings.Split(p, "/")
	if len(segments) < 2 {
		return apperr.Invalid("Invalid file path")
	}
	for _, s := range segments[1:] {
		if s == "" || s == "." || s == ".." {
			return apperr.Invalid("Invalid file path")
		}
	}
	if !strings.EqualFold(path.Ext(p), ".pdf") {
		return apperr.Invalid("File must be a PDF")
	}
	return nil
}

// CheckPlanOwner resolves the plan's owner and compares it to the caller.
func CheckPlanOwner(ctx context.Context, plans PlanStore, id domain.Identity, planID uuid.UUID) error {
	owner, err := plans.PlanOwner(ctx, planID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Missing("Plan not found")
	}
	if err != nil {
		return apperr.Unavailable(err)
	}
	if owner != id.ID {
		return apperr.Denied("You do not have access to this plan")
	}
	return nil
}

// CheckResultOwner loads a stored task result owned by the caller.
func CheckResultOwner(ctx context.Context, results ResultStore, id domain.Identity, resultID uuid.UUID) (*domain.TaskResult, error) {
	res, err := results.GetResult(ctx, resultID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Missing("Analysis not found")
	}
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if res.UserID != id.ID {
		return nil, apperr.Denied("You do not have access to this analysis")
	}
	return res, nil
}
