// Package auth resolves bearer credentials into verified identities.
package auth

import (
	"context"
	"errors"
	"strings"

	"career-coach/internal/domain"
	"career-coach/pkg/apperr"

	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

var (
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnreachable marks a verifier that could not reach its backing
	// service, as opposed to one that rejected the token.
	ErrUnreachable = errors.New("auth service unreachable")
)

// Verifier exchanges a raw token for the identity it was issued to.
type Verifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// Gate is the first step of every request: nothing else runs for a caller
// it rejects.
type Gate struct {
	verifier Verifier
	log      *zap.Logger
}

func NewGate(v Verifier, log *zap.Logger) *Gate {
	return &Gate{verifier: v, log: log.With(zap.String("component", "auth"))}
}

// Authenticate parses the Authorization header value and verifies the
// token it carries.
func (g *Gate) Authenticate(ctx context.Context, header string) (domain.Identity, error) {
	if header == "" {
		return domain.Identity{}, apperr.WithMessage(apperr.Unauthenticated, "Missing authorization header", nil)
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return domain.Identity{}, apperr.Invalid("Authorization header must use the Bearer scheme")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return domain.Identity{}, apperr.Unauthorized(ErrInvalidToken)
	}

	id, err := g.verifier.Verify(ctx, token)
	if errors.Is(err, ErrUnreachable) {
		g.log.Error("verify token", zap.Error(err))
		return domain.Identity{}, apperr.Unavailable(err)
	}
	if err != nil {
		g.log.Debug("token rejected", zap.Error(err))
		return domain.Identity{}, apperr.Unauthorized(err)
	}
	if !id.Valid() {
		return domain.Identity{}, apperr.Unauthorized(ErrInvalidToken)
	}
	return id, nil
}
