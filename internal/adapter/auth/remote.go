package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"career-coach/internal/domain"
)

// RemoteVerifier asks the hosted auth service who a token belongs to.
type RemoteVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRemoteVerifier(baseURL, apiKey string) *RemoteVerifier {
	return &RemoteVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("apikey", v.apiKey)
	req.Header.Set("Authorization", bearerPrefix+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.Identity{}, fmt.Errorf("%w: status %d", ErrInvalidToken, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return domain.Identity{}, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var u remoteUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: decode user: %v", ErrUnreachable, err)
	}
	return domain.Identity{ID: u.ID, Email: u.Email}, nil
}
