package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"career-coach/internal/domain"
	"career-coach/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(sub string) *accessClaims {
	return &accessClaims{
		Email: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier(secret)

	id, err := v.Verify(context.Background(), sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims("user-1")))
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: "user-1", Email: "ada@example.com"}, id)

	expired := validClaims("user-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	rejected := map[string]string{
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims("user-1")),
		"expired":      sign(t, jwt.SigningMethodHS256, []byte(secret), expired),
		"no subject":   sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims("")),
		"hs512":        sign(t, jwt.SigningMethodHS512, []byte(secret), validClaims("user-1")),
		"garbage":      "not.a.token",
	}
	for name, token := range rejected {
		_, err := v.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

type fakeVerifier struct {
	id  domain.Identity
	err error
}

func (f fakeVerifier) Verify(context.Context, string) (domain.Identity, error) { return f.id, f.err }

func TestGate_Authenticate(t *testing.T) {
	ok := fakeVerifier{id: domain.Identity{ID: "user-1", Email: "a@b.c"}}
	cases := []struct {
		name     string
		verifier Verifier
		header   string
		kind     apperr.Kind
	}{
		{"missing header", ok, "", apperr.Unauthenticated},
		{"wrong scheme", ok, "Basic abc", apperr.InvalidInput},
		{"lowercase scheme", ok, "bearer abc", apperr.InvalidInput},
		{"empty token", ok, "Bearer   ", apperr.Unauthenticated},
		{"rejected", fakeVerifier{err: ErrInvalidToken}, "Bearer abc", apperr.Unauthenticated},
		{"no subject", fakeVerifier{}, "Bearer abc", apperr.Unauthenticated},
		{"unreachable", fakeVerifier{err: ErrUnreachable}, "Bearer abc", apperr.ServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGate(tc.verifier, zap.NewNop()).Authenticate(context.Background(), tc.header)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}

	id, err := NewGate(ok, zap.NewNop()).Authenticate(context.Background(), "Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.ID)
}

func TestRemoteVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			json.NewEncoder(w).Encode(map[string]string{"id": "user-1", "email": "ada@example.com"})
		case "Bearer broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	v := NewRemoteVerifier(srv.URL+"/", "anon")

	id, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: "user-1", Email: "ada@example.com"}, id)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestRemoteVerifier_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRemoteVerifier(url, "anon").Verify(context.Background(), "good")
	assert.True(t, errors.Is(err, ErrUnreachable))
}
