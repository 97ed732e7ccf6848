package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"career-coach/pkg/apperr"

	"go.uber.org/zap"
)

// Fetcher downloads an artifact through a freshly signed URL.
type Fetcher struct {
	signer   Signer
	client   *http.Client
	maxBytes int64
	log      *zap.Logger
}

func NewFetcher(signer Signer, maxBytes int64, log *zap.Logger) *Fetcher {
	return &Fetcher{
		signer:   signer,
		client:   &http.Client{Timeout: SignedURLTTL},
		maxBytes: maxBytes,
		log:      log.With(zap.String("component", "fetcher")),
	}
}

// Fetch returns the artifact bytes. The declared headers are checked before
// the body is read and the body length is checked again after, since the
// headers are not trusted.
func (f *Fetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	signed, err := f.signer.SignGet(ctx, path, SignedURLTTL)
	if err != nil {
		f.log.Error("sign url", zap.String("path", path), zap.Error(err))
		return nil, apperr.Unavailable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signed, nil)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Error("download artifact", zap.String("path", path), zap.Error(err))
		return nil, apperr.Unavailable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.Missing("File not found")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		f.log.Error("download artifact", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, apperr.Unavailable(fmt.Errorf("storage returned %d", resp.StatusCode))
	}

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "pdf") {
		return nil, apperr.Invalid("File must be a PDF")
	}
	if resp.ContentLength > f.maxBytes {
		return nil, apperr.Invalid(tooLarge(f.maxBytes))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		f.log.Error("read artifact", zap.String("path", path), zap.Error(err))
		return nil, apperr.Unavailable(err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, apperr.Invalid(tooLarge(f.maxBytes))
	}

	f.log.Debug("artifact fetched", zap.String("path", path),
		zap.Int("bytes", len(body)), zap.Duration("took", time.Since(start)))
	return body, nil
}

func tooLarge(max int64) string {
	return fmt.Sprintf("File exceeds the %d MB limit", max>>20)
}
