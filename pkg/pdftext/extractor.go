// Package pdftext turns PDF bytes into plain text. Strategies are tried in a
// fixed order and every result must pass the same minimum-length gate, so a
// scanned or image-only document fails instead of yielding sparse text.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const DefaultMinChars = 100

var (
	// ErrNoText is returned when no strategy produced acceptable text.
	ErrNoText = errors.New("pdftext: no extractable text")
	// ErrTooShort marks a strategy result rejected by the length gate.
	ErrTooShort = errors.New("pdftext: text below minimum length")
)

type Strategy interface {
	Name() string
	Extract(data []byte) (string, error)
}

type Result struct {
	Text     string
	Strategy string
	Pages    int
}

type Extractor struct {
	strategies []Strategy
	minChars   int
	observe    func(strategy, outcome string)
}

type Option func(*Extractor)

// WithStrategies replaces the default primary/fallback pair.
func WithStrategies(s ...Strategy) Option {
	return func(e *Extractor) { e.strategies = s }
}

func WithMinChars(n int) Option {
	return func(e *Extractor) { e.minChars = n }
}

// WithObserver is called once per strategy attempt with outcome
// "ok", "error" or "too_short".
func WithObserver(fn func(strategy, outcome string)) Option {
	return func(e *Extractor) { e.observe = fn }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		strategies: []Strategy{PageWalker{}, RawScanner{}},
		minChars:   DefaultMinChars,
		observe:    func(string, string) {},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract runs the strategies in order and returns the first result that
// clears the minimum length. The error wraps ErrNoText and every attempt's
// failure.
func (e *Extractor) Extract(data []byte) (Result, error) {
	var errs []error
	for _, s := range e.strategies {
		text, err := e.attempt(s, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		return Result{Text: text, Strategy: s.Name(), Pages: PageCount(data)}, nil
	}
	return Result{}, fmt.Errorf("%w: %w", ErrNoText, errors.Join(errs...))
}

func (e *Extractor) attempt(s Strategy, data []byte) (string, error) {
	text, err := s.Extract(data)
	if err != nil {
		e.observe(s.Name(), "error")
		return "", err
	}
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < e.minChars {
		e.observe(s.Name(), "too_short")
		return "", fmt.Errorf("%w (%d < %d)", ErrTooShort, n, e.minChars)
	}
	e.observe(s.Name(), "ok")
	return text, nil
}

// PageCount is best-effort; 0 means the document could not be parsed.
func PageCount(data []byte) (pages int) {
	defer func() {
		if recover() != nil {
			pages = 0
		}
	}()
	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0
	}
	return n
}
