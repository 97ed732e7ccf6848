package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var (
	// ErrUnavailable covers transport failures, non-2xx answers, timeouts and
	// an open circuit breaker.
	ErrUnavailable = errors.New("ai: provider unavailable")
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("ai: empty response")
)

// Provider is one LLM vendor API.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Request is one templated task prompt with its sampling parameters.
type Request struct {
	Task        string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Client calls a Provider once per request: no retries, a per-call timeout
// and a circuit breaker shared by all tasks.
type Client struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
	timeout  time.Duration
	log      *zap.Logger
	observe  func(task string, took time.Duration, err error)
}

type ClientOption func(*Client)

func WithBreakerSettings(s gobreaker.Settings) ClientOption {
	return func(c *Client) { c.breaker = gobreaker.NewCircuitBreaker(s) }
}

func WithObserver(fn func(task string, took time.Duration, err error)) ClientOption {
	return func(c *Client) { c.observe = fn }
}

func NewClient(p Provider, timeout time.Duration, log *zap.Logger, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	c := &Client{
		provider: p,
		timeout:  timeout,
		log:      log.With(zap.String("component", "ai"), zap.String("provider", p.Name())),
		observe:  func(string, time.Duration, error) {},
	}
	for _, o := range opts {
		o(c)
	}
	if c.breaker == nil {
		c.breaker = gobreaker.NewCircuitBreaker(DefaultBreakerSettings(p.Name()))
	}
	return c
}

// DefaultBreakerSettings trips after at least five calls in a ten second
// window with a failure ratio of 60% or more.
func DefaultBreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	}
}

// Complete returns the raw model text for req.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.provider.Generate(callCtx, req.Prompt, GenerateOptions{
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		})
	})
	took := time.Since(start)

	if err != nil {
		c.observe(req.Task, took, ErrUnavailable)
		c.log.Warn("llm call failed",
			zap.String("task", req.Task),
			zap.Duration("took", took),
			zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	text, _ := out.(string)
	if strings.TrimSpace(text) == "" {
		c.observe(req.Task, took, ErrEmptyResponse)
		return "", ErrEmptyResponse
	}

	c.observe(req.Task, took, nil)
	c.log.Debug("llm call completed",
		zap.String("task", req.Task),
		zap.Duration("took", took),
		zap.Int("chars", len(text)))
	return text, nil
}
