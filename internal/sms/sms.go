// Package sms wraps the Semaphore SMS provider. Every caller treats the
// gateway as unreliable: sends are best-effort and failures must never
// propagate into the primary state change.
package sms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

//go:generate mockgen -source=sms.go -destination=mocks/gateway_mock.go -package=mocks

// Result is the provider's JSON response, kept loosely typed because
// Semaphore's payload shape is not contractual.
type Result map[string]any

// Gateway sends one SMS to a normalized local number. Implementations return
// either the provider result or an error descriptor; callers never retry.
type Gateway interface {
	Send(ctx context.Context, number, message string) (Result, error)
}

const defaultBaseURL = "https://api.semaphore.co"

// SemaphoreGateway posts messages to the Semaphore HTTP API.
type SemaphoreGateway struct {
	client *resty.Client
	apiKey string
	sender string
}

// Option configures a SemaphoreGateway.
type Option func(*SemaphoreGateway)

// WithBaseURL overrides the provider endpoint; tests point it at a local
// httptest server.
func WithBaseURL(url string) Option {
	return func(g *SemaphoreGateway) {
		g.client.SetBaseURL(url)
	}
}

// WithTimeout overrides the per-send timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *SemaphoreGateway) {
		g.client.SetTimeout(d)
	}
}

// NewSemaphore builds the production gateway. The 15 second timeout matches
// the provider's slow path; the surrounding notification write has already
// committed by the time Send runs.
func NewSemaphore(apiKey, sender string, opts ...Option) *SemaphoreGateway {
	g := &SemaphoreGateway{
		client: resty.New().
			SetBaseURL(defaultBaseURL).
			SetTimeout(15 * time.Second),
		apiKey: apiKey,
		sender: sender,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Send posts one message. The number must already be in local 09XXXXXXXXX
// form; anything else is rejected before the provider is contacted.
func (g *SemaphoreGateway) Send(ctx context.Context, number, message string) (Result, error) {
	if !strings.HasPrefix(number, "09") || len(number) != 11 {
		return nil, fmt.Errorf("invalid PH number: %s", number)
	}

	var result Result
	resp, err := g.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"apikey":     g.apiKey,
			"number":     number,
			"message":    message,
			"sendername": g.sender,
		}).
		SetResult(&result).
		Post("/api/v4/messages")
	if err != nil {
		return nil, fmt.Errorf("semaphore send: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("semaphore send: status %d: %s", resp.StatusCode(), resp.String())
	}
	if result == nil {
		return nil, fmt.Errorf("semaphore send: malformed provider response: %s", resp.String())
	}
	return result, nil
}

// LogGateway logs messages instead of sending them. Used when no API key is
// configured (local development).
type LogGateway struct {
	logger *slog.Logger
}

func NewLogGateway(logger *slog.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

func (g *LogGateway) Send(ctx context.Context, number, message string) (Result, error) {
	g.logger.InfoContext(ctx, "sms gateway disabled, logging only",
		"number", number,
		"message", message,
	)
	return Result{"logged": true}, nil
}
