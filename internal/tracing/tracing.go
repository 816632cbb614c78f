// Package tracing wraps Sentry: one span per catalog operation and exception
// capture for store failures. With no DSN configured every call is a cheap no-op.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

type Options struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
}

// Init configures the global Sentry hub. It returns false when no DSN is set.
func Init(opts Options) (bool, error) {
	if opts.DSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		SampleRate:       1.0,
		TracesSampleRate: opts.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, fmt.Errorf("sentry init: %w", err)
	}
	return true, nil
}

// Flush waits for buffered events before shutdown.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// Span is one traced operation.
type Span struct {
	span *sentry.Span
}

// StartSpan starts a span named after the operation, e.g. "catalog.toggle_watched".
func StartSpan(ctx context.Context, operation string) (*Span, context.Context) {
	s := sentry.StartSpan(ctx, operation)
	s.Description = operation
	return &Span{span: s}, s.Context()
}

func (s *Span) SetTag(key, value string) {
	if s == nil || s.span == nil {
		return
	}
	s.span.SetTag(key, value)
}

// Finish records the outcome and closes the span.
func (s *Span) Finish(err error) {
	if s == nil || s.span == nil {
		return
	}
	switch {
	case err == nil:
		s.span.Status = sentry.SpanStatusOK
	case errors.Is(err, context.DeadlineExceeded):
		s.span.Status = sentry.SpanStatusDeadlineExceeded
	default:
		s.span.Status = sentry.SpanStatusInternalError
	}
	s.span.Finish()
}

// CaptureError reports err on the hub bound to ctx, falling back to the
// global hub.
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
