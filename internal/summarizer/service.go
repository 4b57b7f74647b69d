// Package summarizer routes a summarization request to the heuristic
// extractor or the remote LLM and records metrics for both paths.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/tenderbrief/internal/heuristic"
	"github.com/dgallion1/tenderbrief/internal/remote"
	"github.com/dgallion1/tenderbrief/internal/summary"
)

// Mode selects the summarization path.
type Mode string

const (
	ModeMock Mode = "mock"
	ModeAPI  Mode = "api"
)

// ErrUnknownMode is returned for a mode other than mock or api.
var ErrUnknownMode = errors.New("unknown summarization mode")

// ParseMode normalizes a mode string. The empty string parses to "" so the
// caller falls back to the configured default.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeMock, ModeAPI:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (expected mock or api)", ErrUnknownMode, s)
	}
}

// Remote is the external summarizer used in api mode.
type Remote interface {
	Summarize(ctx context.Context, text string) (summary.Result, error)
}

// Request is one summarization call.
type Request struct {
	Text string
	Mode Mode
}

// Options configures a Service.
type Options struct {
	DefaultMode    Mode
	MaxInputBytes  int
	FallbackToMock bool
}

// Service summarizes text through the selected path.
type Service struct {
	extractor *heuristic.Extractor
	remote    Remote
	opts      Options
	log       *slog.Logger

	backoff func(attempt int) time.Duration
}

// New builds a Service. remote may be nil, in which case api mode reports
// remote.ErrMissingAPIKey.
func New(extractor *heuristic.Extractor, rc Remote, opts Options, log *slog.Logger) *Service {
	if extractor == nil {
		extractor = heuristic.New()
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = ModeMock
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		extractor: extractor,
		remote:    rc,
		opts:      opts,
		log:       log,
		backoff:   Backoff,
	}
}

// DefaultMode returns the mode used when a request leaves it empty.
func (s *Service) DefaultMode() Mode {
	return s.opts.DefaultMode
}

// Rules lists the heuristic detector names in evaluation order.
func (s *Service) Rules() []string {
	return s.extractor.RuleNames()
}

// Summarize produces a summary for req.Text. Mock mode never fails.
func (s *Service) Summarize(ctx context.Context, req Request) (summary.Result, error) {
	mode := req.Mode
	if mode == "" {
		mode = s.opts.DefaultMode
	}
	if mode != ModeMock && mode != ModeAPI {
		return summary.Result{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	text := req.Text
	if limit := s.opts.MaxInputBytes; limit > 0 && len(text) > limit {
		text = truncateUTF8(text, limit)
		InputTruncations.Inc()
		s.log.Warn("summarize.input_truncated", "mode", mode, "bytes", len(req.Text), "limit", limit)
	}

	start := time.Now()
	defer func() {
		SummaryDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	}()

	if mode == ModeMock {
		return s.mock(text), nil
	}

	result, err := s.callRemote(ctx, text)
	if err != nil {
		SummaryErrorsTotal.WithLabelValues(string(mode), errorKind(err)).Inc()
		if s.opts.FallbackToMock && ctx.Err() == nil {
			s.log.Warn("summarize.fallback_to_mock", "error", err)
			return s.mock(text), nil
		}
		return summary.Result{}, err
	}
	SummariesTotal.WithLabelValues(string(ModeAPI), result.ConfidenceEstimate).Inc()
	return result, nil
}

func (s *Service) mock(text string) summary.Result {
	result := s.extractor.Summarize(text)
	SummariesTotal.WithLabelValues(string(ModeMock), result.ConfidenceEstimate).Inc()
	return result
}

// callRemote retries transient remote failures with jittered backoff.
func (s *Service) callRemote(ctx context.Context, text string) (summary.Result, error) {
	if s.remote == nil {
		return summary.Result{}, remote.ErrMissingAPIKey
	}

	var result summary.Result
	var lastErr error
	for attempt := range MaxRetries {
		result, lastErr = s.remote.Summarize(ctx, text)
		if lastErr == nil || !IsRetryable(lastErr) || attempt == MaxRetries-1 {
			break
		}
		wait := s.backoff(attempt)
		s.log.Warn("summarize.retry", "attempt", attempt, "wait", wait, "error", lastErr)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return summary.Result{}, ctx.Err()
		}
	}
	return result, lastErr
}

// errorKind labels an error for the errors counter.
func errorKind(err error) string {
	var (
		retryErr  *remote.RetryableError
		statusErr *remote.StatusError
		parseErr  *remote.ParseError
	)
	switch {
	case errors.Is(err, remote.ErrMissingAPIKey):
		return "missing_key"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &retryErr):
		return "retryable"
	case errors.As(err, &statusErr):
		return "status"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "transport"
	}
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
