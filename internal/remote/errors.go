package remote

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrMissingAPIKey is returned when no OpenRouter credential is configured.
var ErrMissingAPIKey = errors.New("OpenRouter API key not found. Please set OPENROUTER_API_KEY environment variable or use mock mode.")

// StatusError is a non-success HTTP response from the LLM endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status: %d: %s", e.StatusCode, truncate(e.Body, 200))
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// ParseError means the reply arrived but did not hold a usable summary.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
