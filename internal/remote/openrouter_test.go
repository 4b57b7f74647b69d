package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const validContent = `{"short_summary":"Tender for computers","relevance_to_officials":["Deadline 28/02/2024"],"action_items":["Prepare bid"],"confidence_estimate":"high"}`

func chatReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
}

func TestSummarize_Success(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", auth)
		}
		if title := r.Header.Get("X-Title"); title != "PDF Summarizer" {
			t.Errorf("expected X-Title header, got %q", title)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(chatReply(validContent)))
	})

	res, err := c.Summarize(context.Background(), "Tender notice text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ShortSummary != "Tender for computers" {
		t.Errorf("expected short summary, got %q", res.ShortSummary)
	}
	if res.ConfidenceEstimate != "high" {
		t.Errorf("expected confidence high, got %q", res.ConfidenceEstimate)
	}
	if got.Model != DefaultModel {
		t.Errorf("expected model %q, got %q", DefaultModel, got.Model)
	}
	if got.MaxTokens != 1000 || got.Temperature != 0.3 {
		t.Errorf("unexpected sampling params: %+v", got)
	}
	if len(got.Messages) != 1 || !strings.HasSuffix(got.Messages[0].Content, "Document text:\nTender notice text") {
		t.Errorf("expected prompt to end with document text, got %+v", got.Messages)
	}
	if snap := c.Stats.Snapshot(); snap.Calls != 1 || snap.Failures != 0 {
		t.Errorf("expected one successful call recorded, got %+v", snap)
	}
}

func TestSummarize_StripsCodeFence(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("```json\n" + validContent + "\n```")))
	})
	res, err := c.Summarize(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.ActionItems) != 1 {
		t.Errorf("expected 1 action item, got %d", len(res.ActionItems))
	}
}

func TestSummarize_MissingAPIKey(t *testing.T) {
	c := NewClient(Config{}, nil)
	_, err := c.Summarize(context.Background(), "text")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestSummarize_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, func(err error) bool {
			var re *RetryableError
			return errors.As(err, &re) && re.StatusCode == 429
		}},
		{"server error", http.StatusBadGateway, `upstream down`, func(err error) bool {
			var re *RetryableError
			return errors.As(err, &re)
		}},
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, func(err error) bool {
			var se *StatusError
			return errors.As(err, &se) && se.StatusCode == 401
		}},
		{"not json", http.StatusOK, `<html>`, func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe)
		}},
		{"no choices", http.StatusOK, `{"choices":[]}`, func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe) && pe.Msg == "No content in API response"
		}},
		{"prose reply", http.StatusOK, chatReply("Sure! Here is a summary."), func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			_, err := c.Summarize(context.Background(), "text")
			if err == nil {
				t.Fatal("expected error")
			}
			if !tc.check(err) {
				t.Errorf("unexpected error type: %T %v", err, err)
			}
			if snap := c.Stats.Snapshot(); snap.Failures != 1 {
				t.Errorf("expected failure recorded, got %+v", snap)
			}
		})
	}
}

func TestSummarize_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: url}, nil)
	_, err := c.Summarize(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "API request failed") {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestStripCodeBlock(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```\n[1]\n```", "[1]"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tc := range tests {
		if got := stripCodeBlock(tc.in); got != tc.want {
			t.Errorf("stripCodeBlock(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
