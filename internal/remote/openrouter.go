package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/tenderbrief/internal/summary"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-3.5-turbo"

	maxTokens   = 1000
	temperature = 0.3
)

// Config holds the OpenRouter connection settings.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Referer   string
	Title     string
}

// Client calls the OpenRouter chat completions API for document summaries.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger

	Stats *LLMStats
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Referer == "" {
		cfg.Referer = "http://localhost:3000"
	}
	if cfg.Title == "" {
		cfg.Title = "PDF Summarizer"
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: limiter,
		log:     log,
		Stats:   NewLLMStats(time.Hour),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize sends text to the model and parses its reply into a summary.Result.
func (c *Client) Summarize(ctx context.Context, text string) (summary.Result, error) {
	if c.cfg.APIKey == "" {
		return summary.Result{}, ErrMissingAPIKey
	}

	rid := uuid.New().String()
	log := c.log.With("req_id", rid, "model", c.cfg.Model)
	start := time.Now()
	log.Info("remote.summarize.start", "text_len", len(text))

	if err := c.limiter.Wait(ctx); err != nil {
		return summary.Result{}, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: BuildPrompt(text)}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return summary.Result{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return summary.Result{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", c.cfg.Referer)
	httpReq.Header.Set("X-Title", c.cfg.Title)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.Stats.RecordFailure(time.Since(start).Milliseconds())
		log.Error("remote.summarize.http_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return summary.Result{}, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	result, err := readReply(resp)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		c.Stats.RecordFailure(elapsed)
		log.Error("remote.summarize.failed", "status", resp.StatusCode, "error", err, "elapsed_ms", elapsed)
		return summary.Result{}, err
	}
	c.Stats.Record(elapsed)

	log.Info("remote.summarize.ok",
		"confidence", result.ConfidenceEstimate,
		"relevance_points", len(result.RelevanceToOfficials),
		"elapsed_ms", elapsed,
	)
	return result, nil
}

// readReply maps the HTTP response onto a summary or one of the typed errors.
func readReply(resp *http.Response) (summary.Result, error) {
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return summary.Result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return summary.Result{}, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return summary.Result{}, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return parseReply(respBody)
}

// parseReply pulls choices[0].message.content out of a chat completion and
// decodes it as a summary.
func parseReply(body []byte) (summary.Result, error) {
	var cc chatResponse
	if err := json.Unmarshal(body, &cc); err != nil {
		return summary.Result{}, &ParseError{Msg: "Failed to parse API response", Err: err}
	}
	if len(cc.Choices) == 0 || cc.Choices[0].Message.Content == nil {
		return summary.Result{}, &ParseError{Msg: "No content in API response"}
	}

	content := stripCodeBlock(*cc.Choices[0].Message.Content)
	result, err := summary.Decode([]byte(content))
	if err != nil {
		return summary.Result{}, &ParseError{
			Msg: fmt.Sprintf("Failed to parse summary JSON (raw: %s)", truncate(content, 200)),
			Err: err,
		}
	}
	return result, nil
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
