package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/tenderbrief/internal/config"
	"github.com/dgallion1/tenderbrief/internal/heuristic"
	"github.com/dgallion1/tenderbrief/internal/pipeline"
	"github.com/dgallion1/tenderbrief/internal/remote"
	"github.com/dgallion1/tenderbrief/internal/summarizer"
	"github.com/dgallion1/tenderbrief/internal/summary"
)

const notice = "Tender Notice for Supply of Computer Equipment. Estimated cost ₹50,00,000. " +
	"Last date 28/02/2024. Minimum 3 years experience required. Contact procurement@mod.gov.in"

type testEnv struct {
	srv  *Server
	orch *pipeline.Orchestrator
}

func newTestEnv(t *testing.T, cfg config.Config, llm *remote.Client) *testEnv {
	t.Helper()
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 1 << 20
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxQueueSize == 0 {
		cfg.MaxQueueSize = 8
	}
	if cfg.JobTTL == 0 {
		cfg.JobTTL = time.Hour
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var rc summarizer.Remote
	if llm != nil {
		rc = llm
	}
	svc := summarizer.New(heuristic.New(), rc, summarizer.Options{DefaultMode: summarizer.ModeMock}, log)
	orch := pipeline.NewOrchestrator(cfg, svc, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return &testEnv{srv: NewServer(orch, svc, llm, log, cfg), orch: orch}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(b)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, config.Config{APIKey: "secret"}, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)
	env.do(httptest.NewRequest(http.MethodPost, "/api/summarize", jsonBody(t, map[string]string{"text": notice})))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "tenderbrief_summaries_total") {
		t.Error("expected summaries counter in metrics output")
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, config.Config{APIKey: "secret"}, nil)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/rules", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if rec := env.do(req); rec.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestAuthDisabledWithoutKey(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/rules", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 without configured key, got %d", rec.Code)
	}
}

func TestSummarize_Mock(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)
	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/summarize", jsonBody(t, map[string]string{"text": notice, "mode": "mock"})))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 4 {
		t.Errorf("expected exactly 4 keys, got %d", len(raw))
	}

	got, err := summary.Decode(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("response does not match schema: %v", err)
	}
	want := heuristic.Summarize(notice)
	if got.ShortSummary != want.ShortSummary {
		t.Errorf("expected summary %q, got %q", want.ShortSummary, got.ShortSummary)
	}
	if got.ConfidenceEstimate != summary.ConfidenceHigh {
		t.Errorf("expected high confidence, got %q", got.ConfidenceEstimate)
	}
	if len(got.RelevanceToOfficials) != 5 {
		t.Errorf("expected all 5 detectors to fire, got %v", got.RelevanceToOfficials)
	}
}

func TestSummarize_EmptyTextUsesFallback(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)
	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(`{"text":""}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := `{"short_summary":"Document processed successfully","relevance_to_officials":[],"action_items":[],"confidence_estimate":"low"}`
	if strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("expected %s, got %s", want, rec.Body.String())
	}
}

func TestSummarize_Errors(t *testing.T) {
	env := newTestEnv(t, config.Config{MaxUploadBytes: 64}, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{"text":`, http.StatusBadRequest},
		{"unknown mode", `{"text":"x","mode":"gpt"}`, http.StatusBadRequest},
		{"api without client", `{"text":"x","mode":"api"}`, http.StatusServiceUnavailable},
		{"too large", `{"text":"` + strings.Repeat("a", 200) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(tc.body)))
			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Errorf("expected json error body, got %q", rec.Body.String())
			}
		})
	}
}

func TestSummarize_APIModeRemoteFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer upstream.Close()

	llm := remote.NewClient(remote.Config{APIKey: "k", BaseURL: upstream.URL}, nil)
	env := newTestEnv(t, config.Config{}, llm)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(`{"text":"tender","mode":"api"}`)))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "API request failed with status: 401") {
		t.Errorf("expected status error message, got %s", rec.Body.String())
	}

	stats := env.do(httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil))
	if stats.Code != http.StatusOK {
		t.Fatalf("expected 200 from stats, got %d", stats.Code)
	}
	var body struct {
		Model string               `json:"model"`
		Stats remote.StatsSnapshot `json:"stats"`
	}
	if err := json.Unmarshal(stats.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if body.Model != remote.DefaultModel {
		t.Errorf("expected model %q, got %q", remote.DefaultModel, body.Model)
	}
	if body.Stats.Failures != 1 {
		t.Errorf("expected 1 recorded failure, got %d", body.Stats.Failures)
	}
}

func TestLLMStats_Unavailable(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestRules(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/rules", nil))
	var body struct {
		Rules       []string `json:"rules"`
		DefaultMode string   `json:"default_mode"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(body.Rules, ",") != "dates,money,eligibility,contacts,procurement" {
		t.Errorf("unexpected rules %v", body.Rules)
	}
	if body.DefaultMode != "mock" {
		t.Errorf("expected default mode mock, got %q", body.DefaultMode)
	}
}

func multipartUpload(t *testing.T, field string, files map[string]string, mode string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if mode != "" {
		mw.WriteField("mode", mode)
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func pollJob(t *testing.T, env *testEnv, url string) pipeline.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var snap pipeline.JobSnapshot
	for time.Now().Before(deadline) {
		rec := env.do(httptest.NewRequest(http.MethodGet, url, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 polling job, got %d", rec.Code)
		}
		snap = pipeline.JobSnapshot{}
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("decode job: %v", err)
		}
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job did not finish, last status %q", snap.Status)
	return snap
}

func TestSummarizeFile(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)

	body, ctype := multipartUpload(t, "file", map[string]string{"notice.txt": notice}, "mock")
	req := httptest.NewRequest(http.MethodPost, "/api/summarize/file", body)
	req.Header.Set("Content-Type", ctype)
	rec := env.do(req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var accepted map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if accepted["status"] != "queued" && accepted["status"] != "parsing" && accepted["status"] != "summarizing" && accepted["status"] != "completed" {
		t.Errorf("unexpected initial status %q", accepted["status"])
	}
	if accepted["poll_url"] != "/api/jobs/"+accepted["job_id"] {
		t.Errorf("unexpected poll url %q", accepted["poll_url"])
	}

	snap := pollJob(t, env, accepted["poll_url"])
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Errors)
	}
	if snap.Result == nil || snap.Result.ConfidenceEstimate != summary.ConfidenceHigh {
		t.Errorf("expected high-confidence result, got %+v", snap.Result)
	}
	if snap.Mode != summarizer.ModeMock {
		t.Errorf("expected mode mock, got %q", snap.Mode)
	}
}

func TestSummarizeFile_Rejections(t *testing.T) {
	env := newTestEnv(t, config.Config{MaxUploadBytes: 32}, nil)

	tests := []struct {
		name  string
		files map[string]string
		mode  string
		want  int
	}{
		{"unsupported type", map[string]string{"notice.exe": "MZ"}, "", http.StatusBadRequest},
		{"unknown mode", map[string]string{"notice.txt": "x"}, "gpt", http.StatusBadRequest},
		{"no file", map[string]string{}, "", http.StatusBadRequest},
		{"too large", map[string]string{"notice.txt": strings.Repeat("a", 64)}, "", http.StatusRequestEntityTooLarge},
		{"body over form limit", map[string]string{"notice.txt": strings.Repeat("a", 3<<19)}, "", http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, ctype := multipartUpload(t, "file", tc.files, tc.mode)
			req := httptest.NewRequest(http.MethodPost, "/api/summarize/file", body)
			req.Header.Set("Content-Type", ctype)
			if rec := env.do(req); rec.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSummarizeBatch(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)

	body, ctype := multipartUpload(t, "files", map[string]string{
		"a.txt": notice,
		"b.md":  "# Quotation\n\nRFQ for stationery.",
		"c.bin": "nope",
	}, "")
	req := httptest.NewRequest(http.MethodPost, "/api/summarize/batch", body)
	req.Header.Set("Content-Type", ctype)
	rec := env.do(req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var resp struct {
		Jobs []map[string]string `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Jobs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(resp.Jobs))
	}
	queued, rejected := 0, 0
	for _, j := range resp.Jobs {
		if j["error"] != "" {
			rejected++
			continue
		}
		queued++
		if snap := pollJob(t, env, j["poll_url"]); snap.Status != pipeline.StatusCompleted {
			t.Errorf("%s: expected completed, got %q", j["filename"], snap.Status)
		}
	}
	if queued != 2 || rejected != 1 {
		t.Errorf("expected 2 queued and 1 rejected, got %d and %d", queued, rejected)
	}
}

func TestJobStatus_NotFound(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"notice.pdf", "notice.pdf"},
		{"../../etc/passwd.txt", "passwd.txt"},
		{`C:\tenders\nit.docx`, "nit.docx"},
		{"", "unnamed"},
		{"a..b.txt", "a_b.txt"},
	}
	for _, tc := range tests {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
