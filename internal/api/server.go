package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/tenderbrief/internal/config"
	"github.com/dgallion1/tenderbrief/internal/pipeline"
	"github.com/dgallion1/tenderbrief/internal/remote"
	"github.com/dgallion1/tenderbrief/internal/summarizer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server for tenderbrief.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	service      *summarizer.Service
	llm          *remote.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. llm may be nil when no
// remote summarizer is configured.
func NewServer(orch *pipeline.Orchestrator, svc *summarizer.Service, llm *remote.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		service:      svc,
		llm:          llm,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/summarize", s.handleSummarize)
		r.Post("/api/summarize/file", s.handleSummarizeFile)
		r.Post("/api/summarize/batch", s.handleSummarizeBatch)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/llm", s.handleLLMStats)
		r.Get("/api/rules", s.handleRules)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
