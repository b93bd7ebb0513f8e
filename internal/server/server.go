package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/physiotrainer/internal/audio"
	"github.com/claude/physiotrainer/internal/catalog"
	"github.com/claude/physiotrainer/internal/metrics"
	"github.com/claude/physiotrainer/internal/models"
	"github.com/claude/physiotrainer/internal/session"
	"github.com/go-chi/chi/v5"
)

// ReportStore is the append-only session report list.
type ReportStore interface {
	AppendReport(ctx context.Context, e models.ReportEntry) (int64, error)
	ListReports(ctx context.Context) ([]models.ReportEntry, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	timer   *session.Timer
	catalog *catalog.Catalog
	reports ReportStore
	metrics *metrics.Manager
	tone    audio.Tone
	log     *slog.Logger
	router  chi.Router

	tickInterval time.Duration
}

// DefaultTickInterval is how often the browser polls the tick endpoint
// unless SetTickInterval says otherwise.
const DefaultTickInterval = 500 * time.Millisecond

// New creates a new Server with all routes configured. m may be nil.
func New(timer *session.Timer, cat *catalog.Catalog, reports ReportStore, m *metrics.Manager, log *slog.Logger) *Server {
	s := &Server{
		timer:   timer,
		catalog: cat,
		reports: reports,
		metrics: m,
		tone:    audio.DefaultTone,
		log:     log,
		router:  chi.NewRouter(),

		tickInterval: DefaultTickInterval,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(Recovery(s.log, s.metrics))
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/exercises", s.handleExercises)
		r.Get("/exercise", s.handleExercise)
		r.Get("/diet", s.handleDiet)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSessionSnapshot)
			r.Get("/settings", s.handleSessionSettings)
			r.Post("/start", s.handleSessionStart)
			r.Post("/pause", s.handleSessionPause)
			r.Post("/stop", s.handleSessionStop)
			r.Post("/tick", s.handleSessionTick)
		})

		r.Get("/reports", s.handleReports)
		r.Get("/reports/columns", s.handleReportColumns)
		r.Get("/reports/export", s.handleReportsExport)
		r.Get("/audio/tone", s.handleTone)
		r.Post("/camera/mirror", s.handleCameraMirror)
	})
}

// SetTickInterval sets the polling interval advertised to the browser.
func (s *Server) SetTickInterval(d time.Duration) {
	if d > 0 {
		s.tickInterval = d
	}
}

// SetMetricsHandler exposes h (normally promhttp) at /metrics.
func (s *Server) SetMetricsHandler(h http.Handler) {
	s.router.Handle("/metrics", h)
}

// SetMCP mounts a streamable-HTTP MCP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

// SetFrontend mounts the embedded browser UI.
// Unmatched routes serve index.html.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
