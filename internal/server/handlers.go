package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/physiotrainer/internal/camera"
	"github.com/claude/physiotrainer/internal/catalog"
	"github.com/claude/physiotrainer/internal/models"
	"github.com/claude/physiotrainer/internal/report"
	"github.com/claude/physiotrainer/internal/session"
)

type startRequest struct {
	Name     string  `json:"name"`
	Age      int     `json:"age"`
	WeightKg float64 `json:"weight_kg"`
	Gender   string  `json:"gender"`
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Exercise string  `json:"exercise"`
}

func (req startRequest) user() models.UserInfo {
	return models.UserInfo{
		Name:     req.Name,
		Age:      req.Age,
		WeightKg: req.WeightKg,
		Gender:   req.Gender,
	}
}

func (req startRequest) validate() error {
	if err := req.user().Validate(); err != nil {
		return err
	}
	if req.Category == "" || req.Type == "" || req.Exercise == "" {
		return errors.New("category, type and exercise are required")
	}
	return nil
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Categories)
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	exercises, err := s.catalog.Exercises(q.Get("category"), q.Get("type"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleExercise(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ex, err := s.catalog.Lookup(q.Get("category"), q.Get("type"), q.Get("name"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleDiet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.DietPlan)
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ex, err := s.catalog.Lookup(req.Category, req.Type, req.Exercise)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	u := s.timer.Start(session.Selection{
		User:     req.user(),
		Category: req.Category,
		Type:     req.Type,
		Exercise: ex,
	})
	if s.metrics != nil {
		s.metrics.CounterSessionsStarted.Inc()
	}
	s.metrics.ObserveUpdate(u)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleSessionPause(w http.ResponseWriter, r *http.Request) {
	u, err := s.timer.TogglePause()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleSessionStop(w http.ResponseWriter, r *http.Request) {
	u, err := s.timer.Stop()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	s.finish(r, u)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleSessionTick(w http.ResponseWriter, r *http.Request) {
	u := s.timer.Tick()
	s.finish(r, u)
	writeJSON(w, http.StatusOK, u)
}

type sessionSettings struct {
	StartDelayMs   int64 `json:"start_delay_ms"`
	HoldMs         int64 `json:"hold_ms"`
	TargetReps     int   `json:"target_reps"`
	TickIntervalMs int64 `json:"tick_interval_ms"`
}

func (s *Server) handleSessionSettings(w http.ResponseWriter, r *http.Request) {
	cfg := s.timer.Config()
	writeJSON(w, http.StatusOK, sessionSettings{
		StartDelayMs:   cfg.StartDelay.Milliseconds(),
		HoldMs:         cfg.HoldDuration.Milliseconds(),
		TargetReps:     cfg.TargetReps,
		TickIntervalMs: s.tickInterval.Milliseconds(),
	})
}

func (s *Server) handleSessionSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.timer.Snapshot())
}

// finish records metrics for u and appends its report, if any. A failed
// append is logged; the timer has already ended the session.
func (s *Server) finish(r *http.Request, u session.Update) {
	s.metrics.ObserveUpdate(u)
	if u.Report == nil {
		return
	}
	seq, err := s.reports.AppendReport(r.Context(), *u.Report)
	if err != nil {
		s.log.Error("appending session report", "session_id", u.SessionID, "error", err)
		return
	}
	s.log.Debug("session report appended", "session_id", u.SessionID, "seq", seq)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	entries, err := s.reports.ListReports(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleReportColumns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, report.Columns)
}

func (s *Server) handleReportsExport(w http.ResponseWriter, r *http.Request) {
	entries, err := s.reports.ListReports(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName+`"`)
	if err := report.WriteCSV(w, entries); err != nil {
		s.log.Error("writing csv export", "error", err)
	}
}

func (s *Server) handleTone(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tone)
}

func (s *Server) handleCameraMirror(w http.ResponseWriter, r *http.Request) {
	out, format, err := camera.MirrorEncoded(http.MaxBytesReader(w, r.Body, camera.MaxFrameBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.Is(err, camera.ErrFrameTooLarge) || errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/"+format)
	w.Write(out)
}

func writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotActive) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
