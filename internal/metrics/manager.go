// Package metrics exposes Prometheus counters for sessions and HTTP traffic.
package metrics

import (
	"github.com/claude/physiotrainer/internal/models"
	"github.com/claude/physiotrainer/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "physiotrainer"

// StatusRestarted labels sessions_finished_total for a session that a new
// Start discarded without a report.
const StatusRestarted = "Restarted"

type Manager struct {
	// counters
	CounterSessionsStarted  prometheus.Counter
	CounterSessionsFinished *prometheus.CounterVec
	CounterReps             prometheus.Counter
	CounterCues             *prometheus.CounterVec
	CounterHandlerPanics    prometheus.Counter

	// gauges
	GaugeActiveSession prometheus.Gauge

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewTestManager() *Manager {
	return NewManager("test", prometheus.NewRegistry())
}

func NewManager(subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterSessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_started_total",
			Help:      "The total number of started exercise sessions",
		}),
		CounterSessionsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_finished_total",
			Help:      "Finished exercise sessions by report status",
		}, []string{"status"}),
		CounterReps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reps_total",
			Help:      "The total number of counted repetitions",
		}),
		CounterCues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cues_total",
			Help:      "Audio cues fired by kind",
		}, []string{"cue"}),
		CounterHandlerPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handler_panics_total",
			Help:      "The total number of recovered handler panics",
		}),
		GaugeActiveSession: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_session",
			Help:      "1 while a session is running",
		}),
		HistogramRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// ObserveUpdate records cues, reps and session transitions carried by a timer update.
func (m *Manager) ObserveUpdate(u session.Update) {
	if m == nil {
		return
	}
	for _, c := range u.Cues {
		m.CounterCues.WithLabelValues(string(c)).Inc()
		if c == session.CueRep {
			m.CounterReps.Inc()
		}
	}
	if u.Replaced != nil {
		m.CounterSessionsFinished.WithLabelValues(StatusRestarted).Inc()
	}
	if u.Report != nil {
		m.ObserveReport(*u.Report)
		return
	}
	if u.Active() {
		m.GaugeActiveSession.Set(1)
	}
}

// ObserveReport records a finished session.
func (m *Manager) ObserveReport(e models.ReportEntry) {
	if m == nil {
		return
	}
	m.CounterSessionsFinished.WithLabelValues(string(e.Status)).Inc()
	m.GaugeActiveSession.Set(0)
}
