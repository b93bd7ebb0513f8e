package mcp

import (
	"context"

	"github.com/claude/physiotrainer/internal/catalog"
	"github.com/claude/physiotrainer/internal/models"
	"github.com/claude/physiotrainer/internal/session"
)

// DataSource abstracts the data layer for MCP tools. Both Local (in-process)
// and client.HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Catalog(ctx context.Context) ([]models.Category, error)
	Exercise(ctx context.Context, category, exType, name string) (*models.Exercise, error)
	DietPlan(ctx context.Context) ([]models.DietSection, error)
	Reports(ctx context.Context) ([]models.ReportEntry, error)
	SessionStatus(ctx context.Context) (*session.Update, error)
}

// ReportLister is the read side of the report store.
type ReportLister interface {
	ListReports(ctx context.Context) ([]models.ReportEntry, error)
}

// Local serves MCP requests from the running process.
type Local struct {
	catalog *catalog.Catalog
	reports ReportLister
	timer   *session.Timer
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal wraps the in-process catalog, report store and timer.
func NewLocal(cat *catalog.Catalog, reports ReportLister, timer *session.Timer) *Local {
	return &Local{catalog: cat, reports: reports, timer: timer}
}

func (l *Local) Catalog(context.Context) ([]models.Category, error) {
	return l.catalog.Categories, nil
}

func (l *Local) Exercise(_ context.Context, category, exType, name string) (*models.Exercise, error) {
	ex, err := l.catalog.Lookup(category, exType, name)
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

func (l *Local) DietPlan(context.Context) ([]models.DietSection, error) {
	return l.catalog.DietPlan, nil
}

func (l *Local) Reports(ctx context.Context) ([]models.ReportEntry, error) {
	return l.reports.ListReports(ctx)
}

func (l *Local) SessionStatus(context.Context) (*session.Update, error) {
	u := l.timer.Snapshot()
	return &u, nil
}
