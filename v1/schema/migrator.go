package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/lifecoach/std/v1/database"
)

// AddColumn is one migration step: add Column to Table unless it exists.
type AddColumn struct {
	// Name identifies the step in logs and reports.
	Name   string
	Table  string
	Column string
	// Definition is the column type and constraints, e.g. "TEXT".
	Definition string
	// Definitions overrides Definition for individual engines.
	Definitions map[database.Engine]string
}

func (a AddColumn) definitionFor(engine database.Engine) string {
	if def, ok := a.Definitions[engine]; ok {
		return def
	}
	return a.Definition
}

// DefaultSteps upgrades coaches tables created before the listed columns
// existed. SQLite cannot add a column whose default is CURRENT_TIMESTAMP,
// so created_at stays without a default there.
var DefaultSteps = []AddColumn{
	{Name: "coaches_icon", Table: "coaches", Column: "icon", Definition: "TEXT"},
	{
		Name:       "coaches_created_at",
		Table:      "coaches",
		Column:     "created_at",
		Definition: "DATETIME",
		Definitions: map[database.Engine]string{
			database.EnginePostgres: "TIMESTAMPTZ DEFAULT NOW()",
		},
	},
	{Name: "coaches_goal", Table: "coaches", Column: "goal", Definition: "TEXT"},
	{Name: "coaches_bio", Table: "coaches", Column: "bio", Definition: "TEXT"},
	{Name: "coaches_vital_signs", Table: "coaches", Column: "vital_signs", Definition: "TEXT"},
	{Name: "coaches_trackings", Table: "coaches", Column: "trackings", Definition: "TEXT"},
}

// StepStatus is the outcome of one step in a Report.
type StepStatus string

const (
	// StatusApplied means the column was added by this run.
	StatusApplied StepStatus = "applied"
	// StatusPresent means the column already existed.
	StatusPresent StepStatus = "present"
	// StatusPending means the column is missing and the run only planned.
	StatusPending StepStatus = "pending"
)

type StepResult struct {
	Name   string
	Table  string
	Column string
	Status StepStatus
}

// Report lists the outcome of every step in order.
type Report struct {
	Engine database.Engine
	Steps  []StepResult
}

// Applied returns the names of the steps that changed the schema.
func (r Report) Applied() []string {
	return r.names(StatusApplied)
}

// Pending returns the names of the steps that still need to run.
func (r Report) Pending() []string {
	return r.names(StatusPending)
}

func (r Report) names(status StepStatus) []string {
	out := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		if s.Status == status {
			out = append(out, s.Name)
		}
	}
	return out
}

// Migrator applies AddColumn steps in order.
type Migrator struct {
	db     database.DB
	steps  []AddColumn
	logger database.Logger
}

type Option func(*Migrator)

// WithLogger logs every applied or skipped step.
func WithLogger(logger database.Logger) Option {
	return func(m *Migrator) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSteps replaces DefaultSteps.
func WithSteps(steps ...AddColumn) Option {
	return func(m *Migrator) {
		m.steps = steps
	}
}

func NewMigrator(db database.DB, opts ...Option) *Migrator {
	m := &Migrator{
		db:     db,
		steps:  DefaultSteps,
		logger: database.NopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Plan reports which steps would run without changing anything.
func (m *Migrator) Plan(ctx context.Context) (Report, error) {
	return m.run(ctx, false)
}

// Migrate adds every missing column. It stops at the first failing step;
// the returned report covers the steps handled before it.
func (m *Migrator) Migrate(ctx context.Context) (Report, error) {
	return m.run(ctx, true)
}

func (m *Migrator) run(ctx context.Context, apply bool) (Report, error) {
	report := Report{Engine: m.db.Engine(), Steps: make([]StepResult, 0, len(m.steps))}

	cat, err := openCatalog(ctx, m.db)
	if err != nil {
		return report, err
	}
	defer func() {
		if err := cat.Close(); err != nil {
			m.logger.Warn("failed to close schema catalog", err, nil)
		}
	}()

	for _, step := range m.steps {
		result := StepResult{Name: step.Name, Table: step.Table, Column: step.Column}

		exists, err := cat.HasColumn(step.Table, step.Column)
		if err != nil {
			return report, fmt.Errorf("migration %s: %w", step.Name, err)
		}

		switch {
		case exists:
			result.Status = StatusPresent
			m.logger.Debug("migration step already applied", nil, map[string]interface{}{
				"step": step.Name,
			})
		case !apply:
			result.Status = StatusPending
		default:
			start := time.Now()
			stmt := alterStatement(step.Table, step.Column, step.definitionFor(report.Engine))
			if err := m.db.RunRaw(ctx, stmt); err != nil {
				return report, fmt.Errorf("migration %s: %w", step.Name, err)
			}
			result.Status = StatusApplied
			m.logger.Info("migration step applied", nil, map[string]interface{}{
				"step":     step.Name,
				"table":    step.Table,
				"column":   step.Column,
				"duration": time.Since(start).String(),
			})
		}
		report.Steps = append(report.Steps, result)
	}
	return report, nil
}

func alterStatement(table, column, definition string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		pq.QuoteIdentifier(table), pq.QuoteIdentifier(column), definition)
}
