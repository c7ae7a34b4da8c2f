package engine

import (
	"log/slog"

	"stitchflow/internal/config"
	"stitchflow/internal/logging"
	"stitchflow/internal/template"
	"stitchflow/internal/workflow"
)

// Engine coordinates workflow operations: template resolution, permission
// gating, the card state machine, and read-side projections.
type Engine struct {
	store            *workflow.Store
	template         *template.Template
	logger           *slog.Logger
	recentWindowDays int
}

// New constructs an engine over the given store and template.
func New(store *workflow.Store, tpl *template.Template, cfg *config.Config, logger *slog.Logger) *Engine {
	recentWindow := 0
	if cfg != nil {
		recentWindow = cfg.Workflow.RecentWindowDays
	}
	return &Engine{
		store:            store,
		template:         tpl,
		logger:           logging.NewComponentLogger(logger, "engine"),
		recentWindowDays: recentWindow,
	}
}

// Template returns the stage template workflows are created from.
func (e *Engine) Template() *template.Template {
	return e.template
}
