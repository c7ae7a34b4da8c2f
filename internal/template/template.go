package template

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed default_template.toml
var defaultTemplate []byte

// Known assignee-field names a stage may draw its assignee from.
var knownAssigneeFields = map[string]struct{}{
	"designer":             {},
	"programmer":           {},
	"supervisor_knitting":  {},
	"supervisor_finishing": {},
}

const minStages = 3

// Stage describes one step of a workflow template.
type Stage struct {
	StageName              string `toml:"stage_name"`
	StageOrder             int    `toml:"stage_order"`
	Description            string `toml:"description"`
	DefaultAssigneeRole    string `toml:"default_assignee_role"`
	AssigneeField          string `toml:"assignee_field"`
	EstimatedDurationHours int    `toml:"estimated_duration_hours"`
}

// Template is an ordered set of stages workflows are created from.
type Template struct {
	Name   string  `toml:"name"`
	Stages []Stage `toml:"stages"`
}

// Default returns the built-in sample development template.
func Default() (*Template, error) {
	return parse(defaultTemplate, "embedded default template")
}

// Load reads a template from path, falling back to the built-in template
// when path is empty.
func Load(path string) (*Template, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return parse(data, path)
}

func parse(data []byte, source string) (*Template, error) {
	var tpl Template
	if err := toml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", source, err)
	}
	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("template %s: %w", source, err)
	}
	sort.Slice(tpl.Stages, func(i, j int) bool {
		return tpl.Stages[i].StageOrder < tpl.Stages[j].StageOrder
	})
	return &tpl, nil
}

// Validate checks structural template invariants: a minimum stage count,
// gap-free orders starting at 1, unique stage names, and known
// assignee-field names.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("template name is required")
	}
	if len(t.Stages) < minStages {
		return fmt.Errorf("template requires at least %d stages, got %d", minStages, len(t.Stages))
	}

	orders := make(map[int]struct{}, len(t.Stages))
	names := make(map[string]struct{}, len(t.Stages))
	for _, stage := range t.Stages {
		name := strings.TrimSpace(stage.StageName)
		if name == "" {
			return fmt.Errorf("stage order %d has no name", stage.StageOrder)
		}
		if _, dup := names[name]; dup {
			return fmt.Errorf("duplicate stage name %q", name)
		}
		names[name] = struct{}{}

		if stage.StageOrder < 1 {
			return fmt.Errorf("stage %q has non-positive order %d", name, stage.StageOrder)
		}
		if _, dup := orders[stage.StageOrder]; dup {
			return fmt.Errorf("duplicate stage order %d", stage.StageOrder)
		}
		orders[stage.StageOrder] = struct{}{}

		if stage.AssigneeField != "" {
			if _, ok := knownAssigneeFields[stage.AssigneeField]; !ok {
				return fmt.Errorf("stage %q references unknown assignee field %q", name, stage.AssigneeField)
			}
		}
	}

	for order := 1; order <= len(t.Stages); order++ {
		if _, ok := orders[order]; !ok {
			return fmt.Errorf("stage orders must run 1..%d without gaps; missing %d", len(t.Stages), order)
		}
	}
	return nil
}

// StageCount returns the number of stages in the template.
func (t *Template) StageCount() int {
	return len(t.Stages)
}

// StageByOrder returns the stage with the given order, or nil.
func (t *Template) StageByOrder(order int) *Stage {
	for i := range t.Stages {
		if t.Stages[i].StageOrder == order {
			return &t.Stages[i]
		}
	}
	return nil
}
