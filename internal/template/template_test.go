package template_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stitchflow/internal/template"
)

func TestDefaultTemplate(t *testing.T) {
	tpl, err := template.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if tpl.Name != "sample_development" {
		t.Fatalf("unexpected template name %q", tpl.Name)
	}
	if tpl.StageCount() != 5 {
		t.Fatalf("expected 5 stages, got %d", tpl.StageCount())
	}

	expected := []struct {
		order         int
		name          string
		assigneeField string
	}{
		{1, "Design Approval", ""},
		{2, "Assign Designer", "designer"},
		{3, "Programming", "programmer"},
		{4, "Supervisor Knitting", "supervisor_knitting"},
		{5, "Supervisor Finishing", "supervisor_finishing"},
	}
	for i, want := range expected {
		stage := tpl.Stages[i]
		if stage.StageOrder != want.order || stage.StageName != want.name {
			t.Fatalf("stage %d: got %q order %d", i, stage.StageName, stage.StageOrder)
		}
		if stage.AssigneeField != want.assigneeField {
			t.Fatalf("stage %q: expected assignee field %q, got %q", stage.StageName, want.assigneeField, stage.AssigneeField)
		}
	}
}

func TestLoadCustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.toml")
	contents := `
name = "short_run"

[[stages]]
stage_name = "Approve"
stage_order = 1

[[stages]]
stage_name = "Program"
stage_order = 2
assignee_field = "programmer"

[[stages]]
stage_name = "Finish"
stage_order = 3
assignee_field = "supervisor_finishing"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	tpl, err := template.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tpl.StageCount() != 3 {
		t.Fatalf("expected 3 stages, got %d", tpl.StageCount())
	}
	if stage := tpl.StageByOrder(2); stage == nil || stage.AssigneeField != "programmer" {
		t.Fatalf("unexpected stage at order 2: %#v", stage)
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	tpl, err := template.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tpl.Name != "sample_development" {
		t.Fatalf("expected default template, got %q", tpl.Name)
	}
}

func TestValidateRejectsBadTemplates(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			name: "too few stages",
			contents: `
name = "tiny"
[[stages]]
stage_name = "Only"
stage_order = 1
`,
			wantErr: "at least 3 stages",
		},
		{
			name: "gap in orders",
			contents: `
name = "gapped"
[[stages]]
stage_name = "A"
stage_order = 1
[[stages]]
stage_name = "B"
stage_order = 2
[[stages]]
stage_name = "C"
stage_order = 4
`,
			wantErr: "without gaps",
		},
		{
			name: "duplicate stage name",
			contents: `
name = "dupes"
[[stages]]
stage_name = "Same"
stage_order = 1
[[stages]]
stage_name = "Same"
stage_order = 2
[[stages]]
stage_name = "Other"
stage_order = 3
`,
			wantErr: "duplicate stage name",
		},
		{
			name: "unknown assignee field",
			contents: `
name = "badfield"
[[stages]]
stage_name = "A"
stage_order = 1
[[stages]]
stage_name = "B"
stage_order = 2
assignee_field = "welder"
[[stages]]
stage_name = "C"
stage_order = 3
`,
			wantErr: "unknown assignee field",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "template.toml")
			if err := os.WriteFile(path, []byte(tc.contents), 0o644); err != nil {
				t.Fatalf("write template: %v", err)
			}
			_, err := template.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
