package testsupport

import (
	"context"
	"testing"

	"stitchflow/internal/config"
	"stitchflow/internal/template"
	"stitchflow/internal/workflow"
)

// MustOpenStore opens a workflow.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *workflow.Store {
	t.Helper()

	store, err := workflow.Open(cfg)
	if err != nil {
		t.Fatalf("workflow.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustDefaultTemplate loads the embedded default template for tests.
func MustDefaultTemplate(t testing.TB) *template.Template {
	t.Helper()

	tpl, err := template.Default()
	if err != nil {
		t.Fatalf("template.Default: %v", err)
	}
	return tpl
}

// SeedWorkflow creates a workflow whose cards follow the provided template,
// with stage 1 pending and the rest ready. The assignees slice, when
// non-empty, is matched to stages by index.
func SeedWorkflow(t testing.TB, store *workflow.Store, tpl *template.Template, sampleRequestID, name string, assignees ...*string) (*workflow.Workflow, []*workflow.Card) {
	t.Helper()

	wf := &workflow.Workflow{
		SampleRequestID: sampleRequestID,
		Name:            name,
		Priority:        workflow.PriorityMedium,
	}
	cards := make([]*workflow.Card, 0, len(tpl.Stages))
	for i, stage := range tpl.Stages {
		card := &workflow.Card{
			StageName:  stage.StageName,
			StageOrder: stage.StageOrder,
			Title:      stage.StageName,
			Status:     workflow.InitialCardStatus(stage.StageOrder),
		}
		if i < len(assignees) {
			card.AssignedTo = assignees[i]
		}
		cards = append(cards, card)
	}

	if err := store.CreateWorkflow(context.Background(), wf, cards); err != nil {
		t.Fatalf("store.CreateWorkflow: %v", err)
	}
	return wf, cards
}

// CompleteThrough advances a workflow's cards in order, completing every
// stage up to and including order.
func CompleteThrough(t testing.TB, store *workflow.Store, cards []*workflow.Card, order int) {
	t.Helper()

	ctx := context.Background()
	for _, card := range cards {
		if card.StageOrder > order {
			return
		}
		if _, err := store.TransitionCard(ctx, card.ID, workflow.CardInProgress, ""); err != nil {
			t.Fatalf("start card %q: %v", card.StageName, err)
		}
		if _, err := store.TransitionCard(ctx, card.ID, workflow.CardCompleted, ""); err != nil {
			t.Fatalf("complete card %q: %v", card.StageName, err)
		}
	}
}

// StringPtr returns a pointer to value, preserving empty strings.
func StringPtr(value string) *string {
	return &value
}
