package engine_test

import (
	"context"
	"errors"
	"testing"

	"stitchflow/internal/access"
	"stitchflow/internal/engine"
	"stitchflow/internal/logging"
	"stitchflow/internal/testsupport"
	"stitchflow/internal/workflow"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	tpl := testsupport.MustDefaultTemplate(t)
	return engine.New(store, tpl, cfg, logging.NewNop())
}

func adminUser() *access.User {
	return &access.User{ID: 1, Username: "admin", Role: access.RoleAdmin}
}

func TestCreateWorkflowMapsAssignees(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	designer := "dana@example.com"
	programmer := "  omar  "
	supervisorFinishing := ""
	wf, err := eng.CreateWorkflow(ctx, engine.CreateRequest{
		SampleRequestID:     "SR-200",
		WorkflowName:        "Cable knit sample",
		Priority:            "high",
		CreatedBy:           "planner",
		Designer:            &designer,
		Programmer:          &programmer,
		SupervisorFinishing: &supervisorFinishing,
	})
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}
	if wf.Priority != workflow.PriorityHigh {
		t.Fatalf("expected high priority, got %s", wf.Priority)
	}

	cards, err := eng.GetWorkflowCards(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflowCards failed: %v", err)
	}
	if len(cards) != 5 {
		t.Fatalf("expected 5 cards, got %d", len(cards))
	}

	// Design Approval has no assignee field and stays unassigned.
	if cards[0].AssignedTo != nil {
		t.Fatalf("stage 1: expected nil assignee, got %q", *cards[0].AssignedTo)
	}
	// Mapped fields arrive verbatim, including spaces and empty strings.
	if cards[1].AssignedTo == nil || *cards[1].AssignedTo != designer {
		t.Fatalf("stage 2: expected %q, got %v", designer, cards[1].AssignedTo)
	}
	if cards[2].AssignedTo == nil || *cards[2].AssignedTo != programmer {
		t.Fatalf("stage 3: expected %q verbatim, got %v", programmer, cards[2].AssignedTo)
	}
	// Omitted field yields nil, never empty string.
	if cards[3].AssignedTo != nil {
		t.Fatalf("stage 4: expected nil for omitted field, got %q", *cards[3].AssignedTo)
	}
	// Supplied empty string survives as empty string, not nil.
	if cards[4].AssignedTo == nil || *cards[4].AssignedTo != "" {
		t.Fatalf("stage 5: expected empty-string assignee, got %v", cards[4].AssignedTo)
	}
}

func TestCreateWorkflowValidation(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  engine.CreateRequest
	}{
		{"missing sample request id", engine.CreateRequest{WorkflowName: "x"}},
		{"missing name", engine.CreateRequest{SampleRequestID: "SR-1"}},
		{"unknown priority", engine.CreateRequest{SampleRequestID: "SR-1", WorkflowName: "x", Priority: "urgent"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := eng.CreateWorkflow(ctx, tc.req); !errors.Is(err, workflow.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestUpdateCardStatusHappyPath(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	wf, err := eng.CreateWorkflow(ctx, engine.CreateRequest{SampleRequestID: "SR-201", WorkflowName: "Happy path"})
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}
	cards, err := eng.GetWorkflowCards(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflowCards failed: %v", err)
	}

	user := adminUser()
	for _, card := range cards {
		if _, err := eng.UpdateCardStatus(ctx, user, card.ID, workflow.CardInProgress, ""); err != nil {
			t.Fatalf("start %q: %v", card.StageName, err)
		}
		if _, err := eng.UpdateCardStatus(ctx, user, card.ID, workflow.CardCompleted, ""); err != nil {
			t.Fatalf("complete %q: %v", card.StageName, err)
		}
	}

	final, err := eng.GetWorkflow(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflow failed: %v", err)
	}
	if final.Status != workflow.StatusCompleted || final.CompletedAt == nil {
		t.Fatalf("expected completed workflow, got %#v", final)
	}
}

func TestUpdateCardStatusPermissionDenied(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	designer := "dana"
	wf, err := eng.CreateWorkflow(ctx, engine.CreateRequest{
		SampleRequestID: "SR-202",
		WorkflowName:    "Gate test",
		Designer:        &designer,
	})
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}
	cards, err := eng.GetWorkflowCards(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflowCards failed: %v", err)
	}

	outsider := &access.User{Username: "intruder", Role: access.RoleUser}
	_, err = eng.UpdateCardStatus(ctx, outsider, cards[0].ID, workflow.CardInProgress, "")
	if !errors.Is(err, workflow.ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}

	// Denial leaves the card untouched.
	after, err := eng.GetWorkflowCards(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflowCards failed: %v", err)
	}
	if after[0].Status != workflow.CardPending {
		t.Fatalf("expected pending after denial, got %s", after[0].Status)
	}
}

func TestUpdateCardStatusOutOfOrder(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	wf, err := eng.CreateWorkflow(ctx, engine.CreateRequest{SampleRequestID: "SR-203", WorkflowName: "Order test"})
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}
	cards, err := eng.GetWorkflowCards(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflowCards failed: %v", err)
	}

	_, err = eng.UpdateCardStatus(ctx, adminUser(), cards[3].ID, workflow.CardInProgress, "")
	if !errors.Is(err, workflow.ErrSequence) {
		t.Fatalf("expected ErrSequence, got %v", err)
	}
}

func TestValidateStageSequenceDryRun(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	wf, err := eng.CreateWorkflow(ctx, engine.CreateRequest{SampleRequestID: "SR-204", WorkflowName: "Dry run"})
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}
	cards, err := eng.GetWorkflowCards(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflowCards failed: %v", err)
	}

	verdict, err := eng.ValidateStageSequence(ctx, cards[2].ID, workflow.CardCompleted)
	if err != nil {
		t.Fatalf("ValidateStageSequence failed: %v", err)
	}
	if verdict.IsValid {
		t.Fatal("expected invalid verdict")
	}

	verdict, err = eng.ValidateStageSequence(ctx, cards[0].ID, workflow.CardInProgress)
	if err != nil {
		t.Fatalf("ValidateStageSequence failed: %v", err)
	}
	if !verdict.IsValid {
		t.Fatalf("expected valid verdict for first stage, got %+v", verdict)
	}
}

func TestBoardViewAndStatistics(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	wf, err := eng.CreateWorkflow(ctx, engine.CreateRequest{SampleRequestID: "SR-205", WorkflowName: "Projections"})
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}

	view, err := eng.BoardView(ctx, wf.ID)
	if err != nil {
		t.Fatalf("BoardView failed: %v", err)
	}
	if len(view.Lanes) != 1 || view.Lanes[0].WorkflowID != wf.ID {
		t.Fatalf("unexpected board view: %+v", view)
	}
	if got := len(view.Flatten()); got != 5 {
		t.Fatalf("expected 5 cards on the board, got %d", got)
	}

	report, err := eng.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if report.TotalWorkflows != 1 || report.TotalCards != 5 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.RecentWorkflows != 1 {
		t.Fatalf("expected 1 recent workflow, got %d", report.RecentWorkflows)
	}
}

func TestBlockedRequiresReasonThroughEngine(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	wf, err := eng.CreateWorkflow(ctx, engine.CreateRequest{SampleRequestID: "SR-206", WorkflowName: "Blocked"})
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}
	cards, err := eng.GetWorkflowCards(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetWorkflowCards failed: %v", err)
	}

	if _, err := eng.UpdateCardStatus(ctx, adminUser(), cards[0].ID, workflow.CardBlocked, ""); !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	updated, err := eng.UpdateCardStatus(ctx, adminUser(), cards[0].ID, workflow.CardBlocked, "awaiting yarn")
	if err != nil {
		t.Fatalf("block with reason failed: %v", err)
	}
	if updated.BlockedReason != "awaiting yarn" {
		t.Fatalf("unexpected blocked reason %q", updated.BlockedReason)
	}
}

func TestCancelWorkflowThroughEngine(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	wf, err := eng.CreateWorkflow(ctx, engine.CreateRequest{SampleRequestID: "SR-207", WorkflowName: "Cancel"})
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}
	cancelled, err := eng.CancelWorkflow(ctx, wf.ID)
	if err != nil {
		t.Fatalf("CancelWorkflow failed: %v", err)
	}
	if cancelled.Status != workflow.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	if _, err := eng.CancelWorkflow(ctx, 9999); !errors.Is(err, workflow.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
