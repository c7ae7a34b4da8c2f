package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"stitchflow/internal/daemon"
	"stitchflow/internal/engine"
	"stitchflow/internal/ipc"
	"stitchflow/internal/logging"
	"stitchflow/internal/testsupport"
	"stitchflow/internal/workflow"
)

func newClient(t *testing.T) *ipc.Client {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	tpl := testsupport.MustDefaultTemplate(t)
	eng := engine.New(store, tpl, cfg, logging.NewNop())

	d, err := daemon.New(cfg, store, eng, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Stop() })

	socketPath := filepath.Join(t.TempDir(), "stitchflow.sock")
	server, err := ipc.NewServer(context.Background(), socketPath, d, logging.NewNop())
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	t.Cleanup(func() { server.Close() })
	go server.Serve()

	client, err := ipc.Dial(socketPath)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func adminUser() ipc.User {
	return ipc.User{ID: 1, Username: "admin_user", Role: "admin"}
}

func TestWorkflowLifecycleOverSocket(t *testing.T) {
	client := newClient(t)

	created, err := client.WorkflowCreate(ipc.WorkflowCreateRequest{
		SampleRequestID: "SR-1001",
		WorkflowName:    "Spring Cardigan",
		Priority:        "high",
		CreatedBy:       "planner",
		Designer:        testsupport.StringPtr("alice"),
	})
	if err != nil {
		t.Fatalf("WorkflowCreate failed: %v", err)
	}
	if created.Workflow.ID == 0 {
		t.Fatal("expected assigned workflow ID")
	}
	if created.Workflow.Status != string(workflow.StatusActive) {
		t.Fatalf("expected active workflow, got %q", created.Workflow.Status)
	}

	shown, err := client.WorkflowShow(created.Workflow.ID)
	if err != nil {
		t.Fatalf("WorkflowShow failed: %v", err)
	}
	if len(shown.Cards) != 5 {
		t.Fatalf("expected 5 cards, got %d", len(shown.Cards))
	}
	if shown.Cards[0].Status != string(workflow.CardPending) {
		t.Fatalf("expected first card pending, got %q", shown.Cards[0].Status)
	}
	designer := shown.Cards[1].AssignedTo
	if designer == nil || *designer != "alice" {
		t.Fatalf("expected designer alice, got %v", designer)
	}
	if shown.Cards[2].AssignedTo != nil {
		t.Fatalf("expected unassigned programmer card, got %v", *shown.Cards[2].AssignedTo)
	}

	listed, err := client.WorkflowList("active")
	if err != nil {
		t.Fatalf("WorkflowList failed: %v", err)
	}
	if len(listed.Workflows) != 1 {
		t.Fatalf("expected 1 active workflow, got %d", len(listed.Workflows))
	}

	cancelled, err := client.WorkflowCancel(created.Workflow.ID)
	if err != nil {
		t.Fatalf("WorkflowCancel failed: %v", err)
	}
	if cancelled.Workflow.Status != string(workflow.StatusCancelled) {
		t.Fatalf("expected cancelled workflow, got %q", cancelled.Workflow.Status)
	}
}

func TestCardUpdateAndValidateOverSocket(t *testing.T) {
	client := newClient(t)

	created, err := client.WorkflowCreate(ipc.WorkflowCreateRequest{
		SampleRequestID: "SR-2002",
		WorkflowName:    "Knit Sample",
	})
	if err != nil {
		t.Fatalf("WorkflowCreate failed: %v", err)
	}
	shown, err := client.WorkflowShow(created.Workflow.ID)
	if err != nil {
		t.Fatalf("WorkflowShow failed: %v", err)
	}
	first, second := shown.Cards[0], shown.Cards[1]

	verdict, err := client.CardValidate(second.ID, "in_progress")
	if err != nil {
		t.Fatalf("CardValidate failed: %v", err)
	}
	if verdict.IsValid {
		t.Fatal("expected out-of-order transition to be invalid")
	}
	if verdict.Error == "" {
		t.Fatal("expected verdict error message")
	}

	updated, err := client.CardUpdate(ipc.CardUpdateRequest{
		User:   adminUser(),
		CardID: first.ID,
		Target: "in_progress",
	})
	if err != nil {
		t.Fatalf("CardUpdate failed: %v", err)
	}
	if updated.Card.Status != string(workflow.CardInProgress) {
		t.Fatalf("expected in_progress, got %q", updated.Card.Status)
	}

	if _, err := client.CardUpdate(ipc.CardUpdateRequest{
		User:   ipc.User{ID: 2, Username: "someone_else", Role: "user"},
		CardID: second.ID,
		Target: "in_progress",
	}); err == nil {
		t.Fatal("expected permission error over the socket")
	} else if !strings.Contains(err.Error(), "may not update") {
		t.Fatalf("expected permission message, got %v", err)
	}
}

func TestCardCommentAndAttachmentOverSocket(t *testing.T) {
	client := newClient(t)

	created, err := client.WorkflowCreate(ipc.WorkflowCreateRequest{
		SampleRequestID: "SR-3003",
		WorkflowName:    "Finishing Sample",
	})
	if err != nil {
		t.Fatalf("WorkflowCreate failed: %v", err)
	}
	shown, err := client.WorkflowShow(created.Workflow.ID)
	if err != nil {
		t.Fatalf("WorkflowShow failed: %v", err)
	}
	cardID := shown.Cards[0].ID

	comment, err := client.CardComment(ipc.CardCommentRequest{
		CardID: cardID,
		Author: "alice",
		Body:   "swatch approved",
	})
	if err != nil {
		t.Fatalf("CardComment failed: %v", err)
	}
	if comment.Comment.ID == 0 || comment.Comment.Body != "swatch approved" {
		t.Fatalf("unexpected comment: %+v", comment.Comment)
	}

	attachment, err := client.CardAttach(ipc.CardAttachRequest{
		CardID:     cardID,
		FileName:   "swatch.png",
		FilePath:   "/srv/samples/swatch.png",
		UploadedBy: "alice",
	})
	if err != nil {
		t.Fatalf("CardAttach failed: %v", err)
	}
	if attachment.Attachment.FileName != "swatch.png" {
		t.Fatalf("unexpected attachment: %+v", attachment.Attachment)
	}
}

func TestBoardStatsAndHealthOverSocket(t *testing.T) {
	client := newClient(t)

	created, err := client.WorkflowCreate(ipc.WorkflowCreateRequest{
		SampleRequestID: "SR-4004",
		WorkflowName:    "Board Sample",
	})
	if err != nil {
		t.Fatalf("WorkflowCreate failed: %v", err)
	}

	board, err := client.Board(created.Workflow.ID)
	if err != nil {
		t.Fatalf("Board failed: %v", err)
	}
	if len(board.Lanes) != 1 {
		t.Fatalf("expected 1 lane, got %d", len(board.Lanes))
	}
	if len(board.Lanes[0].Columns) != 5 {
		t.Fatalf("expected 5 columns, got %d", len(board.Lanes[0].Columns))
	}

	report, err := client.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if report.TotalWorkflows != 1 || report.TotalCards != 5 {
		t.Fatalf("unexpected report counts: %+v", report)
	}

	health, err := client.Health()
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.TotalWorkflows != 1 || health.ActiveWorkflows != 1 {
		t.Fatalf("unexpected health counts: %+v", health)
	}
}

func TestDialMissingSocket(t *testing.T) {
	if _, err := ipc.Dial(filepath.Join(t.TempDir(), "absent.sock")); err == nil {
		t.Fatal("expected dial failure for missing socket")
	}
}
