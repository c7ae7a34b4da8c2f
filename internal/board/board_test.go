package board_test

import (
	"testing"

	"stitchflow/internal/board"
	"stitchflow/internal/workflow"
)

func makeCard(id, workflowID int64, order int, status workflow.CardStatus) *workflow.Card {
	return &workflow.Card{ID: id, WorkflowID: workflowID, StageOrder: order, Status: status}
}

func TestBuildGroupsByWorkflowAndStatus(t *testing.T) {
	cards := []*workflow.Card{
		makeCard(1, 10, 1, workflow.CardCompleted),
		makeCard(2, 10, 2, workflow.CardInProgress),
		makeCard(3, 10, 3, workflow.CardReady),
		makeCard(4, 20, 1, workflow.CardPending),
		makeCard(5, 20, 2, workflow.CardBlocked),
	}

	view := board.Build(cards)
	if len(view.Lanes) != 2 {
		t.Fatalf("expected 2 lanes, got %d", len(view.Lanes))
	}
	if view.Lanes[0].WorkflowID != 10 || view.Lanes[1].WorkflowID != 20 {
		t.Fatalf("lanes out of order: %+v", view.Lanes)
	}

	lane := view.Lane(10)
	if lane == nil {
		t.Fatal("expected lane for workflow 10")
	}
	if len(lane.Columns) != len(workflow.AllCardStatuses()) {
		t.Fatalf("expected all status buckets, got %d", len(lane.Columns))
	}
	for _, column := range lane.Columns {
		switch column.Status {
		case workflow.CardCompleted, workflow.CardInProgress, workflow.CardReady:
			if len(column.Cards) != 1 {
				t.Fatalf("bucket %s: expected 1 card, got %d", column.Status, len(column.Cards))
			}
		default:
			if len(column.Cards) != 0 {
				t.Fatalf("bucket %s: expected empty, got %d", column.Status, len(column.Cards))
			}
		}
	}
}

func TestBuildEmptyBucketsAlwaysPresent(t *testing.T) {
	view := board.Build([]*workflow.Card{makeCard(1, 1, 1, workflow.CardPending)})
	lane := view.Lane(1)
	if lane == nil {
		t.Fatal("expected lane")
	}
	seen := make(map[workflow.CardStatus]bool)
	for _, column := range lane.Columns {
		seen[column.Status] = true
	}
	for _, status := range workflow.AllCardStatuses() {
		if !seen[status] {
			t.Fatalf("missing bucket for %s", status)
		}
	}
}

func TestFlattenIsAPartition(t *testing.T) {
	cards := []*workflow.Card{
		makeCard(1, 10, 2, workflow.CardReady),
		makeCard(2, 10, 1, workflow.CardPending),
		makeCard(3, 20, 1, workflow.CardBlocked),
	}

	flat := board.Build(cards).Flatten()
	if len(flat) != len(cards) {
		t.Fatalf("expected %d cards after flatten, got %d", len(cards), len(flat))
	}
	seen := make(map[int64]bool)
	for _, card := range flat {
		if seen[card.ID] {
			t.Fatalf("card %d appears twice", card.ID)
		}
		seen[card.ID] = true
	}
	for _, card := range cards {
		if !seen[card.ID] {
			t.Fatalf("card %d missing after flatten", card.ID)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	cases := map[workflow.CardStatus]string{
		workflow.CardPending:    "Pending",
		workflow.CardInProgress: "In Progress",
		workflow.CardBlocked:    "Blocked",
	}
	for status, want := range cases {
		if got := board.StatusLabel(status); got != want {
			t.Fatalf("StatusLabel(%s) = %q, want %q", status, got, want)
		}
	}
}
