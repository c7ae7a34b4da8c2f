package workflow_test

import (
	"errors"
	"testing"

	"stitchflow/internal/workflow"
)

func buildCards(statuses ...workflow.CardStatus) []*workflow.Card {
	cards := make([]*workflow.Card, 0, len(statuses))
	for i, status := range statuses {
		cards = append(cards, &workflow.Card{
			ID:         int64(i + 1),
			WorkflowID: 1,
			StageName:  "Stage",
			StageOrder: i + 1,
			Status:     status,
		})
	}
	return cards
}

func TestEvaluateSequence(t *testing.T) {
	cases := []struct {
		name      string
		statuses  []workflow.CardStatus
		cardIdx   int
		target    workflow.CardStatus
		wantValid bool
	}{
		{
			name:      "first stage always eligible",
			statuses:  []workflow.CardStatus{workflow.CardPending, workflow.CardReady, workflow.CardReady},
			cardIdx:   0,
			target:    workflow.CardInProgress,
			wantValid: true,
		},
		{
			name:      "second stage blocked by incomplete first",
			statuses:  []workflow.CardStatus{workflow.CardPending, workflow.CardReady, workflow.CardReady},
			cardIdx:   1,
			target:    workflow.CardInProgress,
			wantValid: false,
		},
		{
			name:      "second stage eligible after first completes",
			statuses:  []workflow.CardStatus{workflow.CardCompleted, workflow.CardPending, workflow.CardReady},
			cardIdx:   1,
			target:    workflow.CardInProgress,
			wantValid: true,
		},
		{
			name:      "completion target enforces the same rule",
			statuses:  []workflow.CardStatus{workflow.CardInProgress, workflow.CardReady, workflow.CardReady},
			cardIdx:   2,
			target:    workflow.CardCompleted,
			wantValid: false,
		},
		{
			name:      "blocking ignores sequence",
			statuses:  []workflow.CardStatus{workflow.CardPending, workflow.CardReady, workflow.CardReady},
			cardIdx:   2,
			target:    workflow.CardBlocked,
			wantValid: true,
		},
		{
			name:      "moving back to ready ignores sequence",
			statuses:  []workflow.CardStatus{workflow.CardPending, workflow.CardReady, workflow.CardReady},
			cardIdx:   1,
			target:    workflow.CardReady,
			wantValid: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cards := buildCards(tc.statuses...)
			verdict := workflow.EvaluateSequence(cards[tc.cardIdx], cards, tc.target)
			if verdict.IsValid != tc.wantValid {
				t.Fatalf("expected valid=%v, got %+v", tc.wantValid, verdict)
			}
			if !verdict.IsValid && verdict.Error == "" {
				t.Fatal("invalid verdict must carry an error message")
			}
		})
	}
}

func TestEvaluateSequenceSameVerdictForStartAndComplete(t *testing.T) {
	cards := buildCards(workflow.CardInProgress, workflow.CardReady)
	start := workflow.EvaluateSequence(cards[1], cards, workflow.CardInProgress)
	complete := workflow.EvaluateSequence(cards[1], cards, workflow.CardCompleted)
	if start.IsValid != complete.IsValid {
		t.Fatalf("in_progress and completed verdicts diverged: %+v vs %+v", start, complete)
	}
}

func TestValidateTransition(t *testing.T) {
	t.Run("unknown target", func(t *testing.T) {
		cards := buildCards(workflow.CardPending)
		err := workflow.ValidateTransition(cards[0], cards, workflow.CardStatus("archived"), "")
		if !errors.Is(err, workflow.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("completed is terminal", func(t *testing.T) {
		cards := buildCards(workflow.CardCompleted, workflow.CardPending)
		err := workflow.ValidateTransition(cards[0], cards, workflow.CardInProgress, "")
		if !errors.Is(err, workflow.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("blocked requires reason", func(t *testing.T) {
		cards := buildCards(workflow.CardInProgress)
		err := workflow.ValidateTransition(cards[0], cards, workflow.CardBlocked, "   ")
		if !errors.Is(err, workflow.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("sequence violation", func(t *testing.T) {
		cards := buildCards(workflow.CardPending, workflow.CardReady)
		err := workflow.ValidateTransition(cards[1], cards, workflow.CardInProgress, "")
		if !errors.Is(err, workflow.ErrSequence) {
			t.Fatalf("expected ErrSequence, got %v", err)
		}
	})

	t.Run("valid transition", func(t *testing.T) {
		cards := buildCards(workflow.CardPending, workflow.CardReady)
		if err := workflow.ValidateTransition(cards[0], cards, workflow.CardInProgress, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestInitialCardStatus(t *testing.T) {
	if got := workflow.InitialCardStatus(1); got != workflow.CardPending {
		t.Fatalf("stage 1: expected pending, got %s", got)
	}
	for order := 2; order <= 5; order++ {
		if got := workflow.InitialCardStatus(order); got != workflow.CardReady {
			t.Fatalf("stage %d: expected ready, got %s", order, got)
		}
	}
}
