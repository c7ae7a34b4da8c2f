package workflow

import (
	"fmt"
	"strings"
)

// Verdict is the outcome of a dry-run sequence check.
type Verdict struct {
	IsValid bool
	Error   string
}

// EvaluateSequence checks whether the card may leave ready/pending for the
// target status, given every card of the same workflow. Prerequisite
// completeness is the deciding factor: the verdict is identical for
// in_progress and completed targets. Targets that do not start work
// (pending, ready, blocked) carry no sequencing requirement.
func EvaluateSequence(card *Card, siblings []*Card, target CardStatus) Verdict {
	if card == nil {
		return Verdict{Error: "card is nil"}
	}
	if target != CardInProgress && target != CardCompleted {
		return Verdict{IsValid: true}
	}
	if card.StageOrder <= 1 {
		return Verdict{IsValid: true}
	}
	incomplete := make([]string, 0, len(siblings))
	for _, sibling := range siblings {
		if sibling == nil || sibling.ID == card.ID {
			continue
		}
		if sibling.WorkflowID != card.WorkflowID {
			continue
		}
		if sibling.StageOrder < card.StageOrder && sibling.Status != CardCompleted {
			incomplete = append(incomplete, fmt.Sprintf("%s (stage %d)", sibling.StageName, sibling.StageOrder))
		}
	}
	if len(incomplete) > 0 {
		return Verdict{Error: "prerequisite stages not completed: " + strings.Join(incomplete, ", ")}
	}
	return Verdict{IsValid: true}
}

// ValidateTransition applies the full card state machine rules for a
// requested transition: known target, blocked-reason requirement, terminal
// completed state, and sequential activation. A nil return means the
// transition may be applied.
func ValidateTransition(card *Card, siblings []*Card, target CardStatus, reason string) error {
	if card == nil {
		return Wrap(ErrNotFound, "transition", "card does not exist", nil)
	}
	if _, ok := cardStatusSet[target]; !ok {
		return Wrap(ErrValidation, "transition", fmt.Sprintf("unknown card status %q", target), nil)
	}
	if card.Status == CardCompleted && target != CardCompleted {
		return Wrap(ErrValidation, "transition", "card is already completed", nil)
	}
	if target == CardBlocked && strings.TrimSpace(reason) == "" {
		return Wrap(ErrValidation, "transition", "blocked status requires a reason", nil)
	}
	if verdict := EvaluateSequence(card, siblings, target); !verdict.IsValid {
		return Wrap(ErrSequence, "transition", verdict.Error, nil)
	}
	return nil
}

// nextCard returns the sibling at the immediately following stage order, or
// nil when the card is the final stage.
func nextCard(card *Card, siblings []*Card) *Card {
	for _, sibling := range siblings {
		if sibling == nil {
			continue
		}
		if sibling.WorkflowID == card.WorkflowID && sibling.StageOrder == card.StageOrder+1 {
			return sibling
		}
	}
	return nil
}

// allCompleted reports whether every card in the set has completed. The card
// being transitioned is evaluated at its target status by the caller before
// this check runs.
func allCompleted(cards []*Card) bool {
	for _, card := range cards {
		if card == nil {
			continue
		}
		if card.Status != CardCompleted {
			return false
		}
	}
	return true
}
