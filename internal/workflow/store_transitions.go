package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TransitionCard applies a card status transition with full state machine
// enforcement. Completion of card k, activation of card k+1, and workflow
// completion on the final stage are applied as one transaction: no observable
// state exists where a card is completed but its successor is still ready.
func (s *Store) TransitionCard(ctx context.Context, cardID int64, target CardStatus, reason string) (*Card, error) {
	ctx = ensureContext(ctx)
	var updated *Card

	err := s.withImmediateTx(ctx, func(tx *sql.Tx) error {
		card, siblings, err := loadCardSet(ctx, tx, cardID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(card, siblings, target, reason); err != nil {
			return err
		}

		now := time.Now().UTC()
		timestamp := now.Format(time.RFC3339Nano)

		var (
			completedAt   any
			blockedReason any
		)
		switch target {
		case CardCompleted:
			completedAt = timestamp
			blockedReason = nil
		case CardBlocked:
			completedAt = nullableTime(card.CompletedAt)
			blockedReason = strings.TrimSpace(reason)
		default:
			// Leaving blocked clears the reason; other moves preserve nothing.
			completedAt = nil
			blockedReason = nil
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE cards SET status = ?, completed_at = ?, blocked_reason = ?, updated_at = ? WHERE id = ?`,
			target,
			completedAt,
			blockedReason,
			timestamp,
			card.ID,
		); err != nil {
			return fmt.Errorf("update card: %w", err)
		}

		if target == CardCompleted {
			if err := activateSuccessor(ctx, tx, card, siblings, timestamp); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE workflows SET updated_at = ? WHERE id = ?`,
			timestamp,
			card.WorkflowID,
		); err != nil {
			return fmt.Errorf("touch workflow: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err = s.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ValidateSequence is the dry-run entry point: it evaluates the sequencing
// rule for a card and target status without mutating anything.
func (s *Store) ValidateSequence(ctx context.Context, cardID int64, target CardStatus) (Verdict, error) {
	card, err := s.GetCard(ctx, cardID)
	if err != nil {
		return Verdict{}, err
	}
	if card == nil {
		return Verdict{}, Wrap(ErrNotFound, "validate sequence", fmt.Sprintf("card %d does not exist", cardID), nil)
	}
	siblings, err := s.ListCards(ctx, card.WorkflowID)
	if err != nil {
		return Verdict{}, err
	}
	return EvaluateSequence(card, siblings, target), nil
}

func loadCardSet(ctx context.Context, tx *sql.Tx, cardID int64) (*Card, []*Card, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, cardID)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, Wrap(ErrNotFound, "transition", fmt.Sprintf("card %d does not exist", cardID), nil)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load card: %w", err)
	}

	rows, err := tx.QueryContext(
		ctx,
		`SELECT `+cardColumns+` FROM cards WHERE workflow_id = ? ORDER BY stage_order`,
		card.WorkflowID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("load workflow cards: %w", err)
	}
	defer rows.Close()

	var siblings []*Card
	for rows.Next() {
		sibling, err := scanCard(rows)
		if err != nil {
			return nil, nil, err
		}
		siblings = append(siblings, sibling)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return card, siblings, nil
}

// activateSuccessor moves the next stage's card from ready to pending, or
// completes the owning workflow when the final stage just finished. Cards
// beyond the immediate successor stay ready.
func activateSuccessor(ctx context.Context, tx *sql.Tx, card *Card, siblings []*Card, timestamp string) error {
	successor := nextCard(card, siblings)
	if successor != nil {
		if successor.Status != CardReady {
			return nil
		}
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE cards SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			CardPending,
			timestamp,
			successor.ID,
			CardReady,
		); err != nil {
			return fmt.Errorf("activate successor: %w", err)
		}
		return nil
	}

	for _, sibling := range siblings {
		if sibling.ID != card.ID && sibling.Status != CardCompleted {
			return nil
		}
	}
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE workflows SET status = ?, completed_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
		StatusCompleted,
		timestamp,
		timestamp,
		card.WorkflowID,
		StatusActive,
	); err != nil {
		return fmt.Errorf("complete workflow: %w", err)
	}
	return nil
}
