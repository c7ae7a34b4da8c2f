package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateWorkflow inserts a workflow together with its full card set in one
// transaction. IDs and timestamps are assigned in place.
func (s *Store) CreateWorkflow(ctx context.Context, wf *Workflow, cards []*Card) error {
	if wf == nil {
		return errors.New("workflow is nil")
	}
	if len(cards) == 0 {
		return Wrap(ErrValidation, "create workflow", "workflow requires at least one card", nil)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	return s.withImmediateTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO workflows (
                sample_request_id, name, status, priority, created_by,
                due_date, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			wf.SampleRequestID,
			wf.Name,
			StatusActive,
			wf.Priority,
			nullableString(wf.CreatedBy),
			nullableTime(wf.DueDate),
			timestamp,
			timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert workflow: %w", err)
		}
		workflowID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		for _, card := range cards {
			res, err := tx.ExecContext(
				ctx,
				`INSERT INTO cards (
                    workflow_id, stage_name, stage_order, title, description,
                    assigned_to, status, due_date, created_at, updated_at
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				workflowID,
				card.StageName,
				card.StageOrder,
				card.Title,
				nullableString(card.Description),
				nullableAssignee(card.AssignedTo),
				card.Status,
				nullableTime(card.DueDate),
				timestamp,
				timestamp,
			)
			if err != nil {
				return fmt.Errorf("insert card %q: %w", card.StageName, err)
			}
			cardID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("last insert id: %w", err)
			}
			card.ID = cardID
			card.WorkflowID = workflowID
			card.CreatedAt = now
			card.UpdatedAt = now
		}

		wf.ID = workflowID
		wf.Status = StatusActive
		wf.CreatedAt = now
		wf.UpdatedAt = now
		return nil
	})
}

// GetWorkflow fetches a workflow by identifier. Returns nil when missing.
func (s *Store) GetWorkflow(ctx context.Context, id int64) (*Workflow, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+workflowColumns+` FROM workflows WHERE id = ?`, id)
	wf, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	return wf, nil
}

// ListWorkflows returns workflows filtered by status set (or all workflows
// when no status is provided), ordered by creation time.
func (s *Store) ListWorkflows(ctx context.Context, statuses ...Status) ([]*Workflow, error) {
	ctx = ensureContext(ctx)

	baseQuery := `SELECT ` + workflowColumns + ` FROM workflows`
	orderClause := ` ORDER BY created_at, id`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

// CancelWorkflow marks an active workflow as cancelled. Card statuses are
// left untouched.
func (s *Store) CancelWorkflow(ctx context.Context, id int64) (*Workflow, error) {
	wf, err := s.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	if wf == nil {
		return nil, Wrap(ErrNotFound, "cancel workflow", fmt.Sprintf("workflow %d does not exist", id), nil)
	}
	if wf.Status != StatusActive {
		return nil, Wrap(ErrValidation, "cancel workflow", fmt.Sprintf("workflow %d is %s", id, wf.Status), nil)
	}

	_, err = s.execWithRetry(
		ctx,
		`UPDATE workflows SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		StatusCancelled,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("cancel workflow: %w", err)
	}
	return s.GetWorkflow(ctx, id)
}

// Snapshot returns the full workflow and card collections for read-side
// projections (board, statistics).
func (s *Store) Snapshot(ctx context.Context) ([]*Workflow, []*Card, error) {
	workflows, err := s.ListWorkflows(ctx)
	if err != nil {
		return nil, nil, err
	}
	cards, err := s.ListCards(ctx)
	if err != nil {
		return nil, nil, err
	}
	return workflows, cards, nil
}

// HealthSummary describes aggregated workflow and card counts.
type HealthSummary struct {
	TotalWorkflows     int
	ActiveWorkflows    int
	CompletedWorkflows int
	CancelledWorkflows int
	TotalCards         int
	BlockedCards       int
}

// Health aggregates workflow state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	ctx = ensureContext(ctx)
	health := HealthSummary{}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM workflows GROUP BY status`)
	if err != nil {
		return health, fmt.Errorf("workflow stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return health, err
		}
		health.TotalWorkflows += count
		switch status {
		case StatusActive:
			health.ActiveWorkflows = count
		case StatusCompleted:
			health.CompletedWorkflows = count
		case StatusCancelled:
			health.CancelledWorkflows = count
		}
	}
	if err := rows.Err(); err != nil {
		return health, err
	}

	cardRows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM cards GROUP BY status`)
	if err != nil {
		return health, fmt.Errorf("card stats: %w", err)
	}
	defer cardRows.Close()
	for cardRows.Next() {
		var status CardStatus
		var count int
		if err := cardRows.Scan(&status, &count); err != nil {
			return health, err
		}
		health.TotalCards += count
		if status == CardBlocked {
			health.BlockedCards = count
		}
	}
	return health, cardRows.Err()
}
