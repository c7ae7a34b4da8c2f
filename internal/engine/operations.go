package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"stitchflow/internal/access"
	"stitchflow/internal/board"
	"stitchflow/internal/logging"
	"stitchflow/internal/stats"
	"stitchflow/internal/workflow"
)

// UpdateCardStatus runs the permission gate, then the card state machine.
// A denied gate means the store is never touched.
func (e *Engine) UpdateCardStatus(ctx context.Context, user *access.User, cardID int64, target workflow.CardStatus, reason string) (*workflow.Card, error) {
	requestID := uuid.NewString()
	logger := e.logger.With(
		logging.String(logging.FieldRequestID, requestID),
		logging.Int64(logging.FieldCardID, cardID),
	)

	card, err := e.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, workflow.Wrap(workflow.ErrNotFound, "update card", fmt.Sprintf("card %d does not exist", cardID), nil)
	}

	if !access.CanUpdate(user, card) {
		username := ""
		if user != nil {
			username = user.Username
		}
		logger.Warn("card update denied",
			logging.String("username", username),
			logging.String("target", string(target)),
		)
		return nil, workflow.Wrap(workflow.ErrPermission, "update card", fmt.Sprintf("user %q may not update card %d", username, cardID), nil)
	}

	updated, err := e.store.TransitionCard(ctx, cardID, target, reason)
	if err != nil {
		logger.Warn("card transition rejected",
			logging.String("target", string(target)),
			logging.Error(err),
		)
		return nil, err
	}

	logger.Info("card updated",
		logging.Int64(logging.FieldWorkflowID, updated.WorkflowID),
		logging.String(logging.FieldStage, updated.StageName),
		logging.String("status", string(updated.Status)),
	)
	return updated, nil
}

// ValidateStageSequence is the dry-run counterpart of UpdateCardStatus: it
// reports whether the sequencing rule permits the transition without
// mutating anything.
func (e *Engine) ValidateStageSequence(ctx context.Context, cardID int64, target workflow.CardStatus) (workflow.Verdict, error) {
	return e.store.ValidateSequence(ctx, cardID, target)
}

// GetWorkflow fetches a workflow by ID.
func (e *Engine) GetWorkflow(ctx context.Context, id int64) (*workflow.Workflow, error) {
	wf, err := e.store.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	if wf == nil {
		return nil, workflow.Wrap(workflow.ErrNotFound, "get workflow", fmt.Sprintf("workflow %d does not exist", id), nil)
	}
	return wf, nil
}

// GetWorkflowCards returns a workflow's cards in stage order.
func (e *Engine) GetWorkflowCards(ctx context.Context, id int64) ([]*workflow.Card, error) {
	if _, err := e.GetWorkflow(ctx, id); err != nil {
		return nil, err
	}
	return e.store.ListCards(ctx, id)
}

// ListWorkflows returns workflows, optionally filtered by status.
func (e *Engine) ListWorkflows(ctx context.Context, statuses ...workflow.Status) ([]*workflow.Workflow, error) {
	return e.store.ListWorkflows(ctx, statuses...)
}

// CancelWorkflow cancels an active workflow, leaving its cards untouched.
func (e *Engine) CancelWorkflow(ctx context.Context, id int64) (*workflow.Workflow, error) {
	wf, err := e.store.CancelWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	e.logger.Info("workflow cancelled", logging.Int64(logging.FieldWorkflowID, id))
	return wf, nil
}

// AddComment appends a comment to a card.
func (e *Engine) AddComment(ctx context.Context, cardID int64, author, body string) (*workflow.Comment, error) {
	return e.store.AddComment(ctx, cardID, author, body)
}

// AddAttachment records a file reference against a card.
func (e *Engine) AddAttachment(ctx context.Context, cardID int64, fileName, filePath, uploadedBy string) (*workflow.Attachment, error) {
	return e.store.AddAttachment(ctx, cardID, fileName, filePath, uploadedBy)
}

// ListComments returns a card's comments in insertion order.
func (e *Engine) ListComments(ctx context.Context, cardID int64) ([]*workflow.Comment, error) {
	return e.store.ListComments(ctx, cardID)
}

// BoardView groups cards into a board projection. With no IDs, every
// workflow's cards are included.
func (e *Engine) BoardView(ctx context.Context, workflowIDs ...int64) (*board.View, error) {
	cards, err := e.store.ListCards(ctx, workflowIDs...)
	if err != nil {
		return nil, err
	}
	return board.Build(cards), nil
}

// Statistics computes the aggregate report over the current snapshot.
func (e *Engine) Statistics(ctx context.Context) (*stats.Report, error) {
	workflows, cards, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Compute(workflows, cards, stats.Options{RecentWindowDays: e.recentWindowDays}), nil
}

// Health reports aggregate store counts for diagnostics.
func (e *Engine) Health(ctx context.Context) (workflow.HealthSummary, error) {
	return e.store.Health(ctx)
}
