package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stitchflow/internal/logging"
	"stitchflow/internal/workflow"
)

// CreateRequest carries everything needed to start a workflow. The named
// assignee fields feed stage cards through each stage's assignee_field
// mapping; nil means unassigned, and supplied values are copied verbatim.
type CreateRequest struct {
	SampleRequestID     string
	WorkflowName        string
	Priority            string
	CreatedBy           string
	DueDate             *time.Time
	Designer            *string
	Programmer          *string
	SupervisorKnitting  *string
	SupervisorFinishing *string
}

// AssigneeField returns the request field registered under the given
// template assignee-field name. Unknown names yield nil.
func (r *CreateRequest) AssigneeField(name string) *string {
	switch name {
	case "designer":
		return r.Designer
	case "programmer":
		return r.Programmer
	case "supervisor_knitting":
		return r.SupervisorKnitting
	case "supervisor_finishing":
		return r.SupervisorFinishing
	default:
		return nil
	}
}

// CreateWorkflow validates the request, maps assignees onto the template's
// stages, and persists the workflow with its full card set in one
// transaction. The first stage card starts pending, the rest ready.
func (e *Engine) CreateWorkflow(ctx context.Context, req CreateRequest) (*workflow.Workflow, error) {
	requestID := uuid.NewString()
	logger := e.logger.With(logging.String(logging.FieldRequestID, requestID))

	if strings.TrimSpace(req.SampleRequestID) == "" {
		return nil, workflow.Wrap(workflow.ErrValidation, "create workflow", "sample request id is required", nil)
	}
	if strings.TrimSpace(req.WorkflowName) == "" {
		return nil, workflow.Wrap(workflow.ErrValidation, "create workflow", "workflow name is required", nil)
	}
	priority := workflow.PriorityMedium
	if strings.TrimSpace(req.Priority) != "" {
		parsed, ok := workflow.ParsePriority(req.Priority)
		if !ok {
			return nil, workflow.Wrap(workflow.ErrValidation, "create workflow", fmt.Sprintf("unknown priority %q", req.Priority), nil)
		}
		priority = parsed
	}

	wf := &workflow.Workflow{
		SampleRequestID: req.SampleRequestID,
		Name:            req.WorkflowName,
		Priority:        priority,
		CreatedBy:       strings.TrimSpace(req.CreatedBy),
		DueDate:         req.DueDate,
	}
	cards := e.buildCards(&req)

	if err := e.store.CreateWorkflow(ctx, wf, cards); err != nil {
		logger.Error("workflow creation failed", logging.Error(err))
		return nil, err
	}

	logger.Info("workflow created",
		logging.Int64(logging.FieldWorkflowID, wf.ID),
		logging.String("sample_request_id", wf.SampleRequestID),
		logging.String("priority", string(wf.Priority)),
		logging.Int("cards", len(cards)),
	)
	return wf, nil
}

// buildCards maps the creation request onto the template's stages. Assignee
// values pass through verbatim; stages without an assignee field, or whose
// field the request leaves nil, produce unassigned cards.
func (e *Engine) buildCards(req *CreateRequest) []*workflow.Card {
	cards := make([]*workflow.Card, 0, len(e.template.Stages))
	for _, stage := range e.template.Stages {
		card := &workflow.Card{
			StageName:   stage.StageName,
			StageOrder:  stage.StageOrder,
			Title:       stage.StageName,
			Description: stage.Description,
			Status:      workflow.InitialCardStatus(stage.StageOrder),
		}
		if stage.AssigneeField != "" {
			card.AssignedTo = req.AssigneeField(stage.AssigneeField)
		}
		cards = append(cards, card)
	}
	return cards
}
