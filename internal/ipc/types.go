package ipc

import (
	"time"

	"stitchflow/internal/board"
	"stitchflow/internal/stats"
	"stitchflow/internal/workflow"
)

// Workflow is the wire representation of a workflow.
type Workflow struct {
	ID              int64      `json:"id"`
	SampleRequestID string     `json:"sample_request_id"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	CreatedBy       string     `json:"created_by,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Card is the wire representation of a stage card. AssignedTo stays a
// pointer so unassigned and empty-string assignees survive the trip.
type Card struct {
	ID            int64      `json:"id"`
	WorkflowID    int64      `json:"workflow_id"`
	StageName     string     `json:"stage_name"`
	StageOrder    int        `json:"stage_order"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	AssignedTo    *string    `json:"assigned_to"`
	Status        string     `json:"status"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	BlockedReason string     `json:"blocked_reason,omitempty"`
}

// Comment is the wire representation of a card comment.
type Comment struct {
	ID        int64     `json:"id"`
	CardID    int64     `json:"card_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Attachment is the wire representation of a card attachment.
type Attachment struct {
	ID         int64     `json:"id"`
	CardID     int64     `json:"card_id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// User identifies the caller of a card mutation.
type User struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// StartRequest triggers daemon startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon status plus store health counts.
type StatusResponse struct {
	Running            bool   `json:"running"`
	DBPath             string `json:"db_path"`
	LockPath           string `json:"lock_path"`
	TotalWorkflows     int    `json:"total_workflows"`
	ActiveWorkflows    int    `json:"active_workflows"`
	CompletedWorkflows int    `json:"completed_workflows"`
	CancelledWorkflows int    `json:"cancelled_workflows"`
	TotalCards         int    `json:"total_cards"`
	BlockedCards       int    `json:"blocked_cards"`
}

// WorkflowCreateRequest creates a workflow from the configured template.
type WorkflowCreateRequest struct {
	SampleRequestID     string     `json:"sample_request_id"`
	WorkflowName        string     `json:"workflow_name"`
	Priority            string     `json:"priority,omitempty"`
	CreatedBy           string     `json:"created_by,omitempty"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	Designer            *string    `json:"designer,omitempty"`
	Programmer          *string    `json:"programmer,omitempty"`
	SupervisorKnitting  *string    `json:"supervisor_knitting,omitempty"`
	SupervisorFinishing *string    `json:"supervisor_finishing,omitempty"`
}

// WorkflowCreateResponse carries the created workflow.
type WorkflowCreateResponse struct {
	Workflow Workflow `json:"workflow"`
}

// WorkflowShowRequest fetches one workflow with its cards.
type WorkflowShowRequest struct {
	ID int64 `json:"id"`
}

// WorkflowShowResponse carries the workflow and its card set.
type WorkflowShowResponse struct {
	Workflow Workflow `json:"workflow"`
	Cards    []Card   `json:"cards"`
}

// WorkflowListRequest filters workflow listing by status.
type WorkflowListRequest struct {
	Statuses []string `json:"statuses,omitempty"`
}

// WorkflowListResponse contains workflows.
type WorkflowListResponse struct {
	Workflows []Workflow `json:"workflows"`
}

// WorkflowCancelRequest cancels an active workflow.
type WorkflowCancelRequest struct {
	ID int64 `json:"id"`
}

// WorkflowCancelResponse carries the cancelled workflow.
type WorkflowCancelResponse struct {
	Workflow Workflow `json:"workflow"`
}

// CardUpdateRequest mutates a card's status on behalf of a user.
type CardUpdateRequest struct {
	User   User   `json:"user"`
	CardID int64  `json:"card_id"`
	Target string `json:"target"`
	Reason string `json:"reason,omitempty"`
}

// CardUpdateResponse carries the updated card.
type CardUpdateResponse struct {
	Card Card `json:"card"`
}

// CardValidateRequest dry-runs a card transition.
type CardValidateRequest struct {
	CardID int64  `json:"card_id"`
	Target string `json:"target"`
}

// CardValidateResponse reports the sequencing verdict.
type CardValidateResponse struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

// CardCommentRequest appends a comment to a card.
type CardCommentRequest struct {
	CardID int64  `json:"card_id"`
	Author string `json:"author"`
	Body   string `json:"body"`
}

// CardCommentResponse carries the stored comment.
type CardCommentResponse struct {
	Comment Comment `json:"comment"`
}

// CardAttachRequest records a file reference against a card.
type CardAttachRequest struct {
	CardID     int64  `json:"card_id"`
	FileName   string `json:"file_name"`
	FilePath   string `json:"file_path"`
	UploadedBy string `json:"uploaded_by,omitempty"`
}

// CardAttachResponse carries the stored attachment.
type CardAttachResponse struct {
	Attachment Attachment `json:"attachment"`
}

// BoardRequest builds a board view over the named workflows (all when empty).
type BoardRequest struct {
	WorkflowIDs []int64 `json:"workflow_ids,omitempty"`
}

// BoardColumn is one status bucket of a lane.
type BoardColumn struct {
	Status string `json:"status"`
	Cards  []Card `json:"cards"`
}

// BoardLane is one workflow's columns.
type BoardLane struct {
	WorkflowID int64         `json:"workflow_id"`
	Columns    []BoardColumn `json:"columns"`
}

// BoardResponse carries the grouped board view.
type BoardResponse struct {
	Lanes []BoardLane `json:"lanes"`
}

// StatsRequest computes the aggregate report.
type StatsRequest struct{}

// StatsResponse mirrors the statistics report.
type StatsResponse struct {
	TotalWorkflows       int                       `json:"total_workflows"`
	WorkflowStatusCounts map[string]int            `json:"workflow_status_counts"`
	TotalCards           int                       `json:"total_cards"`
	CardStatusCounts     map[string]int            `json:"card_status_counts"`
	BlockedCards         int                       `json:"blocked_cards"`
	OverdueWorkflows     int                       `json:"overdue_workflows"`
	PriorityDistribution map[string]int            `json:"priority_distribution"`
	AvgCompletionDays    float64                   `json:"avg_completion_days"`
	RecentWorkflows      int                       `json:"recent_workflows"`
	StageBreakdown       map[string]map[string]int `json:"stage_breakdown"`
	WorkloadDistribution map[string]int            `json:"workload_distribution"`
	CompletionRate       float64                   `json:"completion_rate"`
}

func fromWorkflow(wf *workflow.Workflow) Workflow {
	return Workflow{
		ID:              wf.ID,
		SampleRequestID: wf.SampleRequestID,
		Name:            wf.Name,
		Status:          string(wf.Status),
		Priority:        string(wf.Priority),
		CreatedBy:       wf.CreatedBy,
		DueDate:         wf.DueDate,
		CreatedAt:       wf.CreatedAt,
		UpdatedAt:       wf.UpdatedAt,
		CompletedAt:     wf.CompletedAt,
	}
}

func fromCard(card *workflow.Card) Card {
	return Card{
		ID:            card.ID,
		WorkflowID:    card.WorkflowID,
		StageName:     card.StageName,
		StageOrder:    card.StageOrder,
		Title:         card.Title,
		Description:   card.Description,
		AssignedTo:    card.AssignedTo,
		Status:        string(card.Status),
		DueDate:       card.DueDate,
		CreatedAt:     card.CreatedAt,
		UpdatedAt:     card.UpdatedAt,
		CompletedAt:   card.CompletedAt,
		BlockedReason: card.BlockedReason,
	}
}

func fromCards(cards []*workflow.Card) []Card {
	out := make([]Card, 0, len(cards))
	for _, card := range cards {
		out = append(out, fromCard(card))
	}
	return out
}

func fromBoardView(view *board.View) []BoardLane {
	lanes := make([]BoardLane, 0, len(view.Lanes))
	for _, lane := range view.Lanes {
		columns := make([]BoardColumn, 0, len(lane.Columns))
		for _, column := range lane.Columns {
			columns = append(columns, BoardColumn{
				Status: string(column.Status),
				Cards:  fromCards(column.Cards),
			})
		}
		lanes = append(lanes, BoardLane{WorkflowID: lane.WorkflowID, Columns: columns})
	}
	return lanes
}

func fromReport(report *stats.Report) StatsResponse {
	resp := StatsResponse{
		TotalWorkflows:       report.TotalWorkflows,
		WorkflowStatusCounts: make(map[string]int, len(report.WorkflowStatusCounts)),
		TotalCards:           report.TotalCards,
		CardStatusCounts:     make(map[string]int, len(report.CardStatusCounts)),
		BlockedCards:         report.BlockedCards,
		OverdueWorkflows:     report.OverdueWorkflows,
		PriorityDistribution: make(map[string]int, len(report.PriorityDistribution)),
		AvgCompletionDays:    report.AvgCompletionDays,
		RecentWorkflows:      report.RecentWorkflows,
		StageBreakdown:       make(map[string]map[string]int, len(report.StageBreakdown)),
		WorkloadDistribution: make(map[string]int, len(report.WorkloadDistribution)),
		CompletionRate:       report.CompletionRate,
	}
	for status, count := range report.WorkflowStatusCounts {
		resp.WorkflowStatusCounts[string(status)] = count
	}
	for status, count := range report.CardStatusCounts {
		resp.CardStatusCounts[string(status)] = count
	}
	for priority, count := range report.PriorityDistribution {
		resp.PriorityDistribution[string(priority)] = count
	}
	for stage, statuses := range report.StageBreakdown {
		flat := make(map[string]int, len(statuses))
		for status, count := range statuses {
			flat[string(status)] = count
		}
		resp.StageBreakdown[stage] = flat
	}
	for assignee, count := range report.WorkloadDistribution {
		resp.WorkloadDistribution[assignee] = count
	}
	return resp
}
