package workflow

import (
	"strings"
	"time"
)

// CardStatus represents the lifecycle of a stage card.
type CardStatus string

const (
	CardPending    CardStatus = "pending"
	CardReady      CardStatus = "ready"
	CardInProgress CardStatus = "in_progress"
	CardCompleted  CardStatus = "completed"
	CardBlocked    CardStatus = "blocked"
)

var allCardStatuses = []CardStatus{
	CardPending,
	CardReady,
	CardInProgress,
	CardCompleted,
	CardBlocked,
}

var cardStatusSet = func() map[CardStatus]struct{} {
	set := make(map[CardStatus]struct{}, len(allCardStatuses))
	for _, status := range allCardStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllCardStatuses returns the ordered list of known card statuses.
func AllCardStatuses() []CardStatus {
	cp := make([]CardStatus, len(allCardStatuses))
	copy(cp, allCardStatuses)
	return cp
}

// ParseCardStatus converts a string into a known CardStatus.
func ParseCardStatus(value string) (CardStatus, bool) {
	normalized := CardStatus(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := cardStatusSet[normalized]; ok {
		return normalized, true
	}
	return "", false
}

// Status represents the lifecycle of a workflow.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var allStatuses = []Status{StatusActive, StatusCompleted, StatusCancelled}

// AllStatuses returns the ordered list of known workflow statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known workflow Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StatusActive, StatusCompleted, StatusCancelled:
		return normalized, true
	default:
		return "", false
	}
}

// Priority orders workflows for scheduling and display.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority converts a string into a known Priority.
func ParsePriority(value string) (Priority, bool) {
	normalized := Priority(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return normalized, true
	default:
		return "", false
	}
}

// Workflow tracks one sample request through its staged pipeline.
// A workflow exclusively owns its cards; cards are created together with the
// workflow and only mutated through card transitions.
type Workflow struct {
	ID              int64
	SampleRequestID string
	Name            string
	Status          Status
	Priority        Priority
	CreatedBy       string
	DueDate         *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}

// Card is the per-stage unit of work inside a workflow.
type Card struct {
	ID            int64
	WorkflowID    int64
	StageName     string
	StageOrder    int
	Title         string
	Description   string
	AssignedTo    *string
	Status        CardStatus
	DueDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
	BlockedReason string
}

// Comment is an append-only note on a card.
type Comment struct {
	ID        int64
	CardID    int64
	Author    string
	Body      string
	CreatedAt time.Time
}

// Attachment is an append-only file reference on a card.
type Attachment struct {
	ID         int64
	CardID     int64
	FileName   string
	FilePath   string
	UploadedBy string
	CreatedAt  time.Time
}

// Assignee returns the assigned username, or "" when the card is unassigned.
func (c *Card) Assignee() string {
	if c == nil || c.AssignedTo == nil {
		return ""
	}
	return *c.AssignedTo
}

// IsTerminal reports whether a card status admits no further transitions.
func (s CardStatus) IsTerminal() bool {
	return s == CardCompleted
}

// IsActionable reports whether a status counts toward an assignee's workload.
func (s CardStatus) IsActionable() bool {
	return s == CardPending || s == CardInProgress
}

// InitialCardStatus returns the status a card is seeded with at workflow
// creation: the first stage is immediately actionable, later stages wait.
func InitialCardStatus(stageOrder int) CardStatus {
	if stageOrder == 1 {
		return CardPending
	}
	return CardReady
}
