package stats

import (
	"math"
	"time"

	"stitchflow/internal/workflow"
)

// Report aggregates counts and rates over the full workflow and card
// collections. All counts are internally consistent: priority counts sum to
// TotalWorkflows and the flattened stage breakdown sums to TotalCards.
type Report struct {
	TotalWorkflows       int
	WorkflowStatusCounts map[workflow.Status]int
	TotalCards           int
	CardStatusCounts     map[workflow.CardStatus]int
	BlockedCards         int
	OverdueWorkflows     int
	PriorityDistribution map[workflow.Priority]int
	AvgCompletionDays    float64
	RecentWorkflows      int
	StageBreakdown       map[string]map[workflow.CardStatus]int
	WorkloadDistribution map[string]int
	CompletionRate       float64
}

// Options tune the report computation.
type Options struct {
	// Now anchors overdue and recency calculations. Zero means time.Now.
	Now time.Time
	// RecentWindowDays bounds the RecentWorkflows count. Zero means 7.
	RecentWindowDays int
}

// Compute builds a report over the given snapshot. It is pure: the inputs
// are never mutated.
func Compute(workflows []*workflow.Workflow, cards []*workflow.Card, opts Options) *Report {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	windowDays := opts.RecentWindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	recentCutoff := now.AddDate(0, 0, -windowDays)

	report := &Report{
		TotalWorkflows:       len(workflows),
		WorkflowStatusCounts: make(map[workflow.Status]int),
		TotalCards:           len(cards),
		CardStatusCounts:     make(map[workflow.CardStatus]int),
		PriorityDistribution: make(map[workflow.Priority]int),
		StageBreakdown:       make(map[string]map[workflow.CardStatus]int),
		WorkloadDistribution: make(map[string]int),
	}

	var completionDaysSum float64
	var completedCount int
	for _, wf := range workflows {
		report.WorkflowStatusCounts[wf.Status]++
		report.PriorityDistribution[wf.Priority]++

		if IsOverdue(wf.DueDate, wf.Status, now) {
			report.OverdueWorkflows++
		}
		if !wf.CreatedAt.Before(recentCutoff) {
			report.RecentWorkflows++
		}
		if wf.Status == workflow.StatusCompleted && wf.CompletedAt != nil && !wf.CreatedAt.IsZero() {
			completionDaysSum += wf.CompletedAt.Sub(wf.CreatedAt).Hours() / 24
			completedCount++
		}
	}

	for _, card := range cards {
		report.CardStatusCounts[card.Status]++
		if card.Status == workflow.CardBlocked {
			report.BlockedCards++
		}

		breakdown := report.StageBreakdown[card.StageName]
		if breakdown == nil {
			breakdown = make(map[workflow.CardStatus]int)
			report.StageBreakdown[card.StageName] = breakdown
		}
		breakdown[card.Status]++

		if card.AssignedTo != nil && (card.Status == workflow.CardPending || card.Status == workflow.CardInProgress) {
			report.WorkloadDistribution[*card.AssignedTo]++
		}
	}

	if completedCount > 0 {
		report.AvgCompletionDays = round1(completionDaysSum / float64(completedCount))
	}
	if report.TotalWorkflows > 0 {
		completed := report.WorkflowStatusCounts[workflow.StatusCompleted]
		report.CompletionRate = round1(float64(completed) / float64(report.TotalWorkflows) * 100)
	}
	return report
}

// IsOverdue reports whether an active workflow's due date has passed.
// Overdue is always derived, never stored.
func IsOverdue(dueDate *time.Time, status workflow.Status, now time.Time) bool {
	if dueDate == nil || status != workflow.StatusActive {
		return false
	}
	return dueDate.Before(now)
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
