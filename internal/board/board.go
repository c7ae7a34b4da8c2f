package board

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"stitchflow/internal/workflow"
)

// Column holds the cards of one status bucket, ordered by stage order.
type Column struct {
	Status workflow.CardStatus
	Cards  []*workflow.Card
}

// Lane is one workflow's view on the board: every status bucket is present
// even when empty.
type Lane struct {
	WorkflowID int64
	Columns    []Column
}

// View groups cards per workflow and status for kanban-style rendering.
type View struct {
	Lanes []Lane
}

// Build groups the given cards into a board view. Lanes are ordered by
// workflow ID, columns follow the canonical status order, and cards within a
// column are sorted by stage order.
func Build(cards []*workflow.Card) *View {
	byWorkflow := make(map[int64][]*workflow.Card)
	for _, card := range cards {
		byWorkflow[card.WorkflowID] = append(byWorkflow[card.WorkflowID], card)
	}

	workflowIDs := make([]int64, 0, len(byWorkflow))
	for id := range byWorkflow {
		workflowIDs = append(workflowIDs, id)
	}
	sort.Slice(workflowIDs, func(i, j int) bool { return workflowIDs[i] < workflowIDs[j] })

	view := &View{Lanes: make([]Lane, 0, len(workflowIDs))}
	for _, id := range workflowIDs {
		lane := Lane{WorkflowID: id}
		grouped := make(map[workflow.CardStatus][]*workflow.Card)
		for _, card := range byWorkflow[id] {
			grouped[card.Status] = append(grouped[card.Status], card)
		}
		for _, status := range workflow.AllCardStatuses() {
			bucket := grouped[status]
			sort.Slice(bucket, func(i, j int) bool {
				return bucket[i].StageOrder < bucket[j].StageOrder
			})
			lane.Columns = append(lane.Columns, Column{Status: status, Cards: bucket})
		}
		view.Lanes = append(view.Lanes, lane)
	}
	return view
}

// Lane returns the lane for the given workflow, or nil.
func (v *View) Lane(workflowID int64) *Lane {
	for i := range v.Lanes {
		if v.Lanes[i].WorkflowID == workflowID {
			return &v.Lanes[i]
		}
	}
	return nil
}

// Flatten returns every card on the board, lane by lane in stage order.
// Flattening a board built from a card set yields a permutation of that set.
func (v *View) Flatten() []*workflow.Card {
	var cards []*workflow.Card
	for _, lane := range v.Lanes {
		byOrder := make([]*workflow.Card, 0)
		for _, column := range lane.Columns {
			byOrder = append(byOrder, column.Cards...)
		}
		sort.Slice(byOrder, func(i, j int) bool {
			return byOrder[i].StageOrder < byOrder[j].StageOrder
		})
		cards = append(cards, byOrder...)
	}
	return cards
}

var titleCaser = cases.Title(language.English)

// StatusLabel renders a card status for display, e.g. "in_progress" becomes
// "In Progress".
func StatusLabel(status workflow.CardStatus) string {
	return titleCaser.String(strings.ReplaceAll(string(status), "_", " "))
}
