package workflow

import (
	"database/sql"
	"errors"
	"time"
)

const workflowColumns = "id, sample_request_id, name, status, priority, created_by, due_date, created_at, updated_at, completed_at"

const cardColumns = "id, workflow_id, stage_name, stage_order, title, description, assigned_to, status, due_date, created_at, updated_at, completed_at, blocked_reason"

func scanWorkflow(scanner interface{ Scan(dest ...any) error }) (*Workflow, error) {
	var (
		id           int64
		sampleReqID  string
		name         string
		statusStr    string
		priorityStr  string
		createdBy    sql.NullString
		dueRaw       sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		completedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sampleReqID,
		&name,
		&statusStr,
		&priorityStr,
		&createdBy,
		&dueRaw,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	wf := &Workflow{
		ID:              id,
		SampleRequestID: sampleReqID,
		Name:            name,
		Status:          Status(statusStr),
		Priority:        Priority(priorityStr),
		CreatedBy:       createdBy.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		wf.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		wf.UpdatedAt = updated
	}
	if dueRaw.Valid {
		if due, err := parseTimeString(dueRaw.String); err == nil {
			wf.DueDate = &due
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			wf.CompletedAt = &completed
		}
	}
	return wf, nil
}

func scanCard(scanner interface{ Scan(dest ...any) error }) (*Card, error) {
	var (
		id            int64
		workflowID    int64
		stageName     string
		stageOrder    int
		title         string
		description   sql.NullString
		assignedTo    sql.NullString
		statusStr     string
		dueRaw        sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
		completedRaw  sql.NullString
		blockedReason sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&workflowID,
		&stageName,
		&stageOrder,
		&title,
		&description,
		&assignedTo,
		&statusStr,
		&dueRaw,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
		&blockedReason,
	); err != nil {
		return nil, err
	}

	card := &Card{
		ID:            id,
		WorkflowID:    workflowID,
		StageName:     stageName,
		StageOrder:    stageOrder,
		Title:         title,
		Description:   description.String,
		Status:        CardStatus(statusStr),
		BlockedReason: blockedReason.String,
	}
	if assignedTo.Valid {
		value := assignedTo.String
		card.AssignedTo = &value
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		card.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		card.UpdatedAt = updated
	}
	if dueRaw.Valid {
		if due, err := parseTimeString(dueRaw.String); err == nil {
			card.DueDate = &due
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			card.CompletedAt = &completed
		}
	}
	return card, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// nullableAssignee preserves the distinction between an unassigned card (nil,
// stored as NULL) and an explicitly supplied value, which is written verbatim
// even when empty.
func nullableAssignee(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
