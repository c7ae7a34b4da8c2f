package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetCard fetches a card by identifier. Returns nil when missing.
func (s *Store) GetCard(ctx context.Context, id int64) (*Card, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

// ListCards returns cards for the given workflows (or every card when no
// workflow is named), ordered by workflow then stage order.
func (s *Store) ListCards(ctx context.Context, workflowIDs ...int64) ([]*Card, error) {
	ctx = ensureContext(ctx)

	baseQuery := `SELECT ` + cardColumns + ` FROM cards`
	orderClause := ` ORDER BY workflow_id, stage_order`

	var (
		rows *sql.Rows
		err  error
	)
	if len(workflowIDs) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(workflowIDs))
		args := make([]any, len(workflowIDs))
		for i, id := range workflowIDs {
			args[i] = id
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE workflow_id IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []*Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// AddComment appends a comment to a card.
func (s *Store) AddComment(ctx context.Context, cardID int64, author, body string) (*Comment, error) {
	if body == "" {
		return nil, Wrap(ErrValidation, "add comment", "comment body is required", nil)
	}
	card, err := s.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, Wrap(ErrNotFound, "add comment", fmt.Sprintf("card %d does not exist", cardID), nil)
	}

	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO card_comments (card_id, author, body, created_at) VALUES (?, ?, ?, ?)`,
		cardID,
		author,
		body,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Comment{ID: id, CardID: cardID, Author: author, Body: body, CreatedAt: now}, nil
}

// ListComments returns a card's comments in insertion order.
func (s *Store) ListComments(ctx context.Context, cardID int64) ([]*Comment, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, card_id, author, body, created_at FROM card_comments WHERE card_id = ? ORDER BY id`,
		cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var (
			comment    Comment
			createdRaw string
		)
		if err := rows.Scan(&comment.ID, &comment.CardID, &comment.Author, &comment.Body, &createdRaw); err != nil {
			return nil, err
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			comment.CreatedAt = created
		}
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

// AddAttachment appends a file reference to a card.
func (s *Store) AddAttachment(ctx context.Context, cardID int64, fileName, filePath, uploadedBy string) (*Attachment, error) {
	if fileName == "" || filePath == "" {
		return nil, Wrap(ErrValidation, "add attachment", "file name and path are required", nil)
	}
	card, err := s.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, Wrap(ErrNotFound, "add attachment", fmt.Sprintf("card %d does not exist", cardID), nil)
	}

	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO card_attachments (card_id, file_name, file_path, uploaded_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		cardID,
		fileName,
		filePath,
		nullableString(uploadedBy),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert attachment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Attachment{ID: id, CardID: cardID, FileName: fileName, FilePath: filePath, UploadedBy: uploadedBy, CreatedAt: now}, nil
}

// ListAttachments returns a card's attachments in insertion order.
func (s *Store) ListAttachments(ctx context.Context, cardID int64) ([]*Attachment, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, card_id, file_name, file_path, uploaded_by, created_at FROM card_attachments WHERE card_id = ? ORDER BY id`,
		cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*Attachment
	for rows.Next() {
		var (
			attachment Attachment
			uploadedBy sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&attachment.ID, &attachment.CardID, &attachment.FileName, &attachment.FilePath, &uploadedBy, &createdRaw); err != nil {
			return nil, err
		}
		attachment.UploadedBy = uploadedBy.String
		if created, err := parseTimeString(createdRaw); err == nil {
			attachment.CreatedAt = created
		}
		attachments = append(attachments, &attachment)
	}
	return attachments, rows.Err()
}
