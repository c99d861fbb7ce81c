package repository

import (
	"context"
	"fmt"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlbind"
)

const (
	insertMessage = `INSERT INTO messages (coach_id, user_id, role, content)
VALUES (?, ?, ?, ?)
RETURNING id, timestamp`

	historyColumns = "id, coach_id, user_id, role, content, timestamp"

	// FormRequestPrefix marks a model message asking the user to fill the
	// tracking form. FormSubmittedPrefix replaces it once the form is sent.
	FormRequestPrefix   = "JSON_FORM_REQUEST:"
	FormSubmittedPrefix = "JSON_FORM_SUBMITTED:"
)

// SaveMessage appends a chat turn.
func (s *Store) SaveMessage(ctx context.Context, coachID, userID int64, role Role, content string) (Message, error) {
	if !role.valid() {
		return Message{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	stmt, err := s.db.Prepare(ctx, insertMessage)
	if err != nil {
		return Message{}, fmt.Errorf("failed to prepare message insert: %w", err)
	}
	row, found, err := stmt.GetOne(ctx, coachID, userID, string(role), content)
	if err != nil {
		return Message{}, fmt.Errorf("failed to save message: %w", err)
	}
	if !found {
		return Message{}, fmt.Errorf("failed to save message: no row returned")
	}

	f := fields{row: row}
	msg := Message{
		ID:        f.int64("id"),
		CoachID:   coachID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		Timestamp: f.time("timestamp"),
	}
	if f.err != nil {
		return Message{}, fmt.Errorf("failed to read message: %w", f.err)
	}
	return msg, nil
}

// History returns the conversation between a user and a coach in the order
// it happened. A positive limit keeps only the most recent messages.
func (s *Store) History(ctx context.Context, coachID, userID int64, limit int) ([]Message, error) {
	var (
		rows []database.Row
		err  error
	)
	if limit > 0 {
		rows, err = s.db.Query(ctx, `SELECT `+historyColumns+` FROM (
    SELECT `+historyColumns+` FROM messages
    WHERE coach_id = @coach_id AND user_id = @user_id
    ORDER BY timestamp DESC, id DESC
    LIMIT @limit
) recent
ORDER BY timestamp, id`, sqlbind.Named{"coach_id": coachID, "user_id": userID, "limit": limit})
	} else {
		rows, err = s.db.Query(ctx, `SELECT `+historyColumns+` FROM messages
WHERE coach_id = ? AND user_id = ?
ORDER BY timestamp, id`, coachID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	out := make([]Message, 0, len(rows))
	for _, row := range rows {
		f := fields{row: row}
		msg := Message{
			ID:        f.int64("id"),
			CoachID:   f.int64("coach_id"),
			UserID:    f.int64("user_id"),
			Role:      Role(f.string("role")),
			Content:   f.string("content"),
			Timestamp: f.time("timestamp"),
		}
		if f.err != nil {
			return nil, fmt.Errorf("failed to read message: %w", f.err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// UpdateLastFormMessage rewrites the latest pending form request of a
// conversation. It reports false when there is none.
func (s *Store) UpdateLastFormMessage(ctx context.Context, coachID, userID int64, content string) (bool, error) {
	res, err := s.db.Execute(ctx, `UPDATE messages SET content = @content
WHERE id = (
    SELECT id FROM messages
    WHERE coach_id = @coach_id AND user_id = @user_id AND role = 'model' AND content LIKE @prefix
    ORDER BY id DESC
    LIMIT 1
)`, sqlbind.Named{
		"content":  content,
		"coach_id": coachID,
		"user_id":  userID,
		"prefix":   FormRequestPrefix + "%",
	})
	if err != nil {
		return false, fmt.Errorf("failed to update form message: %w", err)
	}
	return res.RowsAffected > 0, nil
}
