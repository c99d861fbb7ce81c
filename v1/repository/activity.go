package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlbind"
)

const insertActivityLog = `INSERT INTO activity_logs (coach_id, user_id, data, feedback)
VALUES (@coach_id, @user_id, @data, @feedback)
RETURNING *`

// SaveActivityLog stores submitted form data and the feedback produced for it.
// data must be a JSON document.
func (s *Store) SaveActivityLog(ctx context.Context, coachID, userID int64, data json.RawMessage, feedback string) (ActivityLog, error) {
	if len(data) == 0 || !json.Valid(data) {
		return ActivityLog{}, fmt.Errorf("%w: activity data must be a JSON document", ErrInvalidInput)
	}
	row, found, err := s.db.GetOne(ctx, insertActivityLog, sqlbind.Named{
		"coach_id": coachID,
		"user_id":  userID,
		"data":     string(data),
		"feedback": nullable(feedback),
	})
	if err != nil {
		return ActivityLog{}, fmt.Errorf("failed to save activity log: %w", err)
	}
	if !found {
		return ActivityLog{}, fmt.Errorf("failed to save activity log: no row returned")
	}
	return activityLogFromRow(row)
}

// ActivityLogs lists a user's logs for a coach, newest first. A positive
// limit caps the result.
func (s *Store) ActivityLogs(ctx context.Context, coachID, userID int64, limit int) ([]ActivityLog, error) {
	query := `SELECT * FROM activity_logs
WHERE coach_id = @coach_id AND user_id = @user_id
ORDER BY created_at DESC, id DESC`
	args := sqlbind.Named{"coach_id": coachID, "user_id": userID}
	if limit > 0 {
		query += "\nLIMIT @limit"
		args["limit"] = limit
	}

	rows, err := s.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	out := make([]ActivityLog, 0, len(rows))
	for _, row := range rows {
		log, err := activityLogFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, log)
	}
	return out, nil
}

// LastActivityLog returns the most recent log, if any.
func (s *Store) LastActivityLog(ctx context.Context, coachID, userID int64) (ActivityLog, bool, error) {
	logs, err := s.ActivityLogs(ctx, coachID, userID, 1)
	if err != nil || len(logs) == 0 {
		return ActivityLog{}, false, err
	}
	return logs[0], true, nil
}

func activityLogFromRow(row database.Row) (ActivityLog, error) {
	f := fields{row: row}
	l := ActivityLog{
		ID:        f.int64("id"),
		CoachID:   f.int64("coach_id"),
		UserID:    f.int64("user_id"),
		Data:      json.RawMessage(f.string("data")),
		Feedback:  f.string("feedback"),
		CreatedAt: f.time("created_at"),
	}
	if f.err != nil {
		return ActivityLog{}, fmt.Errorf("failed to read activity log: %w", f.err)
	}
	return l, nil
}
