package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlbind"
)

const insertCoach = `INSERT INTO coaches (name, type, system_instruction, icon, user_id, goal, bio, vital_signs, trackings)
VALUES (@name, @type, @system_instruction, @icon, @user_id, @goal, @bio, @vital_signs, @trackings)
RETURNING *`

// DefaultInstruction is the system instruction of a coach created without one.
func DefaultInstruction(coachType, name string) string {
	return fmt.Sprintf("You are a %s coach named %s. Help the user with their goals.", coachType, name)
}

// CreateCoach stores a new coach and returns it as persisted.
func (s *Store) CreateCoach(ctx context.Context, c NewCoach) (Coach, error) {
	if c.Name == "" || c.Type == "" {
		return Coach{}, fmt.Errorf("%w: coach name and type are required", ErrInvalidInput)
	}
	if c.UserID <= 0 {
		return Coach{}, fmt.Errorf("%w: coach owner is required", ErrInvalidInput)
	}
	instruction := c.SystemInstruction
	if instruction == "" {
		instruction = DefaultInstruction(c.Type, c.Name)
	}
	vitals, err := encodeVitalSigns(c.VitalSigns)
	if err != nil {
		return Coach{}, err
	}
	trackings, err := EncodeTrackings(c.Trackings)
	if err != nil {
		return Coach{}, err
	}

	row, found, err := s.db.GetOne(ctx, insertCoach, sqlbind.Named{
		"name":               c.Name,
		"type":               c.Type,
		"system_instruction": instruction,
		"icon":               nullable(c.Icon),
		"user_id":            c.UserID,
		"goal":               nullable(c.Goal),
		"bio":                nullable(c.Bio),
		"vital_signs":        vitals,
		"trackings":          trackings,
	})
	if err != nil {
		return Coach{}, fmt.Errorf("failed to create coach: %w", err)
	}
	if !found {
		return Coach{}, fmt.Errorf("failed to create coach: no row returned")
	}
	coach, err := coachFromRow(row)
	if err != nil {
		return Coach{}, err
	}
	s.logger.Info("coach created", nil, map[string]interface{}{
		"coach_id": coach.ID,
		"user_id":  coach.UserID,
		"type":     coach.Type,
	})
	return coach, nil
}

// CoachesByUser lists the coaches a user owns, oldest first.
func (s *Store) CoachesByUser(ctx context.Context, userID int64) ([]CoachSummary, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name, type, icon FROM coaches WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list coaches: %w", err)
	}
	out := make([]CoachSummary, 0, len(rows))
	for _, row := range rows {
		f := fields{row: row}
		summary := CoachSummary{
			ID:   f.int64("id"),
			Name: f.string("name"),
			Type: f.string("type"),
			Icon: f.string("icon"),
		}
		if f.err != nil {
			return nil, fmt.Errorf("failed to read coach: %w", f.err)
		}
		out = append(out, summary)
	}
	return out, nil
}

// CoachByID returns a coach regardless of owner.
func (s *Store) CoachByID(ctx context.Context, id int64) (Coach, bool, error) {
	return s.oneCoach(ctx, "SELECT * FROM coaches WHERE id = ?", id)
}

// OwnedCoach returns a coach only when userID owns it.
func (s *Store) OwnedCoach(ctx context.Context, id, userID int64) (Coach, bool, error) {
	return s.oneCoach(ctx, "SELECT * FROM coaches WHERE id = ? AND user_id = ?", id, userID)
}

func (s *Store) oneCoach(ctx context.Context, query string, args ...any) (Coach, bool, error) {
	row, found, err := s.db.GetOne(ctx, query, args...)
	if err != nil {
		return Coach{}, false, fmt.Errorf("failed to load coach: %w", err)
	}
	if !found {
		return Coach{}, false, nil
	}
	coach, err := coachFromRow(row)
	if err != nil {
		return Coach{}, false, err
	}
	return coach, true, nil
}

// UpdateCoachTrackings replaces the tracked metrics of a coach. It reports
// false when the coach does not exist or belongs to someone else.
func (s *Store) UpdateCoachTrackings(ctx context.Context, id, userID int64, trackings []Tracking) (bool, error) {
	encoded, err := EncodeTrackings(trackings)
	if err != nil {
		return false, err
	}
	res, err := s.db.Execute(ctx,
		"UPDATE coaches SET trackings = @trackings WHERE id = @id AND user_id = @user_id",
		sqlbind.Named{"trackings": encoded, "id": id, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("failed to update trackings: %w", err)
	}
	return res.RowsAffected > 0, nil
}

// DeleteCoach removes a coach with its messages and activity logs in one
// transaction. Nothing is deleted, and false is returned, when userID does
// not own the coach.
func (s *Store) DeleteCoach(ctx context.Context, id, userID int64) (bool, error) {
	deleted, err := database.InTransaction(ctx, s.db, func(tx database.Client) (bool, error) {
		_, owned, err := tx.GetOne(ctx, "SELECT id FROM coaches WHERE id = ? AND user_id = ?", id, userID)
		if err != nil || !owned {
			return false, err
		}
		if _, err := tx.Execute(ctx, "DELETE FROM activity_logs WHERE coach_id = ?", id); err != nil {
			return false, err
		}
		if _, err := tx.Execute(ctx, "DELETE FROM messages WHERE coach_id = ?", id); err != nil {
			return false, err
		}
		res, err := tx.Execute(ctx, "DELETE FROM coaches WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return false, err
		}
		return res.RowsAffected == 1, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete coach %d: %w", id, err)
	}
	if deleted {
		s.logger.Info("coach deleted", nil, map[string]interface{}{"coach_id": id, "user_id": userID})
	}
	return deleted, nil
}

func coachFromRow(row database.Row) (Coach, error) {
	f := fields{row: row}
	c := Coach{
		ID:                f.int64("id"),
		UserID:            f.int64("user_id"),
		Name:              f.string("name"),
		Type:              f.string("type"),
		SystemInstruction: f.string("system_instruction"),
		Icon:              f.string("icon"),
		Goal:              f.string("goal"),
		Bio:               f.string("bio"),
		CreatedAt:         f.time("created_at"),
	}
	if f.err != nil {
		return Coach{}, fmt.Errorf("failed to read coach: %w", f.err)
	}
	if vitals := row.String("vital_signs"); vitals != "" {
		c.VitalSigns = json.RawMessage(vitals)
	}
	trackings, err := DecodeTrackings(row.String("trackings"))
	if err != nil {
		return Coach{}, fmt.Errorf("coach %d: %w", c.ID, err)
	}
	c.Trackings = trackings
	return c, nil
}

func encodeVitalSigns(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return nullable(x), nil
	case json.RawMessage:
		if len(x) == 0 {
			return nil, nil
		}
		return string(x), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode vital signs: %w", err)
	}
	return string(raw), nil
}
