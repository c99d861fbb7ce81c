package repository

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FieldType is the input control a tracked metric is rendered with.
type FieldType string

const (
	FieldSlider  FieldType = "slider"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldText    FieldType = "text"
)

// Tracking describes one metric a coach asks the user to log. The JSON shape
// is what clients render as a form field.
type Tracking struct {
	ID           string    `json:"id"`
	Label        string    `json:"label"`
	Description  string    `json:"description,omitempty"`
	Emoji        string    `json:"emoji"`
	Type         FieldType `json:"type"`
	Unit         string    `json:"unit,omitempty"`
	Min          *float64  `json:"min,omitempty"`
	Max          *float64  `json:"max,omitempty"`
	DefaultValue any       `json:"defaultValue,omitempty"`
}

var ErrInvalidTracking = errors.New("invalid tracking definition")

// Validate checks the fields a form cannot be rendered without.
func (t Tracking) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTracking)
	}
	if t.Label == "" {
		return fmt.Errorf("%w: %s: missing label", ErrInvalidTracking, t.ID)
	}
	switch t.Type {
	case FieldSlider, FieldNumber, FieldBoolean, FieldText:
	default:
		return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidTracking, t.ID, t.Type)
	}
	if t.Min != nil && t.Max != nil && *t.Min > *t.Max {
		return fmt.Errorf("%w: %s: min %v above max %v", ErrInvalidTracking, t.ID, *t.Min, *t.Max)
	}
	return nil
}

// EncodeTrackings renders trackings for the coaches.trackings column.
// An empty list is stored as NULL.
func EncodeTrackings(trackings []Tracking) (any, error) {
	if len(trackings) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(trackings))
	for _, t := range trackings {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidTracking, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	raw, err := json.Marshal(trackings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode trackings: %w", err)
	}
	return string(raw), nil
}

// DecodeTrackings parses the coaches.trackings column.
func DecodeTrackings(raw string) ([]Tracking, error) {
	if raw == "" {
		return nil, nil
	}
	var out []Tracking
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to decode trackings: %w", err)
	}
	return out, nil
}
