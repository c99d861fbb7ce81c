package repository

import (
	"encoding/json"
	"time"
)

// User is a signed-in account.
type User struct {
	ID           int64
	GoogleID     string
	Email        string
	Name         string
	Picture      string
	SessionToken string
}

// GoogleUser is the profile returned by the identity provider at sign-in.
type GoogleUser struct {
	GoogleID string
	// Email may be empty; the stored address is then kept.
	Email   string
	Name    string
	Picture string
}

// Coach is a persona configured by a user.
type Coach struct {
	ID                int64
	UserID            int64
	Name              string
	Type              string
	SystemInstruction string
	Icon              string
	Goal              string
	Bio               string
	// VitalSigns is the JSON document chosen in the creation flow.
	VitalSigns json.RawMessage
	Trackings  []Tracking
	CreatedAt  time.Time
}

// CoachSummary is the list view of a coach.
type CoachSummary struct {
	ID   int64
	Name string
	Type string
	Icon string
}

// NewCoach holds the fields accepted when creating a coach.
type NewCoach struct {
	UserID int64
	Name   string
	Type   string
	// SystemInstruction defaults to a generic prompt built from Name and Type.
	SystemInstruction string
	Icon              string
	Goal              string
	Bio               string
	// VitalSigns is stored as JSON. A string is stored as given.
	VitalSigns any
	Trackings  []Tracking
}

// Role is the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

func (r Role) valid() bool {
	return r == RoleUser || r == RoleModel
}

// Message is one chat turn between a user and a coach.
type Message struct {
	ID        int64
	CoachID   int64
	UserID    int64
	Role      Role
	Content   string
	Timestamp time.Time
}

// ActivityLog is a submitted tracking form and the coach's feedback on it.
type ActivityLog struct {
	ID        int64
	CoachID   int64
	UserID    int64
	Data      json.RawMessage
	Feedback  string
	CreatedAt time.Time
}
