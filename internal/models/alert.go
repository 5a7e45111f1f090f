package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmergencyType string
type AlertSeverity string
type AlertStatus string

const (
	EmergencyTypeMedical  EmergencyType = "medical"
	EmergencyTypeFire     EmergencyType = "fire"
	EmergencyTypePolice   EmergencyType = "police"
	EmergencyTypeAccident EmergencyType = "accident"
	EmergencyTypeOther    EmergencyType = "other"

	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"

	AlertStatusActive     AlertStatus = "active"
	AlertStatusResponded  AlertStatus = "responded"
	AlertStatusResolved   AlertStatus = "resolved"
	AlertStatusFalseAlarm AlertStatus = "false-alarm"
)

type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"longitude"`
	Address   string  `json:"address,omitempty" bson:"address,omitempty"`
}

// ChatLogEntry is a single turn of the emergency chatbot conversation
// attached to an alert. Entries are append-only; stored order is the
// order the store accepted them, not the client timestamps.
type ChatLogEntry struct {
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Message   string    `json:"message" bson:"message"`
	IsUser    bool      `json:"is_user" bson:"is_user"`
}

// Alert is a single reported emergency and its full lifecycle record.
// The reporter fields are a snapshot taken at creation time so later
// profile edits do not rewrite history.
type Alert struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	UserName       string              `json:"user_name" bson:"user_name"`
	UserPhone      string              `json:"user_phone" bson:"user_phone"`
	EmergencyType  EmergencyType       `json:"emergency_type" bson:"emergency_type" validate:"required"`
	Description    string              `json:"description" bson:"description" validate:"required"`
	Location       Location            `json:"location" bson:"location" validate:"required"`
	Severity       AlertSeverity       `json:"severity" bson:"severity" default:"medium"`
	Status         AlertStatus         `json:"status" bson:"status" default:"active"`
	AssignedTo     *primitive.ObjectID `json:"assigned_to" bson:"assigned_to"`
	ResponseTime   *time.Time          `json:"response_time" bson:"response_time"`
	ResolutionTime *time.Time          `json:"resolution_time" bson:"resolution_time"`
	ChatLog        []ChatLogEntry      `json:"chat_log" bson:"chat_log"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}

// alertTransitions is the status state machine. Missing keys are
// terminal states. Checked before any write so the invariant stays in
// one auditable place.
var alertTransitions = map[AlertStatus][]AlertStatus{
	AlertStatusActive:    {AlertStatusResponded, AlertStatusResolved, AlertStatusFalseAlarm},
	AlertStatusResponded: {AlertStatusResolved, AlertStatusFalseAlarm},
}

// CanTransition reports whether an alert currently in from may move to
// to. Re-requesting the current status is allowed and treated as a
// no-op by the caller.
func CanTransition(from, to AlertStatus) bool {
	if from == to {
		return true
	}
	for _, next := range alertTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status changes are allowed.
func (s AlertStatus) IsTerminal() bool {
	return len(alertTransitions[s]) == 0
}

func ParseAlertStatus(s string) (AlertStatus, bool) {
	switch AlertStatus(s) {
	case AlertStatusActive, AlertStatusResponded, AlertStatusResolved, AlertStatusFalseAlarm:
		return AlertStatus(s), true
	}
	return "", false
}

func ParseEmergencyType(s string) (EmergencyType, bool) {
	switch EmergencyType(s) {
	case EmergencyTypeMedical, EmergencyTypeFire, EmergencyTypePolice, EmergencyTypeAccident, EmergencyTypeOther:
		return EmergencyType(s), true
	}
	return "", false
}

func ParseAlertSeverity(s string) (AlertSeverity, bool) {
	switch AlertSeverity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return AlertSeverity(s), true
	}
	return "", false
}

// LocationInput uses pointers so an omitted coordinate is
// distinguishable from zero.
type LocationInput struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	Address   string   `json:"address"`
}

// CreateAlertRequest is the submission body for a new alert.
type CreateAlertRequest struct {
	EmergencyType string        `json:"emergency_type" validate:"required"`
	Description   string        `json:"description" validate:"required"`
	Location      LocationInput `json:"location" validate:"required"`
	Severity      string        `json:"severity"`
}

// UpdateAlertStatusRequest is the admin PATCH body. AssignedTo may be
// set with or without a status change.
type UpdateAlertStatusRequest struct {
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
}

// AlertFilter composes optional list criteria with AND semantics.
type AlertFilter struct {
	Status        *AlertStatus
	EmergencyType *EmergencyType
	From          *time.Time
	To            *time.Time
	Search        string
}

// ChatRequest is the public chatbot body. AlertID is optional: an
// unauthenticated reporter in crisis can converse before (or without)
// an alert existing.
type ChatRequest struct {
	Message     string        `json:"message" validate:"required"`
	AlertID     string        `json:"alert_id"`
	ChatHistory []ChatMessage `json:"chat_history"`
}

// ChatMessage mirrors a prior conversation turn supplied by the client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// AlertStats backs the admin dashboard counts.
type AlertStats struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	Responded  int64 `json:"responded"`
	Resolved   int64 `json:"resolved"`
	FalseAlarm int64 `json:"false_alarm"`
}
