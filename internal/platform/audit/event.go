package audit

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies what happened to the audited attempt.
type Outcome string

const (
	OutcomeSuccess   Outcome = "SUCCESS"
	OutcomeDenied    Outcome = "DENIED"
	OutcomeError     Outcome = "ERROR"
	OutcomeEmergency Outcome = "EMERGENCY"
)

// Event is one immutable audit trail entry. Services emit exactly one
// event per access decision, emergency grant, or failed attempt.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Roles     []string  `json:"roles,omitempty"`
	Action    string    `json:"action"`
	Outcome   Outcome   `json:"outcome"`
	SubjectID string    `json:"subject_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}
