package emergencyaccess

import (
	"time"

	"github.com/google/uuid"
)

type GrantState string

const (
	StateRequested GrantState = "REQUESTED"
	StateGranted   GrantState = "GRANTED"
)

// Grant is one break-glass access grant on a medical record. Grants are
// append-only: once written they are never updated or revoked, and the
// record's break_glass_access flag stays set.
type Grant struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	RecordID      uuid.UUID  `db:"record_id" json:"record_id"`
	Grantor       string     `db:"grantor" json:"grantor"`
	Reason        string     `db:"reason" json:"reason"`
	Justification *string    `db:"justification" json:"justification,omitempty"`
	Acknowledged  bool       `db:"acknowledged" json:"acknowledged"`
	State         GrantState `db:"state" json:"state"`
	RequestedAt   time.Time  `db:"requested_at" json:"requested_at"`
	GrantedAt     *time.Time `db:"granted_at" json:"granted_at,omitempty"`
}

// GrantRequest is the payload callers submit to invoke break-glass access.
type GrantRequest struct {
	Reason        string  `json:"reason"`
	Justification *string `json:"justification,omitempty"`
	Acknowledged  bool    `json:"acknowledged"`
}
