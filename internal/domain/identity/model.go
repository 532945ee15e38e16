package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is a directory profile for a requester identity. Credentials live
// with the external identity provider; this table only carries the
// attributes the policy engine and the UI need.
type User struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Username   string    `db:"username" json:"username"`
	Email      string    `db:"email" json:"email"`
	FullName   string    `db:"full_name" json:"full_name"`
	Roles      []string  `db:"roles" json:"roles"`
	Department *string   `db:"department" json:"department,omitempty"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
