package emergencyaccess

import (
	"context"

	"github.com/google/uuid"
)

// GrantRepository stores break-glass grants. Grants are append-only.
type GrantRepository interface {
	Append(ctx context.Context, g *Grant) error
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*Grant, error)
}
