package medicalrecord

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows List queries. Zero fields are ignored.
type ListFilter struct {
	PatientIdentity string
	Department      string
	RecordType      RecordType
	Status          RecordStatus
}

// Repository is the storage port for medical records. Implementations
// return ErrNotFound when an id or record number resolves to no row.
type Repository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	Update(ctx context.Context, r *MedicalRecord) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*MedicalRecord, int, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*MedicalRecord, int, error)

	// SetBreakGlass flips the record's break_glass_access flag on and
	// returns the updated record. The flag never goes back to false.
	SetBreakGlass(ctx context.Context, id uuid.UUID, grantedBy string) (*MedicalRecord, error)

	// UpdateLastAccessed stamps who read the record last. Failures here
	// are storage failures: the caller decides what that does to the
	// overall operation.
	UpdateLastAccessed(ctx context.Context, id uuid.UUID, identity string, at time.Time) error

	AddCareTeamMember(ctx context.Context, id uuid.UUID, identity string) error
	RemoveCareTeamMember(ctx context.Context, id uuid.UUID, identity string) error
	Archive(ctx context.Context, id uuid.UUID, by string) error
}
