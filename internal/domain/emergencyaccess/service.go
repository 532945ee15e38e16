package emergencyaccess

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/recordgate/recordgate/internal/domain/medicalrecord"
	"github.com/recordgate/recordgate/internal/platform/audit"
)

// ActionEmergency is the audit action code for break-glass grants.
const ActionEmergency = "EMERGENCY_ACCESS_GRANT"

// RecordStore is the slice of the medical record repository the workflow
// needs: fetch for existence checks and the one-way break-glass flip.
type RecordStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*medicalrecord.MedicalRecord, error)
	SetBreakGlass(ctx context.Context, id uuid.UUID, grantedBy string) (*medicalrecord.MedicalRecord, error)
}

// TxRunner executes fn atomically. Production wiring binds db.InTx to the
// connection pool so the repository calls made inside fn share one
// transaction. A nil runner executes fn directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	records RecordStore
	grants  GrantRepository
	emitter *audit.Emitter
	tx      TxRunner
}

func NewService(records RecordStore, grants GrantRepository, emitter *audit.Emitter, tx TxRunner) *Service {
	return &Service{records: records, grants: grants, emitter: emitter, tx: tx}
}

func (s *Service) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx(ctx, fn)
}

func (s *Service) emit(ctx context.Context, req medicalrecord.Requester, outcome audit.Outcome, subject, detail string) {
	s.emitter.Emit(ctx, audit.Event{
		Actor:     req.Identity,
		Roles:     req.Roles.Strings(),
		Action:    ActionEmergency,
		Outcome:   outcome,
		SubjectID: subject,
		Detail:    detail,
		RequestID: req.RequestID,
	})
}

// Grant invokes break-glass access on a record. The record's
// break_glass_access flag is set permanently and a grant row is appended.
// Granting twice is safe: the flag stays set and each invocation leaves
// its own grant row and audit event, so repeated emergencies remain
// individually traceable.
//
// A grant requires a non-empty reason; reason quality is reviewed after
// the fact through the audit trail, never enforced here.
func (s *Service) Grant(ctx context.Context, req medicalrecord.Requester, recordID uuid.UUID, gr GrantRequest) (*medicalrecord.MedicalRecord, error) {
	reason := strings.TrimSpace(gr.Reason)
	if reason == "" {
		return nil, &medicalrecord.ValidationError{Field: "reason", Msg: "is required for emergency access"}
	}

	// The flag flip and the grant row commit or roll back together; a
	// record must never show break_glass_access without a matching grant.
	var rec *medicalrecord.MedicalRecord
	err := s.runTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.records.SetBreakGlass(ctx, recordID, req.Identity)
		if err != nil {
			if errors.Is(err, medicalrecord.ErrNotFound) {
				return medicalrecord.ErrNotFound
			}
			return &medicalrecord.RepositoryError{Op: "set break glass", Err: err}
		}

		now := time.Now().UTC()
		grant := &Grant{
			RecordID:      recordID,
			Grantor:       req.Identity,
			Reason:        reason,
			Justification: gr.Justification,
			Acknowledged:  gr.Acknowledged,
			State:         StateGranted,
			RequestedAt:   now,
			GrantedAt:     &now,
		}
		if err := s.grants.Append(ctx, grant); err != nil {
			return &medicalrecord.RepositoryError{Op: "append grant", Err: err}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, medicalrecord.ErrNotFound) {
			return nil, medicalrecord.ErrNotFound
		}
		var repoErr *medicalrecord.RepositoryError
		if !errors.As(err, &repoErr) {
			err = &medicalrecord.RepositoryError{Op: "commit emergency grant", Err: err}
		}
		s.emit(ctx, req, audit.OutcomeError, recordID.String(), err.Error())
		return nil, err
	}

	s.emit(ctx, req, audit.OutcomeEmergency, recordID.String(), "reason="+reason)
	return rec, nil
}

// History returns the full grant trail for one record.
func (s *Service) History(ctx context.Context, recordID uuid.UUID) ([]*Grant, error) {
	if _, err := s.records.GetByID(ctx, recordID); err != nil {
		if errors.Is(err, medicalrecord.ErrNotFound) {
			return nil, medicalrecord.ErrNotFound
		}
		return nil, &medicalrecord.RepositoryError{Op: "get record", Err: err}
	}
	grants, err := s.grants.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, &medicalrecord.RepositoryError{Op: "list grants", Err: err}
	}
	return grants, nil
}
