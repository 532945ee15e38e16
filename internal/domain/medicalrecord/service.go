package medicalrecord

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/recordgate/recordgate/internal/access"
	"github.com/recordgate/recordgate/internal/platform/audit"
)

// Audit action codes for medical record operations.
const (
	ActionView           = "MEDICAL_RECORD_VIEW"
	ActionList           = "MEDICAL_RECORDS_LIST"
	ActionPatientRecords = "PATIENT_RECORDS_VIEW"
	ActionDepartment     = "DEPARTMENT_RECORDS_VIEW"
	ActionSearch         = "MEDICAL_RECORDS_SEARCH"
	ActionCreate         = "MEDICAL_RECORD_CREATE"
	ActionUpdate         = "MEDICAL_RECORD_UPDATE"
	ActionCareTeam       = "CARE_TEAM_UPDATE"
	ActionArchive        = "MEDICAL_RECORD_ARCHIVE"
)

// Requester identifies the authenticated caller for service operations.
type Requester struct {
	Identity  string
	Roles     access.RoleSet
	RequestID string
}

type Service struct {
	repo    Repository
	emitter *audit.Emitter
}

func NewService(repo Repository, emitter *audit.Emitter) *Service {
	return &Service{repo: repo, emitter: emitter}
}

func (s *Service) emit(ctx context.Context, req Requester, action string, outcome audit.Outcome, subject, detail string) {
	s.emitter.Emit(ctx, audit.Event{
		Actor:     req.Identity,
		Roles:     req.Roles.Strings(),
		Action:    action,
		Outcome:   outcome,
		SubjectID: subject,
		Detail:    detail,
		RequestID: req.RequestID,
	})
}

// GetRecord runs the full decision path for one record: fetch, evaluate,
// stamp last access, audit, project. Exactly one audit event is emitted
// for every decision or failure; a missing record emits none.
func (s *Service) GetRecord(ctx context.Context, req Requester, id uuid.UUID) (*RecordView, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.emit(ctx, req, ActionView, audit.OutcomeError, id.String(), err.Error())
		return nil, &RepositoryError{Op: "get record", Err: err}
	}

	rc := access.NewRequesterContext(req.Identity, req.Roles, rec.Attributes())
	decision := access.Evaluate(rc, rec.Attributes())
	if !decision.Allowed {
		s.emit(ctx, req, ActionView, audit.OutcomeDenied, id.String(), string(decision.Reason))
		return nil, &access.DeniedError{Reason: decision.Reason}
	}

	if err := s.repo.UpdateLastAccessed(ctx, id, req.Identity, time.Now().UTC()); err != nil {
		s.emit(ctx, req, ActionView, audit.OutcomeError, id.String(), err.Error())
		return nil, &RepositoryError{Op: "update last accessed", Err: err}
	}

	s.emit(ctx, req, ActionView, audit.OutcomeSuccess, id.String(), "tier="+decision.Tier.String())
	return Project(rec, decision.Tier), nil
}

// ListRecords returns records matching the filter, projected at the
// requester's tier. Route-level role gates decide who may list at all.
func (s *Service) ListRecords(ctx context.Context, req Requester, f ListFilter, limit, offset int) ([]*RecordView, int, error) {
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		s.emit(ctx, req, ActionList, audit.OutcomeError, "", err.Error())
		return nil, 0, &RepositoryError{Op: "list records", Err: err}
	}
	s.emit(ctx, req, ActionList, audit.OutcomeSuccess, "", "")
	return s.project(req, items), total, nil
}

// MyRecords lists the requester's own records at BASIC tier unless their
// roles grant more.
func (s *Service) MyRecords(ctx context.Context, req Requester, limit, offset int) ([]*RecordView, int, error) {
	items, total, err := s.repo.List(ctx, ListFilter{PatientIdentity: req.Identity}, limit, offset)
	if err != nil {
		s.emit(ctx, req, ActionPatientRecords, audit.OutcomeError, req.Identity, err.Error())
		return nil, 0, &RepositoryError{Op: "list own records", Err: err}
	}
	s.emit(ctx, req, ActionPatientRecords, audit.OutcomeSuccess, req.Identity, "")
	return s.project(req, items), total, nil
}

// PatientRecords lists one patient's records for clinical staff.
func (s *Service) PatientRecords(ctx context.Context, req Requester, patientIdentity string, limit, offset int) ([]*RecordView, int, error) {
	if patientIdentity == "" {
		return nil, 0, &ValidationError{Field: "patient", Msg: "is required"}
	}
	items, total, err := s.repo.List(ctx, ListFilter{PatientIdentity: patientIdentity}, limit, offset)
	if err != nil {
		s.emit(ctx, req, ActionPatientRecords, audit.OutcomeError, patientIdentity, err.Error())
		return nil, 0, &RepositoryError{Op: "list patient records", Err: err}
	}
	s.emit(ctx, req, ActionPatientRecords, audit.OutcomeSuccess, patientIdentity, "")
	return s.project(req, items), total, nil
}

// DepartmentRecords lists records for one department.
func (s *Service) DepartmentRecords(ctx context.Context, req Requester, department string, limit, offset int) ([]*RecordView, int, error) {
	if _, ok := access.ParseDepartment(department); !ok {
		return nil, 0, &ValidationError{Field: "department", Msg: "unknown department"}
	}
	items, total, err := s.repo.List(ctx, ListFilter{Department: department}, limit, offset)
	if err != nil {
		s.emit(ctx, req, ActionDepartment, audit.OutcomeError, department, err.Error())
		return nil, 0, &RepositoryError{Op: "list department records", Err: err}
	}
	s.emit(ctx, req, ActionDepartment, audit.OutcomeSuccess, department, "")
	return s.project(req, items), total, nil
}

// SearchRecords runs a free-text search over record number, patient name,
// diagnosis codes, chief complaint and assessment.
func (s *Service) SearchRecords(ctx context.Context, req Requester, query string, limit, offset int) ([]*RecordView, int, error) {
	if query == "" {
		return nil, 0, &ValidationError{Field: "q", Msg: "search query is required"}
	}
	items, total, err := s.repo.Search(ctx, query, limit, offset)
	if err != nil {
		s.emit(ctx, req, ActionSearch, audit.OutcomeError, "", err.Error())
		return nil, 0, &RepositoryError{Op: "search records", Err: err}
	}
	s.emit(ctx, req, ActionSearch, audit.OutcomeSuccess, "", "q="+query)
	return s.project(req, items), total, nil
}

func (s *Service) project(req Requester, items []*MedicalRecord) []*RecordView {
	tier := access.TierFor(req.Roles)
	views := make([]*RecordView, len(items))
	for i, m := range items {
		views[i] = Project(m, tier)
	}
	return views
}

// CreateRecord validates and stores a new record.
func (s *Service) CreateRecord(ctx context.Context, req Requester, m *MedicalRecord) (*MedicalRecord, error) {
	if m.RecordNumber == "" {
		return nil, &ValidationError{Field: "record_number", Msg: "is required"}
	}
	if m.PatientIdentity == "" {
		return nil, &ValidationError{Field: "patient_identity", Msg: "is required"}
	}
	if m.PatientName == "" {
		return nil, &ValidationError{Field: "patient_name", Msg: "is required"}
	}
	if !ValidRecordType(m.RecordType) {
		return nil, &ValidationError{Field: "record_type", Msg: "unknown record type"}
	}
	if m.VisitDate.IsZero() {
		return nil, &ValidationError{Field: "visit_date", Msg: "is required"}
	}
	if m.Department != nil {
		if _, ok := access.ParseDepartment(*m.Department); !ok {
			return nil, &ValidationError{Field: "department", Msg: "unknown department"}
		}
	}

	if m.Status == "" {
		m.Status = StatusDraft
	}
	if m.Priority == "" {
		m.Priority = PriorityRoutine
	}
	if m.Confidentiality == "" {
		m.Confidentiality = access.ConfidentialityNormal
	}
	// A restricted confidentiality level always marks the record sensitive.
	if m.Confidentiality.Sensitive() {
		m.IsSensitive = true
	}
	m.BreakGlassAccess = false
	m.CreatedBy = req.Identity

	if err := s.repo.Create(ctx, m); err != nil {
		s.emit(ctx, req, ActionCreate, audit.OutcomeError, m.RecordNumber, err.Error())
		return nil, &RepositoryError{Op: "create record", Err: err}
	}
	s.emit(ctx, req, ActionCreate, audit.OutcomeSuccess, m.ID.String(), "record_number="+m.RecordNumber)
	return m, nil
}

// canModify reports whether the requester may change the record's content:
// admins, nurse practitioners, the attending physician, care team members,
// and explicitly authorized users.
func canModify(req Requester, rec *MedicalRecord) bool {
	if req.Roles.HasAny(access.RoleAdmin, access.RoleSuperAdmin, access.RoleMedicalAdmin, access.RoleNursePractitioner) {
		return true
	}
	rc := access.NewRequesterContext(req.Identity, req.Roles, rec.Attributes())
	return rc.IsAttendingPhysician || rc.IsCareTeamMember || rc.IsAuthorizedUser
}

// UpdateRecord applies content changes to an existing record.
func (s *Service) UpdateRecord(ctx context.Context, req Requester, id uuid.UUID, upd *MedicalRecord) (*MedicalRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.emit(ctx, req, ActionUpdate, audit.OutcomeError, id.String(), err.Error())
		return nil, &RepositoryError{Op: "get record", Err: err}
	}

	if !canModify(req, rec) {
		s.emit(ctx, req, ActionUpdate, audit.OutcomeDenied, id.String(), "no modification rights")
		return nil, &access.DeniedError{Reason: access.DenyNoMatchingRule}
	}

	applyUpdate(rec, upd)
	rec.UpdatedBy = &req.Identity
	if rec.Confidentiality.Sensitive() {
		rec.IsSensitive = true
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		s.emit(ctx, req, ActionUpdate, audit.OutcomeError, id.String(), err.Error())
		return nil, &RepositoryError{Op: "update record", Err: err}
	}
	s.emit(ctx, req, ActionUpdate, audit.OutcomeSuccess, id.String(), "")
	return rec, nil
}

// applyUpdate copies the updatable fields of upd onto rec. Identity and
// audit stamp fields are never touched.
func applyUpdate(rec, upd *MedicalRecord) {
	if upd.Status != "" {
		rec.Status = upd.Status
	}
	if upd.Priority != "" {
		rec.Priority = upd.Priority
	}
	if upd.Confidentiality != "" {
		rec.Confidentiality = upd.Confidentiality
	}
	if upd.Department != nil {
		rec.Department = upd.Department
	}
	if upd.AttendingID != nil {
		rec.AttendingID = upd.AttendingID
	}
	if upd.AttendingName != nil {
		rec.AttendingName = upd.AttendingName
	}
	if upd.AdmissionType != nil {
		rec.AdmissionType = upd.AdmissionType
	}
	if upd.ChiefComplaint != nil {
		rec.ChiefComplaint = upd.ChiefComplaint
	}
	if upd.HistoryPresentIllness != nil {
		rec.HistoryPresentIllness = upd.HistoryPresentIllness
	}
	if upd.PhysicalExamination != nil {
		rec.PhysicalExamination = upd.PhysicalExamination
	}
	if upd.AssessmentPlan != nil {
		rec.AssessmentPlan = upd.AssessmentPlan
	}
	if upd.DiagnosisCodes != nil {
		rec.DiagnosisCodes = upd.DiagnosisCodes
	}
	if upd.ProcedureCodes != nil {
		rec.ProcedureCodes = upd.ProcedureCodes
	}
	if upd.Medications != nil {
		rec.Medications = upd.Medications
	}
	if upd.LabOrders != nil {
		rec.LabOrders = upd.LabOrders
	}
	if upd.ImagingOrders != nil {
		rec.ImagingOrders = upd.ImagingOrders
	}
	if upd.BloodPressure != nil {
		rec.BloodPressure = upd.BloodPressure
	}
	if upd.HeartRate != nil {
		rec.HeartRate = upd.HeartRate
	}
	if upd.Temperature != nil {
		rec.Temperature = upd.Temperature
	}
	if upd.RespiratoryRate != nil {
		rec.RespiratoryRate = upd.RespiratoryRate
	}
	if upd.OxygenSaturation != nil {
		rec.OxygenSaturation = upd.OxygenSaturation
	}
	if upd.DischargeDate != nil {
		rec.DischargeDate = upd.DischargeDate
	}
	if upd.IsSensitive {
		rec.IsSensitive = true
	}
}

// AddCareTeamMember grants identity care team membership on the record.
// Only the attending physician and administrators may change the team.
func (s *Service) AddCareTeamMember(ctx context.Context, req Requester, id uuid.UUID, identity string) error {
	return s.changeCareTeam(ctx, req, id, identity, true)
}

// RemoveCareTeamMember revokes identity's care team membership.
func (s *Service) RemoveCareTeamMember(ctx context.Context, req Requester, id uuid.UUID, identity string) error {
	return s.changeCareTeam(ctx, req, id, identity, false)
}

func (s *Service) changeCareTeam(ctx context.Context, req Requester, id uuid.UUID, identity string, add bool) error {
	if identity == "" {
		return &ValidationError{Field: "user", Msg: "identity is required"}
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.emit(ctx, req, ActionCareTeam, audit.OutcomeError, id.String(), err.Error())
		return &RepositoryError{Op: "get record", Err: err}
	}

	rc := access.NewRequesterContext(req.Identity, req.Roles, rec.Attributes())
	if !rc.IsAttendingPhysician && !req.Roles.HasAny(access.RoleAdmin, access.RoleSuperAdmin, access.RoleMedicalAdmin) {
		s.emit(ctx, req, ActionCareTeam, audit.OutcomeDenied, id.String(), "not attending or admin")
		return &access.DeniedError{Reason: access.DenyNoMatchingRule}
	}

	if add {
		err = s.repo.AddCareTeamMember(ctx, id, identity)
	} else {
		err = s.repo.RemoveCareTeamMember(ctx, id, identity)
	}
	if err != nil {
		s.emit(ctx, req, ActionCareTeam, audit.OutcomeError, id.String(), err.Error())
		return &RepositoryError{Op: "change care team", Err: err}
	}
	detail := "removed=" + identity
	if add {
		detail = "added=" + identity
	}
	s.emit(ctx, req, ActionCareTeam, audit.OutcomeSuccess, id.String(), detail)
	return nil
}

// ArchiveRecord moves a record to ARCHIVED status.
func (s *Service) ArchiveRecord(ctx context.Context, req Requester, id uuid.UUID) error {
	if err := s.repo.Archive(ctx, id, req.Identity); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.emit(ctx, req, ActionArchive, audit.OutcomeError, id.String(), err.Error())
		return &RepositoryError{Op: "archive record", Err: err}
	}
	s.emit(ctx, req, ActionArchive, audit.OutcomeSuccess, id.String(), "")
	return nil
}
