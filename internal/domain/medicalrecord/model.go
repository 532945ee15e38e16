package medicalrecord

import (
	"time"

	"github.com/google/uuid"

	"github.com/recordgate/recordgate/internal/access"
)

type RecordType string

const (
	TypeInpatient        RecordType = "INPATIENT"
	TypeOutpatient       RecordType = "OUTPATIENT"
	TypeEmergency        RecordType = "EMERGENCY"
	TypeSurgery          RecordType = "SURGERY"
	TypeConsultation     RecordType = "CONSULTATION"
	TypeLabResult        RecordType = "LAB_RESULT"
	TypeRadiology        RecordType = "RADIOLOGY"
	TypePharmacy         RecordType = "PHARMACY"
	TypeDischargeSummary RecordType = "DISCHARGE_SUMMARY"
)

var recordTypes = map[RecordType]struct{}{
	TypeInpatient: {}, TypeOutpatient: {}, TypeEmergency: {},
	TypeSurgery: {}, TypeConsultation: {}, TypeLabResult: {},
	TypeRadiology: {}, TypePharmacy: {}, TypeDischargeSummary: {},
}

func ValidRecordType(t RecordType) bool {
	_, ok := recordTypes[t]
	return ok
}

type PriorityLevel string

const (
	PriorityRoutine   PriorityLevel = "ROUTINE"
	PriorityUrgent    PriorityLevel = "URGENT"
	PriorityStat      PriorityLevel = "STAT"
	PriorityEmergency PriorityLevel = "EMERGENCY"
)

type RecordStatus string

const (
	StatusDraft     RecordStatus = "DRAFT"
	StatusActive    RecordStatus = "ACTIVE"
	StatusCompleted RecordStatus = "COMPLETED"
	StatusAmended   RecordStatus = "AMENDED"
	StatusArchived  RecordStatus = "ARCHIVED"
	StatusDeleted   RecordStatus = "DELETED"
)

// MedicalRecord maps to the medical_record table. Care team and authorized
// user identities live in join tables and are loaded alongside the row.
type MedicalRecord struct {
	ID               uuid.UUID                   `db:"id" json:"id"`
	RecordNumber     string                      `db:"record_number" json:"record_number"`
	PatientIdentity  string                      `db:"patient_identity" json:"patient_identity"`
	PatientName      string                      `db:"patient_name" json:"patient_name"`
	RecordType       RecordType                  `db:"record_type" json:"record_type"`
	Status           RecordStatus                `db:"status" json:"status"`
	Priority         PriorityLevel               `db:"priority" json:"priority"`
	Confidentiality  access.ConfidentialityLevel `db:"confidentiality" json:"confidentiality"`
	Department       *string                     `db:"department" json:"department,omitempty"`
	AttendingID      *string                     `db:"attending_identity" json:"attending_identity,omitempty"`
	AttendingName    *string                     `db:"attending_name" json:"attending_name,omitempty"`
	AdmissionType    *string                     `db:"admission_type" json:"admission_type,omitempty"`

	// Clinical narrative
	ChiefComplaint        *string `db:"chief_complaint" json:"chief_complaint,omitempty"`
	HistoryPresentIllness *string `db:"history_present_illness" json:"history_present_illness,omitempty"`
	PhysicalExamination   *string `db:"physical_examination" json:"physical_examination,omitempty"`
	AssessmentPlan        *string `db:"assessment_plan" json:"assessment_plan,omitempty"`
	DiagnosisCodes        *string `db:"diagnosis_codes" json:"diagnosis_codes,omitempty"` // ICD-10
	ProcedureCodes        *string `db:"procedure_codes" json:"procedure_codes,omitempty"` // CPT

	// Medications and orders
	Medications   *string `db:"medications" json:"medications,omitempty"`
	LabOrders     *string `db:"lab_orders" json:"lab_orders,omitempty"`
	ImagingOrders *string `db:"imaging_orders" json:"imaging_orders,omitempty"`

	// Vital signs
	BloodPressure    *string  `db:"blood_pressure" json:"blood_pressure,omitempty"`
	HeartRate        *int     `db:"heart_rate" json:"heart_rate,omitempty"`
	Temperature      *float64 `db:"temperature" json:"temperature,omitempty"`
	RespiratoryRate  *int     `db:"respiratory_rate" json:"respiratory_rate,omitempty"`
	OxygenSaturation *int     `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`

	IsSensitive      bool       `db:"is_sensitive" json:"is_sensitive"`
	BreakGlassAccess bool       `db:"break_glass_access" json:"break_glass_access"`
	VisitDate        time.Time  `db:"visit_date" json:"visit_date"`
	DischargeDate    *time.Time `db:"discharge_date" json:"discharge_date,omitempty"`
	CareTeam         []string   `db:"-" json:"care_team,omitempty"`
	AuthorizedUsers  []string   `db:"-" json:"authorized_users,omitempty"`
	CreatedBy        string     `db:"created_by" json:"created_by"`
	UpdatedBy        *string    `db:"updated_by" json:"updated_by,omitempty"`
	LastAccessedBy   *string    `db:"last_accessed_by" json:"last_accessed_by,omitempty"`
	LastAccessedAt   *time.Time `db:"last_accessed_at" json:"last_accessed_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Attributes builds the policy snapshot for this record.
func (r *MedicalRecord) Attributes() access.RecordAttributes {
	attrs := access.RecordAttributes{
		PatientIdentity:  r.PatientIdentity,
		Confidentiality:  r.Confidentiality,
		IsSensitive:      r.IsSensitive,
		BreakGlassAccess: r.BreakGlassAccess,
		CareTeam:         make(map[string]struct{}, len(r.CareTeam)),
		AuthorizedUsers:  make(map[string]struct{}, len(r.AuthorizedUsers)),
	}
	if r.AttendingID != nil {
		attrs.AttendingPhysician = *r.AttendingID
	}
	if r.Department != nil {
		if d, ok := access.ParseDepartment(*r.Department); ok {
			attrs.Department = d
		}
	}
	for _, id := range r.CareTeam {
		attrs.CareTeam[id] = struct{}{}
	}
	for _, id := range r.AuthorizedUsers {
		attrs.AuthorizedUsers[id] = struct{}{}
	}
	return attrs
}
