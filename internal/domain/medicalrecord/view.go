package medicalrecord

import (
	"time"

	"github.com/google/uuid"

	"github.com/recordgate/recordgate/internal/access"
)

// RecordView is a tier-filtered projection of a medical record. Fields
// above the requester's tier are left nil and dropped from the JSON body.
// Tiers are cumulative: everything visible at BASIC stays visible all the
// way up to ADMIN.
type RecordView struct {
	ID            uuid.UUID     `json:"id"`
	RecordNumber  string        `json:"record_number"`
	PatientName   string        `json:"patient_name"`
	AttendingName *string       `json:"attending_name,omitempty"`
	RecordType    RecordType    `json:"record_type"`
	Status        RecordStatus  `json:"status"`
	Priority      PriorityLevel `json:"priority"`
	Department    *string       `json:"department,omitempty"`
	VisitDate     time.Time     `json:"visit_date"`
	Tier          string        `json:"disclosure_tier"`

	// DETAILED
	ChiefComplaint   *string    `json:"chief_complaint,omitempty"`
	AssessmentPlan   *string    `json:"assessment_plan,omitempty"`
	DiagnosisCodes   *string    `json:"diagnosis_codes,omitempty"`
	Medications      *string    `json:"medications,omitempty"`
	BloodPressure    *string    `json:"blood_pressure,omitempty"`
	HeartRate        *int       `json:"heart_rate,omitempty"`
	Temperature      *float64   `json:"temperature,omitempty"`
	RespiratoryRate  *int       `json:"respiratory_rate,omitempty"`
	OxygenSaturation *int       `json:"oxygen_saturation,omitempty"`
	AdmissionType    *string    `json:"admission_type,omitempty"`
	DischargeDate    *time.Time `json:"discharge_date,omitempty"`

	// FULL
	HistoryPresentIllness *string `json:"history_present_illness,omitempty"`
	PhysicalExamination   *string `json:"physical_examination,omitempty"`
	ProcedureCodes        *string `json:"procedure_codes,omitempty"`
	LabOrders             *string `json:"lab_orders,omitempty"`
	ImagingOrders         *string `json:"imaging_orders,omitempty"`

	// ADMIN
	PatientIdentity  *string                      `json:"patient_identity,omitempty"`
	AttendingID      *string                      `json:"attending_identity,omitempty"`
	Confidentiality  *access.ConfidentialityLevel `json:"confidentiality,omitempty"`
	IsSensitive      *bool                        `json:"is_sensitive,omitempty"`
	BreakGlassAccess *bool                        `json:"break_glass_access,omitempty"`
	CareTeam         []string                     `json:"care_team,omitempty"`
	AuthorizedUsers  []string                     `json:"authorized_users,omitempty"`
	CreatedBy        *string                      `json:"created_by,omitempty"`
	UpdatedBy        *string                      `json:"updated_by,omitempty"`
	LastAccessedBy   *string                      `json:"last_accessed_by,omitempty"`
	LastAccessedAt   *time.Time                   `json:"last_accessed_at,omitempty"`
	CreatedAt        *time.Time                   `json:"created_at,omitempty"`
	UpdatedAt        *time.Time                   `json:"updated_at,omitempty"`
}

// Project builds the view of m visible at the given tier. Each tier only
// adds fields on top of the one below it: BASIC carries identifiers and
// display names, DETAILED adds the working clinical picture (complaint,
// assessment, diagnosis codes, medications, vitals), FULL adds the complete
// narrative and orders, ADMIN adds security and audit metadata.
func Project(m *MedicalRecord, tier access.Tier) *RecordView {
	v := &RecordView{
		ID:            m.ID,
		RecordNumber:  m.RecordNumber,
		PatientName:   m.PatientName,
		AttendingName: m.AttendingName,
		RecordType:    m.RecordType,
		Status:        m.Status,
		Priority:      m.Priority,
		Department:    m.Department,
		VisitDate:     m.VisitDate,
		Tier:          tier.String(),
	}
	if tier < access.TierDetailed {
		return v
	}

	v.ChiefComplaint = m.ChiefComplaint
	v.AssessmentPlan = m.AssessmentPlan
	v.DiagnosisCodes = m.DiagnosisCodes
	v.Medications = m.Medications
	v.BloodPressure = m.BloodPressure
	v.HeartRate = m.HeartRate
	v.Temperature = m.Temperature
	v.RespiratoryRate = m.RespiratoryRate
	v.OxygenSaturation = m.OxygenSaturation
	v.AdmissionType = m.AdmissionType
	v.DischargeDate = m.DischargeDate
	if tier < access.TierFull {
		return v
	}

	v.HistoryPresentIllness = m.HistoryPresentIllness
	v.PhysicalExamination = m.PhysicalExamination
	v.ProcedureCodes = m.ProcedureCodes
	v.LabOrders = m.LabOrders
	v.ImagingOrders = m.ImagingOrders
	if tier < access.TierAdmin {
		return v
	}

	patient := m.PatientIdentity
	v.PatientIdentity = &patient
	v.AttendingID = m.AttendingID
	conf := m.Confidentiality
	v.Confidentiality = &conf
	sensitive := m.IsSensitive
	v.IsSensitive = &sensitive
	bg := m.BreakGlassAccess
	v.BreakGlassAccess = &bg
	v.CareTeam = m.CareTeam
	v.AuthorizedUsers = m.AuthorizedUsers
	createdBy := m.CreatedBy
	v.CreatedBy = &createdBy
	v.UpdatedBy = m.UpdatedBy
	v.LastAccessedBy = m.LastAccessedBy
	v.LastAccessedAt = m.LastAccessedAt
	createdAt := m.CreatedAt
	v.CreatedAt = &createdAt
	updatedAt := m.UpdatedAt
	v.UpdatedAt = &updatedAt
	return v
}
