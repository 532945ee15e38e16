package medicalrecord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recordgate/recordgate/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryer {
	if q := db.QueryerFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const recordCols = `id, record_number, patient_identity, patient_name, record_type, status, priority,
	confidentiality, department, attending_identity, attending_name, admission_type,
	chief_complaint, history_present_illness, physical_examination, assessment_plan,
	diagnosis_codes, procedure_codes, medications, lab_orders, imaging_orders,
	blood_pressure, heart_rate, temperature, respiratory_rate, oxygen_saturation,
	is_sensitive, break_glass_access,
	visit_date, discharge_date, created_by, updated_by,
	last_accessed_by, last_accessed_at, created_at, updated_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(&m.ID, &m.RecordNumber, &m.PatientIdentity, &m.PatientName, &m.RecordType, &m.Status, &m.Priority,
		&m.Confidentiality, &m.Department, &m.AttendingID, &m.AttendingName, &m.AdmissionType,
		&m.ChiefComplaint, &m.HistoryPresentIllness, &m.PhysicalExamination, &m.AssessmentPlan,
		&m.DiagnosisCodes, &m.ProcedureCodes, &m.Medications, &m.LabOrders, &m.ImagingOrders,
		&m.BloodPressure, &m.HeartRate, &m.Temperature, &m.RespiratoryRate, &m.OxygenSaturation,
		&m.IsSensitive, &m.BreakGlassAccess,
		&m.VisitDate, &m.DischargeDate, &m.CreatedBy, &m.UpdatedBy,
		&m.LastAccessedBy, &m.LastAccessedAt, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *MedicalRecord) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_record (id, record_number, patient_identity, patient_name, record_type, status, priority,
			confidentiality, department, attending_identity, attending_name, admission_type,
			chief_complaint, history_present_illness, physical_examination, assessment_plan,
			diagnosis_codes, procedure_codes, medications, lab_orders, imaging_orders,
			blood_pressure, heart_rate, temperature, respiratory_rate, oxygen_saturation,
			is_sensitive, visit_date, discharge_date, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
			$21,$22,$23,$24,$25,$26,$27,$28,$29,$30)`,
		m.ID, m.RecordNumber, m.PatientIdentity, m.PatientName, m.RecordType, m.Status, m.Priority,
		m.Confidentiality, m.Department, m.AttendingID, m.AttendingName, m.AdmissionType,
		m.ChiefComplaint, m.HistoryPresentIllness, m.PhysicalExamination, m.AssessmentPlan,
		m.DiagnosisCodes, m.ProcedureCodes, m.Medications, m.LabOrders, m.ImagingOrders,
		m.BloodPressure, m.HeartRate, m.Temperature, m.RespiratoryRate, m.OxygenSaturation,
		m.IsSensitive, m.VisitDate, m.DischargeDate, m.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert medical record: %w", err)
	}
	for _, identity := range m.CareTeam {
		if err := r.AddCareTeamMember(ctx, m.ID, identity); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	m, err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_record WHERE id = $1 AND status <> 'DELETED'`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get medical record: %w", err)
	}
	if err := r.loadMembers(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// loadMembers fills the care team and authorized user sets for one record.
func (r *repoPG) loadMembers(ctx context.Context, m *MedicalRecord) error {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT identity FROM record_care_team WHERE record_id = $1 ORDER BY identity`, m.ID)
	if err != nil {
		return fmt.Errorf("load care team: %w", err)
	}
	m.CareTeam, err = collectIdentities(rows)
	if err != nil {
		return fmt.Errorf("load care team: %w", err)
	}

	rows, err = r.conn(ctx).Query(ctx,
		`SELECT identity FROM record_authorized_user WHERE record_id = $1 ORDER BY identity`, m.ID)
	if err != nil {
		return fmt.Errorf("load authorized users: %w", err)
	}
	m.AuthorizedUsers, err = collectIdentities(rows)
	if err != nil {
		return fmt.Errorf("load authorized users: %w", err)
	}
	return nil
}

func collectIdentities(rows pgx.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, m *MedicalRecord) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_record SET status=$2, priority=$3, confidentiality=$4, department=$5,
			attending_identity=$6, attending_name=$7, admission_type=$8,
			chief_complaint=$9, history_present_illness=$10, physical_examination=$11,
			assessment_plan=$12, diagnosis_codes=$13, procedure_codes=$14,
			medications=$15, lab_orders=$16, imaging_orders=$17,
			blood_pressure=$18, heart_rate=$19, temperature=$20,
			respiratory_rate=$21, oxygen_saturation=$22, is_sensitive=$23,
			discharge_date=$24, updated_by=$25, updated_at=NOW()
		WHERE id = $1 AND status <> 'DELETED'`,
		m.ID, m.Status, m.Priority, m.Confidentiality, m.Department,
		m.AttendingID, m.AttendingName, m.AdmissionType,
		m.ChiefComplaint, m.HistoryPresentIllness, m.PhysicalExamination,
		m.AssessmentPlan, m.DiagnosisCodes, m.ProcedureCodes,
		m.Medications, m.LabOrders, m.ImagingOrders,
		m.BloodPressure, m.HeartRate, m.Temperature,
		m.RespiratoryRate, m.OxygenSaturation, m.IsSensitive,
		m.DischargeDate, m.UpdatedBy)
	if err != nil {
		return fmt.Errorf("update medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	where := []string{`status <> 'DELETED'`}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.PatientIdentity != "" {
		where = append(where, "patient_identity = "+arg(f.PatientIdentity))
	}
	if f.Department != "" {
		where = append(where, "department = "+arg(f.Department))
	}
	if f.RecordType != "" {
		where = append(where, "record_type = "+arg(string(f.RecordType)))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_record WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medical records: %w", err)
	}

	query := `SELECT ` + recordCols + ` FROM medical_record WHERE ` + cond +
		` ORDER BY visit_date DESC ` + fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list medical records: %w", err)
	}
	items, err := r.collectRecords(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]*MedicalRecord, int, error) {
	pattern := "%" + query + "%"
	cond := `status <> 'DELETED' AND
		(record_number ILIKE $1 OR patient_name ILIKE $1 OR diagnosis_codes ILIKE $1
			OR chief_complaint ILIKE $1 OR assessment_plan ILIKE $1)`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_record WHERE `+cond, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM medical_record WHERE `+cond+
			` ORDER BY visit_date DESC `+fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset), pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("search medical records: %w", err)
	}
	items, err := r.collectRecords(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) collectRecords(ctx context.Context, rows pgx.Rows) ([]*MedicalRecord, error) {
	defer rows.Close()
	var items []*MedicalRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medical record: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medical records: %w", err)
	}
	for _, m := range items {
		if err := r.loadMembers(ctx, m); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *repoPG) SetBreakGlass(ctx context.Context, id uuid.UUID, grantedBy string) (*MedicalRecord, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_record SET break_glass_access = TRUE, updated_by = $2, updated_at = NOW()
		WHERE id = $1 AND status <> 'DELETED'`, id, grantedBy)
	if err != nil {
		return nil, fmt.Errorf("set break glass: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *repoPG) UpdateLastAccessed(ctx context.Context, id uuid.UUID, identity string, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_record SET last_accessed_by = $2, last_accessed_at = $3
		WHERE id = $1`, id, identity, at)
	if err != nil {
		return fmt.Errorf("update last accessed: %w", err)
	}
	return nil
}

func (r *repoPG) AddCareTeamMember(ctx context.Context, id uuid.UUID, identity string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO record_care_team (record_id, identity) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, id, identity)
	if err != nil {
		return fmt.Errorf("add care team member: %w", err)
	}
	return nil
}

func (r *repoPG) RemoveCareTeamMember(ctx context.Context, id uuid.UUID, identity string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM record_care_team WHERE record_id = $1 AND identity = $2`, id, identity)
	if err != nil {
		return fmt.Errorf("remove care team member: %w", err)
	}
	return nil
}

func (r *repoPG) Archive(ctx context.Context, id uuid.UUID, by string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_record SET status = 'ARCHIVED', updated_by = $2, updated_at = NOW()
		WHERE id = $1 AND status <> 'DELETED'`, id, by)
	if err != nil {
		return fmt.Errorf("archive medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
