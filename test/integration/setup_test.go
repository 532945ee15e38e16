package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/recordgate/recordgate/internal/access"
	"github.com/recordgate/recordgate/internal/domain/emergencyaccess"
	"github.com/recordgate/recordgate/internal/domain/medicalrecord"
	"github.com/recordgate/recordgate/internal/platform/audit"
	"github.com/recordgate/recordgate/internal/platform/db"
)

// testDB holds the shared database infrastructure for integration tests.
type testDB struct {
	Pool    *pgxpool.Pool
	ConnStr string
}

// globalDB is the package-level test database, initialized once in TestMain.
var globalDB *testDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	connStr, cleanup, err := startPostgresContainer(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup postgres container: %v\n", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "create pool: %v\n", err)
		os.Exit(1)
	}

	migrator := db.NewMigrator(pool, findMigrationsDir())
	if _, err := migrator.Up(ctx); err != nil {
		pool.Close()
		cleanup()
		fmt.Fprintf(os.Stderr, "run migrations: %v\n", err)
		os.Exit(1)
	}

	globalDB = &testDB{Pool: pool, ConnStr: connStr}
	code := m.Run()
	pool.Close()
	cleanup()
	os.Exit(code)
}

// findMigrationsDir locates the migrations directory relative to this test file.
func findMigrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	// test/integration -> module root
	root := filepath.Join(dir, "..", "..")
	return filepath.Join(root, "migrations")
}

// newServices wires the real pg-backed repos, services and audit emitter
// the way cmd/recordgate-server does.
func newServices() (*medicalrecord.Service, *emergencyaccess.Service) {
	emitter := audit.NewEmitter(audit.NewPGSink(globalDB.Pool), zerolog.Nop())
	recordRepo := medicalrecord.NewRepoPG(globalDB.Pool)
	recordSvc := medicalrecord.NewService(recordRepo, emitter)
	inTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.InTx(ctx, globalDB.Pool, fn)
	}
	grantSvc := emergencyaccess.NewService(recordRepo, emergencyaccess.NewGrantRepoPG(globalDB.Pool), emitter, inTx)
	return recordSvc, grantSvc
}

func requesterWith(identity string, roles ...access.Role) medicalrecord.Requester {
	return medicalrecord.Requester{
		Identity:  identity,
		Roles:     access.NewRoleSet(roles...),
		RequestID: uuid.NewString(),
	}
}

func str(s string) *string { return &s }

// seedRecord inserts a record through the real repo and returns it.
func seedRecord(t *testing.T, ctx context.Context, mutate func(*medicalrecord.MedicalRecord)) *medicalrecord.MedicalRecord {
	t.Helper()
	rec := &medicalrecord.MedicalRecord{
		ID:              uuid.New(),
		RecordNumber:    fmt.Sprintf("MR-%d", time.Now().UnixNano()),
		PatientIdentity: "patient-" + uuid.NewString()[:8],
		PatientName:     "Test Patient",
		RecordType:      medicalrecord.TypeConsultation,
		Status:          medicalrecord.StatusActive,
		Priority:        medicalrecord.PriorityRoutine,
		Confidentiality: access.ConfidentialityNormal,
		Department:      str("RADIOLOGY"),
		AttendingID:     str("dr-" + uuid.NewString()[:8]),
		AttendingName:   str("Dr. Attending"),
		DiagnosisCodes:  str("M25.531"),
		LabOrders:       str("CBC"),
		VisitDate:       time.Now().UTC(),
		CreatedBy:       "seed",
	}
	if mutate != nil {
		mutate(rec)
	}
	repo := medicalrecord.NewRepoPG(globalDB.Pool)
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return rec
}

// auditEventsFor returns (outcome, detail) pairs of audit rows for a subject,
// oldest first.
func auditEventsFor(t *testing.T, ctx context.Context, subjectID string) []struct{ Outcome, Detail string } {
	t.Helper()
	rows, err := globalDB.Pool.Query(ctx,
		`SELECT outcome, detail FROM audit_event WHERE subject_id = $1 ORDER BY created_at`, subjectID)
	if err != nil {
		t.Fatalf("query audit_event: %v", err)
	}
	defer rows.Close()

	var out []struct{ Outcome, Detail string }
	for rows.Next() {
		var e struct{ Outcome, Detail string }
		if err := rows.Scan(&e.Outcome, &e.Detail); err != nil {
			t.Fatalf("scan audit_event: %v", err)
		}
		out = append(out, e)
	}
	return out
}
