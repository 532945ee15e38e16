package integration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/recordgate/recordgate/internal/access"
	"github.com/recordgate/recordgate/internal/domain/emergencyaccess"
	"github.com/recordgate/recordgate/internal/domain/medicalrecord"
)

func TestAttendingPhysicianReadsRecord(t *testing.T) {
	ctx := context.Background()
	recordSvc, _ := newServices()
	rec := seedRecord(t, ctx, nil)

	req := requesterWith(*rec.AttendingID, access.RolePhysician)
	view, err := recordSvc.GetRecord(ctx, req, rec.ID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if view.Tier != "FULL" {
		t.Errorf("tier = %s, want FULL", view.Tier)
	}
	if view.LabOrders == nil || *view.LabOrders != "CBC" {
		t.Error("lab orders missing at FULL tier")
	}

	// Read-tracking is persisted
	got, err := medicalrecord.NewRepoPG(globalDB.Pool).GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("reload record: %v", err)
	}
	if got.LastAccessedBy == nil || *got.LastAccessedBy != *rec.AttendingID {
		t.Error("last_accessed_by not updated")
	}

	events := auditEventsFor(t, ctx, rec.ID.String())
	if len(events) != 1 || events[0].Outcome != "SUCCESS" {
		t.Errorf("audit events = %+v, want one SUCCESS", events)
	}
}

func TestUnrelatedClinicianIsDeniedAndAudited(t *testing.T) {
	ctx := context.Background()
	recordSvc, _ := newServices()
	rec := seedRecord(t, ctx, nil)

	req := requesterWith("dr-stranger", access.RolePhysician)
	_, err := recordSvc.GetRecord(ctx, req, rec.ID)
	var denied *access.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected DeniedError, got %v", err)
	}
	if denied.Reason != access.DenyNoMatchingRule {
		t.Errorf("reason = %s", denied.Reason)
	}

	events := auditEventsFor(t, ctx, rec.ID.String())
	if len(events) != 1 || events[0].Outcome != "DENIED" {
		t.Errorf("audit events = %+v, want one DENIED", events)
	}
}

func TestBreakGlassUnlocksSensitiveRecord(t *testing.T) {
	ctx := context.Background()
	recordSvc, grantSvc := newServices()
	rec := seedRecord(t, ctx, func(m *medicalrecord.MedicalRecord) {
		m.Confidentiality = access.ConfidentialityRestricted
		m.IsSensitive = true
	})

	// Attending relationship matches but the sensitivity veto blocks it
	req := requesterWith(*rec.AttendingID, access.RolePhysician)
	_, err := recordSvc.GetRecord(ctx, req, rec.ID)
	var denied *access.DeniedError
	if !errors.As(err, &denied) || denied.Reason != access.DenySensitiveBlocked {
		t.Fatalf("expected sensitive block, got %v", err)
	}

	granted, err := grantSvc.Grant(ctx, req, rec.ID,
		emergencyaccess.GrantRequest{Reason: "patient unconscious in ED"})
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if !granted.BreakGlassAccess {
		t.Error("break glass flag not set on returned record")
	}

	// The veto is lifted now
	view, err := recordSvc.GetRecord(ctx, req, rec.ID)
	if err != nil {
		t.Fatalf("GetRecord after grant: %v", err)
	}
	if view.Tier != "FULL" {
		t.Errorf("tier = %s, want FULL", view.Tier)
	}

	history, err := grantSvc.History(ctx, rec.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Reason != "patient unconscious in ED" {
		t.Errorf("history = %+v", history)
	}

	events := auditEventsFor(t, ctx, rec.ID.String())
	var outcomes []string
	for _, e := range events {
		outcomes = append(outcomes, e.Outcome)
	}
	want := "DENIED,EMERGENCY,SUCCESS"
	if strings.Join(outcomes, ",") != want {
		t.Errorf("audit outcomes = %v, want %s", outcomes, want)
	}
}

func TestPatientSeesOwnRecordAtBasicTier(t *testing.T) {
	ctx := context.Background()
	recordSvc, _ := newServices()
	rec := seedRecord(t, ctx, nil)

	req := requesterWith(rec.PatientIdentity, access.RolePatient)
	view, err := recordSvc.GetRecord(ctx, req, rec.ID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if view.Tier != "BASIC" {
		t.Errorf("tier = %s, want BASIC", view.Tier)
	}
	if view.DiagnosisCodes != nil || view.LabOrders != nil {
		t.Error("clinical fields leaked at BASIC tier")
	}
}
