package access

import (
	"reflect"
	"testing"
)

func set(identities ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(identities))
	for _, id := range identities {
		m[id] = struct{}{}
	}
	return m
}

func TestEvaluateOrderedRules(t *testing.T) {
	record := RecordAttributes{
		PatientIdentity:    "patient-7",
		AttendingPhysician: "dr-house",
		Department:         DepartmentRadiology,
		CareTeam:           set("nurse-amy"),
		AuthorizedUsers:    set("consult-1"),
	}
	sensitive := record
	sensitive.IsSensitive = true
	unlocked := sensitive
	unlocked.BreakGlassAccess = true

	tests := []struct {
		name     string
		identity string
		roles    RoleSet
		record   RecordAttributes
		want     Decision
	}{
		{
			name:     "admin override wins before everything",
			identity: "someone-else",
			roles:    NewRoleSet(RoleAdmin),
			record:   record,
			want:     Allow(TierAdmin, "universal_override"),
		},
		{
			name:     "super admin override",
			identity: "someone-else",
			roles:    NewRoleSet(RoleSuperAdmin),
			record:   record,
			want:     Allow(TierAdmin, "universal_override"),
		},
		{
			name:     "emergency access override",
			identity: "someone-else",
			roles:    NewRoleSet(RoleEmergencyAccess),
			record:   record,
			want:     Allow(TierAdmin, "universal_override"),
		},
		{
			name:     "patient sees own record",
			identity: "patient-7",
			roles:    NewRoleSet(RolePatient),
			record:   record,
			want:     Allow(TierBasic, "self_access"),
		},
		{
			name:     "patient denied on another patient's record",
			identity: "patient-8",
			roles:    NewRoleSet(RolePatient),
			record:   record,
			want:     Deny(DenyNotSelf, "self_access"),
		},
		{
			name:     "patient role is terminal even with department role",
			identity: "patient-8",
			roles:    NewRoleSet(RolePatient, RoleRadiology),
			record:   record,
			want:     Deny(DenyNotSelf, "self_access"),
		},
		{
			name:     "attending physician",
			identity: "dr-house",
			roles:    NewRoleSet(RolePhysician),
			record:   record,
			want:     Allow(TierFull, "clinical_relationship"),
		},
		{
			name:     "care team nurse",
			identity: "nurse-amy",
			roles:    NewRoleSet(RoleNurse),
			record:   record,
			want:     Allow(TierDetailed, "clinical_relationship"),
		},
		{
			name:     "explicitly authorized nurse practitioner",
			identity: "consult-1",
			roles:    NewRoleSet(RoleNursePractitioner),
			record:   record,
			want:     Allow(TierFull, "clinical_relationship"),
		},
		{
			name:     "care team listing grants nothing to non-clinical roles",
			identity: "nurse-amy",
			roles:    NewRoleSet(RoleAuditor),
			record:   record,
			want:     Deny(DenyNoMatchingRule, ""),
		},
		{
			name:     "care team identity without any role is denied",
			identity: "nurse-amy",
			roles:    NewRoleSet(),
			record:   record,
			want:     Deny(DenyNoMatchingRule, ""),
		},
		{
			name:     "authorized specialist lacks a relationship-qualifying role",
			identity: "consult-1",
			roles:    NewRoleSet(RoleSpecialist),
			record:   record,
			want:     Deny(DenyNoMatchingRule, ""),
		},
		{
			name:     "department role matches record department",
			identity: "tech-1",
			roles:    NewRoleSet(RoleRadiology),
			record:   record,
			want:     Allow(TierBasic, "department_match"),
		},
		{
			name:     "department roles never cross-match",
			identity: "tech-2",
			roles:    NewRoleSet(RoleLaboratory),
			record:   record,
			want:     Deny(DenyNoMatchingRule, ""),
		},
		{
			name:     "unrelated physician is denied",
			identity: "dr-wilson",
			roles:    NewRoleSet(RolePhysician),
			record:   record,
			want:     Deny(DenyNoMatchingRule, ""),
		},
		{
			name:     "no roles no relationship",
			identity: "stranger",
			roles:    NewRoleSet(),
			record:   record,
			want:     Deny(DenyNoMatchingRule, ""),
		},
		{
			name:     "sensitivity veto blocks attending physician",
			identity: "dr-house",
			roles:    NewRoleSet(RolePhysician),
			record:   sensitive,
			want:     Deny(DenySensitiveBlocked, "clinical_relationship"),
		},
		{
			name:     "sensitivity veto blocks department match",
			identity: "tech-1",
			roles:    NewRoleSet(RoleRadiology),
			record:   sensitive,
			want:     Deny(DenySensitiveBlocked, "department_match"),
		},
		{
			name:     "sensitivity veto blocks self access",
			identity: "patient-7",
			roles:    NewRoleSet(RolePatient),
			record:   sensitive,
			want:     Deny(DenySensitiveBlocked, "self_access"),
		},
		{
			name:     "override is exempt from sensitivity veto",
			identity: "someone-else",
			roles:    NewRoleSet(RoleAdmin),
			record:   sensitive,
			want:     Allow(TierAdmin, "universal_override"),
		},
		{
			name:     "break glass unblocks sensitive record",
			identity: "dr-house",
			roles:    NewRoleSet(RolePhysician),
			record:   unlocked,
			want:     Allow(TierFull, "clinical_relationship"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := NewRequesterContext(tt.identity, tt.roles, tt.record)
			got := Evaluate(rc, tt.record)
			if got != tt.want {
				t.Errorf("Evaluate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEvaluateNoDepartmentSkipsDepartmentRule(t *testing.T) {
	record := RecordAttributes{PatientIdentity: "patient-1"}
	rc := NewRequesterContext("tech-1", NewRoleSet(RoleRadiology), record)
	got := Evaluate(rc, record)
	if got.Allowed {
		t.Fatalf("expected deny for department role on record without department, got %+v", got)
	}
	if got.Reason != DenyNoMatchingRule {
		t.Errorf("Reason = %s, want %s", got.Reason, DenyNoMatchingRule)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	record := RecordAttributes{
		PatientIdentity:    "patient-7",
		AttendingPhysician: "dr-house",
		Department:         DepartmentICU,
		CareTeam:           set("nurse-amy", "nurse-ben"),
		IsSensitive:        true,
	}
	rc := NewRequesterContext("nurse-amy", NewRoleSet(RoleNurse, RoleICU), record)

	first := Evaluate(rc, record)
	for i := 0; i < 50; i++ {
		if got := Evaluate(rc, record); got != first {
			t.Fatalf("iteration %d: Evaluate() = %+v, want %+v", i, got, first)
		}
	}
}

func TestEvaluateDoesNotMutateInputs(t *testing.T) {
	record := RecordAttributes{
		PatientIdentity: "patient-7",
		CareTeam:        set("nurse-amy"),
		AuthorizedUsers: set("consult-1"),
		Confidentiality: ConfidentialityRestricted,
		IsSensitive:     true,
	}
	before := RecordAttributes{
		PatientIdentity: "patient-7",
		CareTeam:        set("nurse-amy"),
		AuthorizedUsers: set("consult-1"),
		Confidentiality: ConfidentialityRestricted,
		IsSensitive:     true,
	}
	rc := NewRequesterContext("nurse-amy", NewRoleSet(RoleNurse), record)
	Evaluate(rc, record)
	if !reflect.DeepEqual(record, before) {
		t.Errorf("record mutated by Evaluate: %+v", record)
	}
}

func TestNewRequesterContextFlags(t *testing.T) {
	record := RecordAttributes{
		PatientIdentity:    "patient-7",
		AttendingPhysician: "dr-house",
		CareTeam:           set("nurse-amy"),
		AuthorizedUsers:    set("consult-1"),
	}

	tests := []struct {
		identity                          string
		self, attending, care, authorized bool
	}{
		{"patient-7", true, false, false, false},
		{"dr-house", false, true, false, false},
		{"nurse-amy", false, false, true, false},
		{"consult-1", false, false, false, true},
		{"stranger", false, false, false, false},
		{"", false, false, false, false},
	}
	for _, tt := range tests {
		rc := NewRequesterContext(tt.identity, NewRoleSet(), record)
		if rc.IsSelf != tt.self || rc.IsAttendingPhysician != tt.attending ||
			rc.IsCareTeamMember != tt.care || rc.IsAuthorizedUser != tt.authorized {
			t.Errorf("flags for %q = %+v", tt.identity, rc)
		}
	}
}
