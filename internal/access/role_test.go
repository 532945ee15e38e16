package access

import "testing"

func TestRoleSetFromStringsDropsUnknown(t *testing.T) {
	s := RoleSetFromStrings([]string{"PHYSICIAN", "WIZARD", "", "NURSE", "physician"})
	if len(s) != 2 {
		t.Fatalf("len = %d, want 2 (%v)", len(s), s.Strings())
	}
	if !s.Has(RolePhysician) || !s.Has(RoleNurse) {
		t.Errorf("missing expected roles: %v", s.Strings())
	}
}

func TestParseDepartment(t *testing.T) {
	if _, ok := ParseDepartment("RADIOLOGY"); !ok {
		t.Error("RADIOLOGY should parse")
	}
	if _, ok := ParseDepartment("CARDIOLOGY"); ok {
		t.Error("CARDIOLOGY is not a policy department")
	}
	if _, ok := ParseDepartment(""); ok {
		t.Error("empty department should not parse")
	}
}

func TestRoleForDepartmentIsExact(t *testing.T) {
	pairs := map[Department]Role{
		DepartmentRadiology:  RoleRadiology,
		DepartmentLaboratory: RoleLaboratory,
		DepartmentPharmacy:   RolePharmacy,
		DepartmentEmergency:  RoleEmergency,
		DepartmentICU:        RoleICU,
	}
	for dep, want := range pairs {
		got, ok := RoleForDepartment(dep)
		if !ok || got != want {
			t.Errorf("RoleForDepartment(%s) = %s, %v; want %s", dep, got, ok, want)
		}
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name  string
		roles RoleSet
		want  Tier
	}{
		{"no roles", NewRoleSet(), TierBasic},
		{"patient", NewRoleSet(RolePatient), TierBasic},
		{"department staff", NewRoleSet(RoleLaboratory), TierBasic},
		{"nurse", NewRoleSet(RoleNurse), TierDetailed},
		{"physician assistant", NewRoleSet(RolePhysicianAssistant), TierDetailed},
		{"physician", NewRoleSet(RolePhysician), TierFull},
		{"nurse practitioner", NewRoleSet(RoleNursePractitioner), TierFull},
		{"specialist", NewRoleSet(RoleSpecialist), TierFull},
		{"admin", NewRoleSet(RoleAdmin), TierAdmin},
		{"super admin", NewRoleSet(RoleSuperAdmin), TierAdmin},
		{"emergency access", NewRoleSet(RoleEmergencyAccess), TierAdmin},
		{"medical admin", NewRoleSet(RoleMedicalAdmin), TierAdmin},
		{"compliance officer", NewRoleSet(RoleComplianceOfficer), TierAdmin},
		{"auditor", NewRoleSet(RoleAuditor), TierAdmin},
		{"highest role wins", NewRoleSet(RoleNurse, RolePhysician), TierFull},
		{"admin beats clinical roles", NewRoleSet(RolePhysician, RoleAdmin), TierAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TierFor(tt.roles); got != tt.want {
				t.Errorf("TierFor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTierOrdering(t *testing.T) {
	if !(TierBasic < TierDetailed && TierDetailed < TierFull && TierFull < TierAdmin) {
		t.Fatal("tier constants lost their ordering")
	}
}
