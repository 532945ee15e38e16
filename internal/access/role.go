package access

// Role is the closed vocabulary of staff roles the policy engine understands.
// Tokens carry roles as plain strings; unknown values are dropped at the
// boundary by RoleSetFromStrings so the engine only ever sees this set.
type Role string

const (
	RoleAdmin              Role = "ADMIN"
	RoleSuperAdmin         Role = "SUPER_ADMIN"
	RoleEmergencyAccess    Role = "EMERGENCY_ACCESS"
	RolePatient            Role = "PATIENT"
	RolePhysician          Role = "PHYSICIAN"
	RoleNurse              Role = "NURSE"
	RoleNursePractitioner  Role = "NURSE_PRACTITIONER"
	RolePhysicianAssistant Role = "PHYSICIAN_ASSISTANT"
	RoleSpecialist         Role = "SPECIALIST"
	RoleMedicalAdmin       Role = "MEDICAL_ADMIN"
	RoleComplianceOfficer  Role = "COMPLIANCE_OFFICER"
	RoleAuditor            Role = "AUDITOR"

	// Department staff roles. RoleEmergency doubles as the emergency
	// department role and as a break-glass caller role.
	RoleRadiology  Role = "RADIOLOGY"
	RoleLaboratory Role = "LABORATORY"
	RolePharmacy   Role = "PHARMACY"
	RoleEmergency  Role = "EMERGENCY"
	RoleICU        Role = "ICU"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin: {}, RoleSuperAdmin: {}, RoleEmergencyAccess: {},
	RolePatient: {}, RolePhysician: {}, RoleNurse: {},
	RoleNursePractitioner: {}, RolePhysicianAssistant: {}, RoleSpecialist: {},
	RoleMedicalAdmin: {}, RoleComplianceOfficer: {}, RoleAuditor: {},
	RoleRadiology: {}, RoleLaboratory: {}, RolePharmacy: {},
	RoleEmergency: {}, RoleICU: {},
}

// ParseRole returns the typed role for s, or false if s is not in the
// closed vocabulary.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := knownRoles[r]
	return r, ok
}

// RoleSet is an immutable-by-convention set of roles. Build it once per
// request from the verified token and do not mutate it afterwards.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from typed roles.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		if _, ok := knownRoles[r]; ok {
			s[r] = struct{}{}
		}
	}
	return s
}

// RoleSetFromStrings builds a RoleSet from raw token claims, silently
// dropping values outside the closed vocabulary.
func RoleSetFromStrings(raw []string) RoleSet {
	s := make(RoleSet, len(raw))
	for _, v := range raw {
		if r, ok := ParseRole(v); ok {
			s[r] = struct{}{}
		}
	}
	return s
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// HasAny reports whether any of the given roles is in the set.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Strings returns the set as raw strings, for logging.
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, string(r))
	}
	return out
}

// Department is the closed vocabulary of departments a record can belong to.
type Department string

const (
	DepartmentRadiology  Department = "RADIOLOGY"
	DepartmentLaboratory Department = "LABORATORY"
	DepartmentPharmacy   Department = "PHARMACY"
	DepartmentEmergency  Department = "EMERGENCY"
	DepartmentICU        Department = "ICU"
)

// departmentRoles maps each department to the staff role that grants access
// to its records. The mapping is exact: no department role cross-matches.
var departmentRoles = map[Department]Role{
	DepartmentRadiology:  RoleRadiology,
	DepartmentLaboratory: RoleLaboratory,
	DepartmentPharmacy:   RolePharmacy,
	DepartmentEmergency:  RoleEmergency,
	DepartmentICU:        RoleICU,
}

// ParseDepartment returns the typed department for s, or false if s is not
// a recognized department.
func ParseDepartment(s string) (Department, bool) {
	d := Department(s)
	_, ok := departmentRoles[d]
	return d, ok
}

// RoleForDepartment returns the staff role matching the given department.
func RoleForDepartment(d Department) (Role, bool) {
	r, ok := departmentRoles[d]
	return r, ok
}
