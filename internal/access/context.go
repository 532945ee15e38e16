package access

// RequesterContext is everything the policy engine knows about the caller
// at evaluation time. Relationship flags are precomputed against a single
// record snapshot so Evaluate stays a pure function of its two inputs.
type RequesterContext struct {
	Identity string
	Roles    RoleSet

	IsSelf               bool // requester is the record's patient
	IsAttendingPhysician bool
	IsCareTeamMember     bool
	IsAuthorizedUser     bool // explicit per-record grant
}

// NewRequesterContext derives the relationship flags for identity against
// the given record snapshot.
func NewRequesterContext(identity string, roles RoleSet, rec RecordAttributes) RequesterContext {
	return RequesterContext{
		Identity:             identity,
		Roles:                roles,
		IsSelf:               identity != "" && identity == rec.PatientIdentity,
		IsAttendingPhysician: identity != "" && identity == rec.AttendingPhysician,
		IsCareTeamMember:     rec.OnCareTeam(identity),
		IsAuthorizedUser:     rec.Authorized(identity),
	}
}

// hasUniversalOverride reports whether the requester holds a role that
// bypasses relationship rules and the sensitivity veto.
func (rc RequesterContext) hasUniversalOverride() bool {
	return rc.Roles.HasAny(RoleAdmin, RoleSuperAdmin, RoleEmergencyAccess)
}
