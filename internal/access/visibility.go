package access

// Tier membership by role. A requester's tier is the highest tier any of
// their roles maps to; roles outside these tables land at BASIC.
var (
	// The universal-override roles all disclose at ADMIN tier.
	adminTierRoles = []Role{
		RoleAdmin, RoleSuperAdmin, RoleEmergencyAccess,
		RoleMedicalAdmin, RoleComplianceOfficer, RoleAuditor,
	}
	fullTierRoles = []Role{
		RolePhysician, RoleNursePractitioner, RoleSpecialist,
	}
	detailedTierRoles = []Role{
		RoleNurse, RolePhysicianAssistant,
	}
)

// TierFor maps a role set to its disclosure tier. The mapping is
// independent of which policy rule granted access: a nurse on the care
// team and a nurse in the matching department both see DETAILED.
func TierFor(roles RoleSet) Tier {
	if roles.HasAny(adminTierRoles...) {
		return TierAdmin
	}
	if roles.HasAny(fullTierRoles...) {
		return TierFull
	}
	if roles.HasAny(detailedTierRoles...) {
		return TierDetailed
	}
	return TierBasic
}
