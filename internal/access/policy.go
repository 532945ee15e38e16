package access

// ruleOutcome is the result of checking one rule against a request.
type ruleOutcome int

const (
	ruleSkip  ruleOutcome = iota // rule does not apply, continue down the table
	ruleAllow                    // rule grants access
	ruleDeny                     // rule denies terminally, no further rules run
)

// policyRule is one entry in the ordered evaluation table. Rules earlier in
// the table win; the first non-skip outcome decides the request, subject to
// the sensitivity veto for non-override rules.
type policyRule struct {
	name string
	// vetoExempt rules grant access to sensitive records even without an
	// active break-glass flag.
	vetoExempt bool
	eval       func(rc RequesterContext, rec RecordAttributes) (ruleOutcome, DenyReason)
}

// clinicalRelationshipRoles are the roles whose care relationships
// (attending, care team, explicit authorization) grant access.
var clinicalRelationshipRoles = []Role{
	RolePhysician, RoleNurse, RoleNursePractitioner, RolePhysicianAssistant,
}

var policyRules = []policyRule{
	{
		name:       "universal_override",
		vetoExempt: true,
		eval: func(rc RequesterContext, _ RecordAttributes) (ruleOutcome, DenyReason) {
			if rc.hasUniversalOverride() {
				return ruleAllow, ""
			}
			return ruleSkip, ""
		},
	},
	{
		// Patient-role requesters are terminal here: they either own the
		// record or they are denied, regardless of any later rule.
		name: "self_access",
		eval: func(rc RequesterContext, _ RecordAttributes) (ruleOutcome, DenyReason) {
			if !rc.Roles.Has(RolePatient) {
				return ruleSkip, ""
			}
			if rc.IsSelf {
				return ruleAllow, ""
			}
			return ruleDeny, DenyNotSelf
		},
	},
	{
		// Relationship flags only count for clinical staff. A care-team
		// listing does not grant anything to a non-clinical role.
		name: "clinical_relationship",
		eval: func(rc RequesterContext, _ RecordAttributes) (ruleOutcome, DenyReason) {
			if !rc.Roles.HasAny(clinicalRelationshipRoles...) {
				return ruleSkip, ""
			}
			if rc.IsAttendingPhysician || rc.IsCareTeamMember || rc.IsAuthorizedUser {
				return ruleAllow, ""
			}
			return ruleSkip, ""
		},
	},
	{
		name: "department_match",
		eval: func(rc RequesterContext, rec RecordAttributes) (ruleOutcome, DenyReason) {
			if rec.Department == "" {
				return ruleSkip, ""
			}
			role, ok := RoleForDepartment(rec.Department)
			if ok && rc.Roles.Has(role) {
				return ruleAllow, ""
			}
			return ruleSkip, ""
		},
	},
}

// Evaluate runs the ordered policy against one requester and one record
// snapshot. It is pure: no I/O, no clock, no mutation of its inputs.
// Callers are responsible for auditing the returned decision.
func Evaluate(rc RequesterContext, rec RecordAttributes) Decision {
	for _, rule := range policyRules {
		outcome, reason := rule.eval(rc, rec)
		switch outcome {
		case ruleSkip:
			continue
		case ruleDeny:
			return Deny(reason, rule.name)
		case ruleAllow:
			if rec.IsSensitive && !rec.BreakGlassAccess && !rule.vetoExempt {
				return Deny(DenySensitiveBlocked, rule.name)
			}
			return Allow(TierFor(rc.Roles), rule.name)
		}
	}
	return Deny(DenyNoMatchingRule, "")
}
