package access

// Tier is the disclosure level attached to an affirmative decision.
// Tiers are strictly ordered and cumulative: every field visible at a
// lower tier is visible at all higher tiers.
type Tier int

const (
	TierBasic Tier = iota + 1
	TierDetailed
	TierFull
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierBasic:
		return "BASIC"
	case TierDetailed:
		return "DETAILED"
	case TierFull:
		return "FULL"
	case TierAdmin:
		return "ADMIN"
	default:
		return "UNKNOWN"
	}
}

// DenyReason classifies a negative decision.
type DenyReason string

const (
	// DenyNotSelf: the requester holds only the patient role and the
	// record belongs to someone else.
	DenyNotSelf DenyReason = "NOT_SELF"
	// DenyNoMatchingRule: no rule in the ordered policy matched.
	DenyNoMatchingRule DenyReason = "NO_MATCHING_RULE"
	// DenySensitiveBlocked: a rule matched but the record is sensitive
	// and no break-glass grant is active.
	DenySensitiveBlocked DenyReason = "SENSITIVE_BLOCKED"
)

// Decision is the outcome of a single policy evaluation. Exactly one of
// the allow and deny halves is meaningful: Allowed selects it.
type Decision struct {
	Allowed bool
	Tier    Tier       // valid only when Allowed
	Reason  DenyReason // valid only when !Allowed
	Rule    string     // name of the rule that matched, empty on NO_MATCHING_RULE
}

// Allow builds an affirmative decision at the given tier.
func Allow(tier Tier, rule string) Decision {
	return Decision{Allowed: true, Tier: tier, Rule: rule}
}

// Deny builds a negative decision.
func Deny(reason DenyReason, rule string) Decision {
	return Decision{Allowed: false, Reason: reason, Rule: rule}
}

// DeniedError is returned by services when a policy evaluation denies
// access. Handlers map it to 403.
type DeniedError struct {
	Reason DenyReason
}

func (e *DeniedError) Error() string {
	return "access denied: " + string(e.Reason)
}
