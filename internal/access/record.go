package access

// ConfidentialityLevel classifies how tightly a record's contents are held.
// It is carried for audit and display; the policy engine keys sensitivity
// off the IsSensitive flag, which record owners derive from this level.
type ConfidentialityLevel string

const (
	ConfidentialityNormal            ConfidentialityLevel = "NORMAL"
	ConfidentialityRestricted        ConfidentialityLevel = "RESTRICTED"
	ConfidentialityHighlyRestricted  ConfidentialityLevel = "HIGHLY_RESTRICTED"
	ConfidentialityVIP               ConfidentialityLevel = "VIP"
)

// Sensitive reports whether the level marks the record as sensitive for
// policy purposes.
func (c ConfidentialityLevel) Sensitive() bool {
	switch c {
	case ConfidentialityRestricted, ConfidentialityHighlyRestricted, ConfidentialityVIP:
		return true
	}
	return false
}

// RecordAttributes is the policy-relevant snapshot of a clinical record.
// It is a pure value: the evaluator never touches storage.
type RecordAttributes struct {
	PatientIdentity    string
	AttendingPhysician string
	Department         Department // zero value when the record has none
	CareTeam           map[string]struct{}
	AuthorizedUsers    map[string]struct{}
	Confidentiality    ConfidentialityLevel
	IsSensitive        bool
	BreakGlassAccess   bool
}

// OnCareTeam reports whether identity is a care team member.
func (r RecordAttributes) OnCareTeam(identity string) bool {
	_, ok := r.CareTeam[identity]
	return ok
}

// Authorized reports whether identity holds an explicit access grant.
func (r RecordAttributes) Authorized(identity string) bool {
	_, ok := r.AuthorizedUsers[identity]
	return ok
}
