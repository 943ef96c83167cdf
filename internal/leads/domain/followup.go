package domain

// Follow-up cache states stored on the lead. The synchronizer is the only
// writer of these values.
const (
	FollowUpPending = "pending"
	FollowUpDone    = "done"
	FollowUpNone    = "none"
)

// Follow-up types. The deadline rule set keys on these.
const (
	TypeCall    = "call"
	TypeMessage = "message"
	TypeEmail   = "email"
	TypeVisit   = "visit"
	TypeQuote   = "quote"
	TypeGeneric = "generic"
)

var knownFollowUpTypes = map[string]struct{}{
	TypeCall:    {},
	TypeMessage: {},
	TypeEmail:   {},
	TypeVisit:   {},
	TypeQuote:   {},
	TypeGeneric: {},
}

// IsKnownFollowUpType reports whether t is a recognized follow-up type.
// Scheduling rejects unknown types; the calendar engine still maps them to
// the default one-day deadline rule when it sees one.
func IsKnownFollowUpType(t string) bool {
	_, ok := knownFollowUpTypes[t]
	return ok
}
