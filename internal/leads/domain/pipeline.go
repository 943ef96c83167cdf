// Package domain provides core business rules for the leads bounded context.
package domain

// Pipeline states a lead moves through. Won and Lost are terminal: the
// follow-up cache is frozen and no further follow-ups are scheduled.
const (
	StateNew         = "New"
	StateQuoted      = "Quoted"
	StateNegotiating = "Negotiating"
	StateWon         = "Won"
	StateLost        = "Lost"
)

var knownStates = map[string]struct{}{
	StateNew:         {},
	StateQuoted:      {},
	StateNegotiating: {},
	StateWon:         {},
	StateLost:        {},
}

// terminalStates are pipeline states where the sales effort is concluded.
var terminalStates = map[string]bool{
	StateWon:  true,
	StateLost: true,
}

// advancedStates are non-terminal states past qualification. A product overlap
// with a lead in one of these states blocks a competing registration.
var advancedStates = map[string]bool{
	StateQuoted:      true,
	StateNegotiating: true,
}

// IsKnownState reports whether state is a recognized pipeline state.
func IsKnownState(state string) bool {
	_, ok := knownStates[state]
	return ok
}

// IsTerminal reports whether the pipeline state is Won or Lost.
func IsTerminal(state string) bool {
	return terminalStates[state]
}

// IsAdvanced reports whether the lead is past qualification but not closed.
func IsAdvanced(state string) bool {
	return advancedStates[state]
}

// ActiveStates returns the non-terminal pipeline states, in pipeline order.
func ActiveStates() []string {
	return []string{StateNew, StateQuoted, StateNegotiating}
}
