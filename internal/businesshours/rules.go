package businesshours

// DeadlineRule is the offset applied to a follow-up's scheduled time before
// calendar adjustment. Days are applied first, then hours.
type DeadlineRule struct {
	Days  int
	Hours int
}

// DeadlineRules maps a follow-up type to its deadline offset.
type DeadlineRules map[string]DeadlineRule

// defaultRule is applied when a follow-up type has no configured rule.
var defaultRule = DeadlineRule{Days: 1}

// DefaultDeadlineRules returns the stock rule set. Quick-touch contact types
// get same-day hour offsets; visits and quotes get full business days.
func DefaultDeadlineRules() DeadlineRules {
	return DeadlineRules{
		"call":    {Hours: 2},
		"message": {Hours: 4},
		"email":   {Hours: 8},
		"visit":   {Days: 1},
		"quote":   {Days: 2},
		"generic": {Days: 1},
	}
}
