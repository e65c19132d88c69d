package schedule

import (
	"strings"
	"time"
)

// Rule is a task recurrence rule. Raw values from the store are free-form
// strings; Normalize maps them onto the known set.
type Rule string

const (
	RuleDaily    Rule = "daily"
	RuleWeekdays Rule = "weekdays"
	RuleFullWeek Rule = "full-week"
	RuleWeekly   Rule = "weekly"
	RuleBiweekly Rule = "biweekly"
	RuleCustom   Rule = "custom"
)

// ResetAfter is how long a completion sticks before the reconciler clears it.
const ResetAfter = 24 * time.Hour

// dayOrdinals maps short day names to weekday ordinals, Sunday=0..Saturday=6.
var dayOrdinals = map[string]int{
	"sun": 0,
	"mon": 1,
	"tue": 2,
	"wed": 3,
	"thu": 4,
	"fri": 5,
	"sat": 6,
}

// Normalize resolves a raw rule string case-insensitively. Legacy dashboards
// stored "mon-fri" and "mon-sun" for the weekday and full-week rules; both
// spellings are accepted. Anything unrecognized, including the empty string,
// falls back to daily.
func Normalize(raw string) Rule {
	switch Rule(strings.ToLower(strings.TrimSpace(raw))) {
	case RuleWeekdays, "mon-fri":
		return RuleWeekdays
	case RuleFullWeek, "mon-sun":
		return RuleFullWeek
	case RuleWeekly:
		return RuleWeekly
	case RuleBiweekly:
		return RuleBiweekly
	case RuleCustom:
		return RuleCustom
	default:
		return RuleDaily
	}
}

// IsDue reports whether a task with the given rule is due on date. customDays
// is only consulted for RuleCustom. The clock is never read here; callers
// pass the date they care about.
func IsDue(rule Rule, customDays []int, date time.Time) bool {
	weekday := int(date.Weekday())

	switch Normalize(string(rule)) {
	case RuleWeekdays:
		return weekday >= 1 && weekday <= 5
	case RuleWeekly, RuleBiweekly:
		// biweekly has no two-week cadence or anchor date; it matches the
		// weekly rule (every Monday). Known discrepancy, pending product
		// confirmation before changing.
		return weekday == 1
	case RuleCustom:
		for _, d := range customDays {
			if d == weekday {
				return true
			}
		}
		return false
	default:
		// daily and full-week are both due every day; full-week is kept as a
		// distinct rule for display only.
		return true
	}
}

// ParseDays parses a stored custom-day list such as "mon,wed,fri" into
// weekday ordinals. Unrecognized tokens resolve to Sunday (0), matching the
// dashboards that wrote these values.
func ParseDays(s string) []int {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		days = append(days, dayOrdinals[strings.ToLower(strings.TrimSpace(p))])
	}
	return days
}

// CompletionState is the slice of a task the reconciler operates on.
type CompletionState struct {
	Completed   bool
	CompletedBy *string
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// Reconcile clears a completion that is more than ResetAfter old, stamping
// UpdatedAt with now. Otherwise the state is returned unchanged. The second
// return reports whether anything changed; reconciling an already-reconciled
// state is a no-op.
func Reconcile(state CompletionState, now time.Time) (CompletionState, bool) {
	if !state.Completed || now.Sub(state.UpdatedAt) <= ResetAfter {
		return state, false
	}
	return CompletionState{
		Completed:   false,
		CompletedBy: nil,
		CompletedAt: nil,
		UpdatedAt:   now,
	}, true
}
