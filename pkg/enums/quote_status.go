package enums

import "fmt"

// QuoteStatus tracks a quote through its lifecycle. ACCEPTED and EXPIRED are
// terminal; only DRAFT and QUOTED quotes may be recalculated.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusQuoted   QuoteStatus = "quoted"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusExpired  QuoteStatus = "expired"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusQuoted,
	QuoteStatusAccepted,
	QuoteStatusExpired,
}

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:  {QuoteStatusQuoted, QuoteStatusExpired},
	QuoteStatusQuoted: {QuoteStatusAccepted, QuoteStatusExpired},
}

// String implements fmt.Stringer.
func (s QuoteStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuoteStatus.
func (s QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the quote can no longer change state.
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusExpired
}

// IsRecalculable reports whether the pricing pipeline may be re-run.
func (s QuoteStatus) IsRecalculable() bool {
	return s == QuoteStatusDraft || s == QuoteStatusQuoted
}

// CanTransition reports whether moving from s to target is allowed.
func (s QuoteStatus) CanTransition(target QuoteStatus) bool {
	for _, candidate := range quoteTransitions[s] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
