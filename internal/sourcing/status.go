package sourcing

// Status reporter messages. Shown to end users verbatim.
const (
	msgQuotaExhausted = "Search providers have exhausted their quota. Please try again later or contact support."
	msgRateLimited    = "Search is temporarily rate-limited. Please wait a moment and try again."
	msgAllFailed      = "Unable to search at this time. Please try again later."
)

// Summarize inspects the per-provider outcomes and produces the
// aggregate verdict: allFailed is true iff every outcome is non-ok
// (vacuously true when nothing was dispatched). A user message is
// produced only when the final result set is empty — some providers
// succeeding with zero hits is a legitimate empty result, not a
// failure.
func Summarize(outcomes []Outcome, resultCount int) (allFailed bool, message string) {
	allFailed = true
	exhausted := 0
	rateLimited := 0
	for _, o := range outcomes {
		switch o.Status {
		case StatusOK:
			allFailed = false
		case StatusExhausted:
			exhausted++
		case StatusRateLimited:
			rateLimited++
		}
	}

	if resultCount > 0 {
		return allFailed, ""
	}

	switch {
	case exhausted > 0 && exhausted == len(outcomes):
		message = msgQuotaExhausted
	case rateLimited > 0:
		message = msgRateLimited
	case allFailed:
		message = msgAllFailed
	}
	return allFailed, message
}
