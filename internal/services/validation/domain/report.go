package domain

import "time"

// Outcome is how a validation run ended
type Outcome uint8

const (
	// OutcomeVerified found at least one matching seed
	OutcomeVerified Outcome = iota + 1
	// OutcomeNoSeeds ran every phase without a match
	OutcomeNoSeeds
	// OutcomeFailed aborted on a phase error
	OutcomeFailed
	// OutcomeCancelled was abandoned by the caller
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVerified:
		return "verified"
	case OutcomeNoSeeds:
		return "no_seeds"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Warning flags a filter that works but is probably not what the author wants
type Warning uint8

const (
	// WarningNone means no warning
	WarningNone Warning = iota
	// WarningTooPermissive matched more than the threshold in Phase 1
	WarningTooPermissive
	// WarningTooRestrictive matched nothing in any phase
	WarningTooRestrictive
)

func (w Warning) String() string {
	switch w {
	case WarningTooPermissive:
		return "too_permissive"
	case WarningTooRestrictive:
		return "too_restrictive"
	}
	return ""
}

// PhaseResult records one phase that ran
type PhaseResult struct {
	Phase   string
	Count   int
	Elapsed time.Duration
}

// Report summarises a validation run
type Report struct {
	Outcome      Outcome
	Phase        string // phase that decided the outcome
	Count        int
	Seeds        []string
	VerifiedSeed string
	Saved        bool // VerifiedSeed was written back to the filter document
	Warning      Warning
	Message      string
	Elapsed      time.Duration
	Phases       []PhaseResult
}
