package domain

import "time"

// Evaluation is what the kernel reports for one seed
type Evaluation struct {
	IsMatch    bool
	TotalScore int
	Tallies    []int
}

// Result is a recorded match
type Result struct {
	Seed       string
	TotalScore int
	Tallies    []int
}

// Progress is an immutable snapshot of a search's counters
type Progress struct {
	SeedsSearched   uint64
	ResultsFound    int
	BatchesDone     uint64
	TotalBatches    uint64
	PercentComplete float64
	Elapsed         time.Duration
}

// State is a search lifecycle state
type State int32

const (
	// StateIdle is a created, not yet started search
	StateIdle State = iota
	// StateRunning has workers scanning
	StateRunning
	// StatePaused has workers parked at a batch boundary
	StatePaused
	// StateCompleted exhausted its range or reached MaxResults
	StateCompleted
	// StateCancelled was stopped
	StateCancelled
	// StateFailed ended with kernel errors
	StateFailed
)

var stateNames = [...]string{"idle", "running", "paused", "completed", "cancelled", "failed"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transitions are possible
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// Outcome is the final report of a search
type Outcome struct {
	SearchID string
	State    State
	Err      error
	Results  []Result
	Progress Progress
	Elapsed  time.Duration
}

// Seeds returns the seeds of the recorded results in order
func (o Outcome) Seeds() []string {
	out := make([]string, len(o.Results))
	for i, r := range o.Results {
		out[i] = r.Seed
	}
	return out
}

// QuickResult is the aggregate returned by a bounded, unregistered search
type QuickResult struct {
	Success   bool
	Count     int
	Elapsed   time.Duration
	Seeds     []string
	Results   []Result
	Err       error
	Cancelled bool
}

// EventKind tags an Event
type EventKind uint8

const (
	// EventStarted fires once when workers are launched
	EventStarted EventKind = iota + 1
	// EventProgress carries a throttled Progress snapshot
	EventProgress
	// EventResult carries one recorded match
	EventResult
	// EventCompleted fires once with the final Outcome; it is the last event
	EventCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventResult:
		return "result"
	case EventCompleted:
		return "completed"
	}
	return "unknown"
}

// Event is one message on an instance's event channel
type Event struct {
	Kind     EventKind
	SearchID string
	Progress Progress
	Result   Result
	Outcome  Outcome
}
