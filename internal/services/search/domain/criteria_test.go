package domain

import (
	"testing"

	perr "seedsearch/internal/platform/errors"
)

func TestCriteriaValidate(t *testing.T) {
	cases := []struct {
		name  string
		c     Criteria
		field string
	}{
		{"ok", Criteria{BatchSize: 1, StartBatch: 0, EndBatch: 1}, ""},
		{"full range", Criteria{BatchSize: 7, StartBatch: 0, EndBatch: 35}, ""},
		{"empty range", Criteria{BatchSize: 1, StartBatch: 5, EndBatch: 5}, ""},
		{"batch size zero", Criteria{BatchSize: 0, EndBatch: 1}, "BatchSize"},
		{"batch size nine", Criteria{BatchSize: 9, EndBatch: 1}, "BatchSize"},
		{"inverted", Criteria{BatchSize: 1, StartBatch: 2, EndBatch: 1}, "EndBatch"},
		{"overflow", Criteria{BatchSize: 8, StartBatch: 0, EndBatch: 2}, "EndBatch"},
		{"negative results", Criteria{BatchSize: 1, EndBatch: 1, MaxResults: -1}, "MaxResults"},
		{"negative threads", Criteria{BatchSize: 1, EndBatch: 1, ThreadCount: -2}, "ThreadCount"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.c.Validate()
			if c.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			e, ok := perr.As(err)
			if !ok || e.Code() != perr.ErrorCodeValidation {
				t.Fatalf("want validation error, got %v", err)
			}
			if e.Field() != c.field {
				t.Fatalf("field = %q, want %q (%v)", e.Field(), c.field, err)
			}
		})
	}
}

func TestCriteriaSeeds(t *testing.T) {
	c := Criteria{BatchSize: 1, StartBatch: 100000, EndBatch: 100250}
	if c.Batches() != 250 || c.Seeds() != 8750 {
		t.Fatalf("batches=%d seeds=%d", c.Batches(), c.Seeds())
	}
	if (Criteria{BatchSize: 0, EndBatch: 3}).Seeds() != 0 {
		t.Fatalf("invalid batch size should cover no seeds")
	}
	if (Criteria{BatchSize: 1, StartBatch: 3, EndBatch: 1}).Batches() != 0 {
		t.Fatalf("inverted range should have no batches")
	}
}

func TestStateAndOutcome(t *testing.T) {
	for _, s := range []State{StateCompleted, StateCancelled, StateFailed} {
		if !s.Terminal() {
			t.Fatalf("%v should be terminal", s)
		}
	}
	for _, s := range []State{StateIdle, StateRunning, StatePaused} {
		if s.Terminal() {
			t.Fatalf("%v should not be terminal", s)
		}
	}
	if State(42).String() != "unknown" || StatePaused.String() != "paused" {
		t.Fatalf("state names wrong")
	}
	o := Outcome{Results: []Result{{Seed: "A"}, {Seed: "B"}}}
	if got := o.Seeds(); len(got) != 2 || got[1] != "B" {
		t.Fatalf("Seeds = %v", got)
	}
	if EventResult.String() != "result" || EventKind(0).String() != "unknown" {
		t.Fatalf("event names wrong")
	}
}
