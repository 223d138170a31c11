package domain

import (
	"testing"

	perr "seedsearch/internal/platform/errors"
	fdom "seedsearch/internal/services/filters/domain"
)

func TestDefaultPhases_Table(t *testing.T) {
	want := []struct {
		name       string
		start, end uint64
		max        int
		seeds      uint64
	}{
		{"1", 0, 1, 20, 35},
		{"2a", 0, 1000, 1, 35_000},
		{"2b", 0, 100_000, 1, 3_500_000},
		{"2c", 100_000, 100_250, 1, 8_750},
		{"2d", 0, 1_000_000, 1, 35_000_000},
	}
	got := DefaultPhases()
	if len(got) != len(want) {
		t.Fatalf("phases = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		p := got[i]
		if p.Name != w.name || p.StartBatch != w.start || p.EndBatch != w.end || p.MaxResults != w.max {
			t.Fatalf("phase %d = %+v, want %+v", i, p, w)
		}
		if s := p.Criteria(DefaultBatchSize, nil).Seeds(); s != w.seeds {
			t.Fatalf("phase %s covers %d seeds, want %d", p.Name, s, w.seeds)
		}
		if p.Probe != (i == 0) {
			t.Fatalf("only phase 1 is the probe")
		}
	}
	if err := CheckPhases(got, DefaultBatchSize); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}
}

func TestPhaseCriteria_CarriesDeckAndStake(t *testing.T) {
	f := &fdom.Filter{Deck: "Red", Stake: "Gold"}
	c := DefaultPhases()[2].Criteria(1, f)
	if c.Deck != "Red" || c.Stake != "Gold" || c.EndBatch != 100_000 || c.MaxResults != 1 {
		t.Fatalf("criteria = %+v", c)
	}
}

func TestCheckPhases_Rejects(t *testing.T) {
	cases := map[string][]Phase{
		"empty":     nil,
		"unnamed":   {{EndBatch: 1}},
		"duplicate": {{Name: "x", EndBatch: 1}, {Name: "x", EndBatch: 2}},
		"inverted":  {{Name: "x", StartBatch: 2, EndBatch: 1}},
	}
	for name, phases := range cases {
		if err := CheckPhases(phases, 1); !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("%s: want validation error, got %v", name, err)
		}
	}
	// the default table does not fit a batch size of 7
	if err := CheckPhases(DefaultPhases(), 7); err == nil {
		t.Fatalf("expected overflow for batch size 7")
	}
}

func TestNames(t *testing.T) {
	if OutcomeNoSeeds.String() != "no_seeds" || Outcome(0).String() != "unknown" {
		t.Fatalf("outcome names")
	}
	if WarningTooRestrictive.String() != "too_restrictive" || WarningNone.String() != "" {
		t.Fatalf("warning names")
	}
}
