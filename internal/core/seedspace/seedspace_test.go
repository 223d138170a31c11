package seedspace

import (
	"math"
	"testing"

	perr "seedsearch/internal/platform/errors"
)

func TestMaxBatches_LiteralTable(t *testing.T) {
	want := map[int]uint64{
		1: 64339296875,
		2: 1838265625,
		3: 52521875,
		4: 1500625,
		5: 42875,
		6: 1225,
		7: 35,
		8: 1,
	}
	for b, w := range want {
		got, err := MaxBatches(b)
		if err != nil {
			t.Fatalf("MaxBatches(%d) err: %v", b, err)
		}
		if got != w {
			t.Fatalf("MaxBatches(%d) = %d, want %d", b, got, w)
		}
		if f := uint64(math.Pow(35, float64(8-b))); f != got {
			t.Fatalf("MaxBatches(%d) = %d, 35^(8-b) = %d", b, got, f)
		}
	}
}

func TestMaxBatches_RejectsOutOfRange(t *testing.T) {
	for _, b := range []int{-1, 0, 9, 100} {
		_, err := MaxBatches(b)
		e, ok := perr.As(err)
		if !ok || e.Code() != perr.ErrorCodeInvalidArgument || e.Field() != "BatchSize" {
			t.Fatalf("MaxBatches(%d) err = %v", b, err)
		}
		if _, err := SeedsPerBatch(b); err == nil {
			t.Fatalf("SeedsPerBatch(%d) should fail", b)
		}
	}
}

func TestSeedsPerBatchTimesBatchesIsSeedCount(t *testing.T) {
	for b := MinBatchSize; b <= MaxBatchSize; b++ {
		mb, _ := MaxBatches(b)
		spb, _ := SeedsPerBatch(b)
		if mb*spb != SeedCount() {
			t.Fatalf("b=%d: %d*%d != %d", b, mb, spb, SeedCount())
		}
	}
}

func TestAlphabet(t *testing.T) {
	if Base != 35 {
		t.Fatalf("Base = %d", Base)
	}
	seen := map[rune]bool{}
	for _, r := range Alphabet {
		if seen[r] || r == '0' {
			t.Fatalf("bad symbol %q", r)
		}
		seen[r] = true
	}
}

func TestSeedAndIndexRoundTrip(t *testing.T) {
	cases := []struct {
		b      int
		batch  uint64
		offset uint64
		want   string
	}{
		{1, 0, 0, "11111111"},
		{1, 0, 34, "1111111Z"},
		{1, 1, 0, "11111121"},
		{8, 0, SeedCount() - 1, "ZZZZZZZZ"},
		{2, 3, 36, "11111422"},
	}
	for _, c := range cases {
		s, err := Seed(c.b, c.batch, c.offset)
		if err != nil {
			t.Fatalf("Seed(%d,%d,%d) err: %v", c.b, c.batch, c.offset, err)
		}
		if s != c.want {
			t.Fatalf("Seed(%d,%d,%d) = %q, want %q", c.b, c.batch, c.offset, s, c.want)
		}
		batch, off, err := Locate(c.b, s)
		if err != nil || batch != c.batch || off != c.offset {
			t.Fatalf("Locate(%d,%q) = %d,%d,%v", c.b, s, batch, off, err)
		}
	}
}

func TestSeed_RejectsOutOfRange(t *testing.T) {
	if _, err := Seed(1, 64339296875, 0); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("batch overflow not rejected: %v", err)
	}
	if _, err := Seed(1, 0, 35); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("offset overflow not rejected: %v", err)
	}
	if _, err := Seed(0, 0, 0); err == nil {
		t.Fatalf("batch size 0 not rejected")
	}
}

func TestIndex(t *testing.T) {
	if idx, err := Index("1111111a"); err != nil || idx != 9 {
		t.Fatalf("Index lowercase = %d, %v", idx, err)
	}
	for _, bad := range []string{"", "1111111", "111111111", "11111110", "1111111!"} {
		if _, err := Index(bad); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("Index(%q) err = %v", bad, err)
		}
	}
}

func TestBatchEach_MatchesSeed(t *testing.T) {
	for _, c := range []struct {
		b     int
		batch uint64
	}{{1, 0}, {1, 12345}, {2, 7}, {3, 52521874}} {
		bt, err := NewBatch(c.b, c.batch)
		if err != nil {
			t.Fatalf("NewBatch: %v", err)
		}
		var prev string
		n := bt.Each(func(off uint64, s string) bool {
			want, _ := Seed(c.b, c.batch, off)
			if s != want {
				t.Fatalf("b=%d batch=%d off=%d: %q want %q", c.b, c.batch, off, s, want)
			}
			if prev != "" && s <= prev {
				t.Fatalf("not ascending: %q after %q", s, prev)
			}
			prev = s
			return true
		})
		if n != bt.Len() {
			t.Fatalf("visited %d, want %d", n, bt.Len())
		}
	}
}

func TestBatchEach_StopsEarly(t *testing.T) {
	bt, _ := NewBatch(1, 0)
	n := bt.Each(func(off uint64, _ string) bool { return off < 4 })
	if n != 5 {
		t.Fatalf("visited %d, want 5", n)
	}
	if _, err := NewBatch(8, 1); err == nil {
		t.Fatalf("batch 1 of size 8 should not exist")
	}
}
