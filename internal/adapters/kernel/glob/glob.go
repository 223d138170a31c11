// Package glob is a stand-in evaluation kernel for local runs. It reads a
// clause's "seed" key as a path.Match pattern (or a list of patterns) over
// the seed and knows nothing about game rules.
//
// Must clauses all have to match, MustNot clauses must not match and each
// matching Should clause adds its "score" (default 1). Clauses without a
// "seed" key are ignored
package glob

import (
	"fmt"
	"path"
	"strings"
	"sync/atomic"

	perr "seedsearch/internal/platform/errors"
	fdom "seedsearch/internal/services/filters/domain"
	sdom "seedsearch/internal/services/search/domain"
)

// Clause keys understood by the kernel
const (
	KeySeed  = "seed"
	KeyScore = "score"
)

type rule struct {
	patterns []string
	score    int
}

// Compiled is a filter's clauses in evaluable form
type Compiled struct {
	must    []rule
	should  []rule
	mustNot []rule
}

// Compile checks every pattern and score in f
func Compile(f *fdom.Filter) (*Compiled, error) {
	if f == nil {
		return nil, perr.InvalidArgf("filter is required")
	}
	var (
		c   Compiled
		err error
	)
	if c.must, err = compileAll("must", f.Must); err != nil {
		return nil, err
	}
	if c.should, err = compileAll("should", f.Should); err != nil {
		return nil, err
	}
	if c.mustNot, err = compileAll("mustNot", f.MustNot); err != nil {
		return nil, err
	}
	return &c, nil
}

func compileAll(group string, cs []fdom.Clause) ([]rule, error) {
	out := make([]rule, 0, len(cs))
	for i, cl := range cs {
		r, ok, err := compileOne(cl)
		if err != nil {
			return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "%s[%d]", group, i), fmt.Sprintf("%s[%d]", group, i))
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func compileOne(cl fdom.Clause) (rule, bool, error) {
	raw, ok := cl[KeySeed]
	if !ok {
		return rule{}, false, nil
	}
	r := rule{score: 1}
	switch v := raw.(type) {
	case string:
		r.patterns = []string{strings.ToUpper(v)}
	case []any:
		for _, x := range v {
			s, ok := x.(string)
			if !ok {
				return rule{}, false, fmt.Errorf("seed list entries must be strings, got %T", x)
			}
			r.patterns = append(r.patterns, strings.ToUpper(s))
		}
	case []string:
		for _, s := range v {
			r.patterns = append(r.patterns, strings.ToUpper(s))
		}
	default:
		return rule{}, false, fmt.Errorf("seed must be a pattern or list of patterns, got %T", raw)
	}
	for _, p := range r.patterns {
		if _, err := path.Match(p, ""); err != nil {
			return rule{}, false, fmt.Errorf("pattern %q: %w", p, err)
		}
	}
	if s, ok := cl[KeyScore]; ok {
		n, err := toInt(s)
		if err != nil {
			return rule{}, false, err
		}
		r.score = n
	}
	return r, true, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("score %v is not a whole number", n)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("score must be a number, got %T", v)
}

func (r rule) match(seed string) bool {
	for _, p := range r.patterns {
		if ok, _ := path.Match(p, seed); ok {
			return true
		}
	}
	return false
}

// Evaluate scores one seed
func (c *Compiled) Evaluate(seed string) sdom.Evaluation {
	seed = strings.ToUpper(seed)
	for _, r := range c.must {
		if !r.match(seed) {
			return sdom.Evaluation{}
		}
	}
	for _, r := range c.mustNot {
		if r.match(seed) {
			return sdom.Evaluation{}
		}
	}
	ev := sdom.Evaluation{IsMatch: true, Tallies: make([]int, len(c.should))}
	for i, r := range c.should {
		if r.match(seed) {
			ev.Tallies[i] = 1
			ev.TotalScore += r.score
		}
	}
	return ev
}

type compiledFor struct {
	f *fdom.Filter
	c *Compiled
}

// Kernel implements search/domain.Kernel. It remembers the last filter it
// compiled, so one search pays for compilation once
type Kernel struct {
	last atomic.Pointer[compiledFor]
}

var _ sdom.Kernel = (*Kernel)(nil)

// New returns a Kernel
func New() *Kernel { return &Kernel{} }

// Evaluate implements search/domain.Kernel
func (k *Kernel) Evaluate(seed string, f *fdom.Filter) (sdom.Evaluation, error) {
	if cf := k.last.Load(); cf != nil && cf.f == f {
		return cf.c.Evaluate(seed), nil
	}
	c, err := Compile(f)
	if err != nil {
		return sdom.Evaluation{}, err
	}
	k.last.Store(&compiledFor{f: f, c: c})
	return c.Evaluate(seed), nil
}
