// Package normalize canonicalizes filter names for display, file naming and
// comparison.
// Pipeline order
// 1 drop control characters and invalid UTF-8
// 2 Unicode compatibility decomposition
// 3 strip combining and format marks
// 4 width fold fullwidth to ASCII
// 5 recompose
// 6 collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pools of fresh transformer chains; transformers carry state
var (
	namePool = sync.Pool{
		New: func() any {
			return transform.Chain(
				norm.NFKD,
				runes.Remove(runes.In(unicode.Mn)),
				runes.Remove(runes.In(unicode.Cf)),
				width.Fold,
				norm.NFC,
			)
		},
	}
	foldPool = sync.Pool{New: func() any { return cases.Fold() }}
)

func apply(p *sync.Pool, s string) string {
	tr := p.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	p.Put(tr)
	if err != nil {
		return s
	}
	return out
}

// Name returns the display form of a filter name: accents and fullwidth
// forms folded, case kept, whitespace collapsed
func Name(s string) string {
	s = Sanitize(s)
	if s == "" {
		return ""
	}
	return collapseSpaces(apply(&namePool, s))
}

// Key returns a case-insensitive comparison key for a filter name
func Key(s string) string {
	n := Name(s)
	if n == "" {
		return ""
	}
	return apply(&foldPool, n)
}

// Stem maps a filter name to a file name stem of letters, digits, '-' and
// '_'. Anything else becomes '_'. It returns "" when nothing survives
func Stem(s string) string {
	n := Name(s)
	if n == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(n))
	for _, r := range n {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// collapseSpaces converts whitespace runs to a single ASCII space and trims
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
