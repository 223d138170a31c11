package normalize

import (
	"strings"
	"unicode/utf8"
)

// Sanitize removes runes that have no place in a single-line name:
// - invalid UTF-8 bytes
// - NUL and other ASCII controls; tab, CR and LF become spaces
// - DEL (0x7F)
// - C1 controls U+0080..U+009F
// Fast path returns s unchanged when no cleaning is needed
func Sanitize(s string) string {
	n := len(s)
	i := 0
	for i < n {
		c := s[i]
		if c < 0x20 || c == 0x7F {
			break
		}
		if c < 0x80 {
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || (r >= 0x80 && r <= 0x9F) {
			break
		}
		i += size
	}
	if i == n {
		return s
	}

	var b strings.Builder
	b.Grow(n)
	b.WriteString(s[:i])
	for i < n {
		c := s[i]
		switch {
		case c == '\t' || c == '\n' || c == '\r':
			b.WriteByte(' ')
			i++
			continue
		case c < 0x20 || c == 0x7F:
			i++
			continue
		case c < 0x80:
			b.WriteByte(c)
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			i++
		case r >= 0x80 && r <= 0x9F:
			i += size
		default:
			b.WriteString(s[i : i+size])
			i += size
		}
	}
	return b.String()
}
