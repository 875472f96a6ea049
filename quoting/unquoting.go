package quoting

import (
	"strings"
	"unicode/utf8"
)

// UnquoterOptions configures an Unquoter.
type UnquoterOptions struct {
	// Unsafe lists characters that must not appear bare in the output.
	// Decoded escapes for them are re-encoded, and literal occurrences in the
	// input are percent-encoded.
	Unsafe string
	// Ignore lists characters whose percent-escapes are retained verbatim
	// instead of being decoded.
	Ignore string
	// QS selects query-string mode: "+" decodes to space and the query
	// syntax characters "+=&;" stay encoded.
	QS bool
}

// An Unquoter converts a percent-encoded string back to its Unicode form.
// An Unquoter is immutable and safe for concurrent use.
type Unquoter struct {
	unsafe string
	ignore string
	qs     bool
}

// NewUnquoter returns an Unquoter for the given profile.
func NewUnquoter(opts UnquoterOptions) *Unquoter {
	return &Unquoter{unsafe: opts.Unsafe, ignore: opts.Ignore, qs: opts.QS}
}

// Unquote decodes the "%HH" escapes in s. Runs of consecutive escapes are
// decoded together as a UTF-8 byte sequence; a run that is not valid UTF-8 is
// preserved verbatim. A trailing "%" or "%X" with no complete hex tail is
// also preserved verbatim.
func (u *Unquoter) Unquote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		if s[i] == '%' && i+2 < len(s) && isHexDigit(s[i+1]) && isHexDigit(s[i+2]) {
			i = u.decodeRun(&b, s, i)
			continue
		}
		c := s[i]
		switch {
		case c == '+' && u.qs && !strings.ContainsRune(u.unsafe, '+'):
			b.WriteByte(' ')
			i++
		case c < utf8.RuneSelf && strings.ContainsRune(u.unsafe, rune(c)):
			writePercentByte(&b, c)
			i++
		case c < utf8.RuneSelf:
			b.WriteByte(c)
			i++
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			if r != utf8.RuneError && strings.ContainsRune(u.unsafe, r) {
				PercentEncodeRune(&b, r)
			} else {
				b.WriteString(s[i : i+size])
			}
			i += size
		}
	}
	return b.String()
}

// decodeRun consumes the maximal run of "%HH" triplets starting at i and
// writes its decoded form. It returns the index of the first byte after the
// run.
func (u *Unquoter) decodeRun(b *strings.Builder, s string, i int) int {
	start := i
	var octets []byte
	for i+2 < len(s) && s[i] == '%' && isHexDigit(s[i+1]) && isHexDigit(s[i+2]) {
		octets = append(octets, hexValue(s[i+1])<<4|hexValue(s[i+2]))
		i += 3
	}
	if !utf8.Valid(octets) {
		// Keep the original escapes, hex digit case included.
		b.WriteString(s[start:i])
		return i
	}
	off := 0
	for off < len(octets) {
		r, size := utf8.DecodeRune(octets[off:])
		switch {
		case strings.ContainsRune(u.ignore, r):
			// The escape survives decoding; emit the original triplets.
			b.WriteString(s[start+off*3 : start+(off+size)*3])
		case strings.ContainsRune(u.unsafe, r):
			PercentEncodeRune(b, r)
		case u.qs && (r == '+' || r == '=' || r == '&' || r == ';'):
			PercentEncodeRune(b, r)
		default:
			b.WriteRune(r)
		}
		off += size
	}
	return i
}

// PercentEncodeRune writes every UTF-8 byte of r as an uppercase "%HH"
// escape.
func PercentEncodeRune(b *strings.Builder, r rune) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	for j := 0; j < n; j++ {
		writePercentByte(b, buf[j])
	}
}
