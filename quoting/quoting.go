// Package quoting implements percent-encoding and percent-decoding of URL
// components as specified in RFC 3986 section 2.
//
// A Quoter converts an arbitrary Unicode string into a canonical
// percent-encoded ASCII string. Input that is already partially encoded is
// requoted rather than double-encoded: a valid "%HH" triplet is normalized to
// uppercase hex (or unescaped, when the octet is safe), and a stray "%" with
// no valid hex tail is repaired to "%25". An Unquoter performs the reverse
// transformation back to a Unicode string.
package quoting

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrMalformedPercent reports a "%" that is not followed by two hex digits.
// It is returned only by QuoteStrict; Quote repairs such sequences in place.
var ErrMalformedPercent = errors.New("malformed percent sequence")

// Options configures a Quoter.
type Options struct {
	// Safe lists additional ASCII characters to leave unescaped beyond the
	// base table for the mode.
	Safe string
	// Protected lists characters that must remain percent-encoded even when
	// they would otherwise be safe. A literal protected character in the
	// input passes through unescaped; only existing escapes are retained.
	Protected string
	// QS selects query-string mode: space encodes as "+" and the query
	// syntax characters "+?=;&" drop out of the base table.
	QS bool
}

// A Quoter percent-encodes strings according to a fixed profile. A Quoter is
// immutable and safe for concurrent use.
type Quoter struct {
	safe      asciiSet // characters emitted verbatim
	protected asciiSet // octets whose escapes are never unescaped
	qs        bool
}

// NewQuoter returns a Quoter for the given profile. It fails if Safe or
// Protected contains a non-ASCII character.
func NewQuoter(opts Options) (*Quoter, error) {
	if err := checkASCII("safe", opts.Safe); err != nil {
		return nil, err
	}
	if err := checkASCII("protected", opts.Protected); err != nil {
		return nil, err
	}
	base := allowedNotQS
	if opts.QS {
		base = allowedQS
	}
	q := &Quoter{qs: opts.QS}
	q.safe = base
	q.safe.addString(opts.Safe)
	// Literal protected characters stay unescaped; protection applies to
	// octets that arrive already percent-encoded.
	q.safe.addString(opts.Protected)
	q.protected.addString(opts.Protected)
	return q, nil
}

// MustQuoter is like NewQuoter but panics on error. It is intended for
// package-level profile construction.
func MustQuoter(opts Options) *Quoter {
	q, err := NewQuoter(opts)
	if err != nil {
		panic(err)
	}
	return q
}

func checkASCII(name, chars string) error {
	for _, r := range chars {
		if r >= utf8.RuneSelf {
			return fmt.Errorf("%s set contains non-ASCII character %q", name, r)
		}
	}
	return nil
}

// Quote returns the canonical percent-encoded form of s. Malformed percent
// sequences are repaired by escaping the stray "%" as "%25". If s is already
// in canonical form the original string is returned.
func (q *Quoter) Quote(s string) string {
	out, _ := q.quote(s, false)
	return out
}

// QuoteStrict is like Quote but returns ErrMalformedPercent instead of
// repairing a "%" with no valid hex tail.
func (q *Quoter) QuoteStrict(s string) (string, error) {
	return q.quote(s, true)
}

func (q *Quoter) quote(s string, strict bool) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '%':
			// Percent sub-machine. A full "%HH" is requoted; anything
			// shorter escapes the "%" itself and the tail characters are
			// reprocessed from the top of the loop.
			if i+2 < len(s) && isHexDigit(s[i+1]) && isHexDigit(s[i+2]) {
				q.requoteTriplet(&b, s[i+1], s[i+2])
				i += 3
				continue
			}
			if strict {
				end := i + 3
				if end > len(s) {
					end = len(s)
				}
				return "", fmt.Errorf("%w at offset %d: %q", ErrMalformedPercent, i, s[i:end])
			}
			b.WriteString("%25")
			i++
		case q.qs && c == ' ':
			b.WriteByte('+')
			i++
		case q.safe.contains(c):
			b.WriteByte(c)
			i++
		case c < utf8.RuneSelf:
			writePercentByte(&b, c)
			i++
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				// Not valid UTF-8; encode the raw byte.
				writePercentByte(&b, c)
				i++
				continue
			}
			var buf [utf8.UTFMax]byte
			n := utf8.EncodeRune(buf[:], r)
			for j := 0; j < n; j++ {
				writePercentByte(&b, buf[j])
			}
			i += size
		}
	}
	if out := b.String(); out != s {
		return out, nil
	}
	return s, nil
}

// requoteTriplet emits the canonical form of an existing "%HH" escape:
// unescaped when the octet is safe and not protected, uppercase "%HH"
// otherwise.
func (q *Quoter) requoteTriplet(b *strings.Builder, hi, lo byte) {
	octet := hexValue(hi)<<4 | hexValue(lo)
	if !q.protected.contains(octet) && q.safe.contains(octet) {
		b.WriteByte(octet)
		return
	}
	writePercentByte(b, octet)
}

func writePercentByte(b *strings.Builder, c byte) {
	b.WriteByte('%')
	b.WriteByte(upperHexDigits[c>>4])
	b.WriteByte(upperHexDigits[c&0xF])
}
