// Package hostname validates and canonicalizes the host component of a URL.
//
// A host is classified as an IPv4 literal, a bracketed IPv6 or IPvFuture
// literal, or a registered name. Registered names are converted to their
// IDNA 2008 A-label form (UTS 46 compatibility processing, non-transitional),
// falling back to IDNA 2003 processing for names the 2008 rules reject.
// Results are memoized in bounded LRU caches; see CacheConfigure.
package hostname

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"unicode/utf8"

	"github.com/golang/glog"
	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidHost reports a host string that is not a valid IP literal and
// contains characters RFC 3986 section 3.2.2 forbids in registered names.
var ErrInvalidHost = errors.New("invalid host")

// ErrIDNA reports a registered name rejected by both IDNA 2008 and the
// IDNA 2003 fallback.
var ErrIDNA = errors.New("IDNA encoding failed")

// Kind classifies a canonicalized host.
type Kind int

const (
	// Name is an IDNA-encoded registered name.
	Name Kind = iota
	// IPv4 is a dotted-quad address literal.
	IPv4
	// IPv6 is an RFC 5952 compressed address literal, stored without
	// brackets, zone identifier included when present.
	IPv6
	// IPvFuture is an RFC 3986 "v<hex>." literal, stored without brackets.
	IPvFuture
)

// Host is a validated, canonicalized host value.
type Host struct {
	// Value is the canonical encoded form, without surrounding brackets for
	// address literals.
	Value string
	Kind  Kind
}

// Subcomponent returns the host as it appears inside an authority: bracketed
// for IPv6 and IPvFuture literals, bare otherwise.
func (h Host) Subcomponent() string {
	if h.Kind == IPv6 || h.Kind == IPvFuture {
		return "[" + h.Value + "]"
	}
	return h.Value
}

// idnaEncodeProfile applies UTS 46 compatibility mapping with the strict
// checks of IDNA 2008 lookup.
var idnaEncodeProfile = idna.New(
	idna.MapForLookup(),
	idna.BidiRule(),
	idna.StrictDomainName(true),
)

var idnaDecodeProfile = idna.New(idna.MapForLookup())

// Encode validates host and returns its canonical form. Bracketed input is
// parsed as an IPv6 or IPvFuture literal; unbracketed input is classified as
// an IP address when it parses as one and as a registered name otherwise.
func Encode(host string) (Host, error) {
	return hostValidateCache.getOrCompute(host, encodeUncached)
}

func encodeUncached(host string) (Host, error) {
	if strings.HasPrefix(host, "[") {
		if !strings.HasSuffix(host, "]") {
			return Host{}, fmt.Errorf("%w: %q has an unmatched bracket", ErrInvalidHost, host)
		}
		return encodeLiteral(host[1 : len(host)-1])
	}
	if h, ok := parseAddr(host); ok {
		return h, nil
	}
	return encodeName(host)
}

// encodeLiteral canonicalizes the contents of a bracketed host.
func encodeLiteral(inner string) (Host, error) {
	if len(inner) >= 2 && (inner[0] == 'v' || inner[0] == 'V') {
		if err := checkIPvFuture(inner); err != nil {
			return Host{}, err
		}
		return Host{Value: inner, Kind: IPvFuture}, nil
	}
	h, ok := parseAddr(inner)
	if !ok || h.Kind != IPv6 {
		return Host{}, fmt.Errorf("%w: %q is not a valid IPv6 literal", ErrInvalidHost, inner)
	}
	return h, nil
}

// parseAddr parses an IP address, preserving any %zone suffix verbatim. The
// address part is canonicalized through the ipAddressCache.
func parseAddr(s string) (Host, bool) {
	raw, zone, hasZone := strings.Cut(s, "%")
	res, err := ipAddressCache.getOrCompute(raw, func(raw string) (ipResult, error) {
		addr, err := netip.ParseAddr(raw)
		if err != nil || addr.Zone() != "" {
			return ipResult{}, fmt.Errorf("not an IP address: %q", raw)
		}
		kind := IPv4
		if addr.Is6() {
			kind = IPv6
		}
		return ipResult{canonical: addr.String(), kind: kind}, nil
	})
	if err != nil {
		return Host{}, false
	}
	value := res.canonical
	if hasZone {
		if res.kind != IPv6 {
			return Host{}, false
		}
		value += "%" + zone
	}
	return Host{Value: value, Kind: res.kind}, true
}

type ipResult struct {
	canonical string
	kind      Kind
}

// checkIPvFuture validates "v" 1*HEXDIG "." 1*( unreserved / sub-delims / ":" ).
func checkIPvFuture(s string) error {
	rest := s[1:]
	dot := strings.IndexByte(rest, '.')
	if dot < 1 {
		return fmt.Errorf("%w: %q is not a valid IPvFuture literal", ErrInvalidHost, s)
	}
	for i := 0; i < dot; i++ {
		if !isHexDigit(rest[i]) {
			return fmt.Errorf("%w: %q is not a valid IPvFuture literal", ErrInvalidHost, s)
		}
	}
	tail := rest[dot+1:]
	if tail == "" {
		return fmt.Errorf("%w: %q is not a valid IPvFuture literal", ErrInvalidHost, s)
	}
	for i := 0; i < len(tail); i++ {
		if !isFutureChar(tail[i]) {
			return fmt.Errorf("%w: %q is not a valid IPvFuture literal", ErrInvalidHost, s)
		}
	}
	return nil
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func isFutureChar(c byte) bool {
	return isRegNameChar(c) || c == ':'
}

// isRegNameChar reports whether c may appear in an ASCII registered name:
// unreserved, sub-delims, or the "%" of a percent-escape.
func isRegNameChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~!$&'()*+,;=%", c) >= 0
}

// encodeName canonicalizes a registered name. ASCII names are lowercased and
// checked against the RFC 3986 reg-name alphabet; other names go through
// IDNA.
func encodeName(host string) (Host, error) {
	host = strings.ToLower(host)
	if isASCII(host) {
		for i := 0; i < len(host); i++ {
			if !isRegNameChar(host[i]) {
				if strings.ContainsAny(host, "@:") {
					return Host{}, fmt.Errorf(
						"%w: %q contains %q; it looks like an authority string, pass the user, host and port separately",
						ErrInvalidHost, host, host[i])
				}
				return Host{}, fmt.Errorf("%w: %q contains %q", ErrInvalidHost, host, host[i])
			}
		}
		return Host{Value: host, Kind: Name}, nil
	}
	encoded, err := idnaEncodeCache.getOrCompute(host, idnaEncode)
	if err != nil {
		return Host{}, err
	}
	return Host{Value: encoded, Kind: Name}, nil
}

func idnaEncode(host string) (string, error) {
	encoded, err := idnaEncodeProfile.ToASCII(host)
	if err == nil {
		return strings.ToLower(encoded), nil
	}
	glog.V(2).Infof("IDNA 2008 rejected %q (%v); retrying with 2003 processing", host, err)
	fallback, ferr := idna.Punycode.ToASCII(strings.ToLower(norm.NFC.String(host)))
	if ferr != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrIDNA, host, err)
	}
	return fallback, nil
}

// Decode returns the human-readable form of a canonical host. IP literals
// and zoned addresses are returned as-is; registered names are converted
// from their A-label form.
func Decode(raw string) string {
	if raw == "" || strings.ContainsAny(raw, ":%[") {
		// Address literals and zone identifiers never carry IDNA labels.
		return raw
	}
	decoded, err := idnaDecodeCache.getOrCompute(raw, idnaDecode)
	if err != nil {
		return raw
	}
	return decoded
}

func idnaDecode(raw string) (string, error) {
	decoded, err := idnaDecodeProfile.ToUnicode(raw)
	if err == nil {
		return decoded, nil
	}
	glog.V(2).Infof("IDNA 2008 could not decode %q (%v); retrying with 2003 processing", raw, err)
	return idna.Punycode.ToUnicode(raw)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
