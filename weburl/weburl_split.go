package weburl

import (
	"strconv"
	"strings"

	"github.com/google/urlkit/hostname"
	"github.com/google/urlkit/quoting"
)

// splitResult holds the five reference components of RFC 3986 section 3, as
// cut out of the input string with no decoding applied.
type splitResult struct {
	scheme       string
	authority    string
	hasAuthority bool
	path         string
	query        string
	fragment     string
}

// split cuts s into the five components. It never fails: anything that does
// not parse as scheme or authority is left in the path.
func split(s string) splitResult {
	var r splitResult
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s, r.fragment = s[:i], s[i+1:]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s, r.query = s[:i], s[i+1:]
	}
	if scheme, rest, ok := cutScheme(s); ok {
		r.scheme, s = scheme, rest
	}
	if strings.HasPrefix(s, "//") {
		s = s[2:]
		if i := strings.IndexByte(s, '/'); i >= 0 {
			r.authority, s = s[:i], s[i:]
		} else {
			r.authority, s = s, ""
		}
		r.hasAuthority = true
	}
	r.path = s
	return r
}

// cutScheme splits a leading "scheme:" off s. The scheme must match
// ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func cutScheme(s string) (scheme, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return "", s, false
			}
		case c == ':':
			if i == 0 {
				return "", s, false
			}
			return strings.ToLower(s[:i]), s[i+1:], true
		default:
			return "", s, false
		}
	}
	return "", s, false
}

// authorityParts is an authority cut into its subcomponents, still encoded.
type authorityParts struct {
	user        string
	password    string
	hasPassword bool
	host        string
	port        string
}

// splitAuthority cuts an authority at the rightmost "@" and at the rightmost
// ":" that is not inside an IP-literal bracket pair.
func splitAuthority(auth string) authorityParts {
	var p authorityParts
	hostport := auth
	if i := strings.LastIndexByte(auth, '@'); i >= 0 {
		userinfo := auth[:i]
		hostport = auth[i+1:]
		p.user, p.password, p.hasPassword = strings.Cut(userinfo, ":")
	}
	bracket := strings.LastIndexByte(hostport, ']')
	colon := strings.LastIndexByte(hostport, ':')
	if colon > bracket {
		p.host, p.port = hostport[:colon], hostport[colon+1:]
	} else {
		p.host = hostport
	}
	return p
}

// parsePort converts a port subcomponent to an integer. An empty
// subcomponent means the port is absent.
func parsePort(s string) (int, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	port, err := strconv.Atoi(s)
	if err != nil || port < 0 {
		return 0, false, errorf(InvalidArgument, "port", "port %q cannot be converted to integer", s)
	}
	if port > 65535 {
		return 0, false, errorf(InvalidArgument, "port", "port must be between 0 and 65535, got %d", port)
	}
	return port, true, nil
}

// parseMode selects how much decoding work the constructor performs.
type parseMode int

const (
	// modeRequote canonicalizes every component, repairing malformed
	// percent sequences in place.
	modeRequote parseMode = iota
	// modeEncoded trusts the input's encoding; only structural validation
	// is performed.
	modeEncoded
	// modeStrict canonicalizes like modeRequote but reports malformed
	// percent sequences instead of repairing them.
	modeStrict
)

// Parse parses a URL string, percent-encoding each component into its
// canonical form.
func Parse(s string) (*URL, error) {
	return parse(s, modeRequote)
}

// ParseEncoded parses a URL string that is already percent-encoded. The
// structural validation of Parse still applies, but no requoting is
// performed, so the resulting URL is only as canonical as its input.
func ParseEncoded(s string) (*URL, error) {
	return parse(s, modeEncoded)
}

// ParseStrict is like Parse but fails with a MalformedPercent error on a
// "%" with no valid hex tail instead of repairing it to "%25".
func ParseStrict(s string) (*URL, error) {
	return parse(s, modeStrict)
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *URL {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func parse(s string, mode parseMode) (*URL, error) {
	r := split(s)
	u := &URL{scheme: r.scheme, query: r.query, fragment: r.fragment}
	if r.hasAuthority {
		if r.authority == "" {
			u.emptyAuth = true
		} else if err := u.setAuthority(r.authority, mode); err != nil {
			return nil, err
		}
	}
	u.path = r.path
	if mode != modeEncoded {
		var err error
		if u.path, err = quoteComponent(pathQuoter, "path", u.path, mode); err != nil {
			return nil, err
		}
		if u.host.Value != "" {
			u.path = normalizePath(u.path)
		}
		if err := validateAbsPath(u.host.Value, u.path); err != nil {
			return nil, err
		}
		if u.query, err = quoteComponent(queryQuoter, "query", u.query, mode); err != nil {
			return nil, err
		}
		if u.fragment, err = quoteComponent(fragmentQuoter, "fragment", u.fragment, mode); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// quoteComponent canonicalizes one component, honoring strict mode.
func quoteComponent(q *quoting.Quoter, component, s string, mode parseMode) (string, error) {
	if mode != modeStrict {
		return q.Quote(s), nil
	}
	out, err := q.QuoteStrict(s)
	if err != nil {
		return "", wrapQuotingError(component, err)
	}
	return out, nil
}

// setAuthority fills the authority fields of u from a non-empty authority
// string.
func (u *URL) setAuthority(auth string, mode parseMode) error {
	p := splitAuthority(auth)
	if p.host == "" {
		return errorf(InvalidArgument, "host", "host is required when an authority is present: %q", auth)
	}
	if mode == modeEncoded {
		u.host = structuralHost(p.host)
		u.user = p.user
		u.password, u.hasPassword = p.password, p.hasPassword
	} else {
		h, err := hostname.Encode(p.host)
		if err != nil {
			return wrapHostError(err)
		}
		u.host = h
		if u.user, err = quoteComponent(quoter, "user", p.user, mode); err != nil {
			return err
		}
		if p.hasPassword {
			if u.password, err = quoteComponent(quoter, "password", p.password, mode); err != nil {
				return err
			}
			u.hasPassword = true
		}
	}
	port, ok, err := parsePort(p.port)
	if err != nil {
		return err
	}
	u.port, u.hasPort = port, ok
	return nil
}

// structuralHost classifies a pre-encoded host without canonicalizing it.
func structuralHost(h string) hostname.Host {
	if len(h) >= 2 && h[0] == '[' && h[len(h)-1] == ']' {
		inner := h[1 : len(h)-1]
		kind := hostname.IPv6
		if len(inner) > 0 && (inner[0] == 'v' || inner[0] == 'V') {
			kind = hostname.IPvFuture
		}
		return hostname.Host{Value: inner, Kind: kind}
	}
	return hostname.Host{Value: h, Kind: hostname.Name}
}

// validateAbsPath enforces the leading slash rule for URLs with an
// authority.
func validateAbsPath(host, path string) error {
	if host != "" && path != "" && path[0] != '/' {
		return errorf(InvalidArgument, "path", "path in a URL with authority should start with a slash, got %q", path)
	}
	return nil
}
