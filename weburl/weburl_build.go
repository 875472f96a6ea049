package weburl

import (
	"strings"

	"github.com/google/urlkit/hostname"
)

// Components names the parts a URL is built from. Zero values mean "absent".
// Password is a pointer so that an empty-but-present password can be
// expressed. Authority is mutually exclusive with User, Password, Host and
// Port; Query is mutually exclusive with QueryString.
type Components struct {
	Scheme      string
	Authority   string
	User        string
	Password    *string
	Host        string
	Port        int
	Path        string
	Query       interface{}
	QueryString string
	Fragment    string
	// Encoded skips percent-encoding of the components; structural
	// validation still applies.
	Encoded bool
}

// Build constructs a URL from components.
func Build(c Components) (*URL, error) {
	if c.Authority != "" && (c.User != "" || c.Password != nil || c.Host != "" || c.Port != 0) {
		return nil, errorf(InvalidArgument, "authority",
			`cannot mix "Authority" with "User", "Password", "Host" or "Port"`)
	}
	if c.Query != nil && c.QueryString != "" {
		return nil, &Error{Kind: AmbiguousQuery, Component: "query",
			msg: `only one of "Query" or "QueryString" should be passed`}
	}
	if c.Port != 0 && c.Host == "" && c.Authority == "" {
		return nil, errorf(InvalidArgument, "port", `cannot build a URL with "Port" but without "Host"`)
	}
	if (c.User != "" || c.Password != nil) && c.Host == "" && c.Authority == "" {
		return nil, errorf(InvalidArgument, "user", `cannot build a URL with "User" or "Password" but without "Host"`)
	}

	u := &URL{}
	mode := modeRequote
	if c.Encoded {
		mode = modeEncoded
	}
	if c.Scheme != "" {
		if !isValidScheme(c.Scheme) {
			return nil, errorf(InvalidArgument, "scheme", "invalid scheme %q", c.Scheme)
		}
		u.scheme = strings.ToLower(c.Scheme)
	}
	switch {
	case c.Authority != "":
		if err := u.setAuthority(c.Authority, mode); err != nil {
			return nil, err
		}
	case c.Host != "":
		if c.Encoded {
			u.host = structuralHost(c.Host)
			u.user = c.User
			if c.Password != nil {
				u.password, u.hasPassword = *c.Password, true
			}
		} else {
			h, err := hostname.Encode(c.Host)
			if err != nil {
				return nil, wrapHostError(err)
			}
			u.host = h
			u.user = quoter.Quote(c.User)
			if c.Password != nil {
				u.password, u.hasPassword = quoter.Quote(*c.Password), true
			}
		}
		if c.Port != 0 {
			if c.Port < 0 || c.Port > 65535 {
				return nil, errorf(InvalidArgument, "port", "port must be between 0 and 65535, got %d", c.Port)
			}
			u.port, u.hasPort = c.Port, true
		}
	}

	u.path = c.Path
	u.query = c.QueryString
	u.fragment = c.Fragment
	if !c.Encoded {
		u.path = pathQuoter.Quote(u.path)
		if u.host.Value != "" {
			u.path = normalizePath(u.path)
		}
		u.query = queryQuoter.Quote(u.query)
		u.fragment = fragmentQuoter.Quote(u.fragment)
	}
	if err := validateAbsPath(u.host.Value, u.path); err != nil {
		return nil, err
	}
	if c.Query != nil {
		return u.WithQuery(c.Query)
	}
	return u, nil
}

// isValidScheme reports whether s matches ALPHA *( ALPHA / DIGIT / "+" /
// "-" / "." ).
func isValidScheme(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// schemesWithoutHost lists schemes that a relative URL may adopt via
// WithScheme: their URLs carry no authority.
var schemesWithoutHost = map[string]bool{
	"about":  true,
	"data":   true,
	"mailto": true,
	"news":   true,
	"tel":    true,
	"urn":    true,
}

// WithScheme returns a new URL with the scheme replaced. Replacing the
// scheme of a URL without a host is only allowed for schemes that do not
// require one, such as "mailto" or "data".
func (u *URL) WithScheme(scheme string) (*URL, error) {
	if !isValidScheme(scheme) {
		return nil, errorf(InvalidArgument, "scheme", "invalid scheme %q", scheme)
	}
	scheme = strings.ToLower(scheme)
	if !u.isAbsolute() && !schemesWithoutHost[scheme] {
		return nil, errorf(InvalidArgument, "scheme",
			"scheme replacement is not allowed for relative URLs (scheme %q requires a host)", scheme)
	}
	out := u.clone()
	out.scheme = scheme
	return out, nil
}

// WithUser returns a new URL with the user replaced, percent-encoding it if
// needed.
func (u *URL) WithUser(user string) (*URL, error) {
	if !u.isAbsolute() {
		return nil, errorf(InvalidArgument, "user", "user replacement is not allowed for relative URLs")
	}
	out := u.clone()
	out.user = quoter.Quote(user)
	return out, nil
}

// WithoutUser returns a new URL with the user and password removed.
func (u *URL) WithoutUser() (*URL, error) {
	if !u.isAbsolute() {
		return nil, errorf(InvalidArgument, "user", "user replacement is not allowed for relative URLs")
	}
	out := u.clone()
	out.user = ""
	out.password, out.hasPassword = "", false
	return out, nil
}

// WithPassword returns a new URL with the password replaced,
// percent-encoding it if needed. An empty password is preserved as present.
func (u *URL) WithPassword(password string) (*URL, error) {
	if !u.isAbsolute() {
		return nil, errorf(InvalidArgument, "password", "password replacement is not allowed for relative URLs")
	}
	out := u.clone()
	out.password, out.hasPassword = quoter.Quote(password), true
	return out, nil
}

// WithoutPassword returns a new URL with the password removed.
func (u *URL) WithoutPassword() (*URL, error) {
	if !u.isAbsolute() {
		return nil, errorf(InvalidArgument, "password", "password replacement is not allowed for relative URLs")
	}
	out := u.clone()
	out.password, out.hasPassword = "", false
	return out, nil
}

// WithHost returns a new URL with the host replaced. Removing the host is
// not allowed; changing the host of a relative URL is not allowed, use Join
// instead.
func (u *URL) WithHost(host string) (*URL, error) {
	if !u.isAbsolute() {
		return nil, errorf(InvalidArgument, "host", "host replacement is not allowed for relative URLs")
	}
	if host == "" {
		return nil, errorf(InvalidArgument, "host", "host removal is not allowed")
	}
	h, err := hostname.Encode(host)
	if err != nil {
		return nil, wrapHostError(err)
	}
	out := u.clone()
	out.host = h
	return out, nil
}

// WithPort returns a new URL with the port replaced. Port 0 is not a valid
// explicit port. Setting the scheme's default port stores the absent state:
// the result has no explicit port but still reports the default via Port.
func (u *URL) WithPort(port int) (*URL, error) {
	if !u.isAbsolute() {
		return nil, errorf(InvalidArgument, "port", "port replacement is not allowed for relative URLs")
	}
	if port < 1 || port > 65535 {
		return nil, errorf(InvalidArgument, "port", "port must be between 1 and 65535, got %d", port)
	}
	out := u.clone()
	if def, ok := DefaultPort(u.scheme); ok && port == def {
		out.port, out.hasPort = 0, false
	} else {
		out.port, out.hasPort = port, true
	}
	return out, nil
}

// WithoutPort returns a new URL with the explicit port removed.
func (u *URL) WithoutPort() (*URL, error) {
	if !u.isAbsolute() {
		return nil, errorf(InvalidArgument, "port", "port replacement is not allowed for relative URLs")
	}
	out := u.clone()
	out.port, out.hasPort = 0, false
	return out, nil
}

// WithFragment returns a new URL with the fragment replaced,
// percent-encoding it if needed. An empty fragment clears it.
func (u *URL) WithFragment(fragment string) (*URL, error) {
	raw := fragmentQuoter.Quote(fragment)
	if raw == u.fragment {
		return u, nil
	}
	out := u.clone()
	out.fragment = raw
	return out, nil
}
