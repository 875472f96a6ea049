// Package weburl provides an immutable URL value type with canonical
// percent-encoded storage and decoded accessor views.
//
// A URL is created by Parse, ParseEncoded, Build, or a derivation method on
// an existing URL; it is never mutated. Each component is stored in its
// canonical encoded form: the scheme lowercased, the host as an IDNA A-label
// or a canonical IP literal, and the remaining components percent-encoded
// with uppercase hex escapes. Accessors come in pairs: Path returns the
// decoded view, RawPath the encoded one, and so on. JoinPath appends path
// segments; UpdateQuery merges query parameters.
package weburl

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/google/urlkit/hostname"
	"github.com/google/urlkit/quoting"
)

// Quoter profiles for the individual URL components.
var (
	quoter          = quoting.MustQuoter(quoting.Options{})
	pathQuoter      = quoting.MustQuoter(quoting.Options{Safe: "@:", Protected: "/+"})
	queryQuoter     = quoting.MustQuoter(quoting.Options{Safe: "?/:@", Protected: "=+&;", QS: true})
	queryPartQuoter = quoting.MustQuoter(quoting.Options{Safe: "?/:@", QS: true})
	fragmentQuoter  = quoting.MustQuoter(quoting.Options{Safe: "?/:@"})

	unquoter         = quoting.NewUnquoter(quoting.UnquoterOptions{})
	pathUnquoter     = quoting.NewUnquoter(quoting.UnquoterOptions{Unsafe: "+"})
	pathSafeUnquoter = quoting.NewUnquoter(quoting.UnquoterOptions{Ignore: "/%", Unsafe: "+"})
	qsUnquoter       = quoting.NewUnquoter(quoting.UnquoterOptions{QS: true})
)

// URL is an immutable URL value. All component fields hold the canonical
// encoded form; decoded views are derived on access. The zero value is the
// empty relative URL.
//
// URL values are safe for concurrent use.
type URL struct {
	scheme      string
	user        string // "" means absent
	password    string
	hasPassword bool
	host        hostname.Host // Value "" means absent
	emptyAuth   bool          // "//" with empty authority
	port        int
	hasPort     bool
	path        string
	query       string
	fragment    string

	strOnce   sync.Once
	str       string
	queryOnce sync.Once
	queryVal  *Query
}

// isAbsolute reports whether the URL has a host. The path and derivation
// rules key off host presence; Absolute is the broader public notion.
func (u *URL) isAbsolute() bool { return u.host.Value != "" }

// hasAuthority reports whether any authority subcomponent is present,
// including the degenerate "//" empty authority.
func (u *URL) hasAuthority() bool {
	return u.host.Value != "" || u.user != "" || u.hasPassword || u.hasPort || u.emptyAuth
}

// clone copies the component fields but none of the memoized state.
func (u *URL) clone() *URL {
	return &URL{
		scheme:      u.scheme,
		user:        u.user,
		password:    u.password,
		hasPassword: u.hasPassword,
		host:        u.host,
		emptyAuth:   u.emptyAuth,
		port:        u.port,
		hasPort:     u.hasPort,
		path:        u.path,
		query:       u.query,
		fragment:    u.fragment,
	}
}

// Scheme returns the lowercased scheme, or "" for relative URLs.
func (u *URL) Scheme() string { return u.scheme }

// RawUser returns the encoded user subcomponent, or "" when absent.
func (u *URL) RawUser() string { return u.user }

// User returns the decoded user subcomponent, or "" when absent.
func (u *URL) User() string { return unquoter.Unquote(u.user) }

// RawPassword returns the encoded password. The second result distinguishes
// an empty password from an absent one.
func (u *URL) RawPassword() (string, bool) { return u.password, u.hasPassword }

// Password returns the decoded password. The second result distinguishes an
// empty password from an absent one.
func (u *URL) Password() (string, bool) {
	if !u.hasPassword {
		return "", false
	}
	return unquoter.Unquote(u.password), true
}

// RawHost returns the encoded host without brackets, or "" for relative
// URLs.
func (u *URL) RawHost() string { return u.host.Value }

// Host returns the decoded host, or "" for relative URLs. Registered names
// are converted from their A-label form; IP literals and zoned addresses are
// returned unchanged.
func (u *URL) Host() string { return hostname.Decode(u.host.Value) }

// HostSubcomponent returns the host as it appears in the authority:
// bracketed for IPv6 and IPvFuture literals. It is "" for relative URLs.
func (u *URL) HostSubcomponent() string {
	if u.host.Value == "" {
		return ""
	}
	return u.host.Subcomponent()
}

// ExplicitPort returns the port that is present in the URL itself.
func (u *URL) ExplicitPort() (int, bool) {
	return u.port, u.hasPort
}

// Port returns the explicit port, falling back to the scheme's registered
// default.
func (u *URL) Port() (int, bool) {
	if u.hasPort {
		return u.port, true
	}
	if u.scheme != "" {
		if port, ok := DefaultPort(u.scheme); ok {
			return port, true
		}
	}
	return 0, false
}

// IsDefaultPort reports whether the URL's port equals the scheme default.
// URLs without a port and scheme-less URLs report false.
func (u *URL) IsDefaultPort() bool {
	port, ok := u.Port()
	if !ok {
		return false
	}
	if !u.hasPort {
		// The port came from the registry, so it is the default.
		return true
	}
	def, ok := DefaultPort(u.scheme)
	return ok && port == def
}

// RawAuthority returns the encoded authority, explicit port included, or ""
// when no authority is present.
func (u *URL) RawAuthority() string {
	if !u.hasAuthority() {
		return ""
	}
	port := ""
	if u.hasPort {
		port = strconv.Itoa(u.port)
	}
	return assembleAuthority(u.user, u.password, u.hasPassword, u.HostSubcomponent(), port)
}

// Authority returns the decoded authority, with the scheme-default port
// filled in.
func (u *URL) Authority() string {
	if !u.hasAuthority() {
		return ""
	}
	port := ""
	if p, ok := u.Port(); ok {
		port = strconv.Itoa(p)
	}
	user := u.User()
	password, hasPassword := u.Password()
	host := u.Host()
	if u.host.Kind == hostname.IPv6 || u.host.Kind == hostname.IPvFuture {
		host = "[" + host + "]"
	}
	return assembleAuthority(user, password, hasPassword, host, port)
}

// assembleAuthority joins the subcomponents into
// "user[:password]@host[:port]".
func assembleAuthority(user, password string, hasPassword bool, host, port string) string {
	var b strings.Builder
	if user != "" || hasPassword {
		b.WriteString(user)
		if hasPassword {
			b.WriteByte(':')
			b.WriteString(password)
		}
		b.WriteByte('@')
	}
	b.WriteString(host)
	if port != "" {
		b.WriteByte(':')
		b.WriteString(port)
	}
	return b.String()
}

// RawPath returns the encoded path; "/" for absolute URLs with no path.
func (u *URL) RawPath() string {
	if u.path == "" && u.isAbsolute() {
		return "/"
	}
	return u.path
}

// Path returns the decoded path. A "%2F" escape decodes to "/"; use
// PathSafe when that distinction matters.
func (u *URL) Path() string { return pathUnquoter.Unquote(u.RawPath()) }

// PathSafe returns the decoded path with "%2F" and "%25" left encoded, so
// the result still round-trips through a quoter.
func (u *URL) PathSafe() string { return pathSafeUnquoter.Unquote(u.RawPath()) }

// RawQueryString returns the encoded query, or "" when absent.
func (u *URL) RawQueryString() string { return u.query }

// QueryString returns the decoded query, or "" when absent.
func (u *URL) QueryString() string { return qsUnquoter.Unquote(u.query) }

// RawPathQS returns the encoded path with the query attached.
func (u *URL) RawPathQS() string {
	if u.query == "" {
		return u.RawPath()
	}
	return u.RawPath() + "?" + u.query
}

// PathQS returns the decoded path with the decoded query attached.
func (u *URL) PathQS() string {
	qs := u.QueryString()
	if qs == "" {
		return u.Path()
	}
	return u.Path() + "?" + qs
}

// RawFragment returns the encoded fragment, or "" when absent.
func (u *URL) RawFragment() string { return u.fragment }

// Fragment returns the decoded fragment, or "" when absent.
func (u *URL) Fragment() string { return unquoter.Unquote(u.fragment) }

// Query returns the parsed query multi-map. The result is memoized and
// shared; it is a read-only view.
func (u *URL) Query() *Query {
	u.queryOnce.Do(func() {
		u.queryVal = ParseQueryString(u.query)
	})
	return u.queryVal
}

// RawParts returns the encoded path segments, with a leading "/" sentinel
// for absolute paths.
func (u *URL) RawParts() []string {
	path := u.path
	if u.isAbsolute() {
		if path == "" {
			return []string{"/"}
		}
		return append([]string{"/"}, strings.Split(path[1:], "/")...)
	}
	if strings.HasPrefix(path, "/") {
		return append([]string{"/"}, strings.Split(path[1:], "/")...)
	}
	return strings.Split(path, "/")
}

// Parts returns the decoded path segments, with a leading "/" sentinel for
// absolute paths.
func (u *URL) Parts() []string {
	parts := u.RawParts()
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = unquoter.Unquote(p)
	}
	return out
}

// RawName returns the last path segment, encoded.
func (u *URL) RawName() string {
	parts := u.RawParts()
	if u.isAbsolute() {
		parts = parts[1:]
		if len(parts) == 0 {
			return ""
		}
	}
	return parts[len(parts)-1]
}

// Name returns the last path segment, decoded.
func (u *URL) Name() string { return unquoter.Unquote(u.RawName()) }

// RawSuffix returns the file extension of RawName, dot included, or "".
func (u *URL) RawSuffix() string {
	name := u.RawName()
	i := strings.LastIndexByte(name, '.')
	if 0 < i && i < len(name)-1 {
		return name[i:]
	}
	return ""
}

// Suffix returns the file extension of Name, dot included, or "".
func (u *URL) Suffix() string { return unquoter.Unquote(u.RawSuffix()) }

// RawSuffixes returns all file extensions of RawName in order.
func (u *URL) RawSuffixes() []string {
	name := u.RawName()
	if strings.HasSuffix(name, ".") {
		return nil
	}
	name = strings.TrimLeft(name, ".")
	segs := strings.Split(name, ".")
	if len(segs) < 2 {
		return nil
	}
	out := make([]string, 0, len(segs)-1)
	for _, s := range segs[1:] {
		out = append(out, "."+s)
	}
	return out
}

// Suffixes returns all file extensions of Name in order.
func (u *URL) Suffixes() []string {
	raw := u.RawSuffixes()
	if raw == nil {
		return nil
	}
	out := make([]string, len(raw))
	for i, s := range raw {
		out[i] = unquoter.Unquote(s)
	}
	return out
}

// Parent returns the URL with the last path segment removed and the query
// and fragment cleared. The root and the empty path are their own parent.
func (u *URL) Parent() *URL {
	path := u.RawPath()
	if path == "" || path == "/" {
		if u.fragment == "" && u.query == "" {
			return u
		}
		out := u.clone()
		out.query, out.fragment = "", ""
		return out
	}
	parts := strings.Split(path, "/")
	out := u.clone()
	out.path = strings.Join(parts[:len(parts)-1], "/")
	out.query, out.fragment = "", ""
	return out
}

// Absolute reports whether the URL has a scheme or an authority.
func (u *URL) Absolute() bool {
	return u.scheme != "" || u.hasAuthority()
}

// IsZero reports whether the URL is the empty relative URL. Any component,
// the scheme included, makes it non-zero: "http:" alone is not zero.
func (u *URL) IsZero() bool {
	return u.scheme == "" && !u.hasAuthority() && u.path == "" && u.query == "" && u.fragment == ""
}

// String returns the canonical encoded string form. A port equal to the
// scheme default is elided, and an absolute URL with a query or fragment but
// no path gets the path "/".
func (u *URL) String() string {
	u.strOnce.Do(func() { u.str = u.render() })
	return u.str
}

func (u *URL) render() string {
	var b strings.Builder
	if u.scheme != "" {
		b.WriteString(u.scheme)
		b.WriteByte(':')
	}
	if u.hasAuthority() {
		b.WriteString("//")
		port := ""
		if u.hasPort && !u.IsDefaultPort() {
			port = strconv.Itoa(u.port)
		}
		b.WriteString(assembleAuthority(u.user, u.password, u.hasPassword, u.HostSubcomponent(), port))
	}
	path := u.path
	if path == "" && u.isAbsolute() && (u.query != "" || u.fragment != "") {
		path = "/"
	}
	b.WriteString(path)
	if u.query != "" {
		b.WriteByte('?')
		b.WriteString(u.query)
	}
	if u.fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.fragment)
	}
	return b.String()
}

// Bytes returns the canonical string form as ASCII bytes.
func (u *URL) Bytes() []byte { return []byte(u.String()) }

// GoString implements fmt.GoStringer for %#v.
func (u *URL) GoString() string { return fmt.Sprintf("weburl.MustParse(%q)", u.String()) }

// eqPath is the path used for equality and hashing: an absolute URL with an
// empty path compares equal to the same URL with path "/".
func (u *URL) eqPath() string {
	if u.path == "" && u.isAbsolute() {
		return "/"
	}
	return u.path
}

// Equal reports whether the two URLs have the same canonical components.
func (u *URL) Equal(other *URL) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.scheme == other.scheme &&
		u.user == other.user &&
		u.password == other.password &&
		u.hasPassword == other.hasPassword &&
		u.host == other.host &&
		u.emptyAuth == other.emptyAuth &&
		u.port == other.port &&
		u.hasPort == other.hasPort &&
		u.eqPath() == other.eqPath() &&
		u.query == other.query &&
		u.fragment == other.fragment
}

// Less orders URLs lexicographically by their canonical string form.
func (u *URL) Less(other *URL) bool { return u.String() < other.String() }

// Hash returns an FNV-1a hash of the canonical components, consistent with
// Equal.
func (u *URL) Hash() uint64 {
	h := fnv.New64a()
	port := ""
	if u.hasPort {
		port = strconv.Itoa(u.port)
	}
	for _, part := range []string{
		u.scheme, u.user, u.password, u.host.Value, port, u.eqPath(), u.query, u.fragment,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	if u.hasPassword {
		h.Write([]byte{1})
	}
	return h.Sum64()
}

// Origin returns a URL with the scheme, host, and non-default port only.
func (u *URL) Origin() (*URL, error) {
	if !u.isAbsolute() {
		return nil, errorf(InvalidArgument, "", "origin requires an absolute URL, got %q", u)
	}
	if u.scheme == "" {
		return nil, errorf(InvalidArgument, "scheme", "origin requires a URL with a scheme, got %q", u)
	}
	out := &URL{scheme: u.scheme, host: u.host}
	if u.hasPort && !u.IsDefaultPort() {
		out.port, out.hasPort = u.port, true
	}
	return out, nil
}

// Relative returns a URL with the path, query, and fragment only.
func (u *URL) Relative() (*URL, error) {
	if !u.isAbsolute() {
		return nil, errorf(InvalidArgument, "", "relative requires an absolute URL, got %q", u)
	}
	return &URL{path: u.path, query: u.query, fragment: u.fragment}, nil
}

// HumanRepr returns a decoded, human-readable string form. It is lossy: a
// URL whose decoded components contain non-URI characters does not reparse
// to the same value.
func (u *URL) HumanRepr() string {
	var b strings.Builder
	if u.scheme != "" {
		b.WriteString(u.scheme)
		b.WriteByte(':')
	}
	if u.hasAuthority() {
		b.WriteString("//")
		user := humanQuote(u.User(), "#/:?@[]")
		password, hasPassword := u.Password()
		if hasPassword {
			password = humanQuote(password, "#/:?@[]")
		}
		host := strings.ToLower(u.Host())
		if u.host.Kind == hostname.IPv6 || u.host.Kind == hostname.IPvFuture {
			host = "[" + host + "]"
		}
		port := ""
		if u.hasPort {
			port = strconv.Itoa(u.port)
		}
		b.WriteString(assembleAuthority(user, password, hasPassword, host, port))
	}
	b.WriteString(humanQuote(u.Path(), "#?"))
	if u.query != "" {
		b.WriteByte('?')
		for i, p := range humanQueryPairs(u.query) {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(humanQuote(p.Key, "#&+;="))
			b.WriteByte('=')
			b.WriteString(humanQuote(p.Value, "#&+;="))
		}
	}
	if u.fragment != "" {
		b.WriteByte('#')
		b.WriteString(humanQuote(u.Fragment(), ""))
	}
	return b.String()
}

// humanQueryPairs splits the raw query into pairs with every escape fully
// decoded. The query-string unquoter keeps the query syntax characters
// encoded so that its output reparses; the human form wants them decoded and
// re-escapes them itself.
func humanQueryPairs(raw string) []QueryParam {
	var pairs []QueryParam
	for raw != "" {
		var token string
		if i := strings.IndexAny(raw, "&;"); i >= 0 {
			token, raw = raw[:i], raw[i+1:]
		} else {
			token, raw = raw, ""
		}
		if token == "" {
			continue
		}
		key, value, _ := strings.Cut(token, "=")
		pairs = append(pairs, QueryParam{
			Key:   unquoter.Unquote(strings.ReplaceAll(key, "+", " ")),
			Value: unquoter.Unquote(strings.ReplaceAll(value, "+", " ")),
		})
	}
	return pairs
}

// humanQuote escapes "%", the given unsafe characters, and non-printable
// runes, leaving everything else decoded.
func humanQuote(s, unsafe string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '%' || strings.ContainsRune(unsafe, r):
			fmt.Fprintf(&b, "%%%02X", r)
		case !unicode.IsPrint(r):
			quoting.PercentEncodeRune(&b, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
