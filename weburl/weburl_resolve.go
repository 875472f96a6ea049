package weburl

import "strings"

// Join resolves ref against the base URL u per RFC 3986 section 5.2. Empty
// path segments in either URL are preserved; many resolvers drop them, the
// RFC does not.
func (u *URL) Join(ref *URL) *URL {
	target := &URL{fragment: ref.fragment}
	switch {
	case ref.scheme != "":
		target.scheme = ref.scheme
		target.copyAuthority(ref)
		target.path = normalizePath(ref.path)
		target.query = ref.query
	case ref.hasAuthority():
		target.scheme = u.scheme
		target.copyAuthority(ref)
		target.path = normalizePath(ref.path)
		target.query = ref.query
	case ref.path == "":
		target.scheme = u.scheme
		target.copyAuthority(u)
		target.path = u.path
		if ref.query != "" {
			target.query = ref.query
		} else {
			target.query = u.query
		}
	case strings.HasPrefix(ref.path, "/"):
		target.scheme = u.scheme
		target.copyAuthority(u)
		target.path = normalizePath(ref.path)
		target.query = ref.query
	default:
		target.scheme = u.scheme
		target.copyAuthority(u)
		target.path = normalizePath(mergePaths(u, ref.path))
		target.query = ref.query
	}
	return target
}

func (u *URL) copyAuthority(from *URL) {
	u.user = from.user
	u.password, u.hasPassword = from.password, from.hasPassword
	u.host = from.host
	u.emptyAuth = from.emptyAuth
	u.port, u.hasPort = from.port, from.hasPort
}

// mergePaths implements RFC 3986 section 5.3 "merge": the reference path is
// attached to the directory of the base path.
func mergePaths(base *URL, refPath string) string {
	if base.hasAuthority() && base.path == "" {
		return "/" + refPath
	}
	i := strings.LastIndexByte(base.path, '/')
	if i < 0 {
		return refPath
	}
	return base.path[:i+1] + refPath
}
