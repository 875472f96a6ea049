package weburl

import "strings"

// normalizePathSegments drops "." and ".." segments, resolving ".." against
// the accumulated prefix. A ".." that would climb past the root is absorbed.
// A trailing "." or ".." leaves a trailing empty segment so the directory
// form survives.
func normalizePathSegments(segments []string) []string {
	resolved := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "..":
			if len(resolved) > 0 {
				resolved = resolved[:len(resolved)-1]
			}
		case ".":
		default:
			resolved = append(resolved, seg)
		}
	}
	if len(segments) > 0 {
		if last := segments[len(segments)-1]; last == "." || last == ".." {
			resolved = append(resolved, "")
		}
	}
	return resolved
}

// normalizePath applies RFC 3986 section 5.2.4 to an encoded path,
// preserving the root "/" of absolute paths. Empty segments are kept; they
// are significant.
func normalizePath(path string) string {
	prefix := ""
	if strings.HasPrefix(path, "/") {
		prefix = "/"
		path = path[1:]
	}
	return prefix + strings.Join(normalizePathSegments(strings.Split(path, "/")), "/")
}

// JoinPath returns a new URL with the segments appended to the path,
// percent-encoding each one. The query and fragment are cleared. A segment
// may itself contain "/" separators; a segment starting with "/" is
// rejected.
func (u *URL) JoinPath(segments ...string) (*URL, error) {
	return u.makeChild(segments, false)
}

// JoinPathEncoded is like JoinPath for segments that are already
// percent-encoded.
func (u *URL) JoinPathEncoded(segments ...string) (*URL, error) {
	return u.makeChild(segments, true)
}

// makeChild appends path segments to the URL's path, keeping existing empty
// segments but introducing none, and keeping the trailing empty segment of
// only the last appended path.
func (u *URL) makeChild(paths []string, encoded bool) (*URL, error) {
	// Accumulated in reverse so that the trailing-empty-segment rule can
	// look at the first element seen.
	var reversed []string
	for idx := len(paths) - 1; idx >= 0; idx-- {
		path := paths[idx]
		last := idx == len(paths)-1
		if strings.HasPrefix(path, "/") {
			return nil, errorf(InvalidArgument, "path", "appending path %q starting from slash is forbidden", path)
		}
		if !encoded {
			path = pathQuoter.Quote(path)
		}
		segs := strings.Split(path, "/")
		var kept []string
		for j := len(segs) - 1; j >= 0; j-- {
			if segs[j] != "." {
				kept = append(kept, segs[j])
			}
		}
		if len(kept) == 0 {
			continue
		}
		if !last && kept[0] == "" {
			kept = kept[1:]
		}
		reversed = append(reversed, kept...)
	}
	parsed := make([]string, 0, len(reversed))
	for j := len(reversed) - 1; j >= 0; j-- {
		parsed = append(parsed, reversed[j])
	}

	if u.path != "" {
		old := strings.Split(u.path, "/")
		if old[len(old)-1] == "" {
			old = old[:len(old)-1]
		}
		parsed = append(old, parsed...)
	}
	if u.isAbsolute() {
		parsed = normalizePathSegments(parsed)
		if len(parsed) > 0 && parsed[0] != "" {
			// Root the path when appending to an absolute URL that had
			// none.
			parsed = append([]string{""}, parsed...)
		}
	}
	out := u.clone()
	out.path = strings.Join(parsed, "/")
	out.query, out.fragment = "", ""
	return out, nil
}

// WithPath returns a new URL with the path replaced and rooted with a
// leading "/" when non-empty. The query and fragment are kept.
func (u *URL) WithPath(path string) (*URL, error) {
	return u.withPath(path, false)
}

// WithPathEncoded is like WithPath for a path that is already
// percent-encoded.
func (u *URL) WithPathEncoded(path string) (*URL, error) {
	return u.withPath(path, true)
}

func (u *URL) withPath(path string, encoded bool) (*URL, error) {
	if !encoded {
		path = pathQuoter.Quote(path)
		if u.isAbsolute() {
			path = normalizePath(path)
		}
	}
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	out := u.clone()
	out.path = path
	return out, nil
}

// WithName returns a new URL with the last path segment replaced. The query
// and fragment are cleared.
func (u *URL) WithName(name string) (*URL, error) {
	if strings.ContainsRune(name, '/') {
		return nil, errorf(InvalidArgument, "path", "slash in name %q is not allowed", name)
	}
	name = pathQuoter.Quote(name)
	if name == "." || name == ".." {
		return nil, errorf(InvalidArgument, "path", `"." and ".." names are forbidden`)
	}
	parts := u.RawParts()
	if u.isAbsolute() {
		if len(parts) == 1 {
			parts = append(parts, name)
		} else {
			parts[len(parts)-1] = name
		}
		parts[0] = "" // the "/" sentinel becomes the empty root segment
	} else {
		parts[len(parts)-1] = name
		if parts[0] == "/" {
			parts[0] = ""
		}
	}
	out := u.clone()
	out.path = strings.Join(parts, "/")
	out.query, out.fragment = "", ""
	return out, nil
}

// WithSuffix returns a new URL with the file extension of the name
// replaced. The query and fragment are cleared.
func (u *URL) WithSuffix(suffix string) (*URL, error) {
	if suffix != "" && !strings.HasPrefix(suffix, ".") || suffix == "." {
		return nil, errorf(InvalidArgument, "path", "invalid suffix %q", suffix)
	}
	name := u.RawName()
	if name == "" {
		return nil, errorf(InvalidArgument, "path", "%q has an empty name", u)
	}
	if old := u.RawSuffix(); old != "" {
		name = name[:len(name)-len(old)]
	}
	return u.WithName(name + suffix)
}
