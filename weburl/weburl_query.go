package weburl

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// QueryParam is one decoded key/value pair of a query string.
type QueryParam struct {
	Key   string
	Value string
}

// Query is an ordered multi-map of decoded query parameters. Duplicate keys
// are preserved and iteration order is parse/insertion order. A Query is a
// read-only view; the query derivation methods on URL return new URLs.
type Query struct {
	pairs []QueryParam
}

// NewQuery returns a Query holding the given pairs in order.
func NewQuery(pairs ...QueryParam) *Query {
	return &Query{pairs: append([]QueryParam(nil), pairs...)}
}

// ParseQueryString parses an encoded query string into a Query. Tokens are
// separated by "&" or ";"; a token without "=" yields a pair with an empty
// value. Keys and values are decoded with query-string rules, so "+" means
// space.
func ParseQueryString(s string) *Query {
	q := &Query{}
	for s != "" {
		var token string
		if i := strings.IndexAny(s, "&;"); i >= 0 {
			token, s = s[:i], s[i+1:]
		} else {
			token, s = s, ""
		}
		if token == "" {
			continue
		}
		key, value, _ := strings.Cut(token, "=")
		q.pairs = append(q.pairs, QueryParam{
			Key:   qsUnquoter.Unquote(key),
			Value: qsUnquoter.Unquote(value),
		})
	}
	return q
}

// Len returns the number of pairs.
func (q *Query) Len() int { return len(q.pairs) }

// Get returns the first value for key.
func (q *Query) Get(key string) (string, bool) {
	for _, p := range q.pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// GetAll returns all values for key, in order.
func (q *Query) GetAll(key string) []string {
	var out []string
	for _, p := range q.pairs {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

// Has reports whether key is present.
func (q *Query) Has(key string) bool {
	_, ok := q.Get(key)
	return ok
}

// Pairs returns a copy of the pairs in order.
func (q *Query) Pairs() []QueryParam {
	return append([]QueryParam(nil), q.pairs...)
}

// Keys returns each distinct key in first-appearance order.
func (q *Query) Keys() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range q.pairs {
		if !seen[p.Key] {
			seen[p.Key] = true
			out = append(out, p.Key)
		}
	}
	return out
}

// Encode serializes the pairs into an encoded query string.
func (q *Query) Encode() string {
	return encodeQueryPairs(q.pairs)
}

func encodeQueryPairs(pairs []QueryParam) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(queryPartQuoter.Quote(p.Key))
		b.WriteByte('=')
		b.WriteString(queryPartQuoter.Quote(p.Value))
	}
	return b.String()
}

// queryVar converts a scalar query value to its string form. Booleans are
// rejected: there is no universal boolean serialization, so the caller must
// pick one.
func queryVar(v interface{}) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return "", errorf(TypeMismatch, "query", "bool query values are not supported, convert %v to a string explicitly", v)
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloatVar(float64(v))
	case float64:
		return formatFloatVar(v)
	default:
		return "", errorf(TypeMismatch, "query", "query value should be a string, integer or float, got %T", v)
	}
}

func formatFloatVar(f float64) (string, error) {
	if math.IsInf(f, 0) {
		return "", errorf(InvalidArgument, "query", "infinite query values are not supported")
	}
	if math.IsNaN(f) {
		return "", errorf(InvalidArgument, "query", "NaN query values are not supported")
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

// buildQueryString converts any of the accepted query forms into an encoded
// query string. Accepted forms: nil (absent), an encoded or decoded string,
// *Query, []QueryParam, and maps from string to scalars or slices of
// scalars. Map keys serialize in sorted order; the other forms keep their
// own order.
func buildQueryString(query interface{}) (string, bool, error) {
	switch q := query.(type) {
	case nil:
		return "", false, nil
	case string:
		return queryQuoter.Quote(q), true, nil
	case *Query:
		return q.Encode(), true, nil
	case []QueryParam:
		return encodeQueryPairs(q), true, nil
	case map[string]string:
		keys := sortedKeys(len(q), func(add func(string)) {
			for k := range q {
				add(k)
			}
		})
		var pairs []QueryParam
		for _, k := range keys {
			pairs = append(pairs, QueryParam{Key: k, Value: q[k]})
		}
		return encodeQueryPairs(pairs), true, nil
	case map[string][]string:
		keys := sortedKeys(len(q), func(add func(string)) {
			for k := range q {
				add(k)
			}
		})
		var pairs []QueryParam
		for _, k := range keys {
			for _, v := range q[k] {
				pairs = append(pairs, QueryParam{Key: k, Value: v})
			}
		}
		return encodeQueryPairs(pairs), true, nil
	case map[string]interface{}:
		keys := sortedKeys(len(q), func(add func(string)) {
			for k := range q {
				add(k)
			}
		})
		var pairs []QueryParam
		for _, k := range keys {
			expanded, err := expandQueryValue(k, q[k])
			if err != nil {
				return "", false, err
			}
			pairs = append(pairs, expanded...)
		}
		return encodeQueryPairs(pairs), true, nil
	default:
		return "", false, errorf(TypeMismatch, "query",
			"query should be a string, *Query, []QueryParam or map, got %T", query)
	}
}

// expandQueryValue converts one map value, which may be a scalar or a slice
// of scalars for a repeated key, into pairs.
func expandQueryValue(key string, value interface{}) ([]QueryParam, error) {
	switch v := value.(type) {
	case []string:
		pairs := make([]QueryParam, 0, len(v))
		for _, item := range v {
			pairs = append(pairs, QueryParam{Key: key, Value: item})
		}
		return pairs, nil
	case []interface{}:
		pairs := make([]QueryParam, 0, len(v))
		for _, item := range v {
			s, err := queryVar(item)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, QueryParam{Key: key, Value: s})
		}
		return pairs, nil
	default:
		s, err := queryVar(value)
		if err != nil {
			return nil, err
		}
		return []QueryParam{{Key: key, Value: s}}, nil
	}
}

func sortedKeys(n int, collect func(add func(string))) []string {
	keys := make([]string, 0, n)
	collect(func(k string) { keys = append(keys, k) })
	sort.Strings(keys)
	return keys
}

// WithQuery returns a new URL with the query replaced. nil clears it. See
// buildQueryString for the accepted forms.
func (u *URL) WithQuery(query interface{}) (*URL, error) {
	s, _, err := buildQueryString(query)
	if err != nil {
		return nil, err
	}
	out := u.clone()
	out.query = s
	return out, nil
}

// UpdateQuery merges query into the existing parameters with dict-update
// semantics: every existing entry whose key appears in query is replaced in
// place by the new entries for that key, and wholly new keys are appended.
// nil clears the query.
func (u *URL) UpdateQuery(query interface{}) (*URL, error) {
	s, present, err := buildQueryString(query)
	if err != nil {
		return nil, err
	}
	out := u.clone()
	if !present {
		out.query = ""
		return out, nil
	}
	incoming := ParseQueryString(s).pairs
	byKey := map[string][]QueryParam{}
	order := make([]string, 0, len(incoming))
	for _, p := range incoming {
		if _, ok := byKey[p.Key]; !ok {
			order = append(order, p.Key)
		}
		byKey[p.Key] = append(byKey[p.Key], p)
	}
	var merged []QueryParam
	replaced := map[string]bool{}
	for _, p := range u.Query().pairs {
		news, ok := byKey[p.Key]
		if !ok {
			merged = append(merged, p)
			continue
		}
		if !replaced[p.Key] {
			merged = append(merged, news...)
			replaced[p.Key] = true
		}
	}
	for _, k := range order {
		if !replaced[k] {
			merged = append(merged, byKey[k]...)
		}
	}
	out.query = encodeQueryPairs(merged)
	return out, nil
}

// ExtendQuery appends the entries of query without removing duplicates.
func (u *URL) ExtendQuery(query interface{}) (*URL, error) {
	s, present, err := buildQueryString(query)
	if err != nil {
		return nil, err
	}
	if !present || s == "" {
		return u.clone(), nil
	}
	merged := append(u.Query().Pairs(), ParseQueryString(s).pairs...)
	out := u.clone()
	out.query = encodeQueryPairs(merged)
	return out, nil
}

// WithoutQueryParams removes every entry whose key is in keys.
func (u *URL) WithoutQueryParams(keys ...string) (*URL, error) {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	var kept []QueryParam
	for _, p := range u.Query().pairs {
		if !drop[p.Key] {
			kept = append(kept, p)
		}
	}
	out := u.clone()
	out.query = encodeQueryPairs(kept)
	return out, nil
}
