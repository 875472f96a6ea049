package weburl

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseQueryString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []QueryParam
	}{
		{
			name: "single pair",
			in:   "a=b",
			want: []QueryParam{{"a", "b"}},
		},
		{
			name: "duplicate keys keep order",
			in:   "a=1&b=2&a=3",
			want: []QueryParam{{"a", "1"}, {"b", "2"}, {"a", "3"}},
		},
		{
			name: "semicolon is a separator too",
			in:   "a=1;b=2",
			want: []QueryParam{{"a", "1"}, {"b", "2"}},
		},
		{
			name: "token without equals has empty value",
			in:   "flag&a=1",
			want: []QueryParam{{"flag", ""}, {"a", "1"}},
		},
		{
			name: "plus decodes to space",
			in:   "q=hello+world",
			want: []QueryParam{{"q", "hello world"}},
		},
		{
			name: "escapes decode",
			in:   "q=%D0%BF",
			want: []QueryParam{{"q", "п"}},
		},
		{
			name: "empty tokens are skipped",
			in:   "a=1&&b=2&",
			want: []QueryParam{{"a", "1"}, {"b", "2"}},
		},
		{
			name: "empty string",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQueryString(tt.in)
			if diff := cmp.Diff(tt.want, got.Pairs()); diff != "" {
				t.Errorf("ParseQueryString(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestQueryAccessors(t *testing.T) {
	q := MustParse("http://h/?a=1&b=2&a=3").Query()
	if got := q.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	if v, ok := q.Get("a"); !ok || v != "1" {
		t.Errorf(`Get("a") = %q, %v, want "1", true`, v, ok)
	}
	if _, ok := q.Get("missing"); ok {
		t.Error(`Get("missing") reports present`)
	}
	if diff := cmp.Diff([]string{"1", "3"}, q.GetAll("a")); diff != "" {
		t.Errorf("GetAll mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, q.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	if !q.Has("b") || q.Has("c") {
		t.Error("Has() answers are wrong")
	}
}

func TestWithQuery(t *testing.T) {
	base := MustParse("http://h/p?old=1#f")
	tests := []struct {
		name  string
		query interface{}
		want  string
	}{
		{
			name:  "string replaces the query",
			query: "a=b&c=d",
			want:  "http://h/p?a=b&c=d#f",
		},
		{
			name:  "nil clears the query",
			query: nil,
			want:  "http://h/p#f",
		},
		{
			name:  "pairs keep order and duplicates",
			query: []QueryParam{{"b", "2"}, {"a", "1"}, {"b", "3"}},
			want:  "http://h/p?b=2&a=1&b=3#f",
		},
		{
			name:  "map serializes sorted",
			query: map[string]string{"z": "1", "a": "2"},
			want:  "http://h/p?a=2&z=1#f",
		},
		{
			name:  "values are encoded",
			query: []QueryParam{{"q", "a b+c"}},
			want:  "http://h/p?q=a+b%2Bc#f",
		},
		{
			name:  "typed scalars",
			query: map[string]interface{}{"i": 7, "f": 1.5},
			want:  "http://h/p?f=1.5&i=7#f",
		},
		{
			name:  "sequence value repeats the key",
			query: map[string]interface{}{"k": []interface{}{1, 2}},
			want:  "http://h/p?k=1&k=2#f",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := base.WithQuery(tt.query)
			if err != nil {
				t.Fatalf("WithQuery(%v) failed: %v", tt.query, err)
			}
			if got.String() != tt.want {
				t.Errorf("WithQuery(%v) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestWithQueryErrors(t *testing.T) {
	base := MustParse("http://h/")
	var kindErr *Error

	_, err := base.WithQuery(map[string]interface{}{"b": true})
	if !errors.As(err, &kindErr) || kindErr.Kind != TypeMismatch {
		t.Errorf("WithQuery(bool) error = %v, want TypeMismatch", err)
	}

	_, err = base.WithQuery(42)
	if !errors.As(err, &kindErr) || kindErr.Kind != TypeMismatch {
		t.Errorf("WithQuery(42) error = %v, want TypeMismatch", err)
	}

	_, err = base.WithQuery(map[string]interface{}{"f": math.Inf(1)})
	if !errors.As(err, &kindErr) || kindErr.Kind != InvalidArgument {
		t.Errorf("WithQuery(+Inf) error = %v, want InvalidArgument", err)
	}

	_, err = base.WithQuery(map[string]interface{}{"f": math.NaN()})
	if !errors.As(err, &kindErr) || kindErr.Kind != InvalidArgument {
		t.Errorf("WithQuery(NaN) error = %v, want InvalidArgument", err)
	}
}

func TestUpdateQuery(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		query interface{}
		want  string
	}{
		{
			name:  "existing key is replaced in place",
			base:  "http://h/?a=b&b=1",
			query: map[string]string{"b": "2"},
			want:  "http://h/?a=b&b=2",
		},
		{
			name:  "new key is appended",
			base:  "http://h/?a=b",
			query: map[string]string{"c": "d"},
			want:  "http://h/?a=b&c=d",
		},
		{
			name:  "duplicate old values collapse",
			base:  "http://h/?b=1&a=x&b=2",
			query: map[string]string{"b": "9"},
			want:  "http://h/?b=9&a=x",
		},
		{
			name:  "multiple new values for one key survive",
			base:  "http://h/?a=1&b=old",
			query: []QueryParam{{"b", "2"}, {"b", "3"}},
			want:  "http://h/?a=1&b=2&b=3",
		},
		{
			name:  "nil clears the query",
			base:  "http://h/?a=1",
			query: nil,
			want:  "http://h/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MustParse(tt.base).UpdateQuery(tt.query)
			if err != nil {
				t.Fatalf("UpdateQuery(%v) failed: %v", tt.query, err)
			}
			if got.String() != tt.want {
				t.Errorf("UpdateQuery(%v) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtendQuery(t *testing.T) {
	got, err := MustParse("http://h/?a=b&b=1").ExtendQuery(map[string]string{"b": "2"})
	if err != nil {
		t.Fatalf("ExtendQuery failed: %v", err)
	}
	if want := "http://h/?a=b&b=1&b=2"; got.String() != want {
		t.Errorf("ExtendQuery = %q, want %q", got, want)
	}
}

func TestWithoutQueryParams(t *testing.T) {
	got, err := MustParse("http://h/?a=1&b=2&a=3&c=4").WithoutQueryParams("a", "c")
	if err != nil {
		t.Fatalf("WithoutQueryParams failed: %v", err)
	}
	if want := "http://h/?b=2"; got.String() != want {
		t.Errorf("WithoutQueryParams = %q, want %q", got, want)
	}
}

func TestQueryStringRoundTrip(t *testing.T) {
	u := MustParse("http://h/?q=hello+world&r=%D0%BF")
	if got, want := u.QueryString(), "q=hello world&r=п"; got != want {
		t.Errorf("QueryString() = %q, want %q", got, want)
	}
	if got, want := u.RawQueryString(), "q=hello+world&r=%D0%BF"; got != want {
		t.Errorf("RawQueryString() = %q, want %q", got, want)
	}
}
