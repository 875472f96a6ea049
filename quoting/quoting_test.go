package quoting

import (
	"errors"
	"testing"
)

func TestQuoterQuote(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		in   string
		want string
	}{
		{
			name: "plain ascii passes through",
			in:   "hello",
			want: "hello",
		},
		{
			name: "space is encoded",
			in:   "hello world",
			want: "hello%20world",
		},
		{
			name: "qs mode encodes space as plus",
			opts: Options{QS: true},
			in:   "hello world",
			want: "hello+world",
		},
		{
			name: "unreserved characters stay bare",
			in:   "a-b.c_d~e",
			want: "a-b.c_d~e",
		},
		{
			name: "sub-delims stay bare",
			in:   "!$'()*,",
			want: "!$'()*,",
		},
		{
			name: "query specials stay bare outside qs mode",
			in:   "a=b&c;d+e?f",
			want: "a=b&c;d+e?f",
		},
		{
			name: "query specials are encoded in qs mode",
			opts: Options{QS: true},
			in:   "a=b&c;d+e",
			want: "a%3Db%26c%3Bd%2Be",
		},
		{
			name: "gen-delims are encoded",
			in:   "a/b:c@d#e[f]",
			want: "a%2Fb%3Ac%40d%23e%5Bf%5D",
		},
		{
			name: "safe set extends the table",
			opts: Options{Safe: "@:"},
			in:   "user@host:80",
			want: "user@host:80",
		},
		{
			name: "existing escape is uppercased",
			in:   "a%2fb",
			want: "a%2Fb",
		},
		{
			name: "escape of a safe octet is unescaped",
			in:   "%41%2C",
			want: "A,",
		},
		{
			name: "protected escape survives requoting",
			opts: Options{Safe: "@:", Protected: "/+"},
			in:   "/a%2Fb/c",
			want: "/a%2Fb/c",
		},
		{
			name: "literal protected character stays bare",
			opts: Options{Safe: "@:", Protected: "/+"},
			in:   "/a b/c",
			want: "/a%20b/c",
		},
		{
			name: "utf-8 is encoded bytewise",
			in:   "путь",
			want: "%D0%BF%D1%83%D1%82%D1%8C",
		},
		{
			name: "four byte rune",
			in:   "\U0001F600",
			want: "%F0%9F%98%80",
		},
		{
			name: "lone percent at end",
			in:   "100%",
			want: "100%25",
		},
		{
			name: "percent before non-hex",
			in:   "100% sure",
			want: "100%25%20sure",
		},
		{
			name: "percent with single hex digit tail",
			in:   "a%2zb",
			want: "a%252zb",
		},
		{
			name: "percent with single hex digit at end",
			in:   "a%2",
			want: "a%252",
		},
		{
			name: "double percent",
			in:   "%%25",
			want: "%25%25",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := MustQuoter(tt.opts)
			if got := q.Quote(tt.in); got != tt.want {
				t.Errorf("Quote(%q) = %q, want %q", tt.in, got, tt.want)
			}
			// Canonical output must be a fixed point.
			if again := q.Quote(tt.want); again != tt.want {
				t.Errorf("Quote(%q) = %q, want it unchanged", tt.want, again)
			}
		})
	}
}

func TestQuoterQuoteStrict(t *testing.T) {
	q := MustQuoter(Options{})
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"a%20b", false},
		{"plain", false},
		{"a%2zb", true},
		{"100%", true},
		{"a%2", true},
		{"%g0", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := q.QuoteStrict(tt.in)
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Fatalf("QuoteStrict(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrMalformedPercent) {
				t.Errorf("QuoteStrict(%q) error = %v, want ErrMalformedPercent", tt.in, err)
			}
		})
	}
}

func TestNewQuoterRejectsNonASCIIConfig(t *testing.T) {
	if _, err := NewQuoter(Options{Safe: "é"}); err == nil {
		t.Error("NewQuoter(Safe: é) succeeded, want error")
	}
	if _, err := NewQuoter(Options{Protected: "€"}); err == nil {
		t.Error("NewQuoter(Protected: €) succeeded, want error")
	}
}

func TestQuoteReturnsInputWhenCanonical(t *testing.T) {
	q := MustQuoter(Options{})
	in := "already-canonical%20input"
	if got := q.Quote(in); got != in {
		t.Errorf("Quote(%q) = %q, want the input unchanged", in, got)
	}
}
