package weburl

import (
	"testing"

	"golang.org/x/sync/errgroup"
)

// Derived views are memoized lazily; concurrent readers must always observe
// either the uncomputed state or a complete value.
func TestConcurrentAccessors(t *testing.T) {
	u := MustParse("http://εμπορικόσήμα.eu/a/b?x=1&y=2#f")
	wantStr := u.clone().render()
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 200; j++ {
				if got := u.String(); got != wantStr {
					t.Errorf("String() = %q, want %q", got, wantStr)
				}
				if got := u.Query().Len(); got != 2 {
					t.Errorf("Query().Len() = %d, want 2", got)
				}
				if got := u.Path(); got != "/a/b" {
					t.Errorf("Path() = %q, want /a/b", got)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestConcurrentDerivations(t *testing.T) {
	base := MustParse("http://example.com/a")
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				child, err := base.JoinPath("x")
				if err != nil {
					return err
				}
				if got, want := child.String(), "http://example.com/a/x"; got != want {
					t.Errorf("JoinPath = %q, want %q", got, want)
				}
				if got, want := base.String(), "http://example.com/a"; got != want {
					t.Errorf("base mutated to %q", got)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
