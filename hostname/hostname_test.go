package hostname

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Host
		wantErr error
	}{
		{
			name: "ascii name is lowercased",
			in:   "Example.COM",
			want: Host{Value: "example.com", Kind: Name},
		},
		{
			name: "idna name",
			in:   "εμπορικόσήμα.eu",
			want: Host{Value: "xn--jxagkqfkduily1i.eu", Kind: Name},
		},
		{
			name: "idna name with mixed case",
			in:   "Bücher.DE",
			want: Host{Value: "xn--bcher-kva.de", Kind: Name},
		},
		{
			name: "ipv4 literal",
			in:   "127.0.0.1",
			want: Host{Value: "127.0.0.1", Kind: IPv4},
		},
		{
			name: "bracketed ipv6 is compressed and lowercased",
			in:   "[2001:0DB8:0000:0000:0000:0000:0000:0001]",
			want: Host{Value: "2001:db8::1", Kind: IPv6},
		},
		{
			name: "unbracketed ipv6 is accepted",
			in:   "::1",
			want: Host{Value: "::1", Kind: IPv6},
		},
		{
			name: "zone identifier is preserved",
			in:   "[fe80::1%eth0]",
			want: Host{Value: "fe80::1%eth0", Kind: IPv6},
		},
		{
			name: "ipvfuture literal",
			in:   "[v1.fe:d]",
			want: Host{Value: "v1.fe:d", Kind: IPvFuture},
		},
		{
			name:    "space is forbidden",
			in:      "exa mple.com",
			wantErr: ErrInvalidHost,
		},
		{
			name:    "unmatched bracket",
			in:      "[::1",
			wantErr: ErrInvalidHost,
		},
		{
			name:    "bracketed non-address",
			in:      "[example.com]",
			wantErr: ErrInvalidHost,
		},
		{
			name:    "bad ipvfuture",
			in:      "[vz.1]",
			wantErr: ErrInvalidHost,
		},
		{
			name:    "authority-like input",
			in:      "user@host:80",
			wantErr: ErrInvalidHost,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Encode(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Encode(%q) failed: %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Encode(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestEncodeAuthorityHint(t *testing.T) {
	_, err := Encode("user@host:80")
	if err == nil {
		t.Fatal("Encode(user@host:80) succeeded, want error")
	}
	if !strings.Contains(err.Error(), "authority") {
		t.Errorf("Encode(user@host:80) error = %q, want a hint about authority strings", err)
	}
}

func TestSubcomponent(t *testing.T) {
	tests := []struct {
		host Host
		want string
	}{
		{Host{Value: "example.com", Kind: Name}, "example.com"},
		{Host{Value: "127.0.0.1", Kind: IPv4}, "127.0.0.1"},
		{Host{Value: "::1", Kind: IPv6}, "[::1]"},
		{Host{Value: "v1.x", Kind: IPvFuture}, "[v1.x]"},
	}
	for _, tt := range tests {
		if got := tt.host.Subcomponent(); got != tt.want {
			t.Errorf("Subcomponent(%+v) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"xn--jxagkqfkduily1i.eu", "εμπορικόσήμα.eu"},
		{"xn--bcher-kva.de", "bücher.de"},
		{"127.0.0.1", "127.0.0.1"},
		{"::1", "::1"},
		{"fe80::1%eth0", "fe80::1%eth0"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Decode(tt.in); got != tt.want {
				t.Errorf("Decode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	hosts := []string{"εμπορικόσήμα.eu", "bücher.de", "example.com"}
	for _, host := range hosts {
		t.Run(host, func(t *testing.T) {
			encoded, err := Encode(host)
			if err != nil {
				t.Fatalf("Encode(%q) failed: %v", host, err)
			}
			if got := Decode(encoded.Value); got != host {
				t.Errorf("Decode(Encode(%q)) = %q, want the original", host, got)
			}
		})
	}
}

func TestCacheCounters(t *testing.T) {
	CacheClear()
	if _, err := Encode("cache-test.example"); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if _, err := Encode("cache-test.example"); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	info := CacheInfo()
	if info.HostValidate.Misses != 1 || info.HostValidate.Hits != 1 {
		t.Errorf("HostValidate stats = %+v, want 1 hit / 1 miss", info.HostValidate)
	}
	if info.HostValidate.Size != 1 {
		t.Errorf("HostValidate size = %d, want 1", info.HostValidate.Size)
	}

	CacheClear()
	info = CacheInfo()
	if info.HostValidate.Hits != 0 || info.HostValidate.Misses != 0 || info.HostValidate.Size != 0 {
		t.Errorf("stats after CacheClear = %+v, want zeroes", info.HostValidate)
	}
}

func TestCacheConfigure(t *testing.T) {
	defer func() {
		CacheClear()
		CacheConfigure(Sizes{
			IDNAEncode:   DefaultCacheSize,
			IDNADecode:   DefaultCacheSize,
			IPAddress:    DefaultCacheSize,
			HostValidate: DefaultCacheSize,
		})
	}()

	CacheConfigure(Sizes{HostValidate: 2})
	for _, h := range []string{"a.example", "b.example", "c.example"} {
		if _, err := Encode(h); err != nil {
			t.Fatalf("Encode(%q) failed: %v", h, err)
		}
	}
	info := CacheInfo()
	if info.HostValidate.Size != 2 {
		t.Errorf("bounded cache size = %d, want 2 after eviction", info.HostValidate.Size)
	}
	if info.HostValidate.Capacity != 2 {
		t.Errorf("capacity = %d, want 2", info.HostValidate.Capacity)
	}

	CacheConfigure(Sizes{HostValidate: Unbounded})
	for _, h := range []string{"a.example", "b.example", "c.example"} {
		if _, err := Encode(h); err != nil {
			t.Fatalf("Encode(%q) failed: %v", h, err)
		}
	}
	info = CacheInfo()
	if info.HostValidate.Size != 3 {
		t.Errorf("unbounded cache size = %d, want 3", info.HostValidate.Size)
	}
	if info.HostValidate.Capacity != Unbounded {
		t.Errorf("capacity = %d, want Unbounded", info.HostValidate.Capacity)
	}
}

func TestEncodeConcurrent(t *testing.T) {
	CacheClear()
	hosts := []string{"εμπορικόσήμα.eu", "bücher.de", "example.com", "127.0.0.1", "[::1]"}
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				for _, h := range hosts {
					if _, err := Encode(h); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Encode failed: %v", err)
	}
}
