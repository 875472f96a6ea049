package weburl

import "sync"

// The default-port registry backs port elision in the string form and the
// scheme-based fallback of Port. It is never consulted for validation.
var (
	portsMu      sync.RWMutex
	defaultPorts = map[string]int{
		"http":  80,
		"https": 443,
		"ws":    80,
		"wss":   443,
	}
)

// DefaultPort returns the registered default port for scheme.
func DefaultPort(scheme string) (int, bool) {
	portsMu.RLock()
	defer portsMu.RUnlock()
	port, ok := defaultPorts[scheme]
	return port, ok
}

// RegisterDefaultPort adds or replaces the default port for scheme. It is
// intended for program start-up, before URLs for the scheme are rendered.
func RegisterDefaultPort(scheme string, port int) error {
	if !isValidScheme(scheme) {
		return errorf(InvalidArgument, "scheme", "invalid scheme %q", scheme)
	}
	if port < 1 || port > 65535 {
		return errorf(InvalidArgument, "port", "port must be between 1 and 65535, got %d", port)
	}
	portsMu.Lock()
	defer portsMu.Unlock()
	defaultPorts[scheme] = port
	return nil
}
