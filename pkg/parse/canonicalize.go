package parse

import (
	"net/url"
	"strings"
)

// Canonicalize normalizes a raw URL string into the stable key used for
// visited tracking, frontier entries, edges, and domain comparison.
// Surrounding whitespace is trimmed, the fragment is removed, and
// scheme-relative URLs ("//host/path") are pinned to https.
// Idempotent: Canonicalize(Canonicalize(u)) == Canonicalize(u).
// Empty input is returned unchanged.
func Canonicalize(raw string) string {
	if raw == "" {
		return raw
	}
	u := strings.TrimSpace(raw)
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return u
}

// IsHTTP reports whether the URL's scheme is http or https.
// Used to keep mailto:, javascript:, tel: and friends out of the frontier.
func IsHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return true
	}
	return false
}

// Host returns the host (including any port) of a URL, or "" if it cannot
// be parsed. Hosts are compared verbatim for the same-domain filter.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
