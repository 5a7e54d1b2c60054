// Package origin matches browser Origin headers against the configured
// allow-list shared by the bridge routes and the event stream.
package origin

import (
	"fmt"
	"net/url"
	"strings"
)

// Header is the request header browsers set on cross-origin requests and
// WebSocket handshakes.
const Header = "Origin"

// Normalize returns the canonical scheme://host[:port] form of s.
// Paths, queries, credentials and wildcards are rejected.
func Normalize(s string) (string, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "/")
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("origin %q: %w", s, err)
	}
	if u.Scheme == "" || u.Host == "" || strings.Contains(u.Host, "*") {
		return "", fmt.Errorf("origin %q must be scheme://host[:port]", s)
	}
	if u.User != nil || u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("origin %q must not carry a path, query or credentials", s)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}

// AllowList is an immutable set of permitted origins. The zero value allows
// nothing but requests that send no Origin header.
type AllowList struct {
	set map[string]struct{}
}

// NewAllowList builds an AllowList. Entries that do not normalize are
// skipped; config validation reports them before this point.
func NewAllowList(origins []string) AllowList {
	set := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if n, err := Normalize(o); err == nil {
			set[n] = struct{}{}
		}
	}
	return AllowList{set: set}
}

// Allowed reports whether a request carrying the given Origin header may
// proceed. An absent header is allowed: browsers always send one on
// cross-origin requests, and local tools never do.
func (a AllowList) Allowed(header string) bool {
	if header == "" {
		return true
	}
	n, err := Normalize(header)
	if err != nil {
		return false
	}
	_, ok := a.set[n]
	return ok
}
