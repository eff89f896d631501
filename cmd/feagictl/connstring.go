package main

import (
	"fmt"
	"net/url"
	"strings"
)

// ---------------------------------------------------------------------------
// Connection string parser
// ---------------------------------------------------------------------------
//
// feagictl connection strings address a single feagi-core debug HTTP surface:
//
//   feagi://host[:port]
//   feagi+tls://host[:port]
//
// Unlike the teacher's qubicdb:// scheme, there is no user:password@ segment
// and no trailing /indexID — the debug surface SPEC_FULL.md §10.4 describes
// has no admin-auth or index-ID concept, so those parts of ConnInfo are
// dropped rather than carried as dead fields.

// connInfo holds a parsed connection string's components.
type connInfo struct {
	Host string
	TLS  bool
}

// parseConnString parses a feagictl connection string. The scheme defaults
// to "feagi" (plain HTTP) when raw has no scheme prefix at all, so a bare
// "host:port" is also accepted.
func parseConnString(raw string) (*connInfo, error) {
	if raw == "" {
		return nil, fmt.Errorf("connection string must not be empty")
	}

	scheme := "feagi"
	body := raw
	switch {
	case strings.HasPrefix(raw, "feagi+tls://"):
		scheme = "feagi+tls"
		body = strings.TrimPrefix(raw, "feagi+tls://")
	case strings.HasPrefix(raw, "feagi://"):
		body = strings.TrimPrefix(raw, "feagi://")
	case strings.Contains(raw, "://"):
		return nil, fmt.Errorf("connection string must start with feagi:// or feagi+tls://, got: %s", raw)
	}

	parsed, err := url.Parse("http://" + body)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("connection string must contain a host")
	}

	host := parsed.Host
	if !strings.Contains(host, ":") {
		host += ":8081"
	}

	return &connInfo{Host: host, TLS: scheme == "feagi+tls"}, nil
}

// String reconstructs the connection string.
func (c *connInfo) String() string {
	scheme := "feagi"
	if c.TLS {
		scheme = "feagi+tls"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Host)
}

// BaseURL returns the HTTP(S) base URL for the target.
func (c *connInfo) BaseURL() string {
	scheme := "http"
	if c.TLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Host)
}
