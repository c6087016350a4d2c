// Package gateway is the single-entry reverse proxy in front of the backend
// services. A static, ordered prefix table selects one upstream per request;
// the path is forwarded unchanged.
package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

// Route maps a path prefix to one upstream base URL.
type Route struct {
	Name     string
	Prefix   string
	Upstream *url.URL
}

// Table is an ordered list of routes. The first match wins.
type Table []Route

// NewRoute validates upstream and normalizes prefix.
func NewRoute(name, prefix, upstream string) (Route, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return Route{}, fmt.Errorf("route %s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Route{}, fmt.Errorf("route %s: upstream %q is not an absolute http(s) URL", name, upstream)
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		return Route{}, fmt.Errorf("route %s: prefix must not be the root path", name)
	}
	return Route{Name: name, Prefix: prefix, Upstream: u}, nil
}

// DefaultTable is the deployment route table: the identity routes go to the
// auth service and /api/users to the user service.
func DefaultTable(authServiceURL, userServiceURL string) (Table, error) {
	specs := []struct{ name, prefix, upstream string }{
		{"auth", "/api/auth", authServiceURL},
		{"admin", "/api/admin", authServiceURL},
		{"password", "/api/password", authServiceURL},
		{"users", "/api/users", userServiceURL},
	}

	table := make(Table, 0, len(specs))
	for _, s := range specs {
		r, err := NewRoute(s.name, s.prefix, s.upstream)
		if err != nil {
			return nil, err
		}
		table = append(table, r)
	}
	return table, nil
}

// Match returns the first route whose prefix is path itself or a leading
// path segment of it. "/api/authx" does not match "/api/auth".
func (t Table) Match(path string) (Route, bool) {
	for _, r := range t {
		if path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/") {
			return r, true
		}
	}
	return Route{}, false
}
