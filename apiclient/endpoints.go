package apiclient

import (
	"strings"
)

// EndpointRule exempts requests whose path contains Fragment from the
// refresh-and-replay path. An empty Method matches every method.
type EndpointRule struct {
	Method   string
	Fragment string
}

// PublicEndpoints is the allow-list of endpoints whose 401s are returned to
// the caller as they are.
type PublicEndpoints []EndpointRule

// DefaultPublicEndpoints covers catalog browsing and the session endpoints
// themselves. Catalog writes are admin operations and stay protected.
var DefaultPublicEndpoints = PublicEndpoints{
	{Method: "GET", Fragment: "/product/"},
	{Method: "GET", Fragment: "/category/"},
	{Fragment: "/login"},
	{Fragment: "/logout"},
	{Fragment: "/refresh"},
}

// Match reports whether method and path hit an allow-list entry.
func (p PublicEndpoints) Match(method, path string) bool {
	path = normalisePath(path)
	for _, rule := range p {
		if rule.Method != "" && !strings.EqualFold(rule.Method, method) {
			continue
		}
		if strings.Contains(path, rule.Fragment) {
			return true
		}
	}
	return false
}

func normalisePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
