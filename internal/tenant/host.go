package tenant

import "strings"

// StripPort removes any ":port" suffix from the Host header.  Bracketed
// IPv6 literals keep their brackets.
func StripPort(h string) string {
	if strings.HasPrefix(h, "[") {
		if i := strings.IndexByte(h, ']'); i != -1 {
			return h[:i+1]
		}
		return h
	}
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}

// NormalizeHost produces the cache key: port stripped, lower-case, no
// trailing dot.
func NormalizeHost(h string) string {
	h = strings.ToLower(StripPort(strings.TrimSpace(h)))
	return strings.TrimSuffix(h, ".")
}
