// internal/routing/slug.go
//
// Tenant slug and public path helpers.
//
// • MakeSlug(name)   converts a display name into a tenant slug restricted to
//   ASCII a-z, 0-9 and "-".
// • ValidSlug(s)     reports whether s is already a well-formed slug.
// • PublicPath(slug) returns the slug-routed public URL path (/s/<slug>).
// • BuildPath(parent, slug) joins with exactly one leading slash.
//
// Rules (MakeSlug)
// ----------------
// 1. Fold accents ("José" → "jose") and lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one "-".
// 3. Trim leading and trailing "-".
// 4. Cap at MaxSlugLen so the slug also fits in a DNS label.
// 5. Empty or reserved results get a "site-" prefix (or become "site").
//
// Notes
// -----
// • Only combining marks are dropped.  Scripts without an ASCII base letter
//   (CJK, Cyrillic) collapse to "-" and may yield "site".
package routing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLen matches the DNS label limit.
const MaxSlugLen = 63

// PublicPrefix is the path segment slug-routed pages live under.
const PublicPrefix = "/s"

// reserved slugs collide with product hostnames or top-level routes.
var reserved = map[string]struct{}{
	"api": {}, "admin": {}, "static": {}, "uploads": {}, "www": {},
	"app": {}, "dashboard": {}, "metrics": {}, "s": {},
}

// foldAccents decomposes and strips combining marks.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// MakeSlug converts name → lower-kebab ASCII.
func MakeSlug(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastWasDash := false
	for _, r := range strings.ToLower(foldAccents(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteByte('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "site"
	}
	if _, ok := reserved[slug]; ok {
		slug = "site-" + slug
	}
	if len(slug) > MaxSlugLen {
		slug = strings.TrimRight(slug[:MaxSlugLen], "-")
	}
	return slug
}

// ValidSlug reports whether s could have come out of MakeSlug.
func ValidSlug(s string) bool {
	if s == "" || len(s) > MaxSlugLen || s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	if _, ok := reserved[s]; ok {
		return false
	}
	prevDash := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			prevDash = false
		case c == '-':
			if prevDash {
				return false
			}
			prevDash = true
		default:
			return false
		}
	}
	return true
}

// PublicPath is the slug-routed URL path for a tenant.
func PublicPath(slug string) string { return BuildPath(PublicPrefix, slug) }

// BuildPath joins parent + slug ensuring exactly one leading slash and no
// duplicate separators.
func BuildPath(parent, slug string) string {
	parent = strings.Trim(parent, "/")
	slug = strings.Trim(slug, "/")

	switch {
	case parent == "" && slug == "":
		return "/"
	case parent == "":
		return "/" + slug
	case slug == "":
		return "/" + parent
	default:
		return "/" + parent + "/" + slug
	}
}
