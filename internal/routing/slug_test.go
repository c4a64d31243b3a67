// internal/routing/slug_test.go
//
// Table tests for slug generation, validation, and path joining.  Every
// MakeSlug output must also pass ValidSlug.

package routing

import (
	"strings"
	"testing"
)

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"Jane Doe":               "jane-doe",
		"  Jane   Doe Realty!! ": "jane-doe-realty",
		"José & Co.":             "jose-co",
		"Zoë Núñez":              "zoe-nunez",
		"Team #1":                "team-1",
		"🏠🏠":                     "site",
		"":                       "site",
		"API":                    "site-api",
		"www":                    "site-www",
	}
	for in, want := range cases {
		got := MakeSlug(in)
		if got != want {
			t.Errorf("MakeSlug(%q) = %q, want %q", in, got, want)
		}
		if !ValidSlug(got) {
			t.Errorf("MakeSlug(%q) = %q is not a valid slug", in, got)
		}
	}
}

func TestMakeSlug_Length(t *testing.T) {
	got := MakeSlug(strings.Repeat("a", 62) + " b")
	if len(got) > MaxSlugLen || strings.HasSuffix(got, "-") {
		t.Fatalf("MakeSlug long input = %q (len %d)", got, len(got))
	}
}

func TestValidSlug(t *testing.T) {
	for _, s := range []string{"jane", "jane-doe", "a1"} {
		if !ValidSlug(s) {
			t.Errorf("ValidSlug(%q) = false", s)
		}
	}
	for _, s := range []string{"", "-jane", "jane-", "ja--ne", "Jane", "jane/doe", "api", "../etc", strings.Repeat("a", 64)} {
		if ValidSlug(s) {
			t.Errorf("ValidSlug(%q) = true", s)
		}
	}
}

func TestBuildPath(t *testing.T) {
	cases := []struct{ parent, slug, want string }{
		{"", "", "/"},
		{"/s/", "jane", "/s/jane"},
		{"", "/jane/", "/jane"},
		{"s", "", "/s"},
	}
	for _, tc := range cases {
		if got := BuildPath(tc.parent, tc.slug); got != tc.want {
			t.Errorf("BuildPath(%q,%q) = %q, want %q", tc.parent, tc.slug, got, tc.want)
		}
	}
	if PublicPath("jane") != "/s/jane" {
		t.Fatal("PublicPath")
	}
}
