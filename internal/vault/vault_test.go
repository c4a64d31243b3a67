package vault

import (
	"errors"
	"testing"
)

func TestParseRef(t *testing.T) {
	cases := []struct {
		in        string
		path, key string
		ok        bool
	}{
		{"vault:kv/cardforge#jwt_secret", "kv/cardforge", "jwt_secret", true},
		{"vault:secret/app/db#pass#word", "secret/app/db#pass", "word", true},
		{"vault:kv#key", "", "", false},
		{"vault:kv/app#", "", "", false},
		{"vault:#key", "", "", false},
		{"kv/app#key", "", "", false},
	}
	for _, tc := range cases {
		p, k, err := ParseRef(tc.in)
		if tc.ok {
			if err != nil {
				t.Errorf("ParseRef(%q) unexpected error: %v", tc.in, err)
				continue
			}
			if p != tc.path || k != tc.key {
				t.Errorf("ParseRef(%q) = %q, %q; want %q, %q", tc.in, p, k, tc.path, tc.key)
			}
			continue
		}
		if !errors.Is(err, ErrBadRef) {
			t.Errorf("ParseRef(%q) err = %v; want ErrBadRef", tc.in, err)
		}
	}
}

func TestSplitMount(t *testing.T) {
	m, r := splitMount("kv/cardforge/prod")
	if m != "kv" || r != "cardforge/prod" {
		t.Fatalf("splitMount = %q, %q", m, r)
	}
}
