package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yanizio/cardforge/internal/auth"
)

func TestIssueVerify(t *testing.T) {
	g := New("secret", time.Hour)

	tok, err := g.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	if !g.Verify("u1", tok) {
		t.Fatal("fresh token rejected")
	}
	if g.Verify("u2", tok) {
		t.Fatal("token accepted for another subject")
	}
	if New("other-secret", time.Hour).Verify("u1", tok) {
		t.Fatal("token accepted under another key")
	}
	for _, bad := range []string{"", "not-base64!", tok[:len(tok)-2]} {
		if g.Verify("u1", bad) {
			t.Fatalf("malformed token %q accepted", bad)
		}
	}
}

func TestVerify_Expiry(t *testing.T) {
	g := New("secret", time.Hour)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return base }
	tok, _ := g.Issue("u1")

	g.now = func() time.Time { return base.Add(59 * time.Minute) }
	if !g.Verify("u1", tok) {
		t.Fatal("token rejected inside max age")
	}
	g.now = func() time.Time { return base.Add(61 * time.Minute) }
	if g.Verify("u1", tok) {
		t.Fatal("expired token accepted")
	}
	g.now = func() time.Time { return base.Add(-2 * time.Minute) }
	if g.Verify("u1", tok) {
		t.Fatal("token from the future accepted")
	}
}

func TestMiddleware(t *testing.T) {
	g := New("secret", time.Hour)
	h := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	tok, _ := g.Issue("u1")

	cases := []struct {
		name   string
		method string
		user   bool
		bearer bool
		token  string
		want   int
	}{
		{"safe method", http.MethodGet, true, false, "", http.StatusNoContent},
		{"anonymous", http.MethodPost, false, false, "", http.StatusNoContent},
		{"bearer exempt", http.MethodPost, true, true, "", http.StatusNoContent},
		{"empty bearer not exempt", http.MethodPost, true, false, "", http.StatusForbidden},
		{"cookie without token", http.MethodPost, true, false, "", http.StatusForbidden},
		{"cookie with bad token", http.MethodPatch, true, false, "garbage", http.StatusForbidden},
		{"cookie with token", http.MethodPut, true, false, tok, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/builder/config", nil)
			if tc.user {
				req = req.WithContext(auth.WithUser(req.Context(), auth.User{ID: "u1"}))
			}
			switch {
			case tc.bearer:
				req.Header.Set("Authorization", "Bearer whatever")
			case tc.name == "empty bearer not exempt":
				req.Header.Set("Authorization", "Bearer ")
			}
			if tc.token != "" {
				req.Header.Set(HeaderName, tc.token)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("code = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}
