package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/cardforge/internal/session"
)

const testSecret = "test-secret-key-32-chars-minimum"

func TestVerifier_RoundTrip(t *testing.T) {
	t.Parallel()

	v := NewVerifier(testSecret, "authenticated")
	tok, err := v.Issue(User{ID: "user-1", Email: "a@b.c", Role: "authenticated"}, time.Hour)
	require.NoError(t, err)

	u, err := v.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, User{ID: "user-1", Email: "a@b.c", Role: "authenticated"}, u)
}

func TestVerifier_Rejects(t *testing.T) {
	t.Parallel()

	v := NewVerifier(testSecret, "authenticated")

	expired, err := v.Issue(User{ID: "user-1"}, -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	require.ErrorIs(t, err, ErrUnauthenticated)

	other, err := NewVerifier("another-secret-of-sufficient-size", "authenticated").
		Issue(User{ID: "user-1"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(other)
	require.ErrorIs(t, err, ErrUnauthenticated)

	wrongAud, err := NewVerifier(testSecret, "service").Issue(User{ID: "user-1"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(wrongAud)
	require.ErrorIs(t, err, ErrUnauthenticated)

	noSub, err := v.Issue(User{}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(noSub)
	require.True(t, errors.Is(err, ErrUnauthenticated))

	_, err = v.Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerifier_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewVerifier(testSecret, "").Verify(tok)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestMiddleware_AttachesUserFromBearerOrCookie(t *testing.T) {
	t.Parallel()

	v := NewVerifier(testSecret, "")
	tok, err := v.Issue(User{ID: "user-9"}, time.Hour)
	require.NoError(t, err)

	var got string
	h := Middleware(v)(RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserID(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "user-9", got)

	got = ""
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tok})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "user-9", got)
}

func TestRequireUser_Anonymous401(t *testing.T) {
	t.Parallel()

	h := Middleware(NewVerifier(testSecret, ""))(RequireUser(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) { t.Error("handler must not run") })))

	for _, hdr := range []string{"", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if hdr != "" {
			req.Header.Set("Authorization", hdr)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	cases := []struct {
		token, header string
		want          int
	}{
		{"ops", "Bearer ops", http.StatusNoContent},
		{"ops", "Bearer nope", http.StatusUnauthorized},
		{"ops", "", http.StatusUnauthorized},
		{"", "Bearer ", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rr := httptest.NewRecorder()
		RequireAdmin(tc.token)(ok).ServeHTTP(rr, req)
		require.Equal(t, tc.want, rr.Code, "token=%q header=%q", tc.token, tc.header)
	}
}
