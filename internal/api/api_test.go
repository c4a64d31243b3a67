package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/auth"
	"github.com/yanizio/cardforge/internal/builder"
	"github.com/yanizio/cardforge/internal/csrf"
	"github.com/yanizio/cardforge/internal/domaincache"
	"github.com/yanizio/cardforge/internal/render"
	"github.com/yanizio/cardforge/internal/session"
	"github.com/yanizio/cardforge/internal/site"
)

const (
	jwtSecret  = "test-secret-0123456789"
	adminToken = "admin-token"
)

// memSites is an in-memory SiteStore.
type memSites struct {
	mu      sync.Mutex
	sites   map[string]*site.Record // by owner
	configs map[string][]byte
	failAll error
}

func newMemSites(recs ...*site.Record) *memSites {
	m := &memSites{sites: map[string]*site.Record{}, configs: map[string][]byte{}}
	for _, r := range recs {
		m.sites[r.OwnerID] = r
	}
	return m
}

func (m *memSites) LoadWebsiteConfig(_ context.Context, owner string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, false, m.failAll
	}
	doc, ok := m.configs[owner]
	return doc, ok, nil
}

func (m *memSites) SaveWebsiteConfig(_ context.Context, owner string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	m.configs[owner] = append([]byte(nil), doc...)
	return nil
}

func (m *memSites) BySlug(_ context.Context, slug string) (*site.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	for _, r := range m.sites {
		if r.Slug == slug {
			cp := *r
			return &cp, nil
		}
	}
	return nil, site.ErrNotFound
}

func (m *memSites) ByOwner(_ context.Context, owner string) (*site.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.sites[owner]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, site.ErrNotFound
}

func (m *memSites) SetPublished(_ context.Context, owner string, published bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.sites[owner]
	if !ok {
		return site.ErrNotFound
	}
	r.IsPublished = published
	return nil
}

type fakeDomains struct {
	dropped []string
	cleared int
}

func (f *fakeDomains) Invalidate(h string) { f.dropped = append(f.dropped, h) }
func (f *fakeDomains) InvalidateAll()      { f.cleared++ }
func (f *fakeDomains) Stats() domaincache.Stats {
	return domaincache.Stats{Size: 3, Capacity: 1000, TTL: 5 * time.Minute}
}

type harness struct {
	router  http.Handler
	sites   *memSites
	domains *fakeDomains
	v       *auth.Verifier
}

func newHarness(t *testing.T, recs ...*site.Record) *harness {
	t.Helper()
	rend, err := render.New("", zap.NewNop())
	require.NoError(t, err)

	h := &harness{sites: newMemSites(recs...), domains: &fakeDomains{}, v: auth.NewVerifier(jwtSecret, "")}
	a := New(Options{
		Sites:      h.sites,
		Domains:    h.domains,
		Renderer:   rend,
		Verifier:   h.v,
		CSRF:       csrf.New(jwtSecret, time.Hour),
		AdminToken: adminToken,
		BaseURL:    "https://cardforge.app/",
		Log:        zap.NewNop(),
	})
	r := chi.NewRouter()
	r.Use(auth.Middleware(h.v))
	a.Mount(r)
	h.router = r
	return h
}

func (h *harness) do(t *testing.T, method, target, body, owner string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if owner != "" {
		tok, err := h.v.Issue(auth.User{ID: owner, Email: owner + "@example.com"}, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func janeSite(published bool) *site.Record {
	return &site.Record{
		ID: 1, OwnerID: "u-jane", Slug: "jane", Template: "realtor", IsPublished: published,
		CustomDomain: sql.NullString{String: "jane.realty", Valid: true},
	}
}

func decodeConfig(t *testing.T, rr *httptest.ResponseRecorder) builder.WebsiteConfig {
	t.Helper()
	var cfg builder.WebsiteConfig
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cfg))
	return cfg
}

/* ---------------------------------------------------------------- templates */

func TestTemplates(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodGet, "/api/templates", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Templates []templateCard `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Templates, len(builder.Templates()))
	require.NotEmpty(t, list.Templates[0].Colors.Primary)

	rr = h.do(t, http.MethodGet, "/api/templates/creative", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "creative", decodeConfig(t, rr).Template)

	rr = h.do(t, http.MethodGet, "/api/templates/nope", "", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

/* ---------------------------------------------------------------- dashboard */

func TestBuilder_RequiresSession(t *testing.T) {
	h := newHarness(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/builder/config"},
		{http.MethodPut, "/api/builder/config"},
		{http.MethodPatch, "/api/builder/config"},
		{http.MethodPost, "/api/builder/publish"},
		{http.MethodGet, "/api/me"},
	} {
		rr := h.do(t, tc.method, tc.path, "", "")
		require.Equal(t, http.StatusUnauthorized, rr.Code, tc.path)
	}
}

func TestBuilder_GetDefaultsWithoutWriting(t *testing.T) {
	h := newHarness(t, janeSite(false))

	rr := h.do(t, http.MethodGet, "/api/builder/config", "", "u-jane")
	require.Equal(t, http.StatusOK, rr.Code)
	cfg := decodeConfig(t, rr)
	require.Equal(t, "realtor", cfg.Template)
	require.NotEmpty(t, cfg.Content.Text["hero.title"])
	require.Empty(t, h.sites.configs, "GET must not persist")

	rr = h.do(t, http.MethodGet, "/api/builder/config?template=creative", "", "u-new")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "creative", decodeConfig(t, rr).Template)
}

func TestBuilder_PatchThenGet(t *testing.T) {
	h := newHarness(t, janeSite(false))

	body := `{"ops":[
		{"op":"color","key":"primary","value":"#000000"},
		{"op":"text","key":"agent.name","value":"Jane Doe"},
		{"op":"social","links":[{"platform":"x","url":"https://x.com/jane"}]}
	]}`
	rr := h.do(t, http.MethodPatch, "/api/builder/config", body, "u-jane")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	cfg := decodeConfig(t, h.do(t, http.MethodGet, "/api/builder/config", "", "u-jane"))
	require.Equal(t, "#000000", cfg.Colors.Primary)
	require.Equal(t, "Jane Doe", cfg.Content.Text["agent.name"])
	require.Equal(t, []builder.SocialLink{{Platform: "x", URL: "https://x.com/jane"}}, cfg.Content.SocialLinks)
}

func TestBuilder_FirstPatchKeepsSiteTemplate(t *testing.T) {
	rec := janeSite(false)
	rec.Template = "creative"
	h := newHarness(t, rec)

	rr := h.do(t, http.MethodPatch, "/api/builder/config",
		`{"ops":[{"op":"color","key":"primary","value":"#101010"}]}`, "u-jane")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "creative", decodeConfig(t, rr).Template)

	doc, ok := h.sites.configs["u-jane"]
	require.True(t, ok)
	require.Contains(t, string(doc), `"template":"creative"`)
}

func TestBuilder_PatchErrors(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPatch, "/api/builder/config", `{"ops":[{"op":"color","key":"chartreuse","value":"#fff"}]}`, "u1")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, http.MethodPatch, "/api/builder/config", `{"ops":[{"op":"explode"}]}`, "u1")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, http.MethodPatch, "/api/builder/config", `{"ops":[]}`, "u1")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Empty(t, h.sites.configs)
}

func TestBuilder_Put(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPut, "/api/builder/config", `{"template":"creative","colors":{"accent":"#00ff00"}}`, "u1")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	cfg := decodeConfig(t, rr)
	require.Equal(t, "#00ff00", cfg.Colors.Accent)
	require.NotEmpty(t, cfg.Colors.Primary, "defaults are filled in the response")
	require.Contains(t, h.sites.configs, "u1")

	rr = h.do(t, http.MethodPut, "/api/builder/config", `{"template":"brutalist"}`, "u1")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBuilder_StorageFailureIs500(t *testing.T) {
	h := newHarness(t)
	h.sites.failAll = errors.New("connection reset")

	rr := h.do(t, http.MethodGet, "/api/builder/config", "", "u1")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestPublish_InvalidatesCustomDomain(t *testing.T) {
	h := newHarness(t, janeSite(false))

	rr := h.do(t, http.MethodPost, "/api/builder/publish", `{"published":true}`, "u-jane")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.JSONEq(t, `{"published":true,"slug":"jane","domain":"jane.realty","url":"https://cardforge.app/s/jane"}`, rr.Body.String())
	require.True(t, h.sites.sites["u-jane"].IsPublished)
	require.Equal(t, []string{"jane.realty"}, h.domains.dropped)

	rr = h.do(t, http.MethodPost, "/api/builder/publish", `{}`, "u-jane")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, http.MethodPost, "/api/builder/publish", `{"published":true}`, "u-nobody")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSuggestSlug(t *testing.T) {
	h := newHarness(t, janeSite(true))

	rr := h.do(t, http.MethodGet, "/api/builder/slug?name=Jane", "", "u1")
	require.JSONEq(t, `{"slug":"jane","available":false}`, rr.Body.String())

	rr = h.do(t, http.MethodGet, "/api/builder/slug?name=Sam+Lee", "", "u1")
	require.JSONEq(t, `{"slug":"sam-lee","available":true}`, rr.Body.String())

	rr = h.do(t, http.MethodGet, "/api/builder/slug", "", "u1")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

/* ---------------------------------------------------------------- public */

func TestPublicPage(t *testing.T) {
	h := newHarness(t, janeSite(true))
	doc, err := json.Marshal(builder.WebsiteConfig{
		Template: "realtor",
		Content:  builder.Content{Text: map[string]string{"agent.name": "Jane Q. Doe"}},
	})
	require.NoError(t, err)
	h.sites.configs["u-jane"] = doc

	rr := h.do(t, http.MethodGet, "/s/jane", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, "Jane Q. Doe")
	require.Contains(t, body, `href="https://jane.realty/"`)
}

func TestPublicPage_FallsBackToTemplateDefaults(t *testing.T) {
	rec := janeSite(true)
	rec.Template = "creative"
	h := newHarness(t, rec)

	rr := h.do(t, http.MethodGet, "/s/jane", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "tpl-creative")
}

func TestPublicPage_NotFound(t *testing.T) {
	h := newHarness(t, janeSite(false))

	for _, p := range []string{"/s/jane", "/s/nobody", "/s/Bad--Slug"} {
		rr := h.do(t, http.MethodGet, p, "", "")
		require.Equal(t, http.StatusNotFound, rr.Code, p)
	}
}

/* ---------------------------------------------------------------- session */

func TestSession(t *testing.T) {
	h := newHarness(t)
	tok, err := h.v.Issue(auth.User{ID: "u1", Email: "a@b.c"}, time.Hour)
	require.NoError(t, err)

	rr := h.do(t, http.MethodPost, "/api/session", `{"token":"`+tok+`"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)

	// The cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	h.router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	require.Contains(t, me.Body.String(), `"id":"u1"`)

	var created struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.CSRFToken)

	// Cookie-authenticated writes need the CSRF header.
	patch := func(token string) int {
		req := httptest.NewRequest(http.MethodPatch, "/api/builder/config",
			strings.NewReader(`{"ops":[{"op":"color","key":"primary","value":"#112233"}]}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		if token != "" {
			req.Header.Set(csrf.HeaderName, token)
		}
		out := httptest.NewRecorder()
		h.router.ServeHTTP(out, req)
		return out.Code
	}
	require.Equal(t, http.StatusForbidden, patch(""))
	require.Equal(t, http.StatusOK, patch(created.CSRFToken))

	req = httptest.NewRequest(http.MethodGet, "/api/csrf", nil)
	req.AddCookie(cookie)
	fresh := httptest.NewRecorder()
	h.router.ServeHTTP(fresh, req)
	require.Equal(t, http.StatusOK, fresh.Code)
	require.Contains(t, fresh.Body.String(), `"csrfToken"`)

	rr = h.do(t, http.MethodPost, "/api/session", `{"token":"forged"}`, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = h.do(t, http.MethodDelete, "/api/session", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
}

/* ---------------------------------------------------------------- admin */

func TestAdminCache(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodGet, "/api/admin/cache", "", "u1")
	require.Equal(t, http.StatusUnauthorized, rr.Code, "a user session is not an admin token")

	admin := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rr := httptest.NewRecorder()
		h.router.ServeHTTP(rr, req)
		return rr
	}

	rr = admin(http.MethodGet, "/api/admin/cache")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"capacity":1000`)

	require.Equal(t, http.StatusOK, admin(http.MethodDelete, "/api/admin/cache/jane.realty").Code)
	require.Equal(t, []string{"jane.realty"}, h.domains.dropped)

	require.Equal(t, http.StatusOK, admin(http.MethodDelete, "/api/admin/cache").Code)
	require.Equal(t, 1, h.domains.cleared)
}
