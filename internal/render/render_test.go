package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/builder"
)

func snapshot(t *testing.T, template string, edit func(*builder.WebsiteConfig)) *builder.Snapshot {
	t.Helper()
	cfg, err := builder.Default(template)
	require.NoError(t, err)
	if edit != nil {
		edit(&cfg)
	}
	return builder.NewSnapshot(cfg)
}

func render(t *testing.T, snap *builder.Snapshot, m Meta) *httptest.ResponseRecorder {
	t.Helper()
	r, err := New("", zap.NewNop())
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.Render(rr, snap, m)
	return rr
}

func TestRender_EveryTemplate(t *testing.T) {
	for _, id := range builder.Templates() {
		rr := render(t, snapshot(t, id, nil), Meta{Canonical: "https://example.com/"})
		require.Equal(t, http.StatusOK, rr.Code, id)
		body := rr.Body.String()
		require.Contains(t, body, "<title>", id)
		require.Contains(t, body, `data-sitekey="1x00000000000000000000AA"`, id)
		require.Contains(t, body, `application/ld+json`, id)
		require.Contains(t, body, "tpl-"+id, id)
	}
}

func TestRender_UsesEditedContentAndEscapes(t *testing.T) {
	snap := snapshot(t, "realtor", func(c *builder.WebsiteConfig) {
		c.Content.Text["agent.name"] = "Jane <script>alert(1)</script> Doe"
		c.Colors.Primary = "#123456"
	})
	rr := render(t, snap, Meta{})
	body := rr.Body.String()

	require.NotContains(t, body, "<script>alert(1)</script>")
	require.Contains(t, body, "Jane &lt;script&gt;")
	require.Contains(t, body, "--primary: #123456")
	require.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
}

func TestRender_HostileColorIsNeutralised(t *testing.T) {
	snap := snapshot(t, "creative", func(c *builder.WebsiteConfig) {
		c.Colors.Accent = "red;}</style><script>x()</script>"
	})
	body := render(t, snap, Meta{}).Body.String()
	require.NotContains(t, body, "<script>x()</script>")
}

func TestBuildHead(t *testing.T) {
	snap := snapshot(t, "realtor", func(c *builder.WebsiteConfig) {
		c.Content.Text["agent.name"] = "Jane Doe"
		c.Content.Images["headshot"] = "https://cdn.example.com/u1/headshot-x.png"
	})
	h := BuildHead(snap, Meta{Canonical: "https://jane.realty/"})

	require.Contains(t, string(h.Title()), "Jane Doe")
	metas := string(h.Metas())
	require.Contains(t, metas, `property="og:image" content="https://cdn.example.com/u1/headshot-x.png"`)
	require.Contains(t, string(h.Links()), `rel="canonical" href="https://jane.realty/"`)
	ld := string(h.JSON())
	require.Contains(t, ld, `"@type":"RealEstateAgent"`)
	require.Contains(t, ld, `"sameAs"`)
}

func TestStatic(t *testing.T) {
	rr := httptest.NewRecorder()
	Static().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/contact.js", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), "data-contact-form"))
}
