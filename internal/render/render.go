// internal/render/render.go
//
// Public page renderer.
//
// Context
// -------
// Each builder template id has an html/template under templates/ that
// renders a *builder.Snapshot.  partials.html holds the shared document
// shell (head tags, palette CSS variables, contact form, footer).  The
// files and the contact script under static/ are embedded in the binary.
//
// Render fills a head.Builder from the snapshot (title, description, Open
// Graph, canonical, JSON-LD) before executing the template, and buffers
// the output so a template error never produces half a page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/builder"
	"github.com/yanizio/cardforge/internal/captcha"
	"github.com/yanizio/cardforge/internal/head"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the data every template receives.
type Page struct {
	Site          *builder.Snapshot
	Head          *head.Builder
	Canonical     string
	SiteKey       string
	ContactAction string
	Year          int
}

// Meta carries per-request facts the snapshot does not know.
type Meta struct {
	Canonical string // absolute URL of this page; may be empty
}

// Renderer is safe for concurrent use.
type Renderer struct {
	sets    map[string]*template.Template
	siteKey string
	log     *zap.Logger
	now     func() time.Time
}

// New parses one template set per builder template id.  siteKey is the
// CAPTCHA widget key; empty uses the provider's test key.
func New(siteKey string, log *zap.Logger) (*Renderer, error) {
	if siteKey == "" {
		siteKey = captcha.TestSiteKey
	}
	if log == nil {
		log = zap.L()
	}
	r := &Renderer{sets: map[string]*template.Template{}, siteKey: siteKey, log: log, now: time.Now}
	for _, id := range builder.Templates() {
		t, err := template.New(id + ".html").ParseFS(templateFS, "templates/partials.html", "templates/"+id+".html")
		if err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", id, err)
		}
		r.sets[id] = t
	}
	return r, nil
}

// Render writes the complete page for snap to w.
func (r *Renderer) Render(w http.ResponseWriter, snap *builder.Snapshot, m Meta) {
	t, ok := r.sets[snap.Template()]
	if !ok {
		r.log.Error("no template set", zap.String("template", snap.Template()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	p := Page{
		Site:          snap,
		Head:          BuildHead(snap, m),
		Canonical:     m.Canonical,
		SiteKey:       r.siteKey,
		ContactAction: "/api/contact",
		Year:          r.now().Year(),
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		r.log.Error("template execute failed", zap.String("template", snap.Template()), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=60")
	_, _ = buf.WriteTo(w)
}

// Static serves the embedded assets; mount under /static/.
func Static() http.Handler {
	sub, _ := fs.Sub(staticFS, "static")
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// BuildHead derives SEO tags from the snapshot.
func BuildHead(snap *builder.Snapshot, m Meta) *head.Builder {
	h := head.New()

	name := snap.Text("agent.name")
	if name == "" {
		name = snap.Text("hero.title")
	}
	title := name
	if tagline := snap.Text("agent.title"); tagline != "" {
		title += " | " + tagline
	}
	desc := snap.Text("hero.subtitle")
	if desc == "" {
		desc = snap.Text("about.body")
	}
	img := snap.Image("headshot")

	h.SetTitle(title)
	h.Meta("description", desc)
	h.Meta("theme-color", snap.Color(string(builder.ColorPrimary)))
	h.Canonical(m.Canonical)
	h.Property("og:type", "website")
	h.Property("og:title", title)
	h.Property("og:description", desc)
	h.Property("og:url", m.Canonical)
	h.Property("og:image", img)
	h.Meta("twitter:card", "summary")
	h.Stylesheet("/static/site.css")
	h.Script(captcha.WidgetScriptURL)
	h.Script("/static/contact.js")

	ld := map[string]any{
		"@context": "https://schema.org",
		"@type":    schemaType(snap.Template()),
		"name":     name,
	}
	if img != "" {
		ld["image"] = img
	}
	if m.Canonical != "" {
		ld["url"] = m.Canonical
	}
	if email := snap.Text("contact.email"); email != "" {
		ld["email"] = email
	}
	if phone := snap.Text("contact.phone"); phone != "" {
		ld["telephone"] = phone
	}
	var sameAs []string
	for _, l := range snap.SocialLinks() {
		if l.URL != "" {
			sameAs = append(sameAs, l.URL)
		}
	}
	if len(sameAs) > 0 {
		ld["sameAs"] = sameAs
	}
	_ = h.JSONLD(ld) // map[string]any of strings always marshals
	return h
}

func schemaType(template string) string {
	if template == "realtor" {
		return "RealEstateAgent"
	}
	return "Person"
}
