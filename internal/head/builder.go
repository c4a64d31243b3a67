// internal/head/builder.go
//
// The Builder collects everything that belongs inside a page's <head>.  It
// is scoped to one render call: the public page handler pushes SEO and
// social tags derived from the site's content, then the template layout
// emits each slice where it wants it.
//
// Features
// --------
//   - SetTitle / Title     single <title> tag (last call wins).
//   - Meta, Property       name= and property= (Open Graph) meta tags.
//   - Canonical            <link rel="canonical">.
//   - Stylesheet, Script   external assets, deduplicated by URL.
//   - JSONLD               marshals a value into a JSON-LD script block.
//
// All attribute values are escaped here; templates emit the results as
// template.HTML.
package head

import (
	"encoding/json"
	"html/template"
	"strings"
	"sync"
)

// Builder is safe for concurrent use, though a page normally fills it from
// one goroutine.
type Builder struct {
	mu sync.Mutex

	title string

	metas   []string
	links   []string
	scripts []string
	jsonLD  []string

	seen map[string]struct{}
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// ------------------------------------------------------------------
// Single-value helper
// ------------------------------------------------------------------

// SetTitle overrides the page <title>.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// Title returns a fully formed <title> tag or "".
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + esc(b.title) + "</title>")
}

// ------------------------------------------------------------------
// Tag helpers with deduplication
// ------------------------------------------------------------------

// Meta adds <meta name=... content=...>.  Empty content is skipped.
func (b *Builder) Meta(name, content string) {
	if content == "" {
		return
	}
	b.add("meta:"+name, &b.metas, `<meta name="`+esc(name)+`" content="`+esc(content)+`">`)
}

// Property adds an Open Graph style <meta property=... content=...>.
func (b *Builder) Property(prop, content string) {
	if content == "" {
		return
	}
	b.add("prop:"+prop, &b.metas, `<meta property="`+esc(prop)+`" content="`+esc(content)+`">`)
}

// Canonical sets the canonical URL.
func (b *Builder) Canonical(href string) {
	if href == "" {
		return
	}
	b.add("canonical", &b.links, `<link rel="canonical" href="`+esc(href)+`">`)
}

// Stylesheet links a CSS file.
func (b *Builder) Stylesheet(href string) {
	b.add("css:"+href, &b.links, `<link rel="stylesheet" href="`+esc(href)+`">`)
}

// Script adds an async external script.
func (b *Builder) Script(src string) {
	b.add("js:"+src, &b.scripts, `<script src="`+esc(src)+`" async defer></script>`)
}

// JSONLD marshals v into a structured-data block.  encoding/json escapes
// <, > and & so the payload cannot close the script element.
func (b *Builder) JSONLD(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	js := string(raw)
	b.add("jsonld:"+js, &b.jsonLD, js)
	return nil
}

// first call for a key wins
func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// ------------------------------------------------------------------
// Rendering helpers called from templates
// ------------------------------------------------------------------

func (b *Builder) Metas() template.HTML   { return b.concat(b.metas) }
func (b *Builder) Links() template.HTML   { return b.concat(b.links) }
func (b *Builder) Scripts() template.HTML { return b.concat(b.scripts) }

// JSON returns all JSON-LD blocks wrapped in <script> tags.
func (b *Builder) JSON() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	for _, js := range b.jsonLD {
		sb.WriteString(`<script type="application/ld+json">`)
		sb.WriteString(js)
		sb.WriteString(`</script>`)
	}
	return template.HTML(sb.String())
}

func (b *Builder) concat(sl []string) template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return template.HTML(strings.Join(sl, ""))
}

func esc(s string) string { return template.HTMLEscapeString(s) }
