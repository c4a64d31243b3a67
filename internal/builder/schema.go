// internal/builder/schema.go
//
// Template schema registry.
//
// Context
// -------
// Each template declares its defaults in a YAML file under schemas/.  The
// files are embedded in the binary and parsed once at init.  A schema is
// the authority on which keys a template renders, so Snapshot reads fall
// back to it and an incomplete document still renders.
package builder

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultTemplate is used when a caller names no template.
const DefaultTemplate = "realtor"

//go:embed schemas/*.yaml
var schemaFS embed.FS

// Schema mirrors one schemas/<id>.yaml file.
type Schema struct {
	ID          string            `yaml:"id"          json:"id"`
	Name        string            `yaml:"name"        json:"name"`
	Description string            `yaml:"description" json:"description"`
	Colors      Colors            `yaml:"colors"      json:"colors"`
	Text        map[string]string `yaml:"text"        json:"text"`
	Images      map[string]string `yaml:"images"      json:"images"`
	Logos       map[string]string `yaml:"logos"       json:"logos"`
	SocialLinks []SocialLink      `yaml:"socialLinks" json:"socialLinks"`
}

var schemas = mustLoadSchemas(schemaFS)

func mustLoadSchemas(fsys fs.FS) map[string]*Schema {
	out, err := loadSchemas(fsys)
	if err != nil {
		panic(err)
	}
	return out
}

func loadSchemas(fsys fs.FS) (map[string]*Schema, error) {
	files, err := fs.Glob(fsys, "schemas/*.yaml")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Schema, len(files))
	for _, f := range files {
		raw, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, err
		}
		var s Schema
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("schema %s: %w", f, err)
		}
		if want := trimExt(path.Base(f)); s.ID != want {
			return nil, fmt.Errorf("schema %s: id %q does not match file name", f, s.ID)
		}
		for _, role := range ColorRoles {
			if v, _ := s.Colors.Get(role); v == "" {
				return nil, fmt.Errorf("schema %s: missing default for color %q", f, role)
			}
		}
		out[s.ID] = &s
	}
	return out, nil
}

func trimExt(name string) string { return name[:len(name)-len(path.Ext(name))] }

// Lookup returns the schema for id.
func Lookup(id string) (*Schema, bool) {
	s, ok := schemas[id]
	return s, ok
}

// Templates lists every registered template id, sorted.
func Templates() []string {
	ids := make([]string, 0, len(schemas))
	for id := range schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Default materialises a fresh document from the template's defaults.
func Default(id string) (WebsiteConfig, error) {
	s, ok := Lookup(id)
	if !ok {
		return WebsiteConfig{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return s.config(), nil
}

func (s *Schema) config() WebsiteConfig {
	return WebsiteConfig{
		Template: s.ID,
		Colors:   s.Colors,
		Content: Content{
			Text:        s.Text,
			Images:      s.Images,
			Logos:       s.Logos,
			SocialLinks: s.SocialLinks,
		},
	}.clone()
}
