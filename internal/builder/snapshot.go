package builder

import "encoding/json"

// Snapshot is an immutable view of a WebsiteConfig used by public pages and
// live preview.  A key missing from the document falls back to the
// template's schema default; a key set to "" stays blank.
type Snapshot struct {
	cfg    WebsiteConfig
	schema *Schema
}

// NewSnapshot copies cfg.  Unknown templates fall back to DefaultTemplate's
// schema for defaults.
func NewSnapshot(cfg WebsiteConfig) *Snapshot {
	s, ok := Lookup(cfg.Template)
	if !ok {
		s, _ = Lookup(DefaultTemplate)
	}
	return &Snapshot{cfg: cfg.clone(), schema: s}
}

func (s *Snapshot) Template() string { return s.schema.ID }

// Color returns the palette value for role.
func (s *Snapshot) Color(role string) string {
	if v, ok := s.cfg.Colors.Get(ColorRole(role)); ok && v != "" {
		return v
	}
	v, _ := s.schema.Colors.Get(ColorRole(role))
	return v
}

func (s *Snapshot) Text(key string) string  { return pick(s.cfg.Content.Text, s.schema.Text, key) }
func (s *Snapshot) Image(key string) string { return pick(s.cfg.Content.Images, s.schema.Images, key) }
func (s *Snapshot) Logo(key string) string  { return pick(s.cfg.Content.Logos, s.schema.Logos, key) }

// SocialLinks returns a copy of the ordered list.
func (s *Snapshot) SocialLinks() []SocialLink {
	out := make([]SocialLink, len(s.cfg.Content.SocialLinks))
	copy(out, s.cfg.Content.SocialLinks)
	return out
}

// Config returns the document with every schema default filled in.
func (s *Snapshot) Config() WebsiteConfig {
	out := s.cfg.clone()
	out.Template = s.schema.ID
	for _, role := range ColorRoles {
		out.Colors.set(role, s.Color(string(role)))
	}
	fill(out.Content.Text, s.schema.Text)
	fill(out.Content.Images, s.schema.Images)
	fill(out.Content.Logos, s.schema.Logos)
	return out
}

func (s *Snapshot) MarshalJSON() ([]byte, error) { return json.Marshal(s.Config()) }

func pick(have, defaults map[string]string, key string) string {
	if v, ok := have[key]; ok {
		return v
	}
	return defaults[key]
}

func fill(dst, defaults map[string]string) {
	for k, v := range defaults {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}
