// internal/builder/model.go
//
// WebsiteConfig document model.
//
// Context
// -------
// A WebsiteConfig is the whole editable state of one tenant's generated
// site or card.  It is stored wholesale as a JSON document; the JSON tags
// below are therefore the persisted wire shape and must stay stable.
//
// Notes
// -----
//   - Colour values are free-form strings.  A bad value only affects how
//     the page looks, so nothing here validates CSS syntax.
//   - clone() is used wherever a document crosses an API boundary so that
//     callers never share maps with an Editor or Snapshot.
package builder

import "errors"

// ColorRole names one semantic colour slot.
type ColorRole string

const (
	ColorPrimary    ColorRole = "primary"
	ColorSecondary  ColorRole = "secondary"
	ColorText       ColorRole = "text"
	ColorBackground ColorRole = "background"
	ColorAccent     ColorRole = "accent"
)

// ColorRoles lists every role in display order.
var ColorRoles = []ColorRole{
	ColorPrimary, ColorSecondary, ColorText, ColorBackground, ColorAccent,
}

var (
	ErrUnknownTemplate  = errors.New("builder: unknown template")
	ErrUnknownColorRole = errors.New("builder: unknown color role")
	ErrEmptyKey         = errors.New("builder: field key must not be empty")
)

// Colors is the fixed-shape colour palette.
type Colors struct {
	Primary    string `json:"primary"    yaml:"primary"`
	Secondary  string `json:"secondary"  yaml:"secondary"`
	Text       string `json:"text"       yaml:"text"`
	Background string `json:"background" yaml:"background"`
	Accent     string `json:"accent"     yaml:"accent"`
}

// Get returns the value for role.
func (c Colors) Get(role ColorRole) (string, bool) {
	switch role {
	case ColorPrimary:
		return c.Primary, true
	case ColorSecondary:
		return c.Secondary, true
	case ColorText:
		return c.Text, true
	case ColorBackground:
		return c.Background, true
	case ColorAccent:
		return c.Accent, true
	}
	return "", false
}

func (c *Colors) set(role ColorRole, v string) bool {
	switch role {
	case ColorPrimary:
		c.Primary = v
	case ColorSecondary:
		c.Secondary = v
	case ColorText:
		c.Text = v
	case ColorBackground:
		c.Background = v
	case ColorAccent:
		c.Accent = v
	default:
		return false
	}
	return true
}

// SocialLink is one entry of the ordered social list.
type SocialLink struct {
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url"      yaml:"url"`
}

// Content groups the editable fields.  Text keys are dotted, e.g.
// "hero.title".
type Content struct {
	Text        map[string]string `json:"text"`
	Images      map[string]string `json:"images"`
	Logos       map[string]string `json:"logos"`
	SocialLinks []SocialLink      `json:"socialLinks"`
}

// WebsiteConfig is the persisted document.
type WebsiteConfig struct {
	Template string  `json:"template"`
	Colors   Colors  `json:"colors"`
	Content  Content `json:"content"`
}

// clone deep-copies cfg and replaces nil maps with empty ones.
func (cfg WebsiteConfig) clone() WebsiteConfig {
	out := WebsiteConfig{
		Template: cfg.Template,
		Colors:   cfg.Colors,
		Content: Content{
			Text:   copyMap(cfg.Content.Text),
			Images: copyMap(cfg.Content.Images),
			Logos:  copyMap(cfg.Content.Logos),
		},
	}
	out.Content.SocialLinks = make([]SocialLink, len(cfg.Content.SocialLinks))
	copy(out.Content.SocialLinks, cfg.Content.SocialLinks)
	return out
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
