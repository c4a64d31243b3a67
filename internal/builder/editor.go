// internal/builder/editor.go
//
// Editable handle over a WebsiteConfig.
//
// Context
// -------
// The dashboard loads an Editor, applies field-level changes, and calls Save
// to write the whole document back.  Persistence belongs to the Store; the
// Editor keeps no version and detects no conflicts, so concurrent sessions
// on one tenant are last-write-wins.
//
// Public pages never see an Editor.  They get a Snapshot, which has no
// mutators at all.
package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Store persists documents keyed by owner.  Load reports ok == false when
// the owner has never saved.
type Store interface {
	LoadWebsiteConfig(ctx context.Context, owner string) (doc []byte, ok bool, err error)
	SaveWebsiteConfig(ctx context.Context, owner string, doc []byte) error
}

// Editor is not safe for concurrent use; it lives for one request.
type Editor struct {
	owner string
	store Store
	cfg   WebsiteConfig
}

// Load fetches owner's persisted document from store.  When owner is empty
// or nothing is stored, the named template's defaults are materialised
// instead (DefaultTemplate when template is empty).  Nothing is written.
func Load(ctx context.Context, store Store, owner, template string) (*Editor, error) {
	if template == "" {
		template = DefaultTemplate
	}

	if owner != "" && store != nil {
		doc, ok, err := store.LoadWebsiteConfig(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("load website config: %w", err)
		}
		if ok {
			cfg, err := Decode(doc)
			if err != nil {
				return nil, err
			}
			return &Editor{owner: owner, store: store, cfg: cfg}, nil
		}
	}

	cfg, err := Default(template)
	if err != nil {
		return nil, err
	}
	return &Editor{owner: owner, store: store, cfg: cfg}, nil
}

// NewEditor wraps an in-memory document, e.g. one received from the client.
func NewEditor(owner string, store Store, cfg WebsiteConfig) (*Editor, error) {
	if _, ok := Lookup(cfg.Template); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, cfg.Template)
	}
	return &Editor{owner: owner, store: store, cfg: cfg.clone()}, nil
}

// Decode parses a persisted document and checks its template id.
func Decode(doc []byte) (WebsiteConfig, error) {
	var cfg WebsiteConfig
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return WebsiteConfig{}, fmt.Errorf("decode website config: %w", err)
	}
	if _, ok := Lookup(cfg.Template); !ok {
		return WebsiteConfig{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, cfg.Template)
	}
	return cfg.clone(), nil
}

// Owner returns the identity the document is stored under.
func (e *Editor) Owner() string { return e.owner }

// UpdateColor replaces one palette slot.
func (e *Editor) UpdateColor(role ColorRole, value string) error {
	if !e.cfg.Colors.set(role, strings.TrimSpace(value)) {
		return fmt.Errorf("%w: %q", ErrUnknownColorRole, role)
	}
	return nil
}

// UpdateText replaces one text field.
func (e *Editor) UpdateText(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	e.cfg.Content.Text[key] = value
	return nil
}

// UpdateImage replaces one image URL, typically after an upload.
func (e *Editor) UpdateImage(key, url string) error {
	if key == "" {
		return ErrEmptyKey
	}
	e.cfg.Content.Images[key] = url
	return nil
}

// UpdateLogo replaces one logo URL.
func (e *Editor) UpdateLogo(key, url string) error {
	if key == "" {
		return ErrEmptyKey
	}
	e.cfg.Content.Logos[key] = url
	return nil
}

// SetSocialLinks replaces the ordered social list.  Entries without a
// platform are dropped.
func (e *Editor) SetSocialLinks(links []SocialLink) {
	out := make([]SocialLink, 0, len(links))
	for _, l := range links {
		if strings.TrimSpace(l.Platform) == "" {
			continue
		}
		out = append(out, l)
	}
	e.cfg.Content.SocialLinks = out
}

// Reset discards every edit and restores the current template's defaults.
func (e *Editor) Reset() error {
	cfg, err := Default(e.cfg.Template)
	if err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

// Config returns a deep copy of the current document.
func (e *Editor) Config() WebsiteConfig { return e.cfg.clone() }

// Snapshot freezes the current state into a read-only view.
func (e *Editor) Snapshot() *Snapshot { return NewSnapshot(e.cfg) }

// Save writes the whole document through the Store.
func (e *Editor) Save(ctx context.Context) error {
	if e.store == nil || e.owner == "" {
		return fmt.Errorf("save website config: no store or owner")
	}
	doc, err := json.Marshal(e.cfg)
	if err != nil {
		return err
	}
	if err := e.store.SaveWebsiteConfig(ctx, e.owner, doc); err != nil {
		return fmt.Errorf("save website config: %w", err)
	}
	return nil
}
