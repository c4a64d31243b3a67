// internal/site/repository.go
//
// Query helpers for sites, website configs, and contact messages.
//
// Context
// -------
// Every helper executes exactly one parameterised statement against the
// hosted database.  Errors are returned wrapped so callers can log them with
// the project logger; sql.ErrNoRows is translated to ErrNotFound.
//
// Repository satisfies builder.Store, contact.Store, and tenant.Lookup.
package site

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no row matches.
var ErrNotFound = errors.New("site not found")

const siteColumns = `id, owner_id, slug, custom_domain, template, is_published,
               created_at, updated_at`

// Repository wraps the control-plane pool.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository returns a Repository over db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *Repository) getOne(ctx context.Context, q string, arg any) (*Record, error) {
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ByDomain fetches the site bound to a custom domain.
func (r *Repository) ByDomain(ctx context.Context, domain string) (*Record, error) {
	const q = `
        SELECT ` + siteColumns + `
        FROM   sites
        WHERE  custom_domain = ?
        LIMIT  1`
	rec, err := r.getOne(ctx, q, domain)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("site by domain %q: %w", domain, err)
	}
	return rec, err
}

// BySlug fetches the site addressed by slug.
func (r *Repository) BySlug(ctx context.Context, slug string) (*Record, error) {
	const q = `
        SELECT ` + siteColumns + `
        FROM   sites
        WHERE  slug = ?
        LIMIT  1`
	rec, err := r.getOne(ctx, q, slug)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("site by slug %q: %w", slug, err)
	}
	return rec, err
}

// ByOwner fetches the site owned by a user.
func (r *Repository) ByOwner(ctx context.Context, owner string) (*Record, error) {
	const q = `
        SELECT ` + siteColumns + `
        FROM   sites
        WHERE  owner_id = ?
        LIMIT  1`
	rec, err := r.getOne(ctx, q, owner)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("site by owner %q: %w", owner, err)
	}
	return rec, err
}

// SetPublished flips the publish flag on the owner's site.
func (r *Repository) SetPublished(ctx context.Context, owner string, published bool) error {
	const q = `UPDATE sites SET is_published = ?, updated_at = ? WHERE owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, published, r.now(), owner)
	if err != nil {
		return fmt.Errorf("set published: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadWebsiteConfig returns the owner's stored document.
func (r *Repository) LoadWebsiteConfig(ctx context.Context, owner string) ([]byte, bool, error) {
	const q = `SELECT config FROM website_configs WHERE owner_id = ? LIMIT 1`
	var doc []byte
	if err := r.db.GetContext(ctx, &doc, q, owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return doc, true, nil
}

// SaveWebsiteConfig replaces the owner's document wholesale.
func (r *Repository) SaveWebsiteConfig(ctx context.Context, owner string, doc []byte) error {
	const q = `
        INSERT INTO website_configs (owner_id, config, updated_at)
        VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE config = VALUES(config), updated_at = VALUES(updated_at)`
	_, err := r.db.ExecContext(ctx, q, owner, doc, r.now())
	return err
}

// InsertContactMessage stores one contact-form submission.
func (r *Repository) InsertContactMessage(ctx context.Context, m *ContactMessage) error {
	const q = `
        INSERT INTO contact_messages
               (name, email, message, ip, user_agent, browser, country, created_at)
        VALUES (:name, :email, :message, :ip, :user_agent, :browser, :country, :created_at)`
	if m.CreatedAt.IsZero() {
		m.CreatedAt = r.now()
	}
	res, err := r.db.NamedExecContext(ctx, q, m)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		m.ID = uint64(id)
	}
	return nil
}

// CountPublished is used at boot as a sanity check.
func (r *Repository) CountPublished(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sites WHERE is_published = 1`)
	return n, err
}
