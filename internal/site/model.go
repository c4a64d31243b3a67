// internal/site/model.go
//
// Row models for the hosted relational backend.
//
// Schema reference
//
//	CREATE TABLE sites (
//	    id             BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    owner_id       VARCHAR(64)   NOT NULL UNIQUE,
//	    slug           VARCHAR(100)  NOT NULL UNIQUE,
//	    custom_domain  VARCHAR(253)  NULL UNIQUE,
//	    template       VARCHAR(32)   NOT NULL DEFAULT 'realtor',
//	    is_published   TINYINT(1)    NOT NULL DEFAULT 0,
//	    created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
//
//	CREATE TABLE website_configs (
//	    owner_id    VARCHAR(64) PRIMARY KEY,
//	    config      JSON        NOT NULL,
//	    updated_at  TIMESTAMP   NOT NULL
//	);
//
//	CREATE TABLE contact_messages (
//	    id          BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    name        VARCHAR(200)  NOT NULL,
//	    email       VARCHAR(320)  NOT NULL,
//	    message     TEXT          NOT NULL,
//	    ip          VARCHAR(45)   NOT NULL DEFAULT '',
//	    user_agent  VARCHAR(512)  NOT NULL DEFAULT '',
//	    browser     VARCHAR(64)   NOT NULL DEFAULT '',
//	    country     CHAR(2)       NOT NULL DEFAULT '',
//	    created_at  TIMESTAMP     NOT NULL
//	);
//
// The tables are owned by the hosted backend; this service only reads and
// writes rows.
package site

import (
	"database/sql"
	"time"
)

// Record mirrors one row in `sites`.
type Record struct {
	ID           uint64         `db:"id"`
	OwnerID      string         `db:"owner_id"`
	Slug         string         `db:"slug"`
	CustomDomain sql.NullString `db:"custom_domain"`
	Template     string         `db:"template"`
	IsPublished  bool           `db:"is_published"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Domain returns the custom domain or "".
func (r *Record) Domain() string {
	if r.CustomDomain.Valid {
		return r.CustomDomain.String
	}
	return ""
}

// ContactMessage is one row in `contact_messages`.
type ContactMessage struct {
	ID        uint64    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Message   string    `db:"message"`
	IP        string    `db:"ip"`
	UserAgent string    `db:"user_agent"`
	Browser   string    `db:"browser"`
	Country   string    `db:"country"`
	CreatedAt time.Time `db:"created_at"`
}
