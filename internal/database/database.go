// Package database centralises the sqlx connection pool.  The driver is
// go-sql-driver/mysql, which also speaks to MariaDB, TiDB and PlanetScale.
//
// Public entry points:
//
//	Open(ctx, dsn)                            default pool sizes.
//	OpenWithOptions(ctx, dsn, Options{...})   fine-grained control.
//
// Both helpers ping before returning so boot fails fast on a bad DSN.
// Callers Close() the returned *sqlx.DB on shutdown.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Options tunes the pool.  Zero fields take the defaults below.
type Options struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	PingTimeout time.Duration
}

func (o *Options) defaults() {
	if o.MaxOpen <= 0 {
		o.MaxOpen = 15
	}
	if o.MaxIdle <= 0 {
		o.MaxIdle = 5
	}
	if o.MaxLifetime <= 0 {
		o.MaxLifetime = 30 * time.Minute
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}
}

// Open returns a pool with 15 open / 5 idle connections and a 30-minute
// lifetime.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, dsn, Options{})
}

// OpenWithOptions validates dsn, opens the pool and pings it.
func OpenWithOptions(ctx context.Context, dsn string, o Options) (*sqlx.DB, error) {
	o.defaults()

	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("database: parse dsn: %w", err)
	}
	// Scanning DATETIME into time.Time needs parseTime.
	mc.ParseTime = true

	db, err := sqlx.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	db.SetMaxOpenConns(o.MaxOpen)
	db.SetMaxIdleConns(o.MaxIdle)
	db.SetConnMaxLifetime(o.MaxLifetime)

	pctx, cancel := context.WithTimeout(ctx, o.PingTimeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping %s@%s: %w", mc.User, mc.Addr, err)
	}
	return db, nil
}
