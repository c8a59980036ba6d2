// Package database centralises sqlx connection helpers.  The default driver
// is go-sql-driver/mysql, which also works with MariaDB when configured for
// the MySQL wire protocol.
//
// Every pool opened here dispatches through the sqltag connector wrapper,
// so outgoing statements carry the composed query-tag comment without any
// cooperation from repository code.  The parsed DSN also feeds the
// connection descriptor behind the db_host, database, and socket comment
// components.
//
// Public entry points:
//
//	Open(dsn, composer)                    – quick helper with conservative pool sizes.
//	OpenWithOptions(dsn, composer, opts)   – fine-grained control.
//
// Both helpers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sqltag/internal/sqltag"
)

// Options tunes the pool.  Zero values fall back to the Open defaults.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open returns a tagged *sqlx.DB with sane defaults: 15 max open, 5 idle,
// and a 30-minute connection lifetime.  Suitable for process-wide pools or
// for test setups.
func Open(dsn string, comp *sqltag.Composer) (*sqlx.DB, error) {
	return OpenWithOptions(dsn, comp, Options{})
}

// OpenWithOptions lets callers tune the pool per instance.
func OpenWithOptions(dsn string, comp *sqltag.Composer, opts Options) (*sqlx.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}

	// A nil composer means tagging is disabled; dispatch straight to the
	// driver.
	if comp != nil {
		connector = sqltag.WrapConnector(connector, comp)
	}
	db := sql.OpenDB(connector)

	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = 15
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 5
	}
	if opts.ConnMaxLifetime == 0 {
		opts.ConnMaxLifetime = 30 * time.Minute
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	sqltag.SetConnInfo(ConnInfo(cfg))
	return sqlx.NewDb(db, "mysql"), nil
}

// ConnInfo derives the comment-component connection descriptor from a
// parsed DSN.  Unix-socket DSNs report Socket and leave Host empty; TCP
// DSNs do the opposite.
func ConnInfo(cfg *mysql.Config) sqltag.ConnInfo {
	ci := sqltag.ConnInfo{Database: cfg.DBName}
	if cfg.Net == "unix" {
		ci.Socket = cfg.Addr
		return ci
	}
	host := cfg.Addr
	if i := strings.LastIndexByte(host, ':'); i != -1 {
		host = host[:i]
	}
	ci.Host = host
	return ci
}
