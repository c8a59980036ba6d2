// internal/sqltag/driver.go
//
// database/sql driver interceptor.
//
// Context
// -------
// The execution hook is a connector wrapper: database/sql hands us each
// statement on its way to the real driver, we annotate the text, and the
// wrapped conn delegates everything else untouched.  This is the standard
// instrumentation seam (otelsql and ariga/sqlcomment hook the same place)
// and needs no ORM cooperation — sqlx, database/sql, and hand-rolled
// repositories all flow through it.
//
// Notes
// -----
// • Optional driver interfaces are forwarded only when the parent conn
//   implements them; otherwise driver.ErrSkip lets database/sql fall back
//   to the prepared-statement path, which we also annotate.  Inject is
//   idempotent, so a statement that travels both paths is tagged once.
// • Context-less Prepare has no scope to read; it still carries the static
//   components (application, pid, db_host, …).
package sqltag

import (
	"context"
	"database/sql/driver"
)

// WrapConnector returns a connector that annotates every statement with
// comp before delegating to parent.
func WrapConnector(parent driver.Connector, comp *Composer) driver.Connector {
	return &connector{parent: parent, comp: comp}
}

type connector struct {
	parent driver.Connector
	comp   *Composer
}

func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.parent.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &taggedConn{parent: conn, comp: c.comp}, nil
}

func (c *connector) Driver() driver.Driver { return c.parent.Driver() }

// taggedConn decorates one driver connection.
type taggedConn struct {
	parent driver.Conn
	comp   *Composer
}

//
// core driver.Conn
//

func (c *taggedConn) Prepare(query string) (driver.Stmt, error) {
	return c.parent.Prepare(c.comp.Annotate(context.Background(), query))
}

func (c *taggedConn) Close() error { return c.parent.Close() }

func (c *taggedConn) Begin() (driver.Tx, error) { return c.parent.Begin() }

//
// optional interfaces, forwarded when the parent supports them
//

func (c *taggedConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	query = c.comp.Annotate(ctx, query)
	if pc, ok := c.parent.(driver.ConnPrepareContext); ok {
		return pc.PrepareContext(ctx, query)
	}
	return c.parent.Prepare(query)
}

func (c *taggedConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	qc, ok := c.parent.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return qc.QueryContext(ctx, c.comp.Annotate(ctx, query), args)
}

func (c *taggedConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	ec, ok := c.parent.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return ec.ExecContext(ctx, c.comp.Annotate(ctx, query), args)
}

func (c *taggedConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if bt, ok := c.parent.(driver.ConnBeginTx); ok {
		return bt.BeginTx(ctx, opts)
	}
	return c.parent.Begin()
}

func (c *taggedConn) Ping(ctx context.Context) error {
	if p, ok := c.parent.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *taggedConn) ResetSession(ctx context.Context) error {
	if rs, ok := c.parent.(driver.SessionResetter); ok {
		return rs.ResetSession(ctx)
	}
	return nil
}

func (c *taggedConn) CheckNamedValue(nv *driver.NamedValue) error {
	if nc, ok := c.parent.(driver.NamedValueChecker); ok {
		return nc.CheckNamedValue(nv)
	}
	return driver.ErrSkip
}

func (c *taggedConn) IsValid() bool {
	if v, ok := c.parent.(driver.Validator); ok {
		return v.IsValid()
	}
	return true
}
