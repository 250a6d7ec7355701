package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

// WireDriver is a database/sql driver whose connections behave like a
// postgres wire session: a statement sent while an earlier result set of the
// same connection is still open fails. Every query yields one row holding Value.
type WireDriver struct {
	Value   int64
	Latency time.Duration

	queries    atomic.Int64
	collisions atomic.Int64
}

var (
	_ driver.Driver    = (*WireDriver)(nil)
	_ driver.Connector = (*WireDriver)(nil)
)

// OpenWireDB opens a postgres flavoured sqlx handle backed by d
func OpenWireDB(d *WireDriver) *sqlx.DB {
	return sqlx.NewDb(sql.OpenDB(d), "postgres")
}

func (d *WireDriver) Open(string) (driver.Conn, error) {
	return &wireConn{driver: d}, nil
}

func (d *WireDriver) Connect(context.Context) (driver.Conn, error) {
	return d.Open("")
}

func (d *WireDriver) Driver() driver.Driver {
	return d
}

// Queries returns how many statements reached the driver
func (d *WireDriver) Queries() int64 {
	return d.queries.Load()
}

// Collisions returns how many statements were sent over a busy connection
func (d *WireDriver) Collisions() int64 {
	return d.collisions.Load()
}

type wireConn struct {
	driver *WireDriver
	open   atomic.Int32
}

func (c *wireConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements are not supported")
}

func (c *wireConn) Close() error {
	return nil
}

func (c *wireConn) Begin() (driver.Tx, error) {
	return wireTx{}, nil
}

func (c *wireConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return wireTx{}, nil
}

func (c *wireConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if err := c.send(); err != nil {
		return nil, err
	}
	c.open.Add(1)
	time.Sleep(c.driver.Latency)
	return &wireRows{conn: c, value: c.driver.Value}, nil
}

func (c *wireConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if err := c.send(); err != nil {
		return nil, err
	}
	time.Sleep(c.driver.Latency)
	return driver.RowsAffected(0), nil
}

func (c *wireConn) send() error {
	c.driver.queries.Add(1)
	if c.open.Load() > 0 {
		c.driver.collisions.Add(1)
		return errors.New("pq: unexpected message while a result set is open")
	}
	return nil
}

type wireTx struct{}

func (wireTx) Commit() error   { return nil }
func (wireTx) Rollback() error { return nil }

type wireRows struct {
	conn   *wireConn
	value  int64
	read   bool
	closed bool
}

func (r *wireRows) Columns() []string {
	return []string{"total"}
}

func (r *wireRows) Close() error {
	if !r.closed {
		r.closed = true
		r.conn.open.Add(-1)
	}
	return nil
}

func (r *wireRows) Next(dest []driver.Value) error {
	if r.read {
		return io.EOF
	}
	r.read = true
	dest[0] = r.value
	return nil
}
