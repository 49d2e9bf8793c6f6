package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type nopDriver struct{}

func (d nopDriver) Open(name string) (driver.Conn, error) {
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                                    { return nil }
func (nopStmt) NumInput() int                                   { return -1 }
func (nopStmt) Exec(args []driver.Value) (driver.Result, error) { return nopResult{}, nil }
func (nopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopResult struct{}

func (nopResult) LastInsertId() (int64, error) { return 0, nil }
func (nopResult) RowsAffected() (int64, error) { return 0, nil }

type nopRows struct{}

func (nopRows) Columns() []string              { return []string{} }
func (nopRows) Close() error                   { return nil }
func (nopRows) Next(dest []driver.Value) error { return driver.ErrBadConn }

var registerTestDriverOnce sync.Once

func ensureTestDriverRegistered() {
	registerTestDriverOnce.Do(func() {
		sql.Register("dbtest", nopDriver{})
	})
}

func withTestDriver(t *testing.T) func() {
	t.Helper()
	ensureTestDriverRegistered()
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.Open("dbtest", dsn)
	}
	return func() {
		openDB = prev
	}
}

func TestGetSingletonReturnsSamePointer(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	singletonMu.Lock()
	singletonDB = nil
	singletonInFly = false
	singletonMu.Unlock()

	db1, err := GetSingleton(context.Background(), "ignored", DefaultOptions())
	if err != nil {
		t.Fatalf("GetSingleton first: %v", err)
	}
	db2, err := GetSingleton(context.Background(), "ignored", DefaultOptions())
	if err != nil {
		t.Fatalf("GetSingleton second: %v", err)
	}
	if db1 != db2 {
		t.Fatalf("expected singleton pointers to match")
	}
}

func TestGetSingletonRetriesAfterFailure(t *testing.T) {
	var calls int32
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, driver.ErrBadConn
		}
		ensureTestDriverRegistered()
		return sql.Open("dbtest", dsn)
	}
	defer func() {
		openDB = prev
	}()
	ensureTestDriverRegistered()

	singletonMu.Lock()
	singletonDB = nil
	singletonInFly = false
	singletonMu.Unlock()

	_, err := GetSingleton(context.Background(), "ignored", DefaultOptions())
	if err == nil {
		t.Fatalf("expected first call to fail")
	}
	db2, err := GetSingleton(context.Background(), "ignored", DefaultOptions())
	if err != nil {
		t.Fatalf("expected second call to succeed: %v", err)
	}
	if db2 == nil {
		t.Fatalf("expected db after retry")
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	t.Setenv("DB_POOL_SIZE", "7")
	t.Setenv("DB_MAX_OVERFLOW", "3")
	t.Setenv("DB_ACQUIRE_TIMEOUT", "2s")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultOptions())
	if opts.PoolSize != 7 || opts.MaxOverflow != 3 {
		t.Fatalf("pool sizing: %+v", opts)
	}
	if opts.AcquireTimeout != 2*time.Second {
		t.Fatalf("AcquireTimeout = %s", opts.AcquireTimeout)
	}
	if opts.ConnMaxLifetime != 20*time.Minute || opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("lifetimes: %+v", opts)
	}
	if opts.PingTimeout != time.Second {
		t.Fatalf("PingTimeout = %s", opts.PingTimeout)
	}
}

func TestConnectCapsPoolAtSizePlusOverflow(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	opts := DefaultOptions()
	opts.PoolSize = 4
	opts.MaxOverflow = 2

	database, err := Connect(context.Background(), "ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer database.Close()

	if got := database.Stats().MaxOpenConnections; got != 6 {
		t.Fatalf("MaxOpenConnections = %d, want 6", got)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultOptions()); err == nil {
		t.Fatalf("expected error for empty DATABASE_URL")
	}
}

func TestNormalizeDatabaseURL(t *testing.T) {
	cases := map[string]string{
		"postgresql://h:5432/db":     "postgres://h:5432/db",
		"postgres://u:p@h:5432/db":   "postgres://u:p@h:5432/db",
		"host=localhost dbname=test": "host=localhost dbname=test",
	}
	for in, want := range cases {
		if got := normalizeDatabaseURL(in); got != want {
			t.Fatalf("normalizeDatabaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}
