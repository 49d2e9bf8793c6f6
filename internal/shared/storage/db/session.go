package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/metrics"
)

// Provider hands out scoped sessions backed by the shared pool. A session is
// a dedicated connection owned exclusively by one logical operation and
// guaranteed released on every exit path.
type Provider struct {
	database       *sql.DB
	acquireTimeout time.Duration
}

// SessionFunc runs against a checked-out connection.
type SessionFunc func(ctx context.Context, conn *sql.Conn) error

// TxFunc runs inside a transaction.
type TxFunc func(ctx context.Context, tx *sql.Tx) error

// NewProvider wraps the shared *sql.DB with the configured acquisition
// timeout.
func NewProvider(database *sql.DB, opts Options) *Provider {
	timeout := opts.AcquireTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Provider{database: database, acquireTimeout: timeout}
}

// DB exposes the underlying pool for callers that manage their own scope,
// such as repositories bound directly to *sql.DB.
func (p *Provider) DB() *sql.DB { return p.database }

// Stats reports the pool state. Tests use it to assert sessions return to
// baseline.
func (p *Provider) Stats() sql.DBStats { return p.database.Stats() }

// WithSession checks a connection out of the pool, runs fn and releases the
// connection whether fn succeeds, returns an error or panics. Saturation
// beyond PoolSize+MaxOverflow blocks until AcquireTimeout, then surfaces as a
// DatabaseError.
func (p *Provider) WithSession(ctx context.Context, fn SessionFunc) error {
	conn, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
		metrics.ObservePool(p.database)
	}()

	return fn(ctx, conn)
}

// WithTx runs fn inside a transaction on a scoped session: begin, rollback on
// any failure, commit on success. Errors from fn pass through unchanged;
// begin/commit failures surface as DatabaseError.
func (p *Provider) WithTx(ctx context.Context, fn TxFunc) error {
	return p.WithSession(ctx, func(ctx context.Context, conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return apperrors.Database("begin transaction", map[string]any{"cause": err.Error()})
		}
		defer tx.Rollback()

		if err := fn(ctx, tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return apperrors.Database("commit transaction", map[string]any{"cause": err.Error()})
		}
		return nil
	})
}

func (p *Provider) acquire(ctx context.Context) (*sql.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	conn, err := p.database.Conn(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Database(
				"connection pool acquisition timed out",
				map[string]any{"timeout": p.acquireTimeout.String()},
			)
		}
		return nil, apperrors.Database("acquire connection", map[string]any{"cause": err.Error()})
	}
	return conn, nil
}
