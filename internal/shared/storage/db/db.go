package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"contractai-backend/internal/shared/telemetry"
)

// Options controls pool sizing and connectivity behavior. The effective
// connection cap is PoolSize + MaxOverflow; requests beyond the cap block up
// to AcquireTimeout and then fail.
type Options struct {
	PoolSize        int
	MaxOverflow     int
	AcquireTimeout  time.Duration
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var (
	openDB         = sql.Open
	singletonMu    sync.Mutex
	singletonCond  = sync.NewCond(&singletonMu)
	singletonDB    *sql.DB
	singletonInFly bool
)

// DefaultOptions mirrors the pool shape the service has always run with:
// 20 pooled connections, 10 overflow, 30s acquisition timeout.
func DefaultOptions() Options {
	return Options{
		PoolSize:        20,
		MaxOverflow:     10,
		AcquireTimeout:  30 * time.Second,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// OptionsFromEnv overrides defaults with DB_* tuning vars if present.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	if v, ok := readEnvInt("DB_POOL_SIZE"); ok {
		opts.PoolSize = v
	}
	if v, ok := readEnvInt("DB_MAX_OVERFLOW"); ok {
		opts.MaxOverflow = v
	}
	if v, ok := readEnvDuration("DB_ACQUIRE_TIMEOUT"); ok {
		opts.AcquireTimeout = v
	}
	if v, ok := readEnvDuration("DB_CONN_MAX_LIFETIME"); ok {
		opts.ConnMaxLifetime = v
	}
	if v, ok := readEnvDuration("DB_CONN_MAX_IDLE_TIME"); ok {
		opts.ConnMaxIdleTime = v
	}
	if v, ok := readEnvDuration("DB_PING_TIMEOUT"); ok {
		opts.PingTimeout = v
	}
	return opts
}

// Connect opens a *sql.DB for the given DATABASE_URL, applies the pool
// options and verifies connectivity with a bounded ping. The returned handle
// is the process-wide pooled factory and should be shared by callers.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	database, err := openDB("pgx", normalizeDatabaseURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	applyOptions(database, opts)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logPoolStats(database, "db init")
	return database, nil
}

// GetSingleton returns a process-wide *sql.DB, initializing it once. If
// initialization fails, a later call retries until successful.
func GetSingleton(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	singletonMu.Lock()
	if singletonDB != nil {
		singletonMu.Unlock()
		return singletonDB, nil
	}
	if singletonInFly {
		for singletonInFly && singletonDB == nil {
			singletonCond.Wait()
		}
		if singletonDB != nil {
			singletonMu.Unlock()
			return singletonDB, nil
		}
	}
	singletonInFly = true
	singletonMu.Unlock()

	database, err := Connect(ctx, databaseURL, opts)

	singletonMu.Lock()
	if err == nil {
		singletonDB = database
	}
	singletonInFly = false
	singletonCond.Broadcast()
	singletonMu.Unlock()

	return singletonDB, err
}

// normalizeDatabaseURL rewrites the postgresql:// scheme the settings layer
// produces into the postgres:// form the pgx stdlib driver parses.
func normalizeDatabaseURL(raw string) string {
	if strings.HasPrefix(raw, "postgresql://") {
		return "postgres://" + strings.TrimPrefix(raw, "postgresql://")
	}
	return raw
}

func applyOptions(database *sql.DB, opts Options) {
	if opts.PoolSize <= 0 {
		opts.PoolSize = 20
	}
	if opts.MaxOverflow < 0 {
		opts.MaxOverflow = 0
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	database.SetMaxOpenConns(opts.PoolSize + opts.MaxOverflow)
	database.SetMaxIdleConns(opts.PoolSize)
	database.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		database.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func logPoolStats(database *sql.DB, label string) {
	stats := database.Stats()
	telemetry.Info(label, map[string]any{
		"open":     stats.OpenConnections,
		"in_use":   stats.InUse,
		"idle":     stats.Idle,
		"wait":     stats.WaitCount,
		"max_open": stats.MaxOpenConnections,
	})
}

func readEnvInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db env invalid int", map[string]any{"key": key, "value": raw})
		return 0, false
	}
	return val, true
}

func readEnvDuration(key string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db env invalid duration", map[string]any{"key": key, "value": raw})
		return 0, false
	}
	return val, true
}
