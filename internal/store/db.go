// Package store provides Postgres-backed persistence for the field roster
// and completed-visit history, mirroring what the recovery journal already
// keeps on disk so the monitor API and offline analysis tools have a queryable
// record that survives a journal file being discarded.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/dlrabinowitz/ls4scheduler/pkg/config"
)

//go:embed schema.sql
var schemaSQL embed.FS

// DB wraps a database connection with helper methods.
type DB struct {
	*sql.DB
	config config.DatabaseConfig
}

// Connect establishes a connection to the PostgreSQL database.
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		DB:     sqlDB,
		config: cfg,
	}

	return db, nil
}

// InitSchema creates or updates the database schema.
// This should be called once at application startup.
func (db *DB) InitSchema(ctx context.Context) error {
	schemaBytes, err := schemaSQL.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// CleanupOldData removes completed-field rows and visit history older than
// maxAge. Run periodically from the monitor API so the mirror doesn't grow
// without bound across many nights.
func (db *DB) CleanupOldData(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-maxAge)

	_, err := db.ExecContext(ctx,
		`DELETE FROM visits WHERE observed_at < $1`,
		cutoff,
	)
	if err != nil {
		return fmt.Errorf("failed to delete old visits: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`DELETE FROM fields WHERE night_date < $1 AND ndone >= nrequired`,
		cutoff,
	)
	if err != nil {
		return fmt.Errorf("failed to delete old completed fields: %w", err)
	}

	return nil
}

// GetStats returns roster and visit-history statistics for the monitor API's
// status endpoint.
func (db *DB) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var doableCount int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fields WHERE doable = TRUE`,
	).Scan(&doableCount)
	if err != nil {
		return nil, err
	}
	stats["doable_fields"] = doableCount

	var completeCount int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fields WHERE ndone >= nrequired`,
	).Scan(&completeCount)
	if err != nil {
		return nil, err
	}
	stats["completed_fields"] = completeCount

	var badReadCount int
	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(bad_read_count), 0) FROM fields`,
	).Scan(&badReadCount)
	if err != nil {
		return nil, err
	}
	stats["bad_reads"] = badReadCount

	var visitCount int64
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visits`,
	).Scan(&visitCount)
	if err != nil {
		return nil, err
	}
	stats["visit_records"] = visitCount

	return stats, nil
}
