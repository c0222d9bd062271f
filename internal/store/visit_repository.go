package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
)

// VisitRepository records each completed exposure, mirroring the per-field
// Visits history the recovery journal keeps in memory into a queryable,
// append-only table.
type VisitRepository struct {
	db *DB
}

// NewVisitRepository creates a new visit repository.
func NewVisitRepository(db *DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// RecordVisit inserts one completed exposure's history row.
func (r *VisitRepository) RecordVisit(ctx context.Context, nightDate time.Time, fieldIndex int, v field.Visit) error {
	const unixEpochJD = 2440587.5 // JD of 1970-01-01T00:00:00Z
	observedAt := time.Unix(0, 0).UTC().Add(time.Duration((v.JD - unixEpochJD) * 24 * float64(time.Hour)))
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO visits (
			night_date, field_index, observed_at, ut, jd, lst, ha,
			airmass, actual_exposure_hr, focus_mm, filename
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`,
		nightDate, fieldIndex, observedAt, v.UT, v.JD, v.LST, v.HA,
		v.Airmass, v.ActualExptHr, v.FocusMM, v.Filename,
	)
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// VisitRow is one persisted visit row.
type VisitRow struct {
	NightDate        time.Time
	FieldIndex       int
	ObservedAt       time.Time
	UT               float64
	JD               float64
	LST              float64
	HA               float64
	Airmass          float64
	ActualExposureHr float64
	FocusMM          float64
	Filename         string
}

// GetVisitsForField returns every recorded visit for one field on one night,
// in observation order.
func (r *VisitRepository) GetVisitsForField(ctx context.Context, nightDate time.Time, fieldIndex int) ([]VisitRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT night_date, field_index, observed_at, ut, jd, lst, ha,
		        airmass, actual_exposure_hr, focus_mm, filename
		 FROM visits
		 WHERE night_date = $1 AND field_index = $2
		 ORDER BY jd ASC`,
		nightDate, fieldIndex,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var out []VisitRow
	for rows.Next() {
		var v VisitRow
		if err := rows.Scan(
			&v.NightDate, &v.FieldIndex, &v.ObservedAt, &v.UT, &v.JD, &v.LST, &v.HA,
			&v.Airmass, &v.ActualExposureHr, &v.FocusMM, &v.Filename,
		); err != nil {
			return nil, fmt.Errorf("failed to scan visit row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetRecentVisits returns the most recent visits across every field, newest
// first, bounded by limit -- for the monitor API's live activity feed.
func (r *VisitRepository) GetRecentVisits(ctx context.Context, limit int) ([]VisitRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT night_date, field_index, observed_at, ut, jd, lst, ha,
		        airmass, actual_exposure_hr, focus_mm, filename
		 FROM visits
		 ORDER BY jd DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent visits: %w", err)
	}
	defer rows.Close()

	var out []VisitRow
	for rows.Next() {
		var v VisitRow
		if err := rows.Scan(
			&v.NightDate, &v.FieldIndex, &v.ObservedAt, &v.UT, &v.JD, &v.LST, &v.HA,
			&v.Airmass, &v.ActualExposureHr, &v.FocusMM, &v.Filename,
		); err != nil {
			return nil, fmt.Errorf("failed to scan visit row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
