package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
)

// FieldRepository mirrors the in-memory field roster into Postgres so the
// monitor API can serve roster state without holding a reference into the
// running scheduler process.
type FieldRepository struct {
	db *DB
}

// NewFieldRepository creates a new field repository.
func NewFieldRepository(db *DB) *FieldRepository {
	return &FieldRepository{db: db}
}

// UpsertField inserts or updates a field roster row for nightDate.
func (r *FieldRepository) UpsertField(ctx context.Context, nightDate time.Time, f *field.Field) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fields (
			night_date, field_index, ra_hours, dec_deg, kind, survey,
			exposure_sec, interval_hours, nrequired, filter,
			doable, jd_rise, jd_set, ndone, jd_next, bad_read_count, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW()
		)
		ON CONFLICT (night_date, field_index) DO UPDATE SET
			ra_hours       = EXCLUDED.ra_hours,
			dec_deg        = EXCLUDED.dec_deg,
			kind           = EXCLUDED.kind,
			survey         = EXCLUDED.survey,
			exposure_sec   = EXCLUDED.exposure_sec,
			interval_hours = EXCLUDED.interval_hours,
			nrequired      = EXCLUDED.nrequired,
			filter         = EXCLUDED.filter,
			doable         = EXCLUDED.doable,
			jd_rise        = EXCLUDED.jd_rise,
			jd_set         = EXCLUDED.jd_set,
			ndone          = EXCLUDED.ndone,
			jd_next        = EXCLUDED.jd_next,
			bad_read_count = EXCLUDED.bad_read_count,
			updated_at     = NOW()`,
		nightDate, f.Index, f.RAHours, f.DecDeg, f.Kind.String(), f.Survey.String(),
		f.ExposureSec, f.IntervalHours, f.NRequired, f.Filter,
		f.Doable, f.JDRise, f.JDSet, f.NDone, f.JDNext, f.BadReadCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert field: %w", err)
	}
	return nil
}

// FieldRow is a field roster row as persisted, independent of the in-memory
// field.Field (which also carries per-run scheduler-transient state that
// never needs to survive a process restart).
type FieldRow struct {
	NightDate     time.Time
	FieldIndex    int
	RAHours       float64
	DecDeg        float64
	Kind          string
	Survey        string
	ExposureSec   float64
	IntervalHours float64
	NRequired     int
	Filter        string
	Doable        bool
	JDRise        float64
	JDSet         float64
	NDone         int
	JDNext        float64
	BadReadCount  int
	UpdatedAt     time.Time
}

// GetFieldsForNight returns every roster row recorded for nightDate, ordered
// by roster position.
func (r *FieldRepository) GetFieldsForNight(ctx context.Context, nightDate time.Time) ([]FieldRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT night_date, field_index, ra_hours, dec_deg, kind, survey,
		        exposure_sec, interval_hours, nrequired, filter,
		        doable, jd_rise, jd_set, ndone, jd_next, bad_read_count, updated_at
		 FROM fields
		 WHERE night_date = $1
		 ORDER BY field_index ASC`,
		nightDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields: %w", err)
	}
	defer rows.Close()

	var out []FieldRow
	for rows.Next() {
		var f FieldRow
		if err := rows.Scan(
			&f.NightDate, &f.FieldIndex, &f.RAHours, &f.DecDeg, &f.Kind, &f.Survey,
			&f.ExposureSec, &f.IntervalHours, &f.NRequired, &f.Filter,
			&f.Doable, &f.JDRise, &f.JDSet, &f.NDone, &f.JDNext, &f.BadReadCount, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan field row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetField returns one roster row, or nil if it hasn't been persisted yet.
func (r *FieldRepository) GetField(ctx context.Context, nightDate time.Time, index int) (*FieldRow, error) {
	var f FieldRow
	err := r.db.QueryRowContext(ctx,
		`SELECT night_date, field_index, ra_hours, dec_deg, kind, survey,
		        exposure_sec, interval_hours, nrequired, filter,
		        doable, jd_rise, jd_set, ndone, jd_next, bad_read_count, updated_at
		 FROM fields
		 WHERE night_date = $1 AND field_index = $2`,
		nightDate, index,
	).Scan(
		&f.NightDate, &f.FieldIndex, &f.RAHours, &f.DecDeg, &f.Kind, &f.Survey,
		&f.ExposureSec, &f.IntervalHours, &f.NRequired, &f.Filter,
		&f.Doable, &f.JDRise, &f.JDSet, &f.NDone, &f.JDNext, &f.BadReadCount, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get field: %w", err)
	}
	return &f, nil
}

// CountDoable returns how many fields for nightDate are currently doable and
// not yet complete, for the monitor API's summary view.
func (r *FieldRepository) CountDoable(ctx context.Context, nightDate time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fields WHERE night_date = $1 AND doable = TRUE AND ndone < nrequired`,
		nightDate,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count doable fields: %w", err)
	}
	return n, nil
}
