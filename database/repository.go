package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"police-dashboard/database/types"
)

// distinctColumns are the only columns the insert form builds dropdowns from
var distinctColumns = map[string]bool{
	"country_name": true,
	"driver_race":  true,
	"violation":    true,
}

// StopRepository handles database operations for traffic stops
type StopRepository struct {
	db *Database
}

// NewStopRepository creates a new stop repository
func NewStopRepository(db *Database) *StopRepository {
	return &StopRepository{db: db}
}

// InitSchema creates the police_stops table if it does not exist yet
func (r *StopRepository) InitSchema() error {
	if err := r.db.db.AutoMigrate(&StopRecord{}); err != nil {
		return WrapDBError("InitSchema", err)
	}
	return nil
}

// InsertStop appends a single stop row
func (r *StopRepository) InsertStop(ctx context.Context, stop *StopRecord) error {
	if err := r.db.db.WithContext(ctx).Create(stop).Error; err != nil {
		return WrapDBError("InsertStop", err)
	}
	return nil
}

// BulkInsert appends stops in batches of batchSize and returns the number of
// rows written. Batches already committed stay committed when a later one fails.
func (r *StopRepository) BulkInsert(ctx context.Context, stops []StopRecord, batchSize int) (int64, error) {
	if len(stops) == 0 {
		return 0, nil
	}
	result := r.db.db.WithContext(ctx).CreateInBatches(stops, batchSize)
	if result.Error != nil {
		return result.RowsAffected, WrapDBError("BulkInsert", result.Error)
	}
	return result.RowsAffected, nil
}

// GetStop retrieves one stop by its surrogate ID
func (r *StopRepository) GetStop(ctx context.Context, id int64) (*StopRecord, error) {
	var stop StopRecord
	err := r.db.db.WithContext(ctx).First(&stop, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundErrorWithID("stop", id)
		}
		return nil, WrapDBError("GetStop", err)
	}
	return &stop, nil
}

// CountStops returns the number of rows in police_stops
func (r *StopRepository) CountStops(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.db.WithContext(ctx).Model(&StopRecord{}).Count(&count).Error; err != nil {
		return 0, WrapDBError("CountStops", err)
	}
	return count, nil
}

// DistinctValues returns the non-null distinct values of a dropdown column
func (r *StopRepository) DistinctValues(ctx context.Context, column string) ([]string, error) {
	if !distinctColumns[column] {
		return nil, NewValidationErrorWithValue("column", "not a dropdown column", column)
	}

	var values []string
	query := fmt.Sprintf("SELECT DISTINCT %[1]s FROM police_stops WHERE %[1]s IS NOT NULL ORDER BY %[1]s", column)
	if err := r.db.db.WithContext(ctx).Raw(query).Scan(&values).Error; err != nil {
		return nil, WrapDBError("DistinctValues", err)
	}
	return values, nil
}

// DistinctOptions loads all three dropdown lists. A list whose query fails is
// left empty so the form still renders.
func (r *StopRepository) DistinctOptions(ctx context.Context) types.DistinctOptions {
	load := func(column string) []string {
		values, err := r.DistinctValues(ctx, column)
		if err != nil {
			return []string{}
		}
		return values
	}
	return types.DistinctOptions{
		Countries:  load("country_name"),
		Races:      load("driver_race"),
		Violations: load("violation"),
	}
}

// RunNamedQuery executes one entry of the Insights menu
func (r *StopRepository) RunNamedQuery(ctx context.Context, name string, overrides map[string]int) (*types.ResultSet, error) {
	q, err := FindNamedQuery(name)
	if err != nil {
		return nil, err
	}

	tx := r.db.db.WithContext(ctx)
	if args := q.Args(overrides); args != nil {
		tx = tx.Raw(q.SQL, args)
	} else {
		tx = tx.Raw(q.SQL)
	}

	rows, err := tx.Rows()
	if err != nil {
		return nil, WrapDBError("RunNamedQuery", err)
	}
	defer rows.Close()

	result, err := scanResultSet(rows)
	if err != nil {
		return nil, WrapDBError("RunNamedQuery", err)
	}
	return result, nil
}

// Report runs the country/violation summary behind the Reports tab
func (r *StopRepository) Report(ctx context.Context) ([]types.ReportRow, error) {
	var rows []types.ReportRow
	if err := r.db.db.WithContext(ctx).Raw(reportQuery).Scan(&rows).Error; err != nil {
		return nil, WrapDBError("Report", err)
	}
	return rows, nil
}

// Ping checks that the pooled connection is alive
func (r *StopRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// scanResultSet reads arbitrary rows into a ResultSet. Driver byte slices are
// turned into strings so results render and encode as text.
func scanResultSet(rows *sql.Rows) (*types.ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &types.ResultSet{Columns: columns, Rows: [][]interface{}{}}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}
