// internal/search/executor/executor.go
package executor

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "property-search/internal/common/errors"
	"property-search/internal/common/logger"
	"property-search/internal/models"
	"property-search/internal/search/query"
)

const operation = "search_properties"

// Executor runs compiled statements against the property table.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
	logger  logger.Logger
}

// New creates an executor. A zero timeout leaves the caller's deadline alone.
func New(db *sql.DB, timeout time.Duration, log logger.Logger) *Executor {
	return &Executor{
		db:      db,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "executor"}),
	}
}

// Query returns rows in database order. Any failure is a
// *errors.StandardError; nothing is retried.
func (e *Executor) Query(ctx context.Context, stmt query.Statement) ([]models.Property, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()

	rows, err := e.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, e.fail(ctx, err)
	}
	defer rows.Close()

	results := make([]models.Property, 0, stmt.Limit)
	for rows.Next() {
		p, err := ScanProperty(rows)
		if err != nil {
			return nil, e.fail(ctx, err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, e.fail(ctx, err)
	}

	e.logger.Debug("query executed", map[string]interface{}{
		"rowCount":        len(results),
		"executionTimeMs": time.Since(start).Milliseconds(),
	})

	return results, nil
}

func (e *Executor) fail(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(operation)
	}
	return apperrors.NewDataAccessError(operation, err)
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...interface{}) error
}

// ScanProperty reads one row laid out as models.PropertyColumns.
func ScanProperty(rows Scanner) (models.Property, error) {
	var (
		address, owner, parcel, county, coords       sql.NullString
		total, land, building, acres, saleYear, sqft sql.NullFloat64
		bedrooms, bathrooms                          sql.NullFloat64
	)

	if err := rows.Scan(
		&address, &owner, &parcel, &county,
		&total, &land, &building,
		&acres, &saleYear, &sqft,
		&bedrooms, &bathrooms,
		&coords,
	); err != nil {
		return models.Property{}, err
	}

	return models.Property{
		Address:                nullString(address),
		OwnerName:              nullString(owner),
		ParcelID:               nullString(parcel),
		County:                 nullString(county),
		TotalAppraisedValue:    nullFloat(total),
		LandAppraisedValue:     nullFloat(land),
		BuildingAppraisedValue: nullFloat(building),
		Acres:                  nullFloat(acres),
		LastSaleYear:           nullFloat(saleYear),
		Sqft:                   nullFloat(sqft),
		Bedrooms:               nullFloat(bedrooms),
		Bathrooms:              nullFloat(bathrooms),
		Coordinates:            nullString(coords),
	}, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
