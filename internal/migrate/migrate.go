// Package migrate copies the embedded sqlite property table into postgres.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"property-search/internal/common/errors"
	"property-search/internal/common/logger"
	"property-search/internal/models"
	"property-search/internal/search/executor"
)

const DefaultBatchSize = 1000

const createTable = `CREATE TABLE IF NOT EXISTS properties_unique (
	id SERIAL PRIMARY KEY,
	address TEXT,
	owner_name TEXT,
	parcel_id TEXT,
	county TEXT,
	total_appraised_value DECIMAL(15,2),
	land_appraised_value DECIMAL(15,2),
	building_appraised_value DECIMAL(15,2),
	acres DECIMAL(10,4),
	last_sale_year INTEGER,
	sqft INTEGER,
	bedrooms INTEGER,
	bathrooms DECIMAL(3,1),
	coordinates TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// IndexedColumns get a btree index each; they back the search predicates.
var IndexedColumns = []string{
	"address",
	"parcel_id",
	"total_appraised_value",
	"bedrooms",
	"bathrooms",
	"sqft",
	"acres",
}

type Result struct {
	SourceRows int64
	Migrated   int64
	TargetRows int64
	Duration   time.Duration
}

type Migrator struct {
	source    *sql.DB
	target    *sql.DB
	batchSize int
	logger    logger.Logger
}

func New(source, target *sql.DB, batchSize int, log logger.Logger) *Migrator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Migrator{
		source:    source,
		target:    target,
		batchSize: batchSize,
		logger:    log.WithFields(map[string]interface{}{"component": "migrate"}),
	}
}

// Run creates the target schema, copies every row in batches and verifies
// the target count. Re-running appends rows again; the schema steps are
// idempotent.
func (m *Migrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if err := m.createSchema(ctx); err != nil {
		return nil, err
	}

	var total int64
	if err := m.source.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+models.PropertyTable).Scan(&total); err != nil {
		return nil, errors.NewMigrationFailedError("count_source", err)
	}
	m.logger.Info("starting migration", map[string]interface{}{
		"sourceRows": total,
		"batchSize":  m.batchSize,
	})

	var migrated int64
	for offset := int64(0); offset < total; offset += int64(m.batchSize) {
		batch, err := m.readBatch(ctx, offset)
		if err != nil {
			return nil, errors.NewMigrationFailedError("read_batch", err)
		}
		if len(batch) == 0 {
			break
		}
		if err := m.writeBatch(ctx, batch); err != nil {
			return nil, errors.NewMigrationFailedError("write_batch", err)
		}

		migrated += int64(len(batch))
		m.logger.Info("batch migrated", map[string]interface{}{
			"migrated": migrated,
			"total":    total,
			"percent":  migrated * 100 / total,
		})
	}

	var targetRows int64
	if err := m.target.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+models.PropertyTable).Scan(&targetRows); err != nil {
		return nil, errors.NewMigrationFailedError("verify", err)
	}

	result := &Result{
		SourceRows: total,
		Migrated:   migrated,
		TargetRows: targetRows,
		Duration:   time.Since(start),
	}
	m.logger.Info("migration completed", map[string]interface{}{
		"migrated":   result.Migrated,
		"targetRows": result.TargetRows,
		"durationMs": result.Duration.Milliseconds(),
	})
	return result, nil
}

func (m *Migrator) createSchema(ctx context.Context) error {
	if _, err := m.target.ExecContext(ctx, createTable); err != nil {
		return errors.NewMigrationFailedError("create_table", err)
	}
	for _, col := range IndexedColumns {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s ON %s(%s)", col, models.PropertyTable, col)
		if _, err := m.target.ExecContext(ctx, stmt); err != nil {
			return errors.NewMigrationFailedError("create_index", err)
		}
	}
	return nil
}

// readBatch pages by rowid so OFFSET is stable between batches.
func (m *Migrator) readBatch(ctx context.Context, offset int64) ([]models.Property, error) {
	rows, err := m.source.QueryContext(ctx,
		"SELECT "+strings.Join(models.PropertyColumns, ", ")+
			" FROM "+models.PropertyTable+" ORDER BY rowid LIMIT ? OFFSET ?",
		m.batchSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batch := make([]models.Property, 0, m.batchSize)
	for rows.Next() {
		p, err := executor.ScanProperty(rows)
		if err != nil {
			return nil, err
		}
		batch = append(batch, p)
	}
	return batch, rows.Err()
}

func (m *Migrator) writeBatch(ctx context.Context, batch []models.Property) error {
	stmt, args := insertStatement(batch)

	tx, err := m.target.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// insertStatement builds one multi-row INSERT with postgres placeholders.
func insertStatement(batch []models.Property) (string, []interface{}) {
	cols := len(models.PropertyColumns)

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(models.PropertyTable)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(models.PropertyColumns, ", "))
	sb.WriteString(") VALUES ")

	args := make([]interface{}, 0, len(batch)*cols)
	for i, p := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*cols + j + 1))
		}
		sb.WriteString(")")

		args = append(args,
			p.Address, p.OwnerName, p.ParcelID, p.County,
			p.TotalAppraisedValue, p.LandAppraisedValue, p.BuildingAppraisedValue,
			p.Acres, p.LastSaleYear, p.Sqft,
			p.Bedrooms, p.Bathrooms,
			p.Coordinates,
		)
	}
	return sb.String(), args
}
