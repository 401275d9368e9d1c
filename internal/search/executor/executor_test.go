package executor

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "property-search/internal/common/errors"
	"property-search/internal/common/logger"
	"property-search/internal/models"
	"property-search/internal/search/filters"
	"property-search/internal/search/query"
)

// ==========================
// Test Helper Functions
// ==========================

func newMockExecutor(t *testing.T, timeout time.Duration) (*Executor, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(db, timeout, logger.NewTestLogger(t)), mock
}

func compile(raw string) query.Statement {
	values, _ := url.ParseQuery(raw)
	catalog := filters.Default()
	return query.Compile(catalog, query.ParseRequest(values, catalog), query.DialectPostgres,
		query.Options{Ceiling: 100, OwnerMatch: true})
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExecutor_Query_ScansRows(t *testing.T) {
	exec, mock := newMockExecutor(t, time.Second)
	stmt := compile("bedrooms=3&limit=2")

	rows := sqlmock.NewRows(models.PropertyColumns).
		AddRow("123 Main St", "SMITH JOHN", "14 0001 LL0011", "Fulton",
			250000.0, 50000.0, 200000.0, 0.25, int64(2019), int64(1800), int64(3), 2.5,
			"33.7,-84.4").
		AddRow("9 Elm St", nil, nil, nil,
			nil, nil, nil, nil, nil, nil, int64(4), nil,
			nil)

	mock.ExpectQuery(stmt.SQL).WithArgs(float64(3)).WillReturnRows(rows)

	got, err := exec.Query(context.Background(), stmt)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "123 Main St", *first.Address)
	assert.Equal(t, "Fulton", *first.County)
	assert.Equal(t, 250000.0, *first.TotalAppraisedValue)
	assert.Equal(t, 2019.0, *first.LastSaleYear)
	assert.Equal(t, 2.5, *first.Bathrooms)
	assert.Equal(t, "33.7,-84.4", *first.Coordinates)

	second := got[1]
	assert.Nil(t, second.OwnerName)
	assert.Nil(t, second.ParcelID)
	assert.Nil(t, second.Coordinates)
	assert.Nil(t, second.Sqft)
	assert.Equal(t, 4.0, *second.Bedrooms)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_Query_EmptyResult(t *testing.T) {
	exec, mock := newMockExecutor(t, 0)
	stmt := compile("")

	mock.ExpectQuery(stmt.SQL).WillReturnRows(sqlmock.NewRows(models.PropertyColumns))

	got, err := exec.Query(context.Background(), stmt)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ==========================
// Error Handling Tests
// ==========================

func TestExecutor_Query_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock sqlmock.Sqlmock, stmt query.Statement)
		wantCode apperrors.ErrorCode
	}{
		{
			name: "connection lost",
			setup: func(mock sqlmock.Sqlmock, stmt query.Statement) {
				mock.ExpectQuery(stmt.SQL).WillReturnError(sql.ErrConnDone)
			},
			wantCode: apperrors.ErrCodeDataAccessFailed,
		},
		{
			name: "row error",
			setup: func(mock sqlmock.Sqlmock, stmt query.Statement) {
				rows := sqlmock.NewRows(models.PropertyColumns).
					AddRow("1 A St", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil).
					RowError(0, errors.New("disk I/O error"))
				mock.ExpectQuery(stmt.SQL).WillReturnRows(rows)
			},
			wantCode: apperrors.ErrCodeDataAccessFailed,
		},
		{
			name: "scan type mismatch",
			setup: func(mock sqlmock.Sqlmock, stmt query.Statement) {
				rows := sqlmock.NewRows(models.PropertyColumns).
					AddRow("1 A St", nil, nil, nil, "lots", nil, nil, nil, nil, nil, nil, nil, nil)
				mock.ExpectQuery(stmt.SQL).WillReturnRows(rows)
			},
			wantCode: apperrors.ErrCodeDataAccessFailed,
		},
		{
			name: "deadline exceeded",
			setup: func(mock sqlmock.Sqlmock, stmt query.Statement) {
				mock.ExpectQuery(stmt.SQL).
					WillDelayFor(200 * time.Millisecond).
					WillReturnRows(sqlmock.NewRows(models.PropertyColumns))
			},
			wantCode: apperrors.ErrCodeQueryTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, mock := newMockExecutor(t, 20*time.Millisecond)
			stmt := compile("")
			tt.setup(mock, stmt)

			got, err := exec.Query(context.Background(), stmt)
			assert.Nil(t, got)
			require.Error(t, err)

			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}
