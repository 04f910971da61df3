package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var historyColumns = []string{"id", "kind", "dialect", "input", "output", "error", "duration_ms", "created_at"}

func TestSQLiteStore_DriverErrors(t *testing.T) {
	driverErr := errors.New("disk I/O error")

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(s *SQLiteStore) error
		errMsg    string
	}{
		{
			name: "record insert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO history").WillReturnError(driverErr)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.Record(context.Background(), Entry{Kind: KindTranslate, Dialect: "quil", Input: "x"})
				return err
			},
			errMsg: "failed to record history entry",
		},
		{
			name: "list query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM history").WillReturnError(driverErr)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.List(context.Background(), Filter{})
				return err
			},
			errMsg: "failed to list history",
		},
		{
			name: "clear fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM history").WillReturnError(driverErr)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.Clear(context.Background())
				return err
			},
			errMsg: "failed to clear history",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mock)

			err = tt.run(NewSQLiteStoreWithDB(db, nil))
			require.Error(t, err)
			assert.ErrorIs(t, err, driverErr)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLiteStore_ListFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM history WHERE kind = \? AND dialect = \? ORDER BY created_at DESC, rowid DESC LIMIT \?`).
		WithArgs("evaluate", "decimal", 5).
		WillReturnRows(sqlmock.NewRows(historyColumns).
			AddRow("a1", "evaluate", "decimal", "1/3", "0.3333", "", int64(12), created))

	s := NewSQLiteStoreWithDB(db, nil)
	entries, err := s.List(context.Background(), Filter{Kind: KindEvaluate, Dialect: "decimal", Limit: 5})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, KindEvaluate, entries[0].Kind)
	assert.Equal(t, 12*time.Millisecond, entries[0].Duration)
	assert.Equal(t, created, entries[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM history WHERE id = ?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(historyColumns))

	_, err = NewSQLiteStoreWithDB(db, nil).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
