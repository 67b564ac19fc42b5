package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteStorage returns a migrated storage on a private in-memory database.
func newSQLiteStorage(t *testing.T) (*GormStorage, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	storage := NewGormStorage(db, zaptest.NewLogger(t))
	require.NoError(t, storage.Migrate(context.Background()))
	return storage, db
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&saleRecord{}).Count(&n).Error)
	return n
}

func TestGormStorage_ListAllEmpty(t *testing.T) {
	storage, _ := newSQLiteStorage(t)

	all, err := storage.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestGormStorage_PersistThenList(t *testing.T) {
	ctx := context.Background()
	storage, _ := newSQLiteStorage(t)

	candidate := newTestSale("Alice", "Math101", "49.99", NewDate(2024, time.January, 15))
	created, err := storage.Persist(ctx, candidate)
	require.NoError(t, err)

	assert.Equal(t, uint(1), created.ID)
	assert.Zero(t, candidate.ID, "caller's candidate must not be modified")

	all, err := storage.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Alice", *got.Name)
	assert.Equal(t, "Math101", *got.Course)
	assert.True(t, decimal.RequireFromString("49.99").Equal(*got.Price), "price %s", got.Price)
	assert.Equal(t, NewDate(2024, time.January, 15), *got.SaleDate)
}

func TestGormStorage_IDsAreDistinctAndOrdered(t *testing.T) {
	ctx := context.Background()
	storage, _ := newSQLiteStorage(t)

	names := []string{"Alice", "Bob", "Carol", "Dave"}
	for _, name := range names {
		_, err := storage.Persist(ctx, newTestSale(name, "React", "20.00", NewDate(2024, time.May, 2)))
		require.NoError(t, err)
	}

	all, err := storage.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(names))

	for i, s := range all {
		assert.Equal(t, names[i], *s.Name)
		if i > 0 {
			assert.Greater(t, s.ID, all[i-1].ID)
		}
	}
}

func TestGormStorage_PersistRejectsMissingFields(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(s *Sale)
	}{
		{name: "missing name", mutate: func(s *Sale) { s.Name = nil }},
		{name: "missing course", mutate: func(s *Sale) { s.Course = nil }},
		{name: "missing price", mutate: func(s *Sale) { s.Price = nil }},
		{name: "missing sale date", mutate: func(s *Sale) { s.SaleDate = nil }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			storage, db := newSQLiteStorage(t)

			_, err := storage.Persist(ctx, newTestSale("Alice", "Math101", "49.99", NewDate(2024, time.January, 15)))
			require.NoError(t, err)

			candidate := newTestSale("Bob", "Java", "10.00", NewDate(2024, time.January, 16))
			tc.mutate(candidate)

			sale, err := storage.Persist(ctx, candidate)
			assert.Nil(t, sale)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConstraintViolation), "got %v", err)
			assert.False(t, errors.Is(err, ErrStorageUnavailable))
			assert.Equal(t, int64(1), countRows(t, db))
		})
	}
}

func TestGormStorage_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	storage, db := newSQLiteStorage(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = storage.ListAll(ctx)
	assert.True(t, errors.Is(err, ErrStorageUnavailable), "got %v", err)

	_, err = storage.Persist(ctx, newTestSale("Alice", "Math101", "49.99", NewDate(2024, time.January, 15)))
	assert.True(t, errors.Is(err, ErrStorageUnavailable), "got %v", err)
}

func TestGormStorage_PriceRoundTrip(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		price   string
		invalid bool
	}{
		{name: "two decimals", price: "49.99"},
		{name: "one cent", price: "0.01"},
		{name: "whole number", price: "100"},
		{name: "largest value", price: "9999999999.99"},
		{name: "trailing zero", price: "15.50"},
		{name: "too many decimals", price: "49.999", invalid: true},
		{name: "high scale", price: "0.1234567890123456789", invalid: true},
		{name: "too many integer digits", price: "10000000000", invalid: true},
		{name: "large with cents", price: "12345678901234567.89", invalid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			storage, db := newSQLiteStorage(t)
			in := decimal.RequireFromString(tc.price)

			created, err := storage.Persist(ctx, newTestSale("Alice", "Math101", tc.price, NewDate(2024, time.January, 15)))
			if tc.invalid {
				assert.Nil(t, created)
				assert.True(t, errors.Is(err, ErrInvalidPrice), "got %v", err)
				assert.True(t, errors.Is(err, ErrConstraintViolation), "got %v", err)
				assert.Zero(t, countRows(t, db))
				return
			}
			require.NoError(t, err)

			all, err := storage.ListAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)

			assert.True(t, in.Equal(*created.Price), "persisted %s, want %s", created.Price, in)
			assert.True(t, in.Equal(*all[0].Price), "listed %s, want %s", all[0].Price, in)
			assert.Equal(t, created.Price.String(), all[0].Price.String())
		})
	}
}

func TestIsConstraintViolation_Postgres(t *testing.T) {
	testCases := []struct {
		code string
		want bool
	}{
		{code: "23502", want: true},
		{code: "23514", want: true},
		{code: "23505", want: false},
		{code: "08006", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: tc.code})
			assert.Equal(t, tc.want, isConstraintViolation(err))
		})
	}
}

func TestClassifyStorageError_NumericOverflowIsInvalidPrice(t *testing.T) {
	cause := &pgconn.PgError{Code: "22003", Message: "numeric field overflow"}

	err := classifyStorageError(fmt.Errorf("insert: %w", cause), "persist sale")

	assert.True(t, errors.Is(err, ErrInvalidPrice))
	assert.True(t, errors.Is(err, ErrConstraintViolation))
	assert.False(t, errors.Is(err, ErrStorageUnavailable))
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "22003", pgErr.Code)
}

func TestClassifyStorageError_KeepsCause(t *testing.T) {
	cause := &pgconn.PgError{Code: "23502", Message: "null value in column \"course\""}

	err := classifyStorageError(cause, "persist sale")

	assert.True(t, errors.Is(err, ErrConstraintViolation))
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23502", pgErr.Code)
	assert.Nil(t, classifyStorageError(nil, "noop"))
}
