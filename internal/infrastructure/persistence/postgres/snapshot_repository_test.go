package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

func newMockRepo(t *testing.T, ttl time.Duration) (*SnapshotRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSnapshotRepository(NewConnectionFromDB(db), ttl, logger.NewNopLogger()), mock
}

func TestSnapshotRepository_Get(t *testing.T) {
	repo, mock := newMockRepo(t, 0)

	mock.ExpectQuery(`SELECT payload\s+FROM cart_snapshots`).
		WithArgs("sweet_cart:s1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`[{"id": "a"}]`)))

	data, found, err := repo.Get(context.Background(), "sweet_cart:s1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id": "a"}]`, string(data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_GetMissing(t *testing.T) {
	repo, mock := newMockRepo(t, 0)

	mock.ExpectQuery(`SELECT payload\s+FROM cart_snapshots`).
		WithArgs("sweet_cart:none").
		WillReturnError(sql.ErrNoRows)

	data, found, err := repo.Get(context.Background(), "sweet_cart:none")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_GetError(t *testing.T) {
	repo, mock := newMockRepo(t, 0)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`SELECT payload`).WillReturnError(boom)

	_, _, err := repo.Get(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
}

func TestSnapshotRepository_SetWithoutTTL(t *testing.T) {
	repo, mock := newMockRepo(t, 0)

	mock.ExpectExec(`INSERT INTO cart_snapshots .* ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("sweet_cart:s1", `[]`, sql.NullTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Set(context.Background(), "sweet_cart:s1", []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_SetWithTTL(t *testing.T) {
	repo, mock := newMockRepo(t, time.Hour)

	mock.ExpectExec(`INSERT INTO cart_snapshots`).
		WithArgs("k", `[]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Set(context.Background(), "k", []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())

	expires := repo.expiresAt()
	assert.True(t, expires.Valid)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires.Time, time.Minute)
}

func TestSnapshotRepository_SetError(t *testing.T) {
	repo, mock := newMockRepo(t, 0)
	boom := errors.New("read-only transaction")

	mock.ExpectExec(`INSERT INTO cart_snapshots`).WillReturnError(boom)

	assert.ErrorIs(t, repo.Set(context.Background(), "k", []byte(`[]`)), boom)
}

func TestSnapshotRepository_PurgeExpired(t *testing.T) {
	repo, mock := newMockRepo(t, time.Hour)

	mock.ExpectExec(`DELETE FROM cart_snapshots WHERE expires_at IS NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
