package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yuzvak/storefront-cart/internal/infrastructure/monitoring"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

type SnapshotRepository struct {
	db     *sql.DB
	ttl    time.Duration
	logger *logger.Logger
}

func NewSnapshotRepository(conn *Connection, ttl time.Duration, log *logger.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     conn.GetDB(),
		ttl:    ttl,
		logger: log,
	}
}

// Get returns the stored snapshot for key. Expired rows read as absent.
func (r *SnapshotRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `
		SELECT payload
		FROM cart_snapshots
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`

	var payload []byte
	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "cart_snapshots", query, key)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		r.logger.Error("Failed to read cart snapshot", "key", key, "error", err)
		return nil, false, err
	}

	return payload, true, nil
}

func (r *SnapshotRepository) Set(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO cart_snapshots (key, payload, updated_at, expires_at)
		VALUES ($1, $2, NOW(), $3)
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at
	`

	_, err := monitoring.InstrumentExec(ctx, r.db, "UPSERT", "cart_snapshots", query, key, string(data), r.expiresAt())
	if err != nil {
		r.logger.Error("Failed to write cart snapshot", "key", key, "error", err)
		return err
	}

	return nil
}

// PurgeExpired deletes snapshots past their expiry and reports how many went.
func (r *SnapshotRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM cart_snapshots WHERE expires_at IS NOT NULL AND expires_at <= NOW()`

	res, err := monitoring.InstrumentExec(ctx, r.db, "DELETE", "cart_snapshots", query)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *SnapshotRepository) expiresAt() sql.NullTime {
	if r.ttl <= 0 {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: time.Now().UTC().Add(r.ttl), Valid: true}
}
