package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Schema of the snapshot table used by MySQLAdapter.
const CartSnapshotSchema = `
CREATE TABLE IF NOT EXISTS cart_snapshots (
	storage_key VARCHAR(191) NOT NULL PRIMARY KEY,
	payload     JSON         NOT NULL,
	updated_at  DATETIME(3)  NOT NULL
)`

type MySQLAdapter struct {
	db  *sql.DB
	now func() time.Time
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db, now: time.Now}
}

// Migrate creates the snapshot table if it does not exist.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, CartSnapshotSchema); err != nil {
		return fmt.Errorf("create cart_snapshots: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := m.db.QueryRowContext(ctx, `
		SELECT payload FROM cart_snapshots WHERE storage_key = ?`, key,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cart snapshot: %w", err)
	}
	return payload, true, nil
}

func (m *MySQLAdapter) Save(ctx context.Context, key string, data []byte) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (storage_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`,
		key, data, m.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert cart snapshot: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, key string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM cart_snapshots WHERE storage_key = ?`, key); err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}
