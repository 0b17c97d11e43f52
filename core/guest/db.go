package guest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresStorage keeps one row per guest cart. The payload column holds the
// full JSON record; writes are single-statement upserts, so the whole
// snapshot is replaced atomically.
type PostgresStorage struct {
	db *sqlx.DB
}

func NewPostgresStorage(db *sqlx.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) Load(ctx context.Context, cartID string) ([]byte, error) {
	const q = `SELECT payload FROM guest_carts WHERE cart_id = $1`

	var payload []byte
	if err := s.db.GetContext(ctx, &payload, q, cartID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("selecting guest cart[%s]: %w", cartID, err)
	}
	return payload, nil
}

func (s *PostgresStorage) Save(ctx context.Context, cartID string, payload []byte) error {
	const q = `
	INSERT INTO guest_carts (cart_id, payload, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (cart_id)
	DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, q, cartID, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("upserting guest cart[%s]: %w", cartID, err)
	}
	return nil
}

func (s *PostgresStorage) Erase(ctx context.Context, cartID string) error {
	const q = `DELETE FROM guest_carts WHERE cart_id = $1`

	if _, err := s.db.ExecContext(ctx, q, cartID); err != nil {
		return fmt.Errorf("deleting guest cart[%s]: %w", cartID, err)
	}
	return nil
}
