package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

const transportColumns = `id, host, port, from_address, username, password,
	auth_enabled, secure_transport_enabled, is_active, created_at, updated_at`

// SQLiteTransportStore implements TransportStore backed by SQLite.
type SQLiteTransportStore struct {
	db *sql.DB
}

// NewSQLiteTransportStore returns a new SQLiteTransportStore.
func NewSQLiteTransportStore(db *sql.DB) *SQLiteTransportStore {
	return &SQLiteTransportStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransport(row rowScanner) (*TransportConfig, error) {
	var c TransportConfig
	if err := row.Scan(&c.ID, &c.Host, &c.Port, &c.FromAddress, &c.Username, &c.Password,
		&c.AuthEnabled, &c.SecureTransportEnabled, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ActiveTransport returns the configuration flagged active.
func (s *SQLiteTransportStore) ActiveTransport(ctx context.Context) (*TransportConfig, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transportColumns+` FROM transport_configs WHERE is_active = 1 LIMIT 1`)
	c, err := scanTransport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveTransport
	}
	if err != nil {
		return nil, fmt.Errorf("querying active transport: %w", err)
	}
	return c, nil
}

// ListTransports returns all configurations ordered by id.
func (s *SQLiteTransportStore) ListTransports(ctx context.Context) (list []*TransportConfig, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transportColumns+` FROM transport_configs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying transports: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	for rows.Next() {
		c, err := scanTransport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transport row: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transport rows: %w", err)
	}
	return list, nil
}

// GetTransport returns the configuration with the given id.
func (s *SQLiteTransportStore) GetTransport(ctx context.Context, id int64) (*TransportConfig, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transportColumns+` FROM transport_configs WHERE id = ?`, id)
	c, err := scanTransport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying transport %d: %w", id, err)
	}
	return c, nil
}

// CreateTransport inserts a new configuration.
func (s *SQLiteTransportStore) CreateTransport(ctx context.Context, cfg *TransportConfig) error {
	now := time.Now().UTC()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if cfg.IsActive {
			if err := deactivateAll(ctx, tx); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO transport_configs (host, port, from_address, username, password,
				auth_enabled, secure_transport_enabled, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cfg.Host, cfg.Port, cfg.FromAddress, cfg.Username, cfg.Password,
			boolToInt(cfg.AuthEnabled), boolToInt(cfg.SecureTransportEnabled), boolToInt(cfg.IsActive),
			now, now,
		)
		if err != nil {
			return fmt.Errorf("inserting transport: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading transport id: %w", err)
		}
		cfg.ID = id
		cfg.CreatedAt = now
		cfg.UpdatedAt = now
		return nil
	})
}

// UpdateTransport overwrites the stored configuration cfg.ID.
func (s *SQLiteTransportStore) UpdateTransport(ctx context.Context, cfg *TransportConfig) error {
	now := time.Now().UTC()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if cfg.IsActive {
			if err := deactivateAll(ctx, tx); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE transport_configs
			SET host = ?, port = ?, from_address = ?, username = ?, password = ?,
				auth_enabled = ?, secure_transport_enabled = ?, is_active = ?, updated_at = ?
			WHERE id = ?`,
			cfg.Host, cfg.Port, cfg.FromAddress, cfg.Username, cfg.Password,
			boolToInt(cfg.AuthEnabled), boolToInt(cfg.SecureTransportEnabled), boolToInt(cfg.IsActive),
			now, cfg.ID,
		)
		if err != nil {
			return fmt.Errorf("updating transport %d: %w", cfg.ID, err)
		}
		if err := requireAffected(res, cfg.ID); err != nil {
			return err
		}
		cfg.UpdatedAt = now
		return nil
	})
}

// ActivateTransport deactivates every configuration and activates id.
func (s *SQLiteTransportStore) ActivateTransport(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := deactivateAll(ctx, tx); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE transport_configs SET is_active = 1, updated_at = ? WHERE id = ?`,
			time.Now().UTC(), id)
		if err != nil {
			return fmt.Errorf("activating transport %d: %w", id, err)
		}
		return requireAffected(res, id)
	})
}

// DeactivateTransport clears the active flag of id.
func (s *SQLiteTransportStore) DeactivateTransport(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transport_configs SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivating transport %d: %w", id, err)
	}
	return requireAffected(res, id)
}

// DeleteTransport removes id.
func (s *SQLiteTransportStore) DeleteTransport(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transport_configs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting transport %d: %w", id, err)
	}
	return requireAffected(res, id)
}

// CountTransports returns the number of stored configurations.
func (s *SQLiteTransportStore) CountTransports(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transport_configs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transports: %w", err)
	}
	return n, nil
}

func (s *SQLiteTransportStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("failed to rollback transport transaction: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func deactivateAll(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE transport_configs SET is_active = 0 WHERE is_active = 1`); err != nil {
		return fmt.Errorf("deactivating transports: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows for transport %d: %w", id, err)
	}
	if n == 0 {
		return ErrTransportNotFound
	}
	return nil
}
