package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Postgres is a Store backed by PostgreSQL
type Postgres struct {
	db *sql.DB
}

var _ Store = (*Postgres)(nil)

// NewPostgres opens a connection and checks it is alive
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Migrate creates all required tables
func (p *Postgres) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS readers (
		id TEXT NOT NULL,
		merchant_code VARCHAR(64) NOT NULL,
		name VARCHAR(500) NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL,
		device_identifier TEXT NOT NULL,
		device_model VARCHAR(64) NOT NULL,
		meta JSONB,
		online BOOLEAN NOT NULL DEFAULT TRUE,
		pending_checkout TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (merchant_code, id)
	);

	CREATE INDEX IF NOT EXISTS idx_readers_created ON readers(merchant_code, created_at);
	`

	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// CleanData truncates all tables without dropping them (for testing)
func (p *Postgres) CleanData() error {
	_, err := p.db.Exec(`TRUNCATE TABLE readers`)
	return err
}

const readerColumns = `id, merchant_code, name, status, device_identifier, device_model, meta, online, pending_checkout, created_at, updated_at`

// ListReaders returns the merchant's readers, oldest first
func (p *Postgres) ListReaders(ctx context.Context, merchantCode string) ([]Reader, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+readerColumns+` FROM readers WHERE merchant_code = $1 ORDER BY created_at, id`,
		merchantCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list readers: %w", err)
	}
	defer rows.Close()

	readers := []Reader{}
	for rows.Next() {
		r, err := scanReader(rows)
		if err != nil {
			return nil, err
		}
		readers = append(readers, *r)
	}
	return readers, rows.Err()
}

// CreateReader stores a new reader
func (p *Postgres) CreateReader(ctx context.Context, r *Reader) error {
	meta, err := encodeMeta(r.Meta)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO readers (`+readerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.ID, r.MerchantCode, r.Name, r.Status, r.Device.Identifier, r.Device.Model,
		meta, r.Online, r.PendingCheckout, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrReaderExists
		}
		return fmt.Errorf("failed to create reader: %w", err)
	}
	return nil
}

// GetReader returns a reader by ID
func (p *Postgres) GetReader(ctx context.Context, merchantCode, id string) (*Reader, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+readerColumns+` FROM readers WHERE merchant_code = $1 AND id = $2`,
		merchantCode, id)

	r, err := scanReader(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReaderNotFound
		}
		return nil, err
	}
	return r, nil
}

// UpdateReader replaces a stored reader
func (p *Postgres) UpdateReader(ctx context.Context, r *Reader) error {
	meta, err := encodeMeta(r.Meta)
	if err != nil {
		return err
	}

	res, err := p.db.ExecContext(ctx, `
		UPDATE readers
		SET name = $3, status = $4, device_identifier = $5, device_model = $6, meta = $7,
		    online = $8, pending_checkout = $9, updated_at = $10
		WHERE merchant_code = $1 AND id = $2
	`, r.MerchantCode, r.ID, r.Name, r.Status, r.Device.Identifier, r.Device.Model,
		meta, r.Online, r.PendingCheckout, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update reader: %w", err)
	}
	return expectOneRow(res)
}

// DeleteReader removes a reader
func (p *Postgres) DeleteReader(ctx context.Context, merchantCode, id string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM readers WHERE merchant_code = $1 AND id = $2`, merchantCode, id)
	if err != nil {
		return fmt.Errorf("failed to delete reader: %w", err)
	}
	return expectOneRow(res)
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	return p.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReader(row rowScanner) (*Reader, error) {
	var (
		r    Reader
		meta []byte
	)
	err := row.Scan(&r.ID, &r.MerchantCode, &r.Name, &r.Status, &r.Device.Identifier, &r.Device.Model,
		&meta, &r.Online, &r.PendingCheckout, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &r.Meta); err != nil {
			return nil, fmt.Errorf("failed to decode reader meta: %w", err)
		}
	}
	return &r, nil
}

func encodeMeta(meta map[string]any) (any, error) {
	if meta == nil {
		return nil, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reader meta: %w", err)
	}
	return string(raw), nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReaderNotFound
	}
	return nil
}
