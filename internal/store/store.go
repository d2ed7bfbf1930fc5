// Package store keeps the readers served by the sandbox
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrReaderNotFound = errors.New("reader not found")
	ErrReaderExists   = errors.New("reader already exists")
)

// ReaderStatus is the pairing state of a reader
type ReaderStatus string

const (
	ReaderStatusProcessing ReaderStatus = "processing"
	ReaderStatusPaired     ReaderStatus = "paired"
	ReaderStatusExpired    ReaderStatus = "expired"
)

// Device identifies the physical terminal behind a reader
type Device struct {
	Identifier string `json:"identifier"`
	Model      string `json:"model"`
}

// Reader is a card reader registered to a merchant.
// Online and PendingCheckout are simulated device state and never leave the
// sandbox.
type Reader struct {
	ID           string         `json:"id"`
	MerchantCode string         `json:"-"`
	Name         string         `json:"name"`
	Status       ReaderStatus   `json:"status"`
	Device       Device         `json:"device"`
	Meta         map[string]any `json:"meta,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	Online          bool   `json:"-"`
	PendingCheckout string `json:"-"`
}

// Store persists readers per merchant
type Store interface {
	ListReaders(ctx context.Context, merchantCode string) ([]Reader, error)
	CreateReader(ctx context.Context, reader *Reader) error
	GetReader(ctx context.Context, merchantCode, id string) (*Reader, error)
	UpdateReader(ctx context.Context, reader *Reader) error
	DeleteReader(ctx context.Context, merchantCode, id string) error
	Close() error
}
