package sumup

import (
	"log/slog"
	"time"
)

// ReaderStatus is the pairing state of a reader
type ReaderStatus string

const (
	ReaderStatusUnknown    ReaderStatus = "unknown"
	ReaderStatusProcessing ReaderStatus = "processing"
	ReaderStatusPaired     ReaderStatus = "paired"
	ReaderStatusExpired    ReaderStatus = "expired"
)

// CardType restricts which card a reader checkout accepts
type CardType string

const (
	CardTypeCredit CardType = "credit"
	CardTypeDebit  CardType = "debit"
)

// Device identifies the physical terminal behind a reader
type Device struct {
	Identifier string `json:"identifier"`
	Model      string `json:"model"`
}

// Reader is a card reader registered to a merchant
type Reader struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    ReaderStatus   `json:"status"`
	Device    Device         `json:"device"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ReaderList is the body of a list readers response
type ReaderList struct {
	Items []Reader `json:"items"`
}

// CreateReaderOptions holds the optional fields of a new reader.
// Zero values are left out of the request.
type CreateReaderOptions struct {
	Name string
	Meta map[string]any
}

// UpdateReaderOptions holds the reader fields to change.
// Zero values are left out of the request.
type UpdateReaderOptions struct {
	Name string
	Meta map[string]any
}

// Amount is a money value in minor units
type Amount struct {
	Value     int64  `json:"value"`
	Currency  string `json:"currency"`
	MinorUnit int    `json:"minor_unit"`
}

// IsZero reports whether no amount was given
func (a Amount) IsZero() bool {
	return a == Amount{}
}

// Affiliate identifies the integration that started a checkout
type Affiliate struct {
	AppID     string         `json:"app_id"`
	Key       string         `json:"key"`
	ForeignID string         `json:"foreign_transaction_id,omitempty"`
	Tags      map[string]any `json:"tags,omitempty"`
}

// CheckoutRequest describes a payment to start on a reader.
// TotalAmount is required; zero values of the other fields are left out of
// the request.
type CheckoutRequest struct {
	TotalAmount Amount
	Description string
	ReturnURL   string
	TipRates    []float64
	CardType    CardType
	Affiliate   *Affiliate
}

// CheckoutResult is the body of an accepted reader checkout
type CheckoutResult struct {
	Data struct {
		ClientTransactionID string `json:"client_transaction_id"`
	} `json:"data"`
}

// ClientConfig holds the configuration for the HTTP transport
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration

	// BreakerMaxFailures opens the circuit after that many consecutive
	// transport failures. Zero disables the breaker.
	BreakerMaxFailures uint32
	// BreakerTimeout is how long the circuit stays open
	BreakerTimeout time.Duration

	// Logger receives one debug record per request. Nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns a default client configuration
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "https://api.sumup.com",
		Timeout:        30 * time.Second,
		BreakerTimeout: 60 * time.Second,
	}
}
