package sumup

import (
	"context"
	"net/http"
	"net/url"
)

// Readers manages the card readers of a merchant
type Readers struct {
	client Sender
	token  *AccessToken
}

// NewReaders creates a readers service sending requests through client
func NewReaders(client Sender, token *AccessToken) *Readers {
	return &Readers{
		client: client,
		token:  token,
	}
}

// List returns all readers of the merchant
func (s *Readers) List(ctx context.Context, merchantCode string) (*Response, error) {
	if err := require(merchantCode, "merchant code"); err != nil {
		return nil, err
	}

	return s.send(ctx, http.MethodGet, readersPath(merchantCode), nil)
}

// Create links a new reader to the merchant account
func (s *Readers) Create(ctx context.Context, merchantCode, pairingCode string, opts *CreateReaderOptions) (*Response, error) {
	if err := require(merchantCode, "merchant code"); err != nil {
		return nil, err
	}
	if err := require(pairingCode, "pairing code"); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"pairing_code": pairingCode,
	}
	if opts != nil {
		if opts.Name != "" {
			payload["name"] = opts.Name
		}
		if opts.Meta != nil {
			payload["meta"] = opts.Meta
		}
	}

	return s.send(ctx, http.MethodPost, readersPath(merchantCode), payload)
}

// Get returns a single reader
func (s *Readers) Get(ctx context.Context, merchantCode, readerID string) (*Response, error) {
	if err := requireReader(merchantCode, readerID); err != nil {
		return nil, err
	}

	return s.send(ctx, http.MethodGet, readerPath(merchantCode, readerID), nil)
}

// Delete unlinks a reader from the merchant account
func (s *Readers) Delete(ctx context.Context, merchantCode, readerID string) (*Response, error) {
	if err := requireReader(merchantCode, readerID); err != nil {
		return nil, err
	}

	return s.send(ctx, http.MethodDelete, readerPath(merchantCode, readerID), nil)
}

// Update changes the name or metadata of a reader
func (s *Readers) Update(ctx context.Context, merchantCode, readerID string, opts *UpdateReaderOptions) (*Response, error) {
	if err := requireReader(merchantCode, readerID); err != nil {
		return nil, err
	}

	payload := map[string]any{}
	if opts != nil {
		if opts.Name != "" {
			payload["name"] = opts.Name
		}
		if opts.Meta != nil {
			payload["meta"] = opts.Meta
		}
	}

	return s.send(ctx, http.MethodPatch, readerPath(merchantCode, readerID), payload)
}

// CreateCheckout starts a payment on the reader.
// The call only queues the checkout; the device picks it up asynchronously.
// The reader must be online, and it rejects further checkouts until the
// pending one starts or is terminated.
func (s *Readers) CreateCheckout(ctx context.Context, merchantCode, readerID string, req CheckoutRequest) (*Response, error) {
	if err := requireReader(merchantCode, readerID); err != nil {
		return nil, err
	}
	if req.TotalAmount.IsZero() {
		return nil, &ArgumentError{Param: "total amount"}
	}

	payload := map[string]any{
		"total_amount": req.TotalAmount,
	}
	if req.Description != "" {
		payload["description"] = req.Description
	}
	if req.ReturnURL != "" {
		payload["return_url"] = req.ReturnURL
	}
	if req.TipRates != nil {
		payload["tip_rates"] = req.TipRates
	}
	if req.CardType != "" {
		payload["card_type"] = req.CardType
	}
	if req.Affiliate != nil {
		payload["affiliate"] = req.Affiliate
	}

	return s.send(ctx, http.MethodPost, readerPath(merchantCode, readerID)+"/checkout", payload)
}

// Terminate stops the transaction currently waiting on the reader.
// There is no confirmation that the device actually stopped.
func (s *Readers) Terminate(ctx context.Context, merchantCode, readerID string) (*Response, error) {
	if err := requireReader(merchantCode, readerID); err != nil {
		return nil, err
	}

	return s.send(ctx, http.MethodPost, readerPath(merchantCode, readerID)+"/terminate", map[string]any{})
}

// send runs the request through the transport and classifies the outcome.
// Transport errors are returned unchanged.
func (s *Readers) send(ctx context.Context, method, path string, payload any) (*Response, error) {
	headers := StandardHeaders()
	if s.token != nil {
		headers = mergeHeaders(headers, s.token.AuthHeaders())
	}

	resp, err := s.client.Send(ctx, method, path, payload, headers)
	if err != nil {
		return nil, err
	}

	return Classify(resp.HTTPResponseCode(), resp.Body())
}

func require(value, param string) error {
	if value == "" {
		return &ArgumentError{Param: param}
	}
	return nil
}

func requireReader(merchantCode, readerID string) error {
	if err := require(merchantCode, "merchant code"); err != nil {
		return err
	}
	return require(readerID, "id reader")
}

func readersPath(merchantCode string) string {
	return "/v0.1/merchants/" + url.PathEscape(merchantCode) + "/readers"
}

func readerPath(merchantCode, readerID string) string {
	return readersPath(merchantCode) + "/" + url.PathEscape(readerID)
}
