// Package sandbox serves a local fake of the SumUp readers API.
// It answers with the same error body shapes as the real API so the SDK can
// be exercised end to end.
package sandbox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/alexbotov/sumup/internal/store"
	"github.com/alexbotov/sumup/pkg/sumup"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxReaderNameLength = 500

// Server contains all HTTP handlers
type Server struct {
	store  store.Store
	tokens *TokenIssuer
	hub    *Hub
	lg     *slog.Logger

	// serializes read-modify-write of simulated device state
	deviceMu sync.Mutex
}

// New creates a new sandbox server
func New(st store.Store, tokens *TokenIssuer, hub *Hub, lg *slog.Logger) *Server {
	return &Server{
		store:  st,
		tokens: tokens,
		hub:    hub,
		lg:     lg,
	}
}

// HealthCheck handles GET /health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Token handles POST /token with the client-credentials grant
func (s *Server) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if grant := r.PostForm.Get("grant_type"); grant != "client_credentials" {
		respondOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "Only client_credentials is supported")
		return
	}

	for _, field := range []string{"client_id", "client_secret"} {
		if r.PostForm.Get(field) == "" {
			respondOAuthError(w, http.StatusBadRequest, CodeMissing, field)
			return
		}
	}

	token, err := s.tokens.Issue(r.PostForm.Get("client_id"), r.PostForm.Get("client_secret"))
	if err != nil {
		if errors.Is(err, ErrInvalidClient) {
			respondOAuthError(w, http.StatusBadRequest, "invalid_grant", "Invalid client credentials")
			return
		}
		s.lg.Error("failed to issue token", slog.Any("error", err))
		respondInternal(w)
		return
	}

	respondJSON(w, http.StatusOK, token)
}

// ListReaders handles GET /v0.1/merchants/{merchant_code}/readers
func (s *Server) ListReaders(w http.ResponseWriter, r *http.Request) {
	readers, err := s.store.ListReaders(r.Context(), mux.Vars(r)["merchant_code"])
	if err != nil {
		s.storeFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"items": readers})
}

type createReaderRequest struct {
	PairingCode string         `json:"pairing_code"`
	Name        string         `json:"name"`
	Meta        map[string]any `json:"meta"`
}

// CreateReader handles POST /v0.1/merchants/{merchant_code}/readers
func (s *Server) CreateReader(w http.ResponseWriter, r *http.Request) {
	var req createReaderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var errs []FieldError
	if req.PairingCode == "" {
		errs = append(errs, FieldError{ErrorCode: CodeMissing, Param: "pairing_code", Message: "Pairing code is required"})
	}
	errs = append(errs, validateName(req.Name)...)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	now := time.Now().UTC()
	reader := &store.Reader{
		ID:           newReaderID(),
		MerchantCode: mux.Vars(r)["merchant_code"],
		Name:         req.Name,
		Status:       store.ReaderStatusPaired,
		Device:       store.Device{Identifier: strings.ToUpper(req.PairingCode), Model: "solo"},
		Meta:         req.Meta,
		CreatedAt:    now,
		UpdatedAt:    now,
		Online:       true,
	}

	if err := s.store.CreateReader(r.Context(), reader); err != nil {
		s.storeFailure(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, reader)
}

// GetReader handles GET /v0.1/merchants/{merchant_code}/readers/{id}
func (s *Server) GetReader(w http.ResponseWriter, r *http.Request) {
	reader, ok := s.loadReader(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, reader)
}

// DeleteReader handles DELETE /v0.1/merchants/{merchant_code}/readers/{id}
func (s *Server) DeleteReader(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.store.DeleteReader(r.Context(), vars["merchant_code"], vars["id"]); err != nil {
		s.storeFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

type updateReaderRequest struct {
	Name *string        `json:"name"`
	Meta map[string]any `json:"meta"`
}

// UpdateReader handles PATCH /v0.1/merchants/{merchant_code}/readers/{id}
func (s *Server) UpdateReader(w http.ResponseWriter, r *http.Request) {
	var req updateReaderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != nil {
		if errs := validateName(*req.Name); len(errs) > 0 {
			respondFieldErrors(w, errs)
			return
		}
	}

	s.deviceMu.Lock()
	defer s.deviceMu.Unlock()

	reader, ok := s.loadReader(w, r)
	if !ok {
		return
	}

	if req.Name != nil {
		reader.Name = *req.Name
	}
	if req.Meta != nil {
		reader.Meta = req.Meta
	}
	reader.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateReader(r.Context(), reader); err != nil {
		s.storeFailure(w, err)
		return
	}

	s.hub.Publish(reader.ID, EventReaderUpdated, reader)
	respondJSON(w, http.StatusOK, reader)
}

type checkoutRequest struct {
	TotalAmount *sumup.Amount    `json:"total_amount"`
	Description string           `json:"description"`
	ReturnURL   string           `json:"return_url"`
	TipRates    []float64        `json:"tip_rates"`
	CardType    sumup.CardType   `json:"card_type"`
	Affiliate   *sumup.Affiliate `json:"affiliate"`
}

func (req *checkoutRequest) validate() []FieldError {
	var errs []FieldError
	switch {
	case req.TotalAmount == nil:
		errs = append(errs, FieldError{ErrorCode: CodeMissing, Param: "total_amount"})
	default:
		if req.TotalAmount.Value <= 0 {
			errs = append(errs, FieldError{ErrorCode: CodeInvalid, Param: "total_amount.value", Message: "Amount must be positive"})
		}
		if req.TotalAmount.Currency == "" {
			errs = append(errs, FieldError{ErrorCode: CodeMissing, Param: "total_amount.currency"})
		}
	}
	if req.CardType != "" && req.CardType != sumup.CardTypeCredit && req.CardType != sumup.CardTypeDebit {
		errs = append(errs, FieldError{ErrorCode: CodeInvalid, Param: "card_type"})
	}
	for _, rate := range req.TipRates {
		if rate < 0 || rate > 1 {
			errs = append(errs, FieldError{ErrorCode: CodeInvalid, Param: "tip_rates", Message: "Tip rates must be between 0 and 1"})
			break
		}
	}
	return errs
}

// CreateCheckout handles POST /v0.1/merchants/{merchant_code}/readers/{id}/checkout.
// The reader must be online and must not have a pending checkout.
func (s *Server) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	s.deviceMu.Lock()
	defer s.deviceMu.Unlock()

	reader, ok := s.loadReader(w, r)
	if !ok {
		return
	}

	if !reader.Online {
		respondReaderError(w, http.StatusUnprocessableEntity, string(sumup.ReaderNotConnected), "The reader is not connected")
		return
	}
	if reader.PendingCheckout != "" {
		respondReaderError(w, http.StatusUnprocessableEntity, string(sumup.ReaderBusy), "A checkout is already in progress on this reader")
		return
	}

	reader.PendingCheckout = uuid.NewString()
	reader.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateReader(r.Context(), reader); err != nil {
		s.storeFailure(w, err)
		return
	}

	s.lg.Info("checkout created",
		slog.String("reader_id", reader.ID),
		slog.String("client_transaction_id", reader.PendingCheckout),
		slog.String("client_id", clientID(r.Context())))

	s.hub.Publish(reader.ID, EventCheckoutCreated, map[string]interface{}{
		"client_transaction_id": reader.PendingCheckout,
		"total_amount":          req.TotalAmount,
		"description":           req.Description,
	})

	var result sumup.CheckoutResult
	result.Data.ClientTransactionID = reader.PendingCheckout
	respondJSON(w, http.StatusCreated, result)
}

// Terminate handles POST /v0.1/merchants/{merchant_code}/readers/{id}/terminate.
// It is accepted whether or not a checkout is pending.
func (s *Server) Terminate(w http.ResponseWriter, r *http.Request) {
	s.deviceMu.Lock()
	defer s.deviceMu.Unlock()

	reader, ok := s.loadReader(w, r)
	if !ok {
		return
	}

	if !reader.Online {
		respondReaderError(w, http.StatusUnprocessableEntity, string(sumup.ReaderNotConnected), "The reader is not connected")
		return
	}

	if reader.PendingCheckout != "" {
		terminated := reader.PendingCheckout
		reader.PendingCheckout = ""
		reader.UpdatedAt = time.Now().UTC()
		if err := s.store.UpdateReader(r.Context(), reader); err != nil {
			s.storeFailure(w, err)
			return
		}
		s.hub.Publish(reader.ID, EventCheckoutTerminated, map[string]string{
			"client_transaction_id": terminated,
		})
	}

	respondJSON(w, http.StatusAccepted, nil)
}

// SetConnection handles PUT /sandbox/merchants/{merchant_code}/readers/{id}/connection.
// It simulates the device going online or offline.
func (s *Server) SetConnection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Online *bool `json:"online"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Online == nil {
		respondFieldErrors(w, []FieldError{{ErrorCode: CodeMissing, Param: "online"}})
		return
	}

	s.deviceMu.Lock()
	defer s.deviceMu.Unlock()

	reader, ok := s.loadReader(w, r)
	if !ok {
		return
	}

	reader.Online = *req.Online
	if !reader.Online {
		reader.PendingCheckout = ""
	}
	reader.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateReader(r.Context(), reader); err != nil {
		s.storeFailure(w, err)
		return
	}

	s.hub.Publish(reader.ID, EventConnectionChanged, map[string]bool{"online": reader.Online})
	respondJSON(w, http.StatusOK, reader)
}

// ReaderEvents handles GET /v0.1/merchants/{merchant_code}/readers/{id}/events
// by upgrading to a websocket.
func (s *Server) ReaderEvents(w http.ResponseWriter, r *http.Request) {
	reader, ok := s.loadReader(w, r)
	if !ok {
		return
	}
	s.hub.Serve(w, r, reader.ID)
}

// loadReader fetches the reader named in the path, writing the error
// response itself when it cannot.
func (s *Server) loadReader(w http.ResponseWriter, r *http.Request) (*store.Reader, bool) {
	vars := mux.Vars(r)
	reader, err := s.store.GetReader(r.Context(), vars["merchant_code"], vars["id"])
	if err != nil {
		s.storeFailure(w, err)
		return nil, false
	}
	return reader, true
}

// storeFailure maps store errors to API responses. A missing reader is
// reported in the errors object shape the real API uses.
func (s *Server) storeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrReaderNotFound):
		respondReaderError(w, http.StatusNotFound, "NOT_FOUND", "Reader not found")
	case errors.Is(err, store.ErrReaderExists):
		respondMessage(w, http.StatusConflict, "Reader already exists")
	default:
		s.lg.Error("store failure", slog.Any("error", err))
		respondInternal(w)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func validateName(name string) []FieldError {
	if len(name) > maxReaderNameLength {
		return []FieldError{{ErrorCode: CodeInvalid, Param: "name", Message: "Name is too long"}}
	}
	return nil
}

func newReaderID() string {
	return "rdr_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
