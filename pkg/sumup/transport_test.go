package sumup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func newTestClient(baseURL string) *HTTPClient {
	return NewHTTPClient(&ClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	})
}

func TestHTTPClient_SendJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v0.1/merchants/MC1/readers" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer abc" {
			t.Errorf("Expected Authorization header, got '%s'", r.Header.Get("Authorization"))
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		if payload["pairing_code"] != "PAIR1" {
			t.Errorf("Expected pairing_code PAIR1, got %v", payload["pairing_code"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"rdr_1","name":"desk"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Send(context.Background(), http.MethodPost, "/v0.1/merchants/MC1/readers",
		map[string]any{"pairing_code": "PAIR1"},
		map[string]string{"Content-Type": "application/json", "Authorization": "Bearer abc"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if resp.HTTPResponseCode() != http.StatusCreated {
		t.Errorf("Expected 201, got %d", resp.HTTPResponseCode())
	}

	var reader Reader
	if err := resp.Decode(&reader); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if reader.ID != "rdr_1" || reader.Name != "desk" {
		t.Errorf("Unexpected reader %+v", reader)
	}
}

func TestHTTPClient_NilPayloadSendsNoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) != 0 {
			t.Errorf("Expected empty body, got %q", raw)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Send(context.Background(), http.MethodGet, "/x", nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Body() != nil {
		t.Errorf("Expected nil body, got %v", resp.Body())
	}
}

func TestHTTPClient_ErrorStatusIsNotTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Send(context.Background(), http.MethodGet, "/x", nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.HTTPResponseCode() != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", resp.HTTPResponseCode())
	}
	if resp.Body() != "upstream unavailable" {
		t.Errorf("Expected raw text body, got %v", resp.Body())
	}
}

func TestHTTPClient_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Send(context.Background(), http.MethodGet, "/x", nil, nil)

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("Expected ConnectionError, got %T", err)
	}
	if connErr.Method != http.MethodGet || connErr.Path != "/x" {
		t.Errorf("Unexpected ConnectionError %+v", connErr)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("Connection errors must not look like classified errors")
	}
}

func TestHTTPClient_Breaker(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewHTTPClient(&ClientConfig{
		BaseURL:            url,
		Timeout:            time.Second,
		BreakerMaxFailures: 2,
		BreakerTimeout:     time.Minute,
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	for i := 0; i < 2; i++ {
		if _, err := client.Send(context.Background(), http.MethodGet, "/x", nil, nil); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	_, err := client.Send(context.Background(), http.MethodGet, "/x", nil, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Expected open breaker, got %v", err)
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Errorf("Expected open breaker to be a ConnectionError, got %T", err)
	}
}

func TestReaders_OverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`[{"error_code":"MISSING","param":"pairing_code"},{"error_code":"INVALID","param":"name"}]`))
	}))
	defer server.Close()

	readers := NewReaders(newTestClient(server.URL), NewAccessToken("abc", "Bearer", 60))
	_, err := readers.Create(context.Background(), "MC1", "PAIR1", nil)

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if len(valErr.Fields) != 2 || valErr.Fields[0] != "pairing_code" || valErr.Fields[1] != "name" {
		t.Errorf("Unexpected fields %v", valErr.Fields)
	}
	if valErr.HTTPStatus != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", valErr.HTTPStatus)
	}
}

func TestNewHTTPClient_LeavesConfigUntouched(t *testing.T) {
	config := &ClientConfig{BaseURL: "http://localhost"}
	NewHTTPClient(config)

	if config.Timeout != 0 {
		t.Errorf("Expected caller's timeout to stay 0, got %v", config.Timeout)
	}
}
