package sandbox

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRouter creates and configures the HTTP router
func (s *Server) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	r.Use(s.LoggingMiddleware)
	r.Use(s.RecoveryMiddleware)

	r.NotFoundHandler = http.HandlerFunc(NotFoundHandler)

	// Public routes
	r.HandleFunc("/health", s.HealthCheck).Methods("GET")
	r.HandleFunc("/token", s.Token).Methods("POST")

	// Readers API
	api := r.PathPrefix("/v0.1/merchants/{merchant_code}/readers").Subrouter()
	api.Use(s.AuthMiddleware)

	api.HandleFunc("", s.ListReaders).Methods("GET")
	api.HandleFunc("", s.CreateReader).Methods("POST")
	api.HandleFunc("/{id}", s.GetReader).Methods("GET")
	api.HandleFunc("/{id}", s.UpdateReader).Methods("PATCH")
	api.HandleFunc("/{id}", s.DeleteReader).Methods("DELETE")
	api.HandleFunc("/{id}/checkout", s.CreateCheckout).Methods("POST")
	api.HandleFunc("/{id}/terminate", s.Terminate).Methods("POST")
	api.HandleFunc("/{id}/events", s.ReaderEvents).Methods("GET")

	// Sandbox controls
	control := r.PathPrefix("/sandbox/merchants/{merchant_code}/readers").Subrouter()
	control.Use(s.AuthMiddleware)
	control.HandleFunc("/{id}/connection", s.SetConnection).Methods("PUT")

	return r
}

// NotFoundHandler handles 404 errors
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusNotFound, "Resource not found")
}
