package sandbox

import (
	"encoding/json"
	"net/http"
)

// FieldError is one entry of a field validation error list
type FieldError struct {
	ErrorCode string `json:"error_code"`
	Param     string `json:"param"`
	Message   string `json:"message,omitempty"`
}

// Field error codes
const (
	CodeMissing = "MISSING"
	CodeInvalid = "INVALID"
)

type readerErrorBody struct {
	Errors struct {
		Type   string `json:"type"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// respondJSON writes data as the whole body. A nil data writes no body.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	if data == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusUnauthorized, map[string]string{
		"code":    "unauthorized",
		"message": message,
	})
}

func respondOAuthError(w http.ResponseWriter, status int, code, description string) {
	respondJSON(w, status, map[string]string{
		"error":             code,
		"error_description": description,
	})
}

func respondFieldErrors(w http.ResponseWriter, errs []FieldError) {
	respondJSON(w, http.StatusBadRequest, errs)
}

func respondReaderError(w http.ResponseWriter, status int, errType, detail string) {
	var body readerErrorBody
	body.Errors.Type = errType
	body.Errors.Detail = detail
	respondJSON(w, status, body)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

func respondInternal(w http.ResponseWriter) {
	respondJSON(w, http.StatusInternalServerError, map[string]string{
		"error_message": "Internal server error",
	})
}
