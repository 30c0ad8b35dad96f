package handler

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error codes shared across the API surface; not-found codes are per entity
// and live at their call sites.
const (
	codeInvalidJSON    = "invalid_json"
	codeInvalidRequest = "invalid_request"
	codeInternalError  = "internal_error"
)

// Request bodies are small edit payloads; anything near this limit is
// malformed or hostile.
const maxBodyBytes = 1 << 20

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func invalidJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, codeInvalidJSON, "invalid json body")
}

func invalidRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, codeInvalidRequest, message)
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after json body")
	}
	return nil
}
