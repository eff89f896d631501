// Package apierr provides a standardised error response envelope for the
// feagi-core debug HTTP surface (spec.md marks the full REST/OpenAPI layer
// out of scope; this only backs the /health and /debug/* routes).
//
// Every error response uses the same JSON shape:
//
//	{
//	  "ok":     false,
//	  "error":  "human-readable description",
//	  "code":   "MACHINE_READABLE_CODE",
//	  "status": 400
//	}
package apierr

import (
	"encoding/json"
	"net/http"
)

// Error codes — stable, machine-readable identifiers for the debug surface.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeUnknownSession   = "UNKNOWN_SESSION"
)

// Response is the standard error envelope returned to debug-surface clients.
type Response struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Code   string `json:"code"`
	Status int    `json:"status"`
}

// Write serialises an error Response and writes it to w with the appropriate
// HTTP status code. Content-Type is always set to application/json.
func Write(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		OK:     false,
		Error:  message,
		Code:   code,
		Status: status,
	})
}

// BadRequest writes a 400 response with the given code and message.
func BadRequest(w http.ResponseWriter, code, msg string) {
	Write(w, http.StatusBadRequest, code, msg)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, code, msg string) {
	Write(w, http.StatusNotFound, code, msg)
}

// MethodNotAllowed writes a 405 response.
func MethodNotAllowed(w http.ResponseWriter) {
	Write(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}

// Internal writes a 500 response.
func Internal(w http.ResponseWriter, msg string) {
	Write(w, http.StatusInternalServerError, CodeInternalError, msg)
}

// UnknownSession writes a 404 response for a session id the registry does
// not recognize.
func UnknownSession(w http.ResponseWriter, agentID string) {
	NotFound(w, CodeUnknownSession, "unknown session: "+agentID)
}
