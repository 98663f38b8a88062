// Package handlers implements the HTTP endpoint handlers.
package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/rankforge/rankforge/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps an application error to its HTTP status and writes the
// structured body. Server-side errors are masked so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := apperrors.HTTPStatusForCode(code)

	message := err.Error()
	if apperrors.IsServerError(code) {
		message = apperrors.DefaultMessageForCode(code)
	}
	writeJSON(w, status, ErrorResponse{Code: code.String(), Message: message})
}

// decodeJSON parses a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "invalid request body")
	}
	return nil
}
