// Package httpx holds the JSON response helpers shared by the handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/diewo77/go-stages/internal/apperr"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body := []byte("null")
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
		body = b
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, code string, details any) {
	JSON(w, status, ErrorResponse{Error: code, Details: details})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindTransport:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// KindFor is the inverse of StatusFor, used by clients decoding error bodies.
func KindFor(status int) apperr.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.KindValidation
	case http.StatusConflict:
		return apperr.KindConflict
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.KindAuthorization
	case http.StatusNotFound:
		return apperr.KindNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout, http.StatusTooManyRequests:
		return apperr.KindTransport
	}
	return apperr.KindInternal
}

// Error writes err as an ErrorResponse. message is the user-facing text;
// internal errors never leak their cause.
func Error(w http.ResponseWriter, err error, message string) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal(err)
	}
	resp := ErrorResponse{Error: string(e.Code), Message: message}
	if len(e.Fields) > 0 {
		resp.Details = e.Fields
	}
	JSON(w, StatusFor(e.Kind), resp)
}

// DecodeJSON decodes a bounded request body into v. Malformed bodies are
// validation errors.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation(map[string]string{"body": "required"})
		}
		return apperr.Validation(map[string]string{"body": "invalid_json"})
	}
	return nil
}
