// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Success responses may be any JSON shape (an alumno, a list, a session).
// Error responses always carry a single field:
//
//	{ "error": "<human-readable detail>" }
//
// so API consumers never have to guess the envelope.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard error envelope.
type Response struct {
	Error string `json:"error"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status
// code. Header() → WriteHeader() → body, in that order — once the status
// line is written, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard envelope.
func GeneralError(err error) Response {
	return Response{Error: err.Error()}
}

// ValidationError converts go-playground/validator field errors into a
// single readable message, one clause per failing field.
//
// Example output:
//
//	{ "error": "field Nombres is required, field Promedio must not be negative" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "gte":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must not be negative", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{Error: strings.Join(errMessages, ", ")}
}
