// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list, stats…).
// Error responses always look like:
//
//	{ "status": "error", "error": "field firstName is required" }
//
// Validation failures additionally carry one message per field, so a form
// can show each message next to its input:
//
//	{ "status": "error", "error": "...", "fields": { "email": "..." } }
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts validator.FieldError values into a Response.
// Field names are whatever the validator reports; the student handlers
// register a tag-name func so these are the JSON names.
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string
	fields := make(map[string]string, len(errs))

	for _, e := range errs {
		var msg string
		switch e.ActualTag() {
		case "required", "notblank":
			msg = fmt.Sprintf("field %s is required", e.Field())
		case "email", "emailshape":
			msg = fmt.Sprintf("field %s must be a valid email address", e.Field())
		case "datetime":
			msg = fmt.Sprintf("field %s must be a date formatted %s", e.Field(), "YYYY-MM-DD")
		case "gte":
			msg = fmt.Sprintf("field %s must be at least %s", e.Field(), e.Param())
		case "lte":
			msg = fmt.Sprintf("field %s must be at most %s", e.Field(), e.Param())
		default:
			msg = fmt.Sprintf("field %s is invalid", e.Field())
		}
		errMessages = append(errMessages, msg)
		if _, seen := fields[e.Field()]; !seen {
			fields[e.Field()] = msg
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
		Fields: fields,
	}
}
