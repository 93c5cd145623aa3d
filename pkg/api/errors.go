package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	errs "github.com/matzehuels/tensionlab/pkg/errors"
)

// Error is the JSON body of a failed request.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// badRequest reports malformed input, carrying the cause's code when it has one.
func badRequest(message string, cause error) *Error {
	e := &Error{Status: http.StatusBadRequest, Code: string(errs.ErrCodeInvalidInput), Message: message}
	if cause != nil {
		if code := errs.GetCode(cause); code != "" {
			e.Code = string(code)
		}
		e.Details = errs.UserMessage(cause)
	}
	return e
}

func notFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: string(errs.ErrCodeNotFound), Message: message}
}

func internal(message string, cause error) *Error {
	e := &Error{Status: http.StatusInternalServerError, Code: string(errs.ErrCodeInternal), Message: message}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, e *Error) {
	writeJSON(w, e.Status, e)
}
