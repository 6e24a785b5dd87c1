// Package errors defines the error values the API returns to clients. Every
// error carries the exact message written on the wire and the HTTP status to
// use; internal causes are logged server-side and never leak into responses.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error is used by handler functions to wrap errors, keeping the client-facing
// message and the HTTP status together. The optional cause holds internal
// detail for logging only.
type Error struct {
	Err        error // message returned to the caller
	HTTPstatus int   // HTTP status code to return
	cause      error // underlying error, logged but never written to the response
}

// MarshalJSON returns a JSON body containing only Err.Error(). The response
// body shape is part of the client contract, so nothing else is included.
//
// Example output: {"error":"Method not allowed"}
func (e Error) MarshalJSON() ([]byte, error) {
	// This anon struct is needed to actually include the error string,
	// since it wouldn't be marshaled otherwise. (json.Marshal doesn't call Err.Error())
	return json.Marshal(
		struct {
			Error string `json:"error"`
		}{
			Error: e.Err.Error(),
		})
}

// Error returns the client-facing message.
func (e Error) Error() string {
	return e.Err.Error()
}

// Write serializes the error as JSON and writes it with its HTTP status.
// Server errors are logged together with their internal cause.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn().Err(err).Msg("could not marshal error response")
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}

	if e.HTTPstatus >= 500 {
		evt := log.Error().Int("status", e.HTTPstatus).Str("message", e.Error())
		if e.cause != nil {
			evt = evt.AnErr("cause", e.cause)
		}
		evt.Msg("API error response")
	} else {
		log.Debug().Int("status", e.HTTPstatus).Str("message", e.Error()).Msg("API error response")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPstatus)
	if _, err := w.Write(msg); err != nil {
		log.Warn().Err(err).Msg("could not write error response")
	}
}

// WithCause returns a copy of Error carrying err as internal detail. The
// client-facing message stays untouched.
func (e Error) WithCause(err error) Error {
	return Error{
		Err:        e.Err,
		HTTPstatus: e.HTTPstatus,
		cause:      err,
	}
}

// InvalidParameter builds a 400 validation error whose formatted string is
// the exact message returned to the caller.
func InvalidParameter(format string, args ...any) Error {
	return Error{
		Err:        fmt.Errorf(format, args...),
		HTTPstatus: http.StatusBadRequest,
	}
}

// Internal wraps an otherwise unhandled error into a 500 response. The raw
// message is echoed to the caller, matching the behavior clients already
// depend on for provider failures.
func Internal(err error) Error {
	return Error{
		Err:        err,
		HTTPstatus: http.StatusInternalServerError,
	}
}
