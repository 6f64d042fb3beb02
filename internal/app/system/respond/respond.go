// Package respond writes API responses in a uniform JSON envelope and maps
// domain errors to HTTP status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/chathub/internal/app/lifecycle"
)

// Envelope is the wire shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success envelope with the given payload.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data})
}

// Message writes a success envelope carrying only a human-readable message.
func Message(w http.ResponseWriter, status int, msg string) {
	write(w, status, Envelope{Success: true, Message: msg})
}

// Fail writes a failure envelope with the given message.
func Fail(w http.ResponseWriter, status int, msg string) {
	write(w, status, Envelope{Success: false, Message: msg})
}

// Error maps err to an HTTP status and writes a failure envelope. Domain
// errors carry their own user-facing message; anything else becomes a 500
// with a generic body, and log records the cause.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	var le *lifecycle.Error
	if errors.As(err, &le) {
		status := statusFor(le.Kind)
		if status == http.StatusInternalServerError {
			log.Error("internal error", zap.String("reason", le.Reason), zap.Error(err))
			Fail(w, status, "internal server error")
			return
		}
		Fail(w, status, le.Message)
		return
	}

	log.Error("unhandled error", zap.Error(err))
	Fail(w, http.StatusInternalServerError, "internal server error")
}

func statusFor(kind lifecycle.Kind) int {
	switch kind {
	case lifecycle.KindValidation:
		return http.StatusBadRequest
	case lifecycle.KindNotFound:
		return http.StatusNotFound
	case lifecycle.KindForbidden:
		return http.StatusForbidden
	case lifecycle.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
