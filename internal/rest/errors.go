// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-biovault.
//
// go-biovault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/jeremyhahn/go-biovault/pkg/vault"
)

// Common errors
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalError  = errors.New("internal server error")
)

// writeError writes an error response to the client.
func writeError(w http.ResponseWriter, err error, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error: err.Error(),
		Code:  statusCode,
	}
	var berr *biometry.Error
	if errors.As(err, &berr) {
		resp.Kind = string(berr.Kind)
		resp.Message = berr.Message
	}

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		log.Printf("Failed to encode error response: %v", encErr)
	}
}

// writeErrorWithMessage writes an error response with a custom message.
func writeErrorWithMessage(w http.ResponseWriter, err error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:   err.Error(),
		Message: message,
		Code:    statusCode,
	}

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		log.Printf("Failed to encode error response: %v", encErr)
	}
}

// mapErrorToStatusCode maps errors to HTTP status codes. Classified
// errors map by kind; everything else falls through the sentinel checks.
func mapErrorToStatusCode(err error) int {
	var berr *biometry.Error
	if errors.As(err, &berr) {
		switch berr.Kind {
		case biometry.KindItemNotFound:
			return http.StatusNotFound
		case biometry.KindAuthenticationFailed:
			return http.StatusUnauthorized
		case biometry.KindUserCancel, biometry.KindAppCancel,
			biometry.KindUserFallback, biometry.KindInvalidContext:
			return http.StatusBadRequest
		case biometry.KindSystemCancel:
			return http.StatusRequestTimeout
		case biometry.KindBiometryLockout:
			return http.StatusLocked
		case biometry.KindPasscodeNotSet, biometry.KindBiometryNotAvailable,
			biometry.KindBiometryNotEnrolled, biometry.KindNotInteractive,
			biometry.KindNotSupported:
			return http.StatusServiceUnavailable
		case biometry.KindDecryptionFailed:
			return http.StatusUnprocessableEntity
		default:
			return http.StatusInternalServerError
		}
	}

	switch {
	case errors.Is(err, vault.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, vault.ErrInvalidDomain),
		errors.Is(err, vault.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleError is a convenience function that maps the error to a status code
// and writes the error response.
func handleError(w http.ResponseWriter, err error) {
	statusCode := mapErrorToStatusCode(err)
	writeError(w, err, statusCode)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
		writeError(w, err, http.StatusInternalServerError)
	}
}
