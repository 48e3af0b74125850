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

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// StatusResponse reports biometric availability.
type StatusResponse struct {
	IsAvailable  bool   `json:"isAvailable"`
	BiometryType string `json:"biometryType"`
	Error        string `json:"error,omitempty"`
	ErrorKind    string `json:"errorKind,omitempty"`
}

// AuthenticateRequest carries the prompt presentation fields for a
// standalone authentication.
type AuthenticateRequest struct {
	Reason                string `json:"reason"`
	AllowDeviceCredential bool   `json:"allowDeviceCredential,omitempty"`
	CancelTitle           string `json:"cancelTitle,omitempty"`
	FallbackTitle         string `json:"fallbackTitle,omitempty"`
	Title                 string `json:"title,omitempty"`
	Subtitle              string `json:"subtitle,omitempty"`
	ConfirmationRequired  bool   `json:"confirmationRequired,omitempty"`
}

// SetDataRequest carries a secret value to store. Data travels as a plain
// JSON string on the wire.
type SetDataRequest struct {
	Data string `json:"data"`
}

// GetDataResponse returns a decrypted secret along with the slot it was
// stored under, echoed back for confirmation.
type GetDataResponse struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
	Data   string `json:"data"`
}

// HasDataResponse reports secret existence.
type HasDataResponse struct {
	Exists bool `json:"exists"`
}

// ListDataResponse returns the secret names stored under a domain.
type ListDataResponse struct {
	Domain  string   `json:"domain"`
	Secrets []string `json:"secrets"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
