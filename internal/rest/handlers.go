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
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/jeremyhahn/go-biovault/pkg/vault"
)

// HandlerContext holds the vault service and shared handler state.
type HandlerContext struct {
	service *vault.Service
	version string
}

// NewHandlerContext creates a handler context for the vault service.
func NewHandlerContext(service *vault.Service, version string) *HandlerContext {
	return &HandlerContext{
		service: service,
		version: version,
	}
}

// HealthHandler reports service liveness.
func (h *HandlerContext) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{
		Status:  "ok",
		Version: h.version,
	}, http.StatusOK)
}

// StatusHandler reports biometric availability. No prompt is shown.
func (h *HandlerContext) StatusHandler(w http.ResponseWriter, r *http.Request) {
	status := h.service.CheckStatus(r.Context())
	writeJSON(w, toStatusResponse(status), http.StatusOK)
}

// AuthenticateHandler runs a standalone authentication prompt.
func (h *HandlerContext) AuthenticateHandler(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithMessage(w, ErrInvalidRequest, "malformed JSON body", http.StatusBadRequest)
		return
	}

	event := biometry.AuthenticationEvent{
		Reason:                req.Reason,
		AllowDeviceCredential: req.AllowDeviceCredential,
		CancelTitle:           req.CancelTitle,
		FallbackTitle:         req.FallbackTitle,
		Title:                 req.Title,
		Subtitle:              req.Subtitle,
		ConfirmationRequired:  req.ConfirmationRequired,
	}
	if err := h.service.Authenticate(r.Context(), event); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDataHandler authenticates the caller and returns the decrypted
// secret. The prompt presentation fields arrive as query parameters.
func (h *HandlerContext) GetDataHandler(w http.ResponseWriter, r *http.Request) {
	domain, name, err := slotFromURL(r)
	if err != nil {
		handleError(w, err)
		return
	}

	query := r.URL.Query()
	allowCredential, _ := strconv.ParseBool(query.Get("allow_device_credential"))
	confirmation, _ := strconv.ParseBool(query.Get("confirmation_required"))
	event := biometry.AuthenticationEvent{
		Reason:                query.Get("reason"),
		AllowDeviceCredential: allowCredential,
		CancelTitle:           query.Get("cancel_title"),
		FallbackTitle:         query.Get("fallback_title"),
		Title:                 query.Get("title"),
		Subtitle:              query.Get("subtitle"),
		ConfirmationRequired:  confirmation,
	}

	data, err := h.service.GetData(r.Context(), domain, name, event)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, GetDataResponse{Domain: domain, Name: name, Data: string(data)}, http.StatusOK)
}

// HasDataHandler reports whether a secret exists. No prompt is shown.
func (h *HandlerContext) HasDataHandler(w http.ResponseWriter, r *http.Request) {
	domain, name, err := slotFromURL(r)
	if err != nil {
		handleError(w, err)
		return
	}

	exists, err := h.service.HasData(r.Context(), domain, name)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, HasDataResponse{Exists: exists}, http.StatusOK)
}

// ListDataHandler returns the secret names stored under a domain. Names
// only, no content, no prompt.
func (h *HandlerContext) ListDataHandler(w http.ResponseWriter, r *http.Request) {
	domain, err := url.PathUnescape(chi.URLParam(r, "domain"))
	if err != nil || domain == "" {
		handleError(w, vault.ErrInvalidDomain)
		return
	}

	names, err := h.service.ListData(r.Context(), domain)
	if err != nil {
		handleError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, ListDataResponse{Domain: domain, Secrets: names}, http.StatusOK)
}

// SetDataHandler encrypts and stores a secret, overwriting any existing
// value in the slot.
func (h *HandlerContext) SetDataHandler(w http.ResponseWriter, r *http.Request) {
	domain, name, err := slotFromURL(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req SetDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithMessage(w, ErrInvalidRequest, "malformed JSON body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetData(r.Context(), domain, name, []byte(req.Data)); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveDataHandler deletes a secret. Idempotent: removing an absent
// secret returns success.
func (h *HandlerContext) RemoveDataHandler(w http.ResponseWriter, r *http.Request) {
	domain, name, err := slotFromURL(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.service.RemoveData(r.Context(), domain, name); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// slotFromURL extracts and unescapes the domain and name path parameters.
func slotFromURL(r *http.Request) (string, string, error) {
	domain, err := url.PathUnescape(chi.URLParam(r, "domain"))
	if err != nil || domain == "" {
		return "", "", vault.ErrInvalidDomain
	}
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		return "", "", vault.ErrInvalidName
	}
	return domain, name, nil
}

func toStatusResponse(status biometry.Status) StatusResponse {
	resp := StatusResponse{
		IsAvailable:  status.IsAvailable,
		BiometryType: status.BiometryType.String(),
	}
	resp.Error = status.Error
	resp.ErrorKind = string(status.ErrorCode)
	return resp
}
