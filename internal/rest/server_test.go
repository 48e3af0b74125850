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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/jeremyhahn/go-biovault/pkg/keyring"
	"github.com/jeremyhahn/go-biovault/pkg/storage"
	"github.com/jeremyhahn/go-biovault/pkg/vault"
)

type testServer struct {
	sim     *biometry.Simulator
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	sim := biometry.NewAvailableSimulator()
	kr, err := keyring.NewSoftwareKeyring(keyring.Config{
		Storage: storage.NewMemory(),
		KeySize: 2048,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kr.Close() })

	svc, err := vault.NewService(vault.ServiceConfig{
		Gate:    biometry.NewGate(sim, nil),
		Keyring: kr,
		Records: vault.NewRecordStore(storage.NewMemory()),
	})
	require.NoError(t, err)

	srv, err := NewServer(&Config{
		Service: svc,
		Version: "test",
	})
	require.NoError(t, err)

	return &testServer{sim: sim, handler: srv.Handler()}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
}

func TestServer_Status(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsAvailable)
	assert.Equal(t, "fingerprint", resp.BiometryType)
	assert.Empty(t, resp.ErrorKind)
}

func TestServer_StatusUnavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.sim.SetAvailability(biometry.Availability{
		Available: false,
		Kind:      biometry.KindBiometryNotEnrolled,
		Reason:    "no fingerprints enrolled",
	})

	rec := ts.do(t, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.IsAvailable)
	assert.Equal(t, "biometryNotEnrolled", resp.ErrorKind)
}

func TestServer_Authenticate(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/authenticate", AuthenticateRequest{
		Reason: "confirm your identity",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServer_AuthenticateRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.sim.Enqueue(biometry.Rejected("fingerprint not recognized"))

	rec := ts.do(t, http.MethodPost, "/api/v1/authenticate", AuthenticateRequest{
		Reason: "confirm your identity",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authenticationFailed", decodeError(t, rec).Kind)
}

func TestServer_AuthenticateLockout(t *testing.T) {
	ts := newTestServer(t)
	ts.sim.Enqueue(biometry.Errored(biometry.KindBiometryLockout, "too many attempts"))

	rec := ts.do(t, http.MethodPost, "/api/v1/authenticate", AuthenticateRequest{
		Reason: "confirm your identity",
	})
	require.Equal(t, http.StatusLocked, rec.Code)
	assert.Equal(t, "biometryLockout", decodeError(t, rec).Kind)
}

func TestServer_AuthenticateMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/authenticate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SecretLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// Store
	rec := ts.do(t, http.MethodPut, "/api/v1/data/com.example.app/token", SetDataRequest{
		Data: "hunter2",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Exists
	rec = ts.do(t, http.MethodGet, "/api/v1/data/com.example.app/token/exists", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var exists HasDataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exists))
	assert.True(t, exists.Exists)

	// Retrieve (prompts). The response echoes the slot alongside the data.
	rec = ts.do(t, http.MethodGet, "/api/v1/data/com.example.app/token?reason=unlock+your+token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got GetDataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "com.example.app", got.Domain)
	assert.Equal(t, "token", got.Name)
	assert.Equal(t, "hunter2", got.Data)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Contains(t, raw, "domain")
	require.Contains(t, raw, "name")
	assert.Equal(t, "hunter2", raw["data"])

	// Delete
	rec = ts.do(t, http.MethodDelete, "/api/v1/data/com.example.app/token", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Delete again (idempotent)
	rec = ts.do(t, http.MethodDelete, "/api/v1/data/com.example.app/token", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Exists now false
	rec = ts.do(t, http.MethodGet, "/api/v1/data/com.example.app/token/exists", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exists))
	assert.False(t, exists.Exists)
}

func TestServer_GetDataMissing(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/data/com.example.app/absent?reason=unlock", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "itemNotFound", decodeError(t, rec).Kind)
	// The prompt still fired before existence was revealed.
	assert.Equal(t, int64(1), ts.sim.PromptCount())
}

func TestServer_GetDataRejected(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/v1/data/com.example.app/token", SetDataRequest{
		Data: "gated",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	ts.sim.Enqueue(biometry.Rejected("not recognized"))
	rec = ts.do(t, http.MethodGet, "/api/v1/data/com.example.app/token?reason=unlock", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authenticationFailed", decodeError(t, rec).Kind)
}

func TestServer_GetDataMissingReason(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/data/com.example.app/token", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalidContext", decodeError(t, rec).Kind)
	assert.Equal(t, int64(0), ts.sim.PromptCount())
}

func TestServer_EscapedSlotComponents(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/v1/data/com.example.app/secret%2Fwith%2Fslashes", SetDataRequest{
		Data: "v",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/data/com.example.app/secret%2Fwith%2Fslashes/exists", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var exists HasDataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exists))
	assert.True(t, exists.Exists)
}

func TestServer_CorrelationHeader(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "req-123")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Correlation-ID"))

	// A missing inbound ID is generated.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestServer_ConfigValidation(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)

	_, err = NewServer(&Config{})
	assert.Error(t, err)
}

func TestServer_ListData(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/v1/data/com.example.app/token", SetDataRequest{Data: "a"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodPut, "/api/v1/data/com.example.app/password", SetDataRequest{Data: "b"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/data/com.example.app", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list ListDataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "com.example.app", list.Domain)
	assert.Equal(t, []string{"password", "token"}, list.Secrets)

	// Listing reveals names only and never prompts.
	assert.EqualValues(t, 0, ts.sim.PromptCount())
}

func TestServer_ListDataEmpty(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/data/com.example.none", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list ListDataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Secrets)
}
