package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response wrapper for assertions.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *EnvelopeError  `json:"error"`
}

// EnvelopeError mirrors the error object inside the response wrapper.
type EnvelopeError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// JSONBody marshals v into a reader suitable as a request body.
func JSONBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal request body")
	return bytes.NewReader(data)
}

// PerformRequest sends one request through the handler and returns the
// recorded response. A JSON content type is set whenever a body is present.
func PerformRequest(t *testing.T, handler http.Handler, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope parses the recorded response body as a response envelope.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "Failed to parse response envelope: %s", w.Body.String())
	return env
}

// RequireSuccess asserts a successful envelope with the given status and
// returns the raw data payload for further decoding.
func RequireSuccess(t *testing.T, w *httptest.ResponseRecorder, wantStatus int) json.RawMessage {
	t.Helper()

	require.Equal(t, wantStatus, w.Code, "unexpected status: %s", w.Body.String())
	env := DecodeEnvelope(t, w)
	require.True(t, env.Success, "expected success envelope: %s", w.Body.String())
	require.Nil(t, env.Error)
	return env.Data
}

// RequireErrorCode asserts an error envelope with the given status and
// stable error code.
func RequireErrorCode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()

	require.Equal(t, wantStatus, w.Code, "unexpected status: %s", w.Body.String())
	env := DecodeEnvelope(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error, "expected error object: %s", w.Body.String())
	assert.Equal(t, wantCode, env.Error.Code)
}

// DecodeData unmarshals the envelope data payload into out.
func DecodeData(t *testing.T, data json.RawMessage, out interface{}) {
	t.Helper()

	require.NoError(t, json.Unmarshal(data, out), "Failed to decode data payload")
}
