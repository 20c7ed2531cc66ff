package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sakif/accountkit/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := New(config.Config{Port: 8080, DBPath: ":memory:", LogLevel: "error", BcryptCost: 4,
		AllowedOrigins: []string{"http://localhost:3000"}}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestNew_RejectsBadBcryptCost(t *testing.T) {
	_, err := New(config.Config{DBPath: ":memory:", BcryptCost: 99}, zap.NewNop())
	assert.Error(t, err)
}

func TestUserLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/api/users", `{"email":"test@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	decode(t, resp, &created)
	assert.Equal(t, "test@example.com", created["email"])
	assert.NotContains(t, created, "password")
	id := strconv.FormatInt(int64(created["id"].(float64)), 10)

	resp = do(t, http.MethodPost, ts.URL+"/api/users", `{"email":"test@example.com","password":"password456"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/users/"+id, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/users/lookup?email=test@example.com", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/api/credentials/verify", `{"email":"test@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var verify map[string]bool
	decode(t, resp, &verify)
	assert.True(t, verify["valid"])

	resp = do(t, http.MethodPut, ts.URL+"/api/users/"+id, `{"email":"new@example.com"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/users/count", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var count map[string]int64
	decode(t, resp, &count)
	assert.Equal(t, int64(1), count["count"])

	resp = do(t, http.MethodDelete, ts.URL+"/api/users/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/api/users/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/users", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []map[string]any
	decode(t, resp, &users)
	assert.Empty(t, users)
}

func TestCalculatorRoutes(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/calc/sum?a=2&b=3", http.StatusOK},
		{"/api/calc/divide?a=1&b=0", http.StatusBadRequest},
		{"/api/calc/factorial?n=5", http.StatusOK},
		{"/api/calc/factorial?n=-1", http.StatusBadRequest},
		{"/api/calc/modulo?a=1&b=2", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := do(t, http.MethodGet, ts.URL+tt.path, "")
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestResponsesAreJSON(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/api/users/count", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/users", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
