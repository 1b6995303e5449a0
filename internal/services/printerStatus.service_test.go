package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filadex/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedTestToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": expiry.Unix(),
		"sub": "tester",
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newVendorStub(t *testing.T, token string, tasks vendorTaskList) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/user-service/user/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_ = json.NewEncoder(w).Encode(vendorLoginResponse{AccessToken: token})
	})
	mux.HandleFunc("/v1/user-service/my/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(tasks)
	})
	return httptest.NewServer(mux)
}

func TestPollTasksCountsFinishedOnly(t *testing.T) {
	token := signedTestToken(t, time.Now().Add(time.Hour))
	server := newVendorStub(t, token, vendorTaskList{
		Total: 4,
		Hits: []vendorTask{
			{ID: 1, Title: "benchy", Status: taskStatusFinished, Weight: 12.5},
			{ID: 2, Title: "vase", Status: taskStatusFinished, Weight: 40},
			{ID: 3, Title: "in progress", Status: 2},
			{ID: 4, Title: "failed", Status: 3},
		},
	})
	defer server.Close()

	service := NewPrinterStatusService(config.Config{
		PrinterVendorBaseURL: server.URL,
		PrinterVendorAccount: "user@example.com",
	})

	require.True(t, service.Enabled())
	require.NoError(t, service.PollTasks(context.Background()))

	assert.Equal(t, 2, service.ObservedPrintCount())
	assert.False(t, service.LastPolledAt().IsZero())
}

func TestPollTasksDisabledIsNoOp(t *testing.T) {
	service := NewPrinterStatusService(config.Config{})

	assert.False(t, service.Enabled())
	assert.NoError(t, service.PollTasks(context.Background()))
	assert.Equal(t, 0, service.ObservedPrintCount())
	assert.True(t, service.LastPolledAt().IsZero())
}

func TestTokenExpiryFromJWT(t *testing.T) {
	service := NewPrinterStatusService(config.Config{})

	expiry := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token := signedTestToken(t, expiry)

	assert.Equal(t, expiry.Unix(), service.tokenExpiryFromJWT(token).Unix())

	// Opaque tokens fall back to a conservative lifetime
	fallback := service.tokenExpiryFromJWT("not-a-jwt")
	assert.True(t, fallback.After(time.Now()))
	assert.True(t, fallback.Before(time.Now().Add(time.Hour)))
}

func TestEnsureTokenReusesUnexpiredToken(t *testing.T) {
	token := signedTestToken(t, time.Now().Add(time.Hour))

	logins := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/user-service/user/login", func(w http.ResponseWriter, r *http.Request) {
		logins++
		_ = json.NewEncoder(w).Encode(vendorLoginResponse{AccessToken: token})
	})
	mux.HandleFunc("/v1/user-service/my/tasks", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(vendorTaskList{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	service := NewPrinterStatusService(config.Config{
		PrinterVendorBaseURL: server.URL,
		PrinterVendorAccount: "user@example.com",
	})

	require.NoError(t, service.PollTasks(context.Background()))
	require.NoError(t, service.PollTasks(context.Background()))

	assert.Equal(t, 1, logins)
}
