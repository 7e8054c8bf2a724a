package clients

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoWithRetryReturnsClientErrorsAsIs(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := doWithRetry(&http.Client{Timeout: 5 * time.Second}, req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses are not retried")
}

func TestDoWithRetryRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := doWithRetry(&http.Client{Timeout: 5 * time.Second}, req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPostJSONRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, USER_AGENT, r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"echo": "pong"}`))
	}))
	defer server.Close()

	input := map[string]string{"ping": "ping"}
	var output struct {
		Echo string `json:"echo"`
	}

	headers := map[string]string{"Authorization": "Bearer token"}
	err := postJSON(&http.Client{Timeout: 5 * time.Second}, server.URL, headers, input, &output)
	require.NoError(t, err)
	assert.Equal(t, "pong", output.Echo)
}

func TestPostJSONNon200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad input", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	var output map[string]any
	err := postJSON(&http.Client{Timeout: 5 * time.Second}, server.URL, nil, map[string]string{}, &output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestGetPreviewTruncates(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}

	assert.Len(t, getPreview(long), 50)
	assert.Equal(t, "short", getPreview([]byte("short")))
}
