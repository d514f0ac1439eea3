package apiclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeError(t *testing.T) {
	err := decodeError(400, []byte(`{"error":"Not your turn"}`))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "Not your turn", apiErr.Message)

	err = decodeError(502, []byte("bad gateway"))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, backoffDuration(0))
	assert.Equal(t, 400*time.Millisecond, backoffDuration(3))
	assert.Equal(t, 3200*time.Millisecond, backoffDuration(42))
	assert.True(t, shouldRetryStatus(503))
	assert.False(t, shouldRetryStatus(404))
}

func TestNewTrimsBaseURL(t *testing.T) {
	c := New("http://localhost:8000/", WithTimeout(time.Second), WithRetry(2))
	assert.Equal(t, "http://localhost:8000", c.baseURL)
	assert.Equal(t, time.Second, c.defaultTimeout)
	assert.Equal(t, 2, c.retryMax)
}
