package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/garageboard/internal/server/handlers"
)

func TestNewRateLimiter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	limiter := NewRateLimiter(10, time.Minute, logger)
	defer limiter.Stop()

	assert.Equal(t, 10, limiter.rate)
	assert.Equal(t, time.Minute, limiter.window)
	assert.NotNil(t, limiter.buckets)

	// Повторная остановка не паникует
	limiter.Stop()
}

func TestRateLimiter_Allow(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Requests over limit are denied", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute, logger)
		defer limiter.Stop()

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("operator:alice"), fmt.Sprintf("request %d should be allowed", i+1))
		}
		assert.False(t, limiter.Allow("operator:alice"), "request over limit should be denied")
	})

	t.Run("Different keys are tracked separately", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute, logger)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("operator:alice"))
		assert.False(t, limiter.Allow("operator:alice"))
		assert.True(t, limiter.Allow("operator:bob"))
	})

	t.Run("Tokens refill after window expires", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond, logger)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("k"))
		assert.True(t, limiter.Allow("k"))
		assert.False(t, limiter.Allow("k"), "should be rate limited")

		time.Sleep(60 * time.Millisecond)

		assert.True(t, limiter.Allow("k"), "tokens should be refilled")
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	limiter := NewRateLimiter(2, time.Minute, logger)
	defer limiter.Stop()

	handler := RateLimitMiddleware(limiter, ByOperator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func(operator string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/appointments/1/move", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		if operator != "" {
			req = req.WithContext(handlers.WithOperator(req.Context(), operator))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	// Операторы за одним NAT считаются раздельно
	assert.Equal(t, http.StatusOK, request("alice").Code)
	assert.Equal(t, http.StatusOK, request("alice").Code)
	assert.Equal(t, http.StatusOK, request("bob").Code)

	blocked := request("alice")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "application/json", blocked.Header().Get("Content-Type"))
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), "rate limit exceeded")

	// Без оператора используется IP
	assert.Equal(t, http.StatusOK, request("").Code)

	logOutput := logBuf.String()
	assert.Contains(t, logOutput, "Rate limit exceeded")
	assert.Contains(t, logOutput, "operator:alice")
	assert.Contains(t, logOutput, "/appointments/1/move")
}

func TestByClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		expectedIP string
	}{
		{
			name:       "X-Forwarded-For with single IP",
			remoteAddr: "10.0.0.1:12345",
			xff:        "192.168.1.1",
			expectedIP: "192.168.1.1",
		},
		{
			name:       "X-Forwarded-For with multiple IPs",
			remoteAddr: "10.0.0.1:12345",
			xff:        "192.168.1.1, 10.0.0.2, 10.0.0.3",
			expectedIP: "192.168.1.1",
		},
		{
			name:       "X-Real-IP when X-Forwarded-For is empty",
			remoteAddr: "10.0.0.1:12345",
			xRealIP:    "192.168.2.1",
			expectedIP: "192.168.2.1",
		},
		{
			name:       "RemoteAddr when headers are empty",
			remoteAddr: "192.168.3.1:54321",
			expectedIP: "192.168.3.1:54321",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/appointments/board", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			assert.Equal(t, tt.expectedIP, ByClientIP(req))
		})
	}
}

func TestRateLimiter_CleanupOldBuckets(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := NewRateLimiter(10, 100*time.Millisecond, logger)
	defer limiter.Stop()

	limiter.Allow("a")
	limiter.Allow("b")

	limiter.mu.RLock()
	assert.Len(t, limiter.buckets, 2)
	limiter.mu.RUnlock()

	// Ждем больше чем window * 2 для cleanup
	time.Sleep(450 * time.Millisecond)

	limiter.mu.RLock()
	assert.Empty(t, limiter.buckets, "old buckets should be cleaned up")
	limiter.mu.RUnlock()
}
