package move

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: time.Second},
		{attempt: 1, want: time.Second},
		{attempt: 2, want: 2 * time.Second},
		{attempt: 3, want: 4 * time.Second},
		{attempt: 4, want: 5 * time.Second},
		{attempt: 30, want: 5 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RetryDelay(tt.attempt, time.Second, 5*time.Second), "attempt %d", tt.attempt)
	}
}

func TestRetrySchedule(t *testing.T) {
	s := &retrySchedule{base: time.Second, max: 5 * time.Second}
	assert.Equal(t, time.Second, s.NextBackOff())
	assert.Equal(t, 2*time.Second, s.NextBackOff())
	s.Reset()
	assert.Equal(t, time.Second, s.NextBackOff())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		mutate func(*Config)
		name   string
	}{
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }},
		{name: "negative window", mutate: func(c *Config) { c.DoubleMoveWindow = -time.Second }},
		{name: "max below base", mutate: func(c *Config) { c.MaxRetryDelay = time.Millisecond }},
		{name: "zero pending", mutate: func(c *Config) { c.MaxPending = 0 }},
		{name: "zero per id", mutate: func(c *Config) { c.MaxConcurrentPerID = 0 }},
		{name: "negative retries", mutate: func(c *Config) { c.MaxAutoRetries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
