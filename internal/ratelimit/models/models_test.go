package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPKey(t *testing.T) {
	assert.Equal(t, "rl:contact:ip:10.0.0.1", IPKey("contact", "10.0.0.1"))
	assert.Equal(t, "rl:contact:ip:__1", IPKey("contact", "::1"))
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, RetryAfterSeconds(now, now))
	assert.Equal(t, 2, RetryAfterSeconds(now, now.Add(1500*time.Millisecond)))
	assert.Equal(t, 3600, RetryAfterSeconds(now, now.Add(time.Hour)))
}
