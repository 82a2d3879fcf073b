package drafter_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fieldpilot/internal/drafter"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"wrapped canceled", fmt.Errorf("calling API: %w", context.Canceled), false},
		{"attempt timeout", context.DeadlineExceeded, true},
		{"malformed", drafter.Malformed("bad json"), false},
		{"rate limited", drafter.NewRateLimitError("claude", errors.New("429"), 5), true},
		{"server error", &drafter.StatusError{Provider: "openai", StatusCode: 503}, true},
		{"request timeout", &drafter.StatusError{Provider: "openai", StatusCode: 408}, true},
		{"bad request", &drafter.StatusError{Provider: "openai", StatusCode: 400}, false},
		{"unauthorized", &drafter.StatusError{Provider: "openai", StatusCode: 401}, false},
		{"network", errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, drafter.IsRetryable(tt.err))
		})
	}
}

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	err := drafter.NewRateLimitError("gemini", errors.New("429"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Equal(t, "gemini", err.Provider)
	assert.Contains(t, err.Error(), "gemini rate limited")
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, drafter.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, drafter.ParseRetryAfterHeader("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Equal(t, 30, drafter.ParseRetryAfterHeader("30"))
}

func TestStatusError_TruncatesBody(t *testing.T) {
	body := make([]byte, 1000)
	for i := range body {
		body[i] = 'x'
	}
	err := &drafter.StatusError{Provider: "claude", StatusCode: 500, Body: string(body)}
	assert.Less(t, len(err.Error()), 400)
	assert.Contains(t, err.Error(), "status 500")
}
