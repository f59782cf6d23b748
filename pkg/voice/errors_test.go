package voice

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisError_Unwrap(t *testing.T) {
	err := NewDecodeError("truncated wav header")
	assert.True(t, errors.Is(err, ErrDecode))
	assert.False(t, errors.Is(err, ErrModelUnavailable))

	err = NewModelUnavailableError("sentiment", "connection refused")
	assert.True(t, errors.Is(err, ErrModelUnavailable))

	err = NewInsufficientDataError("0.2s of audio")
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestAnalysisError_Message(t *testing.T) {
	err := NewDecodeError("truncated wav header")
	assert.Equal(t, "[DECODE_FAILED] unable to decode audio input: truncated wav header", err.Error())

	bare := &AnalysisError{Code: "X", Message: "boom"}
	assert.Equal(t, "[X] boom", bare.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(NewDecodeError("bad payload")))
	assert.False(t, IsRetryable(fmt.Errorf("request: %w", ErrDecode)))
	assert.True(t, IsRetryable(NewModelUnavailableError("classifier", "down")))
	assert.True(t, IsRetryable(errors.New("something else")))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "DECODE_FAILED", ErrorCode(NewDecodeError("x")))
	assert.Equal(t, "MODEL_UNAVAILABLE", ErrorCode(NewModelUnavailableError("m", "x")))
	assert.Equal(t, "INSUFFICIENT_DATA", ErrorCode(NewInsufficientDataError("x")))
	assert.Equal(t, "UNKNOWN", ErrorCode(errors.New("plain")))
	wrapped := fmt.Errorf("outer: %w", NewDecodeError("inner"))
	assert.Equal(t, "DECODE_FAILED", ErrorCode(wrapped))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
	assert.Equal(t, 0.0, Clamp(-2, 0, 1))
	assert.Equal(t, 1.0, Clamp(7, 0, 1))
	assert.Equal(t, 1.0, Clamp01(1.2))
	assert.Equal(t, 0.0, Clamp01(-0.1))
}
