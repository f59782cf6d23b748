package voice

import (
	"errors"
	"fmt"
)

// Analysis error taxonomy.
//
// Decode failures reject the request. Insufficient data is a first-class
// outcome: detectors convert it to safe defaults and callers must not treat
// it as a failure. An unestablished baseline is not an error at all; it is
// reported through SessionDeviation.Established. Model outages degrade the
// pipeline but never crash it.
var (
	ErrDecode           = errors.New("audio decode failed")
	ErrInsufficientData = errors.New("not enough audio data for analysis")
	ErrModelUnavailable = errors.New("model backend unavailable")
	ErrStreamNotFound   = errors.New("stream not found")
	ErrEmptySignal      = errors.New("empty audio signal")
)

// AnalysisError carries a stable code alongside the message so callers can
// branch without string matching.
type AnalysisError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	wrapped error
}

func (e *AnalysisError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.wrapped
}

func NewDecodeError(details string) error {
	return &AnalysisError{
		Code:    "DECODE_FAILED",
		Message: "unable to decode audio input",
		Details: details,
		wrapped: ErrDecode,
	}
}

func NewModelUnavailableError(model, details string) error {
	return &AnalysisError{
		Code:    "MODEL_UNAVAILABLE",
		Message: fmt.Sprintf("model backend %s is unavailable", model),
		Details: details,
		wrapped: ErrModelUnavailable,
	}
}

func NewInsufficientDataError(details string) error {
	return &AnalysisError{
		Code:    "INSUFFICIENT_DATA",
		Message: "not enough audio data for analysis",
		Details: details,
		wrapped: ErrInsufficientData,
	}
}

// IsRetryable reports whether the caller may retry the request. Decode
// failures are permanent for a given payload; everything else that escapes
// the pipeline is transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrDecode)
}

// ErrorCode extracts the stable code, or "UNKNOWN" for foreign errors.
func ErrorCode(err error) string {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return "UNKNOWN"
}
