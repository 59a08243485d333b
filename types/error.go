package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Coordination error codes
const (
	ErrNoSuitableStrategy        ErrorCode = "NO_SUITABLE_STRATEGY"
	ErrStrategyRequirementsUnmet ErrorCode = "STRATEGY_REQUIREMENTS_UNMET"
	ErrAgentExecutionFailure     ErrorCode = "AGENT_EXECUTION_FAILURE"
	ErrInsufficientResponses     ErrorCode = "INSUFFICIENT_RESPONSES"
	ErrConsensusBuildingFailure  ErrorCode = "CONSENSUS_BUILDING_FAILURE"
	ErrSynthesisFailure          ErrorCode = "SYNTHESIS_FAILURE"
)

// Generic error codes
const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrRateLimited    ErrorCode = "RATE_LIMITED"
	ErrTimeout        ErrorCode = "TIMEOUT"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with code, message, and coordination metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Strategy   string    `json:"strategy,omitempty"`
	Stage      string    `json:"stage,omitempty"`
	Reasoning  string    `json:"reasoning,omitempty"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Strategy != "" {
		msg += fmt.Sprintf(" (strategy=%s)", e.Strategy)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error carrying the same code.
// This lets sentinel errors be matched with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithStrategy records the strategy that was being attempted.
func (e *Error) WithStrategy(strategy string) *Error {
	e.Strategy = strategy
	return e
}

// WithStage records the pipeline stage at which the error occurred.
func (e *Error) WithStage(stage string) *Error {
	e.Stage = stage
	return e
}

// WithReasoning attaches a human readable explanation.
func (e *Error) WithReasoning(reasoning string) *Error {
	e.Reasoning = reasoning
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// Fatal reports whether errors with this code abort a coordination call.
func (c ErrorCode) Fatal() bool {
	switch c {
	case ErrAgentExecutionFailure, ErrConsensusBuildingFailure:
		return false
	default:
		return true
	}
}

// GetErrorCode extracts the error code from an error chain.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsErrorCode reports whether any error in err's chain carries code.
func IsErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
