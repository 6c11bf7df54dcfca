package apperr

import "errors"

// Stable error codes shared between the tool registry, the weather
// provider adapter, and the MCP dispatch layer.
const (
	CodeInvalidParameter = "invalid_parameter"
	CodeMissingParameter = "missing_parameter"
	CodeUnknownTool      = "unknown_tool"
	CodeDuplicateTool    = "duplicate_tool"
	CodeInvalidRequest   = "invalid_request"
	CodeNotFound         = "not_found"
	CodeRateLimited      = "rate_limited"
	CodeUnavailable      = "unavailable"
	CodeInternal         = "internal"
)

// Error carries a machine-readable code alongside a human-readable message.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New produces an Error without an underlying cause.
func New(code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap produces an Error around an underlying cause.
func Wrap(code, message string, err error) error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from err, or CodeInternal when err carries none.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
