package errors

import (
	"context"
	"errors"
	"net"
)

// ErrorSeverity indicates the severity of an error for UI presentation.
type ErrorSeverity int

const (
	SeverityInfo    ErrorSeverity = iota // User should know, not blocking
	SeverityWarning                      // Degraded functionality
	SeverityError                        // Operation failed, can retry
	SeverityFatal                        // Application must exit
)

// UIError wraps an error with UI-friendly presentation metadata.
type UIError struct {
	Err      error
	Severity ErrorSeverity
	Title    string   // Short user-facing title
	Message  string   // Detailed user-facing message
	Recovery []string // Suggested actions (bullet points)
	Details  string   // Technical details (collapsed by default)
}

func (e UIError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Title
}

// Unwrap returns the underlying error.
func (e UIError) Unwrap() error {
	return e.Err
}

// ClassifyError converts a standard error into a UIError with appropriate
// severity, title, message, and recovery suggestions.
func ClassifyError(err error) *UIError {
	if err == nil {
		return nil
	}

	// Check if already a UIError
	var uiErr *UIError
	if errors.As(err, &uiErr) {
		return uiErr
	}

	switch {
	case errors.Is(err, ErrInvalidURL), errors.Is(err, ErrUnsupportedURL):
		return &UIError{
			Err:      err,
			Severity: SeverityWarning,
			Title:    "Invalid URL",
			Message:  err.Error(),
			Recovery: []string{"Include the scheme, e.g. https://example.com"},
		}

	case errors.Is(err, ErrNoURL):
		return &UIError{
			Err:      err,
			Severity: SeverityInfo,
			Title:    "Nothing to Send",
			Message:  "Type a URL first.",
		}

	case errors.Is(err, ErrRequestTimeout), errors.Is(err, context.DeadlineExceeded):
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Request Timeout",
			Message:  "The server took too long to respond.",
			Recovery: []string{"Try again", "Increase the timeout setting"},
			Details:  err.Error(),
		}

	case errors.Is(err, context.Canceled):
		return &UIError{
			Err:      err,
			Severity: SeverityInfo,
			Title:    "Request Cancelled",
			Message:  "The operation was cancelled.",
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Host Not Found",
			Message:  "The host name could not be resolved.",
			Recovery: []string{"Check the spelling of the host", "Check your network connection"},
			Details:  err.Error(),
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) || errors.Is(err, ErrConnectionFailed) {
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Connection Failed",
			Message:  "Unable to connect to the server.",
			Recovery: []string{
				"Check that the server is running",
				"Verify the host and port",
				"Check your network connection",
			},
			Details: err.Error(),
		}
	}

	// Default fallback for unknown errors
	return &UIError{
		Err:      err,
		Severity: SeverityError,
		Title:    "Unexpected Error",
		Message:  err.Error(),
		Recovery: []string{"Try again"},
		Details:  err.Error(),
	}
}
