package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Kind classifies a failed call
type Kind string

const (
	KindTimeout            Kind = "timeout"
	KindHTTP               Kind = "http-error"
	KindNetwork            Kind = "network-error"
	KindSessionInvalidated Kind = "session-invalidated"
	KindInternal           Kind = "internal"
)

const (
	timeoutMessage  = "Request timeout"
	networkMessage  = "Unable to connect to the server. Please check your connection and try again."
	internalMessage = "An error occurred. Please try again later."
	sessionMessage  = "Your admin session has expired. Please log in again."
)

// ErrSessionInvalidated is returned when an admin request was rejected with 401.
// The admin token has already been cleared; the call must not be retried.
var ErrSessionInvalidated = errors.New("admin session invalidated")

// ClientError represents a failed call to the storefront API.
// StatusCode 0 = no response received (timeout, network or internal error), >0 = HTTP response received
type ClientError struct {
	Kind       Kind
	StatusCode int
	// Message is suitable for showing to the end user
	Message string
	// ErrorCode is the server's error_code field, when present
	ErrorCode string
	// Endpoint is the request path and query
	Endpoint string
	Err      error
}

func (e *ClientError) Error() string {
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// LogMessage returns the detailed description of the error for logging
func (e *ClientError) LogMessage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", e.Kind)
	if e.Endpoint != "" {
		fmt.Fprintf(&b, " %s", e.Endpoint)
	}
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " status %d", e.StatusCode)
	}
	if e.ErrorCode != "" {
		fmt.Fprintf(&b, " (%s)", e.ErrorCode)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func newTimeoutError(endpoint string, err error) *ClientError {
	return &ClientError{
		Kind:     KindTimeout,
		Message:  timeoutMessage,
		Endpoint: endpoint,
		Err:      err,
	}
}

func newConnectionError(endpoint string, err error) *ClientError {
	return &ClientError{
		Kind:     KindNetwork,
		Message:  networkMessage,
		Endpoint: endpoint,
		Err:      err,
	}
}

// newInternalError is used for client side failures: supply the error and an explanation of what was being done when it occurred
func newInternalError(endpoint string, err error, while string) *ClientError {
	return &ClientError{
		Kind:     KindInternal,
		Message:  internalMessage,
		Endpoint: endpoint,
		Err:      fmt.Errorf("%w while %s", err, while),
	}
}

func newSessionInvalidatedError(endpoint string) *ClientError {
	return &ClientError{
		Kind:       KindSessionInvalidated,
		StatusCode: http.StatusUnauthorized,
		Message:    sessionMessage,
		Endpoint:   endpoint,
		Err:        ErrSessionInvalidated,
	}
}

// newAPIError builds the error for a non-2xx response.
//
// The message is the server's "message" field; if the body is not JSON the status text is used,
// and if neither is available "HTTP Error: <code>".
func newAPIError(endpoint string, res *http.Response, body []byte) *ClientError {
	var message, errorCode string

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		message = statusText(res)
	} else if fields, ok := parsed.(map[string]any); ok {
		message, _ = fields["message"].(string)
		errorCode, _ = fields["error_code"].(string)
	}

	if message == "" {
		message = fmt.Sprintf("HTTP Error: %d", res.StatusCode)
	}

	return &ClientError{
		Kind:       KindHTTP,
		StatusCode: res.StatusCode,
		Message:    message,
		ErrorCode:  errorCode,
		Endpoint:   endpoint,
	}
}

// statusText returns the reason phrase of the status line ("Not Found" for "404 Not Found")
func statusText(res *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
}

// KindOf returns the kind of a ClientError anywhere in err's chain, or "" if there is none
func KindOf(err error) Kind {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

func IsNetwork(err error) bool {
	return KindOf(err) == KindNetwork
}

func IsSessionInvalidated(err error) bool {
	return errors.Is(err, ErrSessionInvalidated)
}

// StatusCode returns the HTTP status of a ClientError, or 0 when no response was received
func StatusCode(err error) int {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.StatusCode
	}
	return 0
}
