package request

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotSet is the cause of a ConfigError when the setting is missing or empty.
var ErrNotSet = errors.New("not set")

// ConfigError - a setting required to create the client is missing or invalid.
// It is returned only on the client creation, never by Send.
type ConfigError struct {
	Setting string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf(`invalid configuration "%s": %s`, e.Setting, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DefinitionError - the request cannot be built from its definition, for example a query parameter
// cannot be converted to a string or the body cannot be encoded. Nothing has been sent.
type DefinitionError struct {
	Request string
	Err     error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf(`invalid request definition %s: %s`, e.Request, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// TransportError - the request could not be sent or the response could not be received,
// for example a DNS, TLS, timeout or connection reset error.
// Err is the unmodified error from the transport layer.
type TransportError struct {
	Method string
	URL    string // the access token is masked
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf(`request %s "%s" failed: %s`, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError - a successful (2xx) response body cannot be mapped to the result type.
type DecodeError struct {
	Msg string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Msg, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ClientError - the server responded with a 4xx status code.
// Body contains the raw response body, it is not parsed.
type ClientError struct {
	Method     string
	URL        string // the access token is masked
	StatusCode int
	Body       string
}

func (e *ClientError) Error() string {
	return statusErrorMessage("invalid request", e.Method, e.URL, e.StatusCode, e.Body)
}

// ServerError - the server responded with a 5xx status code,
// or with any other status which is neither a success nor a 4xx, e.g. a 3xx that was not followed.
// Body contains the raw response body, it is not parsed.
type ServerError struct {
	Method     string
	URL        string // the access token is masked
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return statusErrorMessage("server error", e.Method, e.URL, e.StatusCode, e.Body)
}

// DispatchError - the request has not been completed by a concurrent helper,
// for example the context was cancelled before the request was started.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("request was not dispatched: %s", e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code of a ClientError or ServerError.
func StatusCode(err error) (int, bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.StatusCode, true
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.StatusCode, true
	}
	return 0, false
}

func statusErrorMessage(prefix, method, url string, code int, body string) string {
	msg := fmt.Sprintf(`%s, method: "%s", url: "%s", httpCode: "%d %s"`, prefix, method, url, code, http.StatusText(code))
	if body != "" {
		msg += fmt.Sprintf(`, message: "%s"`, body)
	}
	return msg
}
