package request_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iexkit/go-client/pkg/request"
)

func TestClientError(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("wrapped: %w", &request.ClientError{
		Method:     http.MethodGet,
		URL:        "https://example.com/stock/FOO/dividends/1y?token=****",
		StatusCode: http.StatusNotFound,
		Body:       "not found",
	})
	assert.Equal(t, `wrapped: invalid request, method: "GET", url: "https://example.com/stock/FOO/dividends/1y?token=****", httpCode: "404 Not Found", message: "not found"`, err.Error())

	code, ok := request.StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)

	var clientErr *request.ClientError
	assert.True(t, errors.As(err, &clientErr))
	var serverErr *request.ServerError
	assert.False(t, errors.As(err, &serverErr))
}

func TestServerError(t *testing.T) {
	t.Parallel()
	err := &request.ServerError{
		Method:     http.MethodGet,
		URL:        "https://example.com/status?token=****",
		StatusCode: http.StatusServiceUnavailable,
	}
	assert.Equal(t, `server error, method: "GET", url: "https://example.com/status?token=****", httpCode: "503 Service Unavailable"`, err.Error())

	code, ok := request.StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestStatusCode_OtherErrors(t *testing.T) {
	t.Parallel()
	for _, err := range []error{
		nil,
		errors.New("some error"),
		&request.TransportError{Method: http.MethodGet, URL: "https://example.com", Err: context.DeadlineExceeded},
		&request.DefinitionError{Request: `GET "items"`, Err: errors.New("invalid")},
		&request.DecodeError{Msg: "cannot decode", Err: errors.New("unexpected EOF")},
	} {
		_, ok := request.StatusCode(err)
		assert.False(t, ok)
	}
}

func TestDefinitionError(t *testing.T) {
	t.Parallel()
	cause := errors.New(`query parameter "token" is reserved for the access token`)
	err := &request.DefinitionError{Request: `GET "stock/AAPL/quote"`, Err: cause}
	assert.Equal(t, `invalid request definition GET "stock/AAPL/quote": query parameter "token" is reserved for the access token`, err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestTransportError(t *testing.T) {
	t.Parallel()
	err := &request.TransportError{Method: http.MethodGet, URL: "https://example.com/status?token=****", Err: context.Canceled}
	assert.Equal(t, `request GET "https://example.com/status?token=****" failed: context canceled`, err.Error())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeError(t *testing.T) {
	t.Parallel()
	cause := errors.New("unexpected end of JSON input")
	err := &request.DecodeError{Msg: `cannot decode response of GET "https://example.com/status?token=****" to "map[string]string"`, Err: cause}
	assert.Equal(t, `cannot decode response of GET "https://example.com/status?token=****" to "map[string]string": unexpected end of JSON input`, err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestConfigError(t *testing.T) {
	t.Parallel()
	err := &request.ConfigError{Setting: "IEX_TOKEN", Err: request.ErrNotSet}
	assert.Equal(t, `invalid configuration "IEX_TOKEN": not set`, err.Error())
	assert.ErrorIs(t, err, request.ErrNotSet)
}

func TestDispatchError(t *testing.T) {
	t.Parallel()
	err := &request.DispatchError{Err: context.Canceled}
	assert.Equal(t, `request was not dispatched: context canceled`, err.Error())
	assert.ErrorIs(t, err, context.Canceled)
}
