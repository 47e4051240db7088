package client_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/iexkit/go-client/pkg/client"
	"github.com/iexkit/go-client/pkg/client/trace"
	"github.com/iexkit/go-client/pkg/request"
)

type testStruct struct {
	Foo string `json:"foo"`
}

type getFoo struct {
	request.Get[testStruct]
	Path  string
	Query map[string]any
}

func (r getFoo) Endpoint() string {
	return r.Path
}

func (r getFoo) QueryParams() map[string]any {
	return r.Query
}

type getFoos struct {
	request.Get[[]testStruct]
	Path string
}

func (r getFoos) Endpoint() string {
	return r.Path
}

type createFoo struct {
	request.Post[testStruct]
	Foo string
}

func (r createFoo) Endpoint() string {
	return "foo"
}

func (r createFoo) Body() any {
	return map[string]any{"foo": r.Foo}
}

func TestNew(t *testing.T) {
	t.Parallel()
	c := New("https://example.com/v1/", "my-token")
	assert.Equal(t, "https://example.com/v1", c.BaseURL())
}

func TestNew_InvalidBaseURL(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		New("example.com", "my-token")
	})
}

func TestSend_URL(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	c = c.WithBaseURL("https://example.com/stable/")
	transport.RegisterResponder("GET", "https://example.com/stable/stock/AAPL/quote", func(req *http.Request) (*http.Response, error) {
		// Access token is always the first query parameter
		assert.Equal(t, "token=test-token&displayPercent=true", req.URL.RawQuery)
		return httpmock.NewJsonResponse(200, map[string]any{"foo": "bar"})
	})

	ctx := context.Background()
	result, err := request.Send(ctx, c, getFoo{Path: "/stock/AAPL/quote/", Query: map[string]any{"displayPercent": true}})
	assert.NoError(t, err)
	assert.Equal(t, testStruct{Foo: "bar"}, result)
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET https://example.com/stable/stock/AAPL/quote"])
}

func TestSend_ReservedQueryParam(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	ctx := context.Background()
	_, err := request.Send(ctx, c, getFoo{Path: "foo", Query: map[string]any{"token": "other"}})
	var defErr *request.DefinitionError
	if assert.ErrorAs(t, err, &defErr) {
		assert.Equal(t, `query parameter "token" is reserved for the access token`, defErr.Err.Error())
	}
	assert.Equal(t, 0, transport.GetTotalCallCount())
}

func TestDefaultHeaders(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.Header{
			"User-Agent":      []string{"iexkit-go-client"},
			"Accept-Encoding": []string{"gzip, br"},
		}, req.Header)
		return httpmock.NewJsonResponse(200, map[string]any{"foo": "bar"})
	})

	_, err := request.Send(context.Background(), c, getFoo{Path: "foo"})
	assert.NoError(t, err)
}

func TestWithUserAgent(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "my-user-agent", req.Header.Get("User-Agent"))
		return httpmock.NewJsonResponse(200, map[string]any{"foo": "bar"})
	})

	_, err := request.Send(context.Background(), c.WithUserAgent("my-user-agent"), getFoo{Path: "foo"})
	assert.NoError(t, err)

	// Original client is not modified
	assert.Equal(t, "iexkit-go-client", sentHeaders(t, c).Get("User-Agent"))
}

func TestWithHeaders(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "value1", req.Header.Get("Key1"))
		assert.Equal(t, "value2", req.Header.Get("Key2"))
		assert.Equal(t, "my-value", req.Header.Get("My-Header"))
		return httpmock.NewJsonResponse(200, map[string]any{"foo": "bar"})
	})

	c = c.WithHeader("my-header", "my-value").WithHeaders(map[string]string{"key1": "value1", "key2": "value2"})
	_, err := request.Send(context.Background(), c, getFoo{Path: "foo"})
	assert.NoError(t, err)
}

func TestPostBody(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("POST", "https://example.com/foo", func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		assert.NoError(t, err)
		assert.Equal(t, `{"foo":"bar"}`, string(body))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		return httpmock.NewJsonResponse(201, map[string]any{"foo": "created"})
	})

	result, err := request.Send(context.Background(), c, createFoo{Foo: "bar"})
	assert.NoError(t, err)
	assert.Equal(t, testStruct{Foo: "created"}, result)
}

func TestBytesAndStringResult(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", httpmock.NewStringResponder(200, `{"foo":"bar"}`))
	ctx := context.Background()

	var bytesDef []byte
	_, result, err := c.Send(ctx, request.Definition{Method: http.MethodGet, Endpoint: "foo", ResultDef: &bytesDef})
	assert.NoError(t, err)
	assert.Same(t, &bytesDef, result)
	assert.Equal(t, []byte(`{"foo":"bar"}`), bytesDef)

	var stringDef string
	_, result, err = c.Send(ctx, request.Definition{Method: http.MethodGet, Endpoint: "foo", ResultDef: &stringDef})
	assert.NoError(t, err)
	assert.Same(t, &stringDef, result)
	assert.Equal(t, `{"foo":"bar"}`, stringDef)
}

func TestNoResult(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", httpmock.NewStringResponder(204, ""))

	_, result, err := c.Send(context.Background(), request.Definition{Method: http.MethodGet, Endpoint: "foo", ResultDef: &request.NoResult{}})
	assert.NoError(t, err)
	assert.Equal(t, &request.NoResult{}, result)
}

func TestCompressedResult(t *testing.T) {
	t.Parallel()

	var gzipBody bytes.Buffer
	gz := gzip.NewWriter(&gzipBody)
	_, _ = gz.Write([]byte(`{"foo":"gzip"}`))
	require.NoError(t, gz.Close())

	var brBody bytes.Buffer
	br := brotli.NewWriter(&brBody)
	_, _ = br.Write([]byte(`{"foo":"br"}`))
	require.NoError(t, br.Close())

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/gzip", func(req *http.Request) (*http.Response, error) {
		res := httpmock.NewBytesResponse(200, gzipBody.Bytes())
		res.Header.Set("Content-Encoding", "gzip")
		return res, nil
	})
	transport.RegisterResponder("GET", "https://example.com/br", func(req *http.Request) (*http.Response, error) {
		res := httpmock.NewBytesResponse(200, brBody.Bytes())
		res.Header.Set("Content-Encoding", "br")
		return res, nil
	})

	ctx := context.Background()
	result, err := request.Send(ctx, c, getFoo{Path: "gzip"})
	assert.NoError(t, err)
	assert.Equal(t, testStruct{Foo: "gzip"}, result)
	result, err = request.Send(ctx, c, getFoo{Path: "br"})
	assert.NoError(t, err)
	assert.Equal(t, testStruct{Foo: "br"}, result)
}

func TestClientError(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", httpmock.NewStringResponder(404, "not found"))

	result, err := request.Send(context.Background(), c, getFoo{Path: "foo"})
	assert.Equal(t, testStruct{}, result)
	var clientErr *request.ClientError
	if assert.ErrorAs(t, err, &clientErr) {
		assert.Equal(t, http.StatusNotFound, clientErr.StatusCode)
		assert.Equal(t, "not found", clientErr.Body)
		assert.Equal(t, "https://example.com/foo?token=****", clientErr.URL)
	}
	assert.Equal(t, `invalid request, method: "GET", url: "https://example.com/foo?token=****", httpCode: "404 Not Found", message: "not found"`, err.Error())
	assert.NotContains(t, err.Error(), TestToken)
}

func TestServerError_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", httpmock.NewStringResponder(304, ""))

	// Only 4xx is a client error, other non-success statuses are reported as a server error
	_, err := request.Send(context.Background(), c, getFoo{Path: "foo"})
	code, ok := request.StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotModified, code)
	assert.ErrorAs(t, err, new(*request.ServerError))
	assert.False(t, errors.As(err, new(*request.ClientError)))
}

func TestServerError(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", httpmock.NewStringResponder(503, "maintenance"))

	_, err := request.Send(context.Background(), c, getFoo{Path: "foo"})
	var serverErr *request.ServerError
	if assert.ErrorAs(t, err, &serverErr) {
		assert.Equal(t, http.StatusServiceUnavailable, serverErr.StatusCode)
		assert.Equal(t, "maintenance", serverErr.Body)
	}
	assert.False(t, errors.As(err, new(*request.ClientError)))
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET https://example.com/foo"], "server errors are not retried")
}

func TestDecodeError(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/html", func(req *http.Request) (*http.Response, error) {
		res := httpmock.NewStringResponse(200, "<html></html>")
		res.Header.Set("Content-Type", "text/html")
		return res, nil
	})
	transport.RegisterResponder("GET", "https://example.com/empty", httpmock.NewStringResponder(200, ""))

	ctx := context.Background()
	_, err := request.Send(ctx, c, getFoo{Path: "html"})
	var decodeErr *request.DecodeError
	if assert.ErrorAs(t, err, &decodeErr) {
		assert.Equal(t, `cannot decode response of GET "https://example.com/html?token=****" to "client_test.testStruct", unexpected content type "text/html"`, decodeErr.Msg)
	}

	// Empty body is not a valid JSON
	_, err = request.Send(ctx, c, getFoo{Path: "empty"})
	assert.ErrorAs(t, err, new(*request.DecodeError))
}

func TestDecodeError_TrailingData(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/list", httpmock.NewStringResponder(200, `[]}}} not json`))
	transport.RegisterResponder("GET", "https://example.com/twice", httpmock.NewStringResponder(200, `{"foo":"bar"}{"foo":"baz"`))
	transport.RegisterResponder("GET", "https://example.com/spaces", httpmock.NewStringResponder(200, "{\"foo\":\"bar\"}\n  "))

	ctx := context.Background()
	list, err := request.Send(ctx, c, getFoos{Path: "list"})
	assert.Nil(t, list)
	assert.ErrorAs(t, err, new(*request.DecodeError))

	result, err := request.Send(ctx, c, getFoo{Path: "twice"})
	assert.Equal(t, testStruct{}, result)
	assert.ErrorAs(t, err, new(*request.DecodeError))

	// Trailing whitespace is allowed
	result, err = request.Send(ctx, c, getFoo{Path: "spaces"})
	require.NoError(t, err)
	assert.Equal(t, testStruct{Foo: "bar"}, result)
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	networkErr := errors.New("connection reset by peer")
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", httpmock.NewErrorResponder(networkErr))

	_, err := request.Send(context.Background(), c, getFoo{Path: "foo"})
	var transportErr *request.TransportError
	if assert.ErrorAs(t, err, &transportErr) {
		assert.Equal(t, "GET", transportErr.Method)
		assert.Equal(t, "https://example.com/foo?token=****", transportErr.URL)
	}
	assert.ErrorIs(t, err, networkErr)
	assert.Equal(t, `request GET "https://example.com/foo?token=****" failed: connection reset by peer`, err.Error())
}

func TestContext_Canceled(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", func(req *http.Request) (*http.Response, error) {
		time.Sleep(100 * time.Millisecond) // <<<<<<<
		return httpmock.NewJsonResponse(200, map[string]any{"foo": "bar"})
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := request.Send(ctx, c, getFoo{Path: "foo"})
	assert.ErrorAs(t, err, new(*request.TransportError))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequestContext(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", func(req *http.Request) (*http.Response, error) {
		// Request context should be used by HTTP request
		assert.Equal(t, "testValue", req.Context().Value("testKey"))
		return httpmock.NewJsonResponse(200, map[string]any{"foo": "bar"})
	})

	//lint:ignore SA1029 it is ok to use "testKey" without custom type in this test
	ctx := context.WithValue(context.Background(), "testKey", "testValue")
	_, err := request.Send(ctx, c, getFoo{Path: "foo"})
	assert.NoError(t, err)
}

func TestAndTrace(t *testing.T) {
	t.Parallel()

	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com/foo", httpmock.NewStringResponder(200, `{"foo":"bar"}`))

	var events []string
	newFactory := func(name string) trace.Factory {
		return func(ctx context.Context, def request.Definition) (context.Context, *trace.ClientTrace) {
			return ctx, &trace.ClientTrace{
				HTTPRequestStart: func(r *http.Request) {
					events = append(events, name+" start "+r.URL.Path)
				},
				BodyParseDone: func(r *http.Response, size int64, result any, err error) {
					events = append(events, name+" parsed")
					assert.Equal(t, int64(13), size)
				},
				RequestProcessed: func(result any, err error) {
					events = append(events, name+" processed")
					assert.NoError(t, err)
					assert.Equal(t, &testStruct{Foo: "bar"}, result)
				},
			}
		}
	}

	c = c.WithTrace(newFactory("A")).AndTrace(newFactory("B"))
	_, err := request.Send(context.Background(), c, getFoo{Path: "foo"})
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"A start /foo",
		"B start /foo",
		"A parsed",
		"B parsed",
		"A processed",
		"B processed",
	}, events)
}

func TestConcurrentSendAll(t *testing.T) {
	t.Parallel()

	var inFlight, maxInFlight, arrived atomic.Int64
	var once sync.Once
	ready := make(chan struct{})
	c, transport := NewMockedClient()
	transport.RegisterRegexpResponder("GET", regexp.MustCompile(`^https://example\.com/item/\d+$`), func(req *http.Request) (*http.Response, error) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			prev := maxInFlight.Load()
			if current <= prev || maxInFlight.CompareAndSwap(prev, current) {
				break
			}
		}
		// Wait until the limit is reached, requests must not be sent one by one
		if arrived.Add(1) >= 3 {
			once.Do(func() { close(ready) })
		}
		select {
		case <-ready:
		case <-time.After(5 * time.Second):
			return nil, errors.New("requests were not sent concurrently")
		}
		if strings.HasSuffix(req.URL.Path, "3") {
			return httpmock.NewStringResponse(404, "not found"), nil
		}
		return httpmock.NewJsonResponse(200, map[string]any{"foo": strings.TrimPrefix(req.URL.Path, "/item/")})
	})

	var requests []request.Request[testStruct]
	for _, id := range []string{"1", "2", "3", "4", "5", "13"} {
		requests = append(requests, getFoo{Path: "item/" + id})
	}

	outcomes := request.SendAllWithLimit(context.Background(), c, 3, requests...)
	require.Len(t, outcomes, 6)
	assert.Equal(t, []testStruct{{Foo: "1"}, {Foo: "2"}, {Foo: "4"}, {Foo: "5"}}, outcomes.Values())
	assert.Len(t, outcomes.Errors(), 2)
	assert.False(t, outcomes[2].OK())
	assert.False(t, outcomes[5].OK())
	assert.Equal(t, int64(3), maxInFlight.Load())
	assert.Equal(t, 6, transport.GetTotalCallCount())
}

// sentHeaders returns headers sent by the client.
func sentHeaders(t *testing.T, c Client) http.Header {
	t.Helper()
	var header http.Header
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://example.com/headers", func(req *http.Request) (*http.Response, error) {
		header = req.Header.Clone()
		return httpmock.NewStringResponse(204, ""), nil
	})
	_, _, err := c.WithTransport(transport).Send(context.Background(), request.Definition{Method: http.MethodGet, Endpoint: "headers", ResultDef: &request.NoResult{}})
	require.NoError(t, err)
	return header
}
