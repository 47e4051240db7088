// Package client provides the default HTTP client for the IEX Cloud API.
//
// Client is a default implementation of the request.Sender interface.
// Client is based on the standard net/http package and contains tracing/telemetry support.
// It is easy to implement your custom HTTP client, by implementing the request.Sender interface.
//
// One Client holds one HTTP transport, a base URL and an access token.
// It is immutable, the With* methods return a modified copy,
// so a Client can be shared by any number of concurrent requests.
//
// Use request.Send and request.SendAll to send typed requests by the Client.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"

	otelMetric "go.opentelemetry.io/otel/metric"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/iexkit/go-client/pkg/client/counter"
	"github.com/iexkit/go-client/pkg/client/decode"
	"github.com/iexkit/go-client/pkg/client/trace"
	"github.com/iexkit/go-client/pkg/client/trace/otel"
	"github.com/iexkit/go-client/pkg/request"
)

const DefaultUserAgent = "iexkit-go-client"

// Client is a default and configurable implementation of the request.Sender interface by Go native http.Client.
type Client struct {
	transport    http.RoundTripper
	baseURL      string
	token        string
	header       http.Header
	traceFactory trace.Factory
}

// New creates new HTTP Client with the base URL and the access token.
// One transport is allocated per Client, it is reused by all requests.
func New(baseURL, token string) Client {
	c := Client{transport: DefaultTransport(), token: token, header: make(http.Header)}
	c.header.Set("User-Agent", DefaultUserAgent)
	c.header.Set("Accept-Encoding", "gzip, br")
	return c.WithBaseURL(baseURL)
}

// WithBaseURL returns a clone of the Client with base url set.
func (c Client) WithBaseURL(baseURLStr string) Client {
	baseURL, err := parseBaseURL(baseURLStr)
	if err != nil {
		panic(err)
	}
	c.baseURL = baseURL
	return c
}

// WithToken returns a clone of the Client with the access token set.
func (c Client) WithToken(token string) Client {
	c.token = token
	return c
}

// WithUserAgent returns a clone of the Client with user agent set.
func (c Client) WithUserAgent(v string) Client {
	return c.WithHeader("User-Agent", v)
}

// WithHeader returns a clone of the Client with common header set.
func (c Client) WithHeader(key, value string) Client {
	c.header = c.header.Clone()
	c.header.Set(key, value)
	return c
}

// WithHeaders returns a clone of the Client with common headers set.
func (c Client) WithHeaders(headers map[string]string) Client {
	c.header = c.header.Clone()
	for k, v := range headers {
		c.header.Set(k, v)
	}
	return c
}

// WithTransport returns a clone of the Client with a HTTP transport set.
func (c Client) WithTransport(transport http.RoundTripper) Client {
	if transport == nil {
		panic(fmt.Errorf("transport cannot be nil"))
	}
	c.transport = transport
	return c
}

// WithTrace returns a clone of the Client with the trace factory set, previous factories are replaced.
func (c Client) WithTrace(fn trace.Factory) Client {
	c.traceFactory = fn
	return c
}

// AndTrace returns a clone of the Client with the trace factory added, previous factories are kept.
func (c Client) AndTrace(fn trace.Factory) Client {
	if c.traceFactory == nil {
		c.traceFactory = fn
		return c
	}
	oldFactory := c.traceFactory
	c.traceFactory = func(ctx context.Context, def request.Definition) (context.Context, *trace.ClientTrace) {
		ctx, oldTrace := oldFactory(ctx, def)
		ctx, newTrace := fn(ctx, def)
		if newTrace == nil {
			return ctx, oldTrace
		}
		newTrace.Compose(oldTrace)
		return ctx, newTrace
	}
	return c
}

// WithTelemetry returns a clone of the Client with OpenTelemetry tracing and metrics added, previous trace factories are kept.
func (c Client) WithTelemetry(tracerProvider otelTrace.TracerProvider, meterProvider otelMetric.MeterProvider, opts ...otel.Option) Client {
	return c.AndTrace(otel.NewTrace(tracerProvider, meterProvider, opts...))
}

// BaseURL returns the base URL without the trailing slash.
func (c Client) BaseURL() string {
	return c.baseURL
}

// Send method sends HTTP request and returns HTTP response, it implements the request.Sender interface.
//
// The response status is classified:
//   - 2xx: the body is decoded to def.ResultDef, a failure is reported as *request.DecodeError,
//   - 4xx: *request.ClientError with the raw body,
//   - 5xx and any other status: *request.ServerError with the raw body.
//
// A network failure is reported as *request.TransportError, a request which cannot be built
// as *request.DefinitionError. Nothing is retried.
func (c Client) Send(ctx context.Context, def request.Definition) (res *http.Response, result any, err error) {
	// Method cannot be called on an empty value
	if c.transport == nil {
		panic(fmt.Errorf("client value is not initialized"))
	}

	// Init trace
	var tc *trace.ClientTrace
	if c.traceFactory != nil {
		ctx, tc = c.traceFactory(ctx, def)
		if tc != nil {
			ctx = httptrace.WithClientTrace(ctx, &tc.ClientTrace)
		}
	}

	// Trace request processed
	if tc != nil && tc.RequestProcessed != nil {
		defer func() {
			tc.RequestProcessed(result, err)
		}()
	}

	// Create request
	req, err := c.newHTTPRequest(ctx, def)
	if err != nil {
		return nil, nil, &request.DefinitionError{Request: def.String(), Err: err}
	}

	// Setup native client, the transport is shared, the wrapper only adds trace hooks
	nativeClient := http.Client{Transport: roundTripper{trace: tc, wrapped: c.transport}}

	// Send request
	res, err = nativeClient.Do(req)
	if err != nil {
		return nil, nil, transportError(req, err)
	}
	defer res.Body.Close()

	// The last request of a redirect chain
	if res.Request != nil {
		req = res.Request
	}

	// Process body
	switch {
	case res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices:
		result, err = handleResult(req, res, def, tc)
		if err != nil {
			return res, nil, err
		}
		return res, result, nil
	case res.StatusCode >= http.StatusBadRequest && res.StatusCode < http.StatusInternalServerError:
		body, err := readText(res)
		if err != nil {
			return res, nil, transportError(req, err)
		}
		return res, nil, &request.ClientError{Method: req.Method, URL: request.RedactURL(req.URL), StatusCode: res.StatusCode, Body: body}
	default:
		// 5xx and any other unexpected status, e.g. a 3xx that was not followed
		body, err := readText(res)
		if err != nil {
			return res, nil, transportError(req, err)
		}
		return res, nil, &request.ServerError{Method: req.Method, URL: request.RedactURL(req.URL), StatusCode: res.StatusCode, Body: body}
	}
}

func (c Client) newHTTPRequest(ctx context.Context, def request.Definition) (*http.Request, error) {
	// Compose URL, the endpoint is already trimmed, but custom Definitions may not be
	reqURL, err := url.Parse(c.baseURL + "/" + strings.Trim(def.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf(`invalid endpoint "%s": %w`, def.Endpoint, err)
	}

	// Access token first, then other query parameters
	reqURL.RawQuery = request.TokenQueryParam + "=" + url.QueryEscape(c.token)
	if len(def.QueryParams) > 0 {
		reqURL.RawQuery += "&" + def.QueryParams.Encode()
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, def.Method, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	// Global headers
	for k, values := range c.header {
		for _, v := range values {
			req.Header.Set(k, v)
		}
	}

	// Request headers
	for k, values := range def.Header {
		req.Header.Del(k) // clear global values
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	// Body
	if def.Body != nil {
		content, err := requestBody(def.Body)
		if err != nil {
			return nil, err
		}
		// GetBody factory is used when a redirect requires reading the body more than once.
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		}
		req.Body, _ = req.GetBody()
		req.ContentLength = int64(len(content))
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", ContentTypeApplicationJSON)
		}
	}

	return req, nil
}

func requestBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		content, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf(`cannot encode JSON body: %w`, err)
		}
		return content, nil
	}
}

func handleResult(req *http.Request, res *http.Response, def request.Definition, tc *trace.ClientTrace) (result any, err error) {
	// Trace body parsing
	body := counter.NewReadCloser(res.Body, nil)
	if tc != nil && tc.BodyParseStart != nil {
		tc.BodyParseStart(res)
	}
	if tc != nil && tc.BodyParseDone != nil {
		defer func() {
			tc.BodyParseDone(res, body.Bytes(), result, err)
		}()
	}

	// Process content encoding
	reader, err := decode.Decode(body, res.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, &request.DecodeError{Msg: decodeMsg(req, res, def), Err: err}
	}
	defer reader.Close()

	switch v := def.ResultDef.(type) {
	case nil:
		panic(fmt.Errorf(`request %s: result definition is not set`, def))
	case *request.NoResult:
		// Drain the body, so the connection can be reused
		if _, err := io.Copy(io.Discard, reader); err != nil {
			return nil, transportError(req, err)
		}
		return v, nil
	case *[]byte:
		content, err := io.ReadAll(reader)
		if err != nil {
			return nil, transportError(req, err)
		}
		*v = content
		return v, nil
	case *string:
		content, err := io.ReadAll(reader)
		if err != nil {
			return nil, transportError(req, err)
		}
		*v = string(content)
		return v, nil
	default:
		// The whole body must be one JSON document, an empty body or trailing bytes result in a DecodeError
		content, err := io.ReadAll(reader)
		if err != nil {
			return nil, transportError(req, err)
		}
		if err := json.Unmarshal(content, def.ResultDef); err != nil {
			return nil, &request.DecodeError{Msg: decodeMsg(req, res, def), Err: err}
		}
		return def.ResultDef, nil
	}
}

func decodeMsg(req *http.Request, res *http.Response, def request.Definition) string {
	msg := fmt.Sprintf(`cannot decode response of %s "%s" to "%s"`, req.Method, request.RedactURL(req.URL), def.ResultType())
	if contentType := res.Header.Get("Content-Type"); contentType != "" && !isJSONContentType(contentType) {
		msg += fmt.Sprintf(`, unexpected content type "%s"`, contentType)
	}
	return msg
}

func readText(res *http.Response) (string, error) {
	reader, err := decode.Decode(res.Body, res.Header.Get("Content-Encoding"))
	if err != nil {
		return "", err
	}
	defer reader.Close()
	content, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// transportError wraps the unmodified cause, the URL is taken from the request, so the token can be masked.
func transportError(req *http.Request, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return &request.TransportError{Method: req.Method, URL: request.RedactURL(req.URL), Err: err}
}

func parseBaseURL(baseURLStr string) (string, error) {
	baseURLStr = strings.TrimRight(strings.TrimSpace(baseURLStr), "/")
	baseURL, err := url.Parse(baseURLStr)
	if err != nil {
		return "", fmt.Errorf(`base url "%s" is not valid: %w`, baseURLStr, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return "", fmt.Errorf(`base url "%s" is not valid: expected absolute url`, baseURLStr)
	}
	return baseURLStr, nil
}

// roundTripper wraps a http.RoundTripper and adds trace functionality.
// Redirects are reported as separate HTTP requests.
type roundTripper struct {
	trace   *trace.ClientTrace
	wrapped http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// Trace request start
	if rt.trace != nil && rt.trace.HTTPRequestStart != nil {
		rt.trace.HTTPRequestStart(req)
	}

	// Send
	res, err := rt.wrapped.RoundTrip(req)

	// Trace request done
	if rt.trace != nil && rt.trace.HTTPRequestDone != nil {
		rt.trace.HTTPRequestDone(res, err)
	}

	return res, err
}
