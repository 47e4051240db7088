package client

import (
	"context"
	"os"

	"github.com/jarcoal/httpmock"

	"github.com/iexkit/go-client/pkg/client/trace"
	"github.com/iexkit/go-client/pkg/request"
)

// TestToken is the access token used by NewTestClient.
const TestToken = "test-token"

var testTransport = DefaultTransport() //nolint:gochecknoglobals

// NewTestClient creates the Client for tests.
//
// If the TEST_HTTP_CLIENT_VERBOSE environment variable is set to "true",
// then all HTTP requests and responses are dumped to stdout.
//
// Output contains the access token, do not use it in production.
func NewTestClient(baseURL string) Client {
	dump := trace.DumpTracer(os.Stdout)
	return New(baseURL, TestToken).
		WithTransport(testTransport).
		WithTrace(func(ctx context.Context, def request.Definition) (context.Context, *trace.ClientTrace) {
			if os.Getenv("TEST_HTTP_CLIENT_VERBOSE") == "true" { //nolint:forbidigo
				return dump(ctx, def)
			}
			return ctx, nil
		})
}

// NewMockedClient creates the Client with mocked HTTP transport.
// The base URL is "https://example.com".
func NewMockedClient() (Client, *httpmock.MockTransport) {
	mockTransport := httpmock.NewMockTransport()
	return NewTestClient("https://example.com").WithTransport(mockTransport), mockTransport
}
