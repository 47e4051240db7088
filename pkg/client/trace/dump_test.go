package trace_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/keboola/go-utils/pkg/wildcards"
	"github.com/stretchr/testify/assert"

	"github.com/iexkit/go-client/pkg/client"
	"github.com/iexkit/go-client/pkg/client/trace"
	"github.com/iexkit/go-client/pkg/request"
)

func TestDumpTracer(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := client.NewMockedClient()
	transport.RegisterResponder("GET", `https://example.com/status`, func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{"status":"on"}`))}, nil
	})

	// Logs for trace testing
	var logs strings.Builder

	// Create client
	ctx := context.Background()
	c = c.AndTrace(trace.DumpTracer(&logs))

	// Expected trace
	expected := `
>>>>>> HTTP DUMP
GET /status?token=test-token HTTP/1.1
Host: example.com
User-Agent: iexkit-go-client
Accept-Encoding: gzip, br
------
HTTP/0.0 200 OK
Content-Length: 0
------
{"status":"on"}
<<<<<< HTTP DUMP END

>>>>>> HTTP REQUEST PROCESSED |  GET "status" 200 | ERROR: <nil> | HEADERS AT: %s | DONE AT: %s
`

	// Test, the body is still readable after the dump
	result, err := request.Send(ctx, c, getStatus{})
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "on"}, result)
	wildcards.Assert(t, strings.TrimLeft(expected, "\n"), logs.String())
}
