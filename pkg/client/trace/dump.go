package trace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/iexkit/go-client/pkg/client/decode"
	"github.com/iexkit/go-client/pkg/request"
)

const dumpTraceMaxLength = 2000

type dumpTrace struct {
	ClientTrace
	wr   io.Writer
	lock *sync.Mutex
}

// DumpTracer dumps HTTP request and response to a writer.
// Output contains the unmasked access token, do not use it in production!
func DumpTracer(wr io.Writer) Factory {
	lock := &sync.Mutex{}
	return func(ctx context.Context, def request.Definition) (context.Context, *ClientTrace) {
		var requestDump []byte
		var responseStatusCode int
		var responseErr error
		var startTime, headersTime time.Time

		t := &dumpTrace{wr: wr, lock: lock}
		t.HTTPRequestStart = func(r *http.Request) {
			startTime = time.Now()
			requestDump, _ = httputil.DumpRequestOut(r, true)
		}
		t.HTTPRequestDone = func(r *http.Response, err error) {
			// Response can be nil, for example, if some network error occurred
			if r != nil {
				responseStatusCode = r.StatusCode
				headersTime = time.Now()
			}
			responseErr = err

			// The whole dump is written at once, requests can run concurrently
			t.lock.Lock()
			defer t.lock.Unlock()

			// Dump request
			t.log()
			t.log(">>>>>> HTTP DUMP")
			t.dump(string(requestDump))

			// Dump response
			t.log("------")
			if err != nil {
				t.log("ERROR: ", err)
			} else {
				// Dump response headers
				if v, err := httputil.DumpResponse(r, false); err == nil {
					t.log(strings.TrimSpace(string(v)))
				} else {
					t.log("cannot dump response headers: ", err)
				}
				// Dump response body
				if r.Body != nil {
					t.log("------")
					t.dump(t.peekBody(r))
				}
			}
			t.log("<<<<<< HTTP DUMP END")
		}
		t.RequestProcessed = func(result any, err error) {
			t.lock.Lock()
			defer t.lock.Unlock()
			if err == nil {
				err = responseErr
			}
			t.log()
			t.log(">>>>>> HTTP REQUEST PROCESSED", "| ", def.String(), responseStatusCode, "| ERROR:", err, "| HEADERS AT:", headersTime.Sub(startTime), "| DONE AT:", time.Since(startTime))
		}
		return ctx, &t.ClientTrace
	}
}

// peekBody reads and decodes the response body, the raw body is set back to the response.
func (t *dumpTrace) peekBody(r *http.Response) string {
	var rawBody bytes.Buffer
	var decodedBody strings.Builder
	bodyReader, err := decode.Decode(io.NopCloser(io.TeeReader(r.Body, &rawBody)), r.Header.Get("Content-Encoding"))
	if err != nil {
		t.log("cannot read response body: ", err)
	} else if _, err := io.Copy(&decodedBody, bodyReader); err != nil {
		t.log("cannot read response body: ", err)
	}
	// The rest of the body, if decoding failed
	_, _ = io.Copy(&rawBody, r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(rawBody.Bytes()))
	return decodedBody.String()
}

func (t *dumpTrace) dump(body string) {
	body = strings.TrimSpace(body)
	if len(body) > dumpTraceMaxLength && os.Getenv("HTTP_DUMP_TRACE_FULL") != "true" { //nolint:forbidigo
		t.log(body[:dumpTraceMaxLength])
		t.log("... (set env HTTP_DUMP_TRACE_FULL=true to see full output)")
	} else {
		t.log(body)
	}
}

func (t *dumpTrace) log(a ...any) {
	_, _ = fmt.Fprintln(t.wr, a...)
}
