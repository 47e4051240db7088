package trace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iexkit/go-client/pkg/request"
)

type logTrace struct {
	ClientTrace
	wr   io.Writer
	lock *sync.Mutex
}

// LogTracer writes one line per request event to the writer.
// Each line is prefixed by a sequential request ID, the access token is masked.
func LogTracer(wr io.Writer) Factory {
	var idGenerator uint64
	lock := &sync.Mutex{}
	return func(ctx context.Context, def request.Definition) (context.Context, *ClientTrace) {
		requestID := atomic.AddUint64(&idGenerator, 1)

		var method, reqURL string
		var connStartTime time.Time
		var startTime time.Time
		var doneTime time.Time
		var statusCode int

		t := &logTrace{wr: wr, lock: lock}
		t.ConnectStart = func(network, addr string) {
			connStartTime = time.Now()
		}
		t.GotConn = func(info httptrace.GotConnInfo) {
			var infoStr string
			if info.Reused {
				if info.WasIdle {
					infoStr = "reused conn"
				} else {
					infoStr = fmt.Sprintf("reused conn (was idle=%s)", info.IdleTime)
				}
			} else {
				infoStr = fmt.Sprintf("new conn | %s", time.Since(connStartTime))
			}
			t.log(requestID, fmt.Sprintf(`CONN  %s "%s" | %s`, method, reqURL, infoStr))
		}
		t.HTTPRequestStart = func(r *http.Request) {
			method, reqURL = r.Method, request.RedactURL(r.URL)
			startTime = time.Now()
			t.log(requestID, fmt.Sprintf(`START %s "%s"`, method, reqURL))
		}
		t.HTTPRequestDone = func(r *http.Response, err error) {
			doneTime = time.Now()
			var errorStr string
			if err == nil {
				statusCode = r.StatusCode
			} else {
				errorStr = fmt.Sprintf(" | error=%s", err)
			}
			t.log(requestID, fmt.Sprintf(`DONE  %s "%s" | %d | %s%s`, method, reqURL, statusCode, doneTime.Sub(startTime).String(), errorStr))
		}
		t.BodyParseDone = func(r *http.Response, size int64, result any, err error) {
			var errorStr string
			if err != nil {
				errorStr = fmt.Sprintf(" | error=%s", err)
			}
			t.log(requestID, fmt.Sprintf(`BODY  %s "%s" | %dB | %s%s`, method, reqURL, size, time.Since(doneTime).String(), errorStr))
		}
		t.RequestProcessed = func(result any, err error) {
			var errorStr string
			if err != nil {
				errorStr = fmt.Sprintf(" | error=%s", err)
			}
			t.log(requestID, fmt.Sprintf(`END   %s | %s%s`, def, time.Since(startTime).String(), errorStr))
		}
		return ctx, &t.ClientTrace
	}
}

func (t *logTrace) log(requestID uint64, a ...any) {
	t.lock.Lock()
	defer t.lock.Unlock()
	a = append([]any{fmt.Sprintf("HTTP_REQUEST[%04d]", requestID)}, a...)
	_, _ = fmt.Fprintln(t.wr, a...)
}
