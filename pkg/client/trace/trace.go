// Package trace extends the httptrace.ClientTrace and adds hooks for the whole request life cycle.
// A custom ClientTrace definition can be registered in the client.Client by the AndTrace method.
//
// The package contains three ready-made tracers:
//   - LogTracer writes one line per event to an io.Writer,
//   - ZapTracer writes structured events to a zap.Logger,
//   - DumpTracer dumps full requests and responses, it is intended for tests only.
package trace

import (
	"context"
	"net/http"
	"net/http/httptrace"
	"reflect"

	"github.com/iexkit/go-client/pkg/request"
)

// Factory creates ClientTrace hooks for a request.
// The returned ClientTrace can be nil, if the request should not be traced.
type Factory func(ctx context.Context, def request.Definition) (context.Context, *ClientTrace)

// ClientTrace is a set of hooks to run at various stages of an outgoing request.
type ClientTrace struct {
	httptrace.ClientTrace // native, low level trace
	// HTTPRequestStart is called when the HTTP request begins. It includes redirects.
	HTTPRequestStart func(request *http.Request)
	// HTTPRequestDone is called when the HTTP request completes. It includes redirects.
	HTTPRequestDone func(response *http.Response, err error)
	// BodyParseStart is called before the successful response body is decoded.
	BodyParseStart func(response *http.Response)
	// BodyParseDone is called after the successful response body is decoded.
	// The size is the number of received bytes, before the content decoding.
	BodyParseDone func(response *http.Response, size int64, result any, err error)
	// RequestProcessed is called when Client.Send method is done.
	RequestProcessed func(result any, err error)
}

// Compose modifies t such that it respects the previously-registered hooks in old.
// Hooks of the old trace are called first.
// Copy of httptrace.compose.
func (t *ClientTrace) Compose(old *ClientTrace) {
	if old == nil {
		return
	}
	composeHooks(reflect.ValueOf(t).Elem(), reflect.ValueOf(old).Elem())
	composeHooks(reflect.ValueOf(&t.ClientTrace).Elem(), reflect.ValueOf(&old.ClientTrace).Elem())
}

func composeHooks(tv, ov reflect.Value) {
	structType := tv.Type()
	for i := 0; i < structType.NumField(); i++ {
		tf := tv.Field(i)
		hookType := tf.Type()
		if hookType.Kind() != reflect.Func {
			continue
		}
		of := ov.Field(i)
		if of.IsNil() {
			continue
		}
		if tf.IsNil() {
			tf.Set(of)
			continue
		}

		// Make a copy of tf for tf to call. (Otherwise it
		// creates a recursive call cycle and stack overflows)
		tfCopy := reflect.ValueOf(tf.Interface())

		// We need to call both tf and of in some order.
		newFunc := reflect.MakeFunc(hookType, func(args []reflect.Value) []reflect.Value {
			of.Call(args)
			return tfCopy.Call(args)
		})
		tf.Set(newFunc)
	}
}
