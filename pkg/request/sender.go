package request

import (
	"context"
	"fmt"
	"net/http"
)

// Sender represents an HTTP client, the client.Client is a default implementation using the standard net/http package.
type Sender interface {
	// Send method sends defined request and returns response.
	// Type of the return value "result" must be the same as type of the Definition.ResultDef, otherwise panic will occur.
	//   In Go, this rule cannot be written using generic types yet, methods cannot have generic types.
	//   Send[R Result](ctx context.Context, request Request[R]) (rawResponse *http.Response, result R, error error)
	Send(ctx context.Context, def Definition) (rawResponse *http.Response, result any, err error)
}

// Sendable is a request bound to a Sender, it is used by WaitGroup and RunGroup.
type Sendable interface {
	SendOrErr(ctx context.Context) error
}

// rejectable is implemented by a Sendable that must record an outcome even if it was never sent.
type rejectable interface {
	Reject(err error)
}

// Send sends the typed request by the sender and returns the decoded response.
// Exactly one of the result and the error is set.
func Send[R Result](ctx context.Context, sender Sender, req Request[R]) (result R, err error) {
	def, err := NewDefinition(req)
	if err != nil {
		return result, &DefinitionError{Request: def.String(), Err: err}
	}

	_, raw, err := sender.Send(ctx, def)
	if err != nil {
		return result, err
	}

	v, ok := raw.(*R)
	if !ok || v == nil {
		panic(fmt.Errorf(`sender returned result "%T", expected "%T"`, raw, def.ResultDef))
	}
	return *v, nil
}

// Bind binds the typed request to the sender, so it can be used by WaitGroup or RunGroup.
func Bind[R Result](sender Sender, req Request[R]) Sendable {
	return boundRequest[R]{sender: sender, request: req}
}

type boundRequest[R Result] struct {
	sender  Sender
	request Request[R]
	out     *Outcome[R]
}

func (r boundRequest[R]) SendOrErr(ctx context.Context) error {
	result, err := Send(ctx, r.sender, r.request)
	if r.out != nil {
		r.out.Result, r.out.Err = result, err
	}
	return err
}

func (r boundRequest[R]) Reject(err error) {
	if r.out != nil {
		r.out.Err = err
	}
}
