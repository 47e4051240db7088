package request

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

// Outcome of one request sent by SendAll. Exactly one of Result and Err is meaningful.
type Outcome[R Result] struct {
	// Index of the request in the SendAll input.
	Index   int
	Request Request[R]
	Result  R
	Err     error
}

// Outcomes of SendAll, in the order of the input requests.
type Outcomes[R Result] []Outcome[R]

// SendAll sends all requests concurrently and waits until all are completed.
//
// A failed request does not cancel or block the others.
// The returned slice has one Outcome per request, in the input order.
// Requests which could not be started, for example because ctx is done, have a DispatchError.
func SendAll[R Result](ctx context.Context, sender Sender, requests ...Request[R]) Outcomes[R] {
	return SendAllWithLimit(ctx, sender, WaitGroupConcurrencyLimit, requests...)
}

// SendAllWithLimit is SendAll with a custom concurrent requests limit.
func SendAllWithLimit[R Result](ctx context.Context, sender Sender, limit int64, requests ...Request[R]) Outcomes[R] {
	out := make(Outcomes[R], len(requests))
	wg := NewWaitGroupWithLimit(ctx, limit)
	for i, req := range requests {
		out[i] = Outcome[R]{Index: i, Request: req}
		wg.Send(boundRequest[R]{sender: sender, request: req, out: &out[i]})
	}

	// Errors are stored in the outcomes
	_ = wg.Wait()
	return out
}

// RunAll sends all requests concurrently, it stops at the first error.
// Results are returned in the input order, only if all requests succeeded.
func RunAll[R Result](ctx context.Context, sender Sender, requests ...Request[R]) ([]R, error) {
	return RunAllWithLimit(ctx, sender, RunGroupConcurrencyLimit, requests...)
}

// RunAllWithLimit is RunAll with a custom concurrent requests limit.
func RunAllWithLimit[R Result](ctx context.Context, sender Sender, limit int64, requests ...Request[R]) ([]R, error) {
	out := make(Outcomes[R], len(requests))
	g := RunGroupWithLimit(ctx, limit)
	for i, req := range requests {
		out[i] = Outcome[R]{Index: i, Request: req}
		g.Add(boundRequest[R]{sender: sender, request: req, out: &out[i]})
	}
	if err := g.RunAndWait(); err != nil {
		return nil, err
	}
	return out.Values(), nil
}

// OK returns true if the request succeeded.
func (o Outcome[R]) OK() bool {
	return o.Err == nil
}

// Values returns results of the successful requests, in the input order.
func (v Outcomes[R]) Values() []R {
	out := make([]R, 0, len(v))
	for _, o := range v {
		if o.Err == nil {
			out = append(out, o.Result)
		}
	}
	return out
}

// Errors returns errors of the failed requests, in the input order.
func (v Outcomes[R]) Errors() []error {
	var out []error
	for _, o := range v {
		if o.Err != nil {
			out = append(out, o.Err)
		}
	}
	return out
}

// Err returns all errors that have occurred, or nil.
func (v Outcomes[R]) Err() error {
	var merr *multierror.Error
	for _, err := range v.Errors() {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}
