// Package request defines typed requests for the IEX Cloud API, see the Request interface.
//
// An endpoint description is a plain value implementing Request[R],
// where R is the type the successful response body is decoded into.
// Embed Get[R] or Post[R] to get the fixed parts of the contract,
// then only Endpoint (and Body for Post) must be written.
//
// Requests are sent using the Sender interface.
// The client.Client is a default implementation of the request.Sender
// interface based on the standard net/http package.
//
// Send and SendAll are generic helpers, they map the untyped Sender result back to R.
// WaitGroup and RunGroup are helpers for concurrent requests.
package request
