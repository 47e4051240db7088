package request

import (
	"net/http"
)

// Result - any value.
type Result = any

// NoResult type, the response body is discarded.
type NoResult struct{}

// Request is a typed description of one remote call.
// The response of a successful call is decoded to the R type.
type Request[R Result] interface {
	// Method returns the fixed HTTP method of the endpoint.
	Method() string
	// Endpoint returns the URL path relative to the base URL, it may contain fields of the request.
	// Leading and trailing slashes are not significant.
	Endpoint() string
	// Headers returns additional HTTP headers, nil if there are none.
	Headers() http.Header
	// Body returns a value encoded to JSON as the request body, nil if there is no body.
	Body() any
	// ResultDef returns a new target value for the response mapping.
	ResultDef() *R
}

// withQueryParams is an optional part of the Request contract.
// Values are converted to strings by the spf13/cast package.
type withQueryParams interface {
	QueryParams() map[string]any
}

// withValidation is an optional part of the Request contract.
// Validate is called before the request is built, an error is returned as *DefinitionError.
type withValidation interface {
	Validate() error
}

// Get is embedded to a read-only endpoint description.
type Get[R Result] struct{}

func (Get[R]) Method() string {
	return http.MethodGet
}

func (Get[R]) Headers() http.Header {
	return nil
}

func (Get[R]) Body() any {
	return nil
}

func (Get[R]) ResultDef() *R {
	return new(R)
}

// Post is embedded to an endpoint description with a JSON body.
// The Body method is intentionally missing, it must be implemented by the endpoint.
type Post[R Result] struct{}

func (Post[R]) Method() string {
	return http.MethodPost
}

func (Post[R]) Headers() http.Header {
	return nil
}

func (Post[R]) ResultDef() *R {
	return new(R)
}
