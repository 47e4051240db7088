package request

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
)

// TokenQueryParam is the name of the query parameter carrying the access token.
const TokenQueryParam = "token"

const redactedValue = "****"

// Definition is the untyped wire description of a Request, it is passed to the Sender.
type Definition struct {
	// Method is the HTTP method.
	Method string
	// Endpoint is the URL path without leading and trailing slashes.
	Endpoint string
	// Header contains additional request headers, never nil.
	Header http.Header
	// QueryParams contains additional query parameters, never nil.
	// The access token is added by the Sender.
	QueryParams url.Values
	// Body is encoded to JSON, if it is not nil.
	Body any
	// ResultDef is a pointer to the target value for the response mapping.
	ResultDef any
}

// NewDefinition converts the typed request to its wire description.
func NewDefinition[R Result](req Request[R]) (Definition, error) {
	def := Definition{
		Method:      req.Method(),
		Endpoint:    strings.Trim(req.Endpoint(), "/"),
		Header:      cloneHeader(req.Headers()),
		QueryParams: make(url.Values),
		Body:        req.Body(),
		ResultDef:   req.ResultDef(),
	}

	if def.Method == "" {
		panic(fmt.Errorf(`request %T: method is not set`, req))
	}

	if v, ok := req.(withValidation); ok {
		if err := v.Validate(); err != nil {
			return def, err
		}
	}

	if v, ok := req.(withQueryParams); ok {
		for k, v := range v.QueryParams() {
			if k == TokenQueryParam {
				return def, fmt.Errorf(`query parameter "%s" is reserved for the access token`, k)
			}
			str, err := castToString(v)
			if err != nil {
				return def, fmt.Errorf(`query parameter "%s": %w`, k, err)
			}
			def.QueryParams.Set(k, str)
		}
	}

	return def, nil
}

// ResultType returns name of the result type, for example "[]iex.Dividend".
func (d Definition) ResultType() string {
	t := reflect.TypeOf(d.ResultDef)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}

// String returns the method and the endpoint, for example `GET "stock/AAPL/quote"`.
func (d Definition) String() string {
	return fmt.Sprintf(`%s "%s"`, d.Method, d.Endpoint)
}

// RedactURL returns the URL as a string, with the access token masked.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	query := u.Query()
	if !query.Has(TokenQueryParam) {
		return u.String()
	}

	// Keep the token first, so the redacted URL has the same shape as the sent one
	clone := *u
	query.Del(TokenQueryParam)
	clone.RawQuery = TokenQueryParam + "=" + redactedValue
	if len(query) > 0 {
		clone.RawQuery += "&" + query.Encode()
	}
	return clone.String()
}
