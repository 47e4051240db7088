package otel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/semconv/v1.18.0/httpconv"

	"github.com/iexkit/go-client/pkg/request"
)

const (
	maskedAttrValue = "****"
)

type attributes struct {
	config config
	// definition attributes for span and metrics
	definition []attribute.KeyValue
	// definitionExtra attributes for span only
	definitionExtra []attribute.KeyValue
	// httpRequest attributes for span and metrics
	httpRequest []attribute.KeyValue
	// httpRequestExtra attributes for span only
	httpRequestExtra []attribute.KeyValue
	// httpResponse attributes for span and metrics
	httpResponse []attribute.KeyValue
	// httpResponseExtra attributes for span only
	httpResponseExtra []attribute.KeyValue
	// httpResponseError attributes for metrics
	httpResponseError []attribute.KeyValue
}

func newAttributes(cfg config, def request.Definition) *attributes {
	out := &attributes{config: cfg}

	// Definition base, low cardinality, the endpoint contains request fields, e.g. a symbol
	out.definition = []attribute.KeyValue{
		attribute.String("definition.method", def.Method),
		attribute.String("definition.result.type", def.ResultType()),
	}

	// Definition params
	out.definitionExtra = append(out.definitionExtra, attribute.String("definition.endpoint", mustURLPathUnescape(def.Endpoint)))
	out.definitionExtra = append(out.definitionExtra, cfg.headerAttrs("definition.header.", def.Header)...)
	var queryAttrs []attribute.KeyValue
	for k, v := range def.QueryParams {
		value := strings.Join(v, ",")
		if _, found := cfg.redactedQueryParams[strings.ToLower(k)]; found {
			value = maskedAttrValue
		}
		queryAttrs = append(queryAttrs, attribute.String("definition.params.query."+k, value))
	}
	sortAttrs(queryAttrs)
	out.definitionExtra = append(out.definitionExtra, queryAttrs...)

	return out
}

func (v *attributes) SetFromRequest(req *http.Request) {
	if req == nil {
		v.httpRequest = nil
		v.httpRequestExtra = nil
		return
	}

	// Base, the URL is redacted
	redacted := *req
	redacted.URL = v.config.redactURL(req.URL)
	v.httpRequest = httpconv.ClientRequest(&redacted)

	// Extra, user agent is already present from httpconv
	header := req.Header.Clone()
	header.Del("User-Agent")
	v.httpRequestExtra = v.config.headerAttrs("http.header.", header)
}

func (v *attributes) SetFromResponse(res *http.Response, err error) {
	// Success
	if res == nil {
		v.httpResponse = nil
		v.httpResponseExtra = nil
	} else {
		v.httpResponse = httpconv.ClientResponse(res)
		v.httpResponseExtra = v.config.headerAttrs("http.response.header.", res.Header)
	}

	// Error
	var netErr net.Error
	errors.As(err, &netErr)
	v.httpResponseError = []attribute.KeyValue{
		attribute.Bool("http.response.isSuccess", isSuccess(res, err)),
		attribute.Bool("http.response.isRedirection", isRedirection(res)),
		attribute.Bool("http.response.error.has", err != nil),
		attribute.Bool("http.response.error.net", netErr != nil),
		attribute.Bool("http.response.error.timeout", netErr != nil && netErr.Timeout()),
		attribute.Bool("http.response.error.cancelled", errors.Is(err, context.Canceled)),
		attribute.Bool("http.response.error.deadline_exceeded", errors.Is(err, context.DeadlineExceeded)),
	}
}

// result describes the outcome of the whole request.
func (v *attributes) result(err error) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("result.error.kind", errorKind(err))}
}

func (c config) headerAttrs(prefix string, header http.Header) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for key, values := range header {
		key = strings.ToLower(key)
		value := strings.Join(values, ";")
		if _, found := c.redactedHeaders[key]; found {
			value = maskedAttrValue
		}
		attrs = append(attrs, attribute.String(prefix+key, value))
	}
	sortAttrs(attrs)
	return attrs
}

func (c config) redactURL(u *url.URL) *url.URL {
	clone := *u
	query := u.Query()
	for k := range query {
		if _, found := c.redactedQueryParams[strings.ToLower(k)]; found {
			query.Set(k, maskedAttrValue)
		}
	}
	clone.RawQuery = query.Encode()
	clone.User = nil
	return &clone
}

func sortAttrs(attrs []attribute.KeyValue) {
	sort.SliceStable(attrs, func(i, j int) bool {
		return attrs[i].Key < attrs[j].Key
	})
}

func mustURLPathUnescape(in string) string {
	out, err := url.PathUnescape(in)
	if err != nil {
		return in
	}
	return out
}
