package otel

import (
	"errors"
	"net/http"

	"github.com/iexkit/go-client/pkg/request"
)

func isSuccess(r *http.Response, err error) bool {
	if err != nil {
		return false
	}
	return r != nil && r.StatusCode < http.StatusBadRequest
}

func isRedirection(r *http.Response) bool {
	return r != nil && r.StatusCode >= http.StatusMultipleChoices && r.StatusCode < http.StatusBadRequest
}

// errorKind maps the error to a low cardinality metric dimension.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.As(err, new(*request.ClientError)):
		return "client"
	case errors.As(err, new(*request.ServerError)):
		return "server"
	case errors.As(err, new(*request.DecodeError)):
		return "decode"
	case errors.As(err, new(*request.TransportError)):
		return "transport"
	case errors.As(err, new(*request.DefinitionError)):
		return "definition"
	default:
		return "other"
	}
}
