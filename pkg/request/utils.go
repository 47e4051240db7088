package request

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cast"
)

func cloneHeader(in http.Header) http.Header {
	if in == nil {
		return make(http.Header)
	}
	return in.Clone()
}

func castToString(v any) (string, error) {
	// Slices are sent as a comma separated list, e.g. "types=quote,news"
	if values, ok := v.([]string); ok {
		return strings.Join(values, ","), nil
	}

	str, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf(`cannot cast %T to string: %w`, v, err)
	}
	return str, nil
}
