// Package iex contains endpoint descriptions of the IEX Cloud API.
//
// Each endpoint is a plain value implementing request.Request[R], for example:
//
//	dividends, err := request.Send(ctx, c, iex.GetDividends{Symbol: "AAPL", Range: iex.Next})
//
// The request fields are interpolated into the endpoint path, the access token is added by the client.
package iex

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// symbolPath escapes the symbol for use in a path segment, e.g. "BRK/B" -> "BRK%2FB".
func validateSymbol(symbol string) error {
	if strings.TrimSpace(symbol) == "" {
		return errors.New("symbol is not set")
	}
	return nil
}

func validateRange(r Range) error {
	if r == "" {
		return errors.New("range is not set")
	}
	if !r.Valid() {
		return fmt.Errorf(`range "%s" is not valid, expected one of: %s`, string(r), rangesList())
	}
	return nil
}

func symbolPath(symbol string) string {
	return url.PathEscape(strings.ToUpper(strings.TrimSpace(symbol)))
}
