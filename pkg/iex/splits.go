package iex

import (
	"fmt"

	"github.com/iexkit/go-client/pkg/request"
)

// Split is one stock split.
type Split struct {
	ExDate       Date    `json:"exDate"`
	DeclaredDate Date    `json:"declaredDate"`
	Ratio        float64 `json:"ratio"`
	ToFactor     float64 `json:"toFactor"`
	FromFactor   float64 `json:"fromFactor"`
	Description  string  `json:"description"`
	RefID        int64   `json:"refid,omitempty"`
	Symbol       string  `json:"symbol"`
	ID           string  `json:"id"`
	Source       *string `json:"source,omitempty"`
	Key          string  `json:"key"`
	Subkey       string  `json:"subkey"`
	Date         *Millis `json:"date,omitempty"`
	Updated      Millis  `json:"updated"`
}

// GetSplits lists splits of the stock in the time range.
// https://iexcloud.io/docs/api/#splits-basic
type GetSplits struct {
	request.Get[[]Split]
	Symbol string
	Range  Range
}

// Validate checks the symbol and the range before the request is sent.
func (r GetSplits) Validate() error {
	if err := validateSymbol(r.Symbol); err != nil {
		return err
	}
	return validateRange(r.Range)
}

func (r GetSplits) Endpoint() string {
	return fmt.Sprintf("stock/%s/splits/%s", symbolPath(r.Symbol), r.Range)
}
