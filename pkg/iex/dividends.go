package iex

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iexkit/go-client/pkg/request"
)

// Flag is a type of the dividend payment.
type Flag string

const (
	FlagAutocall        Flag = "Autocall"
	FlagCashAndStock    Flag = "Cash&Stock"
	FlagCash            Flag = "Cash"
	FlagDissenterRights Flag = "DissenterRights"
	FlagInterest        Flag = "Interest"
	FlagMaturity        Flag = "Maturity"
	FlagRebate          Flag = "Rebate"
	FlagStock           Flag = "Stock"
	FlagSpecial         Flag = "Special"
	FlagToBeAnnounced   Flag = "ToBeAnnounced"
	FlagBlank           Flag = "Blank"
)

func (f *Flag) UnmarshalText(data []byte) error {
	switch v := Flag(data); v {
	case FlagAutocall, FlagCashAndStock, FlagCash, FlagDissenterRights, FlagInterest,
		FlagMaturity, FlagRebate, FlagStock, FlagSpecial, FlagToBeAnnounced, FlagBlank:
		*f = v
		return nil
	default:
		return fmt.Errorf(`unexpected dividend flag "%s"`, string(data))
	}
}

// Dividend is one dividend payment of a stock.
type Dividend struct {
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	DeclaredDate Date            `json:"declaredDate"`
	Description  string          `json:"description"`
	ExDate       Date            `json:"exDate"`
	Flag         Flag            `json:"flag"`
	Frequency    string          `json:"frequency"`
	PaymentDate  Date            `json:"paymentDate"`
	RecordDate   Date            `json:"recordDate"`
	RefID        int64           `json:"refid"`
	Symbol       string          `json:"symbol"`
	ID           string          `json:"id"`
	Key          string          `json:"key"`
	Subkey       string          `json:"subkey"`
	Date         Millis          `json:"date"`
	Updated      Millis          `json:"updated"`
}

// GetDividends lists dividends of the stock in the time range.
// https://iexcloud.io/docs/api/#dividends-basic
type GetDividends struct {
	request.Get[[]Dividend]
	Symbol string
	Range  Range
}

// Validate checks the symbol and the range before the request is sent.
func (r GetDividends) Validate() error {
	if err := validateSymbol(r.Symbol); err != nil {
		return err
	}
	return validateRange(r.Range)
}

func (r GetDividends) Endpoint() string {
	return fmt.Sprintf("stock/%s/dividends/%s", symbolPath(r.Symbol), r.Range)
}
