package iex

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iexkit/go-client/pkg/request"
)

// Quote is the latest price information of a stock.
// Optional values are nil outside of the trading hours.
type Quote struct {
	Symbol           string           `json:"symbol"`
	CompanyName      string           `json:"companyName"`
	PrimaryExchange  string           `json:"primaryExchange"`
	CalculationPrice string           `json:"calculationPrice"`
	Open             *decimal.Decimal `json:"open"`
	Close            *decimal.Decimal `json:"close"`
	High             *decimal.Decimal `json:"high"`
	Low              *decimal.Decimal `json:"low"`
	LatestPrice      decimal.Decimal  `json:"latestPrice"`
	LatestSource     string           `json:"latestSource"`
	LatestUpdate     Millis           `json:"latestUpdate"`
	LatestVolume     *int64           `json:"latestVolume"`
	PreviousClose    decimal.Decimal  `json:"previousClose"`
	Change           decimal.Decimal  `json:"change"`
	ChangePercent    decimal.Decimal  `json:"changePercent"`
	AvgTotalVolume   int64            `json:"avgTotalVolume"`
	MarketCap        int64            `json:"marketCap"`
	PeRatio          *decimal.Decimal `json:"peRatio"`
	Week52High       *decimal.Decimal `json:"week52High"`
	Week52Low        *decimal.Decimal `json:"week52Low"`
	YtdChange        *decimal.Decimal `json:"ytdChange"`
	IsUSMarketOpen   bool             `json:"isUSMarketOpen"`
}

// GetQuote gets the latest quote of the stock.
// If DisplayPercent is set, percentage values are multiplied by 100.
// https://iexcloud.io/docs/api/#quote
type GetQuote struct {
	request.Get[Quote]
	Symbol         string
	DisplayPercent bool
}

func (r GetQuote) Validate() error {
	return validateSymbol(r.Symbol)
}

func (r GetQuote) Endpoint() string {
	return fmt.Sprintf("stock/%s/quote", symbolPath(r.Symbol))
}

func (r GetQuote) QueryParams() map[string]any {
	if !r.DisplayPercent {
		return nil
	}
	return map[string]any{"displayPercent": true}
}
