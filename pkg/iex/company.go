package iex

import (
	"fmt"

	"github.com/iexkit/go-client/pkg/request"
)

type Company struct {
	Symbol         string   `json:"symbol"`
	CompanyName    string   `json:"companyName"`
	Exchange       string   `json:"exchange"`
	Industry       string   `json:"industry"`
	Website        string   `json:"website"`
	Description    string   `json:"description"`
	CEO            string   `json:"CEO"`
	SecurityName   string   `json:"securityName"`
	IssueType      string   `json:"issueType"`
	Sector         string   `json:"sector"`
	PrimarySicCode int      `json:"primarySicCode"`
	Employees      int      `json:"employees"`
	Tags           []string `json:"tags"`
	Address        string   `json:"address"`
	Address2       *string  `json:"address2"`
	State          string   `json:"state"`
	City           string   `json:"city"`
	Zip            string   `json:"zip"`
	Country        string   `json:"country"`
	Phone          string   `json:"phone"`
}

// GetCompany gets the company information of the stock.
// https://iexcloud.io/docs/api/#company
type GetCompany struct {
	request.Get[Company]
	Symbol string
}

func (r GetCompany) Validate() error {
	return validateSymbol(r.Symbol)
}

func (r GetCompany) Endpoint() string {
	return fmt.Sprintf("stock/%s/company", symbolPath(r.Symbol))
}
