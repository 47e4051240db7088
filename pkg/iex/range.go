package iex

import (
	"fmt"
	"strings"
)

// Range is a time window of historical data, it is serialized to a short code, e.g. "ytd".
type Range string

const (
	FiveYears   Range = "5y"
	TwoYears    Range = "2y"
	OneYear     Range = "1y"
	YearToDate  Range = "ytd"
	SixMonths   Range = "6m"
	ThreeMonths Range = "3m"
	OneMonth    Range = "1m"
	Next        Range = "next"
)

// Ranges returns all supported ranges, from the longest.
func Ranges() []Range {
	return []Range{FiveYears, TwoYears, OneYear, YearToDate, SixMonths, ThreeMonths, OneMonth, Next}
}

// ParseRange converts a short code to the Range, the code is case-insensitive.
func ParseRange(v string) (Range, error) {
	code := Range(strings.ToLower(strings.TrimSpace(v)))
	for _, r := range Ranges() {
		if r == code {
			return r, nil
		}
	}
	return "", fmt.Errorf(`range "%s" is not valid, expected one of: %s`, v, rangesList())
}

func (r Range) String() string {
	return string(r)
}

// Valid returns true if the Range is one of the supported ranges.
func (r Range) Valid() bool {
	for _, v := range Ranges() {
		if v == r {
			return true
		}
	}
	return false
}

func (r Range) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf(`range "%s" is not valid`, string(r))
	}
	return []byte(r), nil
}

func (r *Range) UnmarshalText(data []byte) error {
	v, err := ParseRange(string(data))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func rangesList() string {
	var codes []string
	for _, r := range Ranges() {
		codes = append(codes, `"`+r.String()+`"`)
	}
	return strings.Join(codes, ", ")
}
