package cli

import (
	"github.com/spf13/cobra"

	"github.com/iexkit/go-client/pkg/iex"
	"github.com/iexkit/go-client/pkg/request"
)

func DividendsCmd(env *Env) *cobra.Command {
	var rangeFlag string
	cmd := newSymbolsCmd("dividends", "List dividends of the symbols")
	cmd.Example = `  iex dividends AAPL MSFT --range 5y`
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		r, err := iex.ParseRange(rangeFlag)
		if err != nil {
			return err
		}
		return run(cmd, env, normalizeSymbols(args), func(symbol string) request.Request[[]iex.Dividend] {
			return iex.GetDividends{Symbol: symbol, Range: r}
		})
	}
	cmd.Flags().StringVarP(&rangeFlag, "range", "r", iex.OneYear.String(), "time range: 5y, 2y, 1y, ytd, 6m, 3m, 1m, next")
	return cmd
}

func SplitsCmd(env *Env) *cobra.Command {
	var rangeFlag string
	cmd := newSymbolsCmd("splits", "List splits of the symbols")
	cmd.Example = `  iex splits AAPL TSLA --range 5y`
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		r, err := iex.ParseRange(rangeFlag)
		if err != nil {
			return err
		}
		return run(cmd, env, normalizeSymbols(args), func(symbol string) request.Request[[]iex.Split] {
			return iex.GetSplits{Symbol: symbol, Range: r}
		})
	}
	cmd.Flags().StringVarP(&rangeFlag, "range", "r", iex.OneYear.String(), "time range: 5y, 2y, 1y, ytd, 6m, 3m, 1m, next")
	return cmd
}

func QuoteCmd(env *Env) *cobra.Command {
	var displayPercent bool
	cmd := newSymbolsCmd("quote", "Get the latest quotes of the symbols")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cmd, env, normalizeSymbols(args), func(symbol string) request.Request[iex.Quote] {
			return iex.GetQuote{Symbol: symbol, DisplayPercent: displayPercent}
		})
	}
	cmd.Flags().BoolVar(&displayPercent, "display-percent", false, "multiply percentage values by 100")
	return cmd
}

func CompanyCmd(env *Env) *cobra.Command {
	cmd := newSymbolsCmd("company", "Get company information of the symbols")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cmd, env, normalizeSymbols(args), func(symbol string) request.Request[iex.Company] {
			return iex.GetCompany{Symbol: symbol}
		})
	}
	return cmd
}
