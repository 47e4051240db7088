// Package cli contains commands of the iex tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iexkit/go-client/internal/logger"
	"github.com/iexkit/go-client/pkg/client"
	"github.com/iexkit/go-client/pkg/client/trace"
	"github.com/iexkit/go-client/pkg/request"
)

// ErrRequestsFailed is returned if at least one request failed, the errors are logged.
var ErrRequestsFailed = errors.New("some requests failed")

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// NewRootCmd creates the iex command with all subcommands.
func NewRootCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iex",
		Short: "Query the IEX Cloud API",
		Long: `Query the IEX Cloud API.

The API base URL and the access token are read from
the IEX_BASE_URL and IEX_TOKEN environment variables.

Requests for multiple symbols are sent concurrently,
results are printed to stdout as JSON, logs are written to stderr.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	bindFlags(cmd.PersistentFlags())

	cmd.AddCommand(DividendsCmd(env))
	cmd.AddCommand(SplitsCmd(env))
	cmd.AddCommand(QuoteCmd(env))
	cmd.AddCommand(CompanyCmd(env))
	return cmd
}

// symbolOutcome is one item of the command output.
type symbolOutcome struct {
	Symbol string `json:"symbol"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// run sends one request per symbol and prints the outcomes in the order of the symbols.
func run[R request.Result](cmd *cobra.Command, env *Env, symbols []string, build func(symbol string) request.Request[R]) error {
	ctx := cmd.Context()

	v, err := newViper(cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	log, err := logger.New(env.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	c, err := env.NewClient(cfg, v)
	if err != nil {
		return err
	}
	if cfg.Trace {
		c = c.AndTrace(trace.ZapTracer(log.Named("http")))
	}

	requests := make([]request.Request[R], 0, len(symbols))
	for _, symbol := range symbols {
		requests = append(requests, build(symbol))
	}

	log.Debug("sending requests", zap.Strings("symbols", symbols), zap.Int64("concurrency", cfg.Concurrency))
	if cfg.FailFast {
		return runFailFast(ctx, env, c, cfg, symbols, requests)
	}

	outcomes := request.SendAllWithLimit(ctx, c, cfg.Concurrency, requests...)
	out := make([]symbolOutcome, 0, len(outcomes))
	for i, o := range outcomes {
		item := symbolOutcome{Symbol: symbols[i]}
		if o.Err != nil {
			item.Error = o.Err.Error()
			log.Error("request failed", zap.String("symbol", symbols[i]), zap.Error(o.Err))
		} else {
			item.Result = o.Result
		}
		out = append(out, item)
	}
	if err := printJSON(env, out); err != nil {
		return err
	}

	if n := len(outcomes.Errors()); n > 0 {
		return interrupted(ctx, fmt.Errorf("%w: %d of %d", ErrRequestsFailed, n, len(outcomes)))
	}
	return nil
}

// interrupted adds the context error, so the interruption can be detected by the caller.
func interrupted(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %w", err, ctxErr)
	}
	return err
}

func runFailFast[R request.Result](ctx context.Context, env *Env, c client.Client, cfg Config, symbols []string, requests []request.Request[R]) error {
	results, err := request.RunAllWithLimit(ctx, c, cfg.Concurrency, requests...)
	if err != nil {
		return interrupted(ctx, fmt.Errorf("%w: %w", ErrRequestsFailed, err))
	}
	out := make([]symbolOutcome, 0, len(results))
	for i, result := range results {
		out = append(out, symbolOutcome{Symbol: symbols[i], Result: result})
	}
	return printJSON(env, out)
}

func printJSON(env *Env, v any) error {
	enc := json.NewEncoder(env.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("cannot encode output: %w", err)
	}
	return nil
}

func normalizeSymbols(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if s := strings.ToUpper(strings.TrimSpace(arg)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func newSymbolsCmd(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " SYMBOL...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
	}
}
