package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iexkit/go-client/internal/logger"
	"github.com/iexkit/go-client/pkg/request"
)

// EnvPrefix of the environment variables overriding the flags, e.g. IEX_LOG_LEVEL.
const EnvPrefix = "IEX"

// Config of the iex command, flags have precedence over the environment.
type Config struct {
	LogLevel    string   `mapstructure:"log-level"`
	Concurrency int64    `mapstructure:"concurrency"`
	Trace       bool     `mapstructure:"trace"`
	FailFast    bool     `mapstructure:"fail-fast"`
	DotEnv      []string `mapstructure:"dotenv"`
}

func bindFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Int64("concurrency", request.WaitGroupConcurrencyLimit, "maximum number of concurrent requests")
	flags.Bool("trace", false, "log each HTTP request")
	flags.Bool("fail-fast", false, "stop at the first failed request")
	flags.StringSlice("dotenv", []string{".env"}, "dotenv files with IEX_BASE_URL and IEX_TOKEN, missing files are skipped")
}

func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	return v, nil
}

func loadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("cannot load config: %w", err)
	}
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	if cfg.Concurrency < 1 {
		return Config{}, fmt.Errorf(`concurrency must be positive, found "%d"`, cfg.Concurrency)
	}
	return cfg, nil
}
