package client

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/iexkit/go-client/pkg/request"
)

const (
	EnvBaseURL = "IEX_BASE_URL"
	EnvToken   = "IEX_TOKEN"
	// SettingDotEnv is the ConfigError setting of a dotenv file which cannot be loaded.
	SettingDotEnv = "dotenv"
)

// EnvOption customizes NewFromEnv.
type EnvOption func(c *envConfig)

type envConfig struct {
	dotEnvFiles []string
	lookup      *viper.Viper
}

// WithDotEnv loads the dotenv files before the environment is read.
// Missing files are skipped, variables already present in the environment are not overwritten.
func WithDotEnv(paths ...string) EnvOption {
	return func(c *envConfig) {
		c.dotEnvFiles = append(c.dotEnvFiles, paths...)
	}
}

// WithViper reads the settings from the provided viper instance, for example with bound CLI flags.
// The environment variables are bound to the instance.
func WithViper(v *viper.Viper) EnvOption {
	return func(c *envConfig) {
		c.lookup = v
	}
}

// NewFromEnv creates the Client from the IEX_BASE_URL and IEX_TOKEN environment variables.
// The settings are checked in this order, the first missing or empty one is reported as *request.ConfigError.
func NewFromEnv(opts ...EnvOption) (Client, error) {
	cfg := envConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	for _, path := range cfg.dotEnvFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return Client{}, &request.ConfigError{Setting: SettingDotEnv, Err: fmt.Errorf(`cannot load file "%s": %w`, path, err)}
		}
	}

	v := cfg.lookup
	if v == nil {
		v = viper.New()
	}

	baseURL, err := lookupEnv(v, EnvBaseURL)
	if err != nil {
		return Client{}, err
	}
	token, err := lookupEnv(v, EnvToken)
	if err != nil {
		return Client{}, err
	}

	baseURL, err = parseBaseURL(baseURL)
	if err != nil {
		return Client{}, &request.ConfigError{Setting: EnvBaseURL, Err: err}
	}

	return New(baseURL, token), nil
}

func lookupEnv(v *viper.Viper, key string) (string, error) {
	if err := v.BindEnv(key, key); err != nil {
		return "", &request.ConfigError{Setting: key, Err: err}
	}
	// An empty variable is not set, AllowEmptyEnv is disabled by default
	if !v.IsSet(key) || v.GetString(key) == "" {
		return "", &request.ConfigError{Setting: key, Err: request.ErrNotSet}
	}
	return v.GetString(key), nil
}
