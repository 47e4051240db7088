package cli

import (
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/iexkit/go-client/pkg/client"
)

// Env holds injectable dependencies of the commands.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	// NewClient creates the API client, the viper instance carries the bound flags and environment.
	NewClient func(cfg Config, v *viper.Viper) (client.Client, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithClient replaces the client loaded from the environment.
func WithClient(c client.Client) EnvOption {
	return func(e *Env) {
		e.NewClient = func(Config, *viper.Viper) (client.Client, error) {
			return c, nil
		}
	}
}

// DefaultEnv returns an Env with production defaults.
// The client is configured from the IEX_BASE_URL and IEX_TOKEN environment variables.
func DefaultEnv() *Env {
	return &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewClient: func(cfg Config, v *viper.Viper) (client.Client, error) {
			return client.NewFromEnv(client.WithViper(v), client.WithDotEnv(cfg.DotEnv...))
		},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}
