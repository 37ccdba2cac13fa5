// Package config provides configuration management for the leapbuild CLI.
//
// It layers the project file, LEAPBUILD_* environment variables and
// command-line flags on top of the built-in defaults and exposes the result
// as resolver input (defaults plus ordered override layers) together with the
// CLI's own settings.
package config

import (
	"log/slog"

	sharedcfg "github.com/leapstack-labs/leapbuild/internal/config"
	"github.com/leapstack-labs/leapbuild/pkg/core"
	"github.com/leapstack-labs/leapbuild/pkg/resolve"
)

// Config holds all CLI configuration options.
type Config struct {
	OutputFormat string           `koanf:"output"`
	Verbose      bool             `koanf:"verbose"`
	Policy       core.Constraints `koanf:"policy"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`

	// Defaults is the compile-time default set handed to the resolver.
	Defaults sharedcfg.DefaultSet `koanf:"-"`

	// Layers are the override layers in precedence order (file, env, flags).
	Layers []resolve.Layer `koanf:"-"`
}

// Resolver returns a resolver enforcing the configured policy.
func (c *Config) Resolver(logger *slog.Logger) *resolve.Resolver {
	return resolve.New(c.Policy, resolve.WithLogger(logger))
}

// Resolve resolves the configured layers into a descriptor, reporting the
// source layer of every value.
func (c *Config) Resolve(logger *slog.Logger) (resolve.Resolution, error) {
	return c.Resolver(logger).Explain(c.Defaults.Values(), c.Layers...)
}

// Default configuration values.
const (
	DefaultOutput = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Environment variables consumed by the CLI itself rather than the resolver.
const (
	EnvConfigFile  = resolve.EnvPrefix + "CONFIG"
	EnvOutput      = resolve.EnvPrefix + "OUTPUT"
	EnvVerbose     = resolve.EnvPrefix + "VERBOSE"
	EnvPolicyFloor = resolve.EnvPrefix + "POLICY_MIN_PLATFORM_FLOOR"
)

// Flags consumed by the CLI itself.
const (
	FlagConfig      = "config"
	FlagOutput      = "output"
	FlagVerbose     = "verbose"
	FlagPolicyFloor = "require-min-platform"
)

// settingsEnv and settingsFlags map the CLI's own environment variables and
// flags to koanf keys of the Config struct.
var (
	settingsEnv = map[string]string{
		EnvOutput:      "output",
		EnvVerbose:     "verbose",
		EnvPolicyFloor: "policy.minPlatformFloor",
	}
	settingsFlags = map[string]string{
		FlagOutput:      "output",
		FlagVerbose:     "verbose",
		FlagPolicyFloor: "policy.minPlatformFloor",
	}
)
