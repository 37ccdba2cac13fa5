package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	sharedcfg "github.com/leapstack-labs/leapbuild/internal/config"
	"github.com/leapstack-labs/leapbuild/pkg/resolve"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level config file tracking
var (
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// loadProject finds and loads the project file.
// Priority:
//  1. Explicit --config flag
//  2. LEAPBUILD_CONFIG environment variable
//  3. Search upward from CWD for leapbuild.yaml / leapbuild.yml
//
// Returns the project (nil if none) and the project root, which falls back to
// the working directory.
func loadProject(explicit string) (*sharedcfg.Project, string, error) {
	if explicit == "" {
		explicit = os.Getenv(EnvConfigFile)
	}
	if explicit != "" {
		proj, err := sharedcfg.LoadFile(explicit)
		if err != nil {
			return nil, "", err
		}
		return proj, proj.Root, nil
	}

	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	root := sharedcfg.FindProjectRoot(cwd, maxUpwardSearchLevels)
	if root == "" {
		return nil, cwd, nil
	}
	proj, err := sharedcfg.LoadFromDir(root)
	if err != nil {
		return nil, "", err
	}
	return proj, root, nil
}

// ResetConfig clears the package-level state. Used for testing.
func ResetConfig() {
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
//
// Build properties are not merged here: each source becomes its own resolver
// layer so validation errors can name the source of a bad value. The CLI's
// own settings (output, verbose, policy) are merged with koanf.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	proj, projectRoot, err := loadProject(cfgFile)
	if err != nil {
		return nil, err
	}

	// 1. Load settings defaults
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"output":                  DefaultOutput,
		"verbose":                 false,
		"policy.minPlatformFloor": 0,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Project file policy
	if proj != nil && proj.Config.Policy.MinPlatformFloor != 0 {
		if err := k.Load(confmap.Provider(map[string]interface{}{
			"policy.minPlatformFloor": proj.Config.Policy.MinPlatformFloor,
		}, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load project policy: %w", err)
		}
	}

	// 3. Settings from environment variables
	if err := k.Load(env.Provider(resolve.EnvPrefix, ".", func(s string) string {
		return settingsEnv[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Settings from flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := settingsFlags[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.ProjectRoot = projectRoot
	cfg.Defaults = sharedcfg.BuiltinDefaults()

	// 6. Build property layers
	if proj != nil {
		layer := proj.Layer()
		expandLayerEnvVars(layer.Values)
		cfg.Layers = append(cfg.Layers, layer)
	}

	envLayer, err := loadEnvLayer()
	if err != nil {
		return nil, err
	}
	cfg.Layers = append(cfg.Layers, envLayer)

	if flags != nil {
		flagLayer, err := FlagLayer(flags)
		if err != nil {
			return nil, err
		}
		cfg.Layers = append(cfg.Layers, flagLayer)
	}

	configFileUsed = ""
	if proj != nil {
		configFileUsed = proj.Path
	}
	currentConfig = &cfg

	return &cfg, nil
}

// loadEnvLayer collects LEAPBUILD_* variables that name build properties.
// Transform: LEAPBUILD_MIN_PLATFORM_VERSION -> minPlatformVersion
//
// Variables that match no schema field keep a lower-cased name so the
// resolver reports them as unknown keys instead of silently dropping a typo.
func loadEnvLayer() (resolve.Layer, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(resolve.EnvPrefix, ".", func(s string) string {
		if _, reserved := settingsEnv[s]; reserved || s == EnvConfigFile {
			return ""
		}
		if f, ok := resolve.LookupEnv(s); ok {
			return f.Key
		}
		return strings.ToLower(strings.TrimPrefix(s, resolve.EnvPrefix))
	}), nil); err != nil {
		return resolve.Layer{}, fmt.Errorf("failed to load env vars: %w", err)
	}
	return resolve.Layer{Name: resolve.SourceEnv, Values: k.All()}, nil
}

// FlagLayer collects explicitly set build property flags.
func FlagLayer(flags *pflag.FlagSet) (resolve.Layer, error) {
	k := koanf.New(".")
	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		// Only load flags that were explicitly set
		if !f.Changed {
			return "", nil
		}
		field, ok := resolve.LookupFlag(f.Name)
		if !ok {
			return "", nil
		}
		return field.Key, posflag.FlagVal(flags, f)
	}), nil); err != nil {
		return resolve.Layer{}, fmt.Errorf("failed to load flags: %w", err)
	}
	return resolve.Layer{Name: resolve.SourceFlags, Values: k.All()}, nil
}

// RegisterFlags adds one flag per build property to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	for _, f := range resolve.Fields() {
		switch f.Type {
		case resolve.TypeInt:
			fs.Int(f.Flag(), 0, f.Description)
		default:
			fs.String(f.Flag(), "", f.Description)
		}
	}
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // unset variables stay literal
	})
}

// expandLayerEnvVars expands environment variables in string values.
func expandLayerEnvVars(values resolve.Values) {
	for k, v := range values {
		if s, ok := v.(string); ok {
			values[k] = expandEnvVars(s)
		}
	}
}
