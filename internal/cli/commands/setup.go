package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbuild/internal/cli/config"
	"github.com/leapstack-labs/leapbuild/internal/cli/output"
)

// ErrReported marks an error whose details the command has already rendered.
// The root command does not print such errors a second time.
var ErrReported = errors.New("already reported")

func reported(err error) error {
	return fmt.Errorf("%w: %w", ErrReported, err)
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the configuration loaded by
// the root command. Commands run without the root load it themselves.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.GetCurrentConfig()
	if cfg == nil {
		var err error
		cfg, err = config.LoadConfig(configFlag(cmd), cmd.Root().PersistentFlags())
		if err != nil {
			return nil, err
		}
	}

	mode := output.Mode(cfg.OutputFormat)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, nil
}

// configFlag returns the --config value, or "" when the flag is not defined.
func configFlag(cmd *cobra.Command) string {
	if f := cmd.Root().PersistentFlags().Lookup(config.FlagConfig); f != nil {
		return f.Value.String()
	}
	return ""
}
