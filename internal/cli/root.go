// Package cli provides the command-line interface for leapbuild.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbuild/internal/cli/commands"
	"github.com/leapstack-labs/leapbuild/internal/cli/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// skipConfig lists commands that run without loading the build configuration.
var skipConfig = map[string]bool{
	"help":       true,
	"completion": true,
	"__complete": true,
	"version":    true,
	"init":       true,
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "leapbuild",
		Short: "leapbuild - build configuration resolver",
		Long: `leapbuild merges built-in build defaults with the project file, LEAPBUILD_*
environment variables and command-line flags, and validates the result into
an immutable build descriptor for the packaging toolchain.

Any unknown key, missing property, mistyped value or violated constraint
(minPlatformVersion <= targetPlatformVersion <= compilePlatformVersion, a
positive versionCode, the project's minimum platform floor) fails the build.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd.ErrOrStderr(), false)
			cmd.SetContext(context.WithValue(cmd.Context(), config.LoggerKey(), logger))

			if skipConfig[cmd.Name()] {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			if cfg.Verbose {
				logger = newLogger(cmd.ErrOrStderr(), true)
				cmd.SetContext(context.WithValue(cmd.Context(), config.LoggerKey(), logger))
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					logger.Debug("using config file", "path", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, config.FlagConfig, "", "config file (default: ./leapbuild.yaml, searched upward)")
	pf.StringP(config.FlagOutput, "o", "", "Output format (auto|text|markdown|json|yaml)")
	pf.BoolP(config.FlagVerbose, "v", false, "Verbose output")
	pf.Int(config.FlagPolicyFloor, 0, "Fail when minPlatformVersion is below this level")
	config.RegisterFlags(pf)

	_ = rootCmd.RegisterFlagCompletionFunc(config.FlagOutput, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewResolveCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewKeysCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger builds the CLI logger. Every record carries an invocation id so
// logs from concurrent builds can be told apart.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("invocation", uuid.NewString())
}

// Execute runs the root command.
func Execute() error {
	return execute(NewRootCmd(), os.Stderr)
}

func execute(rootCmd *cobra.Command, errOut io.Writer) error {
	config.ResetConfig()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, commands.ErrReported) {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	generators := map[string]func(cmd *cobra.Command, w io.Writer) error{
		"bash":       func(cmd *cobra.Command, w io.Writer) error { return cmd.GenBashCompletionV2(w, true) },
		"zsh":        func(cmd *cobra.Command, w io.Writer) error { return cmd.GenZshCompletion(w) },
		"fish":       func(cmd *cobra.Command, w io.Writer) error { return cmd.GenFishCompletion(w, true) },
		"powershell": func(cmd *cobra.Command, w io.Writer) error { return cmd.GenPowerShellCompletionWithDesc(w) },
	}

	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for leapbuild, including the build property
flags and the values accepted by --output.`,
		Example: `  # Bash, current session
  source <(leapbuild completion bash)

  # Zsh, installed for every session
  leapbuild completion zsh > "${fpath[1]}/_leapbuild"

  # Fish
  leapbuild completion fish | source`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generators[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}
