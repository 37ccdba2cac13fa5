package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapbuild/pkg/core"
)

type resolveOptions struct {
	explain bool
	write   string
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the build descriptor",
		Long: `Merge the built-in defaults with the project file, LEAPBUILD_* environment
variables and command-line flags, validate the result and print the build
descriptor.

Precedence (highest last): defaults, leapbuild.yaml, environment, flags.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # Print the descriptor
  leapbuild resolve

  # Show which layer supplied each value
  leapbuild resolve --explain

  # Override a property and write the descriptor for the toolchain
  leapbuild resolve --min-platform-version 23 --write build/descriptor.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runResolve(cmdCtx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Show the source layer of every value")
	cmd.Flags().StringVar(&opts.write, "write", "", "Also write the descriptor to this file (.json, .yaml or .yml)")

	return cmd
}

func runResolve(cmdCtx *CommandContext, opts resolveOptions) error {
	res, err := cmdCtx.Cfg.Resolve(cmdCtx.Logger)
	if err != nil {
		return err
	}

	if opts.write != "" {
		if err := writeDescriptor(opts.write, res.Descriptor); err != nil {
			return err
		}
		cmdCtx.Logger.Debug("descriptor written", "path", opts.write)
	}

	var sources map[string]string
	if opts.explain {
		sources = res.Sources
	}
	return cmdCtx.Renderer.Descriptor(res.Descriptor, sources)
}

// writeDescriptor atomically replaces path with the encoded descriptor.
// The encoding follows the file extension.
func writeDescriptor(path string, d core.BuildDescriptor) error {
	data, err := encodeDescriptor(path, d)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write descriptor %s: %w", path, err)
	}
	return nil
}

func encodeDescriptor(path string, d core.BuildDescriptor) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode descriptor: %w", err)
		}
		return append(data, '\n'), nil
	case ".yaml", ".yml":
		data, err := yaml.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("failed to encode descriptor: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported descriptor file %q: use a .json, .yaml or .yml extension", path)
	}
}
