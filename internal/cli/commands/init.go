package commands

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapbuild/internal/cli/config"
	"github.com/leapstack-labs/leapbuild/internal/cli/output"
	sharedcfg "github.com/leapstack-labs/leapbuild/internal/config"
	"github.com/leapstack-labs/leapbuild/pkg/core"
	"github.com/leapstack-labs/leapbuild/pkg/resolve"
)

type initOptions struct {
	dir       string
	force     bool
	overrides resolve.Layer
	policy    core.Constraints
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a starter leapbuild.yaml",
		Long: `Write a leapbuild.yaml declaring every build property with its built-in
default. Build property flags given on the command line are written instead
of the defaults, so the file can be seeded in one step.

Existing project files are not read; an invalid file can be replaced with
--force.`,
		Example: `  # Initialize in current directory
  leapbuild init

  # Initialize a new directory with a custom application id
  leapbuild init my-app --application-id com.acme.app --min-platform-version 23

  # Force overwrite existing config
  leapbuild init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := initOptions{dir: ".", force: force}
			if len(args) > 0 {
				opts.dir = args[0]
			}

			flags := cmd.Root().PersistentFlags()
			layer, err := config.FlagLayer(flags)
			if err != nil {
				return err
			}
			opts.overrides = layer
			if floor, err := flags.GetInt(config.FlagPolicyFloor); err == nil {
				opts.policy.MinPlatformFloor = floor
			}

			mode := output.ModeAuto
			if f := flags.Lookup(config.FlagOutput); f != nil {
				mode = output.Mode(f.Value.String())
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, config.GetLogger(cmd.Context()), opts)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, logger *slog.Logger, opts initOptions) error {
	for _, name := range sharedcfg.FileNames() {
		existing := filepath.Join(opts.dir, name)
		if _, err := os.Stat(existing); err == nil && !opts.force {
			return fmt.Errorf("%s already exists. Use --force to overwrite", existing)
		}
	}

	// Resolve first so the starter file is known to be valid.
	resolver := resolve.New(opts.policy, resolve.WithLogger(logger))
	d, err := resolver.ResolveLayers(sharedcfg.BuiltinDefaults().Values(), opts.overrides)
	if err != nil {
		return err
	}

	data, err := starterFile(d, opts.policy)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", opts.dir, err)
	}
	// --force rewrites the file the loader would pick up rather than adding
	// a second one next to it.
	path := sharedcfg.FindConfigFile(opts.dir)
	if path == "" {
		path = filepath.Join(opts.dir, sharedcfg.ConfigFileName)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	r.StatusLine(path, "success", "")
	r.Println("")
	r.Success("leapbuild project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Edit the android section of " + filepath.Base(path))
	r.Println("  2. Run 'leapbuild validate' to check it")
	r.Println("  3. Run 'leapbuild resolve --explain' to see where each value comes from")

	return nil
}

// starterFile renders d as a commented project file.
func starterFile(d core.BuildDescriptor, policy core.Constraints) ([]byte, error) {
	android := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range d.Fields() {
		// namespace defaults to applicationId; only write it when it differs.
		if kv.Key == resolve.KeyNamespace && kv.Value == d.ApplicationID {
			continue
		}
		value := scalarNode(kv.Value)
		if f, ok := resolve.Lookup(kv.Key); ok && f.Description != "" {
			value.LineComment = "# " + f.Description
		}
		android.Content = append(android.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: kv.Key}, value)
	}

	floor := scalarNode(policy.MinPlatformFloor)
	floor.LineComment = "# 0 disables the floor"
	policyNode := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "minPlatformFloor"}, floor,
	}}

	androidKey := &yaml.Node{Kind: yaml.ScalarNode, Value: sharedcfg.SectionAndroid}
	androidKey.HeadComment = "# Build properties. Run 'leapbuild keys' for the full list."
	policyKey := &yaml.Node{Kind: yaml.ScalarNode, Value: sharedcfg.SectionPolicy}
	policyKey.HeadComment = "# Requirements imposed by dependencies."

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{androidKey, android, policyKey, policyNode},
	}}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", sharedcfg.ConfigFileName, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", sharedcfg.ConfigFileName, err)
	}
	return buf.Bytes(), nil
}

func scalarNode(v any) *yaml.Node {
	switch v := v.(type) {
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(v)}
	}
}
