package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbuild/internal/cli/output"
	"github.com/leapstack-labs/leapbuild/pkg/resolve"
)

// NewKeysCommand creates the keys command.
func NewKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "keys",
		Aliases: []string{"schema"},
		Short:   "List the build properties",
		Long: `List every build property with its type, whether it is required, its
built-in default and the environment variable and flag that override it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runKeys(cmdCtx)
		},
	}
}

func runKeys(cmdCtx *CommandContext) error {
	infos := output.NewFieldInfos(resolve.Fields(), cmdCtx.Cfg.Defaults.Values())
	return cmdCtx.Renderer.Fields(infos)
}
