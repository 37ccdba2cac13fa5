package commands

import (
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the build configuration without printing the descriptor",
		Long: `Resolve the build configuration and report only whether it is valid.

On failure the error kind (UnknownKey, MissingField, TypeMismatch or
ConstraintViolation), the offending key and the layer it came from are
reported, and the command exits with a non-zero status.`,
		Example: `  # Validate in CI
  leapbuild validate --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runValidate(cmdCtx)
		},
	}
}

func runValidate(cmdCtx *CommandContext) error {
	res, err := cmdCtx.Cfg.Resolve(cmdCtx.Logger)
	if err != nil {
		if rerr := cmdCtx.Renderer.ValidationFailure(err); rerr != nil {
			return rerr
		}
		return reported(err)
	}
	return cmdCtx.Renderer.Valid(res.Descriptor)
}
