package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearthside/hangouts/internal/schema"
)

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the compiled collection registry",
	}
	cmd.AddCommand(newSchemaDumpCommand(rootOpts))
	cmd.AddCommand(newSchemaValidateCommand(rootOpts))
	return cmd
}

func newSchemaDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the compiled registry as JSON",
		Long: `Print the compiled collection registry as deterministic JSON.

The output is stable across runs, so it can be diffed between versions
to review structural or authorization changes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := schema.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "compile schema", err)
			}
			dump, err := registry.DumpJSON()
			if err != nil {
				return WrapExitError(ExitCommandError, "render schema", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(dump))
			return nil
		},
	}
}

func newSchemaValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "validate",
		Short:         "Compile the registry and report problems",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			registry, err := schema.Load()
			if err != nil {
				return out.Error(err)
			}
			return out.Success(fmt.Sprintf("schema ok: %d collections", len(registry.Collections())))
		},
	}
}
