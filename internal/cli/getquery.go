package cli

import (
	"github.com/spf13/cobra"
)

// NewGetCommand creates the raw record get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Fetch a raw record by collection and id",
		Long: `Fetch a raw record by collection and id.

Collections with a read rule (RSVP) require a configured identity; the
read is signed and evaluated like any other restricted operation.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			collection, id := args[0], args[1]
			spec, err := env.Store.Registry().Collection(collection)
			if err != nil {
				return env.Out.Error(err)
			}

			if spec.Read == nil {
				rec, err := env.Store.Get(cmd.Context(), collection, id)
				if err != nil {
					return env.Out.Error(err)
				}
				return env.Out.Success(rec.Fields)
			}

			if env.Session == nil {
				return WrapExitError(ExitCommandError, "collection requires a signed read but no identity is configured", nil)
			}
			signed, err := env.Session.SignChallenge(cmd.Context())
			if err != nil {
				return env.Out.Error(err)
			}
			rec, err := env.Store.GetSigned(cmd.Context(), collection, id, signed)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(rec.Fields)
		},
	}
}

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Field string
	Op    string
	Value string
}

// NewQueryCommand creates the indexed field query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <collection>",
		Short: "Query records by an indexed field",
		Long: `Query records by an indexed field.

Example:
  hangouts query Club --field name --op == --value "Cozy Mysteries"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			recs, err := env.Store.Query(cmd.Context(), args[0], opts.Field, opts.Op, opts.Value)
			if err != nil {
				return env.Out.Error(err)
			}
			docs := make([]map[string]any, len(recs))
			for i, rec := range recs {
				docs[i] = rec.Fields
			}
			return env.Out.Success(docs)
		},
	}

	cmd.Flags().StringVar(&opts.Field, "field", "", "indexed field name")
	cmd.Flags().StringVar(&opts.Op, "op", "==", "operator (==, !=, <, <=, >, >=)")
	cmd.Flags().StringVar(&opts.Value, "value", "", "value to compare against")
	cmd.MarkFlagRequired("field")
	cmd.MarkFlagRequired("value")

	return cmd
}
