package cli

import (
	"github.com/spf13/cobra"
)

// NewRSVPCommand creates the rsvp command group.
func NewRSVPCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rsvp",
		Short: "RSVP to milestone events",
	}
	cmd.AddCommand(newRSVPAttendCommand(rootOpts))
	cmd.AddCommand(newRSVPCancelCommand(rootOpts))
	cmd.AddCommand(newRSVPListCommand(rootOpts))
	return cmd
}

func newRSVPAttendCommand(rootOpts *RootOptions) *cobra.Command {
	var eventID string

	cmd := &cobra.Command{
		Use:           "attend <milestone-id>",
		Short:         "RSVP to a milestone event",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			rsvp, err := env.Session.Attend(cmd.Context(), args[0], eventID)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(rsvp)
		},
	}

	cmd.Flags().StringVar(&eventID, "event", "", "calendar event id")
	cmd.MarkFlagRequired("event")

	return cmd
}

func newRSVPCancelCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "cancel <milestone-id>",
		Short:         "Withdraw an RSVP",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Session.CancelRSVP(cmd.Context(), args[0]); err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success("rsvp cancelled")
		},
	}
}

func newRSVPListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the caller's RSVPs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			rsvps, err := env.Session.RSVPs(cmd.Context())
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(rsvps)
		},
	}
}
