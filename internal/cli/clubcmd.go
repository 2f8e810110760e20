package cli

import (
	"github.com/spf13/cobra"
)

// ClubOptions holds flags for club subcommands.
type ClubOptions struct {
	*RootOptions
	Name        string
	Description string
	Genres      []string
	CoverURI    string
	Open        bool
}

// NewClubCommand creates the club command group.
func NewClubCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "club",
		Short: "Manage clubs and memberships",
	}
	cmd.AddCommand(newClubCreateCommand(rootOpts))
	cmd.AddCommand(newClubUpdateCommand(rootOpts))
	cmd.AddCommand(newClubListCommand(rootOpts))
	cmd.AddCommand(newClubJoinCommand(rootOpts))
	cmd.AddCommand(newClubLeaveCommand(rootOpts))
	cmd.AddCommand(newClubMembersCommand(rootOpts))
	cmd.AddCommand(newClubDeleteCommand(rootOpts))
	return cmd
}

func newClubCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClubOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Create a club owned by the caller",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			created, err := env.Session.CreateClub(cmd.Context(),
				opts.Name, opts.Description, opts.Genres, opts.CoverURI, opts.Open)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(created)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "club name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "club description")
	cmd.Flags().StringSliceVar(&opts.Genres, "genres", nil, "genres (comma separated)")
	cmd.Flags().StringVar(&opts.CoverURI, "cover", "", "cover image URI")
	cmd.Flags().BoolVar(&opts.Open, "open", true, "open to new members")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newClubUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClubOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "update <club-id>",
		Short:         "Update a club's descriptive fields (creator only)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			updated, err := env.Session.UpdateClubInfo(cmd.Context(), args[0],
				opts.Name, opts.Description, opts.Genres, opts.CoverURI, opts.Open)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(updated)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "club name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "club description")
	cmd.Flags().StringSliceVar(&opts.Genres, "genres", nil, "genres (comma separated)")
	cmd.Flags().StringVar(&opts.CoverURI, "cover", "", "cover image URI")
	cmd.Flags().BoolVar(&opts.Open, "open", true, "open to new members")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newClubListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every club",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			clubs, err := env.Client.Clubs(cmd.Context())
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(clubs)
		},
	}
}

func newClubJoinCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "join <club-id>",
		Short:         "Join a club as the caller",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			membership, err := env.Session.JoinClub(cmd.Context(), args[0])
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(membership)
		},
	}
}

func newClubLeaveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "leave <membership-id>",
		Short: "Revoke a membership",
		Long: `Revoke a membership by its id ("memberAddress/clubId").

Both the member and the club creator are on the revocation list, so the
same command serves leaving and removing a member.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Session.LeaveClub(cmd.Context(), args[0]); err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success("membership revoked")
		},
	}
}

func newClubMembersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "members <club-id>",
		Short:         "List a club's memberships",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			members, err := env.Client.ClubMembers(cmd.Context(), args[0])
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(members)
		},
	}
}

func newClubDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <club-id>",
		Short:         "Delete a club (creator only)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Session.DeleteClub(cmd.Context(), args[0]); err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success("club deleted")
		},
	}
}
