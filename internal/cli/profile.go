package cli

import (
	"github.com/spf13/cobra"
)

// ProfileOptions holds flags for profile subcommands.
type ProfileOptions struct {
	*RootOptions
	DisplayName string
	Bio         string
	AvatarURI   string
}

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage user profiles",
	}
	cmd.AddCommand(newProfileCreateCommand(rootOpts))
	cmd.AddCommand(newProfileUpdateCommand(rootOpts))
	cmd.AddCommand(newProfileGetCommand(rootOpts))
	return cmd
}

func newProfileCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Create the caller's profile",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			profile, err := env.Session.CreateProfile(cmd.Context(), opts.DisplayName, opts.Bio, opts.AvatarURI)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(profile)
		},
	}

	cmd.Flags().StringVar(&opts.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&opts.Bio, "bio", "", "short bio")
	cmd.Flags().StringVar(&opts.AvatarURI, "avatar", "", "avatar URI")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newProfileUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "update",
		Short:         "Update the caller's profile",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			profile, err := env.Session.UpdateProfile(cmd.Context(), opts.DisplayName, opts.Bio, opts.AvatarURI)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(profile)
		},
	}

	cmd.Flags().StringVar(&opts.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&opts.Bio, "bio", "", "short bio")
	cmd.Flags().StringVar(&opts.AvatarURI, "avatar", "", "avatar URI")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newProfileGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <address>",
		Short:         "Fetch a profile by wallet address",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			profile, err := env.Client.Profile(cmd.Context(), args[0])
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(profile)
		},
	}
}
