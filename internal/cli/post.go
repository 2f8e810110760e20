package cli

import (
	"github.com/spf13/cobra"
)

// PostOptions holds flags for post subcommands.
type PostOptions struct {
	*RootOptions
	Channel  string
	Content  string
	ParentID string
	Reaction int64
}

// NewPostCommand creates the post command group.
func NewPostCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post to club channels and react",
	}
	cmd.AddCommand(newPostSendCommand(rootOpts))
	cmd.AddCommand(newPostListCommand(rootOpts))
	cmd.AddCommand(newPostReactCommand(rootOpts))
	return cmd
}

func newPostSendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "send <club-id>",
		Short: "Post a message to a club channel",
		Long: `Post a message to a club channel.

The caller must be the club creator or hold a membership in the club;
the membership travels with the post as its proof.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			post, err := env.Session.PostMessage(cmd.Context(), args[0], opts.Channel, opts.Content, opts.ParentID)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(post)
		},
	}

	cmd.Flags().StringVar(&opts.Channel, "channel", "general", "channel id")
	cmd.Flags().StringVar(&opts.Content, "content", "", "message content")
	cmd.Flags().StringVar(&opts.ParentID, "parent", "", "parent post id for replies")
	cmd.MarkFlagRequired("content")

	return cmd
}

func newPostListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List posts in a channel",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			posts, err := env.Client.ChannelPosts(cmd.Context(), opts.Channel)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(posts)
		},
	}

	cmd.Flags().StringVar(&opts.Channel, "channel", "general", "channel id")

	return cmd
}

func newPostReactCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "react <post-id>",
		Short:         "React to a post (overwrites your earlier reaction)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			post, err := env.Session.React(cmd.Context(), args[0], opts.Channel, opts.Reaction)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(post)
		},
	}

	cmd.Flags().StringVar(&opts.Channel, "channel", "general", "channel id")
	cmd.Flags().Int64Var(&opts.Reaction, "reaction", 0, "reaction code")
	cmd.MarkFlagRequired("reaction")

	return cmd
}
