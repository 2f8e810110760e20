package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearthside/hangouts/internal/club"
	"github.com/hearthside/hangouts/internal/record"
)

// MaterialOptions holds flags for material subcommands.
type MaterialOptions struct {
	*RootOptions
	Material club.NewMaterial
	Score    int64
}

// NewMaterialCommand creates the material command group.
func NewMaterialCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "material",
		Short: "Manage reading material and schedules",
	}
	cmd.AddCommand(newMaterialAddCommand(rootOpts))
	cmd.AddCommand(newMaterialRateCommand(rootOpts))
	cmd.AddCommand(newMaterialAssignCommand(rootOpts))
	cmd.AddCommand(newMaterialMilestonesCommand(rootOpts))
	cmd.AddCommand(newMaterialCurrentCommand(rootOpts))
	return cmd
}

func newMaterialAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MaterialOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "add",
		Short:         "Register a new source material",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			material, err := env.Session.AddSourceMaterial(cmd.Context(), opts.Material)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(material)
		},
	}

	cmd.Flags().StringVar(&opts.Material.Title, "title", "", "title")
	cmd.Flags().StringVar(&opts.Material.Description, "description", "", "description")
	cmd.Flags().StringSliceVar(&opts.Material.Authors, "authors", nil, "authors (comma separated)")
	cmd.Flags().StringVar(&opts.Material.Format, "material-format", "book", "material format (book, audiobook, ...)")
	cmd.Flags().StringVar(&opts.Material.Type, "type", "fiction", "material type")
	cmd.Flags().StringVar(&opts.Material.ThumbnailURI, "thumbnail", "", "thumbnail URI")
	cmd.Flags().StringVar(&opts.Material.Language, "language", "", "language")
	cmd.Flags().StringSliceVar(&opts.Material.Genres, "genres", nil, "genres (comma separated)")
	cmd.Flags().StringVar(&opts.Material.YearPublished, "year", "", "year published")
	cmd.Flags().StringVar(&opts.Material.MaturityRating, "maturity", "", "maturity rating")
	cmd.MarkFlagRequired("title")

	return cmd
}

func newMaterialRateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MaterialOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "rate <material-id>",
		Short:         "Rate a source material (overwrites your earlier rating)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			material, err := env.Session.RateMaterial(cmd.Context(), args[0], opts.Score)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(material)
		},
	}

	cmd.Flags().Int64Var(&opts.Score, "score", 0, "rating score")
	cmd.MarkFlagRequired("score")

	return cmd
}

func newMaterialAssignCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "assign <club-id> <material-id>",
		Short:         "Assign a source material to a club",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			assigned, err := env.Session.AddClubMaterial(cmd.Context(), args[0], args[1])
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(assigned)
		},
	}
}

func newMaterialMilestonesCommand(rootOpts *RootOptions) *cobra.Command {
	var milestonesJSON string

	cmd := &cobra.Command{
		Use:   "milestones <club-material-id>",
		Short: "Replace a club material's reading schedule",
		Long: `Replace a club material's reading schedule wholesale.

--milestones takes a JSON array of milestone objects:
  [{"id":"m1","title":"Chapters 1-4","notes":"","startAt":1717200000000}]

The whole array replaces the stored one; last writer wins.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var milestones []record.Milestone
			if err := json.Unmarshal([]byte(milestonesJSON), &milestones); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --milestones JSON: %v", err), err)
			}

			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			updated, err := env.Session.SetMilestones(cmd.Context(), args[0], milestones)
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(updated)
		},
	}

	cmd.Flags().StringVar(&milestonesJSON, "milestones", "[]", "milestones as a JSON array")

	return cmd
}

func newMaterialCurrentCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "current <club-id> <club-material-id>",
		Short:         "Point a club at its active material",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts, cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			updated, err := env.Session.SetCurrentMaterial(cmd.Context(), args[0], args[1])
			if err != nil {
				return env.Out.Error(err)
			}
			return env.Out.Success(updated)
		},
	}
}
