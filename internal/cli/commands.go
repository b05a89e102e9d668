package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bangtanmom/contentsync/internal/config"
	"github.com/bangtanmom/contentsync/internal/etl"
	"github.com/bangtanmom/contentsync/pkg/utils"
)

// newSlugCmd creates the "slug" command, which prints the slug a new post
// with the given title would get.
func newSlugCmd(v *viper.Viper) *cobra.Command {
	var unique bool

	cmd := &cobra.Command{
		Use:   "slug TITLE...",
		Short: "Print the slug for a post title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := utils.Slugify(strings.Join(args, " "))
			if base == "" {
				return fmt.Errorf("title %q has no usable characters", strings.Join(args, " "))
			}
			if !unique {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), base)
				return err
			}

			existing, err := targetSlugs(cmd, config.Load(v))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), utils.EnsureUnique(base, existing))
			return err
		},
	}

	cmd.Flags().BoolVar(&unique, "unique", false, "suffix the slug so it is free in the target instance")

	return cmd
}

// targetSlugs lists the slugs currently used in the target instance.
func targetSlugs(cmd *cobra.Command, cfg *config.Config) ([]string, error) {
	cfg.SourceBackend = cfg.TargetBackend
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mapping, err := config.LoadMapping(cfg.MappingFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyMapping(mapping)

	gw, err := etl.OpenGateways(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	defer gw.Close()

	rows, err := gw.Target.Extract(cmd.Context(), cfg.TargetInstance, cfg.Collection, cfg.FetchLimit)
	if err != nil {
		return nil, err
	}

	slugs := make([]string, 0, len(rows))
	for _, row := range rows {
		if s, ok := utils.ConvertToString(row["slug"]); ok {
			slugs = append(slugs, s)
		}
	}
	return slugs, nil
}
