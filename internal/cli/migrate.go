package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bangtanmom/contentsync/internal/config"
	"github.com/bangtanmom/contentsync/internal/etl"
)

// MigrateOptions are the per-run flags of the migrate command.
type MigrateOptions struct {
	DryRun bool
}

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	opts := &MigrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy posts from the source instance into the target instance",
		Long: `Copy posts from the source instance into the target instance.

Posts whose slug already exists in the target are skipped. Without
--dry-run=false nothing is written and the result reports what would be created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, config.Load(v), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", true, "only report what would be created")
	cmd.Flags().String("source-instance", "", "instance to copy from (env NCB_SOURCE_INSTANCE)")
	cmd.Flags().Int("limit", config.DefaultFetchLimit, "maximum records read from each side (env MIGRATE_FETCH_LIMIT)")
	cmd.Flags().Bool("continue-on-write-error", false, "record failed creates instead of aborting (env MIGRATE_CONTINUE_ON_WRITE_ERROR)")
	bindFlag(v, cmd, "source_instance", "source-instance")
	bindFlag(v, cmd, "fetch_limit", "limit")
	bindFlag(v, cmd, "continue_on_write_error", "continue-on-write-error")

	return cmd
}

func runMigrate(cmd *cobra.Command, cfg *config.Config, opts *MigrateOptions) error {
	p, gw, err := openPipeline(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer gw.Close()

	res, err := p.Run(cmd.Context(), etl.RunOptions{DryRun: opts.DryRun})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
