// Package cli handles the command-line interface logic
// using the Cobra library.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bangtanmom/contentsync/internal/config"
	"github.com/bangtanmom/contentsync/pkg/logger"
)

type rootOptions struct {
	Verbosity int
	JSONLogs  bool
	LogFile   string
}

// NewRootCmd creates the root command and attaches every sub-command. All of
// them read their settings through one viper instance.
func NewRootCmd() *cobra.Command {
	return newRootCmd(config.NewViper())
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "contentsync",
		Short: "Copy BangtanMom posts between backend instances",
		Long: `contentsync copies blog posts from a legacy backend instance into the current one.
Posts are normalized onto the current schema and matched by slug, so running it
again never duplicates a post. Runs are dry by default.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Setup(logger.Options{
				Verbosity: opts.Verbosity,
				JSON:      opts.JSONLogs,
				File:      opts.LogFile,
				Output:    cmd.ErrOrStderr(),
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "issue INFO (-v) or DEBUG (-vv) output")
	rootCmd.PersistentFlags().BoolVar(&opts.JSONLogs, "json-logs", false, "write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also append logs to this file")

	rootCmd.PersistentFlags().String("target-instance", "", "destination instance (env NCB_TARGET_INSTANCE)")
	rootCmd.PersistentFlags().String("collection", "", "collection to copy, defaults to the mapping's, then posts (env MIGRATE_COLLECTION)")
	rootCmd.PersistentFlags().String("mapping", "", "JSON field mapping file (env MIGRATE_MAPPING_FILE)")
	rootCmd.PersistentFlags().String("source-backend", config.BackendNCB, "source backend: ncb, mongo or sql (env SOURCE_BACKEND)")
	rootCmd.PersistentFlags().String("target-backend", config.BackendNCB, "target backend: ncb, mongo or sql (env TARGET_BACKEND)")
	bindFlag(v, rootCmd, "target_instance", "target-instance")
	bindFlag(v, rootCmd, "source_backend", "source-backend")
	bindFlag(v, rootCmd, "target_backend", "target-backend")
	bindFlag(v, rootCmd, "collection", "collection")
	bindFlag(v, rootCmd, "mapping_file", "mapping")

	rootCmd.AddCommand(newMigrateCmd(v), newServeCmd(v), newSlugCmd(v))

	return rootCmd
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	// BindPFlag only fails on a nil flag, which would be a programming error.
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
