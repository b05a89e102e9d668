package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bangtanmom/contentsync/internal/config"
	"github.com/bangtanmom/contentsync/internal/metrics"
	"github.com/bangtanmom/contentsync/internal/server"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve migration runs over HTTP",
		Long: `Serve migration runs over HTTP.

POST /api/migrate with an optional {"dryRun": bool, "sourceInstance": string} body
runs one migration. The target instance, base URL and API key only ever come
from the process configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, config.Load(v))
		},
	}

	cmd.Flags().String("listen", config.DefaultListenAddr, "address to listen on (env LISTEN_ADDR)")
	bindFlag(v, cmd, "listen_addr", "listen")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, gw, err := openPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer gw.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	p.Observer = metrics.New(registry)

	gin.SetMode(gin.ReleaseMode)
	return server.New(cfg.ListenAddr, p, registry).ListenAndServe(ctx)
}
