package cli

import (
	"context"

	"github.com/bangtanmom/contentsync/internal/config"
	"github.com/bangtanmom/contentsync/internal/etl"
)

// openPipeline loads the field mapping, connects the backends named by cfg and
// returns a pipeline over them. The caller closes the gateways.
func openPipeline(ctx context.Context, cfg *config.Config) (*etl.Pipeline, *etl.Gateways, error) {
	mapping, err := config.LoadMapping(cfg.MappingFile)
	if err != nil {
		return nil, nil, err
	}
	cfg.ApplyMapping(mapping)

	gw, err := etl.OpenGateways(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return etl.NewPipeline(cfg, gw.Source, gw.Target, mapping), gw, nil
}
