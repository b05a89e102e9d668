package etl

import (
	"context"
	"fmt"

	"github.com/ubuntu/decorate"

	"github.com/bangtanmom/contentsync/internal/config"
	"github.com/bangtanmom/contentsync/pkg/database"
)

// Gateways holds the opened source and target backends.
type Gateways struct {
	Source Gateway
	Target Gateway

	closers []func()
}

// Close releases every connection opened by OpenGateways.
func (g *Gateways) Close() {
	for i := len(g.closers) - 1; i >= 0; i-- {
		g.closers[i]()
	}
	g.closers = nil
}

// OpenGateways connects the backends named by cfg. A database backend used on
// both sides is connected once.
func OpenGateways(ctx context.Context, cfg *config.Config) (gw *Gateways, err error) {
	defer decorate.OnError(&err, "could not open backends")

	gw = &Gateways{}
	opened := map[string]Gateway{}
	open := func(backend string) (Gateway, error) {
		if g, ok := opened[backend]; ok {
			return g, nil
		}
		var g Gateway
		switch backend {
		case config.BackendNCB:
			g = NewNCBGateway(cfg.BaseURL, cfg.APIKey, cfg.ClientTimeout)
		case config.BackendMongo:
			client, err := database.ConnectMongo(ctx, cfg.MongoConnString)
			if err != nil {
				return nil, err
			}
			gw.closers = append(gw.closers, func() { _ = client.Disconnect(context.Background()) })
			g = NewMongoGateway(client)
		case config.BackendSQL:
			db, err := database.ConnectSQL(ctx, cfg.SQLConnString)
			if err != nil {
				return nil, err
			}
			gw.closers = append(gw.closers, func() { _ = db.Close() })
			g = NewSQLGateway(db)
		default:
			return nil, fmt.Errorf("unknown backend %q", backend)
		}
		opened[backend] = g
		return g, nil
	}

	if gw.Source, err = open(cfg.SourceBackend); err != nil {
		gw.Close()
		return nil, err
	}
	if gw.Target, err = open(cfg.TargetBackend); err != nil {
		gw.Close()
		return nil, err
	}
	return gw, nil
}

// Compile-time checks that every backend satisfies Gateway.
var (
	_ Gateway = (*NCBGateway)(nil)
	_ Gateway = (*MongoGateway)(nil)
	_ Gateway = (*SQLGateway)(nil)
)
