package etl

import (
	"context"
	"time"

	"github.com/bangtanmom/contentsync/pkg/models"
)

// Extractor reads up to limit records of a collection held by instance.
type Extractor interface {
	Extract(ctx context.Context, instance, collection string, limit int) ([]models.Record, error)
}

// Loader creates one record in a collection held by instance.
type Loader interface {
	Load(ctx context.Context, instance, collection string, record models.Record) (models.Receipt, error)
}

// Gateway is a backend that can be both read from and written to.
type Gateway interface {
	Extractor
	Loader
}

// Observer is told about every finished run. res is nil when the run aborted.
type Observer interface {
	ObserveRun(res *models.MigrationResult, err error, elapsed time.Duration)
}
