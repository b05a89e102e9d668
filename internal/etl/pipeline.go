package etl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bangtanmom/contentsync/internal/config"
	"github.com/bangtanmom/contentsync/pkg/models"
)

// RunOptions are the per-invocation parameters of a migration run. Everything
// else, the target instance included, comes from the pipeline configuration.
type RunOptions struct {
	DryRun bool
	// SourceInstance overrides the configured source instance when set.
	SourceInstance string
}

// Pipeline copies posts from a source instance to the configured target
// instance, skipping posts whose slug the target already has.
//
// A pipeline keeps no state between runs and may serve concurrent runs, but
// two live runs against the same target can both create a slug neither saw.
type Pipeline struct {
	Config      *config.Config
	Source      Extractor
	Target      Gateway
	Transformer *Transformer
	Observer    Observer
}

// NewPipeline creates a pipeline. A nil mapping uses the default post rules.
func NewPipeline(cfg *config.Config, source Extractor, target Gateway, mapping *models.MappingSchema) *Pipeline {
	return &Pipeline{
		Config:      cfg,
		Source:      source,
		Target:      target,
		Transformer: NewTransformer(mapping),
	}
}

// Run performs one migration. Records are processed strictly in source order.
//
// A returned error aborts the whole run and no result is produced: invalid
// configuration, a failed read of either side, or, unless the pipeline is
// configured to continue on write errors, a failed create.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (res *models.MigrationResult, err error) {
	start := time.Now()
	runID := uuid.NewString()

	sourceInstance := opts.SourceInstance
	if sourceInstance == "" {
		sourceInstance = p.Config.SourceInstance
	}
	log := slog.With("run_id", runID, "source", sourceInstance, "target", p.Config.TargetInstance, "dry_run", opts.DryRun)

	defer func() {
		if p.Observer != nil {
			p.Observer.ObserveRun(res, err, time.Since(start))
		}
		if err != nil {
			log.Error("Migration aborted", "error", err)
		}
	}()

	if err := p.Config.Validate(); err != nil {
		return nil, err
	}

	if p.Config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Config.RunTimeout)
		defer cancel()
	}

	collection := p.Config.Collection
	log.Info("Starting migration", "entity", p.Transformer.Mapping.Entity, "collection", collection, "limit", p.Config.FetchLimit)

	sourceRows, err := p.Source.Extract(ctx, sourceInstance, collection, p.Config.FetchLimit)
	if err != nil {
		return nil, err
	}
	targetRows, err := p.Target.Extract(ctx, p.Config.TargetInstance, collection, p.Config.FetchLimit)
	if err != nil {
		return nil, err
	}

	index := NewDedupIndex(targetRows)
	log.Debug("Fetched records", "source_count", len(sourceRows), "target_count", len(targetRows), "known_slugs", index.Len())

	res = &models.MigrationResult{
		RunID:          runID,
		DryRun:         opts.DryRun,
		SourceInstance: sourceInstance,
		TargetInstance: p.Config.TargetInstance,
		SourceCount:    len(sourceRows),
		Errors:         []models.RecordError{},
	}

	for _, row := range sourceRows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("migration interrupted after %d records: %w", res.Created+res.Skipped+len(res.Errors), err)
		}

		doc, err := p.Transformer.Normalize(row)
		if err != nil {
			log.Warn("Rejected source record", "error", err, "payload", doc)
			res.Errors = append(res.Errors, models.RecordError{Error: err.Error(), Payload: doc})
			continue
		}

		slug := doc.String("slug")
		if index.Has(slug) {
			log.Debug("Skipping existing post", "slug", slug)
			res.Skipped++
			continue
		}

		if opts.DryRun {
			log.Debug("Would create post", "slug", slug)
			res.Created++
			index.Add(slug)
			continue
		}

		receipt, err := p.Target.Load(ctx, p.Config.TargetInstance, collection, doc)
		if err != nil {
			if !p.Config.ContinueOnWriteError {
				return nil, err
			}
			log.Warn("Create failed, continuing", "slug", slug, "error", err)
			res.Errors = append(res.Errors, models.RecordError{Error: err.Error(), Payload: doc})
			continue
		}

		log.Debug("Created post", "slug", slug, "id", receipt.ID)
		res.Created++
		index.Add(slug)
	}

	res.OK = true
	log.Info("Migration finished", "source_count", res.SourceCount, "created", res.Created, "skipped", res.Skipped, "errors", len(res.Errors), "elapsed", time.Since(start))
	return res, nil
}
