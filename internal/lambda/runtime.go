package lambda

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/signalhouse/creatorstats/internal/config"
	"github.com/signalhouse/creatorstats/internal/jobs"
	"github.com/signalhouse/creatorstats/internal/scoring"
	"github.com/signalhouse/creatorstats/internal/signal"
	"github.com/signalhouse/creatorstats/internal/smartfollow"
	"github.com/signalhouse/creatorstats/internal/smartrank"
	"github.com/signalhouse/creatorstats/internal/store"
	"github.com/signalhouse/creatorstats/internal/store/dynamo"
	"github.com/signalhouse/creatorstats/internal/store/postgres"
)

// LoadConfig loads the runtime configuration from SSM Parameter Store,
// falling back to the process environment when SSM is unreachable or
// missing the required parameters.
func LoadConfig(ctx context.Context, log logrus.FieldLogger) *config.Config {
	loader, err := config.NewSSMConfigLoader(ctx)
	if err != nil {
		log.WithError(err).Warn("SSM unavailable, loading configuration from environment")
		return config.LoadConfigFromEnv()
	}

	cfg, err := loader.LoadConfig(ctx)
	if err != nil {
		log.WithError(err).Warn("SSM configuration incomplete, loading from environment")
		return config.LoadConfigFromEnv()
	}
	return cfg
}

// Runtime bundles the stores and pipeline jobs a Lambda function needs.
type Runtime struct {
	cfg    *config.Config
	db     *sqlx.DB
	stores store.Stores
	log    logrus.FieldLogger
}

// NewRuntime connects the platform stores described by cfg. The snapshot
// cache lives in DynamoDB when a table is configured, otherwise in
// Postgres next to the platform tables.
func NewRuntime(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Runtime, error) {
	db, err := postgres.Connect(cfg.Stores)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	stores := store.Stores{
		Graph:       postgres.NewGraphStore(db),
		Profiles:    postgres.NewProfileStore(db),
		Content:     postgres.NewContentStore(db),
		SmartScores: postgres.NewSmartScoreStore(db),
		Snapshots:   postgres.NewSnapshotStore(db),
		Entities:    postgres.NewEntityStore(db),
	}

	if cfg.Stores.SnapshotTable != "" {
		snapshots, err := dynamo.NewSnapshotStore(ctx, cfg.Stores.SnapshotTable)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create dynamodb snapshot store: %w", err)
		}
		stores.Snapshots = snapshots
	}

	return &Runtime{
		cfg:    cfg,
		db:     db,
		stores: stores,
		log:    log,
	}, nil
}

// Close releases the database pool.
func (r *Runtime) Close() error {
	return r.db.Close()
}

// Stores exposes the wired store bundle.
func (r *Runtime) Stores() store.Stores {
	return r.stores
}

// Config exposes the loaded configuration.
func (r *Runtime) Config() *config.Config {
	return r.cfg
}

// SmartRankJob builds the daily smart-account ranking job.
func (r *Runtime) SmartRankJob() *jobs.SmartRankJob {
	return jobs.NewSmartRankJob(r.stores, smartrank.Config{
		Damping:           r.cfg.Engine.PageRankDamping,
		Iterations:        r.cfg.Engine.PageRankIterations,
		MinAccountAgeDays: r.cfg.Engine.MinAccountAgeDays,
		BotRiskThreshold:  r.cfg.Engine.BotRiskThreshold,
		TopN:              r.cfg.Engine.TopN,
		TopPct:            r.cfg.Engine.TopPct,
	}, r.log)
}

// SnapshotJob builds the daily snapshot sweep job.
func (r *Runtime) SnapshotJob() *jobs.SnapshotJob {
	return jobs.NewSnapshotJob(r.stores, r.calcConfig(), r.log)
}

// ScoringService builds the on-demand scorecard service over the
// runtime's stores, for callers that score single entities or creators.
func (r *Runtime) ScoringService() *scoring.Service {
	return scoring.NewService(r.stores, r.calcConfig(), signal.DefaultConfig(), r.log)
}

func (r *Runtime) calcConfig() smartfollow.Config {
	return smartfollow.Config{
		FallbackWindowDays: r.cfg.Engine.FallbackWindowDays,
		FallbackMinScore:   r.cfg.Engine.FallbackMinScore,
		FallbackPercentile: r.cfg.Engine.FallbackPercentile,
	}
}
