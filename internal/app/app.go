package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/openregatta/timing-sync/external/clockcaster"
	"github.com/openregatta/timing-sync/internal/config"
	"github.com/openregatta/timing-sync/internal/infrastructure/repository/postgres"
	"github.com/openregatta/timing-sync/internal/platform/logging"
	"github.com/openregatta/timing-sync/internal/usecase"
)

// Runtime holds the wired service graph shared by the one-shot and polling
// entry points.
type Runtime struct {
	DB     *sqlx.DB
	Client *clockcaster.Client
	Ingest *usecase.IngestService
	Poller *usecase.Poller
}

func NewRuntime(cfg config.Config, eventID string, interval time.Duration, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}

	client := clockcaster.NewClient(clockcaster.ClientConfig{
		HTTPClient: &http.Client{Timeout: cfg.ClockCasterTimeout},
		BaseURL:    cfg.ClockCasterBaseURL,
		Timeout:    cfg.ClockCasterTimeout,
		MaxRetries: cfg.ClockCasterMaxRetries,
		Logger:     logger,
	})

	ingest := usecase.NewIngestService(
		postgres.NewEventRepository(db),
		postgres.NewCategoryRepository(db),
		postgres.NewCompetitorRepository(db),
		postgres.NewRaceRepository(db),
		postgres.NewScheduleRepository(db),
		postgres.NewResultRepository(db),
		cfg.ProviderID,
		cfg.ReferenceYear,
		logger,
	)

	if interval <= 0 {
		interval = cfg.PollInterval
	}
	poller := usecase.NewPoller(client, ingest, postgres.NewSnapshotRepository(db), usecase.PollerConfig{
		EventID:     eventID,
		Interval:    interval,
		MaxAttempts: cfg.PollMaxAttempts,
		SnapshotDir: cfg.SnapshotDir,
	}, logger)

	return &Runtime{
		DB:     db,
		Client: client,
		Ingest: ingest,
		Poller: poller,
	}, nil
}

func (r *Runtime) Close() error {
	return r.DB.Close()
}

// OpenDatabase connects through the instrumented sqlx wrapper so every query
// shows up as a span on the active trace.
func OpenDatabase(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
