package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/openregatta/timing-sync/internal/domain/snapshot"
	"github.com/openregatta/timing-sync/internal/platform/logging"
)

// PayloadFetcher is the source side of the poll loop. The raw response body
// is returned alongside the decoded tree so snapshots keep the bytes the
// provider actually sent.
type PayloadFetcher interface {
	FetchEventDump(ctx context.Context, eventID string) (Payload, []byte, error)
}

type PollerConfig struct {
	EventID  string
	Source   string
	Interval time.Duration
	// MaxAttempts bounds consecutive failed fetches before the loop gives
	// up; zero retries forever. Both knobs are configuration, not constants.
	MaxAttempts int
	SnapshotDir string
}

// PollerStatus is a point-in-time view of the loop, served by the status
// endpoint.
type PollerStatus struct {
	EventID    string     `json:"event_id"`
	Ticks      int64      `json:"ticks"`
	Syncs      int64      `json:"syncs"`
	Skips      int64      `json:"skips"`
	Failures   int64      `json:"failures"`
	LastHash   string     `json:"last_hash,omitempty"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
}

// Poller owns the fetch/compare/sync cycle. A content hash of each payload is
// compared against the previous successful sync; unchanged payloads produce
// zero writes to entity tables.
type Poller struct {
	fetcher   PayloadFetcher
	ingest    *IngestService
	snapshots snapshot.Repository
	cfg       PollerConfig
	logger    *logging.Logger

	mu     sync.Mutex
	status PollerStatus
}

func NewPoller(
	fetcher PayloadFetcher,
	ingest *IngestService,
	snapshots snapshot.Repository,
	cfg PollerConfig,
	logger *logging.Logger,
) *Poller {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Source == "" {
		cfg.Source = "clockcaster"
	}

	return &Poller{
		fetcher:   fetcher,
		ingest:    ingest,
		snapshots: snapshots,
		cfg:       cfg,
		logger:    logger,
		status:    PollerStatus{EventID: cfg.EventID},
	}
}

// Run polls until the context is cancelled or the consecutive-failure ceiling
// is hit. The first fetch happens immediately; each subsequent tick waits the
// configured interval.
func (p *Poller) Run(ctx context.Context) error {
	if p.fetcher == nil || p.ingest == nil {
		return fmt.Errorf("%w: poller is not fully configured", ErrDependencyUnavailable)
	}

	p.logger.Info("polling started",
		"event_id", p.cfg.EventID,
		"interval", p.cfg.Interval,
		"max_attempts", p.cfg.MaxAttempts,
	)

	consecutiveFailures := 0
	for {
		if err := p.tick(ctx); err != nil {
			consecutiveFailures++
			p.logger.Error("poll tick failed",
				"event_id", p.cfg.EventID,
				"consecutive_failures", consecutiveFailures,
				"error", err,
			)
			if p.cfg.MaxAttempts > 0 && consecutiveFailures >= p.cfg.MaxAttempts {
				return fmt.Errorf("giving up after %d consecutive failed polls: %w", consecutiveFailures, err)
			}
		} else {
			consecutiveFailures = 0
		}

		select {
		case <-ctx.Done():
			p.logger.Info("polling stopped", "event_id", p.cfg.EventID)
			return ctx.Err()
		case <-time.After(p.cfg.Interval):
		}
	}
}

func (p *Poller) tick(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Poller.tick")
	defer span.End()

	p.bump(func(s *PollerStatus) { s.Ticks++ })

	payload, raw, err := p.fetcher.FetchEventDump(ctx, p.cfg.EventID)
	if err != nil {
		p.bump(func(s *PollerStatus) { s.Failures++ })
		return fmt.Errorf("fetch event dump event_id=%s: %w", p.cfg.EventID, err)
	}

	hash, err := PayloadHash(payload)
	if err != nil {
		p.bump(func(s *PollerStatus) { s.Failures++ })
		return fmt.Errorf("hash payload event_id=%s: %w", p.cfg.EventID, err)
	}

	if hash == p.lastHash() {
		p.bump(func(s *PollerStatus) { s.Skips++ })
		p.logger.Info("no changes detected, skipping sync", "event_id", p.cfg.EventID, "hash", hash)
		return nil
	}

	p.persistSnapshot(ctx, hash, raw)

	if err := p.ingest.ProcessPayload(ctx, payload); err != nil {
		p.bump(func(s *PollerStatus) { s.Failures++ })
		// Baseline hash is untouched so the next tick retries this payload.
		return fmt.Errorf("process payload event_id=%s: %w", p.cfg.EventID, err)
	}

	now := time.Now().UTC()
	p.bump(func(s *PollerStatus) {
		s.Syncs++
		s.LastHash = hash
		s.LastSyncAt = &now
	})
	p.logger.Info("payload synchronized", "event_id", p.cfg.EventID, "hash", hash)
	return nil
}

// SyncOnce is the one-shot path: fetch, snapshot, ingest, no hash gate.
func (p *Poller) SyncOnce(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Poller.SyncOnce")
	defer span.End()

	payload, raw, err := p.fetcher.FetchEventDump(ctx, p.cfg.EventID)
	if err != nil {
		return fmt.Errorf("fetch event dump event_id=%s: %w", p.cfg.EventID, err)
	}

	hash, err := PayloadHash(payload)
	if err != nil {
		return fmt.Errorf("hash payload event_id=%s: %w", p.cfg.EventID, err)
	}
	p.persistSnapshot(ctx, hash, raw)

	if err := p.ingest.ProcessPayload(ctx, payload); err != nil {
		return fmt.Errorf("process payload event_id=%s: %w", p.cfg.EventID, err)
	}
	return nil
}

func (p *Poller) Status() PollerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.status
	if p.status.LastSyncAt != nil {
		at := *p.status.LastSyncAt
		out.LastSyncAt = &at
	}
	return out
}

// persistSnapshot writes the raw payload to disk and to the snapshot table.
// Both are audit trails: failures are logged, never fatal to the sync.
func (p *Poller) persistSnapshot(ctx context.Context, hash string, raw []byte) {
	if len(raw) == 0 {
		return
	}

	if p.cfg.SnapshotDir != "" {
		path := filepath.Join(p.cfg.SnapshotDir, fmt.Sprintf("event_%s.json", p.cfg.EventID))
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			p.logger.WarnContext(ctx, "write snapshot file failed", "path", path, "error", err)
		} else {
			p.logger.DebugContext(ctx, "snapshot written", "path", path, "bytes", len(raw))
		}
	}

	if p.snapshots == nil {
		return
	}
	err := p.snapshots.Upsert(ctx, snapshot.Snapshot{
		Source:      p.cfg.Source,
		EventKey:    p.cfg.EventID,
		Payload:     string(raw),
		PayloadHash: hash,
		FetchedAt:   time.Now().UTC(),
	})
	if err != nil {
		p.logger.WarnContext(ctx, "persist snapshot row failed", "event_id", p.cfg.EventID, "error", err)
	}
}

func (p *Poller) lastHash() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status.LastHash
}

func (p *Poller) bump(apply func(*PollerStatus)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	apply(&p.status)
}
