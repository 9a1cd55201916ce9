package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeFetcher struct {
	payload Payload
	raw     []byte
	err     error
	calls   int
}

func (f *fakeFetcher) FetchEventDump(_ context.Context, _ string) (Payload, []byte, error) {
	f.calls++
	if f.err != nil {
		return Payload{}, nil, f.err
	}
	return f.payload, f.raw, nil
}

func newTestPoller(t *testing.T, store *testStore, fetcher *fakeFetcher, snapshots *fakeSnapshotRepo) *Poller {
	t.Helper()
	return NewPoller(fetcher, store.service(), snapshots, PollerConfig{
		EventID:     "60",
		Interval:    time.Minute,
		SnapshotDir: t.TempDir(),
	}, nil)
}

func TestPoller_TickSyncsChangedPayload(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	fetcher := &fakeFetcher{payload: samplePayload(), raw: []byte(`{"info":{}}`)}
	snapshots := newFakeSnapshotRepo()
	poller := newTestPoller(t, store, fetcher, snapshots)

	if err := poller.tick(context.Background()); err != nil {
		t.Fatalf("tick returned error: %v", err)
	}

	status := poller.Status()
	if status.Ticks != 1 || status.Syncs != 1 || status.Skips != 0 {
		t.Fatalf("unexpected status after first tick: %+v", status)
	}
	if status.LastHash == "" || status.LastSyncAt == nil {
		t.Fatalf("sync bookkeeping missing: %+v", status)
	}
	if len(store.results.rows) != 2 {
		t.Fatalf("expected results written, got %d", len(store.results.rows))
	}
	if len(snapshots.rows) != 1 {
		t.Fatalf("expected snapshot row, got %d", len(snapshots.rows))
	}

	path := filepath.Join(poller.cfg.SnapshotDir, "event_60.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
}

func TestPoller_TickSkipsUnchangedPayload(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	fetcher := &fakeFetcher{payload: samplePayload(), raw: []byte(`{}`)}
	poller := newTestPoller(t, store, fetcher, newFakeSnapshotRepo())

	if err := poller.tick(context.Background()); err != nil {
		t.Fatalf("first tick returned error: %v", err)
	}
	writesAfterFirst := store.results.writes

	if err := poller.tick(context.Background()); err != nil {
		t.Fatalf("second tick returned error: %v", err)
	}

	status := poller.Status()
	if status.Skips != 1 || status.Syncs != 1 {
		t.Fatalf("unchanged payload should skip, status: %+v", status)
	}
	if store.results.writes != writesAfterFirst {
		t.Fatalf("unchanged payload caused writes: %d -> %d", writesAfterFirst, store.results.writes)
	}
}

func TestPoller_TickResyncsOnChange(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	fetcher := &fakeFetcher{payload: samplePayload(), raw: []byte(`{}`)}
	poller := newTestPoller(t, store, fetcher, newFakeSnapshotRepo())

	if err := poller.tick(context.Background()); err != nil {
		t.Fatalf("first tick returned error: %v", err)
	}
	firstHash := poller.Status().LastHash

	// One field changes; everything else resolves to the same rows.
	changed := samplePayload()
	changed.Schedule[0].Results[0].Placement = strPtr("2")
	fetcher.payload = changed

	if err := poller.tick(context.Background()); err != nil {
		t.Fatalf("second tick returned error: %v", err)
	}

	status := poller.Status()
	if status.Syncs != 2 {
		t.Fatalf("changed payload should resync, status: %+v", status)
	}
	if status.LastHash == firstHash {
		t.Fatal("hash did not change with payload")
	}
	if len(store.results.rows) != 2 || len(store.competitors.rows) != 2 {
		t.Fatalf("resync duplicated rows: results=%d competitors=%d",
			len(store.results.rows), len(store.competitors.rows))
	}

	updated := store.results.rows[1]
	if updated.Placement == nil || *updated.Placement != 2 {
		t.Fatalf("updated placement not stored: %v", updated.Placement)
	}
}

func TestPoller_FetchFailureKeepsBaseline(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	fetcher := &fakeFetcher{payload: samplePayload(), raw: []byte(`{}`)}
	poller := newTestPoller(t, store, fetcher, newFakeSnapshotRepo())

	if err := poller.tick(context.Background()); err != nil {
		t.Fatalf("first tick returned error: %v", err)
	}

	fetcher.err = errors.New("connection refused")
	if err := poller.tick(context.Background()); err == nil {
		t.Fatal("expected error from failed fetch")
	}

	status := poller.Status()
	if status.Failures != 1 {
		t.Fatalf("expected 1 failure, status: %+v", status)
	}

	// Provider recovers with the same payload: still skipped.
	fetcher.err = nil
	if err := poller.tick(context.Background()); err != nil {
		t.Fatalf("recovery tick returned error: %v", err)
	}
	if got := poller.Status().Skips; got != 1 {
		t.Fatalf("expected recovery skip, got %d skips", got)
	}
}

func TestPoller_RunStopsAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	fetcher := &fakeFetcher{err: errors.New("boom")}
	poller := NewPoller(fetcher, store.service(), newFakeSnapshotRepo(), PollerConfig{
		EventID:     "60",
		Interval:    time.Millisecond,
		MaxAttempts: 2,
	}, nil)

	err := poller.Run(context.Background())
	if err == nil {
		t.Fatal("expected Run to give up")
	}
	if fetcher.calls != 2 {
		t.Fatalf("expected 2 fetch attempts, got %d", fetcher.calls)
	}
}

func TestPoller_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	fetcher := &fakeFetcher{payload: samplePayload(), raw: []byte(`{}`)}
	poller := newTestPoller(t, store, fetcher, newFakeSnapshotRepo())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := poller.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPoller_SyncOnceIgnoresHashGate(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	fetcher := &fakeFetcher{payload: samplePayload(), raw: []byte(`{}`)}
	poller := newTestPoller(t, store, fetcher, newFakeSnapshotRepo())

	if err := poller.SyncOnce(context.Background()); err != nil {
		t.Fatalf("first SyncOnce returned error: %v", err)
	}
	writesAfterFirst := store.results.writes

	if err := poller.SyncOnce(context.Background()); err != nil {
		t.Fatalf("second SyncOnce returned error: %v", err)
	}
	if store.results.writes <= writesAfterFirst {
		t.Fatal("SyncOnce should always process the payload")
	}
}
