package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tetete478/Snipee-sub000/internal/common"
	"github.com/tetete478/Snipee-sub000/internal/logging"
	"github.com/tetete478/Snipee-sub000/internal/merge"
	"github.com/tetete478/Snipee-sub000/internal/models"
	"github.com/tetete478/Snipee-sub000/internal/remote"
	"github.com/tetete478/Snipee-sub000/internal/repositories/metadata"
	"github.com/tetete478/Snipee-sub000/internal/repositories/replica"
)

const (
	DefaultSyncInterval  = 30 * time.Minute
	DefaultDebounceDelay = 5 * time.Second
)

// Config holds the engine's timing knobs. Zero values fall back to the
// package defaults.
type Config struct {
	SyncInterval       time.Duration
	DebounceDelay      time.Duration
	TombstoneRetention time.Duration
}

func (c Config) syncInterval() time.Duration {
	if c.SyncInterval > 0 {
		return c.SyncInterval
	}
	return DefaultSyncInterval
}

func (c Config) debounceDelay() time.Duration {
	if c.DebounceDelay > 0 {
		return c.DebounceDelay
	}
	return DefaultDebounceDelay
}

// Engine runs sync rounds against the shared remote document. All state is
// held on the instance; independent engines over separate stores do not
// interfere with each other.
type Engine struct {
	store    replica.Repository
	meta     metadata.Repository
	remote   remote.Client
	deviceID string
	cfg      Config
	logger   logging.Logger

	// roundMu serializes rounds. Triggers that arrive while a round is in
	// flight are dropped, not queued.
	roundMu sync.Mutex

	handleMu sync.Mutex
	handle   *remote.Handle

	notify chan struct{}

	now func() time.Time
}

func NewEngine(store replica.Repository, meta metadata.Repository, client remote.Client,
	deviceID string, cfg Config, logger logging.Logger) *Engine {
	return &Engine{
		store:    store,
		meta:     meta,
		remote:   client,
		deviceID: deviceID,
		cfg:      cfg,
		logger:   logger.With("device_id", deviceID),
		notify:   make(chan struct{}, 1),
		now:      time.Now,
	}
}

// NotifyLocalChange signals that local data changed and a sync should run
// after the debounce delay. Safe to call from any goroutine; never blocks.
func (e *Engine) NotifyLocalChange() {
	select {
	case e.notify <- struct{}{}:
	default:
	}
}

// SyncNow runs one full sync round. If a round is already in flight it
// returns common.ErrRoundInFlight without waiting.
func (e *Engine) SyncNow(ctx context.Context) error {
	if !e.roundMu.TryLock() {
		return common.ErrRoundInFlight
	}
	defer e.roundMu.Unlock()
	return e.round(ctx)
}

// round executes the sync state machine: resolve handle, download, merge,
// encode, save locally, upload. The context is checked between steps so
// shutdown never waits out a slow transfer it can avoid. The merged document
// is encoded before anything is written: an unencodable document aborts the
// round with local and remote state untouched. The local save then happens
// before the upload, so a failed upload leaves the merged state on disk and
// the next round pushes it.
func (e *Engine) round(ctx context.Context) error {
	started := e.now()

	h, err := e.resolveHandle(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrHandleResolution, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	remoteDoc, err := e.remote.Download(ctx, h)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteRead, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	folders, tombstones, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading local replica: %w", err)
	}

	local := models.SyncDocument{
		Version:  models.DocumentVersion,
		DeviceID: e.deviceID,
		Folders:  folders,
		Deleted:  tombstones,
	}

	merged := merge.Merge(local, remoteDoc, merge.Options{
		Now:       started,
		DeviceID:  e.deviceID,
		Retention: e.cfg.TombstoneRetention,
	})

	data, err := e.remote.Encode(&merged)
	if err != nil {
		if errors.Is(err, common.ErrEncode) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrEncode, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.store.Save(ctx, merged.Folders, merged.Deleted); err != nil {
		return fmt.Errorf("saving merged replica: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.remote.Upload(ctx, h, data); err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteWrite, err)
	}

	if err := e.meta.Set(ctx, metadata.KeyLastSyncAt, []byte(models.FormatTime(started))); err != nil {
		e.logger.Warn(ctx, "failed to record last sync time", "error", err.Error())
	}

	e.logger.Info(ctx, "sync round completed",
		"folders", len(merged.Folders),
		"tombstones", len(merged.Deleted),
		"duration", e.now().Sub(started).String())
	return nil
}

// resolveHandle resolves the remote handle once and caches it for the
// engine's lifetime.
func (e *Engine) resolveHandle(ctx context.Context) (remote.Handle, error) {
	e.handleMu.Lock()
	defer e.handleMu.Unlock()
	if e.handle != nil {
		return *e.handle, nil
	}
	h, err := e.remote.ResolveHandle(ctx)
	if err != nil {
		return remote.Handle{}, err
	}
	e.handle = &h
	return h, nil
}

// Run drives the engine until the context is cancelled: a periodic round
// every sync interval and a debounced round after local change
// notifications. A debounced round is a full merge round, so edits made on
// other devices since the last round are picked up before anything is
// pushed.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.syncInterval())
	defer ticker.Stop()

	debounce := time.NewTimer(e.cfg.debounceDelay())
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	e.logger.Info(ctx, "sync engine started",
		"interval", e.cfg.syncInterval().String(),
		"debounce", e.cfg.debounceDelay().String())

	for {
		select {
		case <-ctx.Done():
			e.logger.Info(ctx, "sync engine stopped")
			return ctx.Err()
		case <-ticker.C:
			e.runTriggered(ctx, "periodic")
		case <-e.notify:
			debounce.Reset(e.cfg.debounceDelay())
		case <-debounce.C:
			e.runTriggered(ctx, "local_change")
		}
	}
}

func (e *Engine) runTriggered(ctx context.Context, trigger string) {
	err := e.SyncNow(ctx)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrRoundInFlight):
		e.logger.Debug(ctx, "sync trigger dropped, round in flight", "trigger", trigger)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
	default:
		e.logger.Error(ctx, "sync round failed", "trigger", trigger, "error", err.Error())
	}
}
