// Package sync merges records accumulated in the local fallback store into
// the remote store once connectivity returns.
package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/adapter"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/bus"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/localstore"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/record"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/remote"
)

// ErrOffline is returned when reconciliation aborts early because either
// connectivity or backend availability could not be confirmed.
var ErrOffline = errors.New("sync: backend unavailable")

// RemoteStore is the subset of the remote client the reconciler uses.
type RemoteStore interface {
	List(ctx context.Context, userID, collection string) ([]record.Record, error)
	Create(ctx context.Context, userID, collection string, rec record.Record) (record.Record, error)
	BatchCreate(ctx context.Context, userID, collection string, recs []record.Record) error
}

// Health is the availability surface consulted before reconciling.
type Health interface {
	CheckConnection(ctx context.Context) bool
	CheckBackend(ctx context.Context, notify bool) bool
}

// Report counts the outcome of one reconciliation run.
type Report struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Options configures reconciliation policy.
type Options struct {
	// BatchSize caps operations per batch commit. Zero means the
	// backend limit (500).
	BatchSize int
	// PruneAfterSync removes local copies once confirmed remote.
	// Default false: local copies are an archival fallback.
	PruneAfterSync bool
}

// Reconciler pushes locally stored records to the remote store.
type Reconciler struct {
	remote RemoteStore
	local  *localstore.DB
	health Health
	bus    *bus.Bus
	logger *zap.Logger
	opts   Options
}

// New creates a reconciler.
func New(remoteStore RemoteStore, local *localstore.DB, health Health, b *bus.Bus, logger *zap.Logger, opts Options) *Reconciler {
	if opts.BatchSize <= 0 || opts.BatchSize > remote.MaxBatchSize {
		opts.BatchSize = remote.MaxBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		remote: remoteStore,
		local:  local,
		health: health,
		bus:    b,
		logger: logger,
		opts:   opts,
	}
}

// Run reconciles every record kind for the user. Local records whose ID
// already exists remotely are skipped; the rest are committed in batches.
// Per-record failures are logged and counted, never fatal to the run.
func (r *Reconciler) Run(ctx context.Context, userID string) (Report, error) {
	if !r.health.CheckConnection(ctx) {
		return Report{}, ErrOffline
	}
	if !r.health.CheckBackend(ctx, false) {
		return Report{}, ErrOffline
	}

	var report Report
	for _, kind := range record.Kinds {
		kr, err := r.runKind(ctx, userID, kind)
		report.Synced += kr.Synced
		report.Skipped += kr.Skipped
		report.Failed += kr.Failed
		if err != nil {
			// A kind-level failure (e.g. the remote listing call) is
			// logged and the remaining kinds still get their chance.
			r.logger.Warn("reconciliation failed for kind",
				zap.String("kind", string(kind)), zap.Error(err))
		}
	}

	r.logger.Info("reconciliation finished",
		zap.Int("synced", report.Synced),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	if r.bus != nil {
		r.bus.Publish("sync.completed", report)
	}
	return report, nil
}

func (r *Reconciler) runKind(ctx context.Context, userID string, kind record.Kind) (Report, error) {
	var report Report
	collection := adapter.Collection(kind)

	locals, err := r.local.ReadAll(collection, userID)
	if err != nil {
		return report, fmt.Errorf("read local %s: %w", collection, err)
	}
	if len(locals) == 0 {
		return report, nil
	}

	remotes, err := r.remote.List(ctx, userID, collection)
	if err != nil {
		return report, fmt.Errorf("list remote %s: %w", collection, err)
	}
	existing := make(map[string]bool, len(remotes))
	for _, rec := range remotes {
		existing[rec.ID] = true
	}

	var pending []record.Record
	for _, rec := range locals {
		if existing[rec.ID] {
			report.Skipped++
			continue
		}
		pending = append(pending, rec)
	}

	for start := 0; start < len(pending); start += r.opts.BatchSize {
		end := min(start+r.opts.BatchSize, len(pending))
		batch := pending[start:end]

		if err := r.remote.BatchCreate(ctx, userID, collection, batch); err != nil {
			r.logger.Warn("batch commit failed, retrying records individually",
				zap.String("collection", collection), zap.Int("size", len(batch)), zap.Error(err))
			for _, rec := range batch {
				if _, err := r.remote.Create(ctx, userID, collection, rec); err != nil {
					r.logger.Warn("record sync failed, skipping",
						zap.String("id", rec.ID), zap.Error(err))
					report.Failed++
					continue
				}
				report.Synced++
				r.prune(collection, userID, rec.ID)
			}
			continue
		}
		report.Synced += len(batch)
		for _, rec := range batch {
			r.prune(collection, userID, rec.ID)
		}
	}
	return report, nil
}

func (r *Reconciler) prune(collection, userID, id string) {
	if !r.opts.PruneAfterSync {
		return
	}
	if _, err := r.local.Remove(collection, userID, id); err != nil {
		r.logger.Warn("failed to prune synced record", zap.String("id", id), zap.Error(err))
	}
}
