// Package adapter routes record operations to the remote document store or
// the local fallback store. Callers are agnostic to which store served a
// request; the returned Source says where the data went.
package adapter

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/bus"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/localstore"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/record"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/remote"
)

// Source identifies which store served an operation.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// RemoteStore is the subset of the remote client the adapter uses.
type RemoteStore interface {
	Create(ctx context.Context, userID, collection string, rec record.Record) (record.Record, error)
	List(ctx context.Context, userID, collection string) ([]record.Record, error)
	Delete(ctx context.Context, userID, collection, id string) error
	DeleteAll(ctx context.Context, userID, collection string) error
}

// Availability answers whether the backend is currently reachable.
type Availability interface {
	CheckBackend(ctx context.Context, notify bool) bool
}

// Adapter wraps record CRUD with an availability check before each remote
// call and a local fallback as the second line of defense. Raw remote errors
// never propagate to callers of record operations.
type Adapter struct {
	remote RemoteStore
	local  *localstore.DB
	avail  Availability
	ids    *record.IDGenerator
	bus    *bus.Bus
	logger *zap.Logger
}

// New creates an adapter.
func New(remoteStore RemoteStore, local *localstore.DB, avail Availability, ids *record.IDGenerator, b *bus.Bus, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = record.NewIDGenerator(nil)
	}
	return &Adapter{
		remote: remoteStore,
		local:  local,
		avail:  avail,
		ids:    ids,
		bus:    b,
		logger: logger,
	}
}

// Collection maps a record kind to its collection name.
func Collection(kind record.Kind) string {
	return string(kind)
}

// Create stores a record remotely when the backend is reachable, otherwise
// locally with a timestamp-derived ID. A remote failure after the
// availability check passed falls back to the local store as well.
func (a *Adapter) Create(ctx context.Context, userID string, rec record.Record) (record.Record, Source, error) {
	rec.UserID = userID
	if err := rec.Validate(); err != nil {
		return record.Record{}, "", err
	}

	if a.avail.CheckBackend(ctx, false) {
		stored, err := a.remote.Create(ctx, userID, Collection(rec.Kind), rec)
		if err == nil {
			a.publish("record.created", stored.ID)
			return stored, SourceRemote, nil
		}
		a.logger.Warn("remote create failed, falling back to local store",
			zap.Error(err), zap.String("kind", string(rec.Kind)))
	}

	if rec.ID == "" {
		rec.ID = a.ids.LocalID()
	}
	if err := a.local.Append(Collection(rec.Kind), userID, rec); err != nil {
		return record.Record{}, "", err
	}
	a.publish("record.created", rec.ID)
	return rec, SourceLocal, nil
}

// ReadAll reads the user's records of the given kind from the remote store
// when reachable, otherwise from the local store.
func (a *Adapter) ReadAll(ctx context.Context, userID string, kind record.Kind) ([]record.Record, Source, error) {
	if a.avail.CheckBackend(ctx, false) {
		recs, err := a.remote.List(ctx, userID, Collection(kind))
		if err == nil {
			return recs, SourceRemote, nil
		}
		a.logger.Warn("remote read failed, falling back to local store",
			zap.Error(err), zap.String("kind", string(kind)))
	}

	recs, err := a.local.ReadAll(Collection(kind), userID)
	if err != nil {
		return nil, "", err
	}
	return recs, SourceLocal, nil
}

// Delete removes a record from whichever store holds it. When the backend is
// reachable the remote copy is deleted (absence is a no-op) and any local
// copy is removed too; offline, only the local copy is removed.
func (a *Adapter) Delete(ctx context.Context, userID string, kind record.Kind, id string) (Source, error) {
	source := SourceLocal
	if a.avail.CheckBackend(ctx, false) {
		source = SourceRemote
		err := a.remote.Delete(ctx, userID, Collection(kind), id)
		if err != nil && !errors.Is(err, remote.ErrNotFound) {
			a.logger.Warn("remote delete failed", zap.Error(err), zap.String("id", id))
			source = SourceLocal
		}
	}

	if _, err := a.local.Remove(Collection(kind), userID, id); err != nil {
		return source, err
	}
	a.publish("record.deleted", id)
	return source, nil
}

// DeleteAll clears the user's collection in whichever stores are reachable.
func (a *Adapter) DeleteAll(ctx context.Context, userID string, kind record.Kind) (Source, error) {
	source := SourceLocal
	if a.avail.CheckBackend(ctx, false) {
		source = SourceRemote
		if err := a.remote.DeleteAll(ctx, userID, Collection(kind)); err != nil {
			a.logger.Warn("remote delete-all failed", zap.Error(err), zap.String("kind", string(kind)))
			source = SourceLocal
		}
	}
	if err := a.local.Clear(Collection(kind), userID); err != nil {
		return source, err
	}
	return source, nil
}

func (a *Adapter) publish(kind, id string) {
	if a.bus != nil {
		a.bus.Publish(kind, map[string]string{"id": id})
	}
}
