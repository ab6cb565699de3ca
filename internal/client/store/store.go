// Package store implements the client-side entity store: the single
// source of truth for the users and locales collections. It owns the
// persisted cache, funnels every fetch through unwrapping, normalization
// and reconciliation, and serializes operations so an in-flight mutation
// is never overwritten by a stale refetch.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/evolution-crm/evoadmin/internal/client/cache"
	"github.com/evolution-crm/evoadmin/internal/identity"
	"github.com/evolution-crm/evoadmin/internal/models"
	"github.com/evolution-crm/evoadmin/internal/reconcile"
	"github.com/evolution-crm/evoadmin/internal/unwrap"
)

// State is the lifecycle state of an entity collection.
type State int

const (
	// StateIdle means no load has been attempted yet.
	StateIdle State = iota
	// StateLoading means a fetch is in flight.
	StateLoading
	// StateReady means the collection is usable. Stale reports whether
	// it was confirmed by the most recent fetch.
	StateReady
	// StateFailed means a load failed with no cached data to fall back on.
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is the read surface handed to the UI layer.
type Snapshot[T reconcile.Keyed] struct {
	// Records is the current collection, in store order.
	Records []T
	// State is the collection lifecycle state.
	State State
	// Stale is true while Records come from cache without having been
	// confirmed by a successful fetch; the UI must warn the user.
	Stale bool
	// Err is the reason for the last failure, empty otherwise.
	Err string
	// Dropped counts records skipped during the last load because they
	// could not be normalized. Never hidden: drops are always countable.
	Dropped int
	// View is the transient selection/search state.
	View View
}

// ConflictError reports a mutation that targeted an identity not present
// in the collection. The store state is left unchanged.
type ConflictError struct {
	// Identity is the identifier the caller passed.
	Identity string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("store: no record matches identity %q", e.Identity)
}

// ErrNoRecordInResponse is returned when a mutation succeeded on the
// server but the response carried no usable record to apply locally.
var ErrNoRecordInResponse = errors.New("store: mutation response contained no record")

// API is the HTTP surface the store consumes.
type API interface {
	Get(ctx context.Context, path string) (any, error)
	Post(ctx context.Context, path string, body any) (any, error)
	Put(ctx context.Context, path string, body any) (any, error)
	Patch(ctx context.Context, path string, body any) (any, error)
	Delete(ctx context.Context, path string) (any, error)
}

// loadCall is an in-flight load; concurrent callers share its result.
type loadCall[T reconcile.Keyed] struct {
	done chan struct{}
	snap Snapshot[T]
	err  error
}

// Store holds one entity collection plus its view state.
type Store[T reconcile.Keyed] struct {
	codec Codec[T]
	api   API
	cache *cache.File
	log   *zap.Logger

	// ops serializes load and mutations end to end, network call
	// included. This is the internal queue: no two mutations interleave
	// their read-modify-write of the cache, and a load requested while a
	// mutation is in flight waits for the mutation to settle.
	ops sync.Mutex

	mu        sync.Mutex
	records   []T
	state     State
	stale     bool
	lastErr   string
	dropped   int
	view      View
	inflight  *loadCall[T]
	listeners []func(Snapshot[T])
}

// NewStore builds a store for one entity kind. cache is exclusively owned
// by the stores sharing it.
func NewStore[T reconcile.Keyed](codec Codec[T], api API, c *cache.File, log *zap.Logger) *Store[T] {
	return &Store[T]{
		codec: codec,
		api:   api,
		cache: c,
		log:   log.With(zap.String("kind", string(codec.Kind))),
		state: StateIdle,
		view:  View{Mode: ModeList},
	}
}

// Snapshot returns the current read surface.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to be called on every state change, starting
// with the current snapshot. fn runs with the store lock held and must
// not call back into the store.
func (s *Store[T]) Subscribe(fn func(Snapshot[T])) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	fn(snap)
}

func (s *Store[T]) snapshotLocked() Snapshot[T] {
	records := make([]T, len(s.records))
	copy(records, s.records)
	return Snapshot[T]{
		Records: records,
		State:   s.state,
		Stale:   s.stale,
		Err:     s.lastErr,
		Dropped: s.dropped,
		View:    s.view.clone(),
	}
}

func (s *Store[T]) notifyLocked() {
	snap := s.snapshotLocked()
	for _, fn := range s.listeners {
		fn(snap)
	}
}

// Load fetches the collection from the backend. Cached data is surfaced
// immediately (marked stale) while the fetch runs. Only one load per
// store is in flight; a load requested meanwhile joins it and returns the
// same result. A network failure with a non-empty cache degrades to
// Ready(stale) instead of failing.
func (s *Store[T]) Load(ctx context.Context) (Snapshot[T], error) {
	s.mu.Lock()
	if call := s.inflight; call != nil {
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.snap, call.err
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
	call := &loadCall[T]{done: make(chan struct{})}
	s.inflight = call
	s.mu.Unlock()

	snap, err := s.load(ctx)

	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()
	call.snap, call.err = snap, err
	close(call.done)
	return snap, err
}

func (s *Store[T]) load(ctx context.Context) (Snapshot[T], error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	// Surface stale cache before touching the network.
	var cached []T
	if found, err := s.cache.Get(s.codec.Kind, &cached); err != nil {
		s.log.Warn("unreadable cache slot", zap.Error(err))
	} else if found && len(cached) > 0 {
		s.mu.Lock()
		if len(s.records) == 0 {
			s.records = cached
			s.stale = true
		}
		s.state = StateLoading
		s.notifyLocked()
		s.mu.Unlock()
	} else {
		s.mu.Lock()
		s.state = StateLoading
		s.notifyLocked()
		s.mu.Unlock()
	}

	body, err := s.api.Get(ctx, s.codec.ListPath)
	if err != nil {
		return s.loadFailed(err)
	}

	raws, reason := unwrap.ExtractRecordList(body, s.codec.KeyHints)
	if len(raws) == 0 && reason != "" {
		s.log.Info("no records in response", zap.String("reason", reason))
	}

	fresh := make([]T, 0, len(raws))
	dropped := 0
	var normErrs error
	for _, raw := range raws {
		rec, err := s.codec.Normalize(raw)
		if err != nil {
			// Per-record failures never abort the batch.
			dropped++
			normErrs = multierr.Append(normErrs, err)
			continue
		}
		fresh = append(fresh, rec)
	}
	if normErrs != nil {
		s.log.Warn("records dropped during normalization",
			zap.Int("dropped", dropped), zap.Error(normErrs))
	}

	merged := reconcile.Merge(fresh, cached)

	s.mu.Lock()
	s.records = merged
	s.state = StateReady
	s.stale = false
	s.lastErr = ""
	s.dropped = dropped
	s.notifyLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	// An empty result never clobbers a previously populated cache slot:
	// absence of data is not evidence of deletion.
	if len(merged) > 0 {
		if err := s.cache.Put(s.codec.Kind, merged); err != nil {
			s.log.Error("failed to persist cache", zap.Error(err))
		}
	}
	return snap, nil
}

func (s *Store[T]) loadFailed(cause error) (Snapshot[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) > 0 {
		// Degraded: keep showing what we have, flagged stale.
		s.state = StateReady
		s.stale = true
		s.lastErr = cause.Error()
		s.log.Warn("load failed, serving stale cache", zap.Error(cause))
		s.notifyLocked()
		return s.snapshotLocked(), nil
	}
	s.state = StateFailed
	s.lastErr = cause.Error()
	s.notifyLocked()
	return s.snapshotLocked(), cause
}

// Create posts input and appends the created record to the collection
// and the cache.
func (s *Store[T]) Create(ctx context.Context, input models.RawRecord) (T, error) {
	var zero T
	s.ops.Lock()
	defer s.ops.Unlock()

	body, err := s.api.Post(ctx, s.codec.CreatePath, input)
	if err != nil {
		return zero, err
	}
	rec, err := s.recordFromResponse(body)
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	s.records = append(s.records, rec)
	s.state = StateReady
	s.notifyLocked()
	records := make([]T, len(s.records))
	copy(records, s.records)
	s.mu.Unlock()

	s.persist(records)
	return rec, nil
}

// Update puts input against the resolved record and applies the result
// locally. The server's returned record wins when present; otherwise the
// input fields are overlaid on the existing record.
func (s *Store[T]) Update(ctx context.Context, id string, input models.RawRecord) (T, error) {
	var zero T
	s.ops.Lock()
	defer s.ops.Unlock()

	idx, target, err := s.find(id)
	if err != nil {
		return zero, err
	}

	body, err := s.api.Put(ctx, s.codec.ItemPath(target.ID()), input)
	if err != nil {
		return zero, err
	}

	rec, recErr := s.recordFromResponse(body)
	if recErr != nil {
		// Partial-update responses without a body: overlay the accepted
		// input on the record we already hold.
		raw := s.codec.Denormalize(target)
		for k, v := range input {
			raw[k] = v
		}
		raw["_id"] = target.ID()
		rec, err = s.codec.Normalize(raw)
		if err != nil {
			return zero, fmt.Errorf("apply update locally: %w", err)
		}
	}

	s.mu.Lock()
	s.records[idx] = rec
	s.notifyLocked()
	records := make([]T, len(s.records))
	copy(records, s.records)
	s.mu.Unlock()

	s.persist(records)
	return rec, nil
}

// Delete removes the resolved record on the server, then from the
// collection and the cache. Deletion is always explicit; it is never
// inferred from a record missing in a fetch.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	s.ops.Lock()
	defer s.ops.Unlock()

	idx, target, err := s.find(id)
	if err != nil {
		return err
	}

	if _, err := s.api.Delete(ctx, s.codec.ItemPath(target.ID())); err != nil {
		return err
	}

	s.mu.Lock()
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	if identity.Equal(s.view.Selected, target.ID()) {
		s.view.Selected = ""
	}
	s.notifyLocked()
	records := make([]T, len(s.records))
	copy(records, s.records)
	s.mu.Unlock()

	s.persist(records)
	return nil
}

// ToggleActive flips the active flag of the resolved record.
func (s *Store[T]) ToggleActive(ctx context.Context, id string) (T, error) {
	var zero T
	s.ops.Lock()
	defer s.ops.Unlock()

	idx, target, err := s.find(id)
	if err != nil {
		return zero, err
	}
	next := !s.codec.IsActive(target)

	_, err = s.api.Patch(ctx, s.codec.StatusPath(target.ID()), map[string]any{"activo": next})
	if err != nil {
		return zero, err
	}

	rec := s.codec.ApplyActive(target, next)
	s.mu.Lock()
	s.records[idx] = rec
	s.notifyLocked()
	records := make([]T, len(s.records))
	copy(records, s.records)
	s.mu.Unlock()

	s.persist(records)
	return rec, nil
}

// find resolves id against the collection using canonical identity
// comparison. Missing records yield a ConflictError.
func (s *Store[T]) find(id string) (int, T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if identity.Equal(r.ID(), id) {
			return i, r, nil
		}
	}
	var zero T
	return 0, zero, &ConflictError{Identity: id}
}

// recordFromResponse extracts and normalizes the single record of a
// mutation response.
func (s *Store[T]) recordFromResponse(body any) (T, error) {
	var zero T
	raws, _ := unwrap.ExtractRecordList(body, s.codec.KeyHints)
	if len(raws) == 0 {
		return zero, ErrNoRecordInResponse
	}
	return s.codec.Normalize(raws[0])
}

func (s *Store[T]) persist(records []T) {
	if err := s.cache.Put(s.codec.Kind, records); err != nil {
		s.log.Error("failed to persist cache", zap.Error(err))
	}
}
