package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/restaurants/internal/logging"
)

// ReloadTimeout is the maximum duration for a reload.
var ReloadTimeout = 5 * time.Minute

// Service serves searches against the current dataset snapshot and replaces
// the snapshot on reload. Searches never take a lock: each one reads the
// snapshot pointer once and runs against that snapshot to completion.
type Service struct {
	source string
	opts   LoadOptions

	current atomic.Pointer[Snapshot]
	reloads *ReloadLimiter

	mu            sync.RWMutex
	lastReloadErr error
	lastReloadAt  time.Time
}

// NewService wraps an already loaded snapshot. source and opts are used for
// reloads.
func NewService(snap *Snapshot, source string, opts LoadOptions) *Service {
	s := &Service{
		source:  source,
		opts:    opts,
		reloads: NewReloadLimiter(1, ReloadTimeout),
	}
	if snap == nil {
		snap = FailedSnapshot(source, &LoadError{Kind: KindUnexpected, Path: source})
	}
	s.current.Store(snap)
	return s
}

// OpenService performs the startup load and returns a Service serving its
// result. A failed load still yields a Service; every search then reports
// the load error.
func OpenService(ctx context.Context, source string, opts LoadOptions) *Service {
	ctx = ContextWithReloadTrigger(ctx, TriggerStartup)
	return NewService(LoadSnapshot(ctx, source, opts), source, opts)
}

// Source returns the dataset path.
func (s *Service) Source() string {
	return s.source
}

// Snapshot returns the snapshot currently being served.
func (s *Service) Snapshot() *Snapshot {
	return s.current.Load()
}

// Search runs q against the current snapshot.
func (s *Service) Search(ctx context.Context, q Query) Result {
	snap := s.current.Load()
	res := Search(snap, q)

	log := logging.FromContext(ctx)
	switch res.Outcome {
	case OutcomeOK:
		log.Info("search completed",
			"cuisine", res.Query.Cuisine,
			"location", res.Query.Location,
			"results", len(res.Records),
			"load_id", snap.Table.LoadID().String(),
		)
	case OutcomeEmpty:
		log.Debug("search returned no rows",
			"cuisine", res.Query.Cuisine,
			"location", res.Query.Location,
			"reason", string(res.Reason),
		)
	case OutcomeError:
		log.Warn("search against unavailable dataset", "error", res.Err)
	}
	return res
}

// Reload performs a full load of the source and swaps it in.
//
// If the current snapshot is usable and the reload fails, the current
// snapshot keeps serving and the failure is returned and remembered for
// Status. Otherwise the new snapshot, usable or not, replaces the current
// one. Only one reload runs at a time; a concurrent call returns
// ErrReloadInProgress.
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	if !s.reloads.TryAcquire() {
		return s.current.Load(), ErrReloadInProgress
	}
	defer s.reloads.Release()

	ctx, cancel := context.WithTimeout(ctx, ReloadTimeout)
	defer cancel()

	log := logging.FromContext(ctx).With("trigger", ReloadTriggerFromContext(ctx))
	if ip := ClientIPFromContext(ctx); ip != "" {
		log = log.With("client_ip", ip)
	}

	next := LoadSnapshot(ctx, s.source, s.opts)
	prev := s.current.Load()

	s.mu.Lock()
	s.lastReloadAt = time.Now()
	s.lastReloadErr = next.Err
	s.mu.Unlock()

	if next.Err != nil && prev.Usable() {
		log.Warn("reload failed, keeping previous dataset",
			"error", next.Err,
			"load_id", prev.Table.LoadID().String(),
		)
		return prev, next.Err
	}

	s.current.Store(next)
	log.Info("dataset swapped",
		"usable", next.Usable(),
		"rows", next.Table.Len(),
		"load_id", next.Table.LoadID().String(),
	)
	return next, next.Err
}

// Status describes the snapshot being served and the last reload.
func (s *Service) Status() DatasetStatus {
	snap := s.current.Load()

	st := DatasetStatus{
		Source:    s.source,
		Usable:    snap.Usable(),
		Rows:      snap.Table.Len(),
		Columns:   snap.Table.Columns(),
		Encoding:  snap.Table.Encoding(),
		Bytes:     snap.Table.Bytes(),
		Reloading: s.reloads.ActiveCount() > 0,
	}
	if st.Usable {
		st.LoadID = snap.Table.LoadID().String()
		loadedAt := snap.Table.LoadedAt()
		st.LoadedAt = &loadedAt
	}
	if snap.Err != nil {
		msg := MapError(snap.Err)
		st.Error = &msg
	}

	s.mu.RLock()
	lastErr := s.lastReloadErr
	s.mu.RUnlock()
	if lastErr != nil {
		msg := MapError(lastErr)
		st.LastReloadError = &msg
	}
	return st
}

// Close waits for a running reload to finish and blocks further reloads.
func (s *Service) Close(ctx context.Context) error {
	return s.reloads.Acquire(ctx)
}
