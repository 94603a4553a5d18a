package offlinecache

import (
	"context"
	"sync"

	"github.com/civickey/civickey/internal/domain/models"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher loads fresh data from the API.
type Fetcher interface {
	FetchAll(ctx context.Context, muni string) (models.Snapshot, error)
	WasteItems(ctx context.Context, muni string) ([]models.WasteItem, error)
}

// Syncer serves cached data immediately and revalidates it in the
// background. A fetch result is committed only if the municipality it was
// requested for is still the current one when it arrives.
type Syncer struct {
	cache *Cache
	fetch Fetcher
	log   *zap.Logger

	mu      sync.Mutex
	current string
	// commit is held from the current-tenant check through OnUpdate.
	// SetCurrent waits for it.
	commit sync.Mutex

	// OnUpdate is called with every committed snapshot. It must not call
	// SetCurrent.
	OnUpdate func(models.Snapshot)
	// OnDiscard is called when a late result is dropped.
	OnDiscard func(muni string)

	wg sync.WaitGroup
}

func NewSyncer(cache *Cache, fetch Fetcher, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{cache: cache, fetch: fetch, log: logger}
}

// SetCurrent switches the active municipality. It waits for a commit in
// progress to finish.
func (s *Syncer) SetCurrent(muni string) {
	s.commit.Lock()
	defer s.commit.Unlock()
	s.mu.Lock()
	s.current = muni
	s.mu.Unlock()
}

// Current returns the active municipality.
func (s *Syncer) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Open makes muni current and returns its snapshot. A cached entry is
// returned as is; when it is stale a refresh starts in the background.
// Without a cached entry the snapshot is fetched synchronously.
func (s *Syncer) Open(ctx context.Context, muni string) (Result[models.Snapshot], error) {
	s.SetCurrent(muni)

	res, err := s.cache.Load(ctx, muni)
	if err != nil {
		return res, err
	}
	if res.Found {
		if res.IsStale {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				if _, _, err := s.Refresh(context.WithoutCancel(ctx), muni); err != nil {
					s.log.Warn("background refresh failed", zap.String("municipality_id", muni), zap.Error(err))
				}
			}()
		}
		return res, nil
	}

	snap, committed, err := s.Refresh(ctx, muni)
	if err != nil {
		return res, err
	}
	return Result[models.Snapshot]{Data: snap, FetchedAt: snap.FetchedAt, Found: committed}, nil
}

// Refresh fetches muni and commits the result to the cache. committed is
// false when muni stopped being current while the fetch was in flight.
func (s *Syncer) Refresh(ctx context.Context, muni string) (snap models.Snapshot, committed bool, err error) {
	snap, err = s.fetch.FetchAll(ctx, muni)
	if err != nil {
		return snap, false, eris.Wrapf(err, "fetch snapshot of %s", muni)
	}
	s.commit.Lock()
	defer s.commit.Unlock()
	if !s.isCurrent(muni) {
		s.discard(muni)
		return snap, false, nil
	}
	if err := s.cache.Save(ctx, muni, snap); err != nil {
		return snap, false, err
	}
	if s.OnUpdate != nil {
		s.OnUpdate(snap)
	}
	return snap, true, nil
}

// WasteItems returns the catalog of muni, refetching it when the cached
// copy is missing or stale. The cached copy is returned if the refetch
// fails.
func (s *Syncer) WasteItems(ctx context.Context, muni string) ([]models.WasteItem, error) {
	res, err := s.cache.LoadWasteItems(ctx, muni)
	if err != nil {
		return nil, err
	}
	if res.Found && !res.IsStale {
		return res.Data, nil
	}
	items, err := s.fetch.WasteItems(ctx, muni)
	if err != nil {
		if res.Found {
			s.log.Warn("serving stale waste items", zap.String("municipality_id", muni), zap.Error(err))
			return res.Data, nil
		}
		return nil, eris.Wrapf(err, "fetch waste items of %s", muni)
	}
	s.commit.Lock()
	defer s.commit.Unlock()
	if !s.isCurrent(muni) {
		s.discard(muni)
		return items, nil
	}
	if err := s.cache.SaveWasteItems(ctx, muni, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Wait blocks until background refreshes have finished.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

func (s *Syncer) isCurrent(muni string) bool {
	return s.Current() == muni
}

func (s *Syncer) discard(muni string) {
	s.log.Debug("discarding result for inactive municipality", zap.String("municipality_id", muni))
	if s.OnDiscard != nil {
		s.OnDiscard(muni)
	}
}
