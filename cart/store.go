package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"goflare.io/storefront/models"
)

// CountPublisher receives the app-wide unit-count indicator. Passed in
// explicitly so the store never reaches for ambient shared state.
type CountPublisher interface {
	UpdateCartCount(count uint64)
}

// Store holds the session's cart snapshot between loads. Load replaces the
// snapshot wholesale; RemoveItem mutates it locally without a server round
// trip. Concurrent loads are not sequenced: the last response to arrive wins.
type Store struct {
	repo     Repository
	appState CountPublisher
	logger   *zap.Logger

	mu        sync.Mutex
	snapshot  models.CartSnapshot
	observers map[uint64]chan models.CartSnapshot
	nextObsID uint64
}

func NewStore(repo Repository, appState CountPublisher, logger *zap.Logger) *Store {
	return &Store{
		repo:      repo,
		appState:  appState,
		logger:    logger,
		observers: make(map[uint64]chan models.CartSnapshot),
	}
}

// Load fetches the current cart for the customer, replaces the local snapshot,
// and publishes the derived unit count. On failure the snapshot is left
// untouched and the error is terminal for this call; no retry is attempted.
func (s *Store) Load(ctx context.Context, customerID string) (models.CartSnapshot, error) {
	loaded, err := s.repo.GetCart(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to load cart snapshot", zap.String("customer_id", customerID), zap.Error(err))
		return models.CartSnapshot{}, err
	}

	s.mu.Lock()
	s.snapshot = loaded.Clone()
	snapshot := s.snapshot.Clone()
	s.mu.Unlock()

	s.appState.UpdateCartCount(snapshot.UnitCount())
	s.notify(snapshot)

	return snapshot, nil
}

// RemoveItem drops the line item with the given id from the local snapshot and
// recomputes the price total. A missing id is a no-op. The unit count is not
// refreshed here; it stays stale until the next Load.
func (s *Store) RemoveItem(cartID uint64) {
	s.mu.Lock()

	kept := s.snapshot.Items[:0:0]
	for _, item := range s.snapshot.Items {
		if item.CartID != cartID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(s.snapshot.Items) {
		s.mu.Unlock()
		return
	}

	s.snapshot.Items = kept
	s.snapshot.TotalPrice = RecomputeTotal(kept)
	snapshot := s.snapshot.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Snapshot returns a copy of the current cart state.
func (s *Store) Snapshot() models.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// Subscribe registers an observer for snapshot changes. The returned cancel
// func must be called on teardown to release the channel. Observers that fall
// behind miss intermediate snapshots rather than blocking the store.
func (s *Store) Subscribe() (<-chan models.CartSnapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObsID
	s.nextObsID++
	ch := make(chan models.CartSnapshot, 1)
	s.observers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if obs, ok := s.observers[id]; ok {
			delete(s.observers, id)
			close(obs)
		}
	}

	return ch, cancel
}

func (s *Store) notify(snapshot models.CartSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.observers {
		select {
		case ch <- snapshot:
		default:
			// drop the stale value, keep only the latest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
