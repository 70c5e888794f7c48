// Package appstate holds the process-wide indicators shared across views. The
// state is an explicit injectable handle, not a singleton: components that
// need it take it as a constructor argument.
package appstate

import "sync"

// State exposes one mutator per indicator and a read-only subscription
// channel. Today the only indicator is the cart unit count.
type State struct {
	mu        sync.RWMutex
	cartCount uint64
	subs      map[uint64]chan uint64
	nextID    uint64
}

func New() *State {
	return &State{
		subs: make(map[uint64]chan uint64),
	}
}

// UpdateCartCount replaces the cart-count indicator and fans the new value out
// to subscribers. Slow subscribers see only the most recent value.
func (s *State) UpdateCartCount(count uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cartCount = count
	for _, ch := range s.subs {
		select {
		case ch <- count:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- count:
			default:
			}
		}
	}
}

// CartCount reads the current indicator value.
func (s *State) CartCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartCount
}

// Subscribe returns a read-only channel of cart-count updates and a cancel
// func. Callers must cancel on teardown or the channel leaks.
func (s *State) Subscribe() (<-chan uint64, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan uint64, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}
