package ordersvc

import (
	"sync"

	"github.com/google/uuid"
)

// orderLocks hands out one mutex per order id. Entries are dropped when the
// last holder unlocks.
type orderLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

func newOrderLocks() *orderLocks {
	return &orderLocks{locks: make(map[uuid.UUID]*orderLock)}
}

// lock blocks until id is free and returns the matching unlock func.
func (l *orderLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	ol, ok := l.locks[id]
	if !ok {
		ol = &orderLock{}
		l.locks[id] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.mu.Lock()

	return func() {
		ol.mu.Unlock()

		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
