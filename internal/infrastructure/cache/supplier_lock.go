package cache

import (
	"context"
	"sync"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/google/uuid"
)

// InMemorySupplierLocker serializes work per supplier inside one process.
// This is suitable for single-instance deployments and testing.
type InMemorySupplierLocker struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*lockSlot
}

// lockSlot is a one-token semaphore shared by everyone waiting on a supplier
type lockSlot struct {
	token   chan struct{}
	waiters int
}

// NewInMemorySupplierLocker creates a new in-memory supplier locker
func NewInMemorySupplierLocker() *InMemorySupplierLocker {
	return &InMemorySupplierLocker{slots: make(map[uuid.UUID]*lockSlot)}
}

// Lock blocks until supplierID is free or ctx is done
func (l *InMemorySupplierLocker) Lock(ctx context.Context, supplierID uuid.UUID) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[supplierID]
	if !ok {
		slot = &lockSlot{token: make(chan struct{}, 1)}
		l.slots[supplierID] = slot
	}
	slot.waiters++
	l.mu.Unlock()

	select {
	case slot.token <- struct{}{}:
	case <-ctx.Done():
		l.leave(supplierID, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.token
			l.leave(supplierID, slot)
		})
	}, nil
}

// leave drops the slot once nobody holds or waits for it
func (l *InMemorySupplierLocker) leave(supplierID uuid.UUID, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.waiters--
	if slot.waiters == 0 {
		delete(l.slots, supplierID)
	}
}

var _ dropship.SupplierLocker = (*InMemorySupplierLocker)(nil)
