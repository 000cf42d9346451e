package application

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errLockTimeout = errors.New("timed out waiting for finding lock")

// hashLocks hands out one mutual-exclusion slot per finding hash. Slots are
// created on demand and dropped once nobody holds or waits for them, so
// unrelated hashes never contend.
type hashLocks struct {
	mu    sync.Mutex
	slots map[string]*hashSlot
}

type hashSlot struct {
	ch   chan struct{}
	refs int
}

func newHashLocks() *hashLocks {
	return &hashLocks{slots: make(map[string]*hashSlot)}
}

// acquire blocks until the slot for hash is free, ctx is done, or timeout
// elapses. The returned release func must be called exactly once.
func (l *hashLocks) acquire(ctx context.Context, hash string, timeout time.Duration) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[hash]
	if !ok {
		slot = &hashSlot{ch: make(chan struct{}, 1)}
		l.slots[hash] = slot
	}
	slot.refs++
	l.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case slot.ch <- struct{}{}:
		return func() {
			<-slot.ch
			l.unref(hash, slot)
		}, nil
	case <-ctx.Done():
		l.unref(hash, slot)
		return nil, ctx.Err()
	case <-timer.C:
		l.unref(hash, slot)
		return nil, errLockTimeout
	}
}

func (l *hashLocks) unref(hash string, slot *hashSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, hash)
	}
}

// size returns the number of live slots.
func (l *hashLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
