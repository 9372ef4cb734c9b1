// Package memory provides in-process implementations of the reservation
// store and the person cache. They back single-process deployments with no
// Redis configured, and tests.
package memory

import (
	"context"
	"sync"

	"pessoas-backend/application/ports"
)

// PersonCache is a mutex-guarded map cache for serialized person records.
// Entries never expire: records are immutable and the set is assumed to fit.
type PersonCache struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewPersonCache creates an empty in-memory person cache
func NewPersonCache() *PersonCache {
	return &PersonCache{
		items: make(map[string][]byte),
	}
}

var _ ports.PersonCache = (*PersonCache)(nil)

// Put stores a copy of the serialized record
func (c *PersonCache) Put(_ context.Context, id string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	c.items[id] = buf
	return nil
}

// Get returns the cached bytes, or ok=false on a miss
func (c *PersonCache) Get(_ context.Context, id string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.items[id]
	if !ok {
		return nil, false, nil
	}
	return data, true, nil
}

// Len returns the number of cached records
func (c *PersonCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// ReservationSet claims nicknames in process. The mutex makes Reserve an
// atomic add-to-set: exactly one of any number of concurrent callers wins.
type ReservationSet struct {
	mu   sync.Mutex
	used map[string]struct{}
}

// NewReservationSet creates an empty reservation set
func NewReservationSet() *ReservationSet {
	return &ReservationSet{
		used: make(map[string]struct{}),
	}
}

var _ ports.ReservationStore = (*ReservationSet)(nil)

// Reserve attempts to claim the nickname
func (s *ReservationSet) Reserve(_ context.Context, nickname string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.used[nickname]; taken {
		return false, nil
	}
	s.used[nickname] = struct{}{}
	return true, nil
}

// Release frees a previously claimed nickname
func (s *ReservationSet) Release(_ context.Context, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.used, nickname)
	return nil
}
