package retention

import "sync"

// MemoryStore keeps retained slots in process memory. It models the RTC
// region of a single board for the lifetime of one simulation.
type MemoryStore struct {
	lock  sync.Mutex
	slots map[string]int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]int64)}
}

// Read returns the value held by the slot.
func (s *MemoryStore) Read(slot string) (int64, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.slots[slot]

	return v, ok, nil
}

// Write stores a value into the slot.
func (s *MemoryStore) Write(slot string, value int64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.slots[slot] = value

	return nil
}

// Erase clears all the slots.
func (s *MemoryStore) Erase() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.slots = make(map[string]int64)

	return nil
}

// Close does nothing.
func (s *MemoryStore) Close() error {
	return nil
}
