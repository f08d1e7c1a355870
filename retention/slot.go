package retention

import "fmt"

// A Slot is a named signed integer of a fixed width in retention memory. A
// slot that has never been written reads as zero.
type Slot struct {
	store Store
	name  string
	bits  int
}

// NewSlot creates a slot of the given width, in bits, on the store.
func NewSlot(store Store, name string, bits int) *Slot {
	if bits < 2 || bits > 64 {
		panic(fmt.Sprintf("slot width %d is not supported", bits))
	}

	if name == "" {
		panic("slot name must be set")
	}

	return &Slot{store: store, name: name, bits: bits}
}

// Name returns the name of the slot.
func (s *Slot) Name() string {
	return s.name
}

// Max returns the largest value the slot can hold.
func (s *Slot) Max() int64 {
	return int64(^uint64(0) >> (65 - s.bits))
}

// Load reads the slot.
func (s *Slot) Load() (int64, error) {
	v, _, err := s.store.Read(s.name)
	if err != nil {
		return 0, err
	}

	return v, nil
}

// Store writes the slot.
func (s *Slot) Store(v int64) error {
	if v < 0 {
		return fmt.Errorf("slot %s: %w", s.name, ErrNegative)
	}

	if v > s.Max() {
		return fmt.Errorf("slot %s: %w", s.name, ErrOverflow)
	}

	return s.store.Write(s.name, v)
}

// Increment adds one to the slot and returns the new value. The slot is left
// unchanged if it is already at its maximum.
func (s *Slot) Increment() (int64, error) {
	v, err := s.Load()
	if err != nil {
		return 0, err
	}

	if v >= s.Max() {
		return v, fmt.Errorf("slot %s: %w", s.name, ErrOverflow)
	}

	v++

	err = s.Store(v)
	if err != nil {
		return 0, err
	}

	return v, nil
}
