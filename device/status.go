package device

import "github.com/sarchlab/deepsleep/sim"

// Status is a snapshot of the board.
type Status struct {
	Name      string         `json:"name"`
	State     State          `json:"state"`
	Now       sim.VTimeInSec `json:"now"`
	WakeCount int            `json:"wake_count"`
	BootCount int64          `json:"boot_count"`
	AwakeMs   uint64         `json:"awake_ms"`
	WakeArmed bool           `json:"wake_armed"`
	Lines     int            `json:"lines"`
	PinWrites int            `json:"pin_writes"`
	Errors    []string       `json:"errors,omitempty"`
}

// Status takes a snapshot of the board.
func (b *Board) Status() (Status, error) {
	bootCount, err := b.BootCount()
	if err != nil {
		return Status{}, err
	}

	armed, _ := b.rtc.armed()

	b.stateLock.RLock()
	defer b.stateLock.RUnlock()

	s := Status{
		Name:      b.Name(),
		State:     b.state,
		Now:       b.engine.Now(),
		WakeCount: b.wakeCount,
		BootCount: bootCount,
		WakeArmed: armed && b.state == StateAwake,
		Lines:     len(b.transcript),
		PinWrites: len(b.pinWrites),
	}

	if b.state == StateAwake {
		s.AwakeMs = (s.Now - b.wakeTime).Millis()
	}

	for _, e := range b.errs {
		s.Errors = append(s.Errors, e.Error())
	}

	return s, nil
}
