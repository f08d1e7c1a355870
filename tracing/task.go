package tracing

import "github.com/sarchlab/deepsleep/sim"

// Task kinds.
const (
	KindWakeCycle = "wake_cycle"
)

// A Task is a span of simulated time during which a board does one thing. A
// wake cycle is a task that starts at the wake-up and ends at the sleep.
type Task struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	What      string         `json:"what"`
	Location  string         `json:"location"`
	Cycle     int            `json:"cycle"`
	StartTime sim.VTimeInSec `json:"start_time"`
	EndTime   sim.VTimeInSec `json:"end_time"`
	BootCount int64          `json:"boot_count"`
	Blinks    int            `json:"blinks"`
	WakeArmed bool           `json:"wake_armed"`
}

// Duration returns how long the task lasted.
func (t Task) Duration() sim.VTimeInSec {
	return t.EndTime - t.StartTime
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool
