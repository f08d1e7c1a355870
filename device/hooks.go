package device

import (
	"time"

	"github.com/sarchlab/deepsleep/hal"
	"github.com/sarchlab/deepsleep/sim"
)

// HookPosWake is triggered after the board wakes up and before the program
// starts. The item is a WakeInfo.
var HookPosWake = &sim.HookPos{Name: "Wake"}

// HookPosSleep is triggered when the board enters deep sleep. The item is a
// SleepInfo.
var HookPosSleep = &sim.HookPos{Name: "Sleep"}

// HookPosPinWrite is triggered by every write to an output pin. The item is
// a PinWrite.
var HookPosPinWrite = &sim.HookPos{Name: "PinWrite"}

// HookPosConsoleLine is triggered by every line printed on an open console.
// The item is a ConsoleLine.
var HookPosConsoleLine = &sim.HookPos{Name: "ConsoleLine"}

// HookPosPowerLoss is triggered when retention memory is lost.
var HookPosPowerLoss = &sim.HookPos{Name: "PowerLoss"}

// WakeInfo describes a wake-up.
type WakeInfo struct {
	Cycle int
	Cause hal.WakeCause
	Time  sim.VTimeInSec
}

// SleepInfo describes an entry into deep sleep.
type SleepInfo struct {
	Cycle     int
	Time      sim.VTimeInSec
	AwakeFor  time.Duration
	BootCount int64
	WakeArmed bool

	// NextWake is the time of the scheduled wake-up, or a negative value if
	// the board will not wake up again.
	NextWake sim.VTimeInSec

	// Err explains why the board will not wake up again, if it is because
	// of a missing wake source.
	Err error
}

// PinWrite is a level written to an output pin.
type PinWrite struct {
	Time  sim.VTimeInSec
	Pin   int
	Level hal.Level
}

// ConsoleLine is a line printed on the debug console.
type ConsoleLine struct {
	Time sim.VTimeInSec
	Line string
}
