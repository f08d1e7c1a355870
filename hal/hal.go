// Package hal defines the platform services a sketch running on the
// simulated board calls: digital pins, the debug console, the boot clock and
// the sleep controller.
package hal

import "time"

// Level is the logic level of a digital pin.
type Level uint8

// The two logic levels.
const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}

	return "LOW"
}

// PinMode selects how a pin is driven.
type PinMode uint8

// Pin modes.
const (
	Unconfigured PinMode = iota
	Input
	Output
)

func (m PinMode) String() string {
	switch m {
	case Input:
		return "INPUT"
	case Output:
		return "OUTPUT"
	default:
		return "UNCONFIGURED"
	}
}

// GPIO drives the digital pins of the board.
type GPIO interface {
	// PinMode configures a pin.
	PinMode(pin int, mode PinMode)

	// DigitalWrite sets the level of an output pin.
	DigitalWrite(pin int, level Level)
}

// Console is the debug text channel of the board.
type Console interface {
	// Begin opens the channel at the given baud rate.
	Begin(baud uint32)

	// Println queues a line for transmission.
	Println(line string)

	// Flush returns how long it takes until all queued output is
	// transmitted.
	Flush() time.Duration
}

// Clock tells the time since the board last booted.
type Clock interface {
	Millis() uint64
}

// WakeCause tells why the board is running.
type WakeCause uint8

// Wake causes.
const (
	WakeCauseUndefined WakeCause = iota
	WakeCauseTimer
)

func (c WakeCause) String() string {
	if c == WakeCauseTimer {
		return "timer"
	}

	return "undefined"
}

// SleepController configures wake sources and enters deep sleep.
type SleepController interface {
	// EnableTimerWakeup arms the wake timer. The interval is in
	// microseconds.
	EnableTimerWakeup(intervalUs uint64) error

	// WakeupCause reports what woke the board up.
	WakeupCause() WakeCause

	// DeepSleepStart suspends the board. Nothing the caller does after this
	// call has any effect; execution restarts from the top at the next
	// wake.
	DeepSleepStart()
}
