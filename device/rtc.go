package device

import (
	"errors"
	"time"

	"github.com/sarchlab/deepsleep/hal"
)

// ErrNoWakeSource is reported when the board enters deep sleep without an
// armed wake source. Such a board never wakes up again.
var ErrNoWakeSource = errors.New("device: deep sleep without a wake source")

// ErrInvalidWakeInterval is returned when the wake timer is armed with a
// zero interval.
var ErrInvalidWakeInterval = errors.New("device: invalid wake interval")

// RTC is the always-on part of the board. It keeps the boot clock, the wake
// timer and the wake cause.
type RTC struct {
	board *Board

	fault         error
	timerArmed    bool
	timerInterval time.Duration
	cause         hal.WakeCause
}

func newRTC(b *Board) *RTC {
	return &RTC{board: b}
}

func (r *RTC) reset(cause hal.WakeCause) {
	r.board.stateLock.Lock()
	r.timerArmed = false
	r.timerInterval = 0
	r.cause = cause
	r.board.stateLock.Unlock()
}

// Millis returns the milliseconds since the board woke up.
func (r *RTC) Millis() uint64 {
	r.board.stateLock.RLock()
	defer r.board.stateLock.RUnlock()

	return (r.board.engine.Now() - r.board.wakeTime).Millis()
}

// EnableTimerWakeup arms the wake timer.
func (r *RTC) EnableTimerWakeup(intervalUs uint64) error {
	r.board.stateLock.Lock()
	defer r.board.stateLock.Unlock()

	if r.fault != nil {
		return r.fault
	}

	if intervalUs == 0 {
		return ErrInvalidWakeInterval
	}

	r.timerArmed = true
	r.timerInterval = time.Duration(intervalUs) * time.Microsecond

	return nil
}

// WakeupCause reports what woke the board up.
func (r *RTC) WakeupCause() hal.WakeCause {
	r.board.stateLock.RLock()
	defer r.board.stateLock.RUnlock()

	return r.cause
}

// DeepSleepStart puts the board into deep sleep.
func (r *RTC) DeepSleepStart() {
	r.board.deepSleep()
}

func (r *RTC) armed() (bool, time.Duration) {
	r.board.stateLock.RLock()
	defer r.board.stateLock.RUnlock()

	return r.timerArmed, r.timerInterval
}
