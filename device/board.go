// Package device simulates a microcontroller board with deep sleep. Each
// wake-up restarts the program from the top; only retention memory survives
// a sleep, and a power loss erases it.
package device

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sarchlab/deepsleep/hal"
	"github.com/sarchlab/deepsleep/retention"
	"github.com/sarchlab/deepsleep/sim"
)

// BootCountSlot names the retained slot that counts wake cycles.
const BootCountSlot = "bootCount"

// BootCountBits is the width of the boot counter.
const BootCountBits = 32

// A Program is the code the board runs after each wake-up.
type Program interface {
	Start()
}

// Platform is what a program gets to work with.
type Platform struct {
	Scheduler sim.EventScheduler
	GPIO      hal.GPIO
	Console   hal.Console
	Clock     hal.Clock
	Sleep     hal.SleepController
	Retention retention.Store
}

// A ProgramFactory creates the program for one wake cycle.
type ProgramFactory interface {
	NewProgram(p Platform) Program
}

// ProgramFactoryFunc lets a function act as a ProgramFactory.
type ProgramFactoryFunc func(p Platform) Program

// NewProgram calls f.
func (f ProgramFactoryFunc) NewProgram(p Platform) Program {
	return f(p)
}

type wakeEvent struct {
	*sim.EventBase
	epoch uint64
	cause hal.WakeCause
}

type programEvent struct {
	*sim.EventBase
	epoch uint64
	inner sim.Event
}

type powerLossEvent struct {
	*sim.EventBase
}

type powerOnEvent struct {
	*sim.EventBase
}

// Board is a simulated microcontroller board.
type Board struct {
	*sim.ComponentBase

	engine    sim.Engine
	store     retention.Store
	factory   ProgramFactory
	maxWakes  int
	gpio      *GPIO
	console   *Console
	rtc       *RTC
	bootCount *retention.Slot

	stateLock  sync.RWMutex
	state      State
	epoch      uint64
	wakeCount  int
	wakeTime   sim.VTimeInSec
	program    Program
	transcript []ConsoleLine
	pinWrites  []PinWrite
	errs       []error
}

// GPIO returns the pin block.
func (b *Board) GPIO() *GPIO {
	return b.gpio
}

// Console returns the debug console.
func (b *Board) Console() *Console {
	return b.console
}

// RTC returns the always-on domain.
func (b *Board) RTC() *RTC {
	return b.rtc
}

// Store returns the retention memory.
func (b *Board) Store() retention.Store {
	return b.store
}

// State returns the power state.
func (b *Board) State() State {
	b.stateLock.RLock()
	defer b.stateLock.RUnlock()

	return b.state
}

// WakeCount returns how many times the board has woken up, including cold
// boots.
func (b *Board) WakeCount() int {
	b.stateLock.RLock()
	defer b.stateLock.RUnlock()

	return b.wakeCount
}

// BootCount reads the retained boot counter.
func (b *Board) BootCount() (int64, error) {
	return b.bootCount.Load()
}

// Program returns the program of the current wake cycle, or nil while the
// board is not awake.
func (b *Board) Program() Program {
	b.stateLock.RLock()
	defer b.stateLock.RUnlock()

	return b.program
}

// Transcript returns all the lines printed on the console.
func (b *Board) Transcript() []ConsoleLine {
	b.stateLock.RLock()
	defer b.stateLock.RUnlock()

	return append([]ConsoleLine(nil), b.transcript...)
}

// PinWrites returns all the writes to output pins.
func (b *Board) PinWrites() []PinWrite {
	b.stateLock.RLock()
	defer b.stateLock.RUnlock()

	return append([]PinWrite(nil), b.pinWrites...)
}

// Errors returns the platform errors the board has run into.
func (b *Board) Errors() []error {
	b.stateLock.RLock()
	defer b.stateLock.RUnlock()

	return append([]error(nil), b.errs...)
}

func (b *Board) reportError(err error) {
	b.stateLock.Lock()
	b.errs = append(b.errs, err)
	b.stateLock.Unlock()
}

// PowerOn cold boots the board at the current time.
func (b *Board) PowerOn() {
	b.stateLock.Lock()
	defer b.stateLock.Unlock()

	if b.state != StateOff {
		panic(fmt.Sprintf("board %s is already powered", b.Name()))
	}

	b.engine.Schedule(wakeEvent{
		EventBase: sim.NewEventBase(b.engine.Now(), b),
		epoch:     b.epoch,
		cause:     hal.WakeCauseUndefined,
	})
}

// PowerLoss cuts the power. Retention memory is erased and pending wake-ups
// are cancelled.
func (b *Board) PowerLoss() error {
	b.stateLock.Lock()
	b.state = StateOff
	b.epoch++
	b.program = nil
	b.stateLock.Unlock()

	err := b.store.Erase()
	if err != nil {
		return fmt.Errorf("board %s: power loss: %w", b.Name(), err)
	}

	b.InvokeHook(sim.HookCtx{
		Domain: b,
		Pos:    HookPosPowerLoss,
		Item:   b.engine.Now(),
	})

	return nil
}

// PowerCycle cuts the power and cold boots the board again.
func (b *Board) PowerCycle() error {
	err := b.PowerLoss()
	if err != nil {
		return err
	}

	b.PowerOn()

	return nil
}

// SchedulePowerLoss cuts the power at the given time and powers the board
// back on after the given off time, if it is not negative.
func (b *Board) SchedulePowerLoss(at, offFor sim.VTimeInSec) {
	b.engine.Schedule(powerLossEvent{EventBase: sim.NewEventBase(at, b)})

	if offFor >= 0 {
		b.engine.Schedule(powerOnEvent{
			EventBase: sim.NewSecondaryEventBase(at+offFor, b),
		})
	}
}

// Handle processes the events of the board and forwards the program events
// of the current wake cycle.
func (b *Board) Handle(e sim.Event) error {
	switch e := e.(type) {
	case wakeEvent:
		if !b.isCurrent(e.epoch) {
			return nil
		}

		b.wake(e.cause)
	case programEvent:
		if !b.isCurrent(e.epoch) {
			return nil
		}

		return e.inner.Handler().Handle(e.inner)
	case powerLossEvent:
		return b.PowerLoss()
	case powerOnEvent:
		if b.State() == StateOff {
			b.PowerOn()
		}
	default:
		panic("cannot handle event of type " + reflect.TypeOf(e).String())
	}

	return nil
}

func (b *Board) isCurrent(epoch uint64) bool {
	b.stateLock.RLock()
	defer b.stateLock.RUnlock()

	return epoch == b.epoch
}

func (b *Board) wake(cause hal.WakeCause) {
	now := b.engine.Now()

	b.stateLock.Lock()
	b.state = StateAwake
	b.epoch++
	b.wakeCount++
	b.wakeTime = now
	epoch := b.epoch
	cycle := b.wakeCount
	b.stateLock.Unlock()

	b.gpio.reset()
	b.console.reset()
	b.rtc.reset(cause)

	b.InvokeHook(sim.HookCtx{
		Domain: b,
		Pos:    HookPosWake,
		Item:   WakeInfo{Cycle: cycle, Cause: cause, Time: now},
	})

	program := b.factory.NewProgram(Platform{
		Scheduler: &programScheduler{board: b, epoch: epoch},
		GPIO:      b.gpio,
		Console:   b.console,
		Clock:     b.rtc,
		Sleep:     b.rtc,
		Retention: b.store,
	})

	b.stateLock.Lock()
	b.program = program
	b.stateLock.Unlock()

	program.Start()
}

func (b *Board) deepSleep() {
	now := b.engine.Now()

	b.stateLock.Lock()
	if b.state != StateAwake {
		b.stateLock.Unlock()
		return
	}

	b.state = StateAsleep
	b.epoch++
	b.program = nil
	epoch := b.epoch
	cycle := b.wakeCount
	awakeFor := (now - b.wakeTime).Duration()
	b.stateLock.Unlock()

	info := SleepInfo{
		Cycle:    cycle,
		Time:     now,
		AwakeFor: awakeFor,
		NextWake: -1,
	}

	bootCount, err := b.BootCount()
	if err != nil {
		b.reportError(err)
	}
	info.BootCount = bootCount

	armed, interval := b.rtc.armed()
	info.WakeArmed = armed

	switch {
	case !armed:
		info.Err = ErrNoWakeSource
		b.reportError(fmt.Errorf("board %s: %w", b.Name(), ErrNoWakeSource))
	case b.maxWakes == 0 || cycle < b.maxWakes:
		info.NextWake = now + sim.Seconds(interval)
		b.engine.Schedule(wakeEvent{
			EventBase: sim.NewEventBase(info.NextWake, b),
			epoch:     epoch,
			cause:     hal.WakeCauseTimer,
		})
	}

	b.InvokeHook(sim.HookCtx{
		Domain: b,
		Pos:    HookPosSleep,
		Item:   info,
	})
}

// programScheduler delivers the events of one wake cycle through the board
// so that they are dropped once the cycle is over.
type programScheduler struct {
	board *Board
	epoch uint64
}

func (s *programScheduler) Now() sim.VTimeInSec {
	return s.board.engine.Now()
}

func (s *programScheduler) Schedule(e sim.Event) {
	base := sim.NewEventBase(e.Time(), s.board)
	if e.IsSecondary() {
		base = sim.NewSecondaryEventBase(e.Time(), s.board)
	}

	s.board.engine.Schedule(programEvent{
		EventBase: base,
		epoch:     s.epoch,
		inner:     e,
	})
}
