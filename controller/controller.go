// Package controller implements the boot controller of the deep-sleep
// example. Every wake runs a fresh Controller from Start: it bumps the
// retained boot counter, arms the wake timer, blinks the LED until the awake
// deadline and then puts the board back into deep sleep.
package controller

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/sarchlab/deepsleep/hal"
	"github.com/sarchlab/deepsleep/sim"
)

// A BootCounter is the retained counter of wake cycles.
type BootCounter interface {
	Increment() (int64, error)
}

// Phase is where the controller is in its wake cycle.
type Phase int

// Phases of a wake cycle.
const (
	PhaseIdle Phase = iota
	PhaseAttaching
	PhaseBlinking
	PhaseFlushing
	PhaseAsleep
)

func (p Phase) String() string {
	switch p {
	case PhaseAttaching:
		return "attaching"
	case PhaseBlinking:
		return "blinking"
	case PhaseFlushing:
		return "flushing"
	case PhaseAsleep:
		return "asleep"
	default:
		return "idle"
	}
}

type setupEvent struct {
	*sim.EventBase
}

type ledOffEvent struct {
	*sim.EventBase
}

type checkEvent struct {
	*sim.EventBase
}

type sleepEvent struct {
	*sim.EventBase
}

// Controller runs one wake cycle of the board.
type Controller struct {
	*sim.ComponentBase

	scheduler sim.EventScheduler
	cfg       Config

	gpio      hal.GPIO
	console   hal.Console
	clock     hal.Clock
	sleeper   hal.SleepController
	bootCount BootCounter

	phase      Phase
	bootNumber int64
	wakeArmed  bool
	blinks     int
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// BootNumber returns the boot count reported in this cycle, or 0 if it could
// not be updated.
func (c *Controller) BootNumber() int64 {
	return c.bootNumber
}

// Blinks returns the number of blinks started in this cycle.
func (c *Controller) Blinks() int {
	return c.blinks
}

// WakeArmed tells if the wake timer has been armed in this cycle.
func (c *Controller) WakeArmed() bool {
	return c.wakeArmed
}

// Start runs the part of the initialization that happens before the attach
// delay.
func (c *Controller) Start() {
	c.Lock()
	defer c.Unlock()

	if c.phase != PhaseIdle {
		panic("controller " + c.Name() + " started twice")
	}

	c.gpio.PinMode(c.cfg.LEDPin, hal.Output)
	c.console.Begin(c.cfg.BaudRate)

	c.phase = PhaseAttaching
	c.scheduler.Schedule(setupEvent{c.after(c.cfg.AttachDelay)})
}

// Handle processes the events of the wake cycle.
func (c *Controller) Handle(e sim.Event) error {
	c.Lock()
	defer c.Unlock()

	switch e.(type) {
	case setupEvent:
		c.setup()
	case ledOffEvent:
		c.ledOff()
	case checkEvent:
		c.check()
	case sleepEvent:
		c.enterSleep()
	default:
		panic("cannot handle event of type " + reflect.TypeOf(e).String())
	}

	return nil
}

func (c *Controller) setup() {
	c.updateBootNumber()
	c.reportWakeCause()
	c.armWakeTimer()

	c.phase = PhaseBlinking
	c.ledOn()
}

func (c *Controller) updateBootNumber() {
	n, err := c.bootCount.Increment()
	if err != nil {
		c.console.Println("Failed to update boot number: " + err.Error())
		return
	}

	c.bootNumber = n
	c.console.Println("Boot number: " + strconv.FormatInt(n, 10))
}

func (c *Controller) reportWakeCause() {
	switch c.sleeper.WakeupCause() {
	case hal.WakeCauseTimer:
		c.console.Println("Wakeup caused by timer")
	default:
		c.console.Println("Wakeup was not caused by deep sleep")
	}
}

func (c *Controller) armWakeTimer() {
	us := uint64(c.cfg.WakeInterval.Microseconds())

	err := c.sleeper.EnableTimerWakeup(us)
	if err != nil {
		c.console.Println("Failed to arm wake timer: " + err.Error())
		return
	}

	c.wakeArmed = true
	c.console.Println(fmt.Sprintf("Setup %s to sleep for every %s Seconds",
		c.cfg.BoardName,
		strconv.FormatFloat(c.cfg.WakeInterval.Seconds(), 'f', -1, 64)))
}

func (c *Controller) ledOn() {
	c.blinks++
	c.gpio.DigitalWrite(c.cfg.LEDPin, hal.High)
	c.scheduler.Schedule(ledOffEvent{c.after(c.cfg.BlinkHalfPeriod)})
}

func (c *Controller) ledOff() {
	c.gpio.DigitalWrite(c.cfg.LEDPin, hal.Low)
	c.scheduler.Schedule(checkEvent{c.after(c.cfg.BlinkHalfPeriod)})
}

func (c *Controller) check() {
	deadline := uint64(c.cfg.AwakeTime.Milliseconds())
	if c.clock.Millis() < deadline {
		c.ledOn()
		return
	}

	if !c.wakeArmed {
		c.armWakeTimer()
	}

	if !c.wakeArmed {
		c.ledOn()
		return
	}

	c.console.Println("Going to sleep now")
	drain := c.console.Flush()

	c.phase = PhaseFlushing
	c.scheduler.Schedule(sleepEvent{c.after(drain)})
}

func (c *Controller) enterSleep() {
	c.phase = PhaseAsleep
	c.sleeper.DeepSleepStart()
}

func (c *Controller) after(d time.Duration) *sim.EventBase {
	return sim.NewEventBase(c.scheduler.Now()+sim.Seconds(d), c)
}
