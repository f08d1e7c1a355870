package controller

import (
	"github.com/sarchlab/deepsleep/hal"
	"github.com/sarchlab/deepsleep/sim"
)

// Builder can build boot controllers.
type Builder struct {
	scheduler sim.EventScheduler
	cfg       Config
	gpio      hal.GPIO
	console   hal.Console
	clock     hal.Clock
	sleeper   hal.SleepController
	bootCount BootCounter
}

// MakeBuilder creates a builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{cfg: DefaultConfig()}
}

// WithScheduler sets the scheduler the controller uses to wait.
func (b Builder) WithScheduler(s sim.EventScheduler) Builder {
	b.scheduler = s
	return b
}

// WithConfig sets the cycle parameters.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithGPIO sets the pins driver.
func (b Builder) WithGPIO(gpio hal.GPIO) Builder {
	b.gpio = gpio
	return b
}

// WithConsole sets the debug console.
func (b Builder) WithConsole(console hal.Console) Builder {
	b.console = console
	return b
}

// WithClock sets the boot clock.
func (b Builder) WithClock(clock hal.Clock) Builder {
	b.clock = clock
	return b
}

// WithSleepController sets the sleep controller.
func (b Builder) WithSleepController(sleeper hal.SleepController) Builder {
	b.sleeper = sleeper
	return b
}

// WithBootCounter sets the retained boot counter.
func (b Builder) WithBootCounter(counter BootCounter) Builder {
	b.bootCount = counter
	return b
}

func (b Builder) parametersMustBeValid() {
	switch {
	case b.scheduler == nil:
		panic("scheduler is not set")
	case b.gpio == nil:
		panic("gpio is not set")
	case b.console == nil:
		panic("console is not set")
	case b.clock == nil:
		panic("clock is not set")
	case b.sleeper == nil:
		panic("sleep controller is not set")
	case b.bootCount == nil:
		panic("boot counter is not set")
	}

	err := b.cfg.Validate()
	if err != nil {
		panic(err)
	}
}

// Build creates a controller with the given name.
func (b Builder) Build(name string) *Controller {
	b.parametersMustBeValid()

	c := &Controller{
		scheduler: b.scheduler,
		cfg:       b.cfg,
		gpio:      b.gpio,
		console:   b.console,
		clock:     b.clock,
		sleeper:   b.sleeper,
		bootCount: b.bootCount,
	}
	c.ComponentBase = sim.NewComponentBase(name)

	return c
}
