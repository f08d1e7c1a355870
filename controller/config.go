package controller

import (
	"errors"
	"time"
)

// Config holds the fixed parameters of the boot cycle.
type Config struct {
	// BoardName is used in the status lines.
	BoardName string

	// LEDPin is the digital output used for the blink.
	LEDPin int

	// BaudRate of the debug console.
	BaudRate uint32

	// AttachDelay is how long to wait after opening the console so that an
	// observer can attach.
	AttachDelay time.Duration

	// WakeInterval is how long the board sleeps.
	WakeInterval time.Duration

	// AwakeTime is how long after boot the board goes back to sleep.
	AwakeTime time.Duration

	// BlinkHalfPeriod is how long the LED stays on, and then off, in one
	// blink.
	BlinkHalfPeriod time.Duration
}

// DefaultConfig returns the parameters of the classic ESP32 deep-sleep
// example.
func DefaultConfig() Config {
	return Config{
		BoardName:       "ESP32",
		LEDPin:          8,
		BaudRate:        9600,
		AttachDelay:     1000 * time.Millisecond,
		WakeInterval:    5 * time.Second,
		AwakeTime:       5000 * time.Millisecond,
		BlinkHalfPeriod: 500 * time.Millisecond,
	}
}

// Validate checks that the parameters make a runnable cycle.
func (c Config) Validate() error {
	var errs []error

	if c.BaudRate == 0 {
		errs = append(errs, errors.New("baud rate must be positive"))
	}

	if c.AttachDelay < 0 {
		errs = append(errs, errors.New("attach delay cannot be negative"))
	}

	if c.WakeInterval < time.Microsecond {
		errs = append(errs, errors.New("wake interval must be at least 1us"))
	}

	if c.AwakeTime <= 0 {
		errs = append(errs, errors.New("awake time must be positive"))
	}

	if c.BlinkHalfPeriod <= 0 {
		errs = append(errs, errors.New("blink half period must be positive"))
	}

	if c.LEDPin < 0 {
		errs = append(errs, errors.New("LED pin cannot be negative"))
	}

	return errors.Join(errs...)
}

// BlinkPeriod is the length of one full blink.
func (c Config) BlinkPeriod() time.Duration {
	return 2 * c.BlinkHalfPeriod
}
