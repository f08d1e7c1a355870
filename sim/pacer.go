package sim

import (
	"time"
)

// RealTimePacer is a hook that holds the engine back so that simulated time
// does not run ahead of the wall clock. Speed 2 runs twice as fast as real
// time.
type RealTimePacer struct {
	Speed float64

	started   bool
	wallStart time.Time
	simStart  VTimeInSec

	now   func() time.Time
	sleep func(time.Duration)
}

// NewRealTimePacer creates a new RealTimePacer.
func NewRealTimePacer(speed float64) *RealTimePacer {
	if speed <= 0 {
		panic("pacer speed must be positive")
	}

	return &RealTimePacer{
		Speed: speed,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Func waits before each event until the wall clock catches up.
func (p *RealTimePacer) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	if !p.started {
		p.started = true
		p.wallStart = p.now()
		p.simStart = evt.Time()

		return
	}

	simElapsed := float64(evt.Time()-p.simStart) / p.Speed
	target := p.wallStart.Add(VTimeInSec(simElapsed).Duration())

	wait := target.Sub(p.now())
	if wait > 0 {
		p.sleep(wait)
	}
}
