package device

import (
	"github.com/sarchlab/deepsleep/hal"
	"github.com/sarchlab/deepsleep/sim"
)

type pinState struct {
	mode  hal.PinMode
	level hal.Level
}

// GPIO is the pin block of the simulated board. Pins lose their
// configuration at every wake-up.
type GPIO struct {
	board *Board
	pins  map[int]*pinState
}

func newGPIO(b *Board) *GPIO {
	return &GPIO{board: b, pins: make(map[int]*pinState)}
}

func (g *GPIO) reset() {
	g.board.stateLock.Lock()
	g.pins = make(map[int]*pinState)
	g.board.stateLock.Unlock()
}

func (g *GPIO) pin(n int) *pinState {
	p, ok := g.pins[n]
	if !ok {
		p = &pinState{}
		g.pins[n] = p
	}

	return p
}

// PinMode configures a pin.
func (g *GPIO) PinMode(pin int, mode hal.PinMode) {
	g.board.stateLock.Lock()
	defer g.board.stateLock.Unlock()

	g.pin(pin).mode = mode
}

// DigitalWrite drives an output pin. Writes to pins that are not outputs have
// no effect.
func (g *GPIO) DigitalWrite(pin int, level hal.Level) {
	g.board.stateLock.Lock()

	p := g.pin(pin)
	if p.mode != hal.Output {
		g.board.stateLock.Unlock()
		return
	}

	p.level = level
	w := PinWrite{Time: g.board.engine.Now(), Pin: pin, Level: level}
	g.board.pinWrites = append(g.board.pinWrites, w)
	g.board.stateLock.Unlock()

	g.board.InvokeHook(sim.HookCtx{
		Domain: g.board,
		Pos:    HookPosPinWrite,
		Item:   w,
	})
}

// Level returns the level currently driven on a pin.
func (g *GPIO) Level(pin int) hal.Level {
	g.board.stateLock.RLock()
	defer g.board.stateLock.RUnlock()

	p, ok := g.pins[pin]
	if !ok {
		return hal.Low
	}

	return p.level
}

// Mode returns how a pin is configured.
func (g *GPIO) Mode(pin int) hal.PinMode {
	g.board.stateLock.RLock()
	defer g.board.stateLock.RUnlock()

	p, ok := g.pins[pin]
	if !ok {
		return hal.Unconfigured
	}

	return p.mode
}
