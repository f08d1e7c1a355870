package device

import (
	"fmt"
	"io"
	"time"

	"github.com/sarchlab/deepsleep/sim"
)

// bitsPerByte counts the start and stop bits of an 8N1 frame.
const bitsPerByte = 10

// Console is the debug UART of the simulated board. Lines reach the sink
// immediately; the transmit time at the configured baud rate is tracked so
// that Flush knows how long draining takes.
type Console struct {
	board *Board
	sink  io.Writer

	open        bool
	baud        sim.Freq
	txBusyUntil sim.VTimeInSec
	dropped     int
}

func newConsole(b *Board, sink io.Writer) *Console {
	if sink == nil {
		sink = io.Discard
	}

	return &Console{board: b, sink: sink}
}

func (c *Console) reset() {
	c.board.stateLock.Lock()
	c.open = false
	c.baud = 0
	c.txBusyUntil = 0
	c.board.stateLock.Unlock()
}

// Begin opens the console.
func (c *Console) Begin(baud uint32) {
	if baud == 0 {
		panic("baud rate cannot be 0")
	}

	c.board.stateLock.Lock()
	defer c.board.stateLock.Unlock()

	c.open = true
	c.baud = sim.Freq(baud) * sim.Hz
	c.txBusyUntil = c.board.engine.Now()
}

// Println transmits a line. The sink gets it with a newline and the transmit
// time counts a CR LF. Lines printed on a closed console are lost.
func (c *Console) Println(line string) {
	c.board.stateLock.Lock()

	if !c.open {
		c.dropped++
		c.board.stateLock.Unlock()

		return
	}

	now := c.board.engine.Now()
	start := c.txBusyUntil
	if start < now {
		start = now
	}

	bits := (len(line) + 2) * bitsPerByte
	c.txBusyUntil = c.baud.NCyclesLater(bits, start)

	l := ConsoleLine{Time: now, Line: line}
	c.board.transcript = append(c.board.transcript, l)
	c.board.stateLock.Unlock()

	_, err := fmt.Fprintln(c.sink, line)
	if err != nil {
		c.board.reportError(fmt.Errorf("console sink: %w", err))
	}

	c.board.InvokeHook(sim.HookCtx{
		Domain: c.board,
		Pos:    HookPosConsoleLine,
		Item:   l,
	})
}

// Flush returns how long it takes until the transmit buffer is empty.
func (c *Console) Flush() time.Duration {
	c.board.stateLock.RLock()
	defer c.board.stateLock.RUnlock()

	if !c.open {
		return 0
	}

	remaining := c.txBusyUntil - c.board.engine.Now()
	if remaining <= 0 {
		return 0
	}

	return remaining.Duration()
}

// Dropped returns how many lines were printed on a closed console.
func (c *Console) Dropped() int {
	c.board.stateLock.RLock()
	defer c.board.stateLock.RUnlock()

	return c.dropped
}
