package device

import (
	"io"

	"github.com/sarchlab/deepsleep/retention"
	"github.com/sarchlab/deepsleep/sim"
)

// Builder can build boards.
type Builder struct {
	engine         sim.Engine
	store          retention.Store
	factory        ProgramFactory
	consoleSink    io.Writer
	maxWakes       int
	wakeTimerFault error
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine the board runs on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithStore sets the retention memory. A memory store is used if not set.
func (b Builder) WithStore(store retention.Store) Builder {
	b.store = store
	return b
}

// WithProgram sets how the program of each wake cycle is created.
func (b Builder) WithProgram(factory ProgramFactory) Builder {
	b.factory = factory
	return b
}

// WithConsoleSink sets where the console lines go.
func (b Builder) WithConsoleSink(w io.Writer) Builder {
	b.consoleSink = w
	return b
}

// WithMaxWakeCycles stops the board from waking up again after n wake
// cycles. Zero means no limit.
func (b Builder) WithMaxWakeCycles(n int) Builder {
	b.maxWakes = n
	return b
}

// WithWakeTimerFault makes every attempt to arm the wake timer fail with the
// given error.
func (b Builder) WithWakeTimerFault(err error) Builder {
	b.wakeTimerFault = err
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("engine is not set")
	}

	if b.factory == nil {
		panic("program is not set")
	}

	if b.maxWakes < 0 {
		panic("max wake cycles cannot be negative")
	}
}

// Build creates a board with the given name.
func (b Builder) Build(name string) *Board {
	b.parametersMustBeValid()

	board := &Board{
		engine:   b.engine,
		store:    b.store,
		factory:  b.factory,
		maxWakes: b.maxWakes,
	}
	board.ComponentBase = sim.NewComponentBase(name)

	if board.store == nil {
		board.store = retention.NewMemoryStore()
	}

	board.bootCount = retention.NewSlot(
		board.store, BootCountSlot, BootCountBits)
	board.gpio = newGPIO(board)
	board.console = newConsole(board, b.consoleSink)
	board.rtc = newRTC(board)
	board.rtc.fault = b.wakeTimerFault

	return board
}
