package simulation

import (
	"io"
	"log"
	"os"
	"strconv"

	"github.com/rs/xid"

	"github.com/sarchlab/deepsleep/controller"
	"github.com/sarchlab/deepsleep/datarecording"
	"github.com/sarchlab/deepsleep/device"
	"github.com/sarchlab/deepsleep/monitoring"
	"github.com/sarchlab/deepsleep/retention"
	"github.com/sarchlab/deepsleep/sim"
	"github.com/sarchlab/deepsleep/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg         controller.Config
	store       retention.Store
	consoleSink io.Writer
	wakeCycles  int

	recordOn       bool
	outputFileName string

	monitorOn   bool
	monitorPort int
	openBrowser bool

	eventLogger   *log.Logger
	realTimeSpeed float64
}

// MakeBuilder creates a new builder. By default, the board runs three wake
// cycles, prints to stdout and keeps its retention memory in the process.
func MakeBuilder() Builder {
	return Builder{
		cfg:         controller.DefaultConfig(),
		consoleSink: os.Stdout,
		wakeCycles:  3,
	}
}

// WithConfig sets the configuration of the program.
func (b Builder) WithConfig(cfg controller.Config) Builder {
	b.cfg = cfg
	return b
}

// WithStore sets where retention memory is kept.
func (b Builder) WithStore(store retention.Store) Builder {
	b.store = store
	return b
}

// WithConsoleSink sets where the debug console writes to.
func (b Builder) WithConsoleSink(w io.Writer) Builder {
	b.consoleSink = w
	return b
}

// WithWakeCycles sets the number of wake cycles to simulate. Zero runs
// forever.
func (b Builder) WithWakeCycles(n int) Builder {
	b.wakeCycles = n
	return b
}

// WithDataRecording records the wake cycles into a SQLite file. A random
// name is used if the file name is empty.
func (b Builder) WithDataRecording(filename string) Builder {
	b.recordOn = true
	b.outputFileName = filename
	return b
}

// WithMonitor serves the monitoring page while the simulation runs. Port 0
// picks a random port.
func (b Builder) WithMonitor(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page in a browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithEventLogger logs every event handled by the engine.
func (b Builder) WithEventLogger(logger *log.Logger) Builder {
	b.eventLogger = logger
	return b
}

// WithRealTime paces the simulation to the wall clock. Speed 1 runs in
// real time.
func (b Builder) WithRealTime(speed float64) Builder {
	b.realTimeSpeed = speed
	return b
}

func (b Builder) parametersMustBeValid() {
	err := b.cfg.Validate()
	if err != nil {
		panic(err)
	}

	if b.wakeCycles < 0 {
		panic("wake cycles cannot be negative")
	}

	if b.openBrowser && !b.monitorOn {
		panic("browser cannot be opened when monitoring is disabled")
	}

	if b.realTimeSpeed < 0 {
		panic("real time speed cannot be negative")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:          xid.New().String(),
		cfg:         b.cfg,
		store:       b.store,
		wakeCycles:  b.wakeCycles,
		openBrowser: b.openBrowser,
	}

	if s.store == nil {
		s.store = retention.NewMemoryStore()
	}

	s.engine = sim.NewSerialEngine()

	if b.eventLogger != nil {
		s.engine.AcceptHook(sim.NewEventLogger(b.eventLogger))
	}

	if b.realTimeSpeed > 0 {
		s.engine.AcceptHook(sim.NewRealTimePacer(b.realTimeSpeed))
	}

	s.board = device.MakeBuilder().
		WithEngine(s.engine).
		WithStore(s.store).
		WithConsoleSink(b.consoleSink).
		WithMaxWakeCycles(b.wakeCycles).
		WithProgram(s).
		Build(b.cfg.BoardName)

	if b.recordOn {
		b.buildRecording(s)
	}

	if b.monitorOn {
		b.buildMonitor(s)
	}

	return s
}

func (b Builder) buildRecording(s *Simulation) {
	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "deepsleep_" + s.id
	}

	s.dataRecorder = datarecording.New(outputPath)
	s.tracer = tracing.NewDBTracer(s.dataRecorder)
	s.board.AcceptHook(tracing.NewCycleHook(s.tracer))

	s.execRecorder = datarecording.NewExecRecorder(s.dataRecorder)
	s.execRecorder.Start()
	s.execRecorder.Record("Simulation ID", s.id)
	s.execRecorder.Record("Board", b.cfg.BoardName)
	s.execRecorder.Record("Wake Cycles", strconv.Itoa(b.wakeCycles))
	s.execRecorder.Record("Awake Time", b.cfg.AwakeTime.String())
	s.execRecorder.Record("Wake Interval", b.cfg.WakeInterval.String())
}

func (b Builder) buildMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor().WithPortNumber(b.monitorPort)
	s.monitor.RegisterEngine(s.engine)
	s.monitor.RegisterComponent(s.board)
	s.monitor.RegisterDevice(s.board)

	total := uint64(b.wakeCycles)
	s.progressBar = s.monitor.CreateProgressBar("Wake cycles", total)
	s.board.AcceptHook(sim.HookFunc(s.trackProgress))
}
