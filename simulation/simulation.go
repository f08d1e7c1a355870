// Package simulation wires a board running the boot-count program together
// with the engine, the recorder and the monitor.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sarchlab/deepsleep/controller"
	"github.com/sarchlab/deepsleep/datarecording"
	"github.com/sarchlab/deepsleep/device"
	"github.com/sarchlab/deepsleep/monitoring"
	"github.com/sarchlab/deepsleep/retention"
	"github.com/sarchlab/deepsleep/sim"
	"github.com/sarchlab/deepsleep/tracing"
)

// A Simulation is a board that runs the boot-count program on an engine.
type Simulation struct {
	id          string
	cfg         controller.Config
	wakeCycles  int
	openBrowser bool

	engine *sim.SerialEngine
	board  *device.Board
	store  retention.Store

	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	tracer       *tracing.DBTracer
	monitor      *monitoring.Monitor
	progressBar  *monitoring.ProgressBar

	poweredOn bool

	programLock sync.Mutex
	program     *controller.Controller
	programs    int

	terminateOnce sync.Once
	terminateErr  error
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetBoard returns the simulated board.
func (s *Simulation) GetBoard() *device.Board {
	return s.board
}

// GetStore returns the retention memory of the board.
func (s *Simulation) GetStore() retention.Store {
	return s.store
}

// GetDataRecorder returns the data recorder, or nil if recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetTracer returns the tracer, or nil if recording is off.
func (s *Simulation) GetTracer() *tracing.DBTracer {
	return s.tracer
}

// GetMonitor returns the monitor, or nil if monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// CurrentProgram returns the program of the latest wake cycle.
func (s *Simulation) CurrentProgram() *controller.Controller {
	s.programLock.Lock()
	defer s.programLock.Unlock()

	return s.program
}

// ProgramsCreated returns how many times the program was started from the
// top.
func (s *Simulation) ProgramsCreated() int {
	s.programLock.Lock()
	defer s.programLock.Unlock()

	return s.programs
}

// NewProgram creates the boot-count program of one wake cycle.
func (s *Simulation) NewProgram(p device.Platform) device.Program {
	s.programLock.Lock()
	defer s.programLock.Unlock()

	s.programs++

	s.program = controller.MakeBuilder().
		WithScheduler(p.Scheduler).
		WithConfig(s.cfg).
		WithGPIO(p.GPIO).
		WithConsole(p.Console).
		WithClock(p.Clock).
		WithSleepController(p.Sleep).
		WithBootCounter(retention.NewSlot(
			p.Retention, device.BootCountSlot, device.BootCountBits)).
		Build(fmt.Sprintf("%s.Program%d", s.board.Name(), s.programs))

	return s.program
}

func (s *Simulation) trackProgress(ctx sim.HookCtx) {
	switch ctx.Pos {
	case device.HookPosWake:
		s.progressBar.IncrementInProgress(1)
	case device.HookPosSleep:
		s.progressBar.MoveInProgressToFinished(1)
	case device.HookPosPowerLoss:
		s.progressBar.DropInProgress()
	}
}

// Run powers the board on at the first call and runs the engine until no
// event is left.
func (s *Simulation) Run() error {
	if s.monitor != nil {
		_, err := s.monitor.StartServer()
		if err != nil {
			return err
		}

		if s.openBrowser {
			err = s.monitor.OpenInBrowser()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to open browser: %v\n", err)
			}
		}
	}

	if !s.poweredOn {
		s.poweredOn = true
		s.board.PowerOn()
	}

	err := s.engine.Run()
	if err != nil {
		return err
	}

	s.engine.Finished()

	return nil
}

// RunReport summarizes a finished run.
type RunReport struct {
	WakeCycles int
	BootCount  int64
	SimTime    sim.VTimeInSec
	Errors     []error
}

// Report summarizes the run so far.
func (s *Simulation) Report() (RunReport, error) {
	bootCount, err := s.board.BootCount()
	if err != nil {
		return RunReport{}, err
	}

	return RunReport{
		WakeCycles: s.board.WakeCount(),
		BootCount:  bootCount,
		SimTime:    s.engine.Now(),
		Errors:     s.board.Errors(),
	}, nil
}

// Terminate stops the monitor and closes the recorder and the retention
// store.
func (s *Simulation) Terminate() error {
	s.terminateOnce.Do(func() {
		var errs []error

		if s.monitor != nil {
			if s.progressBar != nil {
				s.monitor.CompleteProgressBar(s.progressBar)
			}

			ctx, cancel := context.WithTimeout(
				context.Background(), time.Second)
			errs = append(errs, s.monitor.StopServer(ctx))
			cancel()
		}

		if s.tracer != nil {
			s.tracer.Terminate()
		}

		if s.execRecorder != nil {
			s.execRecorder.End()
		}

		if s.dataRecorder != nil {
			errs = append(errs, s.dataRecorder.Close())
		}

		errs = append(errs, s.store.Close())

		s.terminateErr = errors.Join(errs...)
	})

	return s.terminateErr
}
