package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/deepsleep/config"
	"github.com/sarchlab/deepsleep/retention"
	"github.com/sarchlab/deepsleep/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the boot-count program for a number of wake cycles.",
	Long: "`run` powers the simulated board on and runs the boot-count " +
		"program until the requested number of wake cycles has passed. The " +
		"boot counter continues from what the retention memory holds.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		err = c.Validate()
		if err != nil {
			return err
		}

		return run(cmd, c)
	},
}

func init() {
	d := config.Default()
	f := runCmd.Flags()

	f.Int("cycles", d.Cycles, "Wake cycles to simulate, 0 runs forever")
	f.String("board", d.BoardName, "Name of the board")
	f.Int("awake-ms", int(d.AwakeTime.Milliseconds()),
		"Time awake after each wake-up, in milliseconds")
	f.Float64("sleep-seconds", d.WakeInterval.Seconds(),
		"Deep sleep time, in seconds")
	f.Int("blink-ms", int(d.BlinkHalfPeriod.Milliseconds()),
		"Time the LED stays on and then off, in milliseconds")
	f.Int("attach-delay-ms", int(d.AttachDelay.Milliseconds()),
		"Wait after opening the console, in milliseconds")
	f.Uint32("baud", d.BaudRate, "Console baud rate")
	f.Int("led-pin", d.LEDPin, "LED pin number")
	f.Bool("record", false, "Record the wake cycles into a SQLite file")
	f.String("record-path", "",
		"Recording file name without extension, implies --record")
	f.Bool("monitor", false, "Serve a monitoring page")
	f.Int("monitor-port", 0,
		"Port of the monitoring page, 0 for any, implies --monitor")
	f.Bool("open-browser", false, "Open the monitoring page in a browser")
	f.Bool("log-events", false, "Log every simulation event to stderr")
	f.Float64("realtime", 0,
		"Pace the simulation to the wall clock at this speed, 0 for no pacing")

	rootCmd.AddCommand(runCmd)
}

func buildSimulation(cmd *cobra.Command, c config.Config) (
	*simulation.Simulation, error,
) {
	store, err := c.OpenStore()
	if err != nil {
		return nil, err
	}

	b := simulation.MakeBuilder().
		WithConfig(c.Controller()).
		WithStore(store).
		WithConsoleSink(cmd.OutOrStdout()).
		WithWakeCycles(c.Cycles)

	if c.Record {
		b = b.WithDataRecording(c.RecordPath)
	}

	if c.Monitor {
		b = b.WithMonitor(c.MonitorPort)
	}

	if c.OpenBrowser {
		b = b.WithBrowser()
	}

	if c.LogEvents {
		b = b.WithEventLogger(log.New(cmd.ErrOrStderr(), "", 0))
	}

	if c.RealTime > 0 {
		b = b.WithRealTime(c.RealTime)
	}

	return b.Build(), nil
}

func run(cmd *cobra.Command, c config.Config) error {
	s, err := buildSimulation(cmd, c)
	if err != nil {
		return err
	}

	stopOnSignal(s)

	err = s.Run()
	if err != nil {
		s.Terminate()
		return err
	}

	report, err := s.Report()
	if err != nil {
		s.Terminate()
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(),
		"Simulated %d wake cycles in %.3f s, boot count is %d (%s)\n",
		report.WakeCycles, float64(report.SimTime), report.BootCount,
		describeStore(c))

	for _, e := range report.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "Board error: %v\n", e)
	}

	return s.Terminate()
}

// stopOnSignal ends the run cleanly on Ctrl-C, which is the only way out of
// a run without a cycle limit.
func stopOnSignal(s *simulation.Simulation) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signals

		s.GetEngine().Pause()

		report, err := s.Report()
		if err == nil {
			warn("Interrupted after %d wake cycles, boot count is %d",
				report.WakeCycles, report.BootCount)
		}

		err = s.Terminate()
		if err != nil {
			warn("%v", err)
		}

		atexit.Exit(130)
	}()
}

func describeStore(c config.Config) string {
	if c.Retention == retention.KindMemory {
		return "retention in memory"
	}

	return "retention in " + c.RetentionPath
}
