package device_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/deepsleep/device"
	"github.com/sarchlab/deepsleep/hal"
	"github.com/sarchlab/deepsleep/retention"
	"github.com/sarchlab/deepsleep/sim"
)

type stepEvent struct {
	*sim.EventBase
	fn func()
}

type stepper struct{}

func (stepper) Handle(e sim.Event) error {
	e.(stepEvent).fn()
	return nil
}

// script is a program that runs a fixed list of steps, one step per given
// delay.
type script struct {
	p     device.Platform
	steps []func(p device.Platform)
	every time.Duration
	ran   int
}

func (s *script) Start() {
	s.next()
}

func (s *script) next() {
	if s.ran >= len(s.steps) {
		return
	}

	s.steps[s.ran](s.p)
	s.ran++

	s.p.Scheduler.Schedule(stepEvent{
		EventBase: sim.NewEventBase(
			s.p.Scheduler.Now()+sim.Seconds(s.every), stepper{}),
		fn: s.next,
	})
}

var _ = Describe("Board", func() {
	var (
		engine   *sim.SerialEngine
		store    *retention.MemoryStore
		sink     *bytes.Buffer
		programs []*script
		steps    []func(p device.Platform)
		builder  device.Builder
		board    *device.Board
		wakes    []device.WakeInfo
		sleeps   []device.SleepInfo
	)

	armAndSleep := []func(p device.Platform){
		func(p device.Platform) {
			p.GPIO.PinMode(2, hal.Output)
			p.GPIO.DigitalWrite(2, hal.High)
			Expect(p.Sleep.EnableTimerWakeup(5_000_000)).To(Succeed())
		},
		func(p device.Platform) {
			p.Sleep.DeepSleepStart()
		},
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		store = retention.NewMemoryStore()
		sink = new(bytes.Buffer)
		programs = nil
		steps = armAndSleep
		wakes = nil
		sleeps = nil

		builder = device.MakeBuilder().
			WithEngine(engine).
			WithStore(store).
			WithConsoleSink(sink).
			WithProgram(device.ProgramFactoryFunc(
				func(p device.Platform) device.Program {
					s := &script{p: p, steps: steps, every: time.Second}
					programs = append(programs, s)

					return s
				}))
	})

	build := func() {
		board = builder.Build("Board")
		board.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			switch ctx.Pos {
			case device.HookPosWake:
				wakes = append(wakes, ctx.Item.(device.WakeInfo))
			case device.HookPosSleep:
				sleeps = append(sleeps, ctx.Item.(device.SleepInfo))
			}
		}))
	}

	It("should start off", func() {
		build()
		Expect(board.State()).To(Equal(device.StateOff))
		Expect(board.Program()).To(BeNil())
	})

	It("should cold boot and start the program", func() {
		build()
		steps = nil
		board.PowerOn()
		Expect(engine.Run()).To(Succeed())

		Expect(board.State()).To(Equal(device.StateAwake))
		Expect(board.WakeCount()).To(Equal(1))
		Expect(programs).To(HaveLen(1))
		Expect(board.Program()).To(BeIdenticalTo(programs[0]))
		Expect(wakes).To(Equal([]device.WakeInfo{
			{Cycle: 1, Cause: hal.WakeCauseUndefined, Time: 0},
		}))
	})

	It("should not power on twice", func() {
		builder = builder.WithMaxWakeCycles(1)
		build()
		board.PowerOn()
		Expect(engine.Run()).To(Succeed())
		Expect(func() { board.PowerOn() }).To(Panic())
	})

	It("should restart a fresh program at every timer wake", func() {
		builder = builder.WithMaxWakeCycles(3)
		build()
		board.PowerOn()
		Expect(engine.Run()).To(Succeed())

		Expect(programs).To(HaveLen(3))
		Expect(programs[0]).NotTo(BeIdenticalTo(programs[1]))
		Expect(board.WakeCount()).To(Equal(3))
		Expect(board.State()).To(Equal(device.StateAsleep))

		Expect(wakes).To(HaveLen(3))
		Expect(wakes[1].Cause).To(Equal(hal.WakeCauseTimer))
		Expect(wakes[1].Time).To(BeNumerically("~", 6, 1e-9))
		Expect(wakes[2].Time).To(BeNumerically("~", 12, 1e-9))

		Expect(sleeps).To(HaveLen(3))
		Expect(sleeps[0].AwakeFor).To(Equal(time.Second))
		Expect(sleeps[0].NextWake).To(BeNumerically("~", 6, 1e-9))
		Expect(sleeps[2].NextWake).To(BeNumerically("<", 0))
	})

	It("should reset pins at wake", func() {
		builder = builder.WithMaxWakeCycles(2)
		build()
		board.PowerOn()
		Expect(engine.Run()).To(Succeed())

		Expect(board.GPIO().Mode(2)).To(Equal(hal.Output))
		Expect(board.PinWrites()).To(HaveLen(2))

		steps = []func(p device.Platform){
			func(p device.Platform) { p.GPIO.DigitalWrite(2, hal.High) },
		}
		Expect(board.PowerCycle()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(board.GPIO().Mode(2)).To(Equal(hal.Unconfigured))
		Expect(board.GPIO().Level(2)).To(Equal(hal.Low))
		Expect(board.PinWrites()).To(HaveLen(2))
	})

	It("should never wake up without a wake source", func() {
		steps = []func(p device.Platform){
			func(p device.Platform) {},
			func(p device.Platform) { p.Sleep.DeepSleepStart() },
		}
		build()
		board.PowerOn()
		Expect(engine.Run()).To(Succeed())

		Expect(board.WakeCount()).To(Equal(1))
		Expect(board.State()).To(Equal(device.StateAsleep))
		Expect(sleeps[0].Err).To(MatchError(device.ErrNoWakeSource))
		Expect(board.Errors()).To(HaveLen(1))
	})

	It("should drop the events of a finished cycle", func() {
		var late bool
		steps = []func(p device.Platform){
			func(p device.Platform) {
				Expect(p.Sleep.EnableTimerWakeup(1_000_000)).To(Succeed())
				p.Scheduler.Schedule(stepEvent{
					EventBase: sim.NewEventBase(
						p.Scheduler.Now()+3, stepper{}),
					fn: func() { late = true },
				})
				p.Sleep.DeepSleepStart()
			},
		}
		builder = builder.WithMaxWakeCycles(1)
		build()
		board.PowerOn()
		Expect(engine.Run()).To(Succeed())

		Expect(late).To(BeFalse())
	})

	It("should report the time since wake", func() {
		var millis []uint64
		steps = []func(p device.Platform){
			func(p device.Platform) { millis = append(millis, p.Clock.Millis()) },
			func(p device.Platform) { millis = append(millis, p.Clock.Millis()) },
		}
		build()
		board.PowerOn()
		Expect(engine.Run()).To(Succeed())

		Expect(millis).To(Equal([]uint64{0, 1000}))
	})

	It("should fail to arm the timer with a fault", func() {
		fault := errors.New("rtc busy")
		var err error
		steps = []func(p device.Platform){
			func(p device.Platform) { err = p.Sleep.EnableTimerWakeup(1) },
		}
		builder = builder.WithWakeTimerFault(fault)
		build()
		board.PowerOn()
		Expect(engine.Run()).To(Succeed())

		Expect(err).To(MatchError(fault))
	})

	It("should reject a zero wake interval", func() {
		var err error
		steps = []func(p device.Platform){
			func(p device.Platform) { err = p.Sleep.EnableTimerWakeup(0) },
		}
		build()
		board.PowerOn()
		Expect(engine.Run()).To(Succeed())

		Expect(err).To(MatchError(device.ErrInvalidWakeInterval))
	})

	Context("retention", func() {
		It("should keep the store across sleeps and erase it on power loss",
			func() {
				steps = []func(p device.Platform){
					func(p device.Platform) {
						slot := retention.NewSlot(p.Retention,
							device.BootCountSlot, device.BootCountBits)
						_, err := slot.Increment()
						Expect(err).NotTo(HaveOccurred())
						Expect(p.Sleep.EnableTimerWakeup(1_000_000)).
							To(Succeed())
						p.Sleep.DeepSleepStart()
					},
				}
				builder = builder.WithMaxWakeCycles(4)
				build()
				board.PowerOn()
				Expect(engine.Run()).To(Succeed())

				Expect(board.BootCount()).To(Equal(int64(4)))
				Expect(sleeps[3].BootCount).To(Equal(int64(4)))

				Expect(board.PowerLoss()).To(Succeed())
				Expect(board.State()).To(Equal(device.StateOff))
				Expect(board.BootCount()).To(Equal(int64(0)))
			})

		It("should cancel pending wake-ups on power loss", func() {
			builder = builder.WithMaxWakeCycles(10)
			build()
			board.PowerOn()
			board.SchedulePowerLoss(3, -1)
			Expect(engine.Run()).To(Succeed())

			Expect(board.WakeCount()).To(Equal(1))
			Expect(board.State()).To(Equal(device.StateOff))
		})

		It("should cold boot after the power comes back", func() {
			builder = builder.WithMaxWakeCycles(2)
			build()
			board.PowerOn()
			board.SchedulePowerLoss(3, 1)
			Expect(engine.Run()).To(Succeed())

			Expect(wakes).To(HaveLen(2))
			Expect(wakes[1].Cause).To(Equal(hal.WakeCauseUndefined))
			Expect(wakes[1].Time).To(BeNumerically("~", 4, 1e-9))
		})
	})

	Context("console", func() {
		It("should drop lines printed before Begin", func() {
			steps = []func(p device.Platform){
				func(p device.Platform) {
					p.Console.Println("lost")
					Expect(p.Console.Flush()).To(BeZero())
				},
			}
			build()
			board.PowerOn()
			Expect(engine.Run()).To(Succeed())

			Expect(sink.String()).To(BeEmpty())
			Expect(board.Console().Dropped()).To(Equal(1))
		})

		It("should take time to drain at the baud rate", func() {
			var drain time.Duration
			steps = []func(p device.Platform){
				func(p device.Platform) {
					p.Console.Begin(9600)
					p.Console.Println("Going to sleep now")
					drain = p.Console.Flush()
				},
			}
			build()
			board.PowerOn()
			Expect(engine.Run()).To(Succeed())

			Expect(sink.String()).To(Equal("Going to sleep now\n"))
			Expect(drain).To(BeNumerically("~",
				200*time.Second/9600, time.Microsecond))
			Expect(board.Transcript()).To(Equal([]device.ConsoleLine{
				{Time: 0, Line: "Going to sleep now"},
			}))
		})

		It("should be drained after waiting", func() {
			var drain time.Duration
			steps = []func(p device.Platform){
				func(p device.Platform) {
					p.Console.Begin(9600)
					p.Console.Println("Boot number: 1")
				},
				func(p device.Platform) { drain = p.Console.Flush() },
			}
			build()
			board.PowerOn()
			Expect(engine.Run()).To(Succeed())

			Expect(drain).To(BeZero())
		})
	})

	It("should take a status snapshot", func() {
		steps = nil
		build()
		board.PowerOn()
		Expect(engine.Run()).To(Succeed())

		s, err := board.Status()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name).To(Equal("Board"))
		Expect(s.State).To(Equal(device.StateAwake))
		Expect(s.WakeCount).To(Equal(1))
	})
})
