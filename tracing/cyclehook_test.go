package tracing_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/deepsleep/device"
	"github.com/sarchlab/deepsleep/hal"
	"github.com/sarchlab/deepsleep/sim"
	"github.com/sarchlab/deepsleep/tracing"
)

var _ = Describe("CycleHook", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		domain   *sim.ComponentBase
		hook     *tracing.CycleHook
	)

	invoke := func(pos *sim.HookPos, item interface{}) {
		hook.Func(sim.HookCtx{Domain: domain, Pos: pos, Item: item})
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
		domain = sim.NewComponentBase("Board")
		hook = tracing.NewCycleHook(tracer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should trace a wake cycle", func() {
		var started, ended tracing.Task
		var milestones []tracing.Milestone

		tracer.EXPECT().StartTask(gomock.Any()).
			Do(func(t tracing.Task) { started = t })
		tracer.EXPECT().AddMilestone(gomock.Any()).
			Do(func(m tracing.Milestone) { milestones = append(milestones, m) }).
			Times(4)
		tracer.EXPECT().EndTask(gomock.Any()).
			Do(func(t tracing.Task) { ended = t })

		invoke(device.HookPosWake, device.WakeInfo{
			Cycle: 2, Cause: hal.WakeCauseTimer, Time: 10.02,
		})
		invoke(device.HookPosConsoleLine,
			device.ConsoleLine{Time: 11.02, Line: "Boot number: 2"})
		invoke(device.HookPosPinWrite,
			device.PinWrite{Time: 11.02, Pin: 8, Level: hal.High})
		invoke(device.HookPosPinWrite,
			device.PinWrite{Time: 11.52, Pin: 8, Level: hal.Low})
		invoke(device.HookPosConsoleLine,
			device.ConsoleLine{Time: 15.02, Line: "Going to sleep now"})
		invoke(device.HookPosSleep, device.SleepInfo{
			Cycle: 2, Time: 15.04, BootCount: 2, WakeArmed: true,
			NextWake: 20.04,
		})

		Expect(started.Kind).To(Equal(tracing.KindWakeCycle))
		Expect(started.What).To(Equal("timer"))
		Expect(started.Location).To(Equal("Board"))
		Expect(started.Cycle).To(Equal(2))
		Expect(started.StartTime).To(Equal(sim.VTimeInSec(10.02)))

		Expect(ended.ID).To(Equal(started.ID))
		Expect(ended.EndTime).To(Equal(sim.VTimeInSec(15.04)))
		Expect(ended.BootCount).To(Equal(int64(2)))
		Expect(ended.Blinks).To(Equal(1))
		Expect(ended.WakeArmed).To(BeTrue())

		Expect(milestones[0].Kind).To(Equal(tracing.MilestoneConsoleLine))
		Expect(milestones[0].What).To(Equal("Boot number: 2"))
		Expect(milestones[1].Kind).To(Equal(tracing.MilestonePinWrite))
		Expect(milestones[1].What).To(Equal("pin 8 HIGH"))
		for _, m := range milestones {
			Expect(m.TaskID).To(Equal(started.ID))
		}
	})

	It("should end the cycle at a power loss", func() {
		var ended tracing.Task

		tracer.EXPECT().StartTask(gomock.Any())
		tracer.EXPECT().EndTask(gomock.Any()).
			Do(func(t tracing.Task) { ended = t })

		invoke(device.HookPosWake, device.WakeInfo{Cycle: 1, Time: 0})
		invoke(device.HookPosPowerLoss, sim.VTimeInSec(2.5))

		Expect(ended.EndTime).To(Equal(sim.VTimeInSec(2.5)))
		Expect(ended.BootCount).To(BeZero())
	})

	It("should ignore activity outside of a cycle", func() {
		invoke(device.HookPosPinWrite,
			device.PinWrite{Time: 1, Pin: 8, Level: hal.High})
		invoke(device.HookPosSleep, device.SleepInfo{
			Time: 1, Err: errors.New("no wake source"),
		})
	})

	It("should skip filtered cycles", func() {
		hook.WithFilter(func(t tracing.Task) bool {
			return t.Cycle%2 == 0
		})

		tracer.EXPECT().StartTask(gomock.Any()).Times(1)
		tracer.EXPECT().EndTask(gomock.Any()).Times(1)

		for cycle := 1; cycle <= 2; cycle++ {
			invoke(device.HookPosWake, device.WakeInfo{Cycle: cycle})
			invoke(device.HookPosSleep, device.SleepInfo{Cycle: cycle})
		}
	})
})
