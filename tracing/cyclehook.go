package tracing

import (
	"fmt"
	"sync"

	"github.com/sarchlab/deepsleep/device"
	"github.com/sarchlab/deepsleep/hal"
	"github.com/sarchlab/deepsleep/sim"
)

// CycleHook is a board hook that turns wake-ups and sleeps into wake-cycle
// tasks. Pin writes and console lines become milestones of the cycle.
type CycleHook struct {
	lock    sync.Mutex
	tracer  Tracer
	filter  TaskFilter
	current map[string]*Task
}

// NewCycleHook creates a CycleHook that reports to the given tracer.
func NewCycleHook(tracer Tracer) *CycleHook {
	return &CycleHook{
		tracer:  tracer,
		current: make(map[string]*Task),
	}
}

// WithFilter only reports the tasks accepted by the filter. The filter sees
// the task as it is at the wake-up.
func (h *CycleHook) WithFilter(filter TaskFilter) *CycleHook {
	h.filter = filter
	return h
}

// Func handles a board hook.
func (h *CycleHook) Func(ctx sim.HookCtx) {
	location := locationOf(ctx.Domain)

	h.lock.Lock()
	defer h.lock.Unlock()

	switch ctx.Pos {
	case device.HookPosWake:
		h.startCycle(location, ctx.Item.(device.WakeInfo))
	case device.HookPosSleep:
		h.endCycle(location, ctx.Item.(device.SleepInfo))
	case device.HookPosPinWrite:
		h.pinWrite(location, ctx.Item.(device.PinWrite))
	case device.HookPosConsoleLine:
		h.consoleLine(location, ctx.Item.(device.ConsoleLine))
	case device.HookPosPowerLoss:
		h.powerLoss(location, ctx.Item.(sim.VTimeInSec))
	}
}

func (h *CycleHook) startCycle(location string, info device.WakeInfo) {
	task := &Task{
		ID:        sim.GetIDGenerator().Generate(),
		Kind:      KindWakeCycle,
		What:      info.Cause.String(),
		Location:  location,
		Cycle:     info.Cycle,
		StartTime: info.Time,
	}

	if h.filter != nil && !h.filter(*task) {
		delete(h.current, location)
		return
	}

	h.current[location] = task
	h.tracer.StartTask(*task)
}

func (h *CycleHook) endCycle(location string, info device.SleepInfo) {
	task, ok := h.current[location]
	if !ok {
		return
	}

	task.EndTime = info.Time
	task.BootCount = info.BootCount
	task.WakeArmed = info.WakeArmed

	h.tracer.EndTask(*task)
	delete(h.current, location)
}

func (h *CycleHook) pinWrite(location string, w device.PinWrite) {
	task, ok := h.current[location]
	if !ok {
		return
	}

	if w.Level == hal.High {
		task.Blinks++
	}

	h.tracer.AddMilestone(Milestone{
		ID:       sim.GetIDGenerator().Generate(),
		TaskID:   task.ID,
		Kind:     MilestonePinWrite,
		What:     fmt.Sprintf("pin %d %s", w.Pin, w.Level),
		Location: location,
		Time:     float64(w.Time),
	})
}

func (h *CycleHook) consoleLine(location string, l device.ConsoleLine) {
	task, ok := h.current[location]
	if !ok {
		return
	}

	h.tracer.AddMilestone(Milestone{
		ID:       sim.GetIDGenerator().Generate(),
		TaskID:   task.ID,
		Kind:     MilestoneConsoleLine,
		What:     l.Line,
		Location: location,
		Time:     float64(l.Time),
	})
}

// A power loss ends the cycle where it is, without a boot count.
func (h *CycleHook) powerLoss(location string, now sim.VTimeInSec) {
	task, ok := h.current[location]
	if !ok {
		return
	}

	task.EndTime = now

	h.tracer.EndTask(*task)
	delete(h.current, location)
}

func locationOf(domain sim.Hookable) string {
	if named, ok := domain.(sim.Named); ok {
		return named.Name()
	}

	return fmt.Sprintf("%T", domain)
}
