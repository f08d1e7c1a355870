package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/deepsleep/datarecording"
	"github.com/sarchlab/deepsleep/sim"
)

// WakeCyclesTable holds one WakeCycleEntry per traced task.
const WakeCyclesTable = "wake_cycles"

// MilestonesTable holds the milestones of the traced tasks.
const MilestonesTable = "milestones"

// WakeCycleEntry is a row of the wake_cycles table.
type WakeCycleEntry struct {
	ID        string
	Kind      string
	What      string
	Location  string
	Cycle     int
	BootCount int64
	StartTime float64
	EndTime   float64
	Blinks    int
	WakeArmed bool
}

// DBTracer is a tracer that stores tasks and milestones through a data
// recorder. Tasks go to the wake_cycles table and milestones to the
// milestones table.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder

	startTime, endTime sim.VTimeInSec

	tracingTasks map[string]Task
	taskCount    int
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	dataRecorder.CreateTable(WakeCyclesTable, WakeCycleEntry{})
	dataRecorder.CreateTable(MilestonesTable, Milestone{})

	t := &DBTracer{
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange limits tracing to tasks that overlap the given range. A zero
// bound means no limit.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTimeInSec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	startingTaskMustBeValid(task)

	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.Location == "" {
		panic("task location must be set")
	}
}

// EndTask marks the end of a task. The fields set at the end replace the
// ones given at the start.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	if t.startTime > 0 && task.EndTime < t.startTime {
		return
	}

	task.StartTime = original.StartTime

	t.backend.InsertData(WakeCyclesTable, WakeCycleEntry{
		ID:        task.ID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Location,
		Cycle:     task.Cycle,
		BootCount: task.BootCount,
		StartTime: float64(task.StartTime),
		EndTime:   float64(task.EndTime),
		Blinks:    task.Blinks,
		WakeArmed: task.WakeArmed,
	})
	t.taskCount++
}

// AddMilestone records a milestone of a task that is being traced.
func (t *DBTracer) AddMilestone(milestone Milestone) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tracingTasks[milestone.TaskID]; !ok {
		return
	}

	t.backend.InsertData(MilestonesTable, milestone)
}

// TaskCount returns the number of tasks written.
func (t *DBTracer) TaskCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.taskCount
}

// Terminate drops unfinished tasks and flushes the recorder.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracingTasks = make(map[string]Task)
	t.backend.Flush()
}
