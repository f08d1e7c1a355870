package tracing

// Milestone kinds.
const (
	MilestonePinWrite    = "pin_write"
	MilestoneConsoleLine = "console_line"
)

// Milestone represents a point in time where something observable happens
// within a task.
type Milestone struct {
	ID       string  `json:"id"`
	TaskID   string  `json:"task_id"`
	Kind     string  `json:"kind"`
	What     string  `json:"what"`
	Location string  `json:"location"`
	Time     float64 `json:"time"`
}
