package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how many wake cycles are done out of a total. A total
// of zero means the run has no end.
type ProgressBar struct {
	sync.Mutex `json:"-"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	if amount > b.InProgress {
		amount = b.InProgress
	}

	b.InProgress -= amount
	b.Finished += amount
}

// DropInProgress forgets the items in progress, as when the power is cut in
// the middle of a cycle.
func (b *ProgressBar) DropInProgress() {
	b.Lock()
	defer b.Unlock()

	b.InProgress = 0
}

// percent returns the finished share in percent, or -1 without a total.
// The caller holds the lock.
func (b *ProgressBar) percent() float64 {
	if b.Total == 0 {
		return -1
	}

	return 100 * float64(b.Finished) / float64(b.Total)
}
