package bridge

import (
	"sync"

	"github.com/edlbridge/api/internal/model"
)

// jobQueue is an unbounded in-process FIFO of pending render jobs. With
// a single consumer, processing order equals enqueue order.
type jobQueue struct {
	mu    sync.Mutex
	items []*model.Job
}

func newJobQueue() *jobQueue {
	return &jobQueue{items: make([]*model.Job, 0, 16)}
}

func (q *jobQueue) Push(job *model.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, job)
}

// TryPop removes and returns the oldest job, if any. The worker polls
// this on a bounded interval so shutdown stays responsive.
func (q *jobQueue) TryPop() (*model.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	job := q.items[0]
	q.items = q.items[1:]
	return job, true
}

func (q *jobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
