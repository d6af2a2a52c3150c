package bridge

import (
	"sync"

	"github.com/edlbridge/api/internal/model"
)

// jobRegistry is the process-scoped map of job id to job state. Keys are
// append-only and records are never evicted. The render worker is the
// only writer after creation; status handlers read concurrently.
type jobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*jobState
}

// jobState holds the mutable half of a job. Status, error, and result
// are always written together under the registry lock so readers never
// observe a partially-updated record.
type jobState struct {
	job    *model.Job
	status model.JobStatus
	err    *string
	result *model.EngineEvent
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*jobState)}
}

func (r *jobRegistry) Add(job *model.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = &jobState{job: job, status: model.JobStatusPending}
}

func (r *jobRegistry) MarkRunning(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.jobs[jobID]; ok && st.status == model.JobStatusPending {
		st.status = model.JobStatusRunning
	}
}

func (r *jobRegistry) Complete(jobID string, result *model.EngineEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.jobs[jobID]; ok && !st.status.Terminal() {
		st.status = model.JobStatusCompleted
		st.result = result
		st.err = nil
	}
}

func (r *jobRegistry) Fail(jobID string, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.jobs[jobID]; ok && !st.status.Terminal() {
		st.status = model.JobStatusFailed
		st.err = &msg
		st.result = nil
	}
}

// Snapshot returns a consistent point-in-time view of one job.
func (r *jobRegistry) Snapshot(jobID string) (model.JobSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.jobs[jobID]
	if !ok {
		return model.JobSnapshot{}, false
	}
	return model.JobSnapshot{
		JobID:  jobID,
		Status: st.status,
		Error:  st.err,
		Result: st.result,
	}, true
}

func (r *jobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
