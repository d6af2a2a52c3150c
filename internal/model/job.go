package model

// JobStatus is the lifecycle state of a render job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job carries the immutable parameters of a single render request.
// Mutable status lives in the job registry, never on the Job itself.
type Job struct {
	ID              string  `json:"job_id"`
	EdlID           string  `json:"edl_id"`
	StartSeconds    float64 `json:"start_seconds"`
	DurationSeconds float64 `json:"duration_seconds"`
	OutputPath      string  `json:"output_path"`
	BitDepth        int     `json:"bit_depth"`
}

// JobSnapshot is a point-in-time view of one job for status queries.
// Error and Result are nil until the job reaches a terminal state.
type JobSnapshot struct {
	JobID  string       `json:"job_id"`
	Status JobStatus    `json:"status"`
	Error  *string      `json:"error"`
	Result *EngineEvent `json:"result"`
}

// Allowed bit depths for rendered output files.
const (
	BitDepth16 = 16
	BitDepth24 = 24
	BitDepth32 = 32
)

// ValidBitDepth reports whether d is one of the supported bit depths.
func ValidBitDepth(d int) bool {
	return d == BitDepth16 || d == BitDepth24 || d == BitDepth32
}
