package model

// Engine event types streamed back during a render.
const (
	EventTypeProgress = "progress"
	EventTypeComplete = "complete"
)

// EngineEvent is one event from the render engine's event stream.
// A "complete" event is terminal and carries the output digest/path.
type EngineEvent struct {
	Type     string  `json:"type"`
	Progress float64 `json:"progress,omitempty"`
	Message  string  `json:"message,omitempty"`
	SHA256   string  `json:"sha256,omitempty"`
	OutPath  string  `json:"out_path,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e *EngineEvent) Terminal() bool {
	return e.Type == EventTypeComplete
}

// UpdateResult is the engine's acknowledgment of an EDL update.
type UpdateResult struct {
	EdlID      string `json:"edl_id"`
	TrackCount int    `json:"track_count"`
	ClipCount  int    `json:"clip_count"`
}
