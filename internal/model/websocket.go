package model

// WebSocket message types pushed to job subscribers.
const (
	WSMessageTypeEvent    = "event"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage is the minimal envelope used for client pings.
type WSMessage struct {
	Type string `json:"type"`
}

// WSEventMessage relays one engine event to job subscribers.
type WSEventMessage struct {
	Type  string       `json:"type"`
	JobID string       `json:"job_id"`
	Event *EngineEvent `json:"event"`
}

// WSCompleteMessage announces a finished job with its terminal payload.
type WSCompleteMessage struct {
	Type   string       `json:"type"`
	JobID  string       `json:"job_id"`
	Result *EngineEvent `json:"result"`
}

// WSErrorMessage announces a failed job.
type WSErrorMessage struct {
	Type  string  `json:"type"`
	JobID string  `json:"job_id"`
	Error WSError `json:"error"`
}

// WSError describes a job failure pushed over the socket.
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
