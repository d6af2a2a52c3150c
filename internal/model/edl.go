package model

// Edl is a structured edit-decision-list parsed from document text.
type Edl struct {
	ID         string     `json:"id"`
	SampleRate int        `json:"sample_rate"`
	Media      []AudioRef `json:"media,omitempty"`
	Tracks     []Track    `json:"tracks"`
}

// AudioRef points at a source audio file referenced by clips.
type AudioRef struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	SampleRate int    `json:"sample_rate,omitempty"`
}

// Track is an ordered collection of clips on the timeline.
type Track struct {
	ID    string `json:"id"`
	Clips []Clip `json:"clips"`
}

// Clip places a slice of a media file onto the timeline.
type Clip struct {
	ID              string  `json:"id"`
	MediaID         string  `json:"media_id"`
	StartInMedia    int64   `json:"start_in_media"`
	Duration        int64   `json:"duration"`
	StartInTimeline int64   `json:"start_in_timeline"`
	Gain            float64 `json:"gain,omitempty"`
}

// ClipCount returns the total number of clips across all tracks.
func (e *Edl) ClipCount() int {
	n := 0
	for _, t := range e.Tracks {
		n += len(t.Clips)
	}
	return n
}
