package edl

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/edlbridge/api/internal/model"
)

// FenceTag marks the fenced code block in the document that carries the EDL.
const FenceTag = "edljson"

// ParseDocument extracts the edljson fenced block from document text and
// converts it into a validated EDL. The document may contain arbitrary
// prose around the block; only the first edljson block is used.
func ParseDocument(content string) (*model.Edl, error) {
	block, err := extractFencedBlock(content, FenceTag)
	if err != nil {
		return nil, err
	}

	var edl model.Edl
	if err := json.Unmarshal([]byte(block), &edl); err != nil {
		return nil, fmt.Errorf("invalid EDL JSON: %w", err)
	}

	if err := validate(&edl); err != nil {
		return nil, err
	}
	return &edl, nil
}

// extractFencedBlock returns the body of the first ```tag fenced block.
func extractFencedBlock(content, tag string) (string, error) {
	open := "```" + tag
	start := strings.Index(content, open)
	if start < 0 {
		return "", fmt.Errorf("no %s block found in document", tag)
	}
	rest := content[start+len(open):]
	// Tolerate trailing whitespace after the fence tag but require a newline
	// before the body.
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", fmt.Errorf("unterminated %s block", tag)
	}
	rest = rest[nl+1:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", fmt.Errorf("unterminated %s block", tag)
	}
	return strings.TrimSpace(rest[:end]), nil
}

func validate(edl *model.Edl) error {
	if edl.ID == "" {
		return fmt.Errorf("EDL id cannot be empty")
	}
	switch edl.SampleRate {
	case 44100, 48000, 96000:
	default:
		return fmt.Errorf("sample rate must be 44100, 48000, or 96000 Hz, got %d", edl.SampleRate)
	}
	if len(edl.Tracks) == 0 {
		return fmt.Errorf("EDL must contain at least one track")
	}
	for _, track := range edl.Tracks {
		if track.ID == "" {
			return fmt.Errorf("track id cannot be empty")
		}
		for _, clip := range track.Clips {
			if err := validateClip(edl, clip); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateClip(edl *model.Edl, clip model.Clip) error {
	if clip.ID == "" {
		return fmt.Errorf("clip id cannot be empty")
	}
	if clip.MediaID == "" {
		return fmt.Errorf("clip media_id cannot be empty for clip: %s", clip.ID)
	}
	if findMedia(edl, clip.MediaID) == nil {
		return fmt.Errorf("media not found for clip %s: %s", clip.ID, clip.MediaID)
	}
	if clip.StartInMedia < 0 {
		return fmt.Errorf("clip start_in_media must be non-negative for clip: %s", clip.ID)
	}
	if clip.Duration <= 0 {
		return fmt.Errorf("clip duration must be positive for clip: %s", clip.ID)
	}
	if clip.StartInTimeline < 0 {
		return fmt.Errorf("clip start_in_timeline must be non-negative for clip: %s", clip.ID)
	}
	return nil
}

func findMedia(edl *model.Edl, mediaID string) *model.AudioRef {
	for i := range edl.Media {
		if edl.Media[i].ID == mediaID {
			return &edl.Media[i]
		}
	}
	return nil
}
