package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/edlbridge/api/internal/model"
)

// reportError appends a user-visible failure message to the document.
// The append itself may fail; that is logged and not retried.
func (b *Bridge) reportError(ctx context.Context, operation, msg string) {
	if err := b.docs.AppendText(ctx, b.docID, fmt.Sprintf("❌ %s: %s", operation, msg)); err != nil {
		log.Printf("Failed to append error to doc: %v", err)
	}
}

// formatEventLog serializes events one JSON object per line, preserving
// emission order.
func formatEventLog(events []*model.EngineEvent) string {
	lines := make([]string, 0, len(events))
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		lines = append(lines, string(data))
	}
	return strings.Join(lines, "\n")
}
