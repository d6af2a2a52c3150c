package bridge

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/edlbridge/api/internal/edl"
	"github.com/edlbridge/api/internal/telemetry"
)

// watchLoop polls the document on a fixed interval until shutdown.
func (b *Bridge) watchLoop(ctx context.Context) {
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		b.checkDocUpdate(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// checkDocUpdate runs one watcher cycle: fetch, compare revision tokens,
// and on change parse and push the EDL. The revision token is advanced
// before parsing so a failing revision is processed exactly once; fetch
// failures are transient and leave all state untouched.
func (b *Bridge) checkDocUpdate(ctx context.Context) {
	content, revision, err := b.docs.GetContent(ctx, b.docID)
	if err != nil {
		log.Printf("Failed to fetch doc: %v", err)
		telemetry.PollFailures.Inc()
		return
	}
	telemetry.PollCycles.Inc()

	if revision == b.lastRevision {
		return
	}

	log.Printf("Doc revision changed: %s", revision)
	b.lastRevision = revision

	parsed, err := edl.ParseDocument(content)
	if err != nil {
		log.Printf("EDL parse error: %v", err)
		b.reportError(ctx, "ParseError", err.Error())
		return
	}

	log.Printf("Parsed EDL: id=%s, tracks=%d", parsed.ID, len(parsed.Tracks))

	result, err := b.engine.UpdateEdl(ctx, parsed, true)
	if err != nil {
		log.Printf("UpdateEdl failed: %v", err)
		telemetry.EdlPushFailures.Inc()
		b.reportError(ctx, "UpdateEdl", err.Error())
		return
	}

	b.lastEdlID = result.EdlID
	b.rates.Set(result.EdlID, parsed.SampleRate)
	telemetry.EdlPushes.Inc()
	log.Printf("UpdateEdl success: id=%s tracks=%d clips=%d", result.EdlID, result.TrackCount, result.ClipCount)

	feedback := fmt.Sprintf("✅ EDL updated: id=%s, tracks=%d, clips=%d",
		result.EdlID, result.TrackCount, result.ClipCount)
	if err := b.docs.AppendText(ctx, b.docID, feedback); err != nil {
		log.Printf("Failed to append feedback to doc: %v", err)
	}
}
