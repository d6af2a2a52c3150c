package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/edlbridge/api/internal/client"
	"github.com/edlbridge/api/internal/edl"
	"github.com/edlbridge/api/internal/model"
	"github.com/edlbridge/api/internal/telemetry"
)

// workLoop drains the render queue one job at a time. A single worker
// processes renders sequentially as deliberate backpressure on the
// engine; queue depth never increases concurrency.
func (b *Bridge) workLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, ok := b.queue.TryPop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-time.After(b.workerPollInterval):
			}
			continue
		}

		telemetry.QueueDepthGauge.Set(float64(b.queue.Len()))
		b.processJob(ctx, job)
	}
}

// processJob drives one job from running to a terminal state. Any panic
// is converted to a failed record so the worker loop survives.
func (b *Bridge) processJob(ctx context.Context, job *model.Job) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("internal error: %v", r)
			log.Printf("Render job %s panicked: %s", job.ID, msg)
			b.failJob(job, msg)
			b.reportError(ctx, "RenderJob", msg)
		}
	}()

	log.Printf("Processing render job: %s", job.ID)
	b.registry.MarkRunning(job.ID)

	sampleRate := b.rates.Get(job.EdlID)
	req := client.RenderWindowRequest{
		EdlID:           job.EdlID,
		StartSamples:    edl.SecondsToSamples(job.StartSeconds, sampleRate),
		DurationSamples: edl.SecondsToSamples(job.DurationSeconds, sampleRate),
		OutPath:         job.OutputPath,
		BitDepth:        job.BitDepth,
	}

	stream, err := b.engine.RenderEdlWindow(ctx, req)
	if err != nil {
		log.Printf("Render job %s failed: %v", job.ID, err)
		b.failJob(job, err.Error())
		b.reportError(ctx, "RenderEdlWindow", err.Error())
		return
	}
	defer stream.Close()

	var events []*model.EngineEvent
	for {
		event, err := stream.Recv()
		if err != nil {
			msg := err.Error()
			if errors.Is(err, io.EOF) {
				msg = "render stream ended without completion"
			}
			log.Printf("Render job %s failed: %s", job.ID, msg)
			b.failJob(job, msg)
			b.reportError(ctx, "RenderEdlWindow", msg)
			return
		}

		events = append(events, event)
		if b.hub != nil {
			b.hub.BroadcastEvent(job.ID, event)
		}

		if event.Terminal() {
			b.completeJob(ctx, job, event, events)
			return
		}
	}
}

func (b *Bridge) completeJob(ctx context.Context, job *model.Job, terminal *model.EngineEvent, events []*model.EngineEvent) {
	b.registry.Complete(job.ID, terminal)
	telemetry.RendersCompleted.Inc()
	if b.hub != nil {
		b.hub.BroadcastComplete(job.ID, terminal)
	}
	log.Printf("Render job %s completed", job.ID)

	feedback := fmt.Sprintf("✅ Render complete: SHA256=%s, output=%s", terminal.SHA256, terminal.OutPath)
	if err := b.docs.AppendText(ctx, b.docID, feedback); err != nil {
		log.Printf("Failed to append feedback to doc: %v", err)
	}

	// One consolidated block with every event, one per line, in the
	// exact order received.
	if err := b.docs.AppendCodeBlock(ctx, b.docID, "engineevents", formatEventLog(events)); err != nil {
		log.Printf("Failed to append event log to doc: %v", err)
	}
}

func (b *Bridge) failJob(job *model.Job, msg string) {
	b.registry.Fail(job.ID, msg)
	telemetry.RendersFailed.Inc()
	if b.hub != nil {
		b.hub.BroadcastError(job.ID, "RENDER_FAILED", msg)
	}
}
