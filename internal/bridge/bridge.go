package bridge

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/edlbridge/api/internal/client"
	"github.com/edlbridge/api/internal/config"
	"github.com/edlbridge/api/internal/edl"
	"github.com/edlbridge/api/internal/model"
	"github.com/edlbridge/api/internal/telemetry"
	"github.com/edlbridge/api/internal/websocket"
)

// Bridge coordinates the revision watcher and the render worker, owns
// the job registry and queue, and exposes the synchronous operations
// used by the HTTP handlers.
type Bridge struct {
	docID              string
	pollInterval       time.Duration
	workerPollInterval time.Duration
	stopTimeout        time.Duration

	docs   client.DocumentProvider
	engine client.RenderEngine
	rates  *edl.RateCache
	hub    *websocket.Hub

	queue    *jobQueue
	registry *jobRegistry

	// Written and read only by the watcher goroutine.
	lastRevision string
	lastEdlID    string

	cancel  context.CancelFunc
	loops   chan struct{}
	started bool
}

// New builds a bridge. The hub may be nil when no websocket surface is
// wired.
func New(cfg *config.Config, docs client.DocumentProvider, engine client.RenderEngine, rates *edl.RateCache, hub *websocket.Hub) *Bridge {
	return &Bridge{
		docID:              cfg.Docs.DocID,
		pollInterval:       cfg.Bridge.PollInterval,
		workerPollInterval: cfg.Bridge.WorkerPollInterval,
		stopTimeout:        cfg.Bridge.StopTimeout,
		docs:               docs,
		engine:             engine,
		rates:              rates,
		hub:                hub,
		queue:              newJobQueue(),
		registry:           newJobRegistry(),
	}
}

// Start connects to the engine and launches the watcher and worker as
// background goroutines.
func (b *Bridge) Start(ctx context.Context) error {
	if b.started {
		return fmt.Errorf("bridge already started")
	}

	if err := b.engine.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to engine: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.loops = make(chan struct{})
	b.started = true

	watcherDone := make(chan struct{})
	workerDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		b.watchLoop(loopCtx)
	}()
	go func() {
		defer close(workerDone)
		b.workLoop(loopCtx)
	}()
	go func() {
		<-watcherDone
		<-workerDone
		close(b.loops)
	}()

	log.Printf("Bridge started: doc=%s poll=%s", b.docID, b.pollInterval)
	return nil
}

// Stop signals both loops to exit, waits up to the stop timeout, then
// releases the engine connection. A loop that does not exit in time is
// abandoned. Safe to call even when Start failed or never ran.
func (b *Bridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	if b.loops != nil {
		select {
		case <-b.loops:
		case <-time.After(b.stopTimeout):
			log.Printf("Bridge loops did not exit within %s, abandoning", b.stopTimeout)
		}
	}
	if b.engine != nil {
		if err := b.engine.Close(); err != nil {
			log.Printf("Failed to close engine connection: %v", err)
		}
	}
	log.Printf("Bridge stopped")
}

// EnqueueRender registers a pending job and pushes it onto the render
// queue. It never blocks on engine availability.
func (b *Bridge) EnqueueRender(edlID string, startSeconds, durationSeconds float64, outPath string, bitDepth int) (string, error) {
	if edlID == "" {
		return "", fmt.Errorf("edl_id cannot be empty")
	}
	if !model.ValidBitDepth(bitDepth) {
		return "", fmt.Errorf("bit_depth must be 16, 24, or 32")
	}

	job := &model.Job{
		ID:              uuid.New().String(),
		EdlID:           edlID,
		StartSeconds:    startSeconds,
		DurationSeconds: durationSeconds,
		OutputPath:      outPath,
		BitDepth:        bitDepth,
	}

	b.registry.Add(job)
	b.queue.Push(job)
	telemetry.RendersEnqueued.Inc()
	telemetry.QueueDepthGauge.Set(float64(b.queue.Len()))

	log.Printf("Enqueued render job: %s", job.ID)
	return job.ID, nil
}

// JobStatus returns a point-in-time snapshot of one job.
func (b *Bridge) JobStatus(jobID string) (model.JobSnapshot, bool) {
	return b.registry.Snapshot(jobID)
}

// JobCount reports the registry size.
func (b *Bridge) JobCount() int {
	return b.registry.Len()
}

// QueueDepth reports the number of jobs waiting to be processed.
func (b *Bridge) QueueDepth() int {
	return b.queue.Len()
}
